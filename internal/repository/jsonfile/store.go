// Package jsonfile implements the repositories on top of flat JSON documents,
// one file per collection, for single-node deployments without PostgreSQL.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/noah-isme/trainee-tracker-api/pkg/storage"
)

const (
	candidatesFile = "candidates.json"
	coursesFile    = "courses.json"
	mentorsFile    = "mentors.json"
	usersFile      = "users.json"
	auditFile      = "audit_logs.json"
)

// Store serialises access to the collection files. Every operation reads the
// whole collection and writes it back; concurrent writers are last-write-wins.
type Store struct {
	mu    sync.Mutex
	files *storage.LocalStorage
}

// NewStore opens (creating if needed) a data directory.
func NewStore(dir string) (*Store, error) {
	files, err := storage.NewLocalStorage(dir)
	if err != nil {
		return nil, err
	}
	return &Store{files: files}, nil
}

func load[T any](s *Store, name string) ([]T, error) {
	raw, err := s.files.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	items := []T{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return items, nil
}

func save[T any](s *Store, name string, items []T) error {
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if _, err := s.files.Save(name, raw); err != nil {
		return err
	}
	return nil
}

// mutate loads a collection, applies fn and saves the result when fn succeeds.
func mutate[T any](s *Store, name string, fn func([]T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := load[T](s, name)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return save(s, name, items)
}

// read loads a collection under the store lock.
func read[T any](s *Store, name string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return load[T](s, name)
}
