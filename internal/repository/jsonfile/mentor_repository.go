package jsonfile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/repository"
)

// MentorRepository stores mentors in mentors.json.
type MentorRepository struct {
	store *Store
}

// NewMentorRepository constructs a MentorRepository.
func NewMentorRepository(store *Store) *MentorRepository {
	return &MentorRepository{store: store}
}

// List returns all mentors ordered by name.
func (r *MentorRepository) List(_ context.Context) ([]models.Mentor, error) {
	all, err := read[models.Mentor](r.store, mentorsFile)
	if err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

// FindByID fetches a mentor.
func (r *MentorRepository) FindByID(_ context.Context, id string) (*models.Mentor, error) {
	all, err := read[models.Mentor](r.store, mentorsFile)
	if err != nil {
		return nil, fmt.Errorf("find mentor: %w", err)
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("find mentor: %w", repository.ErrNotFound)
}

// Create appends a mentor.
func (r *MentorRepository) Create(_ context.Context, mentor *models.Mentor) error {
	now := time.Now().UTC()
	return mutate(r.store, mentorsFile, func(all []models.Mentor) ([]models.Mentor, error) {
		if indexMentorEmail(all, mentor.Email, "") >= 0 {
			return nil, fmt.Errorf("create mentor: %w", repository.ErrDuplicate)
		}
		if mentor.ID == "" {
			mentor.ID = uuid.NewString()
		}
		if mentor.CreatedAt.IsZero() {
			mentor.CreatedAt = now
		}
		mentor.UpdatedAt = now
		return append(all, *mentor), nil
	})
}

// Update replaces a mentor.
func (r *MentorRepository) Update(_ context.Context, mentor *models.Mentor) error {
	now := time.Now().UTC()
	return mutate(r.store, mentorsFile, func(all []models.Mentor) ([]models.Mentor, error) {
		for i := range all {
			if all[i].ID != mentor.ID {
				continue
			}
			if indexMentorEmail(all, mentor.Email, mentor.ID) >= 0 {
				return nil, fmt.Errorf("update mentor: %w", repository.ErrDuplicate)
			}
			mentor.UpdatedAt = now
			all[i] = *mentor
			return all, nil
		}
		return nil, fmt.Errorf("update mentor: %w", repository.ErrNotFound)
	})
}

// Delete removes a mentor.
func (r *MentorRepository) Delete(_ context.Context, id string) error {
	return mutate(r.store, mentorsFile, func(all []models.Mentor) ([]models.Mentor, error) {
		for i := range all {
			if all[i].ID == id {
				return append(all[:i], all[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("delete mentor: %w", repository.ErrNotFound)
	})
}

func indexMentorEmail(all []models.Mentor, email, excludeID string) int {
	want := models.NormalizeEmail(email)
	for i := range all {
		if all[i].ID != excludeID && models.NormalizeEmail(all[i].Email) == want {
			return i
		}
	}
	return -1
}
