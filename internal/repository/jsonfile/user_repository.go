package jsonfile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/repository"
)

// UserRepository stores users in users.json. Password hashes are kept in the
// file, so the data directory must not be world readable.
type UserRepository struct {
	store *Store
}

// storedUser exposes the password hash that models.User hides from JSON.
type storedUser struct {
	models.User
	PasswordHash string `json:"passwordHash"`
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (u storedUser) model() *models.User {
	user := u.User
	user.PasswordHash = u.PasswordHash
	return &user
}

func toStored(user *models.User) storedUser {
	return storedUser{User: *user, PasswordHash: user.PasswordHash}
}

// FindByEmail returns a user by email address, ignoring case.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	all, err := read[storedUser](r.store, usersFile)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if i := indexUserEmail(all, email, ""); i >= 0 {
		return all[i].model(), nil
	}
	return nil, fmt.Errorf("find user by email: %w", repository.ErrNotFound)
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	all, err := read[storedUser](r.store, usersFile)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	for i := range all {
		if all[i].ID == id {
			return all[i].model(), nil
		}
	}
	return nil, fmt.Errorf("find user by id: %w", repository.ErrNotFound)
}

// List returns users matching the filter, newest first.
func (r *UserRepository) List(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	all, err := read[storedUser](r.store, usersFile)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	search := strings.ToLower(filter.Search)
	out := make([]models.User, 0, len(all))
	for _, u := range all {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Email), search) && !strings.Contains(strings.ToLower(u.Name), search) {
			continue
		}
		out = append(out, *u.model())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count(_ context.Context) (int, error) {
	all, err := read[storedUser](r.store, usersFile)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return len(all), nil
}

// Create appends a user.
func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	now := time.Now().UTC()
	return mutate(r.store, usersFile, func(all []storedUser) ([]storedUser, error) {
		if indexUserEmail(all, user.Email, "") >= 0 {
			return nil, fmt.Errorf("create user: %w", repository.ErrDuplicate)
		}
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		user.UpdatedAt = now
		return append(all, toStored(user)), nil
	})
}

// Update writes profile, role and applicant fields, keeping the stored password.
func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	return r.modify(user.ID, "update user", func(stored *storedUser) error {
		hash := stored.PasswordHash
		lastLogin := stored.LastLogin
		createdAt := stored.CreatedAt
		stored.User = *user
		stored.PasswordHash = hash
		stored.LastLogin = lastLogin
		stored.CreatedAt = createdAt
		user.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

// UpdateLastLogin records a successful login.
func (r *UserRepository) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	return r.modify(id, "update last login", func(stored *storedUser) error {
		stored.LastLogin = &ts
		return nil
	})
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(_ context.Context, id, passwordHash string, _ time.Time) error {
	return r.modify(id, "update password", func(stored *storedUser) error {
		stored.PasswordHash = passwordHash
		return nil
	})
}

// Delete removes a user permanently.
func (r *UserRepository) Delete(_ context.Context, id string) error {
	return mutate(r.store, usersFile, func(all []storedUser) ([]storedUser, error) {
		for i := range all {
			if all[i].ID == id {
				return append(all[:i], all[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("delete user: %w", repository.ErrNotFound)
	})
}

func (r *UserRepository) modify(id, op string, fn func(*storedUser) error) error {
	now := time.Now().UTC()
	return mutate(r.store, usersFile, func(all []storedUser) ([]storedUser, error) {
		for i := range all {
			if all[i].ID != id {
				continue
			}
			before := all[i].Email
			if err := fn(&all[i]); err != nil {
				return nil, err
			}
			if !strings.EqualFold(before, all[i].Email) && indexUserEmail(all, all[i].Email, id) >= 0 {
				return nil, fmt.Errorf("%s: %w", op, repository.ErrDuplicate)
			}
			all[i].UpdatedAt = now
			return all, nil
		}
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	})
}

func indexUserEmail(all []storedUser, email, excludeID string) int {
	want := models.NormalizeEmail(email)
	for i := range all {
		if all[i].ID != excludeID && models.NormalizeEmail(all[i].Email) == want {
			return i
		}
	}
	return -1
}
