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

// CandidateRepository stores candidates in candidates.json.
type CandidateRepository struct {
	store *Store
}

// NewCandidateRepository constructs a CandidateRepository.
func NewCandidateRepository(store *Store) *CandidateRepository {
	return &CandidateRepository{store: store}
}

// List returns candidates matching the filter ordered by name.
func (r *CandidateRepository) List(_ context.Context, filter models.CandidateFilter) ([]models.Candidate, error) {
	all, err := read[models.Candidate](r.store, candidatesFile)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	search := strings.ToLower(filter.Search)
	out := make([]models.Candidate, 0, len(all))
	for _, c := range all {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.TrackID != "" && c.TrackID != filter.TrackID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) && !strings.Contains(strings.ToLower(c.Email), search) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FindByID fetches a candidate by ID.
func (r *CandidateRepository) FindByID(_ context.Context, id string) (*models.Candidate, error) {
	all, err := read[models.Candidate](r.store, candidatesFile)
	if err != nil {
		return nil, fmt.Errorf("find candidate: %w", err)
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("find candidate: %w", repository.ErrNotFound)
}

// FindByEmail fetches a candidate by email, ignoring case.
func (r *CandidateRepository) FindByEmail(_ context.Context, email string) (*models.Candidate, error) {
	all, err := read[models.Candidate](r.store, candidatesFile)
	if err != nil {
		return nil, fmt.Errorf("find candidate by email: %w", err)
	}
	if i := indexCandidateEmail(all, email, ""); i >= 0 {
		return &all[i], nil
	}
	return nil, fmt.Errorf("find candidate by email: %w", repository.ErrNotFound)
}

// Create appends a candidate.
func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	return r.CreateMany(ctx, []*models.Candidate{candidate})
}

// CreateMany appends candidates in a single write; a duplicate email rejects the whole batch.
func (r *CandidateRepository) CreateMany(_ context.Context, candidates []*models.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return mutate(r.store, candidatesFile, func(all []models.Candidate) ([]models.Candidate, error) {
		for _, c := range candidates {
			if indexCandidateEmail(all, c.Email, "") >= 0 {
				return nil, fmt.Errorf("create candidate %s: %w", c.Email, repository.ErrDuplicate)
			}
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
			if c.CreatedAt.IsZero() {
				c.CreatedAt = now
			}
			c.UpdatedAt = now
			if c.Status == "" {
				c.Status = models.StatusImported
			}
			all = append(all, *c)
		}
		return all, nil
	})
}

// Update replaces a stored candidate.
func (r *CandidateRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	return r.UpdateMany(ctx, []*models.Candidate{candidate})
}

// UpdateMany replaces several candidates in one write.
func (r *CandidateRepository) UpdateMany(_ context.Context, candidates []*models.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return mutate(r.store, candidatesFile, func(all []models.Candidate) ([]models.Candidate, error) {
		for _, c := range candidates {
			idx := -1
			for i := range all {
				if all[i].ID == c.ID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return nil, fmt.Errorf("update candidate %s: %w", c.ID, repository.ErrNotFound)
			}
			if indexCandidateEmail(all, c.Email, c.ID) >= 0 {
				return nil, fmt.Errorf("update candidate %s: %w", c.ID, repository.ErrDuplicate)
			}
			c.UpdatedAt = now
			all[idx] = *c
		}
		return all, nil
	})
}

// Delete removes a candidate permanently.
func (r *CandidateRepository) Delete(_ context.Context, id string) error {
	return mutate(r.store, candidatesFile, func(all []models.Candidate) ([]models.Candidate, error) {
		for i := range all {
			if all[i].ID == id {
				return append(all[:i], all[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("delete candidate: %w", repository.ErrNotFound)
	})
}

func indexCandidateEmail(all []models.Candidate, email, excludeID string) int {
	want := models.NormalizeEmail(email)
	for i := range all {
		if all[i].ID != excludeID && models.NormalizeEmail(all[i].Email) == want {
			return i
		}
	}
	return -1
}
