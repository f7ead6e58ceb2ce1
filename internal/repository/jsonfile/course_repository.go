package jsonfile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/repository"
)

// CourseRepository stores the course catalog in courses.json.
type CourseRepository struct {
	store *Store
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(store *Store) *CourseRepository {
	return &CourseRepository{store: store}
}

// List returns courses ordered by code.
func (r *CourseRepository) List(_ context.Context, includeInactive bool) ([]models.Course, error) {
	all, err := read[models.Course](r.store, coursesFile)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	out := make([]models.Course, 0, len(all))
	for _, c := range all {
		if includeInactive || c.Active {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// FindByCode fetches a course by code, ignoring case.
func (r *CourseRepository) FindByCode(_ context.Context, code string) (*models.Course, error) {
	all, err := read[models.Course](r.store, coursesFile)
	if err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	if i := indexCourse(all, code); i >= 0 {
		return &all[i], nil
	}
	return nil, fmt.Errorf("find course: %w", repository.ErrNotFound)
}

// Create appends a course.
func (r *CourseRepository) Create(_ context.Context, course *models.Course) error {
	now := time.Now().UTC()
	return mutate(r.store, coursesFile, func(all []models.Course) ([]models.Course, error) {
		if indexCourse(all, course.Code) >= 0 {
			return nil, fmt.Errorf("create course: %w", repository.ErrDuplicate)
		}
		if course.CreatedAt.IsZero() {
			course.CreatedAt = now
		}
		course.UpdatedAt = now
		return append(all, *course), nil
	})
}

// Update replaces a course matched by code.
func (r *CourseRepository) Update(_ context.Context, course *models.Course) error {
	now := time.Now().UTC()
	return mutate(r.store, coursesFile, func(all []models.Course) ([]models.Course, error) {
		i := indexCourse(all, course.Code)
		if i < 0 {
			return nil, fmt.Errorf("update course: %w", repository.ErrNotFound)
		}
		course.Code = all[i].Code
		course.CreatedAt = all[i].CreatedAt
		course.UpdatedAt = now
		all[i] = *course
		return all, nil
	})
}

// Deactivate soft deletes a course.
func (r *CourseRepository) Deactivate(_ context.Context, code string) error {
	now := time.Now().UTC()
	return mutate(r.store, coursesFile, func(all []models.Course) ([]models.Course, error) {
		i := indexCourse(all, code)
		if i < 0 {
			return nil, fmt.Errorf("deactivate course: %w", repository.ErrNotFound)
		}
		all[i].Active = false
		all[i].UpdatedAt = now
		return all, nil
	})
}

func indexCourse(all []models.Course, code string) int {
	for i := range all {
		if models.SameCode(all[i].Code, code) {
			return i
		}
	}
	return -1
}
