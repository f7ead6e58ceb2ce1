package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/repository"
)

type fakeCandidateRepo struct {
	items       map[string]*models.Candidate
	seq         int
	updateCalls int
	batchCalls  int
	createErr   error
	updateErr   error
}

func newFakeCandidateRepo(candidates ...models.Candidate) *fakeCandidateRepo {
	repo := &fakeCandidateRepo{items: map[string]*models.Candidate{}}
	for i := range candidates {
		c := candidates[i]
		if c.ID == "" {
			repo.seq++
			c.ID = fmt.Sprintf("c-%d", repo.seq)
		}
		repo.items[c.ID] = &c
	}
	return repo
}

func (f *fakeCandidateRepo) List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error) {
	out := make([]models.Candidate, 0, len(f.items))
	for _, c := range f.items {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.TrackID != "" && c.TrackID != filter.TrackID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.Name+" "+c.Email), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, cloneCandidate(*c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCandidateRepo) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := cloneCandidate(*c)
	return &copy, nil
}

func (f *fakeCandidateRepo) FindByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	for _, c := range f.items {
		if strings.EqualFold(c.Email, email) {
			copy := cloneCandidate(*c)
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCandidateRepo) Create(ctx context.Context, candidate *models.Candidate) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, err := f.FindByEmail(ctx, candidate.Email); err == nil {
		return fmt.Errorf("create candidate: %w", repository.ErrDuplicate)
	}
	f.seq++
	candidate.ID = fmt.Sprintf("c-%d", f.seq)
	candidate.CreatedAt = time.Now().UTC()
	candidate.UpdatedAt = candidate.CreatedAt
	copy := cloneCandidate(*candidate)
	f.items[candidate.ID] = &copy
	return nil
}

func (f *fakeCandidateRepo) CreateMany(ctx context.Context, candidates []*models.Candidate) error {
	f.batchCalls++
	for _, c := range candidates {
		if _, err := f.FindByEmail(ctx, c.Email); err == nil {
			return fmt.Errorf("create candidates: %w", repository.ErrDuplicate)
		}
	}
	for _, c := range candidates {
		if err := f.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeCandidateRepo) Update(ctx context.Context, candidate *models.Candidate) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.items[candidate.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := cloneCandidate(*candidate)
	f.items[candidate.ID] = &copy
	return nil
}

func (f *fakeCandidateRepo) UpdateMany(ctx context.Context, candidates []*models.Candidate) error {
	f.batchCalls++
	for _, c := range candidates {
		if _, ok := f.items[c.ID]; !ok {
			return repository.ErrNotFound
		}
	}
	for _, c := range candidates {
		copy := cloneCandidate(*c)
		f.items[c.ID] = &copy
	}
	return nil
}

func (f *fakeCandidateRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeCandidateRepo) get(id string) models.Candidate {
	return cloneCandidate(*f.items[id])
}

func cloneCandidate(c models.Candidate) models.Candidate {
	c.Enrollments = append(models.Enrollments{}, c.Enrollments...)
	c.CourseResults = append(models.CourseResults{}, c.CourseResults...)
	c.Notes = append(models.Notes{}, c.Notes...)
	return c
}

type fakeCourseRepo struct {
	items map[string]*models.Course
}

func newFakeCourseRepo(courses ...models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{items: map[string]*models.Course{}}
	for i := range courses {
		c := courses[i]
		repo.items[strings.ToUpper(c.Code)] = &c
	}
	return repo
}

func (f *fakeCourseRepo) List(ctx context.Context, includeInactive bool) ([]models.Course, error) {
	out := make([]models.Course, 0, len(f.items))
	for _, c := range f.items {
		if !includeInactive && !c.Active {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeCourseRepo) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	c, ok := f.items[strings.ToUpper(code)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *c
	return &copy, nil
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if _, ok := f.items[strings.ToUpper(course.Code)]; ok {
		return repository.ErrDuplicate
	}
	copy := *course
	f.items[strings.ToUpper(course.Code)] = &copy
	return nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	if _, ok := f.items[strings.ToUpper(course.Code)]; !ok {
		return repository.ErrNotFound
	}
	copy := *course
	f.items[strings.ToUpper(course.Code)] = &copy
	return nil
}

func (f *fakeCourseRepo) Deactivate(ctx context.Context, code string) error {
	c, ok := f.items[strings.ToUpper(code)]
	if !ok {
		return repository.ErrNotFound
	}
	c.Active = false
	return nil
}

type fakeUserRepo struct {
	items map[string]*models.User
	seq   int
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	repo := &fakeUserRepo{items: map[string]*models.User{}}
	for i := range users {
		u := users[i]
		if u.ID == "" {
			repo.seq++
			u.ID = fmt.Sprintf("u-%d", repo.seq)
		}
		repo.items[u.ID] = &u
	}
	return repo
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.items {
		if strings.EqualFold(u.Email, email) {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *u
	return &copy, nil
}

func (f *fakeUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	out := make([]models.User, 0, len(f.items))
	for _, u := range f.items {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int, error) {
	return len(f.items), nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, err := f.FindByEmail(ctx, user.Email); err == nil {
		return repository.ErrDuplicate
	}
	f.seq++
	user.ID = fmt.Sprintf("u-%d", f.seq)
	copy := *user
	f.items[user.ID] = &copy
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	existing, ok := f.items[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	copy := *user
	copy.PasswordHash = existing.PasswordHash
	f.items[user.ID] = &copy
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	u, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLogin = &ts
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, hash string, _ time.Time) error {
	u, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeMentorRepo struct {
	items map[string]*models.Mentor
	seq   int
}

func newFakeMentorRepo() *fakeMentorRepo {
	return &fakeMentorRepo{items: map[string]*models.Mentor{}}
}

func (f *fakeMentorRepo) List(ctx context.Context) ([]models.Mentor, error) {
	out := make([]models.Mentor, 0, len(f.items))
	for _, m := range f.items {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeMentorRepo) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	m, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *m
	return &copy, nil
}

func (f *fakeMentorRepo) Create(ctx context.Context, mentor *models.Mentor) error {
	for _, m := range f.items {
		if strings.EqualFold(m.Email, mentor.Email) {
			return repository.ErrDuplicate
		}
	}
	f.seq++
	mentor.ID = fmt.Sprintf("m-%d", f.seq)
	copy := *mentor
	f.items[mentor.ID] = &copy
	return nil
}

func (f *fakeMentorRepo) Update(ctx context.Context, mentor *models.Mentor) error {
	if _, ok := f.items[mentor.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *mentor
	f.items[mentor.ID] = &copy
	return nil
}

func (f *fakeMentorRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeAuditRepo struct {
	entries []*models.AuditLog
	err     error
}

func (f *fakeAuditRepo) Create(ctx context.Context, log *models.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, log)
	return nil
}

func (f *fakeAuditRepo) actions() []string {
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

var errBoom = errors.New("boom")

func floatPtr(v float64) *float64 { return &v }

func testCourses() []models.Course {
	return []models.Course{
		{Code: "MATH101", Title: "Mathematics", Weight: 0.5, PassThreshold: 70, IsRequired: true, Tracks: []string{"t1"}, Active: true},
		{Code: "SCI201", Title: "Science", Weight: 0.5, PassThreshold: 70, IsRequired: true, Tracks: []string{"t1"}, Active: true},
		{Code: "ENG110", Title: "English", Weight: 0.3, PassThreshold: 70, IsRequired: true, Tracks: []string{"t2"}, Active: true},
		{Code: "OLD100", Title: "Retired", Weight: 0.3, PassThreshold: 70, IsRequired: true, Tracks: []string{"t1"}, Active: false},
	}
}
