package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/trainee-tracker-api/internal/eligibility"
	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

const unspecified = "Unspecified"

// CountEntry is one bar of a histogram.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// CourseEngagement counts distinct candidates touching a course.
type CourseEngagement struct {
	Code       string `json:"code"`
	Title      string `json:"title"`
	Candidates int    `json:"candidates"`
}

// CoursePassRate is the share of passing results for a required course.
type CoursePassRate struct {
	Code    string `json:"code"`
	Title   string `json:"title"`
	Results int    `json:"results"`
	Passed  int    `json:"passed"`
	Rate    int    `json:"rate"`
}

// CandidateFlag lists a candidate needing attention.
type CandidateFlag struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Email        string                 `json:"email"`
	Status       models.CandidateStatus `json:"status"`
	Reason       string                 `json:"reason,omitempty"`
	Average      *float64               `json:"average,omitempty"`
	LastActivity *time.Time             `json:"lastActivity,omitempty"`
}

// DashboardSummary is the full dashboard payload.
type DashboardSummary struct {
	Total       int                `json:"total"`
	ByStatus    []CountEntry       `json:"byStatus"`
	BySubject   []CountEntry       `json:"bySubject"`
	ByEmirate   []CountEntry       `json:"byEmirate"`
	Engagement  []CourseEngagement `json:"engagement"`
	PassRates   []CoursePassRate   `json:"passRates"`
	AtRisk      []CandidateFlag    `json:"atRisk"`
	Stale       []CandidateFlag    `json:"stale"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	StaleAfter time.Duration
}

// DashboardService recomputes dashboard aggregates from current state on
// every call.
type DashboardService struct {
	candidates candidateLister
	courses    courseCatalog
	logger     *zap.Logger
	now        func() time.Time
	cfg        DashboardServiceConfig
}

type candidateLister interface {
	List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error)
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(candidates candidateLister, courses courseCatalog, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 21 * 24 * time.Hour
	}
	return &DashboardService{candidates: candidates, courses: courses, logger: logger, now: time.Now, cfg: cfg}
}

// Summary builds the dashboard payload.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	candidates, err := s.candidates.List(ctx, models.CandidateFilter{})
	if err != nil {
		return nil, internalError(err, "failed to list candidates")
	}
	courses, err := s.courses.List(ctx, true)
	if err != nil {
		return nil, internalError(err, "failed to load courses")
	}

	now := s.now().UTC()
	return &DashboardSummary{
		Total:       len(candidates),
		ByStatus:    StatusHistogram(candidates),
		BySubject:   FieldHistogram(candidates, func(c models.Candidate) string { return c.Subject }),
		ByEmirate:   FieldHistogram(candidates, func(c models.Candidate) string { return c.Emirate }),
		Engagement:  CourseEngagements(candidates, courses),
		PassRates:   CoursePassRates(candidates, courses),
		AtRisk:      AtRisk(candidates, courses),
		Stale:       Stale(candidates, now, s.cfg.StaleAfter),
		GeneratedAt: now,
	}, nil
}

// StatusHistogram counts candidates per status in pipeline order, including
// zero counts.
func StatusHistogram(candidates []models.Candidate) []CountEntry {
	counts := make(map[models.CandidateStatus]int)
	for _, c := range candidates {
		counts[c.Status]++
	}
	out := make([]CountEntry, 0, len(models.CandidateStatuses))
	for _, status := range models.CandidateStatuses {
		out = append(out, CountEntry{Key: string(status), Count: counts[status]})
	}
	return out
}

// FieldHistogram counts candidates per distinct value of field, largest first.
func FieldHistogram(candidates []models.Candidate, field func(models.Candidate) string) []CountEntry {
	counts := make(map[string]int)
	for _, c := range candidates {
		key := strings.TrimSpace(field(c))
		if key == "" {
			key = unspecified
		}
		counts[key]++
	}
	out := make([]CountEntry, 0, len(counts))
	for key, n := range counts {
		out = append(out, CountEntry{Key: key, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// CourseEngagements counts, per course, the distinct candidates that have an
// enrollment or a result for it.
func CourseEngagements(candidates []models.Candidate, courses []models.Course) []CourseEngagement {
	seen := make(map[string]map[string]bool)
	touch := func(code, candidateID string) {
		key := strings.ToUpper(code)
		if seen[key] == nil {
			seen[key] = make(map[string]bool)
		}
		seen[key][candidateID] = true
	}
	for _, c := range candidates {
		for _, e := range c.Enrollments {
			touch(e.Code, c.ID)
		}
		for _, r := range c.CourseResults {
			touch(r.Code, c.ID)
		}
	}

	out := make([]CourseEngagement, 0, len(seen))
	for key, ids := range seen {
		entry := CourseEngagement{Code: key, Candidates: len(ids)}
		if course := findCourse(courses, key); course != nil {
			entry.Code = course.Code
			entry.Title = course.Title
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Candidates != out[j].Candidates {
			return out[i].Candidates > out[j].Candidates
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// CoursePassRates returns pass rates for active required courses with at
// least one result, lowest rate first. Courses without results are omitted.
func CoursePassRates(candidates []models.Candidate, courses []models.Course) []CoursePassRate {
	out := make([]CoursePassRate, 0)
	for _, course := range courses {
		if !course.Active || !course.IsRequired {
			continue
		}
		rate := CoursePassRate{Code: course.Code, Title: course.Title}
		for _, c := range candidates {
			result, ok := c.ResultFor(course.Code)
			if !ok {
				continue
			}
			rate.Results++
			if result.Pass {
				rate.Passed++
			}
		}
		if rate.Results == 0 {
			continue
		}
		rate.Rate = int(math.Round(float64(rate.Passed) / float64(rate.Results) * 100))
		out = append(out, rate)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rate != out[j].Rate {
			return out[i].Rate < out[j].Rate
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// AtRisk lists reviewable candidates that currently fail the graduation check.
func AtRisk(candidates []models.Candidate, courses []models.Course) []CandidateFlag {
	out := make([]CandidateFlag, 0)
	for _, c := range candidates {
		if !reviewable(c) {
			continue
		}
		eval := eligibility.Evaluate(c, courses)
		if eval.Eligible {
			continue
		}
		flag := newFlag(c)
		flag.Reason = eval.Reason
		flag.Average = eval.Average
		out = append(out, flag)
	}
	return out
}

// Stale lists candidates still in the pipeline whose last activity is
// missing or older than after.
func Stale(candidates []models.Candidate, now time.Time, after time.Duration) []CandidateFlag {
	cutoff := now.Add(-after)
	out := make([]CandidateFlag, 0)
	for _, c := range candidates {
		switch c.Status {
		case models.StatusHiredClosed, models.StatusWithdrawn, models.StatusRejected:
			continue
		}
		last := LastActivity(c)
		if last != nil && !last.Before(cutoff) {
			continue
		}
		flag := newFlag(c)
		flag.LastActivity = last
		if last == nil {
			flag.Reason = "no recorded activity"
		} else {
			flag.Reason = "no activity since " + last.Format(dateLayout)
		}
		out = append(out, flag)
	}
	return out
}

// LastActivity is the latest of the newest note, any enrollment assignment
// and any result date.
func LastActivity(c models.Candidate) *time.Time {
	var latest *time.Time
	consider := func(ts time.Time) {
		if ts.IsZero() {
			return
		}
		if latest == nil || ts.After(*latest) {
			t := ts
			latest = &t
		}
	}
	if len(c.Notes) > 0 {
		consider(c.Notes[0].Ts)
	}
	for _, e := range c.Enrollments {
		if e.AssignedTs != nil {
			consider(*e.AssignedTs)
		}
	}
	for _, r := range c.CourseResults {
		if ts, err := time.Parse(dateLayout, r.Date); err == nil {
			consider(ts)
		}
	}
	return latest
}

func newFlag(c models.Candidate) CandidateFlag {
	return CandidateFlag{ID: c.ID, Name: c.Name, Email: c.Email, Status: c.Status}
}
