package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/trainee-tracker-api/internal/eligibility"
	"github.com/noah-isme/trainee-tracker-api/internal/models"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/export"
	"github.com/noah-isme/trainee-tracker-api/pkg/storage"
)

type reportCandidateRepository interface {
	List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error)
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ReportServiceConfig tunes export behaviour.
type ReportServiceConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures a stored export and its signed download link.
type ExportResult struct {
	Format    string    `json:"format"`
	Rows      int       `json:"rows"`
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ReportDownload is an opened export ready to stream.
type ReportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
}

// ReportService renders candidate progress sheets and candidate list exports.
type ReportService struct {
	candidates reportCandidateRepository
	courses    courseCatalog
	storage    fileStorage
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ReportServiceConfig
	now        func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(candidates reportCandidateRepository, courses courseCatalog, files fileStorage, signer *storage.SignedURLSigner, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ReportService{
		candidates: candidates,
		courses:    courses,
		storage:    files,
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// CandidatePDF renders the progress sheet of one candidate.
func (s *ReportService) CandidatePDF(ctx context.Context, id string) ([]byte, string, error) {
	candidate, err := s.candidates.FindByID(ctx, id)
	if err != nil {
		return nil, "", repoError(err, "candidate not found", "", "failed to load candidate")
	}
	courses, err := s.courses.List(ctx, true)
	if err != nil {
		return nil, "", internalError(err, "failed to load courses")
	}

	data, err := export.RenderDocument(CandidateDocument(*candidate, courses, s.now().UTC()))
	if err != nil {
		return nil, "", internalError(err, "failed to render candidate report")
	}
	return data, fmt.Sprintf("candidate-%s.pdf", slug(candidate.Name, candidate.ID)), nil
}

// ExportCandidates renders the filtered candidate list, stores it and returns
// a signed download link. Expired exports are purged first.
func (s *ReportService) ExportCandidates(ctx context.Context, format string, filter models.CandidateFilter) (*ExportResult, error) {
	renderer, err := export.For(format)
	if err != nil {
		return nil, validationError(err, "unsupported export format")
	}

	if removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
	} else if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}

	candidates, err := s.candidates.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list candidates")
	}
	courses, err := s.courses.List(ctx, true)
	if err != nil {
		return nil, internalError(err, "failed to load courses")
	}

	dataset := CandidateDataset(candidates, courses)
	data, err := renderer.Render(dataset)
	if err != nil {
		return nil, internalError(err, "failed to render export")
	}

	id := uuid.NewString()
	relPath := filepath.ToSlash(filepath.Join("candidates", fmt.Sprintf("candidates-%s-%s.%s", s.now().UTC().Format("20060102"), id[:8], renderer.Extension())))
	if _, err := s.storage.Save(relPath, data); err != nil {
		return nil, internalError(err, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, internalError(err, "failed to sign export")
	}
	s.logger.Info("candidate export stored", zap.String("path", relPath), zap.Int("rows", len(dataset.Rows)))

	return &ExportResult{
		Format:    renderer.Extension(),
		Rows:      len(dataset.Rows),
		Token:     token,
		URL:       strings.TrimRight(s.cfg.APIPrefix, "/") + "/reports/download/" + token,
		ExpiresAt: expiresAt,
	}, nil
}

// ResolveDownload validates token and opens the stored export.
func (s *ReportService) ResolveDownload(token string) (*ReportDownload, error) {
	_, relPath, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
		}
		return nil, internalError(err, "failed to open export file")
	}

	contentType := "application/octet-stream"
	if renderer, err := export.For(strings.TrimPrefix(filepath.Ext(relPath), ".")); err == nil {
		contentType = renderer.ContentType()
	}
	return &ReportDownload{File: file, Filename: filepath.Base(relPath), ContentType: contentType}, nil
}

// CandidateDataset flattens candidates into export rows with their final
// average and eligibility.
func CandidateDataset(candidates []models.Candidate, courses []models.Course) export.Dataset {
	dataset := export.Dataset{
		Title:   "Candidates",
		Headers: []string{"Name", "Email", "Subject", "Track", "Emirate", "Status", "Enrollments", "Final Average", "Eligible", "Hiring Stage"},
		Rows:    make([][]string, 0, len(candidates)),
	}
	for _, c := range candidates {
		eval := eligibility.Evaluate(c, courses)
		dataset.Rows = append(dataset.Rows, []string{
			c.Name,
			c.Email,
			c.Subject,
			trackName(c.TrackID),
			c.Emirate,
			string(c.Status),
			fmt.Sprintf("%d", len(c.Enrollments)),
			formatAverage(eval.Average),
			yesNo(eval.Eligible),
			string(c.Hiring.Stage),
		})
	}
	return dataset
}

// CandidateDocument builds the progress sheet of one candidate.
func CandidateDocument(c models.Candidate, courses []models.Course, generatedAt time.Time) export.Document {
	eval := eligibility.Evaluate(c, courses)

	gpa := "-"
	if c.GPA != nil {
		gpa = fmt.Sprintf("%.2f", *c.GPA)
	}
	doc := export.Document{
		Title:    c.Name,
		Subtitle: "Candidate progress report",
		Fields: []export.Field{
			{Label: "Email", Value: c.Email},
			{Label: "Subject", Value: c.Subject},
			{Label: "Track", Value: trackName(c.TrackID)},
			{Label: "GPA", Value: gpa},
			{Label: "Emirate", Value: c.Emirate},
			{Label: "Status", Value: string(c.Status)},
		},
	}

	enrollments := export.Dataset{Headers: []string{"Course", "Cohort", "Start", "End", "Status", "Assigned By"}}
	for _, e := range c.Enrollments {
		enrollments.Rows = append(enrollments.Rows, []string{e.Code, e.Cohort, e.StartDate, e.EndDate, string(e.Status), e.AssignedBy})
	}

	results := export.Dataset{Headers: []string{"Course", "Title", "Required", "Score", "Threshold", "Passed", "Date"}}
	for _, r := range c.CourseResults {
		title, required, threshold := "", "No", "-"
		if course := findCourse(courses, r.Code); course != nil {
			title = course.Title
			required = yesNo(course.RequiredFor(c.TrackID))
			threshold = fmt.Sprintf("%.0f", course.Threshold())
		}
		score := "-"
		if r.Score != nil {
			score = fmt.Sprintf("%.1f", *r.Score)
		}
		results.Rows = append(results.Rows, []string{r.Code, title, required, score, threshold, yesNo(r.Pass), r.Date})
	}

	doc.Sections = []export.Section{
		{Heading: "Enrollments", Table: enrollments, Empty: "No enrollments yet."},
		{Heading: "Course Results", Table: results, Empty: "No results recorded."},
	}

	eligible := "Yes"
	if !eval.Eligible {
		eligible = "No"
		if eval.Reason != "" {
			eligible += " (" + eval.Reason + ")"
		}
	}
	doc.Footer = []export.Field{
		{Label: "Final Average", Value: formatAverage(eval.Average)},
		{Label: "Track Minimum", Value: fmt.Sprintf("%.0f", eval.MinAverage)},
		{Label: "Graduation Eligible", Value: eligible},
		{Label: "Generated", Value: generatedAt.Format("2006-01-02 15:04 MST")},
	}
	if len(eval.Missing) > 0 {
		doc.Footer = append(doc.Footer, export.Field{Label: "Missing Results", Value: strings.Join(eval.Missing, ", ")})
	}
	if len(eval.Failed) > 0 {
		doc.Footer = append(doc.Footer, export.Field{Label: "Failed Courses", Value: strings.Join(eval.Failed, ", ")})
	}
	return doc
}

func trackName(id string) string {
	if track, ok := models.TrackByID(id); ok {
		return track.Name
	}
	return "-"
}

func formatAverage(avg *float64) string {
	if avg == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *avg)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func slug(name, fallback string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}
