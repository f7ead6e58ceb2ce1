package service

import (
	"context"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/tabular"
)

var intakeRequiredColumns = []string{"name", "subject", "gpa", "emirate", "email", "mobile"}

var nationalIDColumns = []string{"national_id", "nationalid", "emirates_id"}

// IntakeRow is one validated intake line.
type IntakeRow struct {
	Line       int      `json:"line"`
	Name       string   `json:"name"`
	Subject    string   `json:"subject"`
	TrackID    string   `json:"trackId"`
	GPA        *float64 `json:"gpa"`
	Emirate    string   `json:"emirate"`
	Email      string   `json:"email"`
	Mobile     string   `json:"mobile"`
	NationalID string   `json:"nationalId,omitempty"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
}

// IntakeReport is the outcome of an intake preview or commit.
type IntakeReport struct {
	Committed bool        `json:"committed"`
	Rows      []IntakeRow `json:"rows"`
	Valid     int         `json:"valid"`
	Errors    int         `json:"errors"`
	Warnings  int         `json:"warnings"`
	Created   int         `json:"created"`
}

// Blocked reports whether any row has an error.
func (r *IntakeReport) Blocked() bool {
	return r.Errors > 0
}

// PreviewIntake validates a new-candidate upload without writing.
func (s *ImportService) PreviewIntake(ctx context.Context, filename string, r io.Reader) (*IntakeReport, error) {
	return s.intakeReport(ctx, filename, r)
}

// CommitIntake creates every row as an Imported candidate in one batch, or
// nothing at all when any row has an error.
func (s *ImportService) CommitIntake(ctx context.Context, actor Actor, filename string, r io.Reader) (*IntakeReport, error) {
	report, err := s.intakeReport(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	if report.Blocked() {
		return nil, appErrors.WithDetails(appErrors.ErrImportBlocked, "intake file has errors, nothing was imported", report)
	}

	batch := make([]*models.Candidate, 0, len(report.Rows))
	for _, row := range report.Rows {
		batch = append(batch, &models.Candidate{
			Email:         row.Email,
			Name:          row.Name,
			Subject:       row.Subject,
			TrackID:       row.TrackID,
			GPA:           row.GPA,
			Emirate:       row.Emirate,
			Mobile:        row.Mobile,
			NationalID:    row.NationalID,
			Status:        models.StatusImported,
			Enrollments:   models.Enrollments{},
			CourseResults: models.CourseResults{},
			Notes:         models.Notes{},
		})
	}
	if len(batch) > 0 {
		if err := s.candidates.CreateMany(ctx, batch); err != nil {
			return nil, repoError(err, "", "a candidate in the file already exists", "failed to import candidates")
		}
	}
	report.Committed = true
	report.Created = len(batch)

	s.metrics.RecordImportRows(ImportKindIntake, "create", len(batch))
	s.audit.record(ctx, actor, models.AuditActionImportCommit, "import", "", models.AuditDetails{
		"kind":    ImportKindIntake,
		"file":    filename,
		"created": len(batch),
	})
	s.logger.Info("intake committed", zap.Int("created", len(batch)))
	return report, nil
}

func (s *ImportService) intakeReport(ctx context.Context, filename string, r io.Reader) (*IntakeReport, error) {
	header, rows, err := parseUpload(filename, r)
	if err != nil {
		return nil, err
	}
	missing := make([]string, 0)
	for _, col := range intakeRequiredColumns {
		if !tabular.Has(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "missing required columns: "+strings.Join(missing, ", "), missing)
	}

	existing, err := s.candidates.List(ctx, models.CandidateFilter{})
	if err != nil {
		return nil, internalError(err, "failed to list candidates")
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[strings.ToLower(c.Email)] = true
	}

	return s.ValidateIntakeRows(rows, known), nil
}

// ValidateIntakeRows checks required fields and formats, and flags
// duplicates within the file or against existing candidate emails. GPA
// problems are warnings only.
func (s *ImportService) ValidateIntakeRows(rows []tabular.Row, existingEmails map[string]bool) *IntakeReport {
	report := &IntakeReport{Rows: make([]IntakeRow, 0, len(rows))}
	seenEmail := make(map[string]int)
	seenNationalID := make(map[string]int)

	for _, raw := range rows {
		if raw.Blank() {
			continue
		}
		row := IntakeRow{
			Line:       raw.Line,
			Name:       raw.Get("name"),
			Subject:    raw.Get("subject"),
			Emirate:    raw.Get("emirate"),
			Email:      models.NormalizeEmail(raw.Get("email")),
			Mobile:     compactPhone(raw.Get("mobile")),
			NationalID: raw.Get(nationalIDColumns...),
			Errors:     []string{},
			Warnings:   []string{},
		}
		row.TrackID = models.SubjectTrack(row.Subject)

		for _, col := range intakeRequiredColumns {
			if raw.Get(col) == "" {
				row.Errors = append(row.Errors, col+" is required")
			}
		}
		if row.Email != "" && s.validator.Var(row.Email, "email") != nil {
			row.Errors = append(row.Errors, "email is not valid")
		}
		if row.Mobile != "" && !ValidUAEMobile(row.Mobile) {
			row.Errors = append(row.Errors, "mobile is not a valid UAE number")
		}
		if gpa := raw.Get("gpa"); gpa != "" {
			value, err := strconv.ParseFloat(gpa, 64)
			switch {
			case err != nil:
				row.Warnings = append(row.Warnings, "gpa is not a number")
			case value < 0 || value > 4:
				row.GPA = &value
				row.Warnings = append(row.Warnings, "gpa outside 0.0-4.0")
			default:
				row.GPA = &value
			}
		}
		if row.Subject != "" && row.TrackID == "" {
			row.Warnings = append(row.Warnings, "subject does not map to a track")
		}

		if row.Email != "" {
			if line, ok := seenEmail[row.Email]; ok {
				row.Errors = append(row.Errors, "duplicate email in file (line "+strconv.Itoa(line)+")")
			} else {
				seenEmail[row.Email] = row.Line
			}
			if existingEmails[row.Email] {
				row.Errors = append(row.Errors, "email already belongs to a candidate")
			}
		}
		if row.NationalID != "" {
			if line, ok := seenNationalID[row.NationalID]; ok {
				row.Errors = append(row.Errors, "duplicate national id in file (line "+strconv.Itoa(line)+")")
			} else {
				seenNationalID[row.NationalID] = row.Line
			}
		}

		if len(row.Errors) > 0 {
			report.Errors++
		} else {
			report.Valid++
		}
		if len(row.Warnings) > 0 {
			report.Warnings++
		}
		report.Rows = append(report.Rows, row)
	}
	return report
}
