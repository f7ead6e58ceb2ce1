package handler

import (
	"context"
	"io"
	"strings"

	"github.com/noah-isme/trainee-tracker-api/internal/eligibility"
	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
)

type fakeTokens map[string]*models.JWTClaims

func (f fakeTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := f[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type fakeAuthSrv struct {
	login       *models.LoginResponse
	err         error
	lastLogin   models.LoginRequest
	lastEmail   string
	lastActor   service.Actor
	lastChange  models.ChangePasswordRequest
	registerErr error
}

func (f *fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.lastLogin = req
	return f.login, f.err
}

func (f *fakeAuthSrv) Register(_ context.Context, req models.RegisterRequest) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "u-new", Email: req.Email, Name: req.Name, Role: models.RoleTeacher}, nil
}

func (f *fakeAuthSrv) ChangePassword(_ context.Context, actor service.Actor, email string, req models.ChangePasswordRequest) error {
	f.lastActor = actor
	f.lastEmail = email
	f.lastChange = req
	return f.err
}

type fakeUserSrv struct {
	users      []models.User
	lastFilter models.UserFilter
	deleted    string
}

func (f *fakeUserSrv) List(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	f.lastFilter = filter
	return f.users, nil
}

func (f *fakeUserSrv) Get(_ context.Context, id string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
}

func (f *fakeUserSrv) Create(_ context.Context, _ service.Actor, req service.CreateUserRequest) (*models.User, error) {
	return &models.User{ID: "u-2", Email: req.Email, Name: req.Name, Role: models.UserRole(req.Role)}, nil
}

func (f *fakeUserSrv) Update(_ context.Context, _ service.Actor, id string, req service.UpdateUserRequest) (*models.User, error) {
	return &models.User{ID: id, Name: req.Name, Role: models.UserRole(req.Role)}, nil
}

func (f *fakeUserSrv) Delete(_ context.Context, _ service.Actor, id string) error {
	f.deleted = id
	return nil
}

type fakeCandidateSrv struct {
	candidates []models.Candidate
	lastFilter models.CandidateFilter
	lastStatus string
	lastActor  service.Actor
	lastCreate service.CandidateRequest
	lastBulk   []service.CandidateRequest
	lastCode   string
	createErr  error
	deleted    string
}

func (f *fakeCandidateSrv) List(_ context.Context, filter models.CandidateFilter) ([]models.Candidate, error) {
	f.lastFilter = filter
	return f.candidates, nil
}

func (f *fakeCandidateSrv) ListByStatus(_ context.Context, raw string) ([]models.Candidate, error) {
	f.lastStatus = raw
	if _, err := models.ParseCandidateStatus(raw); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown candidate status")
	}
	return f.candidates, nil
}

func (f *fakeCandidateSrv) Get(_ context.Context, id string) (*models.Candidate, error) {
	return f.find(id)
}

func (f *fakeCandidateSrv) Create(_ context.Context, req service.CandidateRequest) (*models.Candidate, error) {
	f.lastCreate = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Candidate{ID: "c-new", Email: req.Email, Name: req.Name, Status: models.StatusImported}, nil
}

func (f *fakeCandidateSrv) BulkCreate(_ context.Context, reqs []service.CandidateRequest) (*service.BulkCreateResult, error) {
	f.lastBulk = reqs
	return &service.BulkCreateResult{Created: len(reqs)}, nil
}

func (f *fakeCandidateSrv) Update(_ context.Context, id string, _ service.CandidateRequest) (*models.Candidate, error) {
	return f.find(id)
}

func (f *fakeCandidateSrv) Delete(_ context.Context, actor service.Actor, id string) error {
	f.lastActor = actor
	f.deleted = id
	return nil
}

func (f *fakeCandidateSrv) AssignEnrollment(_ context.Context, actor service.Actor, id string, req service.EnrollmentRequest) (*models.Candidate, error) {
	f.lastActor = actor
	f.lastCode = req.Code
	return f.find(id)
}

func (f *fakeCandidateSrv) UpdateEnrollment(_ context.Context, id, code string, _ service.EnrollmentUpdateRequest) (*models.Candidate, error) {
	f.lastCode = code
	return f.find(id)
}

func (f *fakeCandidateSrv) RemoveEnrollment(_ context.Context, id, code string) (*models.Candidate, error) {
	f.lastCode = code
	return f.find(id)
}

func (f *fakeCandidateSrv) RecordResult(_ context.Context, id, code string, _ service.ResultRequest) (*models.Candidate, error) {
	f.lastCode = code
	return f.find(id)
}

func (f *fakeCandidateSrv) AddNote(_ context.Context, actor service.Actor, id string, _ service.NoteRequest) (*models.Candidate, error) {
	f.lastActor = actor
	return f.find(id)
}

func (f *fakeCandidateSrv) SetStatus(_ context.Context, actor service.Actor, id string, _ service.StatusRequest) (*models.Candidate, error) {
	f.lastActor = actor
	return f.find(id)
}

func (f *fakeCandidateSrv) UpdateHiring(_ context.Context, id string, _ service.HiringRequest) (*models.Candidate, error) {
	return f.find(id)
}

func (f *fakeCandidateSrv) Eligibility(_ context.Context, id string) (*eligibility.Evaluation, error) {
	if _, err := f.find(id); err != nil {
		return nil, err
	}
	return &eligibility.Evaluation{Eligible: false, TrackID: "t1", Missing: []string{"SCI201"}}, nil
}

func (f *fakeCandidateSrv) find(id string) (*models.Candidate, error) {
	for i := range f.candidates {
		if f.candidates[i].ID == id {
			return &f.candidates[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
}

type fakeCourseSrv struct {
	includeInactive bool
}

func (f *fakeCourseSrv) List(_ context.Context, includeInactive bool) ([]models.Course, error) {
	f.includeInactive = includeInactive
	return []models.Course{{Code: "MATH101", Title: "Mathematics", Active: true}}, nil
}

func (f *fakeCourseSrv) Get(_ context.Context, code string) (*models.Course, error) {
	return &models.Course{Code: code}, nil
}

func (f *fakeCourseSrv) Create(_ context.Context, req service.CourseRequest) (*models.Course, error) {
	return &models.Course{Code: strings.ToUpper(req.Code), Title: req.Title}, nil
}

func (f *fakeCourseSrv) Update(_ context.Context, code string, req service.CourseRequest) (*models.Course, error) {
	return &models.Course{Code: code, Title: req.Title}, nil
}

func (f *fakeCourseSrv) Delete(context.Context, string) error { return nil }

type fakeMentorSrv struct{}

func (fakeMentorSrv) List(context.Context) ([]models.Mentor, error) { return []models.Mentor{}, nil }

func (fakeMentorSrv) Get(_ context.Context, id string) (*models.Mentor, error) {
	return &models.Mentor{ID: id}, nil
}

func (fakeMentorSrv) Create(_ context.Context, req service.MentorRequest) (*models.Mentor, error) {
	return &models.Mentor{ID: "m-1", Name: req.Name}, nil
}

func (fakeMentorSrv) Update(_ context.Context, id string, req service.MentorRequest) (*models.Mentor, error) {
	return &models.Mentor{ID: id, Name: req.Name}, nil
}

func (fakeMentorSrv) Delete(context.Context, string) error { return nil }

type fakeApplicantSrv struct {
	accepted string
}

func (f *fakeApplicantSrv) List(context.Context) ([]models.User, error) { return []models.User{}, nil }

func (f *fakeApplicantSrv) Accept(_ context.Context, _ service.Actor, email string) (*models.Candidate, error) {
	f.accepted = email
	return &models.Candidate{ID: "c-9", Email: email, Status: models.StatusImported}, nil
}

func (f *fakeApplicantSrv) Reject(_ context.Context, _ service.Actor, email string) (*models.User, error) {
	return &models.User{Email: email}, nil
}

type fakeGraduationSrv struct {
	approveErr error
	forced     string
}

func (f *fakeGraduationSrv) Review(context.Context) (*service.GraduationReview, error) {
	return &service.GraduationReview{
		Eligible:   []service.ReviewEntry{{Candidate: models.Candidate{ID: "c-1"}}},
		Exceptions: []service.ReviewEntry{},
	}, nil
}

func (f *fakeGraduationSrv) Approve(_ context.Context, _ service.Actor, id string) (*models.Candidate, error) {
	if f.approveErr != nil {
		return nil, f.approveErr
	}
	return &models.Candidate{ID: id, Status: models.StatusGraduated}, nil
}

func (f *fakeGraduationSrv) ForceApprove(_ context.Context, _ service.Actor, id string) (*models.Candidate, error) {
	f.forced = id
	return &models.Candidate{ID: id, Status: models.StatusGraduated}, nil
}

func (f *fakeGraduationSrv) ApproveAll(context.Context, service.Actor) (*service.ApproveAllResult, error) {
	return &service.ApproveAllResult{Applied: 2}, nil
}

type fakeImportSrv struct {
	filename  string
	content   string
	actor     service.Actor
	intakeErr error
}

func (f *fakeImportSrv) read(name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.filename = name
	f.content = string(data)
	return nil
}

func (f *fakeImportSrv) report(kind string, committed bool) *service.EnrollmentImportReport {
	return &service.EnrollmentImportReport{Kind: kind, Committed: committed, Summary: service.ImportSummary{Total: 1, Add: 1}}
}

func (f *fakeImportSrv) PreviewEnrollments(_ context.Context, name string, r io.Reader) (*service.EnrollmentImportReport, error) {
	if err := f.read(name, r); err != nil {
		return nil, err
	}
	return f.report(service.ImportKindEnrollments, false), nil
}

func (f *fakeImportSrv) CommitEnrollments(_ context.Context, actor service.Actor, name string, r io.Reader) (*service.EnrollmentImportReport, error) {
	f.actor = actor
	if err := f.read(name, r); err != nil {
		return nil, err
	}
	return f.report(service.ImportKindEnrollments, true), nil
}

func (f *fakeImportSrv) PreviewResults(_ context.Context, name string, r io.Reader) (*service.EnrollmentImportReport, error) {
	if err := f.read(name, r); err != nil {
		return nil, err
	}
	return f.report(service.ImportKindResults, false), nil
}

func (f *fakeImportSrv) CommitResults(_ context.Context, actor service.Actor, name string, r io.Reader) (*service.EnrollmentImportReport, error) {
	f.actor = actor
	if err := f.read(name, r); err != nil {
		return nil, err
	}
	return f.report(service.ImportKindResults, true), nil
}

func (f *fakeImportSrv) PreviewIntake(_ context.Context, name string, r io.Reader) (*service.IntakeReport, error) {
	if err := f.read(name, r); err != nil {
		return nil, err
	}
	return &service.IntakeReport{Valid: 1}, nil
}

func (f *fakeImportSrv) CommitIntake(_ context.Context, actor service.Actor, name string, r io.Reader) (*service.IntakeReport, error) {
	f.actor = actor
	if err := f.read(name, r); err != nil {
		return nil, err
	}
	if f.intakeErr != nil {
		return nil, f.intakeErr
	}
	return &service.IntakeReport{Committed: true, Valid: 1, Created: 1}, nil
}

type fakeDashboardSrv struct {
	summary *service.DashboardSummary
	err     error
}

func (f *fakeDashboardSrv) Summary(context.Context) (*service.DashboardSummary, error) {
	return f.summary, f.err
}

type fakeReportSrv struct {
	pdf        []byte
	lastFormat string
	lastFilter models.CandidateFilter
	download   *service.ReportDownload
	err        error
}

func (f *fakeReportSrv) CandidatePDF(_ context.Context, id string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.pdf, "candidate-" + id + ".pdf", nil
}

func (f *fakeReportSrv) ExportCandidates(_ context.Context, format string, filter models.CandidateFilter) (*service.ExportResult, error) {
	f.lastFormat = format
	f.lastFilter = filter
	return &service.ExportResult{Format: format, Rows: 2, Token: "tok", URL: "/api/reports/download/tok"}, nil
}

func (f *fakeReportSrv) ResolveDownload(token string) (*service.ReportDownload, error) {
	if f.download == nil || token != "tok" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	return f.download, nil
}

type fakeAuditReader struct {
	logs  []models.AuditLog
	limit int
}

func (f *fakeAuditReader) List(_ context.Context, limit int) ([]models.AuditLog, error) {
	f.limit = limit
	return f.logs, nil
}

type fakeAuditWriter struct {
	entries []*models.AuditLog
}

func (f *fakeAuditWriter) Create(_ context.Context, log *models.AuditLog) error {
	f.entries = append(f.entries, log)
	return nil
}
