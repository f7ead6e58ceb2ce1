package models

import (
	"fmt"
	"strings"
)

// CandidateStatus is the pipeline stage of a candidate.
type CandidateStatus string

// Pipeline stages in order, followed by exception states.
const (
	StatusImported         CandidateStatus = "Imported"
	StatusEligible         CandidateStatus = "Eligible"
	StatusAssigned         CandidateStatus = "Assigned"
	StatusInTraining       CandidateStatus = "In Training"
	StatusCoursesCompleted CandidateStatus = "Courses Completed"
	StatusAssessed         CandidateStatus = "Assessed"
	StatusGraduated        CandidateStatus = "Graduated"
	StatusReadyForHiring   CandidateStatus = "Ready for Hiring"
	StatusHiredClosed      CandidateStatus = "Hired/Closed"

	StatusOnHold    CandidateStatus = "On Hold"
	StatusWithdrawn CandidateStatus = "Withdrawn"
	StatusRejected  CandidateStatus = "Rejected"
)

// CandidateStatuses lists every status, pipeline stages first.
var CandidateStatuses = []CandidateStatus{
	StatusImported,
	StatusEligible,
	StatusAssigned,
	StatusInTraining,
	StatusCoursesCompleted,
	StatusAssessed,
	StatusGraduated,
	StatusReadyForHiring,
	StatusHiredClosed,
	StatusOnHold,
	StatusWithdrawn,
	StatusRejected,
}

// ParseCandidateStatus matches a status case-insensitively.
func ParseCandidateStatus(raw string) (CandidateStatus, error) {
	raw = strings.TrimSpace(raw)
	for _, status := range CandidateStatuses {
		if strings.EqualFold(string(status), raw) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown candidate status %q", raw)
}

// Valid reports whether s is a known status.
func (s CandidateStatus) Valid() bool {
	_, err := ParseCandidateStatus(string(s))
	return err == nil
}

// Exception reports whether s is outside the ordered pipeline.
func (s CandidateStatus) Exception() bool {
	switch s {
	case StatusOnHold, StatusWithdrawn, StatusRejected:
		return true
	}
	return false
}

// AtOrPast reports whether s has reached the pipeline stage other. Exception
// states are never at or past a stage.
func (s CandidateStatus) AtOrPast(other CandidateStatus) bool {
	if s.Exception() || other.Exception() {
		return s == other
	}
	return stageIndex(s) >= stageIndex(other)
}

func stageIndex(s CandidateStatus) int {
	for i, status := range CandidateStatuses {
		if status == s {
			return i
		}
	}
	return -1
}

// EnrollmentStatus is the lifecycle of one course assignment.
type EnrollmentStatus string

// Enrollment lifecycle values.
const (
	EnrollmentEnrolled   EnrollmentStatus = "Enrolled"
	EnrollmentInProgress EnrollmentStatus = "In Progress"
	EnrollmentCompleted  EnrollmentStatus = "Completed"
	EnrollmentWithdrawn  EnrollmentStatus = "Withdrawn"
)

// ParseEnrollmentStatus matches an enrollment status case-insensitively.
func ParseEnrollmentStatus(raw string) (EnrollmentStatus, error) {
	raw = strings.TrimSpace(raw)
	for _, status := range []EnrollmentStatus{EnrollmentEnrolled, EnrollmentInProgress, EnrollmentCompleted, EnrollmentWithdrawn} {
		if strings.EqualFold(string(status), raw) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown enrollment status %q", raw)
}

// Rank orders statuses by progress; Withdrawn ranks with Enrolled.
func (s EnrollmentStatus) Rank() int {
	switch s {
	case EnrollmentInProgress:
		return 1
	case EnrollmentCompleted:
		return 2
	default:
		return 0
	}
}

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "Admin"
	RoleStaff   UserRole = "Staff"
	RoleMentor  UserRole = "Mentor"
	RoleTeacher UserRole = "Teacher"
)

// ParseUserRole matches a role case-insensitively.
func ParseUserRole(raw string) (UserRole, error) {
	raw = strings.TrimSpace(raw)
	for _, role := range []UserRole{RoleAdmin, RoleStaff, RoleMentor, RoleTeacher} {
		if strings.EqualFold(string(role), raw) {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// ApplicantStatus tracks a self-registered teacher's application.
type ApplicantStatus string

const (
	ApplicantPending  ApplicantStatus = "Pending"
	ApplicantAccepted ApplicantStatus = "Accepted"
	ApplicantRejected ApplicantStatus = "Rejected"
)

// HiringStage tracks post-graduation placement.
type HiringStage string

const (
	HiringNone        HiringStage = ""
	HiringReady       HiringStage = "Ready"
	HiringInterviewed HiringStage = "Interviewed"
	HiringOffered     HiringStage = "Offered"
	HiringHired       HiringStage = "Hired"
)

// ParseHiringStage matches a hiring stage case-insensitively.
func ParseHiringStage(raw string) (HiringStage, error) {
	raw = strings.TrimSpace(raw)
	for _, stage := range []HiringStage{HiringReady, HiringInterviewed, HiringOffered, HiringHired} {
		if strings.EqualFold(string(stage), raw) {
			return stage, nil
		}
	}
	return "", fmt.Errorf("unknown hiring stage %q", raw)
}
