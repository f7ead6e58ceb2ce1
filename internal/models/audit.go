package models

import (
	"database/sql/driver"
	"time"
)

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin                  = "LOGIN"
	AuditActionRegister               = "REGISTER"
	AuditActionUserCreate             = "USER_CREATE"
	AuditActionUserUpdate             = "USER_UPDATE"
	AuditActionUserDelete             = "USER_DELETE"
	AuditActionPasswordChange         = "PASSWORD_CHANGE"
	AuditActionCandidateDelete        = "CANDIDATE_DELETE"
	AuditActionCandidateStatus        = "CANDIDATE_STATUS"
	AuditActionApplicantAccept        = "APPLICANT_ACCEPT"
	AuditActionApplicantReject        = "APPLICANT_REJECT"
	AuditActionGraduationApprove      = "GRADUATION_APPROVE"
	AuditActionGraduationForceApprove = "GRADUATION_FORCE_APPROVE"
	AuditActionGraduationApproveAll   = "GRADUATION_APPROVE_ALL"
	AuditActionImportCommit           = "IMPORT_COMMIT"
	AuditActionReportExport           = "REPORT_EXPORT"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string       `db:"id" json:"id"`
	UserID     *string      `db:"user_id" json:"userId,omitempty"`
	Actor      string       `db:"actor" json:"actor"`
	Action     string       `db:"action" json:"action"`
	Resource   string       `db:"resource" json:"resource"`
	ResourceID *string      `db:"resource_id" json:"resourceId,omitempty"`
	Details    AuditDetails `db:"details" json:"details,omitempty"`
	IPAddress  string       `db:"ip_address" json:"ipAddress"`
	UserAgent  string       `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
}

// AuditDetails carries free-form context for an audit entry.
type AuditDetails map[string]interface{}

// Value implements driver.Valuer.
func (d AuditDetails) Value() (driver.Value, error) { return jsonValue(d, "{}") }

// Scan implements sql.Scanner.
func (d *AuditDetails) Scan(src interface{}) error { return jsonScan(src, d) }
