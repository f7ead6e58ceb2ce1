package models

import "time"

// User represents an application user stored in the users table. Teacher
// role users double as applicants and carry the profile fields copied into a
// candidate on acceptance.
type User struct {
	ID              string           `db:"id" json:"id"`
	Email           string           `db:"email" json:"email"`
	PasswordHash    string           `db:"password_hash" json:"-"`
	Name            string           `db:"name" json:"name"`
	Role            UserRole         `db:"role" json:"role"`
	Active          bool             `db:"active" json:"active"`
	Subject         string           `db:"subject" json:"subject,omitempty"`
	GPA             *float64         `db:"gpa" json:"gpa,omitempty"`
	Emirate         string           `db:"emirate" json:"emirate,omitempty"`
	Mobile          string           `db:"mobile" json:"mobile,omitempty"`
	NationalID      string           `db:"national_id" json:"nationalId,omitempty"`
	ApplicantStatus *ApplicantStatus `db:"applicant_status" json:"applicantStatus,omitempty"`
	LastLogin       *time.Time       `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updatedAt"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role   *UserRole
	Search string
}
