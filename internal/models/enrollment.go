package models

import "time"

// EnrollmentStatus represents the lifecycle of a subject enrollment.
type EnrollmentStatus string

// Statuses eligible for IDP processing. Every other status is excluded at query time.
const (
	EnrollmentStatusConfirmed EnrollmentStatus = "confirmed"
	EnrollmentStatusGraduated EnrollmentStatus = "graduated"
)

// Enrollment captures a student's registration to a subject.
type Enrollment struct {
	ID             int64            `db:"id" json:"id"`
	StudentID      int64            `db:"student_id" json:"student_id"`
	SubjectID      int64            `db:"subject_id" json:"subject_id"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	StartDate      *time.Time       `db:"start_date" json:"start_date,omitempty"`
	GraduationDate *time.Time       `db:"graduation_date" json:"graduation_date,omitempty"`
	LastLogin      *time.Time       `db:"last_login" json:"last_login,omitempty"`
}

// IsGraduated reports whether the enrollment finished the subject.
func (e Enrollment) IsGraduated() bool {
	return e.Status == EnrollmentStatusGraduated
}
