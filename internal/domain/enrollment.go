package domain

import "time"

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

type EnrollmentSource string

const (
	SourcePurchase     EnrollmentSource = "purchase"
	SourceSubscription EnrollmentSource = "subscription"
	SourceGift         EnrollmentSource = "gift"
	SourceAdmin        EnrollmentSource = "admin"
)

// Enrollment grants a user access to a course. Created server-side only.
type Enrollment struct {
	ID         string           `json:"id" validate:"required"`
	UserID     string           `json:"user_id"`
	CourseID   string           `json:"course_id" validate:"required"`
	Status     EnrollmentStatus `json:"status" validate:"omitempty,oneof=active completed cancelled"`
	Source     EnrollmentSource `json:"source" validate:"omitempty,oneof=purchase subscription gift admin"`
	EnrolledAt *time.Time       `json:"enrolled_at,omitempty"`
	Course     *Course          `json:"course,omitempty"`
}

// GrantsAccess reports whether the enrollment still opens the course.
func (e Enrollment) GrantsAccess() bool {
	return e.Status == EnrollmentActive || e.Status == EnrollmentCompleted
}
