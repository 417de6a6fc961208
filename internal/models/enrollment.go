package models

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentCancelled EnrollmentStatus = "CANCELLED"
)

// Valid reports whether s is one of the known enrollment statuses.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentActive, EnrollmentCompleted, EnrollmentCancelled:
		return true
	}
	return false
}

// Enrollment links one user to one course. At most one row may exist per
// (user, course) pair regardless of status; the composite index backs that
// up at the storage level.
type Enrollment struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"not null;uniqueIndex:idx_enrollments_user_course" json:"user_id"`
	CourseID   uint             `gorm:"not null;uniqueIndex:idx_enrollments_user_course" json:"course_id"`
	EnrollDate time.Time        `gorm:"not null" json:"enroll_date"`
	Status     EnrollmentStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// Foreign key relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID" json:"-"`
}

func (e *Enrollment) IsActive() bool {
	return e.Status == EnrollmentActive
}
