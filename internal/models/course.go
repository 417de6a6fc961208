package models

import (
	"time"
)

// Course belongs to exactly one category and one teacher. A teacher cannot
// have two courses with the same title; the composite index backs that up
// at the storage level.
type Course struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"type:varchar(200);not null;uniqueIndex:idx_courses_title_teacher" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	CategoryID  uint       `gorm:"not null;index" json:"category_id"`
	TeacherID   uint       `gorm:"not null;uniqueIndex:idx_courses_title_teacher" json:"teacher_id"`
	Duration    string     `gorm:"type:varchar(50)" json:"duration"` // e.g. "8 weeks", "36 hours"
	StartDate   *time.Time `json:"start_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Foreign key relationships
	Category    Category     `gorm:"foreignKey:CategoryID" json:"-"`
	Teacher     User         `gorm:"foreignKey:TeacherID" json:"-"`
	Enrollments []Enrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}
