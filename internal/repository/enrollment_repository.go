package repository

import (
	"errors"

	"github.com/Baaaki/course-hub/internal/apperr"
	"github.com/Baaaki/course-hub/internal/models"
	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: tx}
}

func (r *EnrollmentRepository) Create(enrollment *models.Enrollment) error {
	err := r.db.Create(enrollment).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("user already enrolled in this course")
	}
	return err
}

// GetByID retrieves an enrollment with its user and course preloaded for
// joined display fields.
func (r *EnrollmentRepository) GetByID(id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.Preload("User").Preload("Course").First(&enrollment, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &enrollment, nil
}

func (r *EnrollmentRepository) GetAll() ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.
		Preload("User").
		Preload("Course").
		Order("created_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) GetByUser(userID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.
		Preload("User").
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) GetByCourse(courseID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.
		Preload("User").
		Preload("Course").
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

// ExistsByUserAndCourse reports whether an enrollment already links the pair,
// regardless of status.
func (r *EnrollmentRepository) ExistsByUserAndCourse(userID, courseID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *EnrollmentRepository) CountByCourseAndStatus(courseID uint, status models.EnrollmentStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, status).
		Count(&count).Error
	return count, err
}

func (r *EnrollmentRepository) Update(enrollment *models.Enrollment) error {
	return r.db.Save(enrollment).Error
}

func (r *EnrollmentRepository) Delete(id uint) error {
	return r.db.Delete(&models.Enrollment{}, id).Error
}

// DeleteByUser removes all enrollments belonging to a user (used when the
// user itself is deleted).
func (r *EnrollmentRepository) DeleteByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Enrollment{}).Error
}
