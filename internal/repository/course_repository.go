package repository

import (
	"errors"

	"github.com/Baaaki/course-hub/internal/apperr"
	"github.com/Baaaki/course-hub/internal/models"
	"gorm.io/gorm"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{db: tx}
}

func (r *CourseRepository) Create(course *models.Course) error {
	err := r.db.Create(course).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("teacher already has a course titled '%s'", course.Title)
	}
	return err
}

// GetByID retrieves a course with its category and teacher preloaded for
// denormalized views.
func (r *CourseRepository) GetByID(id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.Preload("Category").Preload("Teacher").First(&course, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &course, nil
}

func (r *CourseRepository) GetAll() ([]models.Course, error) {
	var courses []models.Course
	err := r.db.
		Preload("Category").
		Preload("Teacher").
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) GetByTeacher(teacherID uint) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.
		Preload("Category").
		Preload("Teacher").
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) GetByCategory(categoryID uint) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.
		Preload("Category").
		Preload("Teacher").
		Where("category_id = ?", categoryID).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

// ExistsByTitleAndTeacher reports whether the teacher already has a course
// with the given title.
func (r *CourseRepository) ExistsByTitleAndTeacher(title string, teacherID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Course{}).
		Where("title = ? AND teacher_id = ?", title, teacherID).
		Count(&count).Error
	return count > 0, err
}

// CountByCategory returns the live number of courses referencing a category.
func (r *CourseRepository) CountByCategory(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Course{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func (r *CourseRepository) Update(course *models.Course) error {
	err := r.db.Save(course).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("teacher already has a course titled '%s'", course.Title)
	}
	return err
}

// Delete removes a course and its enrollments. Enrollment removal is explicit
// so the cascade does not depend on driver-level foreign key enforcement.
func (r *CourseRepository) Delete(id uint) error {
	if err := r.db.Where("course_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Course{}, id).Error
}
