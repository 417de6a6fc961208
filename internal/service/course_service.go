package service

import (
	"encoding/json"
	"time"

	"github.com/Baaaki/course-hub/internal/apperr"
	"github.com/Baaaki/course-hub/internal/cache"
	"github.com/Baaaki/course-hub/internal/models"
	"github.com/Baaaki/course-hub/internal/repository"
	"github.com/Baaaki/course-hub/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CourseView is the hydrated read shape: category name and teacher login are
// denormalized for display, never stored.
type CourseView struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CategoryID   uint       `json:"category_id"`
	CategoryName string     `json:"category_name"`
	TeacherID    uint       `json:"teacher_id"`
	TeacherLogin string     `json:"teacher_login"`
	Duration     string     `json:"duration"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func NewCourseView(course *models.Course) CourseView {
	return CourseView{
		ID:           course.ID,
		Title:        course.Title,
		Description:  course.Description,
		CategoryID:   course.CategoryID,
		CategoryName: course.Category.Name,
		TeacherID:    course.TeacherID,
		TeacherLogin: course.Teacher.Login,
		Duration:     course.Duration,
		StartDate:    course.StartDate,
		CreatedAt:    course.CreatedAt,
		UpdatedAt:    course.UpdatedAt,
	}
}

func newCourseViews(courses []models.Course) []CourseView {
	views := make([]CourseView, 0, len(courses))
	for i := range courses {
		views = append(views, NewCourseView(&courses[i]))
	}
	return views
}

type CreateCourseRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	CategoryID  uint       `json:"category_id" binding:"required"`
	TeacherID   *uint      `json:"teacher_id"`
	Duration    string     `json:"duration" binding:"required"`
	StartDate   *time.Time `json:"start_date" binding:"required"`
}

type UpdateCourseRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	CategoryID  *uint      `json:"category_id"`
	TeacherID   *uint      `json:"teacher_id"`
	Duration    *string    `json:"duration"`
	StartDate   *time.Time `json:"start_date"`
}

type CourseService struct {
	db         *gorm.DB
	courses    *repository.CourseRepository
	categories *repository.CategoryRepository
	users      *repository.UserRepository
	catalog    cache.CatalogCache
}

func NewCourseService(
	db *gorm.DB,
	courses *repository.CourseRepository,
	categories *repository.CategoryRepository,
	users *repository.UserRepository,
	catalog cache.CatalogCache,
) *CourseService {
	return &CourseService{
		db:         db,
		courses:    courses,
		categories: categories,
		users:      users,
		catalog:    catalog,
	}
}

// GetAllCourses serves the public course list, from cache when warm.
func (s *CourseService) GetAllCourses() ([]CourseView, error) {
	if s.catalog != nil {
		if payload, err := s.catalog.GetCourseList(); err == nil && payload != nil {
			var views []CourseView
			if err := json.Unmarshal(payload, &views); err == nil {
				return views, nil
			}
		}
	}

	courses, err := s.courses.GetAll()
	if err != nil {
		return nil, err
	}
	views := newCourseViews(courses)

	if s.catalog != nil {
		if payload, err := json.Marshal(views); err == nil {
			if err := s.catalog.SetCourseList(payload); err != nil {
				logger.Log.Warn("Failed to warm course catalog cache", zap.Error(err))
			}
		}
	}

	return views, nil
}

func (s *CourseService) GetCourseByID(id uint) (*CourseView, error) {
	course, err := s.courses.GetByID(id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apperr.NotFound("course not found: %d", id)
	}

	view := NewCourseView(course)
	return &view, nil
}

func (s *CourseService) GetCoursesByTeacher(teacherID uint) ([]CourseView, error) {
	courses, err := s.courses.GetByTeacher(teacherID)
	if err != nil {
		return nil, err
	}
	return newCourseViews(courses), nil
}

func (s *CourseService) GetCoursesByCategory(categoryID uint) ([]CourseView, error) {
	courses, err := s.courses.GetByCategory(categoryID)
	if err != nil {
		return nil, err
	}
	return newCourseViews(courses), nil
}

// GetMyCourses returns the actor's own courses; only teachers have any.
func (s *CourseService) GetMyCourses(actor *models.User) ([]CourseView, error) {
	if actor.Role != models.RoleTeacher {
		return nil, apperr.Forbidden("only teachers can list their own courses")
	}
	return s.GetCoursesByTeacher(actor.ID)
}

// CreateCourse applies the create policy for the actor's role, validates the
// category and teacher references and persists the course, all inside one
// transaction.
func (s *CourseService) CreateCourse(actor *models.User, req CreateCourseRequest) (*CourseView, error) {
	var created *models.Course

	err := s.db.Transaction(func(tx *gorm.DB) error {
		courses := s.courses.WithTx(tx)
		categories := s.categories.WithTx(tx)
		users := s.users.WithTx(tx)

		category, err := categories.GetByID(req.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return apperr.NotFound("category not found: %d", req.CategoryID)
		}

		teacherID, err := resolveCreateTeacher(actor, req.TeacherID)
		if err != nil {
			return err
		}

		teacher, err := users.GetByID(teacherID)
		if err != nil {
			return err
		}
		if teacher == nil || teacher.Role != models.RoleTeacher {
			return apperr.InvalidArgument("user %d does not hold the TEACHER role", teacherID)
		}

		exists, err := courses.ExistsByTitleAndTeacher(req.Title, teacher.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("teacher already has a course titled '%s'", req.Title)
		}

		course := &models.Course{
			Title:       req.Title,
			Description: req.Description,
			CategoryID:  category.ID,
			TeacherID:   teacher.ID,
			Duration:    req.Duration,
			StartDate:   req.StartDate,
		}
		if err := courses.Create(course); err != nil {
			return err
		}

		created, err = courses.GetByID(course.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCatalog()

	logger.Log.Info("Course created",
		zap.Uint("course_id", created.ID),
		zap.String("title", created.Title),
		zap.Uint("teacher_id", created.TeacherID),
		zap.Uint("actor_id", actor.ID),
		zap.String("actor_role", string(actor.Role)),
	)

	view := NewCourseView(created)
	return &view, nil
}

// UpdateCourse applies a partial update under the actor's ownership policy.
// Present fields replace stored values; absent fields are left untouched.
func (s *CourseService) UpdateCourse(actor *models.User, courseID uint, req UpdateCourseRequest) (*CourseView, error) {
	var updated *models.Course

	err := s.db.Transaction(func(tx *gorm.DB) error {
		courses := s.courses.WithTx(tx)
		categories := s.categories.WithTx(tx)
		users := s.users.WithTx(tx)

		course, err := courses.GetByID(courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return apperr.NotFound("course not found: %d", courseID)
		}

		write, err := decideUpdate(actor, course, req)
		if err != nil {
			return err
		}

		if write.Title != nil && *write.Title != course.Title {
			// Uniqueness is re-checked against the course's current teacher,
			// before any reassignment in the same request is applied.
			exists, err := courses.ExistsByTitleAndTeacher(*write.Title, course.TeacherID)
			if err != nil {
				return err
			}
			if exists {
				return apperr.Conflict("teacher already has a course titled '%s'", *write.Title)
			}
			course.Title = *write.Title
		}

		if write.Description != nil {
			course.Description = *write.Description
		}

		if write.CategoryID != nil {
			category, err := categories.GetByID(*write.CategoryID)
			if err != nil {
				return err
			}
			if category == nil {
				return apperr.NotFound("category not found: %d", *write.CategoryID)
			}
			course.CategoryID = category.ID
		}

		if write.TeacherID != nil {
			newTeacher, err := users.GetByID(*write.TeacherID)
			if err != nil {
				return err
			}
			if newTeacher == nil || newTeacher.Role != models.RoleTeacher {
				return apperr.InvalidArgument("user %d does not hold the TEACHER role", *write.TeacherID)
			}
			course.TeacherID = newTeacher.ID
		}

		if write.Duration != nil {
			course.Duration = *write.Duration
		}

		if write.StartDate != nil {
			course.StartDate = write.StartDate
		}

		if err := courses.Update(course); err != nil {
			return err
		}

		updated, err = courses.GetByID(course.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCatalog()

	logger.Log.Info("Course updated",
		zap.Uint("course_id", updated.ID),
		zap.Uint("actor_id", actor.ID),
		zap.String("actor_role", string(actor.Role)),
	)

	view := NewCourseView(updated)
	return &view, nil
}

// DeleteCourse removes a course and all of its enrollments.
func (s *CourseService) DeleteCourse(actor *models.User, courseID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		courses := s.courses.WithTx(tx)

		course, err := courses.GetByID(courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return apperr.NotFound("course not found: %d", courseID)
		}

		if err := checkCourseOwnership(actor, course); err != nil {
			return err
		}

		return courses.Delete(courseID)
	})
	if err != nil {
		return err
	}

	s.invalidateCatalog()

	logger.Log.Info("Course deleted",
		zap.Uint("course_id", courseID),
		zap.Uint("actor_id", actor.ID),
		zap.String("actor_role", string(actor.Role)),
	)

	return nil
}

func (s *CourseService) invalidateCatalog() {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Invalidate(); err != nil {
		logger.Log.Warn("Failed to invalidate course catalog cache", zap.Error(err))
	}
}
