package service

import (
	"time"

	"github.com/Baaaki/course-hub/internal/apperr"
	"github.com/Baaaki/course-hub/internal/models"
	"github.com/Baaaki/course-hub/internal/repository"
	"github.com/Baaaki/course-hub/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnrollmentView joins the user login and course title for efficient read
// paths.
type EnrollmentView struct {
	ID          uint                    `json:"id"`
	UserID      uint                    `json:"user_id"`
	UserLogin   string                  `json:"user_login"`
	CourseID    uint                    `json:"course_id"`
	CourseTitle string                  `json:"course_title"`
	EnrollDate  time.Time               `json:"enroll_date"`
	Status      models.EnrollmentStatus `json:"status"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

func NewEnrollmentView(e *models.Enrollment) EnrollmentView {
	return EnrollmentView{
		ID:          e.ID,
		UserID:      e.UserID,
		UserLogin:   e.User.Login,
		CourseID:    e.CourseID,
		CourseTitle: e.Course.Title,
		EnrollDate:  e.EnrollDate,
		Status:      e.Status,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func newEnrollmentViews(enrollments []models.Enrollment) []EnrollmentView {
	views := make([]EnrollmentView, 0, len(enrollments))
	for i := range enrollments {
		views = append(views, NewEnrollmentView(&enrollments[i]))
	}
	return views
}

type CreateEnrollmentRequest struct {
	UserID     uint                    `json:"user_id" binding:"required"`
	CourseID   uint                    `json:"course_id" binding:"required"`
	EnrollDate *time.Time              `json:"enroll_date"`
	Status     models.EnrollmentStatus `json:"status"`
}

type EnrollmentService struct {
	db          *gorm.DB
	enrollments *repository.EnrollmentRepository
	users       *repository.UserRepository
	courses     *repository.CourseRepository
}

func NewEnrollmentService(
	db *gorm.DB,
	enrollments *repository.EnrollmentRepository,
	users *repository.UserRepository,
	courses *repository.CourseRepository,
) *EnrollmentService {
	return &EnrollmentService{
		db:          db,
		enrollments: enrollments,
		users:       users,
		courses:     courses,
	}
}

func (s *EnrollmentService) GetAllEnrollments() ([]EnrollmentView, error) {
	enrollments, err := s.enrollments.GetAll()
	if err != nil {
		return nil, err
	}
	return newEnrollmentViews(enrollments), nil
}

func (s *EnrollmentService) GetEnrollmentByID(id uint) (*EnrollmentView, error) {
	enrollment, err := s.enrollments.GetByID(id)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, apperr.NotFound("enrollment not found: %d", id)
	}

	view := NewEnrollmentView(enrollment)
	return &view, nil
}

func (s *EnrollmentService) GetEnrollmentsByUser(userID uint) ([]EnrollmentView, error) {
	enrollments, err := s.enrollments.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	return newEnrollmentViews(enrollments), nil
}

func (s *EnrollmentService) GetEnrollmentsByCourse(courseID uint) ([]EnrollmentView, error) {
	enrollments, err := s.enrollments.GetByCourse(courseID)
	if err != nil {
		return nil, err
	}
	return newEnrollmentViews(enrollments), nil
}

func (s *EnrollmentService) CountActiveByCourse(courseID uint) (int64, error) {
	return s.enrollments.CountByCourseAndStatus(courseID, models.EnrollmentActive)
}

// CreateEnrollment registers a user on a course. The duplicate pre-check runs
// before the insert so the conflict message is descriptive; the unique index
// on (user_id, course_id) backs it up against races.
func (s *EnrollmentService) CreateEnrollment(req CreateEnrollmentRequest) (*EnrollmentView, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, apperr.InvalidArgument("unknown enrollment status: %s", req.Status)
	}

	var created *models.Enrollment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		enrollments := s.enrollments.WithTx(tx)
		users := s.users.WithTx(tx)
		courses := s.courses.WithTx(tx)

		exists, err := enrollments.ExistsByUserAndCourse(req.UserID, req.CourseID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("user already enrolled in this course")
		}

		user, err := users.GetByID(req.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.NotFound("user not found: %d", req.UserID)
		}

		course, err := courses.GetByID(req.CourseID)
		if err != nil {
			return err
		}
		if course == nil {
			return apperr.NotFound("course not found: %d", req.CourseID)
		}

		enrollment := &models.Enrollment{
			UserID:   req.UserID,
			CourseID: req.CourseID,
			Status:   req.Status,
		}
		if req.EnrollDate != nil {
			enrollment.EnrollDate = *req.EnrollDate
		} else {
			enrollment.EnrollDate = time.Now()
		}
		if enrollment.Status == "" {
			enrollment.Status = models.EnrollmentActive
		}

		if err := enrollments.Create(enrollment); err != nil {
			return err
		}

		created, err = enrollments.GetByID(enrollment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Enrollment created",
		zap.Uint("enrollment_id", created.ID),
		zap.Uint("user_id", created.UserID),
		zap.Uint("course_id", created.CourseID),
		zap.String("status", string(created.Status)),
	)

	view := NewEnrollmentView(created)
	return &view, nil
}

// UpdateEnrollmentStatus replaces the status unconditionally: there is no
// transition table, any known status is accepted at any time.
func (s *EnrollmentService) UpdateEnrollmentStatus(id uint, status models.EnrollmentStatus) (*EnrollmentView, error) {
	if !status.Valid() {
		return nil, apperr.InvalidArgument("unknown enrollment status: %s", status)
	}

	var updated *models.Enrollment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		enrollments := s.enrollments.WithTx(tx)

		enrollment, err := enrollments.GetByID(id)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return apperr.NotFound("enrollment not found: %d", id)
		}

		enrollment.Status = status
		if err := enrollments.Update(enrollment); err != nil {
			return err
		}

		updated = enrollment
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Enrollment status updated",
		zap.Uint("enrollment_id", updated.ID),
		zap.String("status", string(updated.Status)),
	)

	view := NewEnrollmentView(updated)
	return &view, nil
}

func (s *EnrollmentService) DeleteEnrollment(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		enrollments := s.enrollments.WithTx(tx)

		enrollment, err := enrollments.GetByID(id)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return apperr.NotFound("enrollment not found: %d", id)
		}

		return enrollments.Delete(id)
	})
	if err != nil {
		return err
	}

	logger.Log.Info("Enrollment deleted", zap.Uint("enrollment_id", id))
	return nil
}
