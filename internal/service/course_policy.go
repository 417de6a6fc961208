package service

import (
	"time"

	"github.com/Baaaki/course-hub/internal/apperr"
	"github.com/Baaaki/course-hub/internal/models"
)

// The functions in this file form the pure decision layer of the course
// authority: actor role × operation → validated effective write, or a typed
// error. They never touch the store; reference checks (does the teacher
// exist, does the category exist) belong to the service methods that call
// them inside a transaction.

// resolveCreateTeacher decides which teacher a new course binds to.
// Admins must name a teacher explicitly; teachers always bind themselves and
// may not name anyone else; every other role is rejected.
func resolveCreateTeacher(actor *models.User, requested *uint) (uint, error) {
	switch actor.Role {
	case models.RoleAdmin:
		if requested == nil {
			return 0, apperr.InvalidArgument("teacher_id is required when an administrator creates a course")
		}
		return *requested, nil
	case models.RoleTeacher:
		if requested != nil && *requested != actor.ID {
			return 0, apperr.Forbidden("teachers can only create courses for themselves")
		}
		return actor.ID, nil
	default:
		return 0, apperr.Forbidden("only teachers and administrators can create courses")
	}
}

// courseWrite is the effective field set a course mutation is allowed to
// apply. Nil fields are left untouched (partial-update semantics).
type courseWrite struct {
	Title       *string
	Description *string
	CategoryID  *uint
	TeacherID   *uint // non-nil only for an admin-requested reassignment
	Duration    *string
	StartDate   *time.Time
}

// decideUpdate checks ownership and narrows the requested update to what the
// actor's role permits. A teacher's attempt to reassign the course to another
// teacher is dropped silently: only an admin's reassignment intent is
// accepted.
func decideUpdate(actor *models.User, course *models.Course, req UpdateCourseRequest) (courseWrite, error) {
	if err := checkCourseOwnership(actor, course); err != nil {
		return courseWrite{}, err
	}

	write := courseWrite{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Duration:    req.Duration,
		StartDate:   req.StartDate,
	}
	if actor.Role == models.RoleAdmin {
		write.TeacherID = req.TeacherID
	}
	return write, nil
}

// checkCourseOwnership guards mutations: a teacher may only touch their own
// courses, an admin may touch any, everyone else is rejected.
func checkCourseOwnership(actor *models.User, course *models.Course) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleTeacher:
		if course.TeacherID != actor.ID {
			return apperr.Forbidden("teachers can only modify their own courses")
		}
		return nil
	default:
		return apperr.Forbidden("only teachers and administrators can modify courses")
	}
}
