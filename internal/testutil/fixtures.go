package testutil

import (
	"time"

	"github.com/Baaaki/course-hub/internal/models"
	"github.com/Baaaki/course-hub/internal/utils"
)

// CreateTestUser builds a user with a real Argon2id digest so password
// verification paths work in tests.
func CreateTestUser(login, password string, role models.Role) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Login:        login,
		PasswordHash: hash,
		Role:         role,
	}, nil
}

// DefaultAdminUser returns a default admin user
func DefaultAdminUser() (*models.User, error) {
	return CreateTestUser("admin", "Admin123456", models.RoleAdmin)
}

// DefaultTeacherUser returns a default teacher user
func DefaultTeacherUser() (*models.User, error) {
	return CreateTestUser("teacher", "Teacher123456", models.RoleTeacher)
}

// DefaultStudentUser returns a default regular user
func DefaultStudentUser() (*models.User, error) {
	return CreateTestUser("student", "Student123456", models.RoleUser)
}

// CreateTestCategory builds a category
func CreateTestCategory(name string) *models.Category {
	return &models.Category{Name: name}
}

// CreateTestCourse builds a course bound to a category and teacher
func CreateTestCourse(title string, categoryID, teacherID uint) *models.Course {
	start := time.Now().AddDate(0, 1, 0)
	return &models.Course{
		Title:       title,
		Description: "test course",
		CategoryID:  categoryID,
		TeacherID:   teacherID,
		Duration:    "8 weeks",
		StartDate:   &start,
	}
}

// CreateTestEnrollment builds an enrollment with the given status
func CreateTestEnrollment(userID, courseID uint, status models.EnrollmentStatus) *models.Enrollment {
	return &models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrollDate: time.Now(),
		Status:     status,
	}
}
