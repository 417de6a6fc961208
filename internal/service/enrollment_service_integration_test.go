package service_test

import (
	"testing"
	"time"

	"github.com/Baaaki/course-hub/internal/apperr"
	"github.com/Baaaki/course-hub/internal/models"
	"github.com/Baaaki/course-hub/internal/repository"
	"github.com/Baaaki/course-hub/internal/service"
	"github.com/Baaaki/course-hub/internal/testutil"
	"github.com/Baaaki/course-hub/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// EnrollmentServiceIntegrationTestSuite defines test suite
type EnrollmentServiceIntegrationTestSuite struct {
	suite.Suite
	testDB            *testutil.TestDatabase
	enrollmentService *service.EnrollmentService

	student  *models.User
	student2 *models.User
	teacher  *models.User
	course   *models.Course
	course2  *models.Course
}

// SetupSuite runs before all tests
func (s *EnrollmentServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())

	s.enrollmentService = service.NewEnrollmentService(
		s.testDB.DB,
		repository.NewEnrollmentRepository(s.testDB.DB),
		repository.NewUserRepository(s.testDB.DB),
		repository.NewCourseRepository(s.testDB.DB),
	)
}

// TearDownSuite runs after all tests
func (s *EnrollmentServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test
func (s *EnrollmentServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	s.student, _ = testutil.DefaultStudentUser()
	s.student2, _ = testutil.CreateTestUser("student2", "Student123456", models.RoleUser)
	s.teacher, _ = testutil.DefaultTeacherUser()
	s.testDB.DB.Create(s.student)
	s.testDB.DB.Create(s.student2)
	s.testDB.DB.Create(s.teacher)

	category := testutil.CreateTestCategory("Programming")
	s.testDB.DB.Create(category)

	s.course = testutil.CreateTestCourse("Go Basics", category.ID, s.teacher.ID)
	s.course2 = testutil.CreateTestCourse("Advanced Go", category.ID, s.teacher.ID)
	s.testDB.DB.Create(s.course)
	s.testDB.DB.Create(s.course2)
}

// TestCreateEnrollmentDefaults tests defaulted date and status
func (s *EnrollmentServiceIntegrationTestSuite) TestCreateEnrollmentDefaults() {
	before := time.Now()

	view, err := s.enrollmentService.CreateEnrollment(service.CreateEnrollmentRequest{
		UserID:   s.student.ID,
		CourseID: s.course.ID,
	})

	assert.NoError(s.T(), err)
	assert.NotNil(s.T(), view)
	assert.Equal(s.T(), models.EnrollmentActive, view.Status)
	assert.False(s.T(), view.EnrollDate.Before(before.Add(-time.Second)))
	assert.Equal(s.T(), s.student.Login, view.UserLogin)
	assert.Equal(s.T(), s.course.Title, view.CourseTitle)
}

// TestCreateEnrollmentExplicitValues tests caller-provided date and status win
func (s *EnrollmentServiceIntegrationTestSuite) TestCreateEnrollmentExplicitValues() {
	enrollDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	view, err := s.enrollmentService.CreateEnrollment(service.CreateEnrollmentRequest{
		UserID:     s.student.ID,
		CourseID:   s.course.ID,
		EnrollDate: &enrollDate,
		Status:     models.EnrollmentCompleted,
	})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.EnrollmentCompleted, view.Status)
	assert.True(s.T(), view.EnrollDate.Equal(enrollDate))
}

// TestCreateEnrollmentDuplicate tests the one-enrollment-per-pair rule
func (s *EnrollmentServiceIntegrationTestSuite) TestCreateEnrollmentDuplicate() {
	_, err := s.enrollmentService.CreateEnrollment(service.CreateEnrollmentRequest{
		UserID:   s.student.ID,
		CourseID: s.course.ID,
	})
	assert.NoError(s.T(), err)

	_, err = s.enrollmentService.CreateEnrollment(service.CreateEnrollmentRequest{
		UserID:   s.student.ID,
		CourseID: s.course.ID,
	})
	assert.Equal(s.T(), apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(s.T(), err.Error(), "already enrolled")

	// Same user on another course, and another user on the same course, both fine
	_, err = s.enrollmentService.CreateEnrollment(service.CreateEnrollmentRequest{
		UserID:   s.student.ID,
		CourseID: s.course2.ID,
	})
	assert.NoError(s.T(), err)

	_, err = s.enrollmentService.CreateEnrollment(service.CreateEnrollmentRequest{
		UserID:   s.student2.ID,
		CourseID: s.course.ID,
	})
	assert.NoError(s.T(), err)
}

// TestCreateEnrollmentUnknownReferences tests user/course lookups
func (s *EnrollmentServiceIntegrationTestSuite) TestCreateEnrollmentUnknownReferences() {
	_, err := s.enrollmentService.CreateEnrollment(service.CreateEnrollmentRequest{
		UserID:   9999,
		CourseID: s.course.ID,
	})
	assert.Equal(s.T(), apperr.KindNotFound, apperr.KindOf(err))

	_, err = s.enrollmentService.CreateEnrollment(service.CreateEnrollmentRequest{
		UserID:   s.student.ID,
		CourseID: 9999,
	})
	assert.Equal(s.T(), apperr.KindNotFound, apperr.KindOf(err))
}

// TestCreateEnrollmentUnknownStatus tests status validation
func (s *EnrollmentServiceIntegrationTestSuite) TestCreateEnrollmentUnknownStatus() {
	_, err := s.enrollmentService.CreateEnrollment(service.CreateEnrollmentRequest{
		UserID:   s.student.ID,
		CourseID: s.course.ID,
		Status:   "PAUSED",
	})
	assert.Equal(s.T(), apperr.KindInvalidArgument, apperr.KindOf(err))
}

// TestUpdateEnrollmentStatus tests any known status is accepted at any time,
// including moving back from COMPLETED to ACTIVE
func (s *EnrollmentServiceIntegrationTestSuite) TestUpdateEnrollmentStatus() {
	view, err := s.enrollmentService.CreateEnrollment(service.CreateEnrollmentRequest{
		UserID:   s.student.ID,
		CourseID: s.course.ID,
	})
	assert.NoError(s.T(), err)

	updated, err := s.enrollmentService.UpdateEnrollmentStatus(view.ID, models.EnrollmentCompleted)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.EnrollmentCompleted, updated.Status)

	updated, err = s.enrollmentService.UpdateEnrollmentStatus(view.ID, models.EnrollmentActive)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.EnrollmentActive, updated.Status)

	updated, err = s.enrollmentService.UpdateEnrollmentStatus(view.ID, models.EnrollmentCancelled)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.EnrollmentCancelled, updated.Status)

	_, err = s.enrollmentService.UpdateEnrollmentStatus(view.ID, "PAUSED")
	assert.Equal(s.T(), apperr.KindInvalidArgument, apperr.KindOf(err))

	_, err = s.enrollmentService.UpdateEnrollmentStatus(9999, models.EnrollmentActive)
	assert.Equal(s.T(), apperr.KindNotFound, apperr.KindOf(err))
}

// TestDeleteEnrollment tests removal and the not-found path
func (s *EnrollmentServiceIntegrationTestSuite) TestDeleteEnrollment() {
	view, err := s.enrollmentService.CreateEnrollment(service.CreateEnrollmentRequest{
		UserID:   s.student.ID,
		CourseID: s.course.ID,
	})
	assert.NoError(s.T(), err)

	err = s.enrollmentService.DeleteEnrollment(view.ID)
	assert.NoError(s.T(), err)

	err = s.enrollmentService.DeleteEnrollment(view.ID)
	assert.Equal(s.T(), apperr.KindNotFound, apperr.KindOf(err))
}

// TestCountActiveByCourse tests only ACTIVE enrollments are counted
func (s *EnrollmentServiceIntegrationTestSuite) TestCountActiveByCourse() {
	s.testDB.DB.Create(testutil.CreateTestEnrollment(s.student.ID, s.course.ID, models.EnrollmentActive))
	s.testDB.DB.Create(testutil.CreateTestEnrollment(s.student2.ID, s.course.ID, models.EnrollmentCancelled))

	count, err := s.enrollmentService.CountActiveByCourse(s.course.ID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), count)

	count, err = s.enrollmentService.CountActiveByCourse(s.course2.ID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(0), count)
}

// TestGetEnrollmentsByUserAndCourse tests the filtered listings
func (s *EnrollmentServiceIntegrationTestSuite) TestGetEnrollmentsByUserAndCourse() {
	s.testDB.DB.Create(testutil.CreateTestEnrollment(s.student.ID, s.course.ID, models.EnrollmentActive))
	s.testDB.DB.Create(testutil.CreateTestEnrollment(s.student.ID, s.course2.ID, models.EnrollmentActive))
	s.testDB.DB.Create(testutil.CreateTestEnrollment(s.student2.ID, s.course.ID, models.EnrollmentActive))

	byUser, err := s.enrollmentService.GetEnrollmentsByUser(s.student.ID)
	assert.NoError(s.T(), err)
	assert.Len(s.T(), byUser, 2)

	byCourse, err := s.enrollmentService.GetEnrollmentsByCourse(s.course.ID)
	assert.NoError(s.T(), err)
	assert.Len(s.T(), byCourse, 2)

	all, err := s.enrollmentService.GetAllEnrollments()
	assert.NoError(s.T(), err)
	assert.Len(s.T(), all, 3)
}

// TestSuite runs all tests in the suite
func TestEnrollmentServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(EnrollmentServiceIntegrationTestSuite))
}
