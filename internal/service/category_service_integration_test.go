package service_test

import (
	"testing"

	"github.com/Baaaki/course-hub/internal/apperr"
	"github.com/Baaaki/course-hub/internal/models"
	"github.com/Baaaki/course-hub/internal/repository"
	"github.com/Baaaki/course-hub/internal/service"
	"github.com/Baaaki/course-hub/internal/testutil"
	"github.com/Baaaki/course-hub/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// CategoryServiceIntegrationTestSuite defines test suite
type CategoryServiceIntegrationTestSuite struct {
	suite.Suite
	testDB          *testutil.TestDatabase
	categoryService *service.CategoryService
}

// SetupSuite runs before all tests
func (s *CategoryServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())

	s.categoryService = service.NewCategoryService(
		s.testDB.DB,
		repository.NewCategoryRepository(s.testDB.DB),
		repository.NewCourseRepository(s.testDB.DB),
	)
}

// TearDownSuite runs after all tests
func (s *CategoryServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test
func (s *CategoryServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

// TestCreateCategory tests creation and the duplicate-name conflict
func (s *CategoryServiceIntegrationTestSuite) TestCreateCategory() {
	category, err := s.categoryService.CreateCategory("Mathematics")
	assert.NoError(s.T(), err)
	assert.NotZero(s.T(), category.ID)
	assert.Equal(s.T(), "Mathematics", category.Name)

	_, err = s.categoryService.CreateCategory("Mathematics")
	assert.Equal(s.T(), apperr.KindConflict, apperr.KindOf(err))
}

// TestUpdateCategory tests renaming, the self-rename no-op, and collisions
func (s *CategoryServiceIntegrationTestSuite) TestUpdateCategory() {
	math, err := s.categoryService.CreateCategory("Mathematics")
	assert.NoError(s.T(), err)
	_, err = s.categoryService.CreateCategory("Physics")
	assert.NoError(s.T(), err)

	// Renaming to the current name succeeds without touching anyone else
	updated, err := s.categoryService.UpdateCategory(math.ID, "Mathematics")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "Mathematics", updated.Name)

	// Renaming onto another category's name is a conflict
	_, err = s.categoryService.UpdateCategory(math.ID, "Physics")
	assert.Equal(s.T(), apperr.KindConflict, apperr.KindOf(err))

	// A fresh name goes through
	updated, err = s.categoryService.UpdateCategory(math.ID, "Applied Mathematics")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "Applied Mathematics", updated.Name)

	_, err = s.categoryService.UpdateCategory(9999, "Ghost")
	assert.Equal(s.T(), apperr.KindNotFound, apperr.KindOf(err))
}

// TestDeleteCategoryGuard tests deletion is refused while courses reference it
func (s *CategoryServiceIntegrationTestSuite) TestDeleteCategoryGuard() {
	category, err := s.categoryService.CreateCategory("Programming")
	assert.NoError(s.T(), err)

	teacher, _ := testutil.DefaultTeacherUser()
	s.testDB.DB.Create(teacher)
	course := testutil.CreateTestCourse("Go Basics", category.ID, teacher.ID)
	s.testDB.DB.Create(course)

	err = s.categoryService.DeleteCategory(category.ID)
	assert.Equal(s.T(), apperr.KindPreconditionFailed, apperr.KindOf(err))

	// Once the last course is gone the delete goes through
	s.testDB.DB.Delete(&models.Course{}, course.ID)

	err = s.categoryService.DeleteCategory(category.ID)
	assert.NoError(s.T(), err)

	_, err = s.categoryService.GetCategoryByID(category.ID)
	assert.Equal(s.T(), apperr.KindNotFound, apperr.KindOf(err))
}

// TestDeleteCategoryNotFound tests the missing-category path
func (s *CategoryServiceIntegrationTestSuite) TestDeleteCategoryNotFound() {
	err := s.categoryService.DeleteCategory(9999)
	assert.Equal(s.T(), apperr.KindNotFound, apperr.KindOf(err))
}

// TestGetAllCategories tests the listing
func (s *CategoryServiceIntegrationTestSuite) TestGetAllCategories() {
	_, err := s.categoryService.CreateCategory("Mathematics")
	assert.NoError(s.T(), err)
	_, err = s.categoryService.CreateCategory("Physics")
	assert.NoError(s.T(), err)

	categories, err := s.categoryService.GetAllCategories()
	assert.NoError(s.T(), err)
	assert.Len(s.T(), categories, 2)
}

// TestSuite runs all tests in the suite
func TestCategoryServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceIntegrationTestSuite))
}
