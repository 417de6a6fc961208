package service

import (
	"github.com/Baaaki/course-hub/internal/apperr"
	"github.com/Baaaki/course-hub/internal/models"
	"github.com/Baaaki/course-hub/internal/repository"
	"github.com/Baaaki/course-hub/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryService struct {
	db         *gorm.DB
	categories *repository.CategoryRepository
	courses    *repository.CourseRepository
}

func NewCategoryService(db *gorm.DB, categories *repository.CategoryRepository, courses *repository.CourseRepository) *CategoryService {
	return &CategoryService{
		db:         db,
		categories: categories,
		courses:    courses,
	}
}

func (s *CategoryService) GetAllCategories() ([]models.Category, error) {
	return s.categories.GetAll()
}

func (s *CategoryService) GetCategoryByID(id uint) (*models.Category, error) {
	category, err := s.categories.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperr.NotFound("category not found: %d", id)
	}
	return category, nil
}

func (s *CategoryService) CreateCategory(name string) (*models.Category, error) {
	var created *models.Category

	err := s.db.Transaction(func(tx *gorm.DB) error {
		categories := s.categories.WithTx(tx)

		exists, err := categories.ExistsByName(name)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("category with name '%s' already exists", name)
		}

		created = &models.Category{Name: name}
		return categories.Create(created)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Category created",
		zap.Uint("category_id", created.ID),
		zap.String("name", created.Name),
	)

	return created, nil
}

// UpdateCategory renames a category. Renaming to the current name is a no-op
// success; colliding with a different category is a conflict.
func (s *CategoryService) UpdateCategory(id uint, newName string) (*models.Category, error) {
	var updated *models.Category

	err := s.db.Transaction(func(tx *gorm.DB) error {
		categories := s.categories.WithTx(tx)

		category, err := categories.GetByID(id)
		if err != nil {
			return err
		}
		if category == nil {
			return apperr.NotFound("category not found: %d", id)
		}

		if category.Name != newName {
			exists, err := categories.ExistsByName(newName)
			if err != nil {
				return err
			}
			if exists {
				return apperr.Conflict("category with name '%s' already exists", newName)
			}
		}

		category.Name = newName
		if err := categories.Update(category); err != nil {
			return err
		}

		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Category updated",
		zap.Uint("category_id", updated.ID),
		zap.String("name", updated.Name),
	)

	return updated, nil
}

// DeleteCategory removes a category unless any course still references it.
// The reference count is read live inside the delete transaction.
func (s *CategoryService) DeleteCategory(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		categories := s.categories.WithTx(tx)
		courses := s.courses.WithTx(tx)

		category, err := categories.GetByID(id)
		if err != nil {
			return err
		}
		if category == nil {
			return apperr.NotFound("category not found: %d", id)
		}

		count, err := courses.CountByCategory(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperr.PreconditionFailed("cannot delete a category that has courses")
		}

		return categories.Delete(id)
	})
	if err != nil {
		return err
	}

	logger.Log.Info("Category deleted", zap.Uint("category_id", id))
	return nil
}
