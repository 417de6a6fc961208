package repository

import (
	"errors"

	"github.com/Baaaki/course-hub/internal/apperr"
	"github.com/Baaaki/course-hub/internal/models"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *CategoryRepository) WithTx(tx *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: tx}
}

func (r *CategoryRepository) Create(category *models.Category) error {
	err := r.db.Create(category).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("category with name '%s' already exists", category.Name)
	}
	return err
}

func (r *CategoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.First(&category, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &category, nil
}

func (r *CategoryRepository) GetAll() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) ExistsByName(name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *CategoryRepository) Update(category *models.Category) error {
	err := r.db.Save(category).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("category with name '%s' already exists", category.Name)
	}
	return err
}

func (r *CategoryRepository) Delete(id uint) error {
	return r.db.Delete(&models.Category{}, id).Error
}
