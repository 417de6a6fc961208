package repository

import (
	"errors"

	"github.com/Baaaki/course-hub/internal/apperr"
	"github.com/Baaaki/course-hub/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ProfileRepository) WithTx(tx *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: tx}
}

func (r *ProfileRepository) GetByUserID(userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.Preload("User").Where("user_id = ?", userID).First(&profile).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &profile, nil
}

func (r *ProfileRepository) GetByEmail(email string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.Where("email = ?", email).First(&profile).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &profile, nil
}

// Save inserts or updates a profile.
func (r *ProfileRepository) Save(profile *models.Profile) error {
	err := r.db.Save(profile).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("email already used by another profile")
	}
	return err
}

// DeleteByUser removes the profile belonging to a user, if any.
func (r *ProfileRepository) DeleteByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Profile{}).Error
}
