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

type ProfileView struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	UserLogin string    `json:"user_login"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewProfileView(p *models.Profile) ProfileView {
	view := ProfileView{
		ID:        p.ID,
		UserID:    p.UserID,
		UserLogin: p.User.Login,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Email != nil {
		view.Email = *p.Email
	}
	return view
}

type UpdateProfileRequest struct {
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	Email     string `json:"email"`
}

type ProfileService struct {
	db       *gorm.DB
	profiles *repository.ProfileRepository
	users    *repository.UserRepository
}

func NewProfileService(db *gorm.DB, profiles *repository.ProfileRepository, users *repository.UserRepository) *ProfileService {
	return &ProfileService{
		db:       db,
		profiles: profiles,
		users:    users,
	}
}

func (s *ProfileService) GetProfileByUserID(userID uint) (*ProfileView, error) {
	profile, err := s.profiles.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.NotFound("profile not found for user: %d", userID)
	}

	view := NewProfileView(profile)
	return &view, nil
}

// UpdateProfile writes a user's profile, creating it lazily on first write.
// Only the owner or an administrator may write; a non-empty email must not
// belong to another user's profile.
func (s *ProfileService) UpdateProfile(actor *models.User, userID uint, req UpdateProfileRequest) (*ProfileView, error) {
	if actor.ID != userID && actor.Role != models.RoleAdmin {
		return nil, apperr.Forbidden("cannot modify another user's profile")
	}

	var saved *models.Profile

	err := s.db.Transaction(func(tx *gorm.DB) error {
		profiles := s.profiles.WithTx(tx)
		users := s.users.WithTx(tx)

		user, err := users.GetByID(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.NotFound("user not found: %d", userID)
		}

		if req.Email != "" {
			existing, err := profiles.GetByEmail(req.Email)
			if err != nil {
				return err
			}
			if existing != nil && existing.UserID != userID {
				return apperr.Conflict("email already used by another profile")
			}
		}

		profile, err := profiles.GetByUserID(userID)
		if err != nil {
			return err
		}
		if profile == nil {
			profile = &models.Profile{UserID: userID}
		}

		profile.Bio = req.Bio
		profile.AvatarURL = req.AvatarURL
		if req.Email != "" {
			email := req.Email
			profile.Email = &email
		} else {
			profile.Email = nil
		}

		if err := profiles.Save(profile); err != nil {
			return err
		}

		saved, err = profiles.GetByUserID(userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Profile updated",
		zap.Uint("user_id", userID),
		zap.Uint("actor_id", actor.ID),
	)

	view := NewProfileView(saved)
	return &view, nil
}
