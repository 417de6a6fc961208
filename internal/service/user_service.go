package service

import (
	"github.com/Baaaki/course-hub/internal/apperr"
	"github.com/Baaaki/course-hub/internal/models"
	"github.com/Baaaki/course-hub/internal/repository"
	"github.com/Baaaki/course-hub/internal/utils"
	"github.com/Baaaki/course-hub/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService struct {
	db          *gorm.DB
	users       *repository.UserRepository
	profiles    *repository.ProfileRepository
	enrollments *repository.EnrollmentRepository
}

func NewUserService(
	db *gorm.DB,
	users *repository.UserRepository,
	profiles *repository.ProfileRepository,
	enrollments *repository.EnrollmentRepository,
) *UserService {
	return &UserService{
		db:          db,
		users:       users,
		profiles:    profiles,
		enrollments: enrollments,
	}
}

func (s *UserService) GetAllUsers() ([]models.User, error) {
	return s.users.GetAll()
}

func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found: %d", id)
	}
	return user, nil
}

func (s *UserService) CreateUser(login, password string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperr.InvalidArgument("unknown role: %s", role)
	}
	if login == "" || password == "" {
		return nil, apperr.InvalidArgument("login and password are required")
	}

	var created *models.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		exists, err := users.ExistsByLogin(login)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("user with login '%s' already exists", login)
		}

		hash, err := utils.HashPassword(password)
		if err != nil {
			return err
		}

		created = &models.User{
			Login:        login,
			PasswordHash: hash,
			Role:         role,
		}
		return users.Create(created)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("User created",
		zap.Uint("user_id", created.ID),
		zap.String("login", created.Login),
		zap.String("role", string(created.Role)),
	)

	return created, nil
}

// DeleteUser removes a user together with their profile and enrollments.
// Removing the last administrator is refused; the admin count is read inside
// the same transaction as the delete so a concurrent demotion cannot slip
// past the guard.
func (s *UserService) DeleteUser(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(id)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.NotFound("user not found: %d", id)
		}

		if user.Role == models.RoleAdmin {
			count, err := users.CountByRole(models.RoleAdmin)
			if err != nil {
				return err
			}
			if count <= 1 {
				return apperr.PreconditionFailed("cannot remove the last administrator")
			}
		}

		if err := s.enrollments.WithTx(tx).DeleteByUser(id); err != nil {
			return err
		}
		if err := s.profiles.WithTx(tx).DeleteByUser(id); err != nil {
			return err
		}
		return users.Delete(id)
	})
	if err != nil {
		return err
	}

	logger.Log.Info("User deleted", zap.Uint("user_id", id))
	return nil
}

// UpdateUserRole changes a user's role. Demoting the last administrator is
// refused under the same transactional guard as DeleteUser.
func (s *UserService) UpdateUserRole(id uint, newRole models.Role) (*models.User, error) {
	if !newRole.Valid() {
		return nil, apperr.InvalidArgument("unknown role: %s", newRole)
	}

	var updated *models.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(id)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.NotFound("user not found: %d", id)
		}

		if user.Role == models.RoleAdmin && newRole != models.RoleAdmin {
			count, err := users.CountByRole(models.RoleAdmin)
			if err != nil {
				return err
			}
			if count <= 1 {
				return apperr.PreconditionFailed("cannot change the role of the last administrator")
			}
		}

		user.Role = newRole
		if err := users.Update(user); err != nil {
			return err
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("User role updated",
		zap.Uint("user_id", updated.ID),
		zap.String("role", string(updated.Role)),
	)

	return updated, nil
}

// ChangePassword verifies the current password before replacing the digest.
func (s *UserService) ChangePassword(id uint, currentPassword, newPassword string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(id)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.NotFound("user not found: %d", id)
		}

		valid, err := utils.VerifyPassword(currentPassword, user.PasswordHash)
		if err != nil {
			return err
		}
		if !valid {
			return apperr.InvalidArgument("wrong current password")
		}

		hash, err := utils.HashPassword(newPassword)
		if err != nil {
			return err
		}

		user.PasswordHash = hash
		return users.Update(user)
	})
	if err != nil {
		return err
	}

	logger.Log.Info("User password changed", zap.Uint("user_id", id))
	return nil
}

// EnsureDefaultAdmin bootstraps an administrator account on startup when the
// system has none. Any failure is logged and swallowed: startup must not fail
// because of the bootstrap.
func (s *UserService) EnsureDefaultAdmin(login, password string, autoCreate bool) {
	if !autoCreate {
		logger.Log.Info("Admin auto-create is disabled")
		return
	}

	count, err := s.users.CountByRole(models.RoleAdmin)
	if err != nil {
		logger.Log.Error("Failed to count administrators during bootstrap", zap.Error(err))
		return
	}
	if count > 0 {
		logger.Log.Debug("Administrators already present, skipping bootstrap", zap.Int64("count", count))
		return
	}

	exists, err := s.users.ExistsByLogin(login)
	if err != nil {
		logger.Log.Error("Failed to check bootstrap login", zap.Error(err))
		return
	}
	if exists {
		logger.Log.Error("Bootstrap login is already taken by a non-admin user, skipping",
			zap.String("login", login),
		)
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Failed to hash bootstrap password", zap.Error(err))
		return
	}

	admin := &models.User{
		Login:        login,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := s.users.Create(admin); err != nil {
		logger.Log.Error("Failed to create bootstrap administrator", zap.Error(err))
		return
	}

	logger.Log.Warn("Created default administrator, change the password on first login",
		zap.String("login", login),
	)
}
