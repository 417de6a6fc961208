package service

import (
	"time"

	"github.com/Baaaki/course-hub/internal/apperr"
	"github.com/Baaaki/course-hub/internal/models"
	"github.com/Baaaki/course-hub/internal/repository"
	"github.com/Baaaki/course-hub/internal/utils"
	"github.com/Baaaki/course-hub/pkg/logger"
	"go.uber.org/zap"
)

type AuthService struct {
	users         *repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
	environment   string
}

func NewAuthService(users *repository.UserRepository, jwtSecret string, jwtExpiration time.Duration, environment string) *AuthService {
	return &AuthService{
		users:         users,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		environment:   environment,
	}
}

// IsProduction returns true if running in production environment
func (s *AuthService) IsProduction() bool {
	return s.environment == "production"
}

// Login verifies credentials and issues a JWT. Unknown logins and bad
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(login, password string) (*models.User, string, error) {
	start := time.Now()

	user, err := s.users.GetByLogin(login)
	if err != nil {
		logger.Log.Error("Failed to look up user by login",
			zap.String("login", login),
			zap.Error(err),
		)
		return nil, "", err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found", zap.String("login", login))
		return nil, "", apperr.Unauthenticated("invalid credentials")
	}

	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("login", login),
			zap.Error(err),
		)
		return nil, "", err
	}
	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("login", login),
			zap.Uint("user_id", user.ID),
		)
		return nil, "", apperr.Unauthenticated("invalid credentials")
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User logged in successfully",
		zap.Uint("user_id", user.ID),
		zap.String("login", user.Login),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}
