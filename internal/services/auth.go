package services

import (
	"errors"
	"time"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/utils"
	"github.com/taskhive/backend/pkg/logger"
	"github.com/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

// AuthService handles login and user lookups
type AuthService struct {
	db          *gorm.DB
	expireHours int
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, expireHours int) *AuthService {
	return &AuthService{db: db, expireHours: expireHours}
}

// Login verifies credentials and issues a JWT. Disabled accounts are
// rejected with the same message as bad credentials.
func (s *AuthService) Login(username, password string) (string, *models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, response.NewUnauthorized("invalid username or password")
		}
		return "", nil, response.NewServerError("failed to look up user")
	}

	if !user.IsActive || !utils.CheckPassword(password, user.Password) {
		return "", nil, response.NewUnauthorized("invalid username or password")
	}

	token, err := utils.GenerateToken(user.ID, user.Username, s.expireHours)
	if err != nil {
		logger.Errorf("Failed to generate token for user %d: %v", user.ID, err)
		return "", nil, response.NewServerError("failed to generate token")
	}

	now := time.Now()
	if err := s.db.Model(&user).Update("last_login", now).Error; err != nil {
		logger.Warnf("Failed to update last login for user %d: %v", user.ID, err)
	}
	user.LastLogin = &now

	return token, &user, nil
}

// Register creates a new user account with a hashed password.
func (s *AuthService) Register(username, password, email, nickname string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, response.NewBadRequest("username and password are required")
	}
	if len(password) < 6 {
		return nil, response.NewBadRequest("password must be at least 6 characters")
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, response.NewServerError("failed to hash password")
	}

	user := &models.User{
		Username: username,
		Password: hashed,
		Email:    email,
		Nickname: nickname,
		IsActive: true,
	}
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("username or email already taken")
		}
		return nil, response.NewServerError("failed to create user")
	}
	return user, nil
}

// GetUserByID returns a user by id
func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, response.NewServerError("failed to look up user")
	}
	return &user, nil
}

// ListUsers returns the active user directory, used when picking members
// to add to a project.
func (s *AuthService) ListUsers(search string) ([]models.User, error) {
	query := s.db.Where("is_active = ?", true)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("username LIKE ? OR nickname LIKE ? OR email LIKE ?", like, like, like)
	}

	var users []models.User
	if err := query.Order("username ASC").Find(&users).Error; err != nil {
		return nil, response.NewServerError("failed to list users")
	}
	return users, nil
}

// CreateAdminIfNotExists seeds the bootstrap account on first start
func (s *AuthService) CreateAdminIfNotExists(username, password string) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	user := &models.User{
		Username: username,
		Password: hashed,
		Nickname: "Administrator",
		IsActive: true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return err
	}

	logger.Infof("Bootstrap user %q created", username)
	return nil
}
