package service

import (
	"context"
	"errors"

	"github.com/mkweon/barunpos-backend/config"
	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/pkg/logger"
	"github.com/mkweon/barunpos-backend/pkg/redis"
	"github.com/mkweon/barunpos-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrStaffNotAllowed    = errors.New("only managers may manage staff")
)

// RegisterStaffInput is the payload for creating a staff account.
type RegisterStaffInput struct {
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=8"`
	Name     string         `json:"name" binding:"required"`
	Phone    string         `json:"phone"`
	Role     model.UserRole `json:"role"`
}

type AuthService interface {
	Login(email, password string) (*model.User, *util.TokenPair, error)
	RegisterStaff(businessID uint, actorRole model.UserRole, input RegisterStaffInput) (*model.User, error)
	Logout(ctx context.Context, token string) error
	RefreshToken(refreshToken string) (*util.TokenPair, error)
	GetUser(id uint) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtCfg   config.JWTConfig
}

func NewAuthService(userRepo repository.UserRepository, jwtCfg config.JWTConfig) AuthService {
	return &authService{userRepo: userRepo, jwtCfg: jwtCfg}
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login attempt for unknown email", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login attempt with wrong password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, ErrUserInactive
	}

	pair, err := util.GenerateTokenPair(user.ID, user.BusinessID, user.Email, string(user.Role),
		s.jwtCfg.Secret, s.jwtCfg.AccessExpiry, s.jwtCfg.RefreshExpiry)
	if err != nil {
		logger.Error("Failed to generate token pair", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id":     user.ID,
		"business_id": user.BusinessID,
		"role":        user.Role,
	})
	return user, pair, nil
}

// RegisterStaff creates a staff account inside the actor's business. Only
// admins and managers may create staff, and nobody creates an admin through
// this path.
func (s *authService) RegisterStaff(businessID uint, actorRole model.UserRole, input RegisterStaffInput) (*model.User, error) {
	if !actorRole.CanManageSessions() {
		return nil, ErrStaffNotAllowed
	}

	role := input.Role
	if role == "" {
		role = model.RoleCashier
	}
	if role == model.RoleAdmin {
		return nil, ErrStaffNotAllowed
	}

	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		BusinessID:   businessID,
		Email:        input.Email,
		PasswordHash: hashed,
		Name:         input.Name,
		Phone:        input.Phone,
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("Staff account created", map[string]interface{}{
		"user_id":     user.ID,
		"business_id": businessID,
		"role":        role,
	})
	return user, nil
}

// Logout revokes the presented access token until its natural expiry.
func (s *authService) Logout(ctx context.Context, token string) error {
	return redis.BlacklistToken(ctx, token, s.jwtCfg.AccessExpiry)
}

func (s *authService) RefreshToken(refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtCfg.Secret)
	if err != nil {
		return nil, err
	}

	// Re-read the user so role or deactivation changes take effect
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return util.GenerateTokenPair(user.ID, user.BusinessID, user.Email, string(user.Role),
		s.jwtCfg.Secret, s.jwtCfg.AccessExpiry, s.jwtCfg.RefreshExpiry)
}

func (s *authService) GetUser(id uint) (*model.User, error) {
	return s.userRepo.FindByID(id)
}
