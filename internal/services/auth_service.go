package services

import (
	"fmt"
	"strings"

	"github.com/mssola/user_agent"
	"github.com/railsetu/railway-reservation-backend/internal/config"
	"github.com/railsetu/railway-reservation-backend/internal/database"
	"github.com/railsetu/railway-reservation-backend/internal/models"
	"github.com/railsetu/railway-reservation-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles user registration and login
type AuthService struct {
	userRepo   *database.UserRepository
	jwtService *jwt.Service
	config     config.SecurityConfig
	logger     *logrus.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo *database.UserRepository,
	jwtService *jwt.Service,
	cfg config.SecurityConfig,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		config:     cfg,
		logger:     logger,
	}
}

// Register creates a new passenger account
func (s *AuthService) Register(req *models.RegisterRequest) (*models.User, error) {
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, &models.ValidationError{Message: "phone is required"}
	}
	if len(req.Password) < 8 {
		return nil, &models.ValidationError{Message: "password must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(phone, strings.TrimSpace(req.FullName), string(hash))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, &models.ValidationError{Message: "phone number is already registered"}
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"phone":   user.Phone,
	}).Info("User registered")

	return user, nil
}

// Login verifies credentials, records the session, and issues a token pair
func (s *AuthService) Login(req *models.LoginRequest, userAgent, ipAddress string) (*models.User, *models.TokenPair, error) {
	user, err := s.userRepo.GetUserByPhone(strings.TrimSpace(req.Phone))
	if err != nil {
		// Same response for unknown phone and wrong password
		return nil, nil, &models.ValidationError{Message: "invalid phone or password"}
	}

	if user.Status != models.UserStatusActive {
		return nil, nil, &models.ValidationError{Message: "account is suspended"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, &models.ValidationError{Message: "invalid phone or password"}
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	if user.HasRole(models.RoleAdmin) {
		s.logger.WithFields(logrus.Fields{
			"user_id":    user.ID,
			"ip_address": ipAddress,
		}).Info("Admin login")
	}

	s.recordSession(user.ID, userAgent, ipAddress)

	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(refreshToken string) (*models.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, &models.ValidationError{Message: "invalid refresh token"}
	}

	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, &models.ValidationError{Message: "account is suspended"}
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *models.User) (*models.TokenPair, error) {
	access, expiresIn, err := s.jwtService.GenerateAccessToken(user.ID, user.Phone, user.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtService.GenerateRefreshToken(user.ID, user.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
	}, nil
}

// recordSession is best effort; a failed session insert never blocks login
func (s *AuthService) recordSession(userID, userAgent, ipAddress string) {
	ua := user_agent.New(userAgent)
	browser, _ := ua.Browser()

	session := &models.UserSession{
		UserID:    userID,
		Browser:   browser,
		OS:        ua.OS(),
		Mobile:    ua.Mobile(),
		IPAddress: ipAddress,
	}

	if err := s.userRepo.CreateSession(session); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to record login session")
	}
}
