package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/weddinginvite/core/internal/domain/entities"
	"github.com/weddinginvite/core/internal/infrastructure/config"
	"github.com/weddinginvite/core/internal/infrastructure/logger"
	"github.com/weddinginvite/core/internal/ports"
)

const adminSubject = "admin"

// Claims represents the JWT claims
type Claims struct {
	jwt.RegisteredClaims
}

// AuthService guards moderation routes with the couple's single password
type AuthService struct {
	adminConfig config.AdminConfig
	logger      *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(adminConfig config.AdminConfig, logger *logger.Logger) *AuthService {
	return &AuthService{
		adminConfig: adminConfig,
		logger:      logger.WithComponent("auth_service"),
	}
}

// Enabled reports whether an admin password has been configured
func (s *AuthService) Enabled() bool {
	return s.adminConfig.Enabled()
}

// Login checks the admin password and returns an access token
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	if !s.Enabled() {
		return nil, entities.ErrAdminDisabled
	}

	err := bcrypt.CompareHashAndPassword([]byte(s.adminConfig.PasswordHash), []byte(req.Password))
	if err != nil {
		s.logger.Warn("Admin login attempt with invalid password")
		return nil, entities.ErrInvalidCredentials
	}

	accessToken, err := s.generateAccessToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	s.logger.Info("Admin logged in")

	return &ports.AuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.adminConfig.ExpiresIn.Seconds()),
	}, nil
}

// ValidateToken validates a JWT token and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*ports.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.adminConfig.JWTSecret), nil
	}, jwt.WithIssuer(s.adminConfig.Issuer), jwt.WithSubject(adminSubject))

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &ports.Claims{
		Subject: claims.Subject,
		TokenID: claims.ID,
	}, nil
}

func (s *AuthService) generateAccessToken() (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.adminConfig.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.adminConfig.Issuer,
			Subject:   adminSubject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.adminConfig.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
