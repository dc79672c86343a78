package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/weddinginvite/core/internal/domain/entities"
	"github.com/weddinginvite/core/internal/infrastructure/logger"
	"github.com/weddinginvite/core/internal/ports"
)

// AuthHandler handles admin login
type AuthHandler struct {
	authService ports.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login exchanges the admin password for a bearer token
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Password is required")
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	switch {
	case errors.Is(err, entities.ErrAdminDisabled):
		return echo.NewHTTPError(http.StatusNotFound, "Admin access is not configured")
	case errors.Is(err, entities.ErrInvalidCredentials):
		h.logger.LogSecurityEvent("admin_login_failed", c.RealIP(), nil)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case err != nil:
		h.logger.Errorw("Login failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed").SetInternal(err)
	}

	return c.JSON(http.StatusOK, response)
}
