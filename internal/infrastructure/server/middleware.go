package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/weddinginvite/core/internal/ports"
)

const contextKeyAdminToken = "admin_token_id"

// adminMiddleware requires a valid admin bearer token on moderation
// routes. With no admin password configured every request passes through.
func (s *Server) adminMiddleware(authService ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !authService.Enabled() {
				return next(c)
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", c.RealIP(), map[string]interface{}{
					"error":    err.Error(),
					"endpoint": c.Request().URL.Path,
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(contextKeyAdminToken, claims.TokenID)

			return next(c)
		}
	}
}
