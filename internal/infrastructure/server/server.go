package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/weddinginvite/core/docs"
	httpHandlers "github.com/weddinginvite/core/internal/adapters/http"
	"github.com/weddinginvite/core/internal/application/services"
	"github.com/weddinginvite/core/internal/infrastructure/config"
	"github.com/weddinginvite/core/internal/infrastructure/logger"
	"github.com/weddinginvite/core/internal/infrastructure/metrics"
	"github.com/weddinginvite/core/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	repo    ports.MessageRepository
	metrics *metrics.Metrics
}

// New creates a new server instance
func New(cfg *config.Config, repo ports.MessageRepository, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	e.Validator = httpHandlers.NewValidator()

	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	e.HTTPErrorHandler = customErrorHandler(appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
		repo:   repo,
	}

	var recorder ports.MetricsRecorder
	if cfg.Metrics.Enabled {
		server.metrics = metrics.New()
		recorder = server.metrics
	}

	// Initialize services
	messageService := services.NewMessageService(repo, recorder, appLogger)
	authService := services.NewAuthService(cfg.Admin, appLogger)

	// Initialize handlers
	messageHandler := httpHandlers.NewGuestMessageHandler(messageService, appLogger)
	authHandler := httpHandlers.NewAuthHandler(authService, appLogger)
	mapHandler := httpHandlers.NewMapHandler(cfg.Site.PublicDir, appLogger)

	server.setupMiddleware()

	if server.metrics != nil {
		server.setupMetrics()
	}

	server.setupRoutes(messageHandler, authHandler, mapHandler, authService)

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
				"request_id", values.RequestID,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.POST, echo.DELETE, echo.OPTIONS},
	}))

	if n := s.config.Security.RateLimitRequests; n > 0 {
		window := s.config.Security.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      rate.Limit(float64(n) / window.Seconds()),
					Burst:     n,
					ExpiresIn: window,
				},
			),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(context echo.Context, err error) error {
				return context.JSON(http.StatusForbidden, httpHandlers.ErrorResponse{Error: "rate limit exceeded"})
			},
			DenyHandler: func(context echo.Context, identifier string, err error) error {
				s.logger.LogSecurityEvent("rate_limited", identifier, map[string]interface{}{
					"path": context.Request().URL.Path,
				})
				return context.JSON(http.StatusTooManyRequests, httpHandlers.ErrorResponse{Error: "rate limit exceeded"})
			},
		}))
	}

	// map.html is embedded by the invitation page, so framing stays same-origin
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         31536000,
	}))

	if timeout := s.config.Server.RequestTimeout; timeout > 0 {
		s.echo.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: timeout,
		}))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(messageHandler *httpHandlers.GuestMessageHandler, authHandler *httpHandlers.AuthHandler, mapHandler *httpHandlers.MapHandler, authService ports.AuthService) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	api := s.echo.Group("/api")

	api.POST("/auth/login", authHandler.Login)
	api.GET("/map", mapHandler.GetMap)

	admin := s.adminMiddleware(authService)

	guestData := api.Group("/guest-data")
	guestData.GET("", messageHandler.ListMessages)
	guestData.POST("", messageHandler.CreateMessage)
	guestData.DELETE("", messageHandler.DeleteMessage, admin)
	guestData.DELETE("/batch", messageHandler.DeleteMessages, admin)
	guestData.GET("/search", messageHandler.SearchMessages, admin)
	guestData.GET("/stats", messageHandler.GetStats, admin)
}

// setupMetrics installs the Prometheus middleware and endpoint
func (s *Server) setupMetrics() {
	s.echo.Use(s.metrics.Middleware())
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if err := s.repo.HealthCheck(c.Request().Context()); err != nil {
		status = "error"
		checks["storage"] = map[string]interface{}{
			"status": "error",
			"driver": s.config.Storage.Driver,
			"error":  err.Error(),
		}
	} else {
		checks["storage"] = map[string]interface{}{
			"status": "ok",
			"driver": s.config.Storage.Driver,
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  runtime.Version(),
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.repo.HealthCheck(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "storage_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler renders every error as {"error": "..."}
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  = http.StatusText(http.StatusInternalServerError)
		)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		}

		if code >= http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, httpHandlers.ErrorResponse{Error: msg})
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
