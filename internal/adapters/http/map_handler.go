package http

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/weddinginvite/core/internal/infrastructure/logger"
)

// MapHandler serves the embeddable venue map page
type MapHandler struct {
	publicDir string
	logger    *logger.Logger
}

// NewMapHandler creates a map handler reading from publicDir
func NewMapHandler(publicDir string, logger *logger.Logger) *MapHandler {
	return &MapHandler{
		publicDir: publicDir,
		logger:    logger,
	}
}

// GetMap returns map.html with long-lived cache headers
func (h *MapHandler) GetMap(c echo.Context) error {
	content, err := os.ReadFile(filepath.Join(h.publicDir, "map.html"))
	if err != nil {
		h.logger.Errorw("Error reading map.html", "error", err)
		return c.String(http.StatusNotFound, "Map not found")
	}

	header := c.Response().Header()
	header.Set("Cache-Control", "public, max-age=31536000, immutable")
	header.Set(echo.HeaderAccessControlAllowOrigin, "*")
	header.Set(echo.HeaderAccessControlAllowMethods, "GET, POST, OPTIONS")
	header.Set(echo.HeaderAccessControlAllowHeaders, echo.HeaderContentType)

	return c.Blob(http.StatusOK, "text/html; charset=utf-8", content)
}
