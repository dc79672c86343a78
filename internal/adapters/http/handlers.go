package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/weddinginvite/core/internal/domain/entities"
	"github.com/weddinginvite/core/internal/infrastructure/logger"
	"github.com/weddinginvite/core/internal/ports"
)

// GuestMessageHandler handles guestbook requests
type GuestMessageHandler struct {
	service ports.GuestMessageService
	logger  *logger.Logger
}

// NewGuestMessageHandler creates a new guest message handler
func NewGuestMessageHandler(service ports.GuestMessageService, logger *logger.Logger) *GuestMessageHandler {
	return &GuestMessageHandler{
		service: service,
		logger:  logger,
	}
}

// ListMessages returns the whole guestbook
func (h *GuestMessageHandler) ListMessages(c echo.Context) error {
	messages, err := h.service.List(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List messages failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read messages").SetInternal(err)
	}

	return c.JSON(http.StatusOK, messages)
}

// CreateMessage handles a guest submitting an RSVP/blessing
func (h *GuestMessageHandler) CreateMessage(c echo.Context) error {
	var req ports.SubmitMessageRequest
	if err := c.Bind(&req); err != nil {
		if errors.Is(err, entities.ErrInvalidAttendeeCount) {
			return echo.NewHTTPError(http.StatusBadRequest, entities.ErrInvalidAttendeeCount.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
	}

	message, err := h.service.Submit(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidAttendeeCount) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.Errorw("Create message failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save message").SetInternal(err)
	}

	return c.JSON(http.StatusCreated, message)
}

// DeleteMessage removes the message named by the id query parameter
func (h *GuestMessageHandler) DeleteMessage(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Message ID is required")
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		h.logger.Errorw("Delete message failed", "error", err, "message_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete message").SetInternal(err)
	}

	return c.JSON(http.StatusOK, ports.SuccessResponse{Success: true})
}

// DeleteMessages removes every message listed in the request body
func (h *GuestMessageHandler) DeleteMessages(c echo.Context) error {
	var req ports.DeleteBatchRequest
	binder := &echo.DefaultBinder{}
	if err := binder.BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Message IDs array is required")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Message IDs array is required")
	}

	deleted, err := h.service.DeleteBatch(c.Request().Context(), req.IDs)
	if err != nil {
		h.logger.Errorw("Batch delete failed", "error", err, "requested", len(req.IDs))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete messages").SetInternal(err)
	}

	return c.JSON(http.StatusOK, ports.DeleteBatchResponse{
		Success:      true,
		DeletedCount: deleted,
	})
}

// SearchMessages filters the guestbook by name or message text
func (h *GuestMessageHandler) SearchMessages(c echo.Context) error {
	messages, err := h.service.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		h.logger.Errorw("Search messages failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read messages").SetInternal(err)
	}

	return c.JSON(http.StatusOK, messages)
}

// GetStats returns message and attendee totals
func (h *GuestMessageHandler) GetStats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		h.logger.Errorw("Get stats failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read messages").SetInternal(err)
	}

	return c.JSON(http.StatusOK, stats)
}

// Request/Response types
type ErrorResponse struct {
	Error string `json:"error"`
}
