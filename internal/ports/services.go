package ports

import (
	"context"

	"github.com/weddinginvite/core/internal/domain/entities"
)

// GuestMessageService interface for guestbook operations
type GuestMessageService interface {
	Submit(ctx context.Context, req SubmitMessageRequest) (*entities.GuestMessage, error)
	List(ctx context.Context) ([]entities.GuestMessage, error)
	Search(ctx context.Context, term string) ([]entities.GuestMessage, error)
	Stats(ctx context.Context) (*entities.MessageStats, error)
	Delete(ctx context.Context, id string) error
	DeleteBatch(ctx context.Context, ids []string) (int, error)
}

// AuthService interface for the single admin account
type AuthService interface {
	Enabled() bool
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// MetricsRecorder receives guestbook events for instrumentation
type MetricsRecorder interface {
	MessageSubmitted()
	MessagesDeleted(n int)
	StoreFailure(operation string)
}

// Request/Response Types

type SubmitMessageRequest struct {
	Name          string                 `json:"name" validate:"required"`
	AttendeeCount entities.AttendeeCount `json:"attendeeCount" validate:"required,min=1"`
	Message       string                 `json:"message" validate:"required"`
}

type DeleteBatchRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

type DeleteBatchResponse struct {
	Success      bool `json:"success"`
	DeletedCount int  `json:"deletedCount"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Claims struct {
	Subject string `json:"sub"`
	TokenID string `json:"jti"`
}
