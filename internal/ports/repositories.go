package ports

import (
	"context"

	"github.com/weddinginvite/core/internal/domain/entities"
)

// MessageRepository is the sole gateway to persisted guest messages.
//
// LoadAll returns an empty collection when nothing has been stored yet and
// an error wrapping entities.ErrStorageRead when the store exists but cannot
// be read. Mutations either apply completely or not at all.
type MessageRepository interface {
	EnsureStorageLocation(ctx context.Context) error
	LoadAll(ctx context.Context) ([]entities.GuestMessage, error)
	SaveAll(ctx context.Context, messages []entities.GuestMessage) error
	Append(ctx context.Context, message entities.GuestMessage) error
	DeleteByIDs(ctx context.Context, ids []string) (int, error)
	HealthCheck(ctx context.Context) error
	Close() error
}
