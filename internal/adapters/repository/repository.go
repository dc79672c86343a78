package repository

import (
	"fmt"

	"github.com/weddinginvite/core/internal/infrastructure/config"
	"github.com/weddinginvite/core/internal/infrastructure/logger"
	"github.com/weddinginvite/core/internal/ports"
)

// Open returns the message repository selected by cfg.Driver
func Open(cfg config.StorageConfig, log *logger.Logger) (ports.MessageRepository, error) {
	switch cfg.Driver {
	case config.StorageDriverJSON, "":
		return NewJSONMessageRepository(cfg.MessagesFile(), log), nil
	case config.StorageDriverPebble:
		return NewPebbleMessageRepository(cfg.PebbleDir, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
