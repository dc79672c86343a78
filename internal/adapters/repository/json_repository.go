package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/weddinginvite/core/internal/domain/entities"
	"github.com/weddinginvite/core/internal/infrastructure/logger"
	"github.com/weddinginvite/core/internal/ports"
)

// JSONMessageRepository keeps the whole guestbook in one pretty-printed
// JSON array. Every mutation rewrites the file; mu serialises them so two
// requests cannot interleave their read-modify-write cycles.
type JSONMessageRepository struct {
	mu     sync.RWMutex
	file   string
	logger *logger.Logger
}

// NewJSONMessageRepository creates a file backed message repository
func NewJSONMessageRepository(filePath string, log *logger.Logger) ports.MessageRepository {
	return &JSONMessageRepository{
		file:   filePath,
		logger: log.WithComponent("json_store"),
	}
}

// EnsureStorageLocation creates the data directory and any missing parents
func (r *JSONMessageRepository) EnsureStorageLocation(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(r.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// LoadAll reads the persisted array. A missing or empty file is an empty
// guestbook; anything else that cannot be decoded is reported.
func (r *JSONMessageRepository) LoadAll(ctx context.Context) ([]entities.GuestMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.load(ctx)
}

// SaveAll replaces the persisted array with messages
func (r *JSONMessageRepository) SaveAll(ctx context.Context, messages []entities.GuestMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.save(ctx, messages)
}

// Append adds message to the end of the guestbook
func (r *JSONMessageRepository) Append(ctx context.Context, message entities.GuestMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages, err := r.load(ctx)
	if err != nil {
		return err
	}

	for _, m := range messages {
		if m.ID == message.ID {
			return fmt.Errorf("%w: duplicate message id %s", entities.ErrStorageWrite, message.ID)
		}
	}

	return r.save(ctx, append(messages, message))
}

// DeleteByIDs drops every message whose id is in ids and returns how many
// were removed. Unknown ids are ignored. The file is left untouched when
// nothing matches.
func (r *JSONMessageRepository) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}

	kept := make([]entities.GuestMessage, 0, len(messages))
	for _, m := range messages {
		if _, ok := remove[m.ID]; !ok {
			kept = append(kept, m)
		}
	}

	removed := len(messages) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := r.save(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// HealthCheck verifies the file can be decoded
func (r *JSONMessageRepository) HealthCheck(ctx context.Context) error {
	_, err := r.LoadAll(ctx)
	return err
}

// Close is a no-op; the file is opened per operation
func (r *JSONMessageRepository) Close() error {
	return nil
}

func (r *JSONMessageRepository) load(ctx context.Context) ([]entities.GuestMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := os.ReadFile(r.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []entities.GuestMessage{}, nil
		}
		err = fmt.Errorf("%w: read %s: %v", entities.ErrStorageRead, r.file, err)
		r.logger.LogStoreOperation("load", msSince(start), err)
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []entities.GuestMessage{}, nil
	}

	if data[0] != '[' {
		err := fmt.Errorf("%w: %s does not hold a JSON array", entities.ErrStorageRead, r.file)
		r.logger.LogStoreOperation("load", msSince(start), err)
		return nil, err
	}

	messages := make([]entities.GuestMessage, 0)
	if err := json.Unmarshal(data, &messages); err != nil {
		err = fmt.Errorf("%w: decode %s: %v", entities.ErrStorageRead, r.file, err)
		r.logger.LogStoreOperation("load", msSince(start), err)
		return nil, err
	}

	r.logger.LogStoreOperation("load", msSince(start), nil)
	return messages, nil
}

func (r *JSONMessageRepository) save(ctx context.Context, messages []entities.GuestMessage) error {
	if messages == nil {
		messages = []entities.GuestMessage{}
	}

	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal messages: %v", entities.ErrStorageWrite, err)
	}

	if err := r.EnsureStorageLocation(ctx); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrStorageWrite, err)
	}

	start := time.Now()
	err = writeFileAtomic(r.file, data, 0644)
	if err != nil {
		err = fmt.Errorf("%w: %v", entities.ErrStorageWrite, err)
	}
	r.logger.LogStoreOperation("save", msSince(start), err)
	return err
}

// writeFileAtomic writes data next to path and renames it into place so a
// crash mid-write never leaves a truncated guestbook behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1000000
}
