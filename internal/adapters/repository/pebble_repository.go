package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/weddinginvite/core/internal/domain/entities"
	"github.com/weddinginvite/core/internal/infrastructure/logger"
	"github.com/weddinginvite/core/internal/ports"
)

// Key layout:
//
//	message:<seq %020d>  -> GuestMessage JSON, iterated in insertion order
//	index:<id>           -> the message key holding that id
const (
	messagePrefix = "message:"
	indexPrefix   = "index:"
)

// PebbleMessageRepository stores each guest message under its own key so
// deletes touch only the affected entries.
type PebbleMessageRepository struct {
	mu     sync.Mutex
	db     *pebble.DB
	dir    string
	seq    uint64
	logger *logger.Logger
}

// NewPebbleMessageRepository opens (or creates) the pebble database in dir
func NewPebbleMessageRepository(dir string, log *logger.Logger) (ports.MessageRepository, error) {
	r := &PebbleMessageRepository{
		dir:    dir,
		logger: log.WithComponent("pebble_store"),
	}

	if err := r.EnsureStorageLocation(context.Background()); err != nil {
		return nil, err
	}

	r.logger.Infow("opening_pebble_db", "path", dir)
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		r.logger.Errorw("pebble_open_failed", "path", dir, "error", err)
		return nil, fmt.Errorf("failed to open pebble db: %w", err)
	}
	r.db = db

	seq, err := r.lastSeq()
	if err != nil {
		db.Close()
		return nil, err
	}
	r.seq = seq

	return r, nil
}

// EnsureStorageLocation creates the database directory
func (r *PebbleMessageRepository) EnsureStorageLocation(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", r.dir, err)
	}
	return nil
}

// LoadAll returns every message in insertion order
func (r *PebbleMessageRepository) LoadAll(ctx context.Context) ([]entities.GuestMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iter, err := r.db.NewIter(prefixBounds(messagePrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStorageRead, err)
	}
	defer iter.Close()

	messages := make([]entities.GuestMessage, 0)
	for iter.First(); iter.Valid(); iter.Next() {
		var m entities.GuestMessage
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			r.logger.Errorw("invalid_message_json", "key", string(iter.Key()), "error", err)
			return nil, fmt.Errorf("%w: decode %s: %v", entities.ErrStorageRead, iter.Key(), err)
		}
		messages = append(messages, m)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStorageRead, err)
	}

	return messages, nil
}

// SaveAll replaces the stored messages with messages in one batch
func (r *PebbleMessageRepository) SaveAll(ctx context.Context, messages []entities.GuestMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	batch := r.db.NewBatch()
	defer batch.Close()

	if err := batch.DeleteRange([]byte(messagePrefix), prefixEnd(messagePrefix), nil); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrStorageWrite, err)
	}
	if err := batch.DeleteRange([]byte(indexPrefix), prefixEnd(indexPrefix), nil); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrStorageWrite, err)
	}

	var seq uint64
	for _, m := range messages {
		seq++
		if err := putMessage(batch, seq, m); err != nil {
			return err
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		r.logger.Errorw("save_all_failed", "error", err)
		return fmt.Errorf("%w: %v", entities.ErrStorageWrite, err)
	}
	r.seq = seq
	return nil
}

// Append stores message after all existing ones
func (r *PebbleMessageRepository) Append(ctx context.Context, message entities.GuestMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found, err := r.lookup(message.ID); err != nil {
		return err
	} else if found {
		return fmt.Errorf("%w: duplicate message id %s", entities.ErrStorageWrite, message.ID)
	}

	batch := r.db.NewBatch()
	defer batch.Close()

	seq := r.seq + 1
	if err := putMessage(batch, seq, message); err != nil {
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		r.logger.Errorw("save_message_failed", "msg_id", message.ID, "error", err)
		return fmt.Errorf("%w: %v", entities.ErrStorageWrite, err)
	}
	r.seq = seq

	r.logger.Debugw("message_saved", "msg_id", message.ID, "seq", seq)
	return nil
}

// DeleteByIDs removes the messages with the given ids
func (r *PebbleMessageRepository) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	batch := r.db.NewBatch()
	defer batch.Close()

	seen := make(map[string]struct{}, len(ids))
	removed := 0
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		msgKey, found, err := r.lookup(id)
		if err != nil {
			return 0, err
		}
		if !found {
			continue
		}
		if err := batch.Delete(msgKey, nil); err != nil {
			return 0, fmt.Errorf("%w: %v", entities.ErrStorageWrite, err)
		}
		if err := batch.Delete([]byte(indexPrefix+id), nil); err != nil {
			return 0, fmt.Errorf("%w: %v", entities.ErrStorageWrite, err)
		}
		removed++
	}

	if removed == 0 {
		return 0, nil
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		r.logger.Errorw("delete_messages_failed", "error", err)
		return 0, fmt.Errorf("%w: %v", entities.ErrStorageWrite, err)
	}
	return removed, nil
}

// HealthCheck verifies every stored message decodes
func (r *PebbleMessageRepository) HealthCheck(ctx context.Context) error {
	_, err := r.LoadAll(ctx)
	return err
}

// Close closes the pebble database
func (r *PebbleMessageRepository) Close() error {
	if r.db == nil {
		return nil
	}
	if err := r.db.Close(); err != nil {
		return err
	}
	r.db = nil
	r.logger.Infow("pebble_closed")
	return nil
}

func (r *PebbleMessageRepository) lookup(id string) ([]byte, bool, error) {
	v, closer, err := r.db.Get([]byte(indexPrefix + id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", entities.ErrStorageRead, err)
	}
	key := append([]byte(nil), v...)
	closer.Close()
	return key, true, nil
}

func (r *PebbleMessageRepository) lastSeq() (uint64, error) {
	iter, err := r.db.NewIter(prefixBounds(messagePrefix))
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	seq, err := strconv.ParseUint(strings.TrimPrefix(string(iter.Key()), messagePrefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed key %q", entities.ErrStorageRead, iter.Key())
	}
	return seq, nil
}

func putMessage(batch *pebble.Batch, seq uint64, m entities.GuestMessage) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("%w: marshal message: %v", entities.ErrStorageWrite, err)
	}
	key := messageKey(seq)
	if err := batch.Set(key, data, nil); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrStorageWrite, err)
	}
	if err := batch.Set([]byte(indexPrefix+m.ID), key, nil); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrStorageWrite, err)
	}
	return nil
}

func messageKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", messagePrefix, seq))
}

func prefixBounds(prefix string) *pebble.IterOptions {
	return &pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: prefixEnd(prefix),
	}
}

// prefixEnd returns the smallest key greater than every key with prefix
func prefixEnd(prefix string) []byte {
	end := []byte(prefix)
	end[len(end)-1]++
	return end
}
