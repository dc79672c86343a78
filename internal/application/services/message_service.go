package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/weddinginvite/core/internal/domain/entities"
	"github.com/weddinginvite/core/internal/infrastructure/logger"
	"github.com/weddinginvite/core/internal/ports"
)

// MessageService handles guestbook operations
type MessageService struct {
	repo    ports.MessageRepository
	ids     *IDGenerator
	metrics ports.MetricsRecorder
	logger  *logger.Logger
	now     func() time.Time
}

// NewMessageService creates a new message service. metrics may be nil.
func NewMessageService(repo ports.MessageRepository, metrics ports.MetricsRecorder, logger *logger.Logger) *MessageService {
	return &MessageService{
		repo:    repo,
		ids:     NewIDGenerator(),
		metrics: metrics,
		logger:  logger.WithComponent("message_service"),
		now:     time.Now,
	}
}

// Submit stores a new guest message and returns it
func (s *MessageService) Submit(ctx context.Context, req ports.SubmitMessageRequest) (*entities.GuestMessage, error) {
	if req.AttendeeCount < 1 {
		return nil, entities.ErrInvalidAttendeeCount
	}

	message := entities.GuestMessage{
		ID:            s.ids.NextID(),
		Name:          req.Name,
		AttendeeCount: int(req.AttendeeCount),
		Message:       req.Message,
		Timestamp:     entities.FormatTimestamp(s.now()),
	}

	if err := s.repo.Append(ctx, message); err != nil {
		s.recordFailure("append")
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	if s.metrics != nil {
		s.metrics.MessageSubmitted()
	}
	s.logger.Infow("Guest message saved", "message_id", message.ID, "attendee_count", message.AttendeeCount)

	return &message, nil
}

// List returns every stored message in stored order
func (s *MessageService) List(ctx context.Context) ([]entities.GuestMessage, error) {
	messages, err := s.repo.LoadAll(ctx)
	if err != nil {
		s.recordFailure("load")
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return messages, nil
}

// Search returns messages whose name or text contains term
func (s *MessageService) Search(ctx context.Context, term string) ([]entities.GuestMessage, error) {
	messages, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.TrimSpace(term)
	if term == "" {
		return messages, nil
	}

	matched := make([]entities.GuestMessage, 0, len(messages))
	for i := range messages {
		if messages[i].Matches(term) {
			matched = append(matched, messages[i])
		}
	}
	return matched, nil
}

// Stats summarises the guestbook
func (s *MessageService) Stats(ctx context.Context) (*entities.MessageStats, error) {
	messages, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := entities.ComputeStats(messages)
	return &stats, nil
}

// Delete removes one message. Unknown ids are not an error.
func (s *MessageService) Delete(ctx context.Context, id string) error {
	_, err := s.DeleteBatch(ctx, []string{id})
	return err
}

// DeleteBatch removes every message in ids and reports how many were removed
func (s *MessageService) DeleteBatch(ctx context.Context, ids []string) (int, error) {
	removed, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		s.recordFailure("delete")
		return 0, fmt.Errorf("failed to delete messages: %w", err)
	}

	if s.metrics != nil {
		s.metrics.MessagesDeleted(removed)
	}
	s.logger.LogAdminAction("delete_messages", map[string]interface{}{
		"requested": len(ids),
		"deleted":   removed,
	})

	return removed, nil
}

func (s *MessageService) recordFailure(operation string) {
	if s.metrics != nil {
		s.metrics.StoreFailure(operation)
	}
}
