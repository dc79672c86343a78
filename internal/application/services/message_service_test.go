package services

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weddinginvite/core/internal/adapters/repository"
	"github.com/weddinginvite/core/internal/domain/entities"
	"github.com/weddinginvite/core/internal/infrastructure/logger"
	"github.com/weddinginvite/core/internal/ports"
)

type recorder struct {
	submitted int
	deleted   int
	failures  []string
}

func (r *recorder) MessageSubmitted() { r.submitted++ }
func (r *recorder) MessagesDeleted(n int) { r.deleted += n }
func (r *recorder) StoreFailure(op string) { r.failures = append(r.failures, op) }

// brokenRepository fails every operation
type brokenRepository struct{}

func (brokenRepository) EnsureStorageLocation(context.Context) error { return nil }
func (brokenRepository) LoadAll(context.Context) ([]entities.GuestMessage, error) {
	return nil, entities.ErrStorageRead
}
func (brokenRepository) SaveAll(context.Context, []entities.GuestMessage) error {
	return entities.ErrStorageWrite
}
func (brokenRepository) Append(context.Context, entities.GuestMessage) error {
	return entities.ErrStorageWrite
}
func (brokenRepository) DeleteByIDs(context.Context, []string) (int, error) {
	return 0, entities.ErrStorageRead
}
func (brokenRepository) HealthCheck(context.Context) error { return entities.ErrStorageRead }
func (brokenRepository) Close() error { return nil }

func newTestService(t *testing.T) (*MessageService, *recorder) {
	t.Helper()
	repo := repository.NewJSONMessageRepository(filepath.Join(t.TempDir(), "guest-messages.json"), logger.NewNop())
	rec := &recorder{}
	return NewMessageService(repo, rec, logger.NewNop()), rec
}

func submit(t *testing.T, svc *MessageService, name string, count int, text string) *entities.GuestMessage {
	t.Helper()
	msg, err := svc.Submit(context.Background(), ports.SubmitMessageRequest{
		Name:          name,
		AttendeeCount: entities.AttendeeCount(count),
		Message:       text,
	})
	require.NoError(t, err)
	return msg
}

func TestSubmitBuildsMessage(t *testing.T) {
	svc, rec := newTestService(t)
	svc.now = func() time.Time { return time.Date(2024, 4, 5, 19, 34, 38, 901000000, time.UTC) }

	msg := submit(t, svc, "Amy", 2, "Congrats!")

	assert.Regexp(t, regexp.MustCompile(`^\d+$`), msg.ID)
	assert.Equal(t, "Amy", msg.Name)
	assert.Equal(t, 2, msg.AttendeeCount)
	assert.Equal(t, "Congrats!", msg.Message)
	assert.Equal(t, "2024-04-05T19:34:38.901Z", msg.Timestamp)
	assert.Equal(t, 1, rec.submitted)

	stored, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, *msg, stored[0])
}

func TestSubmitRejectsNonPositiveCount(t *testing.T) {
	svc, rec := newTestService(t)

	for _, count := range []int{0, -3} {
		_, err := svc.Submit(context.Background(), ports.SubmitMessageRequest{
			Name:          "Amy",
			AttendeeCount: entities.AttendeeCount(count),
			Message:       "hi",
		})
		assert.ErrorIs(t, err, entities.ErrInvalidAttendeeCount)
	}
	assert.Zero(t, rec.submitted)
}

func TestSubmitQuickSuccessionGetsDistinctIDs(t *testing.T) {
	svc, _ := newTestService(t)
	fixed := time.UnixMilli(1712345678901)
	svc.now = func() time.Time { return fixed }
	svc.ids = &IDGenerator{now: func() time.Time { return fixed }}

	first := submit(t, svc, "Amy", 1, "one")
	second := submit(t, svc, "Amy", 1, "two")

	assert.Equal(t, "1712345678901", first.ID)
	assert.Equal(t, "1712345678902", second.ID)
}

func TestListPreservesStoredOrder(t *testing.T) {
	svc, _ := newTestService(t)
	a := submit(t, svc, "Amy", 1, "first")
	b := submit(t, svc, "Rory", 2, "second")

	messages, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, a.ID, messages[0].ID)
	assert.Equal(t, b.ID, messages[1].ID)
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService(t)
	submit(t, svc, "Amy Pond", 2, "See you at the chapel")
	submit(t, svc, "Rory Williams", 1, "Wouldn't miss it, Amy")
	submit(t, svc, "Clara", 1, "Best wishes")

	found, err := svc.Search(context.Background(), "AMY")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = svc.Search(context.Background(), "wishes")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Clara", found[0].Name)

	found, err = svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Len(t, found, 3)

	found, err = svc.Search(context.Background(), "zzz")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestStats(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entities.MessageStats{}, *stats)

	submit(t, svc, "Amy", 2, "a")
	submit(t, svc, "Rory", 3, "b")

	stats, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalMessages)
	assert.Equal(t, 5, stats.TotalGuests)
	assert.Equal(t, 2.5, stats.AverageGuests)
}

func TestDeleteAndDeleteBatch(t *testing.T) {
	svc, rec := newTestService(t)
	a := submit(t, svc, "Amy", 1, "a")
	b := submit(t, svc, "Rory", 1, "b")
	c := submit(t, svc, "Clara", 1, "c")

	require.NoError(t, svc.Delete(context.Background(), a.ID))
	// unknown id is not an error
	require.NoError(t, svc.Delete(context.Background(), "123"))

	removed, err := svc.DeleteBatch(context.Background(), []string{b.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	messages, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, c.ID, messages[0].ID)
	assert.Equal(t, 2, rec.deleted)
}

func TestStoreFailuresAreWrapped(t *testing.T) {
	rec := &recorder{}
	svc := NewMessageService(brokenRepository{}, rec, logger.NewNop())
	ctx := context.Background()

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, entities.ErrStorageRead)

	_, err = svc.Submit(ctx, ports.SubmitMessageRequest{Name: "Amy", AttendeeCount: 1, Message: "hi"})
	assert.ErrorIs(t, err, entities.ErrStorageWrite)

	_, err = svc.DeleteBatch(ctx, []string{"1"})
	assert.True(t, errors.Is(err, entities.ErrStorageRead))

	assert.Equal(t, []string{"load", "append", "delete"}, rec.failures)
	assert.Zero(t, rec.submitted)
}

func TestNilMetricsRecorder(t *testing.T) {
	repo := repository.NewJSONMessageRepository(filepath.Join(t.TempDir(), "guest-messages.json"), logger.NewNop())
	svc := NewMessageService(repo, nil, logger.NewNop())

	msg := submit(t, svc, "Amy", 1, "hi")
	_, err := svc.DeleteBatch(context.Background(), []string{msg.ID})
	require.NoError(t, err)

	broken := NewMessageService(brokenRepository{}, nil, logger.NewNop())
	_, err = broken.List(context.Background())
	assert.Error(t, err)
}
