package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Common errors
var (
	ErrStorageRead          = errors.New("message store unreadable")
	ErrStorageWrite         = errors.New("message store unwritable")
	ErrInvalidAttendeeCount = errors.New("attendeeCount must be a positive whole number")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAdminDisabled        = errors.New("admin access is not configured")
)

// TimestampLayout is the ISO-8601 form persisted in GuestMessage.Timestamp
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// GuestMessage is a single RSVP/blessing left by a guest. It is never
// mutated after creation.
type GuestMessage struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AttendeeCount int    `json:"attendeeCount"`
	Message       string `json:"message"`
	Timestamp     string `json:"timestamp"`
}

// CreatedAt parses Timestamp. Unparseable values yield the zero time.
func (m *GuestMessage) CreatedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, m.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Matches reports whether term occurs in the name or message, ignoring case
func (m *GuestMessage) Matches(term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(m.Name), term) ||
		strings.Contains(strings.ToLower(m.Message), term)
}

// FormatTimestamp renders t the way stored timestamps are written
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// AttendeeCount accepts either a JSON number or a numeric string. Anything
// that is not a whole number is rejected instead of being stored as-is.
type AttendeeCount int

func (a *AttendeeCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidAttendeeCount
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			// empty string is falsy, treated as missing
			*a = 0
			return nil
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return ErrInvalidAttendeeCount
		}
		n = int(f)
	}

	*a = AttendeeCount(n)
	return nil
}

// MessageStats summarises the guestbook for the admin view
type MessageStats struct {
	TotalMessages int     `json:"totalMessages"`
	TotalGuests   int     `json:"totalGuests"`
	AverageGuests float64 `json:"averageGuests"`
}

// ComputeStats totals attendee counts over messages
func ComputeStats(messages []GuestMessage) MessageStats {
	stats := MessageStats{TotalMessages: len(messages)}
	for _, m := range messages {
		stats.TotalGuests += m.AttendeeCount
	}
	if stats.TotalMessages > 0 {
		avg := float64(stats.TotalGuests) / float64(stats.TotalMessages)
		stats.AverageGuests = math.Round(avg*10) / 10
	}
	return stats
}
