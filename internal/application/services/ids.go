package services

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator hands out decimal millisecond tokens. Two calls inside the
// same millisecond (or after the clock steps back) get consecutive values,
// so ids stay unique and sortable for the life of the process.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates a generator driven by the wall clock
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// NextID returns the next id
func (g *IDGenerator) NextID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms

	return strconv.FormatInt(ms, 10)
}
