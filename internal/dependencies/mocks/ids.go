package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/dutyledger/internal/dependencies/ids"
)

// MockIDs is a deterministic Generator for testing. Queued values are
// returned first; once the queue is empty it counts up from "<prefix>-1".
type MockIDs struct {
	mu     sync.Mutex
	prefix string
	queue  []string
	next   int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a MockIDs that generates ids with the given prefix
func NewMockIDs(prefix string) *MockIDs {
	return &MockIDs{prefix: prefix}
}

// NewID returns the next queued id, or the next sequential id
func (g *MockIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queue) > 0 {
		id := g.queue[0]
		g.queue = g.queue[1:]
		return id
	}
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}

// Queue adds values to be returned before sequential ids
func (g *MockIDs) Queue(values ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = append(g.queue, values...)
}
