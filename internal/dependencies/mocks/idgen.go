package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/wordduel/internal/dependencies/idgen"
)

// MockIDGenerator returns queued IDs, then falls back to a counter
type MockIDGenerator struct {
	mu      sync.Mutex
	queue   []string
	counter int
}

// Ensure MockIDGenerator implements IDGenerator
var _ idgen.IDGenerator = (*MockIDGenerator)(nil)

// NewMockIDGenerator creates a new MockIDGenerator
func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

// NewID returns the next queued ID, or "id-N" if the queue is empty
func (g *MockIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queue) > 0 {
		id := g.queue[0]
		g.queue = g.queue[1:]
		return id
	}
	g.counter++
	return fmt.Sprintf("id-%d", g.counter)
}

// QueueID adds values to the ID queue
func (g *MockIDGenerator) QueueID(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = append(g.queue, ids...)
}
