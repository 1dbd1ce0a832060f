// Package guard rejects guesses resubmitted by the same player in quick succession.
package guard

import (
	"sync"
	"time"

	"github.com/mcoot/wordduel/internal/model"
)

// DefaultWindow is the minimum spacing between two accepted guesses of one player
const DefaultWindow = 500 * time.Millisecond

type entryKey struct {
	sessionID model.SessionID
	playerID  model.PlayerID
}

// Guard remembers the last accepted guess time per (session, player).
// It is advisory: losing its state only weakens duplicate protection.
type Guard struct {
	window time.Duration

	mu   sync.Mutex
	last map[entryKey]time.Time
}

// New creates a Guard with the given window (DefaultWindow if zero)
func New(window time.Duration) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Guard{
		window: window,
		last:   make(map[entryKey]time.Time),
	}
}

// Admit records now as the last accepted time and returns true, unless a guess
// from the same player in the same session was accepted less than window ago.
func (g *Guard) Admit(sessionID model.SessionID, playerID model.PlayerID, now time.Time) bool {
	key := entryKey{sessionID: sessionID, playerID: playerID}

	g.mu.Lock()
	defer g.mu.Unlock()

	if prev, ok := g.last[key]; ok && now.Sub(prev) < g.window {
		return false
	}
	g.last[key] = now
	return true
}

// Purge forgets every entry of a session
func (g *Guard) Purge(sessionID model.SessionID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key := range g.last {
		if key.sessionID == sessionID {
			delete(g.last, key)
		}
	}
}

// Len returns the number of tracked (session, player) pairs
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.last)
}

// Window returns the configured rejection window
func (g *Guard) Window() time.Duration {
	return g.window
}
