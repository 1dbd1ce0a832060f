package storage

//go:generate mockgen -source=interface.go -destination=mocks/mock_storage.go -package=mocks

import (
	"context"
	"sort"

	"github.com/mcoot/wordduel/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Session operations

	// SaveSession persists a session if its Version still matches the stored one
	// (0 for a session never saved). On success the stored and in-memory Version
	// are incremented; a mismatch returns model.ErrVersionConflict.
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	FindSessions(ctx context.Context, filter SessionFilter) ([]*model.Session, error)
	// DeleteSession returns model.ErrSessionNotFound if there is nothing to delete
	DeleteSession(ctx context.Context, id model.SessionID) error

	// Dictionary operations
	GetDictionaryWords(ctx context.Context) ([]string, error)
	SaveDictionaryWords(ctx context.Context, words []string) error
}

// SessionFilter selects sessions for FindSessions. Zero values match everything.
type SessionFilter struct {
	Statuses    []model.SessionStatus
	Participant model.PlayerID
}

// Matches returns true if the session satisfies the filter
func (f SessionFilter) Matches(s *model.Session) bool {
	if f.Participant != "" && !s.HasParticipant(f.Participant) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, status := range f.Statuses {
		if s.Status == status {
			return true
		}
	}
	return false
}

// SortNewestFirst orders sessions by creation time, most recent first
func SortNewestFirst(sessions []*model.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
}
