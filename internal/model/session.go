package model

import "time"

// Game rules
const (
	WordLength          = 5
	MaxPlayers          = 2
	MaxGuessesPerPlayer = 6
	MaxMoves            = MaxPlayers * MaxGuessesPerPlayer
)

// SessionID uniquely identifies a session
type SessionID string

// SessionStatus represents the current phase of a session
type SessionStatus string

const (
	StatusHasToStart SessionStatus = "HAS_TO_START" // Lobby, waiting for the host to start
	StatusInProgress SessionStatus = "IN_PROGRESS"  // Players are guessing
	StatusWon        SessionStatus = "WON"          // A player guessed the target
	StatusTied       SessionStatus = "TIED"         // Nobody guessed it, or force-closed
)

// IsTerminal returns true if no further transitions are possible
func (s SessionStatus) IsTerminal() bool {
	return s == StatusWon || s == StatusTied
}

// rank orders statuses so transitions can be checked for monotonicity
func (s SessionStatus) rank() int {
	switch s {
	case StatusHasToStart:
		return 0
	case StatusInProgress:
		return 1
	case StatusWon, StatusTied:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo returns true if moving from s to next never goes backward
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	if s.IsTerminal() {
		return false
	}
	return next.rank() > s.rank()
}

// Move is a single accepted guess
type Move struct {
	Player PlayerID
	Word   string
}

// Session is one match between two participants
type Session struct {
	ID           SessionID
	Participants []PlayerID // Ordered by join time; host first
	Host         PlayerID
	Word         string // Target word, lowercase
	PasswordHash string // bcrypt hash, empty if the session is open
	Status       SessionStatus
	Winner       PlayerID // Set only when Status is WON
	Moves        []Move   // Append-only
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Version is bumped by storage on every successful save
	Version int64
}

// HasParticipant returns true if the player is part of the session
func (s *Session) HasParticipant(playerID PlayerID) bool {
	for _, p := range s.Participants {
		if p == playerID {
			return true
		}
	}
	return false
}

// RemoveParticipant drops a player from the participant list.
// Returns false if the player was not a participant.
func (s *Session) RemoveParticipant(playerID PlayerID) bool {
	for i, p := range s.Participants {
		if p == playerID {
			s.Participants = append(s.Participants[:i], s.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// IsFull returns true if no more players can join
func (s *Session) IsFull() bool {
	return len(s.Participants) >= MaxPlayers
}

// RedactedPassword replaces the hash in views handed outside the service,
// keeping HasPassword intact
const RedactedPassword = "redacted"

// HasPassword returns true if joining requires a password
func (s *Session) HasPassword() bool {
	return s.PasswordHash != ""
}

// MovesBy returns the moves made by a single player, in order
func (s *Session) MovesBy(playerID PlayerID) []Move {
	var moves []Move
	for _, m := range s.Moves {
		if m.Player == playerID {
			moves = append(moves, m)
		}
	}
	return moves
}

// GuessesLeft returns how many guesses the player may still submit
func (s *Session) GuessesLeft(playerID PlayerID) int {
	return MaxGuessesPerPlayer - len(s.MovesBy(playerID))
}

// Opponent returns the other participant, or empty if there is none
func (s *Session) Opponent(playerID PlayerID) PlayerID {
	for _, p := range s.Participants {
		if p != playerID {
			return p
		}
	}
	return ""
}

// Clone returns a deep copy so callers can mutate without sharing slices
func (s *Session) Clone() *Session {
	c := *s
	c.Participants = append([]PlayerID(nil), s.Participants...)
	c.Moves = append([]Move(nil), s.Moves...)
	return &c
}

// GuessResult is returned to the player who submitted a guess
type GuessResult struct {
	Feedback    []LetterResult
	Status      SessionStatus
	Winner      PlayerID
	GuessesLeft int
}

// LeaveOutcome describes what a lobby disconnect did to the session
type LeaveOutcome int

const (
	LeaveNoop      LeaveOutcome = iota // Session already started or player not present
	LeaveRemoved                       // Non-host removed, slot reopened
	LeaveDisbanded                     // Host left, session deleted
)
