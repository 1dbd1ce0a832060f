package model

import "errors"

// Kind classifies an error so the boundary layer can map it to a transport status
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindStateFull
	KindStateWrong
	KindStateIncomplete
	KindInvalid
	KindOutOfMoves
	KindRateLimited
	KindUnavailable
)

// String returns the kind name used in logs and API error codes
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindConflict:
		return "CONFLICT"
	case KindStateFull:
		return "STATE_FULL"
	case KindStateWrong:
		return "STATE_WRONG"
	case KindStateIncomplete:
		return "STATE_INCOMPLETE"
	case KindInvalid:
		return "INVALID"
	case KindOutOfMoves:
		return "OUT_OF_MOVES"
	case KindRateLimited:
		return "RATE_LIMITED"
	case KindUnavailable:
		return "UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}

// Error is a domain error tagged with its kind
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of a domain error, or KindInternal for anything else
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound    = newError(KindNotFound, "session not found")
	ErrNotParticipant     = newError(KindForbidden, "player is not a participant of this session")
	ErrNotHost            = newError(KindForbidden, "player is not the host")
	ErrWrongPassword      = newError(KindForbidden, "wrong session password")
	ErrAlreadyParticipant = newError(KindConflict, "player is already in this session")
	ErrSessionFull        = newError(KindStateFull, "session is full")
	ErrWrongState         = newError(KindStateWrong, "action not allowed in the current session status")
	ErrNotEnoughPlayers   = newError(KindStateIncomplete, "not enough players to start")

	// Guess errors
	ErrInvalidGuess = newError(KindInvalid, "guess must be a 5 letter word")
	ErrUnknownWord  = newError(KindInvalid, "guess is not in the dictionary")
	ErrOutOfMoves   = newError(KindOutOfMoves, "player has used all guesses")
	ErrRateLimited  = newError(KindRateLimited, "guess submitted too quickly")

	// Realtime errors
	ErrMissingIdentity = newError(KindInvalid, "connection did not identify itself")
	ErrSocketConflict  = newError(KindConflict, "player already has a live connection")

	// Storage errors
	ErrVersionConflict = newError(KindUnavailable, "session was modified concurrently")

	// Dictionary errors
	ErrDictionaryNotLoaded = newError(KindUnavailable, "dictionary not loaded")
)
