package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Lobby events
	EventPlayerConnected    EventType = "PLAYER_CONNECTED"
	EventPlayerDisconnected EventType = "PLAYER_DISCONNECTED"
	EventHostDisconnected   EventType = "HOST_DISCONNECTED"
	EventSocketConflict     EventType = "SOCKET_CONFLICT"

	// Game events
	EventGameStarted EventType = "GAME_STARTED"
	EventGameMoves   EventType = "GAME_MOVES"
	EventGameEnded   EventType = "GAME_ENDED"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType
	Timestamp time.Time
	SessionID SessionID
	Payload   any // Type-specific data, nil when the event carries none
}

// PlayerPayload identifies the participant a lobby event is about
type PlayerPayload struct {
	PlayerID PlayerID
}

// GameMovesPayload contains the feedback for one accepted guess
type GameMovesPayload struct {
	PlayerID PlayerID
	Feedback []LetterResult
}

// GameEndedPayload contains data for game ended events
type GameEndedPayload struct {
	Result SessionStatus
	Winner PlayerID // Empty if tied
	Word   string
}
