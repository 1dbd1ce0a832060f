package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcoot/wordduel/internal/model"
)

// Frame is the JSON text frame sent to clients for every event
type Frame struct {
	Event     model.EventType `json:"event"`
	SessionID model.SessionID `json:"session_id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// PlayerData is the data of PLAYER_CONNECTED, PLAYER_DISCONNECTED and HOST_DISCONNECTED
type PlayerData struct {
	PlayerID model.PlayerID `json:"player_id"`
}

// MovesData is the data of GAME_MOVES
type MovesData struct {
	PlayerID model.PlayerID       `json:"player_id"`
	Feedback []model.LetterResult `json:"feedback"`
}

// EndedData is the data of GAME_ENDED
type EndedData struct {
	Result model.SessionStatus `json:"result"`
	Winner model.PlayerID      `json:"winner,omitempty"`
	Word   string              `json:"word"`
}

func wireData(payload any) any {
	switch p := payload.(type) {
	case model.PlayerPayload:
		return PlayerData{PlayerID: p.PlayerID}
	case model.GameMovesPayload:
		return MovesData{PlayerID: p.PlayerID, Feedback: p.Feedback}
	case model.GameEndedPayload:
		return EndedData{Result: p.Result, Winner: p.Winner, Word: p.Word}
	default:
		return p
	}
}

// EncodeEvent renders an event as a wire frame
func EncodeEvent(event model.Event) ([]byte, error) {
	frame := Frame{
		Event:     event.Type,
		SessionID: event.SessionID,
		Timestamp: event.Timestamp,
	}

	if data := wireData(event.Payload); data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s data: %w", event.Type, err)
		}
		frame.Data = raw
	}

	return json.Marshal(frame)
}

// DecodeFrame parses a wire frame; Data is left raw for the caller
func DecodeFrame(data []byte) (*Frame, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, err
	}
	if frame.Event == "" {
		return nil, fmt.Errorf("frame has no event type")
	}
	return &frame, nil
}
