package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wordduel/internal/model"
)

var frameTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestEncodeEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    model.Event
		expected string
	}{
		{
			name: "player connected",
			event: model.Event{
				Type:      model.EventPlayerConnected,
				SessionID: "s1",
				Timestamp: frameTime,
				Payload:   model.PlayerPayload{PlayerID: "alice"},
			},
			expected: `{"event":"PLAYER_CONNECTED","session_id":"s1","timestamp":"2024-01-01T12:00:00Z","data":{"player_id":"alice"}}`,
		},
		{
			name: "game started has no data",
			event: model.Event{
				Type:      model.EventGameStarted,
				SessionID: "s1",
				Timestamp: frameTime,
			},
			expected: `{"event":"GAME_STARTED","session_id":"s1","timestamp":"2024-01-01T12:00:00Z"}`,
		},
		{
			name: "game moves",
			event: model.Event{
				Type:      model.EventGameMoves,
				SessionID: "s1",
				Timestamp: frameTime,
				Payload: model.GameMovesPayload{
					PlayerID: "bob",
					Feedback: []model.LetterResult{
						model.LetterRight, model.LetterWrongPosition, model.LetterMissing,
						model.LetterMissing, model.LetterRight,
					},
				},
			},
			expected: `{"event":"GAME_MOVES","session_id":"s1","timestamp":"2024-01-01T12:00:00Z","data":{"player_id":"bob","feedback":["RIGHT","WRONG_POSITION","MISSING","MISSING","RIGHT"]}}`,
		},
		{
			name: "game ended tied omits winner",
			event: model.Event{
				Type:      model.EventGameEnded,
				SessionID: "s1",
				Timestamp: frameTime,
				Payload:   model.GameEndedPayload{Result: model.StatusTied, Word: "crane"},
			},
			expected: `{"event":"GAME_ENDED","session_id":"s1","timestamp":"2024-01-01T12:00:00Z","data":{"result":"TIED","word":"crane"}}`,
		},
		{
			name: "game ended won",
			event: model.Event{
				Type:      model.EventGameEnded,
				SessionID: "s1",
				Timestamp: frameTime,
				Payload:   model.GameEndedPayload{Result: model.StatusWon, Winner: "bob", Word: "crane"},
			},
			expected: `{"event":"GAME_ENDED","session_id":"s1","timestamp":"2024-01-01T12:00:00Z","data":{"result":"WON","winner":"bob","word":"crane"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := EncodeEvent(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(frame))
		})
	}
}

func TestDecodeFrame(t *testing.T) {
	frame, err := DecodeFrame([]byte(`{"event":"GAME_MOVES","session_id":"s1","timestamp":"2024-01-01T12:00:00Z","data":{"player_id":"bob","feedback":["RIGHT"]}}`))
	require.NoError(t, err)

	assert.Equal(t, model.EventGameMoves, frame.Event)
	assert.Equal(t, model.SessionID("s1"), frame.SessionID)
	assert.True(t, frameTime.Equal(frame.Timestamp))

	var data MovesData
	require.NoError(t, json.Unmarshal(frame.Data, &data))
	assert.Equal(t, model.PlayerID("bob"), data.PlayerID)
	assert.Equal(t, []model.LetterResult{model.LetterRight}, data.Feedback)
}

func TestDecodeFrameErrors(t *testing.T) {
	_, err := DecodeFrame([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeFrame([]byte(`{"session_id":"s1"}`))
	assert.Error(t, err)
}
