package response

import (
	"time"

	"github.com/mcoot/wordduel/internal/model"
	"github.com/mcoot/wordduel/internal/services/history"
)

// CreatedSession is returned to the host when a session is created.
// It is the only response that carries the word of a live session.
type CreatedSession struct {
	ID   string `json:"id"`
	Word string `json:"word"`
}

// Move represents one accepted guess
type Move struct {
	PlayerID string `json:"player_id"`
	Word     string `json:"word"`
}

// Session represents a session in API responses
type Session struct {
	ID           string    `json:"id"`
	Host         string    `json:"host"`
	Participants []string  `json:"participants"`
	Status       string    `json:"status"`
	Winner       string    `json:"winner,omitempty"`
	Word         string    `json:"word,omitempty"`
	HasPassword  bool      `json:"has_password"`
	Moves        []Move    `json:"moves"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionFromModel converts a model.Session to a response Session.
// Callers pass views that already have the word redacted where required.
func SessionFromModel(s *model.Session) Session {
	participants := make([]string, len(s.Participants))
	for i, p := range s.Participants {
		participants[i] = string(p)
	}
	moves := make([]Move, len(s.Moves))
	for i, m := range s.Moves {
		moves[i] = Move{PlayerID: string(m.Player), Word: m.Word}
	}
	return Session{
		ID:           string(s.ID),
		Host:         string(s.Host),
		Participants: participants,
		Status:       string(s.Status),
		Winner:       string(s.Winner),
		Word:         s.Word,
		HasPassword:  s.HasPassword(),
		Moves:        moves,
		CreatedAt:    s.CreatedAt,
	}
}

// OpenSession is a lobby browser entry
type OpenSession struct {
	ID          string    `json:"id"`
	Host        string    `json:"host"`
	Players     int       `json:"players"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
}

// OpenSessionsFromModel converts lobby listings
func OpenSessionsFromModel(sessions []*model.Session) []OpenSession {
	out := make([]OpenSession, len(sessions))
	for i, s := range sessions {
		out[i] = OpenSession{
			ID:          string(s.ID),
			Host:        string(s.Host),
			Players:     len(s.Participants),
			HasPassword: s.HasPassword(),
			CreatedAt:   s.CreatedAt,
		}
	}
	return out
}

// GuessResult is returned to the player who submitted a guess
type GuessResult struct {
	Feedback    []string `json:"feedback"`
	Status      string   `json:"status"`
	Winner      string   `json:"winner,omitempty"`
	GuessesLeft int      `json:"guesses_left"`
}

// GuessResultFromModel converts model.GuessResult
func GuessResultFromModel(r *model.GuessResult) GuessResult {
	return GuessResult{
		Feedback:    feedbackStrings(r.Feedback),
		Status:      string(r.Status),
		Winner:      string(r.Winner),
		GuessesLeft: r.GuessesLeft,
	}
}

func feedbackStrings(feedback []model.LetterResult) []string {
	out := make([]string, len(feedback))
	for i, f := range feedback {
		out[i] = string(f)
	}
	return out
}

// Row is one guess on a history board
type Row struct {
	Word     string   `json:"word"`
	Feedback []string `json:"feedback"`
}

// HistoryEntry is one finished session in a player's history
type HistoryEntry struct {
	SessionID     string    `json:"session_id"`
	Opponent      string    `json:"opponent"`
	Result        string    `json:"result"`
	Word          string    `json:"word"`
	PlayerBoard   []Row     `json:"player_board"`
	OpponentBoard []Row     `json:"opponent_board"`
	Date          time.Time `json:"date"`
}

// History is a player's record
type History struct {
	GamesPlayed int            `json:"games_played"`
	GamesWon    int            `json:"games_won"`
	Games       []HistoryEntry `json:"games"`
}

// HistoryFromService converts a history.History
func HistoryFromService(h *history.History) History {
	games := make([]HistoryEntry, len(h.Games))
	for i, g := range h.Games {
		games[i] = HistoryEntry{
			SessionID:     string(g.SessionID),
			Opponent:      string(g.Opponent),
			Result:        string(g.Result),
			Word:          g.Word,
			PlayerBoard:   rows(g.PlayerBoard),
			OpponentBoard: rows(g.OpponentBoard),
			Date:          g.Date,
		}
	}
	return History{
		GamesPlayed: h.GamesPlayed,
		GamesWon:    h.GamesWon,
		Games:       games,
	}
}

func rows(board []history.Row) []Row {
	out := make([]Row, len(board))
	for i, r := range board {
		out[i] = Row{Word: r.Word, Feedback: feedbackStrings(r.Feedback)}
	}
	return out
}
