package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/wordduel/internal/model"
	"github.com/mcoot/wordduel/internal/services/evaluator"
	"github.com/mcoot/wordduel/internal/storage"
)

// Result is a finished session seen from one player's side
type Result string

const (
	ResultWon  Result = "WON"
	ResultLost Result = "LOST"
	ResultTied Result = "TIED"
)

// Row is one guess and its feedback
type Row struct {
	Word     string
	Feedback []model.LetterResult
}

// Entry summarizes one finished session
type Entry struct {
	SessionID     model.SessionID
	Opponent      model.PlayerID
	Result        Result
	Word          string
	PlayerBoard   []Row
	OpponentBoard []Row
	Date          time.Time
}

// History is a player's record of counted sessions, newest first
type History struct {
	Games       []Entry
	GamesWon    int
	GamesPlayed int
}

// Service builds player histories from stored sessions
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new history Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Counts reports whether a finished session counts towards history: a win
// needs at least one move, a tie needs the full twelve. Force-closed
// sessions therefore never count.
func Counts(session *model.Session) bool {
	switch session.Status {
	case model.StatusWon:
		return len(session.Moves) > 0
	case model.StatusTied:
		return len(session.Moves) == model.MaxMoves
	default:
		return false
	}
}

// ForPlayer returns the player's counted sessions
func (s *Service) ForPlayer(ctx context.Context, player model.PlayerID) (*History, error) {
	sessions, err := s.storage.FindSessions(ctx, storage.SessionFilter{
		Statuses:    []model.SessionStatus{model.StatusWon, model.StatusTied},
		Participant: player,
	})
	if err != nil {
		return nil, err
	}

	history := &History{Games: []Entry{}}
	for _, session := range sessions {
		if !Counts(session) {
			continue
		}

		entry := Entry{
			SessionID:     session.ID,
			Opponent:      session.Opponent(player),
			Result:        resultFor(session, player),
			Word:          session.Word,
			PlayerBoard:   board(session, player, true),
			OpponentBoard: board(session, player, false),
			Date:          session.CreatedAt,
		}
		if entry.Result == ResultWon {
			history.GamesWon++
		}
		history.Games = append(history.Games, entry)
	}
	history.GamesPlayed = len(history.Games)

	s.logger.Debug("history built",
		slog.String("player_id", string(player)),
		slog.Int("games_played", history.GamesPlayed),
	)
	return history, nil
}

func resultFor(session *model.Session, player model.PlayerID) Result {
	switch {
	case session.Winner == "":
		return ResultTied
	case session.Winner == player:
		return ResultWon
	default:
		return ResultLost
	}
}

// board collects the rows of player (mine) or of everyone else (!mine)
func board(session *model.Session, player model.PlayerID, mine bool) []Row {
	rows := []Row{}
	for _, move := range session.Moves {
		if (move.Player == player) != mine {
			continue
		}
		rows = append(rows, Row{
			Word:     move.Word,
			Feedback: evaluator.Evaluate(session.Word, move.Word),
		})
	}
	return rows
}
