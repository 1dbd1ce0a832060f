package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/wordduel/internal/dependencies/clock"
	"github.com/mcoot/wordduel/internal/dependencies/idgen"
	"github.com/mcoot/wordduel/internal/model"
	"github.com/mcoot/wordduel/internal/services/dictionary"
	"github.com/mcoot/wordduel/internal/services/evaluator"
	"github.com/mcoot/wordduel/internal/services/guard"
	"github.com/mcoot/wordduel/internal/storage"
)

// MaxSaveAttempts bounds how often a mutation is retried after losing a version race
const MaxSaveAttempts = 5

// WordSource supplies target words and validates guesses
type WordSource interface {
	RandomWord() (string, error)
	IsValidWord(word string) bool
}

// Listener observes every persisted session mutation
type Listener interface {
	HandleEvent(ctx context.Context, event model.Event)
}

// errUnchanged tells mutate the session needs no save
var errUnchanged = errors.New("session unchanged")

// Controller owns the session state machine
type Controller struct {
	storage storage.Storage
	words   WordSource
	guard   *guard.Guard
	clock   clock.Clock
	ids     idgen.IDGenerator
	logger  *slog.Logger

	locks        *sessionLocks
	passwordCost int

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	words WordSource,
	guard *guard.Guard,
	clock clock.Clock,
	ids idgen.IDGenerator,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:      storage,
		words:        words,
		guard:        guard,
		clock:        clock,
		ids:          ids,
		logger:       logger,
		locks:        newSessionLocks(),
		passwordCost: bcrypt.DefaultCost,
	}
}

// WithPasswordCost overrides the bcrypt cost used for join passwords
func (c *Controller) WithPasswordCost(cost int) *Controller {
	c.passwordCost = cost
	return c
}

// AddListener registers l to receive events after each persisted mutation
func (c *Controller) AddListener(l Listener) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, l)
}

func (c *Controller) publish(ctx context.Context, events []model.Event) {
	if len(events) == 0 {
		return
	}

	c.listenersMu.RLock()
	listeners := append([]Listener(nil), c.listeners...)
	c.listenersMu.RUnlock()

	for _, event := range events {
		for _, l := range listeners {
			l.HandleEvent(ctx, event)
		}
	}
}

func (c *Controller) event(id model.SessionID, eventType model.EventType, payload any) model.Event {
	return model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		SessionID: id,
		Payload:   payload,
	}
}

// mutate loads the session, applies a change and saves it, retrying on a lost
// version race. Events returned by apply are published once the save succeeds.
func (c *Controller) mutate(
	ctx context.Context,
	id model.SessionID,
	apply func(session *model.Session, attempt int) ([]model.Event, error),
) (*model.Session, error) {
	unlock := c.locks.lock(id)

	var (
		session *model.Session
		events  []model.Event
		err     error
	)
	for attempt := 1; ; attempt++ {
		session, err = c.storage.GetSession(ctx, id)
		if err != nil {
			break
		}

		events, err = apply(session, attempt)
		if err != nil {
			break
		}

		session.UpdatedAt = c.clock.Now()
		err = c.storage.SaveSession(ctx, session)
		if err == nil || !errors.Is(err, model.ErrVersionConflict) || attempt >= MaxSaveAttempts {
			break
		}

		c.logger.Debug("session save lost race, retrying",
			slog.String("session_id", string(id)),
			slog.Int("attempt", attempt),
		)
	}
	unlock()

	if errors.Is(err, errUnchanged) {
		return session, nil
	}
	if err != nil {
		return nil, err
	}

	if session.Status.IsTerminal() {
		c.guard.Purge(id)
	}
	c.publish(ctx, events)
	return session, nil
}

// CreateSession opens a new lobby hosted by creator. An empty password leaves it open.
// The returned session carries the target word.
func (c *Controller) CreateSession(ctx context.Context, creator model.PlayerID, password string) (*model.Session, error) {
	if creator == "" {
		return nil, model.ErrMissingIdentity
	}

	word, err := c.words.RandomWord()
	if err != nil {
		return nil, err
	}

	var hash string
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), c.passwordCost)
		if err != nil {
			return nil, err
		}
		hash = string(b)
	}

	now := c.clock.Now()
	session := &model.Session{
		ID:           model.SessionID(c.ids.NewID()),
		Participants: []model.PlayerID{creator},
		Host:         creator,
		Word:         word,
		PasswordHash: hash,
		Status:       model.StatusHasToStart,
		Moves:        []model.Move{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.String("host", string(creator)),
		slog.Bool("password", session.HasPassword()),
	)
	return session, nil
}

// GetSession returns the session as seen by requester. The target word is
// withheld until the session has ended.
func (c *Controller) GetSession(ctx context.Context, id model.SessionID, requester model.PlayerID) (*model.Session, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(requester) {
		return nil, model.ErrNotParticipant
	}
	return redact(session), nil
}

// ListOpenSessions returns lobbies still waiting for players, newest first
func (c *Controller) ListOpenSessions(ctx context.Context) ([]*model.Session, error) {
	sessions, err := c.storage.FindSessions(ctx, storage.SessionFilter{
		Statuses: []model.SessionStatus{model.StatusHasToStart},
	})
	if err != nil {
		return nil, err
	}
	for i, s := range sessions {
		sessions[i] = redact(s)
	}
	return sessions, nil
}

func redact(session *model.Session) *model.Session {
	view := session.Clone()
	if !view.Status.IsTerminal() {
		view.Word = ""
	}
	if view.HasPassword() {
		view.PasswordHash = model.RedactedPassword
	}
	return view
}

// JoinSession adds participant as the second player
func (c *Controller) JoinSession(ctx context.Context, id model.SessionID, participant model.PlayerID, password string) error {
	_, err := c.mutate(ctx, id, func(session *model.Session, _ int) ([]model.Event, error) {
		if session.HasParticipant(participant) {
			return nil, model.ErrAlreadyParticipant
		}
		if session.IsFull() {
			return nil, model.ErrSessionFull
		}
		if session.Status != model.StatusHasToStart {
			return nil, model.ErrWrongState
		}
		if session.HasPassword() {
			if password == "" {
				return nil, model.ErrWrongPassword
			}
			if err := bcrypt.CompareHashAndPassword([]byte(session.PasswordHash), []byte(password)); err != nil {
				return nil, model.ErrWrongPassword
			}
		}

		session.Participants = append(session.Participants, participant)
		return nil, nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("player joined session",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(participant)),
	)
	return nil
}

// StartSession moves a full lobby into play. Only the host may start.
func (c *Controller) StartSession(ctx context.Context, id model.SessionID, requester model.PlayerID) error {
	_, err := c.mutate(ctx, id, func(session *model.Session, _ int) ([]model.Event, error) {
		if session.Host != requester {
			return nil, model.ErrNotHost
		}
		if session.Status != model.StatusHasToStart {
			return nil, model.ErrWrongState
		}
		if len(session.Participants) < model.MaxPlayers {
			return nil, model.ErrNotEnoughPlayers
		}

		session.Status = model.StatusInProgress
		return []model.Event{c.event(id, model.EventGameStarted, nil)}, nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("session started", slog.String("session_id", string(id)))
	return nil
}

// SubmitGuess records a guess and returns its feedback. A guess equal to the
// target wins; the last of the twelve guesses without a win ties the session.
func (c *Controller) SubmitGuess(ctx context.Context, id model.SessionID, participant model.PlayerID, word string) (*model.GuessResult, error) {
	guess := dictionary.Normalize(word)

	var feedback []model.LetterResult
	session, err := c.mutate(ctx, id, func(session *model.Session, attempt int) ([]model.Event, error) {
		if !session.HasParticipant(participant) {
			return nil, model.ErrNotParticipant
		}
		if session.Status != model.StatusInProgress {
			return nil, model.ErrWrongState
		}
		if !dictionary.IsWellFormed(guess) {
			return nil, model.ErrInvalidGuess
		}
		if !c.words.IsValidWord(guess) {
			return nil, model.ErrUnknownWord
		}
		// A retried attempt was already admitted
		if attempt == 1 && !c.guard.Admit(id, participant, c.clock.Now()) {
			return nil, model.ErrRateLimited
		}
		if session.GuessesLeft(participant) <= 0 {
			return nil, model.ErrOutOfMoves
		}

		session.Moves = append(session.Moves, model.Move{Player: participant, Word: guess})
		feedback = evaluator.Evaluate(session.Word, guess)

		events := []model.Event{c.event(id, model.EventGameMoves, model.GameMovesPayload{
			PlayerID: participant,
			Feedback: feedback,
		})}

		switch {
		case guess == session.Word:
			session.Status = model.StatusWon
			session.Winner = participant
		case len(session.Moves) >= model.MaxMoves:
			session.Status = model.StatusTied
		default:
			return events, nil
		}

		events = append(events, c.event(id, model.EventGameEnded, model.GameEndedPayload{
			Result: session.Status,
			Winner: session.Winner,
			Word:   session.Word,
		}))
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	if session.Status.IsTerminal() {
		c.logger.Info("session ended",
			slog.String("session_id", string(id)),
			slog.String("result", string(session.Status)),
			slog.String("winner", string(session.Winner)),
		)
	}

	return &model.GuessResult{
		Feedback:    feedback,
		Status:      session.Status,
		Winner:      session.Winner,
		GuessesLeft: session.GuessesLeft(participant),
	}, nil
}

// LeaveLobby applies a lobby disconnect. While the session has not started the
// host leaving deletes it and anyone else leaving frees their slot; afterwards
// it changes nothing.
func (c *Controller) LeaveLobby(ctx context.Context, id model.SessionID, participant model.PlayerID) (model.LeaveOutcome, error) {
	var removed, disband bool
	_, err := c.mutate(ctx, id, func(session *model.Session, _ int) ([]model.Event, error) {
		removed, disband = false, false
		if session.Status != model.StatusHasToStart || !session.HasParticipant(participant) {
			return nil, errUnchanged
		}
		if session.Host == participant {
			disband = true
			return nil, errUnchanged
		}
		removed = session.RemoveParticipant(participant)
		return nil, nil
	})
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return model.LeaveNoop, nil
	case err != nil:
		return model.LeaveNoop, err
	case disband:
		return c.disband(ctx, id)
	case removed:
		c.logger.Info("player left lobby",
			slog.String("session_id", string(id)),
			slog.String("player_id", string(participant)),
		)
		return model.LeaveRemoved, nil
	default:
		return model.LeaveNoop, nil
	}
}

func (c *Controller) disband(ctx context.Context, id model.SessionID) (model.LeaveOutcome, error) {
	unlock := c.locks.lock(id)
	defer unlock()

	// Re-check under the lock; a start may have won meanwhile
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return model.LeaveNoop, nil
		}
		return model.LeaveNoop, err
	}
	if session.Status != model.StatusHasToStart {
		return model.LeaveNoop, nil
	}

	if err := c.storage.DeleteSession(ctx, id); err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return model.LeaveNoop, nil
		}
		return model.LeaveNoop, err
	}
	c.guard.Purge(id)

	c.logger.Info("host left lobby, session deleted", slog.String("session_id", string(id)))
	return model.LeaveDisbanded, nil
}

// ForceCloseOpenSessions ties every session that has not ended. It is run on
// shutdown so no session outlives the process that was hosting its players.
func (c *Controller) ForceCloseOpenSessions(ctx context.Context) (int, error) {
	sessions, err := c.storage.FindSessions(ctx, storage.SessionFilter{
		Statuses: []model.SessionStatus{model.StatusHasToStart, model.StatusInProgress},
	})
	if err != nil {
		return 0, err
	}

	closed := 0
	var errs []error
	for _, s := range sessions {
		var changed bool
		_, err := c.mutate(ctx, s.ID, func(session *model.Session, _ int) ([]model.Event, error) {
			changed = false
			if session.Status.IsTerminal() {
				return nil, errUnchanged
			}
			changed = true
			session.Status = model.StatusTied
			session.Winner = ""
			return []model.Event{c.event(session.ID, model.EventGameEnded, model.GameEndedPayload{
				Result: model.StatusTied,
				Word:   session.Word,
			})}, nil
		})
		if err != nil {
			if errors.Is(err, model.ErrSessionNotFound) {
				continue
			}
			c.logger.Error("failed to close session",
				slog.String("session_id", string(s.ID)),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
			continue
		}
		if changed {
			closed++
		}
	}

	c.logger.Info("force-closed open sessions", slog.Int("count", closed))
	return closed, errors.Join(errs...)
}
