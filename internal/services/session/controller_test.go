package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/wordduel/internal/dependencies/mocks"
	"github.com/mcoot/wordduel/internal/model"
	"github.com/mcoot/wordduel/internal/services/dictionary"
	"github.com/mcoot/wordduel/internal/services/guard"
	"github.com/mcoot/wordduel/internal/storage"
	"github.com/mcoot/wordduel/internal/storage/memory"
	"github.com/mcoot/wordduel/internal/testutil"
)

// Sorted: crane is index 2
var testWords = []string{
	"adieu", "blend", "crane", "crisp", "frost", "ghost", "lemon",
	"melon", "pious", "proud", "shine", "slate", "study",
}

const targetIndex = 2

// eventRecorder collects published events
type eventRecorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *eventRecorder) HandleEvent(_ context.Context, event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) types() []model.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]model.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

func (r *eventRecorder) last() model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

// conflictStorage fails the next failSaves saves with a version conflict
type conflictStorage struct {
	storage.Storage
	mu        sync.Mutex
	failSaves int
}

func (s *conflictStorage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	if s.failSaves > 0 {
		s.failSaves--
		s.mu.Unlock()
		return model.ErrVersionConflict
	}
	s.mu.Unlock()
	return s.Storage.SaveSession(ctx, session)
}

type ControllerSuite struct {
	suite.Suite
	ctx        context.Context
	storage    *conflictStorage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	ids        *mocks.MockIDGenerator
	guard      *guard.Guard
	words      *dictionary.Service
	controller *Controller
	recorder   *eventRecorder
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = &conflictStorage{Storage: memory.New()}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.ids = mocks.NewMockIDGenerator()
	s.guard = guard.New(guard.DefaultWindow)

	s.words = dictionary.New(s.storage, s.random, testutil.NopLogger())
	s.Require().NoError(s.words.LoadWords(testWords))

	s.controller = NewController(s.storage, s.words, s.guard, s.clock, s.ids, testutil.NopLogger()).
		WithPasswordCost(bcrypt.MinCost)
	s.recorder = &eventRecorder{}
	s.controller.AddListener(s.recorder)
}

func (s *ControllerSuite) create(host model.PlayerID, password string) *model.Session {
	s.random.QueueIntn(targetIndex)
	session, err := s.controller.CreateSession(s.ctx, host, password)
	s.Require().NoError(err)
	return session
}

// started returns an IN_PROGRESS session hosted by alice with bob joined
func (s *ControllerSuite) started() model.SessionID {
	session := s.create("alice", "")
	s.Require().NoError(s.controller.JoinSession(s.ctx, session.ID, "bob", ""))
	s.Require().NoError(s.controller.StartSession(s.ctx, session.ID, "alice"))
	return session.ID
}

// guess advances the clock past the guard window before guessing
func (s *ControllerSuite) guess(id model.SessionID, player model.PlayerID, word string) (*model.GuessResult, error) {
	s.clock.Advance(time.Second)
	return s.controller.SubmitGuess(s.ctx, id, player, word)
}

func (s *ControllerSuite) stored(id model.SessionID) *model.Session {
	session, err := s.storage.GetSession(s.ctx, id)
	s.Require().NoError(err)
	return session
}

// Create

func (s *ControllerSuite) TestCreateSession() {
	s.ids.QueueID("session-1")

	session := s.create("alice", "")

	s.Equal(model.SessionID("session-1"), session.ID)
	s.Equal(model.StatusHasToStart, session.Status)
	s.Equal([]model.PlayerID{"alice"}, session.Participants)
	s.Equal(model.PlayerID("alice"), session.Host)
	s.Equal("crane", session.Word)
	s.False(session.HasPassword())
	s.Equal(int64(1), session.Version)

	stored := s.stored("session-1")
	s.Equal("crane", stored.Word)
	s.Empty(s.recorder.types())
}

func (s *ControllerSuite) TestCreateSessionHashesPassword() {
	session := s.create("alice", "secret")

	s.True(session.HasPassword())
	s.NotEqual("secret", session.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(session.PasswordHash), []byte("secret")))
}

func (s *ControllerSuite) TestCreateSessionRequiresIdentity() {
	_, err := s.controller.CreateSession(s.ctx, "", "")
	s.ErrorIs(err, model.ErrMissingIdentity)
}

func (s *ControllerSuite) TestCreateSessionWithoutDictionary() {
	empty := dictionary.New(s.storage, s.random, testutil.NopLogger())
	controller := NewController(s.storage, empty, s.guard, s.clock, s.ids, testutil.NopLogger())

	_, err := controller.CreateSession(s.ctx, "alice", "")
	s.ErrorIs(err, model.ErrDictionaryNotLoaded)
	s.Equal(model.KindUnavailable, model.KindOf(err))
}

// Join

func (s *ControllerSuite) TestJoinSession() {
	session := s.create("alice", "")

	s.Require().NoError(s.controller.JoinSession(s.ctx, session.ID, "bob", ""))

	s.Equal([]model.PlayerID{"alice", "bob"}, s.stored(session.ID).Participants)
}

func (s *ControllerSuite) TestJoinSessionNotFound() {
	err := s.controller.JoinSession(s.ctx, "missing", "bob", "")
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.Equal(model.KindNotFound, model.KindOf(err))
}

func (s *ControllerSuite) TestJoinSessionAlreadyParticipant() {
	session := s.create("alice", "")

	err := s.controller.JoinSession(s.ctx, session.ID, "alice", "")
	s.ErrorIs(err, model.ErrAlreadyParticipant)
	s.Equal(model.KindConflict, model.KindOf(err))
}

func (s *ControllerSuite) TestJoinSessionFull() {
	session := s.create("alice", "")
	s.Require().NoError(s.controller.JoinSession(s.ctx, session.ID, "bob", ""))

	err := s.controller.JoinSession(s.ctx, session.ID, "carol", "")
	s.ErrorIs(err, model.ErrSessionFull)
	s.Equal(model.KindStateFull, model.KindOf(err))
	s.Len(s.stored(session.ID).Participants, 2)
}

func (s *ControllerSuite) TestJoinSessionPassword() {
	session := s.create("alice", "secret")

	err := s.controller.JoinSession(s.ctx, session.ID, "bob", "")
	s.ErrorIs(err, model.ErrWrongPassword)
	s.Equal(model.KindForbidden, model.KindOf(err))

	err = s.controller.JoinSession(s.ctx, session.ID, "bob", "guess")
	s.ErrorIs(err, model.ErrWrongPassword)

	s.NoError(s.controller.JoinSession(s.ctx, session.ID, "bob", "secret"))
}

func (s *ControllerSuite) TestJoinSessionAfterForceClose() {
	session := s.create("alice", "")
	_, err := s.controller.ForceCloseOpenSessions(s.ctx)
	s.Require().NoError(err)

	err = s.controller.JoinSession(s.ctx, session.ID, "bob", "")
	s.ErrorIs(err, model.ErrWrongState)
}

// Start

func (s *ControllerSuite) TestStartSession() {
	session := s.create("alice", "")
	s.Require().NoError(s.controller.JoinSession(s.ctx, session.ID, "bob", ""))

	s.Require().NoError(s.controller.StartSession(s.ctx, session.ID, "alice"))

	s.Equal(model.StatusInProgress, s.stored(session.ID).Status)
	s.Equal([]model.EventType{model.EventGameStarted}, s.recorder.types())
	s.Equal(session.ID, s.recorder.last().SessionID)
}

func (s *ControllerSuite) TestStartSessionNotHost() {
	session := s.create("alice", "")
	s.Require().NoError(s.controller.JoinSession(s.ctx, session.ID, "bob", ""))

	err := s.controller.StartSession(s.ctx, session.ID, "bob")
	s.ErrorIs(err, model.ErrNotHost)
	s.Equal(model.KindForbidden, model.KindOf(err))
}

func (s *ControllerSuite) TestStartSessionNotEnoughPlayers() {
	session := s.create("alice", "")

	err := s.controller.StartSession(s.ctx, session.ID, "alice")
	s.ErrorIs(err, model.ErrNotEnoughPlayers)
	s.Equal(model.KindStateIncomplete, model.KindOf(err))
	s.Equal(model.StatusHasToStart, s.stored(session.ID).Status)
	s.Empty(s.recorder.types())
}

func (s *ControllerSuite) TestStartSessionTwice() {
	id := s.started()

	err := s.controller.StartSession(s.ctx, id, "alice")
	s.ErrorIs(err, model.ErrWrongState)
}

func (s *ControllerSuite) TestStartSessionNotFound() {
	err := s.controller.StartSession(s.ctx, "missing", "alice")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Guess

func (s *ControllerSuite) TestNonHostGuessesTargetAndWins() {
	id := s.started()

	result, err := s.guess(id, "bob", "crane")
	s.Require().NoError(err)

	s.Equal(model.StatusWon, result.Status)
	s.Equal(model.PlayerID("bob"), result.Winner)
	s.True(model.IsWinning(result.Feedback))
	s.Equal(5, result.GuessesLeft)

	stored := s.stored(id)
	s.Equal(model.StatusWon, stored.Status)
	s.Equal(model.PlayerID("bob"), stored.Winner)

	s.Equal([]model.EventType{model.EventGameStarted, model.EventGameMoves, model.EventGameEnded}, s.recorder.types())
	ended := s.recorder.last().Payload.(model.GameEndedPayload)
	s.Equal(model.StatusWon, ended.Result)
	s.Equal(model.PlayerID("bob"), ended.Winner)
	s.Equal("crane", ended.Word)
}

func (s *ControllerSuite) TestGuessFeedbackAndMovesEvent() {
	id := s.started()

	result, err := s.guess(id, "alice", "SLATE")
	s.Require().NoError(err)

	expected := []model.LetterResult{
		model.LetterMissing, model.LetterMissing, model.LetterRight, model.LetterMissing, model.LetterRight,
	}
	s.Equal(expected, result.Feedback)
	s.Equal(model.StatusInProgress, result.Status)
	s.Empty(result.Winner)

	s.Equal([]model.Move{{Player: "alice", Word: "slate"}}, s.stored(id).Moves)

	moves := s.recorder.last()
	s.Equal(model.EventGameMoves, moves.Type)
	s.Equal(model.GameMovesPayload{PlayerID: "alice", Feedback: expected}, moves.Payload)
}

func (s *ControllerSuite) TestGuessValidation() {
	id := s.started()

	tests := []struct {
		name     string
		session  model.SessionID
		player   model.PlayerID
		word     string
		expected error
	}{
		{"missing session", "missing", "alice", "slate", model.ErrSessionNotFound},
		{"not a participant", id, "mallory", "slate", model.ErrNotParticipant},
		{"too short", id, "alice", "slat", model.ErrInvalidGuess},
		{"too long", id, "alice", "slates", model.ErrInvalidGuess},
		{"not letters", id, "alice", "sl4te", model.ErrInvalidGuess},
		{"unknown word", id, "alice", "zzzzz", model.ErrUnknownWord},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.guess(tt.session, tt.player, tt.word)
			s.ErrorIs(err, tt.expected)
		})
	}

	s.Empty(s.stored(id).Moves)
}

func (s *ControllerSuite) TestGuessBeforeStart() {
	session := s.create("alice", "")
	s.Require().NoError(s.controller.JoinSession(s.ctx, session.ID, "bob", ""))

	_, err := s.guess(session.ID, "alice", "slate")
	s.ErrorIs(err, model.ErrWrongState)
	s.Equal(model.KindStateWrong, model.KindOf(err))
}

func (s *ControllerSuite) TestGuessAfterEnd() {
	id := s.started()
	_, err := s.guess(id, "alice", "crane")
	s.Require().NoError(err)

	_, err = s.guess(id, "bob", "slate")
	s.ErrorIs(err, model.ErrWrongState)
}

func (s *ControllerSuite) TestRapidResubmissionIsRateLimited() {
	id := s.started()

	_, err := s.guess(id, "alice", "slate")
	s.Require().NoError(err)

	s.clock.Advance(100 * time.Millisecond)
	_, err = s.controller.SubmitGuess(s.ctx, id, "alice", "slate")
	s.ErrorIs(err, model.ErrRateLimited)
	s.Equal(model.KindRateLimited, model.KindOf(err))
	s.Len(s.stored(id).Moves, 1)

	// The other player is unaffected
	_, err = s.controller.SubmitGuess(s.ctx, id, "bob", "slate")
	s.NoError(err)

	s.clock.Advance(guard.DefaultWindow)
	_, err = s.controller.SubmitGuess(s.ctx, id, "alice", "slate")
	s.NoError(err)
	s.Len(s.stored(id).Moves, 3)
}

func (s *ControllerSuite) TestSixGuessesPerPlayer() {
	id := s.started()

	for i := 0; i < model.MaxGuessesPerPlayer; i++ {
		result, err := s.guess(id, "alice", "slate")
		s.Require().NoError(err)
		s.Equal(model.MaxGuessesPerPlayer-i-1, result.GuessesLeft)
	}

	_, err := s.guess(id, "alice", "slate")
	s.ErrorIs(err, model.ErrOutOfMoves)
	s.Equal(model.KindOutOfMoves, model.KindOf(err))

	stored := s.stored(id)
	s.Len(stored.MovesBy("alice"), model.MaxGuessesPerPlayer)
	s.Equal(model.StatusInProgress, stored.Status)
}

func (s *ControllerSuite) TestTieOnTwelfthGuess() {
	id := s.started()
	misses := []string{"slate", "adieu", "ghost", "proud", "study", "blend"}

	for i := 0; i < model.MaxGuessesPerPlayer; i++ {
		result, err := s.guess(id, "alice", misses[i])
		s.Require().NoError(err)
		s.Equal(model.StatusInProgress, result.Status)

		result, err = s.guess(id, "bob", misses[len(misses)-1-i])
		s.Require().NoError(err)
		if i < model.MaxGuessesPerPlayer-1 {
			s.Equal(model.StatusInProgress, result.Status, "guess %d", 2*i+2)
		} else {
			s.Equal(model.StatusTied, result.Status)
			s.Empty(result.Winner)
		}
	}

	stored := s.stored(id)
	s.Equal(model.StatusTied, stored.Status)
	s.Len(stored.Moves, model.MaxMoves)

	ended := s.recorder.last()
	s.Equal(model.EventGameEnded, ended.Type)
	s.Equal(model.GameEndedPayload{Result: model.StatusTied, Word: "crane"}, ended.Payload)
}

func (s *ControllerSuite) TestWinOnTwelfthGuessIsWin() {
	id := s.started()

	for i := 0; i < model.MaxGuessesPerPlayer; i++ {
		_, err := s.guess(id, "alice", "slate")
		s.Require().NoError(err)
	}
	for i := 0; i < model.MaxGuessesPerPlayer-1; i++ {
		_, err := s.guess(id, "bob", "slate")
		s.Require().NoError(err)
	}

	result, err := s.guess(id, "bob", "crane")
	s.Require().NoError(err)
	s.Equal(model.StatusWon, result.Status)
	s.Equal(model.PlayerID("bob"), result.Winner)
}

func (s *ControllerSuite) TestGuardPurgedWhenSessionEnds() {
	id := s.started()

	_, err := s.guess(id, "alice", "slate")
	s.Require().NoError(err)
	s.Equal(1, s.guard.Len())

	_, err = s.guess(id, "bob", "crane")
	s.Require().NoError(err)
	s.Equal(0, s.guard.Len())
}

func (s *ControllerSuite) TestConcurrentGuessesAreBothRecorded() {
	id := s.started()
	s.clock.Advance(time.Second)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, player := range []model.PlayerID{"alice", "bob"} {
		wg.Add(1)
		go func(i int, player model.PlayerID) {
			defer wg.Done()
			_, errs[i] = s.controller.SubmitGuess(s.ctx, id, player, "slate")
		}(i, player)
	}
	wg.Wait()

	s.NoError(errs[0])
	s.NoError(errs[1])
	s.Len(s.stored(id).Moves, 2)
	s.Equal(0, s.controller.locks.size())
}

// Optimistic concurrency

func (s *ControllerSuite) TestMutationRetriesLostRace() {
	session := s.create("alice", "")
	s.storage.failSaves = MaxSaveAttempts - 1

	s.Require().NoError(s.controller.JoinSession(s.ctx, session.ID, "bob", ""))
	s.Equal([]model.PlayerID{"alice", "bob"}, s.stored(session.ID).Participants)
}

func (s *ControllerSuite) TestMutationGivesUpAfterMaxAttempts() {
	session := s.create("alice", "")
	s.storage.failSaves = MaxSaveAttempts

	err := s.controller.JoinSession(s.ctx, session.ID, "bob", "")
	s.ErrorIs(err, model.ErrVersionConflict)
	s.Equal(model.KindUnavailable, model.KindOf(err))
	s.Equal([]model.PlayerID{"alice"}, s.stored(session.ID).Participants)
}

func (s *ControllerSuite) TestRetriedGuessIsNotRateLimited() {
	id := s.started()
	s.storage.failSaves = 1

	result, err := s.guess(id, "alice", "slate")
	s.Require().NoError(err)
	s.Equal(model.StatusInProgress, result.Status)
	s.Len(s.stored(id).Moves, 1)
}

// Read operations

func (s *ControllerSuite) TestGetSessionWithholdsWordUntilEnd() {
	id := s.started()

	view, err := s.controller.GetSession(s.ctx, id, "bob")
	s.Require().NoError(err)
	s.Empty(view.Word)
	s.Equal(model.StatusInProgress, view.Status)

	_, err = s.guess(id, "alice", "crane")
	s.Require().NoError(err)

	view, err = s.controller.GetSession(s.ctx, id, "bob")
	s.Require().NoError(err)
	s.Equal("crane", view.Word)
}

func (s *ControllerSuite) TestGetSessionHidesPasswordHash() {
	session := s.create("alice", "secret")

	view, err := s.controller.GetSession(s.ctx, session.ID, "alice")
	s.Require().NoError(err)
	s.Equal(model.RedactedPassword, view.PasswordHash)
	s.True(view.HasPassword())
}

func (s *ControllerSuite) TestGetSessionNotParticipant() {
	id := s.started()

	_, err := s.controller.GetSession(s.ctx, id, "mallory")
	s.ErrorIs(err, model.ErrNotParticipant)
}

func (s *ControllerSuite) TestGetSessionNotFound() {
	_, err := s.controller.GetSession(s.ctx, "missing", "alice")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestListOpenSessions() {
	s.ids.QueueID("first", "second", "third")
	s.create("alice", "")
	s.clock.Advance(time.Minute)
	s.create("carol", "secret")
	s.clock.Advance(time.Minute)
	third := s.create("dave", "")
	s.Require().NoError(s.controller.JoinSession(s.ctx, third.ID, "erin", ""))
	s.Require().NoError(s.controller.StartSession(s.ctx, third.ID, "dave"))

	sessions, err := s.controller.ListOpenSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	s.Equal(model.SessionID("second"), sessions[0].ID)
	s.Equal(model.SessionID("first"), sessions[1].ID)
	for _, session := range sessions {
		s.Empty(session.Word)
		s.NotContains(session.PasswordHash, "$2")
	}
	s.True(sessions[0].HasPassword())
	s.False(sessions[1].HasPassword())
}

// Lobby disconnects

func (s *ControllerSuite) TestLeaveLobbyNonHostFreesSlot() {
	session := s.create("alice", "")
	s.Require().NoError(s.controller.JoinSession(s.ctx, session.ID, "bob", ""))

	outcome, err := s.controller.LeaveLobby(s.ctx, session.ID, "bob")
	s.Require().NoError(err)
	s.Equal(model.LeaveRemoved, outcome)
	s.Equal([]model.PlayerID{"alice"}, s.stored(session.ID).Participants)

	s.NoError(s.controller.JoinSession(s.ctx, session.ID, "carol", ""))
}

func (s *ControllerSuite) TestLeaveLobbyHostDeletesSession() {
	session := s.create("alice", "")
	s.Require().NoError(s.controller.JoinSession(s.ctx, session.ID, "bob", ""))

	outcome, err := s.controller.LeaveLobby(s.ctx, session.ID, "alice")
	s.Require().NoError(err)
	s.Equal(model.LeaveDisbanded, outcome)

	_, err = s.storage.GetSession(s.ctx, session.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestLeaveLobbyAfterStartIsNoop() {
	id := s.started()

	for _, player := range []model.PlayerID{"alice", "bob"} {
		outcome, err := s.controller.LeaveLobby(s.ctx, id, player)
		s.Require().NoError(err)
		s.Equal(model.LeaveNoop, outcome)
	}

	stored := s.stored(id)
	s.Equal(model.StatusInProgress, stored.Status)
	s.Equal([]model.PlayerID{"alice", "bob"}, stored.Participants)
}

func (s *ControllerSuite) TestLeaveLobbyUnknownSessionOrPlayer() {
	outcome, err := s.controller.LeaveLobby(s.ctx, "missing", "alice")
	s.Require().NoError(err)
	s.Equal(model.LeaveNoop, outcome)

	session := s.create("alice", "")
	outcome, err = s.controller.LeaveLobby(s.ctx, session.ID, "mallory")
	s.Require().NoError(err)
	s.Equal(model.LeaveNoop, outcome)
}

// Force close

func (s *ControllerSuite) TestForceCloseOpenSessions() {
	s.ids.QueueID("open", "playing", "done")
	s.create("alice", "")

	playing := s.create("carol", "")
	s.Require().NoError(s.controller.JoinSession(s.ctx, playing.ID, "dave", ""))
	s.Require().NoError(s.controller.StartSession(s.ctx, playing.ID, "carol"))

	done := s.create("erin", "")
	s.Require().NoError(s.controller.JoinSession(s.ctx, done.ID, "frank", ""))
	s.Require().NoError(s.controller.StartSession(s.ctx, done.ID, "erin"))
	_, err := s.guess(done.ID, "frank", "crane")
	s.Require().NoError(err)

	closed, err := s.controller.ForceCloseOpenSessions(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, closed)

	s.Equal(model.StatusTied, s.stored("open").Status)
	s.Equal(model.StatusTied, s.stored("playing").Status)
	s.Equal(model.StatusWon, s.stored("done").Status)

	ended := 0
	for _, t := range s.recorder.types() {
		if t == model.EventGameEnded {
			ended++
		}
	}
	s.Equal(3, ended)

	closed, err = s.controller.ForceCloseOpenSessions(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, closed)
}
