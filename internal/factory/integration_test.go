package factory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordduel/internal/model"
	"github.com/mcoot/wordduel/internal/services/history"
)

// recordingConn stands in for a websocket client
type recordingConn struct {
	id string

	mu     sync.Mutex
	events []model.Event
	closed bool
}

func (c *recordingConn) ID() string { return c.id }

func (c *recordingConn) Send(event model.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingConn) types() []model.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	types := make([]model.EventType, len(c.events))
	for i, e := range c.events {
		types[i] = e.Type
	}
	return types
}

func (c *recordingConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.LoadTestDictionary())
}

// lobby creates a session hosted by alice, joined by bob, with both connected
func (s *IntegrationSuite) lobby(word string) (model.SessionID, *recordingConn, *recordingConn) {
	s.app.QueueWord(word)
	session, err := s.app.SessionController.CreateSession(s.ctx, "alice", "")
	s.Require().NoError(err)
	s.Require().NoError(s.app.SessionController.JoinSession(s.ctx, session.ID, "bob", ""))

	alice := &recordingConn{id: "conn-alice"}
	bob := &recordingConn{id: "conn-bob"}
	s.Require().NoError(s.app.Coordinator.Connect(s.ctx, alice, session.ID, "alice"))
	s.Require().NoError(s.app.Coordinator.Connect(s.ctx, bob, session.ID, "bob"))
	return session.ID, alice, bob
}

func (s *IntegrationSuite) guess(id model.SessionID, player model.PlayerID, word string) *model.GuessResult {
	s.app.MockClock.Advance(time.Second)
	result, err := s.app.SessionController.SubmitGuess(s.ctx, id, player, word)
	s.Require().NoError(err)
	return result
}

// Test: Complete game flow from lobby creation to a win
func (s *IntegrationSuite) TestCompleteGameFlow() {
	id, alice, bob := s.lobby("crane")

	s.Require().NoError(s.app.SessionController.StartSession(s.ctx, id, "alice"))

	result := s.guess(id, "alice", "slate")
	s.Equal(model.StatusInProgress, result.Status)
	s.Equal(model.MaxGuessesPerPlayer-1, result.GuessesLeft)

	result = s.guess(id, "bob", "crane")
	s.Equal(model.StatusWon, result.Status)
	s.Equal(model.PlayerID("bob"), result.Winner)

	expected := []model.EventType{
		model.EventPlayerConnected,
		model.EventGameStarted,
		model.EventGameMoves,
		model.EventGameMoves,
		model.EventGameEnded,
	}
	// Alice also saw Bob connect
	s.Equal(append([]model.EventType{model.EventPlayerConnected}, expected...), alice.types())
	s.Equal(expected, bob.types())

	s.True(alice.isClosed())
	s.True(bob.isClosed())
	s.Equal(0, s.app.Coordinator.BindingCount())
	s.Equal(0, s.app.HubManager.HubCount())
	s.Equal(0, s.app.Guard.Len())

	hist, err := s.app.HistoryService.ForPlayer(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(1, hist.GamesPlayed)
	s.Equal(1, hist.GamesWon)
	s.Require().Len(hist.Games, 1)
	s.Equal(history.ResultWon, hist.Games[0].Result)
	s.Equal(model.PlayerID("alice"), hist.Games[0].Opponent)
	s.Equal("crane", hist.Games[0].Word)

	hist, err = s.app.HistoryService.ForPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(history.ResultLost, hist.Games[0].Result)
}

// Test: The host closing the lobby disbands the session
func (s *IntegrationSuite) TestHostDisconnectDisbandsLobby() {
	id, alice, bob := s.lobby("lemon")

	s.app.Coordinator.Disconnect(s.ctx, alice)

	s.Contains(bob.types(), model.EventHostDisconnected)
	s.True(bob.isClosed())
	_, err := s.app.Storage.GetSession(s.ctx, id)
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.Equal(0, s.app.HubManager.HubCount())
}

// Test: A guest closing the lobby frees the slot for someone else
func (s *IntegrationSuite) TestGuestDisconnectReopensSlot() {
	id, alice, bob := s.lobby("lemon")

	s.app.Coordinator.Disconnect(s.ctx, bob)

	s.Contains(alice.types(), model.EventPlayerDisconnected)
	s.False(alice.isClosed())
	s.Require().NoError(s.app.SessionController.JoinSession(s.ctx, id, "carol", ""))
}

// Test: Shutdown ties every unfinished session and tells the players
func (s *IntegrationSuite) TestShutdownTiesOpenSessions() {
	id, alice, _ := s.lobby("melon")
	s.Require().NoError(s.app.SessionController.StartSession(s.ctx, id, "alice"))
	s.guess(id, "alice", "lemon")

	s.Require().NoError(s.app.Shutdown(s.ctx))

	stored, err := s.app.Storage.GetSession(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.StatusTied, stored.Status)
	s.Contains(alice.types(), model.EventGameEnded)
	s.True(alice.isClosed())

	// A forced tie is not a full game
	hist, err := s.app.HistoryService.ForPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(0, hist.GamesPlayed)
}

// Test: A full game with no winner ends in a counted tie
func (s *IntegrationSuite) TestTwelveMissesTie() {
	id, _, _ := s.lobby("water")
	s.Require().NoError(s.app.SessionController.StartSession(s.ctx, id, "alice"))

	var result *model.GuessResult
	for range model.MaxGuessesPerPlayer {
		s.guess(id, "alice", "lemon")
		result = s.guess(id, "bob", "melon")
	}
	s.Equal(model.StatusTied, result.Status)

	hist, err := s.app.HistoryService.ForPlayer(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(1, hist.GamesPlayed)
	s.Equal(0, hist.GamesWon)
	s.Equal(history.ResultTied, hist.Games[0].Result)
}
