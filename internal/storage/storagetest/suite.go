// Package storagetest holds the behaviour every storage backend must share.
// Backend tests embed Suite and set Storage in their SetupTest.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordduel/internal/model"
	"github.com/mcoot/wordduel/internal/storage"
)

type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) newSession(id string, status model.SessionStatus, createdAt time.Time, players ...model.PlayerID) *model.Session {
	return &model.Session{
		ID:           model.SessionID(id),
		Participants: players,
		Host:         players[0],
		Word:         "crane",
		Status:       status,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func (s *Suite) save(session *model.Session) {
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, session))
}

// Session tests

func (s *Suite) TestSaveAndGetSession() {
	session := s.newSession("s1", model.StatusInProgress, baseTime, "alice", "bob")
	session.PasswordHash = "hash"
	session.Moves = []model.Move{{Player: "alice", Word: "adieu"}}

	s.save(session)

	retrieved, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Equal(session.ID, retrieved.ID)
	s.Equal([]model.PlayerID{"alice", "bob"}, retrieved.Participants)
	s.Equal(model.PlayerID("alice"), retrieved.Host)
	s.Equal("crane", retrieved.Word)
	s.Equal("hash", retrieved.PasswordHash)
	s.Equal(model.StatusInProgress, retrieved.Status)
	s.Equal([]model.Move{{Player: "alice", Word: "adieu"}}, retrieved.Moves)
	s.True(baseTime.Equal(retrieved.CreatedAt))
}

func (s *Suite) TestGetSessionNotFound() {
	_, err := s.Storage.GetSession(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestSaveBumpsVersion() {
	session := s.newSession("s1", model.StatusHasToStart, baseTime, "alice")
	s.save(session)
	s.Equal(int64(1), session.Version)

	s.save(session)
	s.Equal(int64(2), session.Version)

	retrieved, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Equal(int64(2), retrieved.Version)
}

func (s *Suite) TestSaveDetectsLostRace() {
	s.save(s.newSession("s1", model.StatusHasToStart, baseTime, "alice"))

	first, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	second, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)

	first.Participants = append(first.Participants, "bob")
	s.save(first)

	second.Participants = append(second.Participants, "carol")
	err = s.Storage.SaveSession(s.Ctx, second)
	s.ErrorIs(err, model.ErrVersionConflict)

	retrieved, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"alice", "bob"}, retrieved.Participants)
}

func (s *Suite) TestSaveNewSessionWithExistingIDConflicts() {
	s.save(s.newSession("s1", model.StatusHasToStart, baseTime, "alice"))

	err := s.Storage.SaveSession(s.Ctx, s.newSession("s1", model.StatusHasToStart, baseTime, "mallory"))
	s.ErrorIs(err, model.ErrVersionConflict)
}

func (s *Suite) TestReturnedSessionIsACopy() {
	s.save(s.newSession("s1", model.StatusHasToStart, baseTime, "alice"))

	retrieved, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	retrieved.Participants[0] = "mallory"

	again, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("alice"), again.Participants[0])
}

func (s *Suite) TestDeleteSession() {
	s.save(s.newSession("s1", model.StatusHasToStart, baseTime, "alice"))

	s.Require().NoError(s.Storage.DeleteSession(s.Ctx, "s1"))

	_, err := s.Storage.GetSession(s.Ctx, "s1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestDeleteMissingSession() {
	err := s.Storage.DeleteSession(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestFindSessionsByStatus() {
	s.save(s.newSession("open", model.StatusHasToStart, baseTime, "alice"))
	s.save(s.newSession("running", model.StatusInProgress, baseTime.Add(time.Minute), "bob", "carol"))
	s.save(s.newSession("done", model.StatusWon, baseTime.Add(2*time.Minute), "dave", "erin"))

	sessions, err := s.Storage.FindSessions(s.Ctx, storage.SessionFilter{
		Statuses: []model.SessionStatus{model.StatusHasToStart, model.StatusInProgress},
	})
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	s.Equal(model.SessionID("running"), sessions[0].ID)
	s.Equal(model.SessionID("open"), sessions[1].ID)
}

func (s *Suite) TestFindSessionsByParticipant() {
	s.save(s.newSession("s1", model.StatusWon, baseTime, "alice", "bob"))
	s.save(s.newSession("s2", model.StatusTied, baseTime.Add(time.Minute), "carol", "alice"))
	s.save(s.newSession("s3", model.StatusTied, baseTime.Add(2*time.Minute), "carol", "dave"))

	sessions, err := s.Storage.FindSessions(s.Ctx, storage.SessionFilter{Participant: "alice"})
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	s.Equal(model.SessionID("s2"), sessions[0].ID)
	s.Equal(model.SessionID("s1"), sessions[1].ID)
}

func (s *Suite) TestFindSessionsEmpty() {
	sessions, err := s.Storage.FindSessions(s.Ctx, storage.SessionFilter{})
	s.Require().NoError(err)
	s.Empty(sessions)
}

// Dictionary tests

func (s *Suite) TestDictionaryNotLoaded() {
	_, err := s.Storage.GetDictionaryWords(s.Ctx)
	s.ErrorIs(err, model.ErrDictionaryNotLoaded)
}

func (s *Suite) TestSaveAndGetDictionaryWords() {
	s.Require().NoError(s.Storage.SaveDictionaryWords(s.Ctx, []string{"crane", "adieu"}))

	words, err := s.Storage.GetDictionaryWords(s.Ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"crane", "adieu"}, words)
}

func (s *Suite) TestSaveDictionaryWordsReplaces() {
	s.Require().NoError(s.Storage.SaveDictionaryWords(s.Ctx, []string{"crane", "adieu"}))
	s.Require().NoError(s.Storage.SaveDictionaryWords(s.Ctx, []string{"slate"}))

	words, err := s.Storage.GetDictionaryWords(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]string{"slate"}, words)
}
