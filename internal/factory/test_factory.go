package factory

import (
	"slices"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/wordduel/internal/dependencies/mocks"
	"github.com/mcoot/wordduel/internal/model"
	"github.com/mcoot/wordduel/internal/services/auth"
	"github.com/mcoot/wordduel/internal/storage/memory"
	"github.com/mcoot/wordduel/internal/testutil"
)

// TestSecret signs tokens minted by TestApp.Token
const TestSecret = "wordduel-test-secret"

// TestWords is the dictionary loaded by LoadTestDictionary, sorted
var TestWords = []string{
	"adieu", "blend", "crane", "crisp", "erase", "frost", "geese", "ghost",
	"kebab", "lemon", "melon", "plant", "slate", "speed", "stone", "tatty",
	"trace", "water",
}

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIDGenerator
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIDGenerator()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte(TestSecret)

	app, err := newWithDependencies(store, mockClock, mockRandom, mockIDs, authCfg, 0, testutil.NopLogger())
	if err != nil {
		// Only reachable with an empty secret
		panic(err)
	}
	app.SessionController.WithPasswordCost(bcrypt.MinCost)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
	}
}

// LoadTestDictionary loads a small dictionary for testing
func (t *TestApp) LoadTestDictionary() error {
	return t.DictionaryService.LoadWords(TestWords)
}

// QueueWord makes the next created session target word.
// The word must be in TestWords.
func (t *TestApp) QueueWord(word string) {
	idx := slices.Index(TestWords, word)
	if idx < 0 {
		panic("word not in test dictionary: " + word)
	}
	t.MockRandom.QueueIntn(idx)
}

// Token mints a bearer token for player
func (t *TestApp) Token(player model.PlayerID) string {
	token, err := t.AuthService.Issue(player)
	if err != nil {
		panic(err)
	}
	return token
}
