package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wordduel/internal/api"
	"github.com/mcoot/wordduel/internal/factory"
	"github.com/mcoot/wordduel/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "wordduel-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/wordduel")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

// withTokenFile returns a runner sharing the binary but holding its own identity
func (r *cliRunner) withTokenFile(t *testing.T) *cliRunner {
	return &cliRunner{
		binaryPath: r.binaryPath,
		serverURL:  r.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	// Keep the caller's environment from leaking a token or secret in
	cmd.Env = []string{"HOME=" + filepath.Dir(r.tokenFile)}
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// login mints a token for player and saves it to the runner's token file
func (r *cliRunner) login(t *testing.T, player string) {
	t.Helper()
	output, err := r.run("token", "mint", player, "--secret", factory.TestSecret)
	require.NoError(t, err, "output: %s", output)

	var resp tokenResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.Equal(t, player, resp.Player)
	require.NotEmpty(t, resp.Token)
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	app      *factory.TestApp
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	app := factory.NewTestApp()
	require.NoError(t, app.LoadTestDictionary())

	router := api.NewRouter(api.RouterConfig{
		Logger:            testutil.NopLogger(),
		TokenVerifier:     app.AuthService,
		SessionController: app.SessionController,
		HistoryService:    app.HistoryService,
		RealtimeBinder:    app.Coordinator,
		IDGenerator:       app.IDGenerator,
	})

	server := &http.Server{Handler: router}
	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		app:  app,
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type tokenResponse struct {
	Player string `json:"player"`
	Token  string `json:"token"`
}

type createdResponse struct {
	ID   string `json:"id"`
	Word string `json:"word"`
}

type sessionResponse struct {
	ID           string   `json:"id"`
	Host         string   `json:"host"`
	Participants []string `json:"participants"`
	Status       string   `json:"status"`
	Winner       string   `json:"winner"`
	Word         string   `json:"word"`
	HasPassword  bool     `json:"has_password"`
}

type openSessionResponse struct {
	ID          string `json:"id"`
	Players     int    `json:"players"`
	HasPassword bool   `json:"has_password"`
}

type guessResponse struct {
	Feedback    []string `json:"feedback"`
	Status      string   `json:"status"`
	Winner      string   `json:"winner"`
	GuessesLeft int      `json:"guesses_left"`
}

type historyResponse struct {
	GamesPlayed int `json:"games_played"`
	GamesWon    int `json:"games_won"`
	Games       []struct {
		Opponent string `json:"opponent"`
		Result   string `json:"result"`
		Word     string `json:"word"`
	} `json:"games"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_SessionCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	alice := newCLIRunner(t, ts.addr)
	alice.login(t, "alice")

	// Password protected lobby
	output, err := alice.run("session", "create", "--password", "hunter2")
	require.NoError(t, err, "output: %s", output)

	var created createdResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	assert.NotEmpty(t, created.ID)
	assert.Len(t, created.Word, 5)

	output, err = alice.run("session", "list")
	require.NoError(t, err, "output: %s", output)

	var open []openSessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &open))
	require.Len(t, open, 1)
	assert.Equal(t, created.ID, open[0].ID)
	assert.Equal(t, 1, open[0].Players)
	assert.True(t, open[0].HasPassword)

	output, err = alice.run("session", "get", created.ID)
	require.NoError(t, err, "output: %s", output)

	var session sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &session))
	assert.Equal(t, "HAS_TO_START", session.Status)
	assert.Equal(t, "alice", session.Host)
	assert.Empty(t, session.Word, "word is hidden while the session is live")

	bob := alice.withTokenFile(t)
	bob.login(t, "bob")

	output, err = bob.run("session", "join", created.ID, "--password", "wrong")
	assert.Error(t, err)
	assert.Contains(t, output, "FORBIDDEN")

	output, err = bob.run("session", "join", created.ID, "--password", "hunter2")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &session))
	assert.Equal(t, []string{"alice", "bob"}, session.Participants)
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	alice := newCLIRunner(t, ts.addr)
	bob := alice.withTokenFile(t)
	alice.login(t, "alice")
	bob.login(t, "bob")

	ts.app.QueueWord("crane")

	output, err := alice.run("session", "create")
	require.NoError(t, err, "output: %s", output)
	var created createdResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	assert.Equal(t, "crane", created.Word)

	// Starting alone is rejected
	output, err = alice.run("session", "start", created.ID)
	assert.Error(t, err)
	assert.Contains(t, output, "STATE_INCOMPLETE")

	output, err = bob.run("session", "join", created.ID)
	require.NoError(t, err, "output: %s", output)

	output, err = alice.run("session", "start", created.ID)
	require.NoError(t, err, "output: %s", output)
	var session sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &session))
	assert.Equal(t, "IN_PROGRESS", session.Status)

	output, err = alice.run("guess", created.ID, "trace")
	require.NoError(t, err, "output: %s", output)
	var guess guessResponse
	require.NoError(t, json.Unmarshal([]byte(output), &guess))
	assert.Equal(t, []string{"MISSING", "RIGHT", "RIGHT", "WRONG_POSITION", "RIGHT"}, guess.Feedback)
	assert.Equal(t, "IN_PROGRESS", guess.Status)
	assert.Equal(t, 5, guess.GuessesLeft)

	output, err = alice.run("guess", created.ID, "zzzzz")
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID")

	output, err = bob.run("guess", created.ID, "crane")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &guess))
	assert.Equal(t, "WON", guess.Status)
	assert.Equal(t, "bob", guess.Winner)

	// The word is revealed once the game has ended
	output, err = alice.run("session", "get", created.ID)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &session))
	assert.Equal(t, "WON", session.Status)
	assert.Equal(t, "crane", session.Word)

	output, err = bob.run("history")
	require.NoError(t, err, "output: %s", output)
	var hist historyResponse
	require.NoError(t, json.Unmarshal([]byte(output), &hist))
	assert.Equal(t, 1, hist.GamesPlayed)
	assert.Equal(t, 1, hist.GamesWon)
	require.Len(t, hist.Games, 1)
	assert.Equal(t, "alice", hist.Games[0].Opponent)
	assert.Equal(t, "crane", hist.Games[0].Word)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// No token saved yet
	output, err := cli.run("session", "list")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "unauthorized")

	// Minting without a secret fails locally
	output, err = cli.run("token", "mint", "alice")
	assert.Error(t, err)
	assert.Contains(t, output, "JWT_SECRET")

	cli.login(t, "alice")

	output, err = cli.run("session", "get", "missing")
	assert.Error(t, err)
	assert.Contains(t, output, "NOT_FOUND")
}
