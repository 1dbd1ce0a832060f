package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/wordduel/internal/api/response"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return newOutputTo(format, os.Stdout)
}

func newOutputTo(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	switch o.format {
	case FormatJSON:
		o.printJSON(data)
	case FormatYAML:
		o.printYAML(data)
	default:
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == FormatJSON {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

// printYAML goes through JSON first so keys follow the json tags
func (o *Output) printYAML(data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		o.PrintError(err)
		return
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		o.PrintError(err)
		return
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		o.PrintError(err)
		return
	}
	_, _ = o.w.Write(out)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case TokenResult:
		fmt.Fprintf(o.w, "Player: %s\nToken: %s\n", v.Player, v.Token)
	case response.CreatedSession:
		fmt.Fprintf(o.w, "Session: %s\nWord: %s\n", v.ID, v.Word)
	case []response.OpenSession:
		o.printOpenSessions(v)
	case response.Session:
		o.printSession(v)
	case response.History:
		o.printHistory(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// Feedback symbols
const (
	symbolRight         = '+'
	symbolWrongPosition = '~'
	symbolMissing       = '.'
)

// renderFeedback draws feedback as a row of symbols, prefixed by the guessed word when known
func renderFeedback(word string, feedback []string) string {
	var b strings.Builder
	if word != "" {
		b.WriteString(strings.ToUpper(word))
		b.WriteString("  ")
	}
	for _, f := range feedback {
		switch f {
		case "RIGHT":
			b.WriteRune(symbolRight)
		case "WRONG_POSITION":
			b.WriteRune(symbolWrongPosition)
		default:
			b.WriteRune(symbolMissing)
		}
	}
	return b.String()
}

func (o *Output) printGuessResult(word string, r response.GuessResult) {
	fmt.Fprintln(o.w, renderFeedback(word, r.Feedback))
	switch r.Status {
	case "WON":
		fmt.Fprintf(o.w, "Game over: %s won\n", r.Winner)
	case "TIED":
		fmt.Fprintln(o.w, "Game over: tie")
	default:
		fmt.Fprintf(o.w, "Guesses left: %d\n", r.GuessesLeft)
	}
}

func (o *Output) printOpenSessions(sessions []response.OpenSession) {
	if len(sessions) == 0 {
		fmt.Fprintln(o.w, "No open sessions")
		return
	}
	for _, s := range sessions {
		lock := ""
		if s.HasPassword {
			lock = " [password]"
		}
		fmt.Fprintf(o.w, "%s  host=%s  players=%d%s\n", s.ID, s.Host, s.Players, lock)
	}
}

func (o *Output) printSession(s response.Session) {
	fmt.Fprintf(o.w, "Session: %s\n", s.ID)
	fmt.Fprintf(o.w, "Status: %s\n", s.Status)
	fmt.Fprintf(o.w, "Host: %s\n", s.Host)
	fmt.Fprintf(o.w, "Players: %s\n", strings.Join(s.Participants, ", "))
	if s.Word != "" {
		fmt.Fprintf(o.w, "Word: %s\n", s.Word)
	}
	if s.Winner != "" {
		fmt.Fprintf(o.w, "Winner: %s\n", s.Winner)
	}
	if len(s.Moves) > 0 {
		fmt.Fprintln(o.w, "Moves:")
		for _, m := range s.Moves {
			fmt.Fprintf(o.w, "  %s: %s\n", m.PlayerID, m.Word)
		}
	}
}

func (o *Output) printHistory(h response.History) {
	fmt.Fprintf(o.w, "Games played: %d, won: %d\n", h.GamesPlayed, h.GamesWon)
	for _, g := range h.Games {
		fmt.Fprintf(o.w, "\n%s  %s vs %s  word=%s  (%s)\n",
			g.Date.UTC().Format("2006-01-02 15:04 UTC"), g.Result, g.Opponent, g.Word, g.SessionID)
		rows := max(len(g.PlayerBoard), len(g.OpponentBoard))
		for i := range rows {
			line := fmt.Sprintf("  %-14s %s", boardRow(g.PlayerBoard, i), boardRow(g.OpponentBoard, i))
			fmt.Fprintln(o.w, strings.TrimRight(line, " "))
		}
	}
}

func boardRow(board []response.Row, i int) string {
	if i >= len(board) {
		return ""
	}
	return renderFeedback(board[i].Word, board[i].Feedback)
}
