package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/wordduel/internal/model"
	"github.com/mcoot/wordduel/internal/realtime"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <id>",
		Short: "Stream live events from a session",
		Long: `Connect to the session's websocket and stream events in real-time.
Connecting to a lobby marks you present; disconnecting before the game starts
frees your slot, or disbands the lobby if you are the host.

Events include:
  - PLAYER_CONNECTED / PLAYER_DISCONNECTED: Lobby presence changed
  - HOST_DISCONNECTED: The host left and the lobby was disbanded
  - SOCKET_CONFLICT: You are already connected elsewhere
  - GAME_STARTED: The host started the game
  - GAME_MOVES: A guess was accepted, with its feedback
  - GAME_ENDED: The game finished; the target word is revealed

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output raw frames as JSON lines")

	return cmd
}

func streamEvents(sessionID string, jsonOutput bool) error {
	target, err := client.WebsocketURL(sessionPath(sessionID, "/ws"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = ws.Close() }()

	// Unblock ReadMessage on interrupt
	go func() {
		<-ctx.Done()
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = ws.Close()
	}()

	if !jsonOutput {
		fmt.Printf("Connected to session %s\n", sessionID)
	}

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				if !jsonOutput {
					fmt.Println("Disconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		frame, err := realtime.DecodeFrame(data)
		if err != nil {
			return fmt.Errorf("bad frame: %w", err)
		}
		printFrame(frame, jsonOutput)
	}
}

func printFrame(frame *realtime.Frame, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.Marshal(frame)
		fmt.Println(string(data))
		return
	}
	fmt.Println(formatFrame(frame))
}

// formatFrame renders a frame as a single human readable line
func formatFrame(frame *realtime.Frame) string {
	timestamp := frame.Timestamp.Local().Format("2006-01-02 15:04:05")

	var detail string
	switch frame.Event {
	case model.EventGameMoves:
		var d realtime.MovesData
		if json.Unmarshal(frame.Data, &d) == nil {
			feedback := make([]string, len(d.Feedback))
			for i, f := range d.Feedback {
				feedback[i] = string(f)
			}
			detail = fmt.Sprintf("%s %s", d.PlayerID, renderFeedback("", feedback))
		}
	case model.EventGameEnded:
		var d realtime.EndedData
		if json.Unmarshal(frame.Data, &d) == nil {
			detail = fmt.Sprintf("%s word=%s", d.Result, d.Word)
			if d.Winner != "" {
				detail += fmt.Sprintf(" winner=%s", d.Winner)
			}
		}
	case model.EventPlayerConnected, model.EventPlayerDisconnected, model.EventHostDisconnected:
		var d realtime.PlayerData
		if json.Unmarshal(frame.Data, &d) == nil {
			detail = string(d.PlayerID)
		}
	}

	if detail == "" {
		return fmt.Sprintf("[%s] %s", timestamp, frame.Event)
	}
	return fmt.Sprintf("[%s] %s: %s", timestamp, frame.Event, detail)
}
