package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/wordduel/internal/api/request"
	"github.com/mcoot/wordduel/internal/api/response"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session management commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionJoinCmd())
	cmd.AddCommand(newSessionStartCmd())

	return cmd
}

func sessionPath(id string, suffix string) string {
	return fmt.Sprintf("/api/v1/sessions/%s%s", id, suffix)
}

func newSessionCreateCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new session and host its lobby",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CreateSessionRequest{Password: password}
			var result response.CreatedSession

			if err := client.Post("/api/v1/sessions", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password required to join (default: open)")

	return cmd
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List lobbies waiting for a second player",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.OpenSession

			if err := client.Get("/api/v1/sessions", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get session details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session

			if err := client.Get(sessionPath(args[0], ""), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionJoinCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "join <id>",
		Short: "Join a session as the second player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.JoinSessionRequest{Password: password}
			var result response.Session

			if err := client.Post(sessionPath(args[0], "/join"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Session password")

	return cmd
}

func newSessionStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Start the game (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session

			if err := client.Post(sessionPath(args[0], "/start"), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGuessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guess <id> <word>",
		Short: "Submit a guess",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.GuessRequest{Word: args[1]}
			var result response.GuessResult

			if err := client.Post(sessionPath(args[0], "/guesses"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			if cfg.Output != FormatText {
				out.Print(result)
				return nil
			}
			out.printGuessResult(args[1], result)
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show your finished games",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.History

			if err := client.Get("/api/v1/players/me/history", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
