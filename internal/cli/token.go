package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/wordduel/internal/dependencies/clock"
	"github.com/mcoot/wordduel/internal/model"
	"github.com/mcoot/wordduel/internal/services/auth"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Identity token commands",
	}

	cmd.AddCommand(newTokenMintCmd())

	return cmd
}

// TokenResult is printed by token mint
type TokenResult struct {
	Player string `json:"player"`
	Token  string `json:"token"`
}

func newTokenMintCmd() *cobra.Command {
	var secret string
	var ttl time.Duration
	var save bool

	cmd := &cobra.Command{
		Use:   "mint <player-id>",
		Short: "Mint a development token signed with the server secret",
		Long: `Mint a token for local play. In production tokens are issued by the
identity provider; the server only verifies them against JWT_SECRET.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}

			authCfg := auth.DefaultConfig()
			authCfg.Secret = []byte(secret)
			authCfg.TokenTTL = ttl
			service, err := auth.New(clock.New(), authCfg)
			if err != nil {
				return err
			}

			token, err := service.Issue(model.PlayerID(args[0]))
			if err != nil {
				return err
			}

			if save {
				if err := cfg.SaveToken(token); err != nil {
					return fmt.Errorf("failed to save token: %w", err)
				}
			}

			NewOutput(cfg.Output).Print(TokenResult{Player: args[0], Token: token})
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret (env: JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultConfig().TokenTTL, "Token lifetime")
	cmd.Flags().BoolVar(&save, "save", true, "Save the token to the token file")

	return cmd
}
