// Package auth verifies identity tokens. Tokens are HS256 JWTs signed with a
// secret shared with the identity provider; the subject claim is the player id.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/wordduel/internal/dependencies/clock"
	"github.com/mcoot/wordduel/internal/model"
)

// Errors
var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNoSecret     = errors.New("token secret not configured")
	ErrNoSubject    = errors.New("token has no subject")
)

// Config holds configuration for the auth service
type Config struct {
	Secret   []byte
	Issuer   string
	TokenTTL time.Duration // Lifetime of tokens minted by Issue
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Issuer:   "wordduel",
		TokenTTL: 24 * time.Hour,
	}
}

// Service handles token verification and development token minting
type Service struct {
	clock  clock.Clock
	config Config
	parser *jwt.Parser
}

// New creates a new auth Service
func New(clock clock.Clock, cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrNoSecret
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	return &Service{
		clock:  clock,
		config: cfg,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(clock.Now),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// Issue mints a token for player. Production tokens come from the identity
// provider; this exists for local play and tests.
func (s *Service) Issue(player model.PlayerID) (string, error) {
	if player == "" {
		return "", ErrNoSubject
	}
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   string(player),
		Issuer:    s.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify checks the token signature and expiry and returns the player it identifies
func (s *Service) Verify(token string) (model.PlayerID, error) {
	var claims jwt.RegisteredClaims
	_, err := s.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.config.Secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	return model.PlayerID(claims.Subject), nil
}
