package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordduel/internal/api/handler"
	"github.com/mcoot/wordduel/internal/api/middleware"
	"github.com/mcoot/wordduel/internal/dependencies/idgen"
	"github.com/mcoot/wordduel/internal/realtime"
	"github.com/mcoot/wordduel/internal/services/history"
	"github.com/mcoot/wordduel/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	TokenVerifier     middleware.TokenVerifier
	SessionController *session.Controller
	HistoryService    *history.Service
	RealtimeBinder    realtime.Binder
	IDGenerator       idgen.IDGenerator
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.SessionController)
	historyHandler := handler.NewHistoryHandler(cfg.HistoryService)
	realtimeHandler := handler.NewRealtimeHandler(cfg.RealtimeBinder, cfg.IDGenerator, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.TokenVerifier)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Session routes (all require auth)
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(authMiddleware)
	sessions.HandleFunc("", sessionHandler.Create).Methods(http.MethodPost)
	sessions.HandleFunc("", sessionHandler.List).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/join", sessionHandler.Join).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/start", sessionHandler.Start).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/guesses", sessionHandler.Guess).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/ws", realtimeHandler.Connect).Methods(http.MethodGet)

	// Player routes
	players := api.PathPrefix("/players").Subrouter()
	players.Use(authMiddleware)
	players.HandleFunc("/me/history", historyHandler.Mine).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
