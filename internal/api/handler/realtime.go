package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/wordduel/internal/api/middleware"
	"github.com/mcoot/wordduel/internal/dependencies/idgen"
	"github.com/mcoot/wordduel/internal/realtime"
)

// RealtimeHandler upgrades lobby and game connections to websockets
type RealtimeHandler struct {
	binder realtime.Binder
	ids    idgen.IDGenerator
	logger *slog.Logger
}

// NewRealtimeHandler creates a new realtime handler
func NewRealtimeHandler(binder realtime.Binder, ids idgen.IDGenerator, logger *slog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		binder: binder,
		ids:    ids,
		logger: logger,
	}
}

// Connect handles GET /api/v1/sessions/{id}/ws
func (h *RealtimeHandler) Connect(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	realtime.ServeWS(w, r, h.binder, h.ids.NewID(), sessionID(r), player, h.logger)
}
