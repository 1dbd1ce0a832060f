package handler

import (
	"net/http"

	"github.com/mcoot/wordduel/internal/api/apierr"
	"github.com/mcoot/wordduel/internal/api/middleware"
	"github.com/mcoot/wordduel/internal/api/response"
	"github.com/mcoot/wordduel/internal/services/history"
)

// HistoryHandler serves player histories
type HistoryHandler struct {
	history *history.Service
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history *history.Service) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// Mine handles GET /api/v1/players/me/history
func (h *HistoryHandler) Mine(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	hist, err := h.history.ForPlayer(r.Context(), player)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HistoryFromService(hist))
}
