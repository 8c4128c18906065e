package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/secondrobotics/ranked-bot/internal/logic"
)

// GetPlayerStats returns the aggregated ranked report for a player
// @Summary Get Player Stats
// @Description Aggregate a player's ranked stats across every game
// @Tags Player
// @Produce json
// @Param userID path string true "Chat user ID"
// @Success 200 {object} models.PlayerReport "Player Report"
// @Failure 404 {object} map[string]string "Not Registered"
// @Failure 502 {object} map[string]string "Upstream Unavailable"
// @Router /stats/player/{userID} [get]
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.errorResponse(w, http.StatusBadRequest, "missing user id")
		return
	}

	report, err := h.playerStats.FetchPlayerStats(r.Context(), userID)
	switch {
	case errors.Is(err, logic.ErrPlayerNotFound):
		h.errorResponse(w, http.StatusNotFound, "player not registered")
		return
	case err != nil:
		h.logger.Errorw("Failed to fetch player stats", "user_id", userID, "error", err)
		h.errorResponse(w, http.StatusBadGateway, "ranked api unavailable")
		return
	}

	h.jsonResponse(w, http.StatusOK, report)
}
