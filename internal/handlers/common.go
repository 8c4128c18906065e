package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]bool{}
	if h.redis != nil {
		checks["redis"] = h.redis.Ping(ctx).Err() == nil
	}

	allHealthy := true
	for _, ok := range checks {
		if !ok {
			allHealthy = false
			break
		}
	}

	depth := 0
	if h.queue != nil {
		depth = h.queue.QueueDepth()
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	h.jsonResponse(w, status, map[string]interface{}{
		"ready":      allHealthy,
		"checks":     checks,
		"queueDepth": depth,
	})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warnw("failed to encode response", "error", err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}
