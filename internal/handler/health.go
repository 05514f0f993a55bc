package handler

import (
	"net/http"
	"time"

	"github.com/Allantoteles/MyPork/internal/staging"
	"github.com/Allantoteles/MyPork/pkg/response"
)

// Handler serves service status and health endpoints.
type Handler struct {
	version   string
	startedAt time.Time
	store     staging.Store
}

// New creates a health handler.
func New(version string, store staging.Store) *Handler {
	return &Handler{
		version:   version,
		startedAt: time.Now(),
		store:     store,
	}
}

// Status returns service identity and uptime.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{
		"service": "mypork-syncd",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "healthy"})
}

// Ready reports readiness: the staging store must answer a query.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.PendingStats(r.Context()); err != nil {
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "staging store unavailable"})
		return
	}
	response.OK(w, map[string]string{"status": "ready"})
}
