package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Allantoteles/MyPork/internal/service"
	"github.com/Allantoteles/MyPork/internal/staging"
	"github.com/Allantoteles/MyPork/pkg/apierror"
	"github.com/Allantoteles/MyPork/pkg/response"
)

// SyncRunner is the slice of the scheduler the sync handler needs.
type SyncRunner interface {
	RunNow(ctx context.Context) error
	OnForeground()
	OnReconnect()
}

// SyncHandler exposes the manual sync trigger, lifecycle events from the app
// shell, and pending-work statistics.
type SyncHandler struct {
	runner SyncRunner
	store  staging.Store
}

// NewSyncHandler creates a sync handler.
func NewSyncHandler(runner SyncRunner, store staging.Store) *SyncHandler {
	return &SyncHandler{runner: runner, store: store}
}

// TriggerSync runs a full sync immediately and surfaces the outcome, for the
// explicit sync button in settings.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	err := h.runner.RunNow(r.Context())
	switch {
	case errors.Is(err, service.ErrSyncInProgress):
		response.Error(w, apierror.Conflict("a sync is already running"))
		return
	case err != nil:
		log.Printf("[SyncHandler] manual sync failed: %v", err)
		response.Error(w, apierror.ServiceUnavailable("sync failed, changes remain queued"))
		return
	}

	stats, statsErr := h.store.PendingStats(r.Context())
	if statsErr != nil {
		log.Printf("[SyncHandler] failed to read pending stats: %v", statsErr)
	}
	response.OK(w, map[string]interface{}{
		"synced":  true,
		"pending": stats,
	})
}

// PendingStats returns how much local work awaits the next sync.
func (h *SyncHandler) PendingStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.PendingStats(r.Context())
	if err != nil {
		log.Printf("[SyncHandler] failed to read pending stats: %v", err)
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.OK(w, stats)
}

type lifecycleEvent struct {
	Event string `json:"event"`
}

// LifecycleEvent receives foreground/online notifications from the app
// shell. The daemon cannot observe window focus itself, so the shell pushes
// these; the scheduler applies its own gating.
func (h *SyncHandler) LifecycleEvent(w http.ResponseWriter, r *http.Request) {
	var ev lifecycleEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		response.Error(w, apierror.BadRequest("invalid event payload"))
		return
	}

	switch ev.Event {
	case "foreground":
		h.runner.OnForeground()
	case "online", "reconnect":
		h.runner.OnReconnect()
	default:
		response.Error(w, apierror.BadRequest("unknown event: "+ev.Event))
		return
	}
	response.NoContent(w)
}
