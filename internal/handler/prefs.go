package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Allantoteles/MyPork/internal/prefs"
	"github.com/Allantoteles/MyPork/pkg/apierror"
	"github.com/Allantoteles/MyPork/pkg/response"
)

// PrefsHandler exposes the user preferences (weight units, rest timer).
type PrefsHandler struct {
	manager *prefs.Manager
}

// NewPrefsHandler creates a preferences handler.
func NewPrefsHandler(manager *prefs.Manager) *PrefsHandler {
	return &PrefsHandler{manager: manager}
}

// Get returns the active preferences snapshot.
func (h *PrefsHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.manager.Current())
}

// Update replaces the preferences. Subscribers see the new snapshot once it
// is persisted.
func (h *PrefsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p prefs.Preferences
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		response.Error(w, apierror.BadRequest("invalid preferences payload"))
		return
	}

	if err := h.manager.Update(r.Context(), p); err != nil {
		if errors.Is(err, prefs.ErrInvalidUnits) {
			response.Error(w, apierror.BadRequest(err.Error()))
			return
		}
		log.Printf("[PrefsHandler] failed to update preferences: %v", err)
		response.Error(w, apierror.InternalError("could not persist preferences"))
		return
	}
	response.OK(w, h.manager.Current())
}
