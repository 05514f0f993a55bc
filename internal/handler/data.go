package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Allantoteles/MyPork/internal/cache"
	"github.com/Allantoteles/MyPork/internal/model"
	"github.com/Allantoteles/MyPork/internal/prefs"
	"github.com/Allantoteles/MyPork/internal/remote"
	"github.com/Allantoteles/MyPork/internal/staging"
	"github.com/Allantoteles/MyPork/pkg/apierror"
	"github.com/Allantoteles/MyPork/pkg/response"
)

// DataHandler serves cache-first reads and stages offline writes. Reads go
// through the cache resolver; writes land in the staging store as pending
// records and never block on the network.
type DataHandler struct {
	resolver *cache.Resolver
	gw       remote.Gateway
	store    staging.Store
	prefs    *prefs.Manager
	maxAge   time.Duration
}

// NewDataHandler creates a data handler. maxAge bounds how stale a cached
// read may be before a refetch; zero means the resolver default.
func NewDataHandler(resolver *cache.Resolver, gw remote.Gateway, store staging.Store, prefsMgr *prefs.Manager, maxAge time.Duration) *DataHandler {
	return &DataHandler{resolver: resolver, gw: gw, store: store, prefs: prefsMgr, maxAge: maxAge}
}

// userID resolves the current identity, or empty when unreachable or signed
// out. With no identity the resolver serves cache only.
func (h *DataHandler) userID(r *http.Request) string {
	identity, err := h.gw.CurrentIdentity(r.Context())
	if err != nil || identity == nil {
		return ""
	}
	return identity.ID
}

func (h *DataHandler) readOptions(r *http.Request) cache.Options {
	return cache.Options{
		MaxAge:       h.maxAge,
		ForceRefresh: r.URL.Query().Get("refresh") == "1",
	}
}

// ListExercises returns the exercise listing, pending locals first.
func (h *DataHandler) ListExercises(w http.ResponseWriter, r *http.Request) {
	items, fromCache, err := h.resolver.Exercises(r.Context(), h.userID(r), h.readOptions(r))
	if err != nil {
		log.Printf("[DataHandler] exercise read failed: %v", err)
		response.Error(w, apierror.ServiceUnavailable("exercises unavailable"))
		return
	}
	response.OK(w, map[string]interface{}{"items": items, "from_cache": fromCache})
}

// ListRoutines returns the routine listing.
func (h *DataHandler) ListRoutines(w http.ResponseWriter, r *http.Request) {
	items, fromCache, err := h.resolver.Routines(r.Context(), h.userID(r), h.readOptions(r))
	if err != nil {
		log.Printf("[DataHandler] routine read failed: %v", err)
		response.Error(w, apierror.ServiceUnavailable("routines unavailable"))
		return
	}
	response.OK(w, map[string]interface{}{"items": items, "from_cache": fromCache})
}

// GetProfile returns the user profile.
func (h *DataHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, fromCache, err := h.resolver.Profile(r.Context(), h.userID(r), h.readOptions(r))
	if err != nil {
		log.Printf("[DataHandler] profile read failed: %v", err)
		response.Error(w, apierror.ServiceUnavailable("profile unavailable"))
		return
	}
	if profile == nil {
		response.Error(w, apierror.NotFound("no profile available"))
		return
	}
	response.OK(w, map[string]interface{}{"profile": profile, "from_cache": fromCache})
}

type createExerciseRequest struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	MuscleGroup string `json:"muscle_group"`
	Favorite    bool   `json:"favorite"`
	ImageBase64 string `json:"image_base64"`
}

// CreateExercise stages a new exercise locally; it syncs on the next cycle.
func (h *DataHandler) CreateExercise(w http.ResponseWriter, r *http.Request) {
	var req createExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid exercise payload"))
		return
	}

	var image []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			response.Error(w, apierror.BadRequest("invalid image encoding"))
			return
		}
		image = decoded
	}

	localID, err := h.store.AddExercise(r.Context(), model.PendingExercise{
		Name:        req.Name,
		Kind:        model.ExerciseKind(req.Kind),
		Description: req.Description,
		MuscleGroup: req.MuscleGroup,
		Favorite:    req.Favorite,
		Image:       image,
	})
	if err != nil {
		if errors.Is(err, model.ErrEmptyName) || errors.Is(err, model.ErrInvalidKind) {
			response.Error(w, apierror.BadRequest(err.Error()))
			return
		}
		log.Printf("[DataHandler] failed to stage exercise: %v", err)
		response.Error(w, apierror.InternalError("could not save exercise locally"))
		return
	}
	response.Created(w, map[string]int64{"local_id": localID})
}

// CancelPendingExercise hard-removes a staged exercise that never synced.
func (h *DataHandler) CancelPendingExercise(w http.ResponseWriter, r *http.Request) {
	localID, err := strconv.ParseInt(chi.URLParam(r, "localID"), 10, 64)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid local id"))
		return
	}
	if err := h.store.DeleteExercise(r.Context(), localID); err != nil {
		if errors.Is(err, staging.ErrNotFound) {
			response.Error(w, apierror.NotFound("no pending exercise with that id"))
			return
		}
		log.Printf("[DataHandler] failed to cancel exercise %d: %v", localID, err)
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.NoContent(w)
}

// DeleteExercise stages a deletion for a remotely existing exercise.
func (h *DataHandler) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	remoteID := chi.URLParam(r, "id")
	if _, err := h.store.AddDeletion(r.Context(), model.PendingDeletion{TargetID: remoteID}); err != nil {
		if errors.Is(err, model.ErrMissingTarget) {
			response.Error(w, apierror.BadRequest(err.Error()))
			return
		}
		log.Printf("[DataHandler] failed to stage deletion of %s: %v", remoteID, err)
		response.Error(w, apierror.InternalError("could not queue deletion"))
		return
	}
	response.JSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

type createSessionRequest struct {
	OwnerID         string            `json:"owner_id"`
	RoutineName     string            `json:"routine_name"`
	DurationMinutes int               `json:"duration_minutes"`
	RestSeconds     int               `json:"rest_seconds"`
	Sets            []sessionSetInput `json:"sets"`
}

type sessionSetInput struct {
	ExerciseID string  `json:"exercise_id"`
	SetNumber  int     `json:"set_number"`
	Reps       int     `json:"reps"`
	// Weight is in the user's display unit; it is canonicalised to
	// kilograms before storage.
	Weight    float64 `json:"weight"`
	Completed bool    `json:"completed"`
}

// CreateSession stages a finished workout session with its sets in one
// durable write.
func (h *DataHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid session payload"))
		return
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = h.userID(r)
	}

	current := h.prefs.Current()
	sets := make([]model.PendingSet, 0, len(req.Sets))
	for _, in := range req.Sets {
		sets = append(sets, model.PendingSet{
			ExerciseID: in.ExerciseID,
			SetNumber:  in.SetNumber,
			Reps:       in.Reps,
			WeightKg:   current.CanonicalWeight(in.Weight),
			Completed:  in.Completed,
		})
	}

	localID, err := h.store.AddSession(r.Context(), model.PendingSession{
		OwnerID:         ownerID,
		RoutineName:     req.RoutineName,
		DurationMinutes: req.DurationMinutes,
		RestSeconds:     req.RestSeconds,
	}, sets)
	if err != nil {
		if errors.Is(err, model.ErrMissingOwner) || errors.Is(err, model.ErrInvalidSetNum) || errors.Is(err, model.ErrNegativeWeight) {
			response.Error(w, apierror.BadRequest(err.Error()))
			return
		}
		log.Printf("[DataHandler] failed to stage session: %v", err)
		response.Error(w, apierror.InternalError("could not save session locally"))
		return
	}
	response.Created(w, map[string]int64{"local_id": localID})
}
