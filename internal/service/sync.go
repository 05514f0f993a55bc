package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Allantoteles/MyPork/internal/model"
	"github.com/Allantoteles/MyPork/internal/remote"
	"github.com/Allantoteles/MyPork/internal/staging"
)

// State is the engine's lifecycle state. Modelled as an enum with guarded
// transitions so two concurrent syncs are unrepresentable.
type State int

const (
	StateIdle State = iota
	StateSyncing
)

// ErrSyncInProgress is returned when a sync is requested while one is
// already running. The trigger policy drops such requests; the next trigger
// re-attempts.
var ErrSyncInProgress = errors.New("service: sync already in progress")

// Engine reconciles the local staging store against the remote gateway in a
// fixed order: drain pending writes first, then refresh the cache. The order
// matters: refreshing first could cache state that predates the pending
// local writes and duplicate a just-created entity once it round-trips.
//
// Every record's pending→synced transition is independent and atomic, so the
// engine can be re-invoked at any time: delivery is at-least-once, and
// replays are deduplicated remotely via client idempotency keys.
type Engine struct {
	store staging.Store
	gw    remote.Gateway
	now   func() time.Time

	mu    sync.Mutex
	state State
}

// NewEngine creates a sync engine.
func NewEngine(store staging.Store, gw remote.Gateway) *Engine {
	return &Engine{store: store, gw: gw, now: time.Now}
}

// State returns the engine's current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSyncing {
		return false
	}
	e.state = StateSyncing
	return true
}

func (e *Engine) end() {
	e.mu.Lock()
	e.state = StateIdle
	e.mu.Unlock()
}

// SyncAll runs a full sync: pending exercises, pending deletions, pending
// sessions with their sets, then the cache refresh. Without a resolved
// identity the whole attempt aborts with no state mutation; that is a no-op,
// not an error, since there is nothing to sync without an authenticated user.
func (e *Engine) SyncAll(ctx context.Context) error {
	if !e.begin() {
		return ErrSyncInProgress
	}
	defer e.end()

	identity, err := e.gw.CurrentIdentity(ctx)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}
	if identity == nil {
		log.Printf("[SyncEngine] no signed-in user, nothing to sync")
		return nil
	}

	e.syncExercises(ctx, identity.ID)
	e.syncDeletions(ctx)
	e.syncSessions(ctx, identity.ID)

	// Phase 2 runs regardless of phase 1 progress.
	if err := e.refreshCache(ctx, identity.ID); err != nil {
		log.Printf("[SyncEngine] cache refresh incomplete: %v", err)
		return err
	}

	if err := e.store.SetLastFullSync(ctx, e.now()); err != nil {
		log.Printf("[SyncEngine] failed to record full sync time: %v", err)
	}
	return nil
}

// syncExercises drains pending exercise creations, oldest first. A failed
// image upload is not fatal to the record: the insert proceeds without a
// URL. A failed insert leaves the record pending for the next cycle.
func (e *Engine) syncExercises(ctx context.Context, userID string) {
	pend, err := e.store.PendingExercises(ctx)
	if err != nil {
		log.Printf("[SyncEngine] failed to load pending exercises: %v", err)
		return
	}
	if len(pend) == 0 {
		return
	}
	log.Printf("[SyncEngine] syncing %d pending exercises", len(pend))

	for _, ex := range pend {
		var imageURL *string
		if len(ex.Image) > 0 {
			url, err := e.gw.UploadImage(ctx, "exercises/"+ex.ClientKey, ex.Image)
			if err != nil {
				log.Printf("[SyncEngine] image upload failed for %q, continuing without image: %v", ex.Name, err)
			} else {
				imageURL = &url
			}
		}

		in := model.ExerciseInsert{
			ClientKey:   ex.ClientKey,
			OwnerID:     userID,
			Name:        ex.Name,
			Kind:        ex.Kind,
			Description: ex.Description,
			Favorite:    ex.Favorite,
			MuscleGroup: ex.MuscleGroup,
			Icon:        ex.Kind.Icon(),
			ImageURL:    imageURL,
		}
		if err := e.gw.InsertExercise(ctx, in); err != nil {
			log.Printf("[SyncEngine] failed to insert exercise %q: %v", ex.Name, err)
			continue
		}
		if err := e.store.MarkExerciseSynced(ctx, ex.LocalID); err != nil {
			log.Printf("[SyncEngine] failed to mark exercise %d synced: %v", ex.LocalID, err)
		}
	}
}

// syncDeletions drains pending deletion requests, oldest first.
func (e *Engine) syncDeletions(ctx context.Context) {
	pend, err := e.store.PendingDeletions(ctx)
	if err != nil {
		log.Printf("[SyncEngine] failed to load pending deletions: %v", err)
		return
	}
	if len(pend) == 0 {
		return
	}
	log.Printf("[SyncEngine] syncing %d pending deletions", len(pend))

	for _, d := range pend {
		if err := e.gw.DeleteExercise(ctx, d.TargetID); err != nil {
			log.Printf("[SyncEngine] failed to delete exercise %s: %v", d.TargetID, err)
			continue
		}
		if err := e.store.MarkDeletionSynced(ctx, d.LocalID); err != nil {
			log.Printf("[SyncEngine] failed to mark deletion %d synced: %v", d.LocalID, err)
		}
	}
}

// syncSessions drains pending sessions, oldest first. The header insert must
// succeed before any of the session's sets are attempted; if it fails the
// session stays pending and the whole group retries next cycle. The session
// is marked synced only once every set has landed, so a partial set failure
// also retries. The retry is harmless since inserts are keyed on client keys.
func (e *Engine) syncSessions(ctx context.Context, userID string) {
	pend, err := e.store.PendingSessions(ctx)
	if err != nil {
		log.Printf("[SyncEngine] failed to load pending sessions: %v", err)
		return
	}
	if len(pend) == 0 {
		return
	}
	log.Printf("[SyncEngine] syncing %d pending sessions", len(pend))

	for _, sess := range pend {
		remoteID, err := e.gw.InsertSession(ctx, model.SessionInsert{
			ClientKey:       sess.ClientKey,
			OwnerID:         userID,
			RoutineName:     sess.RoutineName,
			DurationMinutes: sess.DurationMinutes,
			RestSeconds:     sess.RestSeconds,
			CreatedAt:       sess.CreatedAt,
		})
		if err != nil {
			log.Printf("[SyncEngine] failed to insert session %q: %v", sess.RoutineName, err)
			continue
		}

		sets, err := e.store.PendingSetsForSession(ctx, sess.LocalID)
		if err != nil {
			log.Printf("[SyncEngine] failed to load sets for session %d: %v", sess.LocalID, err)
			continue
		}

		allSynced := true
		for _, set := range sets {
			err := e.gw.InsertSet(ctx, model.SetInsert{
				ClientKey:  set.ClientKey,
				SessionID:  remoteID,
				ExerciseID: set.ExerciseID,
				SetNumber:  set.SetNumber,
				Reps:       set.Reps,
				WeightKg:   set.WeightKg,
				Completed:  set.Completed,
			})
			if err != nil {
				log.Printf("[SyncEngine] failed to insert set %d of session %d: %v", set.SetNumber, sess.LocalID, err)
				allSynced = false
				continue
			}
			if err := e.store.MarkSetSynced(ctx, set.LocalID, remoteID); err != nil {
				log.Printf("[SyncEngine] failed to mark set %d synced: %v", set.LocalID, err)
				allSynced = false
			}
		}

		if !allSynced {
			continue
		}
		if err := e.store.MarkSessionSynced(ctx, sess.LocalID); err != nil {
			log.Printf("[SyncEngine] failed to mark session %d synced: %v", sess.LocalID, err)
		}
	}
}

// refreshCache pulls a full remote snapshot of every cached collection and
// upserts it with a fresh timestamp.
func (e *Engine) refreshCache(ctx context.Context, userID string) error {
	now := e.now()
	var firstErr error

	profile, err := e.gw.FetchProfile(ctx, userID)
	if err != nil {
		log.Printf("[SyncEngine] failed to fetch profile: %v", err)
		firstErr = err
	} else if profile != nil {
		if err := e.store.PutProfile(ctx, model.CachedProfile{Profile: *profile, RefreshedAt: now}); err != nil {
			log.Printf("[SyncEngine] failed to cache profile: %v", err)
			firstErr = err
		}
	}

	exercises, err := e.gw.ListExercises(ctx, userID)
	if err != nil {
		log.Printf("[SyncEngine] failed to fetch exercises: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	} else {
		items := make([]model.CachedExercise, 0, len(exercises))
		for _, ex := range exercises {
			items = append(items, model.CachedExercise{
				ID:          ex.ID,
				Name:        ex.Name,
				MuscleGroup: ex.MuscleGroup,
				Equipment:   ex.Equipment,
				Icon:        ex.Icon,
				RefreshedAt: now,
			})
		}
		if err := e.store.PutExercises(ctx, items); err != nil {
			log.Printf("[SyncEngine] failed to cache exercises: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	routines, err := e.gw.ListRoutines(ctx, userID)
	if err != nil {
		log.Printf("[SyncEngine] failed to fetch routines: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	} else {
		items := make([]model.CachedRoutine, 0, len(routines))
		for _, r := range routines {
			items = append(items, model.CachedRoutine{
				ID:          r.ID,
				OwnerID:     r.OwnerID,
				Name:        r.Name,
				AssignedDay: r.AssignedDay,
				RefreshedAt: now,
			})
		}
		if err := e.store.PutRoutines(ctx, items); err != nil {
			log.Printf("[SyncEngine] failed to cache routines: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
