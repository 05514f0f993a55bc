// Package cache decides the data source for a read given desired freshness:
// serve the local cache while fresh, refetch from the remote gateway when
// stale, and fall back to whatever the cache holds when offline or when the
// fetch fails. Local pending records are surfaced ahead of cached data so
// unsynced creations show up in listings immediately.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/Allantoteles/MyPork/internal/model"
	"github.com/Allantoteles/MyPork/internal/remote"
	"github.com/Allantoteles/MyPork/internal/staging"
)

// DefaultMaxAge is how long a cached collection is served without refetching.
const DefaultMaxAge = 5 * time.Minute

// Options tune a single read.
type Options struct {
	// MaxAge overrides DefaultMaxAge when positive.
	MaxAge time.Duration
	// ForceRefresh bypasses the freshness check and goes to the remote
	// store (still falling back to cache on failure).
	ForceRefresh bool
}

// Resolver implements the cache-first read policy over the staging store and
// the remote gateway.
type Resolver struct {
	store staging.Store
	gw    remote.Gateway
	now   func() time.Time
}

// NewResolver creates a cache-first resolver.
func NewResolver(store staging.Store, gw remote.Gateway) *Resolver {
	return &Resolver{store: store, gw: gw, now: time.Now}
}

func (r *Resolver) maxAge(opts Options) time.Duration {
	if opts.MaxAge > 0 {
		return opts.MaxAge
	}
	return DefaultMaxAge
}

// fresh reports whether a cache refreshed at the given time is still usable.
func (r *Resolver) fresh(refreshedAt time.Time, opts Options) bool {
	return r.now().Sub(refreshedAt) < r.maxAge(opts)
}

// Exercises resolves the exercise listing for a user. Unsynced local
// exercises are concatenated ahead of cached or remote rows. The second
// return value reports whether the result was served from cache.
func (r *Resolver) Exercises(ctx context.Context, userID string, opts Options) ([]model.Exercise, bool, error) {
	locals, err := r.pendingAsExercises(ctx)
	if err != nil {
		return nil, false, err
	}

	cached, err := r.store.CachedExercises(ctx)
	if err != nil {
		return nil, false, err
	}

	if !opts.ForceRefresh && len(cached) > 0 && r.fresh(cached[0].RefreshedAt, opts) {
		return append(locals, exercisesFromCache(cached)...), true, nil
	}

	if userID == "" || !r.gw.Online(ctx) {
		// Best effort: stale cache beats nothing when offline.
		return append(locals, exercisesFromCache(cached)...), true, nil
	}

	fetched, err := r.gw.ListExercises(ctx, userID)
	if err != nil {
		log.Printf("[CacheResolver] exercise fetch failed, falling back to cache: %v", err)
		if len(cached) > 0 {
			return append(locals, exercisesFromCache(cached)...), true, nil
		}
		return locals, false, err
	}

	if err := r.store.PutExercises(ctx, cacheFromExercises(fetched, r.now())); err != nil {
		log.Printf("[CacheResolver] failed to update exercise cache: %v", err)
	}
	return append(locals, fetched...), false, nil
}

// Routines resolves the routine listing for a user.
func (r *Resolver) Routines(ctx context.Context, userID string, opts Options) ([]model.Routine, bool, error) {
	cached, err := r.store.CachedRoutines(ctx)
	if err != nil {
		return nil, false, err
	}

	if !opts.ForceRefresh && len(cached) > 0 && r.fresh(cached[0].RefreshedAt, opts) {
		return routinesFromCache(cached), true, nil
	}

	if userID == "" || !r.gw.Online(ctx) {
		return routinesFromCache(cached), true, nil
	}

	fetched, err := r.gw.ListRoutines(ctx, userID)
	if err != nil {
		log.Printf("[CacheResolver] routine fetch failed, falling back to cache: %v", err)
		if len(cached) > 0 {
			return routinesFromCache(cached), true, nil
		}
		return nil, false, err
	}

	if err := r.store.PutRoutines(ctx, cacheFromRoutines(fetched, r.now())); err != nil {
		log.Printf("[CacheResolver] failed to update routine cache: %v", err)
	}
	return fetched, false, nil
}

// Profile resolves the single profile row for a user.
func (r *Resolver) Profile(ctx context.Context, userID string, opts Options) (*model.Profile, bool, error) {
	cached, err := r.store.CachedProfile(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	if cached != nil && !opts.ForceRefresh && r.fresh(cached.RefreshedAt, opts) {
		p := cached.Profile
		return &p, true, nil
	}

	if userID == "" || !r.gw.Online(ctx) {
		if cached == nil {
			return nil, true, nil
		}
		p := cached.Profile
		return &p, true, nil
	}

	fetched, err := r.gw.FetchProfile(ctx, userID)
	if err != nil || fetched == nil {
		if err != nil {
			log.Printf("[CacheResolver] profile fetch failed, falling back to cache: %v", err)
		}
		if cached != nil {
			p := cached.Profile
			return &p, true, nil
		}
		return nil, false, err
	}

	if err := r.store.PutProfile(ctx, model.CachedProfile{Profile: *fetched, RefreshedAt: r.now()}); err != nil {
		log.Printf("[CacheResolver] failed to update profile cache: %v", err)
	}
	return fetched, false, nil
}

func (r *Resolver) pendingAsExercises(ctx context.Context) ([]model.Exercise, error) {
	pend, err := r.store.PendingExercises(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Exercise, 0, len(pend))
	for _, p := range pend {
		out = append(out, model.Exercise{
			Name:        p.Name,
			Kind:        p.Kind,
			Description: p.Description,
			Favorite:    p.Favorite,
			MuscleGroup: p.MuscleGroup,
			Icon:        p.Kind.Icon(),
			Pending:     true,
		})
	}
	return out, nil
}

func exercisesFromCache(items []model.CachedExercise) []model.Exercise {
	out := make([]model.Exercise, 0, len(items))
	for _, it := range items {
		out = append(out, model.Exercise{
			ID:          it.ID,
			Name:        it.Name,
			MuscleGroup: it.MuscleGroup,
			Equipment:   it.Equipment,
			Icon:        it.Icon,
		})
	}
	return out
}

func cacheFromExercises(items []model.Exercise, refreshedAt time.Time) []model.CachedExercise {
	out := make([]model.CachedExercise, 0, len(items))
	for _, it := range items {
		out = append(out, model.CachedExercise{
			ID:          it.ID,
			Name:        it.Name,
			MuscleGroup: it.MuscleGroup,
			Equipment:   it.Equipment,
			Icon:        it.Icon,
			RefreshedAt: refreshedAt,
		})
	}
	return out
}

func routinesFromCache(items []model.CachedRoutine) []model.Routine {
	out := make([]model.Routine, 0, len(items))
	for _, it := range items {
		out = append(out, model.Routine{
			ID:          it.ID,
			OwnerID:     it.OwnerID,
			Name:        it.Name,
			AssignedDay: it.AssignedDay,
		})
	}
	return out
}

func cacheFromRoutines(items []model.Routine, refreshedAt time.Time) []model.CachedRoutine {
	out := make([]model.CachedRoutine, 0, len(items))
	for _, it := range items {
		out = append(out, model.CachedRoutine{
			ID:          it.ID,
			OwnerID:     it.OwnerID,
			Name:        it.Name,
			AssignedDay: it.AssignedDay,
			RefreshedAt: refreshedAt,
		})
	}
	return out
}
