package staging

import (
	"context"
	"errors"
	"time"

	"github.com/Allantoteles/MyPork/internal/model"
)

// ErrNotFound is returned when a local id does not exist in the store.
var ErrNotFound = errors.New("staging: record not found")

// Store is the durable on-device staging store. It owns every Pending* and
// Cached* record for the lifetime of the process: UI writes land here as
// pending records, the sync engine drains them, and cached copies of remote
// data are served from here when offline. Every write is durable before the
// call returns.
type Store interface {
	// AddExercise stages a locally created exercise. A client idempotency
	// key is minted if the record does not carry one.
	AddExercise(ctx context.Context, ex model.PendingExercise) (int64, error)

	// PendingExercises returns unsynced exercises, oldest first.
	PendingExercises(ctx context.Context) ([]model.PendingExercise, error)

	// MarkExerciseSynced transitions a pending exercise to synced.
	MarkExerciseSynced(ctx context.Context, localID int64) error

	// DeleteExercise hard-removes a local exercise that was never synced
	// (cancel before sync). Synced records are retained for audit.
	DeleteExercise(ctx context.Context, localID int64) error

	// AddDeletion stages a delete request for a remotely existing exercise.
	AddDeletion(ctx context.Context, d model.PendingDeletion) (int64, error)

	// PendingDeletions returns unsynced deletions, oldest first.
	PendingDeletions(ctx context.Context) ([]model.PendingDeletion, error)

	// MarkDeletionSynced transitions a pending deletion to synced.
	MarkDeletionSynced(ctx context.Context, localID int64) error

	// AddSession stages a workout session together with its sets in one
	// durable transaction. Sets always reference a session that exists.
	AddSession(ctx context.Context, s model.PendingSession, sets []model.PendingSet) (int64, error)

	// PendingSessions returns unsynced sessions, oldest first.
	PendingSessions(ctx context.Context) ([]model.PendingSession, error)

	// PendingSetsForSession returns the unsynced sets of a local session.
	PendingSetsForSession(ctx context.Context, localSessionID int64) ([]model.PendingSet, error)

	// MarkSessionSynced transitions a pending session to synced.
	MarkSessionSynced(ctx context.Context, localID int64) error

	// MarkSetSynced transitions a set to synced and records the remote
	// session id it now belongs to.
	MarkSetSynced(ctx context.Context, localID int64, remoteSessionID string) error

	// PendingStats counts unsynced records across all tables.
	PendingStats(ctx context.Context) (model.PendingStats, error)

	// PutProfile upserts the cached profile (single row per identity).
	PutProfile(ctx context.Context, p model.CachedProfile) error

	// CachedProfile returns the cached profile, or nil when absent.
	CachedProfile(ctx context.Context, id string) (*model.CachedProfile, error)

	// PutExercises upserts cached exercises by remote id.
	PutExercises(ctx context.Context, items []model.CachedExercise) error

	// CachedExercises returns all cached exercises.
	CachedExercises(ctx context.Context) ([]model.CachedExercise, error)

	// PutRoutines upserts cached routines by remote id.
	PutRoutines(ctx context.Context, items []model.CachedRoutine) error

	// CachedRoutines returns all cached routines.
	CachedRoutines(ctx context.Context) ([]model.CachedRoutine, error)

	// LastFullSync returns when the last full sync completed, or the zero
	// time when none has.
	LastFullSync(ctx context.Context) (time.Time, error)

	// SetLastFullSync records the completion time of a full sync.
	SetLastFullSync(ctx context.Context, t time.Time) error

	// GetMeta and SetMeta read and write small process-wide key/value
	// state (preferences, sync bookkeeping).
	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error

	// Close closes the store.
	Close() error
}
