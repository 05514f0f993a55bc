// Package remote defines the contract over the hosted data service. The sync
// core consumes this gateway; it never talks to the remote store directly.
package remote

import (
	"context"
	"errors"

	"github.com/Allantoteles/MyPork/internal/model"
)

// ErrRejected marks a request the remote store refused (permission denied,
// constraint violation). Like a network error, it leaves the pending record
// untouched for retry on the next cycle.
var ErrRejected = errors.New("remote: request rejected")

// ErrUploadUnsupported is returned by backends without an object store.
// Upload failure is never fatal to the record being synced.
var ErrUploadUnsupported = errors.New("remote: binary upload not supported")

// Gateway is the table-scoped contract over the remote data service.
// Inserts are upserts keyed on the record's client idempotency key, so a
// replay after an interrupted sync cannot create duplicates.
type Gateway interface {
	// Online reports whether the remote service is currently reachable.
	Online(ctx context.Context) bool

	// CurrentIdentity resolves the authenticated user. Returns (nil, nil)
	// when no user is signed in.
	CurrentIdentity(ctx context.Context) (*model.Identity, error)

	// FetchProfile reads the profile row for the given user.
	FetchProfile(ctx context.Context, userID string) (*model.Profile, error)

	// ListExercises reads all exercises owned by the given user.
	ListExercises(ctx context.Context, userID string) ([]model.Exercise, error)

	// ListRoutines reads all routines owned by the given user.
	ListRoutines(ctx context.Context, userID string) ([]model.Routine, error)

	// InsertExercise upserts an exercise by client key.
	InsertExercise(ctx context.Context, in model.ExerciseInsert) error

	// DeleteExercise deletes an exercise by remote id. Deleting an already
	// deleted id succeeds.
	DeleteExercise(ctx context.Context, remoteID string) error

	// InsertSession upserts a session header by client key and returns the
	// remote session id (the existing id when replayed).
	InsertSession(ctx context.Context, in model.SessionInsert) (string, error)

	// InsertSet upserts a session set by client key.
	InsertSet(ctx context.Context, in model.SetInsert) error

	// UploadImage stores a binary image payload and returns its public URL.
	UploadImage(ctx context.Context, key string, blob []byte) (string, error)

	// Close releases the gateway's resources.
	Close() error
}
