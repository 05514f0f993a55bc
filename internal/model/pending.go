package model

import (
	"errors"
	"time"
)

// SyncState tracks whether a locally staged record has reached the remote store.
type SyncState int

const (
	// StatePending means the record exists only locally and is waiting for sync.
	StatePending SyncState = 0
	// StateSynced means the record was confirmed by the remote store.
	StateSynced SyncState = 1
)

// ExerciseKind is the category of an exercise.
type ExerciseKind string

const (
	KindStrength ExerciseKind = "strength"
	KindCardio   ExerciseKind = "cardio"
)

// Icon returns the display icon associated with the exercise kind.
func (k ExerciseKind) Icon() string {
	if k == KindCardio {
		return "directions_run"
	}
	return "fitness_center"
}

// Valid reports whether k is a known exercise kind.
func (k ExerciseKind) Valid() bool {
	return k == KindStrength || k == KindCardio
}

// Validation errors returned when a malformed record is rejected at the
// staging-store boundary.
var (
	ErrEmptyName      = errors.New("model: name must not be empty")
	ErrInvalidKind    = errors.New("model: invalid exercise kind")
	ErrMissingTarget  = errors.New("model: deletion target id must not be empty")
	ErrMissingOwner   = errors.New("model: owner identity must not be empty")
	ErrInvalidSetNum  = errors.New("model: set number must be >= 1")
	ErrNegativeWeight = errors.New("model: weight must not be negative")
)

// PendingExercise is an exercise created locally that has not yet been
// inserted into the remote store. The local id is assigned by the staging
// store; ClientKey is the idempotency key minted at creation time so a
// replayed insert cannot create a remote duplicate.
type PendingExercise struct {
	LocalID     int64        `json:"local_id"`
	ClientKey   string       `json:"client_key"`
	Name        string       `json:"name"`
	Kind        ExerciseKind `json:"kind"`
	Description string       `json:"description"`
	Favorite    bool         `json:"favorite"`
	MuscleGroup string       `json:"muscle_group"`
	Image       []byte       `json:"-"`
	State       SyncState    `json:"state"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Validate rejects malformed exercises before they enter the pending queue.
func (e *PendingExercise) Validate() error {
	if e.Name == "" {
		return ErrEmptyName
	}
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

// PendingDeletion records a local request to delete an exercise that already
// exists remotely. Remote deletes are idempotent, so replaying one is safe.
type PendingDeletion struct {
	LocalID   int64     `json:"local_id"`
	TargetID  string    `json:"target_id"`
	DeletedAt time.Time `json:"deleted_at"`
	State     SyncState `json:"state"`
}

// Validate rejects deletions without a remote target.
func (d *PendingDeletion) Validate() error {
	if d.TargetID == "" {
		return ErrMissingTarget
	}
	return nil
}

// PendingSession is a workout session logged locally. Its sets reference it
// by local id until the session header round-trips and yields a remote id.
type PendingSession struct {
	LocalID         int64     `json:"local_id"`
	ClientKey       string    `json:"client_key"`
	OwnerID         string    `json:"owner_id"`
	RoutineName     string    `json:"routine_name"`
	DurationMinutes int       `json:"duration_minutes"`
	RestSeconds     int       `json:"rest_seconds"`
	State           SyncState `json:"state"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate rejects sessions without an owner.
func (s *PendingSession) Validate() error {
	if s.OwnerID == "" {
		return ErrMissingOwner
	}
	return nil
}

// PendingSet is a single set inside a pending session. Weight is always
// stored in kilograms regardless of the display unit. RemoteSessionID is
// filled in once the parent session header has synced.
type PendingSet struct {
	LocalID         int64     `json:"local_id"`
	ClientKey       string    `json:"client_key"`
	LocalSessionID  int64     `json:"local_session_id"`
	RemoteSessionID string    `json:"remote_session_id,omitempty"`
	ExerciseID      string    `json:"exercise_id"`
	SetNumber       int       `json:"set_number"`
	Reps            int       `json:"reps"`
	WeightKg        float64   `json:"weight_kg"`
	Completed       bool      `json:"completed"`
	State           SyncState `json:"state"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate rejects malformed sets.
func (s *PendingSet) Validate() error {
	if s.SetNumber < 1 {
		return ErrInvalidSetNum
	}
	if s.WeightKg < 0 {
		return ErrNegativeWeight
	}
	return nil
}

// PendingStats summarises how much local work is waiting for the next sync.
type PendingStats struct {
	Exercises int `json:"exercises"`
	Deletions int `json:"deletions"`
	Sessions  int `json:"sessions"`
	Sets      int `json:"sets"`
	Total     int `json:"total"`
}
