package model

import "time"

// Identity is the authenticated user as resolved by the remote gateway.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile mirrors the remote profile row.
type Profile struct {
	ID          string   `json:"id"`
	FullName    string   `json:"full_name"`
	AvatarURL   string   `json:"avatar_url"`
	WeightKg    *float64 `json:"weight_kg"`
	Units       string   `json:"units"`
	RestSeconds int      `json:"rest_seconds"`
	HeightCm    *float64 `json:"height_cm"`
	Gender      string   `json:"gender"`
	StreakDays  int      `json:"streak_days"`
}

// Exercise mirrors the remote exercise row. Pending is set for local-only
// exercises that are surfaced in listings ahead of synced data.
type Exercise struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"user_id,omitempty"`
	Name        string       `json:"name"`
	Kind        ExerciseKind `json:"kind,omitempty"`
	Description string       `json:"description,omitempty"`
	Favorite    bool         `json:"favorite,omitempty"`
	MuscleGroup string       `json:"muscle_group"`
	Equipment   string       `json:"equipment,omitempty"`
	Icon        string       `json:"icon"`
	ImageURL    string       `json:"image_url,omitempty"`
	Pending     bool         `json:"pending,omitempty"`
}

// Routine mirrors the remote routine row.
type Routine struct {
	ID          string `json:"id"`
	OwnerID     string `json:"user_id"`
	Name        string `json:"name"`
	AssignedDay string `json:"assigned_day"`
}

// ExerciseInsert is the payload for a remote exercise insert. ClientKey makes
// the insert an upsert: replaying it after a partial sync is a no-op.
type ExerciseInsert struct {
	ClientKey   string       `json:"client_key"`
	OwnerID     string       `json:"user_id"`
	Name        string       `json:"name"`
	Kind        ExerciseKind `json:"kind"`
	Description string       `json:"description"`
	Favorite    bool         `json:"favorite"`
	MuscleGroup string       `json:"muscle_group"`
	Icon        string       `json:"icon"`
	ImageURL    *string      `json:"image_url"`
}

// SessionInsert is the payload for a remote session header insert.
type SessionInsert struct {
	ClientKey       string    `json:"client_key"`
	OwnerID         string    `json:"user_id"`
	RoutineName     string    `json:"routine_name"`
	DurationMinutes int       `json:"duration_minutes"`
	RestSeconds     int       `json:"rest_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

// SetInsert is the payload for a remote set insert, tagged with the remote
// session id resolved from the header insert.
type SetInsert struct {
	ClientKey  string  `json:"client_key"`
	SessionID  string  `json:"session_id"`
	ExerciseID string  `json:"exercise_id"`
	SetNumber  int     `json:"set_number"`
	Reps       int     `json:"reps"`
	WeightKg   float64 `json:"weight_kg"`
	Completed  bool    `json:"completed"`
}

// CachedProfile is the locally cached copy of the remote profile.
type CachedProfile struct {
	Profile
	RefreshedAt time.Time `json:"refreshed_at"`
}

// CachedExercise is the locally cached copy of a remote exercise.
type CachedExercise struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MuscleGroup string    `json:"muscle_group"`
	Equipment   string    `json:"equipment"`
	Icon        string    `json:"icon"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// CachedRoutine is the locally cached copy of a remote routine.
type CachedRoutine struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"user_id"`
	Name        string    `json:"name"`
	AssignedDay string    `json:"assigned_day"`
	RefreshedAt time.Time `json:"refreshed_at"`
}
