package remote

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/Allantoteles/MyPork/internal/model"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresConfig holds connection settings for a direct-Postgres backend.
type PostgresConfig struct {
	DSN string
	// UserID and UserEmail identify the single local user. Self-hosted
	// deployments have no auth service, so identity comes from config.
	UserID    string
	UserEmail string
}

// PostgresGateway talks straight to the remote Postgres database. It covers
// table reads and writes; binary uploads need an object store and are
// reported as unsupported, which the sync engine treats as non-fatal.
type PostgresGateway struct {
	db       *sql.DB
	identity *model.Identity
}

// NewPostgresGateway opens a connection to the remote database.
func NewPostgresGateway(cfg PostgresConfig) (*PostgresGateway, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Printf("[PostgresGateway] Warning: initial ping failed: %v", err)
	}

	var identity *model.Identity
	if cfg.UserID != "" {
		identity = &model.Identity{ID: cfg.UserID, Email: cfg.UserEmail}
	}

	return &PostgresGateway{db: db, identity: identity}, nil
}

// Online reports whether the database currently answers a ping.
func (g *PostgresGateway) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return g.db.PingContext(ctx) == nil
}

// CurrentIdentity returns the configured local user, or none.
func (g *PostgresGateway) CurrentIdentity(ctx context.Context) (*model.Identity, error) {
	if g.identity == nil {
		return nil, nil
	}
	id := *g.identity
	return &id, nil
}

// FetchProfile reads the profile row for the given user.
func (g *PostgresGateway) FetchProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	var weight, height sql.NullFloat64
	err := g.db.QueryRowContext(ctx, `
		SELECT id, full_name, avatar_url, weight_kg, units, rest_seconds, height_cm, gender, streak_days
		FROM profiles WHERE id = $1`, userID).
		Scan(&p.ID, &p.FullName, &p.AvatarURL, &weight, &p.Units, &p.RestSeconds,
			&height, &p.Gender, &p.StreakDays)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if weight.Valid {
		p.WeightKg = &weight.Float64
	}
	if height.Valid {
		p.HeightCm = &height.Float64
	}
	return &p, nil
}

// ListExercises reads all exercises owned by the given user.
func (g *PostgresGateway) ListExercises(ctx context.Context, userID string) ([]model.Exercise, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT id, user_id, name, kind, COALESCE(description, ''), favorite,
		       COALESCE(muscle_group, ''), COALESCE(equipment, ''), COALESCE(icon, ''), COALESCE(image_url, '')
		FROM exercises WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	defer rows.Close()

	var out []model.Exercise
	for rows.Next() {
		var e model.Exercise
		var kind string
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &kind, &e.Description, &e.Favorite,
			&e.MuscleGroup, &e.Equipment, &e.Icon, &e.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		e.Kind = model.ExerciseKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListRoutines reads all routines owned by the given user.
func (g *PostgresGateway) ListRoutines(ctx context.Context, userID string) ([]model.Routine, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT id, user_id, name, COALESCE(assigned_day, '')
		FROM routines WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list routines: %w", err)
	}
	defer rows.Close()

	var out []model.Routine
	for rows.Next() {
		var r model.Routine
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Name, &r.AssignedDay); err != nil {
			return nil, fmt.Errorf("failed to scan routine: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertExercise upserts an exercise keyed on its client idempotency key.
func (g *PostgresGateway) InsertExercise(ctx context.Context, in model.ExerciseInsert) error {
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO exercises (client_key, user_id, name, kind, description, favorite, muscle_group, icon, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (client_key) DO NOTHING`,
		in.ClientKey, in.OwnerID, in.Name, string(in.Kind), in.Description, in.Favorite,
		in.MuscleGroup, in.Icon, in.ImageURL)
	if err != nil {
		return fmt.Errorf("failed to insert exercise: %w", err)
	}
	return nil
}

// DeleteExercise deletes an exercise by remote id. Deleting a missing row
// affects zero rows and succeeds, which gives the required idempotency.
func (g *PostgresGateway) DeleteExercise(ctx context.Context, remoteID string) error {
	_, err := g.db.ExecContext(ctx, `DELETE FROM exercises WHERE id = $1`, remoteID)
	if err != nil {
		return fmt.Errorf("failed to delete exercise: %w", err)
	}
	return nil
}

// InsertSession upserts a session header and returns its remote id. The
// conflict clause is a self-assignment purely so RETURNING yields the id of
// the existing row when a replayed header hits its idempotency key.
func (g *PostgresGateway) InsertSession(ctx context.Context, in model.SessionInsert) (string, error) {
	var id string
	err := g.db.QueryRowContext(ctx, `
		INSERT INTO workout_sessions (client_key, user_id, routine_name, duration_minutes, rest_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (client_key) DO UPDATE SET client_key = EXCLUDED.client_key
		RETURNING id`,
		in.ClientKey, in.OwnerID, in.RoutineName, in.DurationMinutes, in.RestSeconds, in.CreatedAt).
		Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}
	return id, nil
}

// InsertSet upserts a session set keyed on its client idempotency key.
func (g *PostgresGateway) InsertSet(ctx context.Context, in model.SetInsert) error {
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO session_sets (client_key, session_id, exercise_id, set_number, reps, weight_kg, completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (client_key) DO NOTHING`,
		in.ClientKey, in.SessionID, in.ExerciseID, in.SetNumber, in.Reps, in.WeightKg, in.Completed)
	if err != nil {
		return fmt.Errorf("failed to insert set: %w", err)
	}
	return nil
}

// UploadImage is unsupported without an object store.
func (g *PostgresGateway) UploadImage(ctx context.Context, key string, blob []byte) (string, error) {
	return "", ErrUploadUnsupported
}

// Close closes the database connection.
func (g *PostgresGateway) Close() error {
	return g.db.Close()
}

// Ensure PostgresGateway implements Gateway
var _ Gateway = (*PostgresGateway)(nil)
