package staging

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Allantoteles/MyPork/internal/model"
	"github.com/Allantoteles/MyPork/pkg/uid"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStore implements Store on a local SQLite database. WAL mode keeps
// reads concurrent; the mutex serialises writers so the sync engine and the
// UI surface never race on the same tables.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and if needed creates) the staging database.
// dbPath is the path to the SQLite database file (e.g., "./data/mypork.db")
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteStore] Initialized with database: %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS pending_exercises (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_key TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		favorite INTEGER NOT NULL DEFAULT 0,
		muscle_group TEXT NOT NULL DEFAULT '',
		image BLOB,
		state INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pending_exercises_state ON pending_exercises(state);
	CREATE INDEX IF NOT EXISTS idx_pending_exercises_created ON pending_exercises(created_at);

	CREATE TABLE IF NOT EXISTS pending_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_key TEXT NOT NULL UNIQUE,
		owner_id TEXT NOT NULL,
		routine_name TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		rest_seconds INTEGER NOT NULL DEFAULT 0,
		state INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pending_sessions_state ON pending_sessions(state);
	CREATE INDEX IF NOT EXISTS idx_pending_sessions_created ON pending_sessions(created_at);
	CREATE INDEX IF NOT EXISTS idx_pending_sessions_owner ON pending_sessions(owner_id);

	CREATE TABLE IF NOT EXISTS pending_sets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_key TEXT NOT NULL UNIQUE,
		session_local_id INTEGER NOT NULL,
		session_remote_id TEXT,
		exercise_id TEXT NOT NULL,
		set_number INTEGER NOT NULL,
		reps INTEGER NOT NULL,
		weight_kg REAL NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		state INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pending_sets_state ON pending_sets(state);
	CREATE INDEX IF NOT EXISTS idx_pending_sets_local ON pending_sets(session_local_id);
	CREATE INDEX IF NOT EXISTS idx_pending_sets_remote ON pending_sets(session_remote_id);

	CREATE TABLE IF NOT EXISTS pending_deletions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target_id TEXT NOT NULL,
		deleted_at DATETIME NOT NULL,
		state INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_pending_deletions_target ON pending_deletions(target_id);
	CREATE INDEX IF NOT EXISTS idx_pending_deletions_state ON pending_deletions(state);
	CREATE INDEX IF NOT EXISTS idx_pending_deletions_deleted ON pending_deletions(deleted_at);

	CREATE TABLE IF NOT EXISTS cache_profile (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		weight_kg REAL,
		units TEXT NOT NULL DEFAULT '',
		rest_seconds INTEGER NOT NULL DEFAULT 0,
		height_cm REAL,
		gender TEXT NOT NULL DEFAULT '',
		streak_days INTEGER NOT NULL DEFAULT 0,
		refreshed_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cache_exercises (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		muscle_group TEXT NOT NULL DEFAULT '',
		equipment TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		refreshed_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cache_exercises_refreshed ON cache_exercises(refreshed_at);

	CREATE TABLE IF NOT EXISTS cache_routines (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		assigned_day TEXT NOT NULL DEFAULT '',
		refreshed_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cache_routines_owner ON cache_routines(owner_id);
	CREATE INDEX IF NOT EXISTS idx_cache_routines_refreshed ON cache_routines(refreshed_at);

	CREATE TABLE IF NOT EXISTS sync_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.Exec(query)
	return err
}

const metaLastFullSync = "last_full_sync"

// AddExercise stages a locally created exercise as pending.
func (s *SQLiteStore) AddExercise(ctx context.Context, ex model.PendingExercise) (int64, error) {
	if err := ex.Validate(); err != nil {
		return 0, err
	}
	if ex.ClientKey == "" {
		ex.ClientKey = uid.New()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_exercises (client_key, name, kind, description, favorite, muscle_group, image, state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ClientKey, ex.Name, string(ex.Kind), ex.Description, ex.Favorite, ex.MuscleGroup, ex.Image, int(model.StatePending), ex.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to add exercise: %w", err)
	}
	return res.LastInsertId()
}

// PendingExercises returns unsynced exercises in creation order.
func (s *SQLiteStore) PendingExercises(ctx context.Context) ([]model.PendingExercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_key, name, kind, description, favorite, muscle_group, image, state, created_at
		FROM pending_exercises WHERE state = ? ORDER BY created_at ASC, id ASC`,
		int(model.StatePending))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending exercises: %w", err)
	}
	defer rows.Close()

	var out []model.PendingExercise
	for rows.Next() {
		var ex model.PendingExercise
		var kind string
		if err := rows.Scan(&ex.LocalID, &ex.ClientKey, &ex.Name, &kind, &ex.Description,
			&ex.Favorite, &ex.MuscleGroup, &ex.Image, &ex.State, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending exercise: %w", err)
		}
		ex.Kind = model.ExerciseKind(kind)
		out = append(out, ex)
	}
	return out, rows.Err()
}

// MarkExerciseSynced transitions a pending exercise to synced.
func (s *SQLiteStore) MarkExerciseSynced(ctx context.Context, localID int64) error {
	return s.exec(ctx, `UPDATE pending_exercises SET state = ? WHERE id = ?`, int(model.StateSynced), localID)
}

// DeleteExercise hard-removes a never-synced local exercise.
func (s *SQLiteStore) DeleteExercise(ctx context.Context, localID int64) error {
	return s.exec(ctx, `DELETE FROM pending_exercises WHERE id = ? AND state = ?`, localID, int(model.StatePending))
}

// AddDeletion stages a delete request for a remote exercise.
func (s *SQLiteStore) AddDeletion(ctx context.Context, d model.PendingDeletion) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	if d.DeletedAt.IsZero() {
		d.DeletedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_deletions (target_id, deleted_at, state) VALUES (?, ?, ?)`,
		d.TargetID, d.DeletedAt, int(model.StatePending))
	if err != nil {
		return 0, fmt.Errorf("failed to add deletion: %w", err)
	}
	return res.LastInsertId()
}

// PendingDeletions returns unsynced deletions in request order.
func (s *SQLiteStore) PendingDeletions(ctx context.Context) ([]model.PendingDeletion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target_id, deleted_at, state FROM pending_deletions
		WHERE state = ? ORDER BY deleted_at ASC, id ASC`,
		int(model.StatePending))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending deletions: %w", err)
	}
	defer rows.Close()

	var out []model.PendingDeletion
	for rows.Next() {
		var d model.PendingDeletion
		if err := rows.Scan(&d.LocalID, &d.TargetID, &d.DeletedAt, &d.State); err != nil {
			return nil, fmt.Errorf("failed to scan pending deletion: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MarkDeletionSynced transitions a pending deletion to synced.
func (s *SQLiteStore) MarkDeletionSynced(ctx context.Context, localID int64) error {
	return s.exec(ctx, `UPDATE pending_deletions SET state = ? WHERE id = ?`, int(model.StateSynced), localID)
}

// AddSession stages a session and its sets in one transaction, so a set can
// never reference a session that does not exist.
func (s *SQLiteStore) AddSession(ctx context.Context, sess model.PendingSession, sets []model.PendingSet) (int64, error) {
	if err := sess.Validate(); err != nil {
		return 0, err
	}
	for i := range sets {
		if err := sets[i].Validate(); err != nil {
			return 0, err
		}
	}
	if sess.ClientKey == "" {
		sess.ClientKey = uid.New()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO pending_sessions (client_key, owner_id, routine_name, duration_minutes, rest_seconds, state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ClientKey, sess.OwnerID, sess.RoutineName, sess.DurationMinutes, sess.RestSeconds,
		int(model.StatePending), sess.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to add session: %w", err)
	}
	localID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, set := range sets {
		if set.ClientKey == "" {
			set.ClientKey = uid.New()
		}
		if set.CreatedAt.IsZero() {
			set.CreatedAt = sess.CreatedAt
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO pending_sets (client_key, session_local_id, exercise_id, set_number, reps, weight_kg, completed, state, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			set.ClientKey, localID, set.ExerciseID, set.SetNumber, set.Reps, set.WeightKg,
			set.Completed, int(model.StatePending), set.CreatedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to add set %d: %w", set.SetNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}
	return localID, nil
}

// PendingSessions returns unsynced sessions in creation order.
func (s *SQLiteStore) PendingSessions(ctx context.Context) ([]model.PendingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_key, owner_id, routine_name, duration_minutes, rest_seconds, state, created_at
		FROM pending_sessions WHERE state = ? ORDER BY created_at ASC, id ASC`,
		int(model.StatePending))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending sessions: %w", err)
	}
	defer rows.Close()

	var out []model.PendingSession
	for rows.Next() {
		var sess model.PendingSession
		if err := rows.Scan(&sess.LocalID, &sess.ClientKey, &sess.OwnerID, &sess.RoutineName,
			&sess.DurationMinutes, &sess.RestSeconds, &sess.State, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// PendingSetsForSession returns the unsynced sets of a local session in set order.
func (s *SQLiteStore) PendingSetsForSession(ctx context.Context, localSessionID int64) ([]model.PendingSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_key, session_local_id, COALESCE(session_remote_id, ''), exercise_id,
		       set_number, reps, weight_kg, completed, state, created_at
		FROM pending_sets WHERE session_local_id = ? AND state = ? ORDER BY set_number ASC`,
		localSessionID, int(model.StatePending))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending sets: %w", err)
	}
	defer rows.Close()

	var out []model.PendingSet
	for rows.Next() {
		var set model.PendingSet
		if err := rows.Scan(&set.LocalID, &set.ClientKey, &set.LocalSessionID, &set.RemoteSessionID,
			&set.ExerciseID, &set.SetNumber, &set.Reps, &set.WeightKg, &set.Completed,
			&set.State, &set.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending set: %w", err)
		}
		out = append(out, set)
	}
	return out, rows.Err()
}

// MarkSessionSynced transitions a pending session to synced.
func (s *SQLiteStore) MarkSessionSynced(ctx context.Context, localID int64) error {
	return s.exec(ctx, `UPDATE pending_sessions SET state = ? WHERE id = ?`, int(model.StateSynced), localID)
}

// MarkSetSynced transitions a set to synced and records its remote session id.
func (s *SQLiteStore) MarkSetSynced(ctx context.Context, localID int64, remoteSessionID string) error {
	return s.exec(ctx, `UPDATE pending_sets SET state = ?, session_remote_id = ? WHERE id = ?`,
		int(model.StateSynced), remoteSessionID, localID)
}

// PendingStats counts unsynced records across all staging tables.
func (s *SQLiteStore) PendingStats(ctx context.Context) (model.PendingStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats model.PendingStats
	counts := []struct {
		table string
		dst   *int
	}{
		{"pending_exercises", &stats.Exercises},
		{"pending_deletions", &stats.Deletions},
		{"pending_sessions", &stats.Sessions},
		{"pending_sets", &stats.Sets},
	}
	for _, c := range counts {
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE state = ?`, c.table)
		if err := s.db.QueryRowContext(ctx, query, int(model.StatePending)).Scan(c.dst); err != nil {
			return model.PendingStats{}, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	stats.Total = stats.Exercises + stats.Deletions + stats.Sessions + stats.Sets
	return stats, nil
}

// PutProfile upserts the cached profile row.
func (s *SQLiteStore) PutProfile(ctx context.Context, p model.CachedProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_profile (id, full_name, avatar_url, weight_kg, units, rest_seconds, height_cm, gender, streak_days, refreshed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			avatar_url = excluded.avatar_url,
			weight_kg = excluded.weight_kg,
			units = excluded.units,
			rest_seconds = excluded.rest_seconds,
			height_cm = excluded.height_cm,
			gender = excluded.gender,
			streak_days = excluded.streak_days,
			refreshed_at = excluded.refreshed_at`,
		p.ID, p.FullName, p.AvatarURL, nullFloat(p.WeightKg), p.Units, p.RestSeconds,
		nullFloat(p.HeightCm), p.Gender, p.StreakDays, p.RefreshedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert cached profile: %w", err)
	}
	return nil
}

// CachedProfile returns the cached profile, or nil when none exists.
func (s *SQLiteStore) CachedProfile(ctx context.Context, id string) (*model.CachedProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p model.CachedProfile
	var weight, height sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, avatar_url, weight_kg, units, rest_seconds, height_cm, gender, streak_days, refreshed_at
		FROM cache_profile WHERE id = ?`, id).
		Scan(&p.ID, &p.FullName, &p.AvatarURL, &weight, &p.Units, &p.RestSeconds,
			&height, &p.Gender, &p.StreakDays, &p.RefreshedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached profile: %w", err)
	}
	if weight.Valid {
		p.WeightKg = &weight.Float64
	}
	if height.Valid {
		p.HeightCm = &height.Float64
	}
	return &p, nil
}

// PutExercises upserts cached exercises by remote id.
func (s *SQLiteStore) PutExercises(ctx context.Context, items []model.CachedExercise) error {
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cache_exercises (id, name, muscle_group, equipment, icon, refreshed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			muscle_group = excluded.muscle_group,
			equipment = excluded.equipment,
			icon = excluded.icon,
			refreshed_at = excluded.refreshed_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, it.ID, it.Name, it.MuscleGroup, it.Equipment, it.Icon, it.RefreshedAt); err != nil {
			return fmt.Errorf("failed to upsert cached exercise %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

// CachedExercises returns all cached exercises, most recently refreshed first.
func (s *SQLiteStore) CachedExercises(ctx context.Context) ([]model.CachedExercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, muscle_group, equipment, icon, refreshed_at
		FROM cache_exercises ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached exercises: %w", err)
	}
	defer rows.Close()

	var out []model.CachedExercise
	for rows.Next() {
		var it model.CachedExercise
		if err := rows.Scan(&it.ID, &it.Name, &it.MuscleGroup, &it.Equipment, &it.Icon, &it.RefreshedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cached exercise: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// PutRoutines upserts cached routines by remote id.
func (s *SQLiteStore) PutRoutines(ctx context.Context, items []model.CachedRoutine) error {
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cache_routines (id, owner_id, name, assigned_day, refreshed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			name = excluded.name,
			assigned_day = excluded.assigned_day,
			refreshed_at = excluded.refreshed_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, it.ID, it.OwnerID, it.Name, it.AssignedDay, it.RefreshedAt); err != nil {
			return fmt.Errorf("failed to upsert cached routine %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

// CachedRoutines returns all cached routines.
func (s *SQLiteStore) CachedRoutines(ctx context.Context) ([]model.CachedRoutine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, assigned_day, refreshed_at
		FROM cache_routines ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached routines: %w", err)
	}
	defer rows.Close()

	var out []model.CachedRoutine
	for rows.Next() {
		var it model.CachedRoutine
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.Name, &it.AssignedDay, &it.RefreshedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cached routine: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// LastFullSync returns when the last full sync completed, or zero time.
func (s *SQLiteStore) LastFullSync(ctx context.Context) (time.Time, error) {
	v, err := s.GetMeta(ctx, metaLastFullSync)
	if err == ErrNotFound {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last full sync: %w", err)
	}
	return t, nil
}

// SetLastFullSync records the completion time of a full sync.
func (s *SQLiteStore) SetLastFullSync(ctx context.Context, t time.Time) error {
	return s.SetMeta(ctx, metaLastFullSync, t.UTC().Format(time.RFC3339Nano))
}

// GetMeta reads a key from sync_meta. Returns ErrNotFound for missing keys.
func (s *SQLiteStore) GetMeta(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM sync_meta WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta %q: %w", key, err)
	}
	return v, nil
}

// SetMeta writes a key to sync_meta.
func (s *SQLiteStore) SetMeta(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set meta %q: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// exec runs a single-row write and maps zero affected rows to ErrNotFound.
func (s *SQLiteStore) exec(ctx context.Context, query string, args ...interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to exec update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)
