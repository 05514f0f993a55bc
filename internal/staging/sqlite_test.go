package staging

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allantoteles/MyPork/internal/model"
	"github.com/Allantoteles/MyPork/pkg/uid"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "staging.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddExerciseMintsClientKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.AddExercise(ctx, model.PendingExercise{Name: "Bench Press", Kind: model.KindStrength})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	pend, err := store.PendingExercises(ctx)
	require.NoError(t, err)
	require.Len(t, pend, 1)
	assert.Equal(t, "Bench Press", pend[0].Name)
	assert.True(t, uid.IsValid(pend[0].ClientKey), "client key should be minted")
	assert.Equal(t, model.StatePending, pend[0].State)
	assert.False(t, pend[0].CreatedAt.IsZero())
}

func TestAddExerciseKeepsProvidedClientKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key := uid.New()
	_, err := store.AddExercise(ctx, model.PendingExercise{Name: "Squat", Kind: model.KindStrength, ClientKey: key})
	require.NoError(t, err)

	pend, err := store.PendingExercises(ctx)
	require.NoError(t, err)
	require.Len(t, pend, 1)
	assert.Equal(t, key, pend[0].ClientKey)
}

func TestAddExerciseRejectsInvalid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddExercise(ctx, model.PendingExercise{Kind: model.KindStrength})
	assert.ErrorIs(t, err, model.ErrEmptyName)

	_, err = store.AddExercise(ctx, model.PendingExercise{Name: "Squat", Kind: "bogus"})
	assert.ErrorIs(t, err, model.ErrInvalidKind)
}

func TestPendingExercisesOldestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := store.AddExercise(ctx, model.PendingExercise{Name: "Second", Kind: model.KindStrength, CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	_, err = store.AddExercise(ctx, model.PendingExercise{Name: "First", Kind: model.KindStrength, CreatedAt: base})
	require.NoError(t, err)

	pend, err := store.PendingExercises(ctx)
	require.NoError(t, err)
	require.Len(t, pend, 2)
	assert.Equal(t, "First", pend[0].Name)
	assert.Equal(t, "Second", pend[1].Name)
}

func TestMarkExerciseSynced(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.AddExercise(ctx, model.PendingExercise{Name: "Bench Press", Kind: model.KindStrength})
	require.NoError(t, err)

	require.NoError(t, store.MarkExerciseSynced(ctx, id))

	pend, err := store.PendingExercises(ctx)
	require.NoError(t, err)
	assert.Empty(t, pend)

	assert.ErrorIs(t, store.MarkExerciseSynced(ctx, 9999), ErrNotFound)
}

func TestDeleteExerciseOnlyWhilePending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.AddExercise(ctx, model.PendingExercise{Name: "Bench Press", Kind: model.KindStrength})
	require.NoError(t, err)

	require.NoError(t, store.DeleteExercise(ctx, id))
	pend, err := store.PendingExercises(ctx)
	require.NoError(t, err)
	assert.Empty(t, pend)

	// A synced record is retained and cannot be cancelled.
	id, err = store.AddExercise(ctx, model.PendingExercise{Name: "Squat", Kind: model.KindStrength})
	require.NoError(t, err)
	require.NoError(t, store.MarkExerciseSynced(ctx, id))
	assert.ErrorIs(t, store.DeleteExercise(ctx, id), ErrNotFound)
}

func TestDeletionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddDeletion(ctx, model.PendingDeletion{})
	assert.ErrorIs(t, err, model.ErrMissingTarget)

	id, err := store.AddDeletion(ctx, model.PendingDeletion{TargetID: "remote-1"})
	require.NoError(t, err)

	pend, err := store.PendingDeletions(ctx)
	require.NoError(t, err)
	require.Len(t, pend, 1)
	assert.Equal(t, "remote-1", pend[0].TargetID)

	require.NoError(t, store.MarkDeletionSynced(ctx, id))
	pend, err = store.PendingDeletions(ctx)
	require.NoError(t, err)
	assert.Empty(t, pend)
}

func TestAddSessionWithSets(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	localID, err := store.AddSession(ctx, model.PendingSession{
		OwnerID:         "user-1",
		RoutineName:     "Push Day",
		DurationMinutes: 45,
		RestSeconds:     90,
	}, []model.PendingSet{
		{ExerciseID: "ex-1", SetNumber: 1, Reps: 8, WeightKg: 60},
		{ExerciseID: "ex-1", SetNumber: 2, Reps: 6, WeightKg: 62.5},
	})
	require.NoError(t, err)

	sessions, err := store.PendingSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Push Day", sessions[0].RoutineName)
	assert.NotEmpty(t, sessions[0].ClientKey)

	sets, err := store.PendingSetsForSession(ctx, localID)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, 1, sets[0].SetNumber)
	assert.Equal(t, 2, sets[1].SetNumber)
	assert.Equal(t, 62.5, sets[1].WeightKg)
	assert.NotEqual(t, sets[0].ClientKey, sets[1].ClientKey)
}

func TestAddSessionRejectsInvalidSet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddSession(ctx, model.PendingSession{OwnerID: "user-1"}, []model.PendingSet{
		{ExerciseID: "ex-1", SetNumber: 0, Reps: 8},
	})
	assert.ErrorIs(t, err, model.ErrInvalidSetNum)

	// Nothing committed: the session must not exist either.
	sessions, err := store.PendingSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestMarkSetAndSessionSynced(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	localID, err := store.AddSession(ctx, model.PendingSession{OwnerID: "user-1", RoutineName: "Legs"},
		[]model.PendingSet{{ExerciseID: "ex-1", SetNumber: 1, Reps: 10, WeightKg: 80}})
	require.NoError(t, err)

	sets, err := store.PendingSetsForSession(ctx, localID)
	require.NoError(t, err)
	require.Len(t, sets, 1)

	require.NoError(t, store.MarkSetSynced(ctx, sets[0].LocalID, "remote-sess-1"))
	require.NoError(t, store.MarkSessionSynced(ctx, localID))

	remaining, err := store.PendingSetsForSession(ctx, localID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	sessions, err := store.PendingSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestPendingStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddExercise(ctx, model.PendingExercise{Name: "Bench Press", Kind: model.KindStrength})
	require.NoError(t, err)
	_, err = store.AddDeletion(ctx, model.PendingDeletion{TargetID: "remote-1"})
	require.NoError(t, err)
	_, err = store.AddSession(ctx, model.PendingSession{OwnerID: "user-1"}, []model.PendingSet{
		{ExerciseID: "ex-1", SetNumber: 1, Reps: 8, WeightKg: 60},
		{ExerciseID: "ex-1", SetNumber: 2, Reps: 8, WeightKg: 60},
	})
	require.NoError(t, err)

	stats, err := store.PendingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Exercises)
	assert.Equal(t, 1, stats.Deletions)
	assert.Equal(t, 1, stats.Sessions)
	assert.Equal(t, 2, stats.Sets)
	assert.Equal(t, 5, stats.Total)
}

func TestCachedExercisesUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.PutExercises(ctx, []model.CachedExercise{
		{ID: "ex-1", Name: "Bench Press", MuscleGroup: "chest", RefreshedAt: now},
	}))
	require.NoError(t, store.PutExercises(ctx, []model.CachedExercise{
		{ID: "ex-1", Name: "Incline Bench Press", MuscleGroup: "chest", RefreshedAt: now.Add(time.Minute)},
	}))

	cached, err := store.CachedExercises(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "Incline Bench Press", cached[0].Name)
}

func TestCachedProfileRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.CachedProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	weight := 82.5
	require.NoError(t, store.PutProfile(ctx, model.CachedProfile{
		Profile: model.Profile{
			ID:       "user-1",
			FullName: "Test User",
			WeightKg: &weight,
			Units:    "kg",
		},
		RefreshedAt: time.Now().UTC(),
	}))

	got, err = store.CachedProfile(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Test User", got.FullName)
	require.NotNil(t, got.WeightKg)
	assert.Equal(t, 82.5, *got.WeightKg)
}

func TestCachedRoutines(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.PutRoutines(ctx, []model.CachedRoutine{
		{ID: "r-1", OwnerID: "user-1", Name: "Push Day", AssignedDay: "monday", RefreshedAt: now},
		{ID: "r-2", OwnerID: "user-1", Name: "Pull Day", AssignedDay: "wednesday", RefreshedAt: now},
	}))

	cached, err := store.CachedRoutines(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestLastFullSync(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	last, err := store.LastFullSync(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	now := time.Now()
	require.NoError(t, store.SetLastFullSync(ctx, now))

	last, err = store.LastFullSync(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, now, last, time.Second)
}

func TestMeta(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetMeta(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SetMeta(ctx, "k", "v1"))
	require.NoError(t, store.SetMeta(ctx, "k", "v2"))

	v, err := store.GetMeta(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

func TestPendingSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staging.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = store.AddExercise(ctx, model.PendingExercise{Name: "Bench Press", Kind: model.KindStrength})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	pend, err := reopened.PendingExercises(ctx)
	require.NoError(t, err)
	require.Len(t, pend, 1)
	assert.Equal(t, "Bench Press", pend[0].Name)
}
