package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allantoteles/MyPork/internal/model"
	"github.com/Allantoteles/MyPork/internal/staging"
	"github.com/Allantoteles/MyPork/internal/testutil"
)

func newTestStore(t *testing.T) *staging.SQLiteStore {
	t.Helper()
	store, err := staging.NewSQLiteStore(filepath.Join(t.TempDir(), "staging.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedExerciseCache(t *testing.T, store staging.Store, refreshedAt time.Time) {
	t.Helper()
	require.NoError(t, store.PutExercises(context.Background(), []model.CachedExercise{
		{ID: "ex-1", Name: "Bench Press", MuscleGroup: "chest", Icon: "fitness_center", RefreshedAt: refreshedAt},
	}))
}

func TestExercisesFreshCacheSkipsRemote(t *testing.T) {
	store := newTestStore(t)
	gw := testutil.NewFakeGateway()
	r := NewResolver(store, gw)

	seedExerciseCache(t, store, time.Now())

	items, fromCache, err := r.Exercises(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	assert.True(t, fromCache)
	require.Len(t, items, 1)
	assert.Equal(t, "Bench Press", items[0].Name)
	assert.Equal(t, 0, gw.ListCalls, "fresh cache must not hit the network")
}

func TestExercisesStaleCacheRefetches(t *testing.T) {
	store := newTestStore(t)
	gw := testutil.NewFakeGateway()
	gw.Exercises = []model.Exercise{{ID: "ex-2", Name: "Deadlift", MuscleGroup: "back"}}
	r := NewResolver(store, gw)

	seedExerciseCache(t, store, time.Now())
	// Pretend ten minutes pass.
	r.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	items, fromCache, err := r.Exercises(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 1, gw.ListCalls)
	require.Len(t, items, 1)
	assert.Equal(t, "Deadlift", items[0].Name)

	// The fetch result replaced the stale cache entry set.
	cached, err := store.CachedExercises(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(cached))
	for _, c := range cached {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Deadlift")
}

func TestExercisesOfflineServesStaleCache(t *testing.T) {
	store := newTestStore(t)
	gw := testutil.NewFakeGateway()
	gw.SetOnline(false)
	r := NewResolver(store, gw)

	seedExerciseCache(t, store, time.Now().Add(-time.Hour))

	items, fromCache, err := r.Exercises(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	assert.True(t, fromCache)
	require.Len(t, items, 1)
	assert.Equal(t, 0, gw.ListCalls)
}

func TestExercisesFetchFailureFallsBack(t *testing.T) {
	store := newTestStore(t)
	gw := testutil.NewFakeGateway()
	gw.FailList = true
	r := NewResolver(store, gw)

	seedExerciseCache(t, store, time.Now().Add(-time.Hour))

	items, fromCache, err := r.Exercises(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	assert.True(t, fromCache)
	require.Len(t, items, 1)
}

func TestExercisesFetchFailureNoCache(t *testing.T) {
	store := newTestStore(t)
	gw := testutil.NewFakeGateway()
	gw.FailList = true
	r := NewResolver(store, gw)

	_, _, err := r.Exercises(context.Background(), "user-1", Options{})
	assert.ErrorIs(t, err, testutil.ErrNetwork)
}

func TestExercisesPendingListedFirst(t *testing.T) {
	store := newTestStore(t)
	gw := testutil.NewFakeGateway()
	r := NewResolver(store, gw)

	seedExerciseCache(t, store, time.Now())
	_, err := store.AddExercise(context.Background(), model.PendingExercise{Name: "Kettlebell Swing", Kind: model.KindCardio})
	require.NoError(t, err)

	items, _, err := r.Exercises(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Kettlebell Swing", items[0].Name)
	assert.True(t, items[0].Pending)
	assert.Equal(t, "directions_run", items[0].Icon)
	assert.False(t, items[1].Pending)
}

func TestExercisesForceRefresh(t *testing.T) {
	store := newTestStore(t)
	gw := testutil.NewFakeGateway()
	gw.Exercises = []model.Exercise{{ID: "ex-1", Name: "Bench Press"}}
	r := NewResolver(store, gw)

	seedExerciseCache(t, store, time.Now())

	_, fromCache, err := r.Exercises(context.Background(), "user-1", Options{ForceRefresh: true})
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 1, gw.ListCalls)
}

func TestExercisesNoIdentityServesCacheOnly(t *testing.T) {
	store := newTestStore(t)
	gw := testutil.NewFakeGateway()
	r := NewResolver(store, gw)

	seedExerciseCache(t, store, time.Now().Add(-time.Hour))

	items, fromCache, err := r.Exercises(context.Background(), "", Options{})
	require.NoError(t, err)
	assert.True(t, fromCache)
	require.Len(t, items, 1)
	assert.Equal(t, 0, gw.ListCalls)
}

func TestRoutinesCacheFirst(t *testing.T) {
	store := newTestStore(t)
	gw := testutil.NewFakeGateway()
	gw.Routines = []model.Routine{{ID: "r-1", OwnerID: "user-1", Name: "Push Day", AssignedDay: "monday"}}
	r := NewResolver(store, gw)

	// Empty cache forces a fetch, which then populates the cache.
	items, fromCache, err := r.Routines(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	assert.False(t, fromCache)
	require.Len(t, items, 1)

	cached, err := store.CachedRoutines(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// Second read is served from the now-fresh cache.
	items, fromCache, err = r.Routines(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	assert.True(t, fromCache)
	require.Len(t, items, 1)
	assert.Equal(t, "Push Day", items[0].Name)
}

func TestProfileOfflineNoCache(t *testing.T) {
	store := newTestStore(t)
	gw := testutil.NewFakeGateway()
	gw.SetOnline(false)
	r := NewResolver(store, gw)

	profile, fromCache, err := r.Profile(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Nil(t, profile)
}

func TestProfileFetchPopulatesCache(t *testing.T) {
	store := newTestStore(t)
	gw := testutil.NewFakeGateway()
	weight := 82.5
	gw.ProfileData = &model.Profile{ID: "user-1", FullName: "Test User", WeightKg: &weight}
	r := NewResolver(store, gw)

	profile, fromCache, err := r.Profile(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	assert.False(t, fromCache)
	require.NotNil(t, profile)
	assert.Equal(t, "Test User", profile.FullName)

	cached, err := store.CachedProfile(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "Test User", cached.FullName)
}
