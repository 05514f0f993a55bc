package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allantoteles/MyPork/internal/cache"
	"github.com/Allantoteles/MyPork/internal/model"
	"github.com/Allantoteles/MyPork/internal/prefs"
	"github.com/Allantoteles/MyPork/internal/staging"
	"github.com/Allantoteles/MyPork/internal/testutil"
)

func newDataFixture(t *testing.T) (*DataHandler, *staging.SQLiteStore, *testutil.FakeGateway, http.Handler) {
	t.Helper()
	store := newHandlerStore(t)
	gw := testutil.NewFakeGateway()
	manager, err := prefs.NewManager(context.Background(), store)
	require.NoError(t, err)

	h := NewDataHandler(cache.NewResolver(store, gw), gw, store, manager, 5*time.Minute)

	r := chi.NewRouter()
	r.Get("/exercises", h.ListExercises)
	r.Post("/exercises", h.CreateExercise)
	r.Delete("/exercises/{id}", h.DeleteExercise)
	r.Delete("/exercises/pending/{localID}", h.CancelPendingExercise)
	r.Get("/routines", h.ListRoutines)
	r.Get("/profile", h.GetProfile)
	r.Post("/sessions", h.CreateSession)
	return h, store, gw, r
}

func TestCreateExerciseStagesPending(t *testing.T) {
	_, store, _, r := newDataFixture(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/exercises",
		strings.NewReader(`{"name":"Bench Press","kind":"strength","muscle_group":"chest"}`)))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"local_id":1`)

	pend, err := store.PendingExercises(context.Background())
	require.NoError(t, err)
	require.Len(t, pend, 1)
	assert.Equal(t, "Bench Press", pend[0].Name)
}

func TestCreateExerciseRejectsInvalid(t *testing.T) {
	_, _, _, r := newDataFixture(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/exercises",
		strings.NewReader(`{"name":"","kind":"strength"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/exercises",
		strings.NewReader(`{"name":"Yoga","kind":"flexibility"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListExercisesIncludesPending(t *testing.T) {
	_, store, gw, r := newDataFixture(t)
	gw.Exercises = []model.Exercise{{ID: "ex-1", Name: "Deadlift"}}

	_, err := store.AddExercise(context.Background(), model.PendingExercise{Name: "Bench Press", Kind: model.KindStrength})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exercises", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Bench Press")
	assert.Contains(t, body, "Deadlift")
	assert.Contains(t, body, `"pending":true`)
}

func TestDeleteExerciseQueuesDeletion(t *testing.T) {
	_, store, _, r := newDataFixture(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/exercises/remote-1", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)

	pend, err := store.PendingDeletions(context.Background())
	require.NoError(t, err)
	require.Len(t, pend, 1)
	assert.Equal(t, "remote-1", pend[0].TargetID)
}

func TestCancelPendingExercise(t *testing.T) {
	_, store, _, r := newDataFixture(t)

	_, err := store.AddExercise(context.Background(), model.PendingExercise{Name: "Bench Press", Kind: model.KindStrength})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/exercises/pending/1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	pend, err := store.PendingExercises(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pend)

	// Cancelling again is a 404: the record is gone.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/exercises/pending/1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSessionConvertsWeight(t *testing.T) {
	h, store, _, r := newDataFixture(t)

	// Switch the user to pounds; the posted weights arrive in lbs.
	require.NoError(t, h.prefs.Update(context.Background(), prefs.Preferences{Units: "lbs", RestSeconds: 90}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{
		"routine_name": "Push Day",
		"duration_minutes": 45,
		"rest_seconds": 90,
		"sets": [{"exercise_id": "ex-1", "set_number": 1, "reps": 8, "weight": 220.5, "completed": true}]
	}`)))

	require.Equal(t, http.StatusCreated, w.Code)

	sessions, err := store.PendingSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "user-1", sessions[0].OwnerID, "owner falls back to the gateway identity")

	sets, err := store.PendingSetsForSession(context.Background(), sessions[0].LocalID)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.InDelta(t, 100.0, sets[0].WeightKg, 0.02, "weight stored canonically in kg")
}

func TestGetProfileServesFetchedAndCached(t *testing.T) {
	_, _, gw, r := newDataFixture(t)
	gw.ProfileData = &model.Profile{ID: "user-1", FullName: "Test User"}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Test User")
	assert.Contains(t, w.Body.String(), `"from_cache":false`)

	// Offline, the cached copy from the first read is served.
	gw.SetOnline(false)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Test User")
	assert.Contains(t, w.Body.String(), `"from_cache":true`)
}
