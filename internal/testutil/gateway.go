// Package testutil provides hand-written fakes shared by package tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Allantoteles/MyPork/internal/model"
	"github.com/Allantoteles/MyPork/internal/remote"
)

// ErrNetwork simulates a transport failure.
var ErrNetwork = errors.New("testutil: network down")

// FakeGateway is an in-memory remote.Gateway with failure injection and
// call recording.
type FakeGateway struct {
	mu sync.Mutex

	Identity    *model.Identity
	OnlineState bool

	ProfileData *model.Profile
	Exercises   []model.Exercise
	Routines    []model.Routine

	FailInsertExercise bool
	FailInsertSession  bool
	FailInsertSet      bool
	FailDelete         bool
	FailUpload         bool
	FailList           bool

	InsertedExercises []model.ExerciseInsert
	InsertedSessions  []model.SessionInsert
	InsertedSets      []model.SetInsert
	DeletedIDs        []string
	UploadedKeys      []string
	ListCalls         int

	sessionIDs map[string]string
}

// NewFakeGateway returns an online fake with a signed-in test user.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Identity:    &model.Identity{ID: "user-1", Email: "test@example.com"},
		OnlineState: true,
		sessionIDs:  make(map[string]string),
	}
}

func (g *FakeGateway) Online(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.OnlineState
}

func (g *FakeGateway) SetOnline(online bool) {
	g.mu.Lock()
	g.OnlineState = online
	g.mu.Unlock()
}

// ListCallCount reads the list-call counter under the lock, for assertions
// that poll while a sync goroutine is still running.
func (g *FakeGateway) ListCallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ListCalls
}

func (g *FakeGateway) CurrentIdentity(ctx context.Context) (*model.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Identity == nil {
		return nil, nil
	}
	id := *g.Identity
	return &id, nil
}

func (g *FakeGateway) FetchProfile(ctx context.Context, userID string) (*model.Profile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailList {
		return nil, ErrNetwork
	}
	if g.ProfileData == nil {
		return nil, nil
	}
	p := *g.ProfileData
	return &p, nil
}

func (g *FakeGateway) ListExercises(ctx context.Context, userID string) ([]model.Exercise, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ListCalls++
	if g.FailList {
		return nil, ErrNetwork
	}
	out := make([]model.Exercise, len(g.Exercises))
	copy(out, g.Exercises)
	return out, nil
}

func (g *FakeGateway) ListRoutines(ctx context.Context, userID string) ([]model.Routine, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailList {
		return nil, ErrNetwork
	}
	out := make([]model.Routine, len(g.Routines))
	copy(out, g.Routines)
	return out, nil
}

// InsertExercise records the insert and reflects it in the remote exercise
// list, as a real upsert would.
func (g *FakeGateway) InsertExercise(ctx context.Context, in model.ExerciseInsert) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailInsertExercise {
		return ErrNetwork
	}
	g.InsertedExercises = append(g.InsertedExercises, in)
	imageURL := ""
	if in.ImageURL != nil {
		imageURL = *in.ImageURL
	}
	g.Exercises = append(g.Exercises, model.Exercise{
		ID:          fmt.Sprintf("remote-ex-%d", len(g.Exercises)+1),
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		Kind:        in.Kind,
		Description: in.Description,
		Favorite:    in.Favorite,
		MuscleGroup: in.MuscleGroup,
		Icon:        in.Icon,
		ImageURL:    imageURL,
	})
	return nil
}

func (g *FakeGateway) DeleteExercise(ctx context.Context, remoteID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailDelete {
		return ErrNetwork
	}
	g.DeletedIDs = append(g.DeletedIDs, remoteID)
	return nil
}

// InsertSession returns a stable id per client key, like an upsert keyed on
// the idempotency key.
func (g *FakeGateway) InsertSession(ctx context.Context, in model.SessionInsert) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailInsertSession {
		return "", ErrNetwork
	}
	g.InsertedSessions = append(g.InsertedSessions, in)
	if id, ok := g.sessionIDs[in.ClientKey]; ok {
		return id, nil
	}
	id := fmt.Sprintf("remote-sess-%d", len(g.sessionIDs)+1)
	g.sessionIDs[in.ClientKey] = id
	return id, nil
}

func (g *FakeGateway) InsertSet(ctx context.Context, in model.SetInsert) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailInsertSet {
		return ErrNetwork
	}
	g.InsertedSets = append(g.InsertedSets, in)
	return nil
}

func (g *FakeGateway) UploadImage(ctx context.Context, key string, blob []byte) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailUpload {
		return "", ErrNetwork
	}
	g.UploadedKeys = append(g.UploadedKeys, key)
	return "https://cdn.example.com/" + key, nil
}

func (g *FakeGateway) Close() error { return nil }

// Ensure FakeGateway implements Gateway
var _ remote.Gateway = (*FakeGateway)(nil)
