package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/Allantoteles/MyPork/internal/model"
)

// RESTConfig holds connection settings for the hosted REST backend.
type RESTConfig struct {
	// BaseURL is the project root, e.g. "https://abc.supabase.co".
	BaseURL string
	// APIKey is sent as the apikey header on every request.
	APIKey string
	// AccessToken is the bearer token of the signed-in user. Empty means
	// no session, and CurrentIdentity resolves to none.
	AccessToken string
	// StorageBucket receives exercise image uploads.
	StorageBucket string
	// Timeout bounds each remote call.
	Timeout time.Duration
}

// RESTGateway talks to a Supabase-style stack: PostgREST for tables, GoTrue
// for identity, and the storage API for binary uploads.
type RESTGateway struct {
	cfg    RESTConfig
	client *http.Client
	probe  *http.Client
}

// NewRESTGateway creates a gateway against the hosted REST backend.
func NewRESTGateway(cfg RESTConfig) *RESTGateway {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.StorageBucket == "" {
		cfg.StorageBucket = "exercise-images"
	}
	return &RESTGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		// Connectivity probes should fail fast, not wait out the full timeout.
		probe: &http.Client{Timeout: 3 * time.Second},
	}
}

// Online reports whether the remote service answers at all. Any HTTP
// response counts; only transport failures mean offline.
func (g *RESTGateway) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"/auth/v1/health", nil)
	if err != nil {
		return false
	}
	req.Header.Set("apikey", g.cfg.APIKey)
	resp, err := g.probe.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// CurrentIdentity resolves the signed-in user via the auth endpoint.
func (g *RESTGateway) CurrentIdentity(ctx context.Context) (*model.Identity, error) {
	if g.cfg.AccessToken == "" {
		return nil, nil
	}

	resp, err := g.do(ctx, http.MethodGet, "/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, g.reject(resp, "/auth/v1/user")
	}

	var id model.Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("failed to decode identity: %w", err)
	}
	if id.ID == "" {
		return nil, nil
	}
	return &id, nil
}

// FetchProfile reads the profile row for the given user.
func (g *RESTGateway) FetchProfile(ctx context.Context, userID string) (*model.Profile, error) {
	path := "/rest/v1/profiles?select=*&id=eq." + url.QueryEscape(userID)
	var rows []model.Profile
	if err := g.getJSON(ctx, path, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ListExercises reads all exercises owned by the given user.
func (g *RESTGateway) ListExercises(ctx context.Context, userID string) ([]model.Exercise, error) {
	path := "/rest/v1/exercises?select=*&user_id=eq." + url.QueryEscape(userID)
	var rows []model.Exercise
	if err := g.getJSON(ctx, path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListRoutines reads all routines owned by the given user.
func (g *RESTGateway) ListRoutines(ctx context.Context, userID string) ([]model.Routine, error) {
	path := "/rest/v1/routines?select=*&user_id=eq." + url.QueryEscape(userID)
	var rows []model.Routine
	if err := g.getJSON(ctx, path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertExercise upserts an exercise keyed on its client idempotency key.
func (g *RESTGateway) InsertExercise(ctx context.Context, in model.ExerciseInsert) error {
	return g.upsert(ctx, "/rest/v1/exercises?on_conflict=client_key", in)
}

// DeleteExercise deletes an exercise by remote id. PostgREST returns 204
// whether or not the row existed, which gives the required idempotency.
func (g *RESTGateway) DeleteExercise(ctx context.Context, remoteID string) error {
	path := "/rest/v1/exercises?id=eq." + url.QueryEscape(remoteID)
	resp, err := g.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return g.reject(resp, path)
	}
	return nil
}

// InsertSession upserts a session header and returns its remote id. The
// merge-duplicates resolution makes a replayed header return the id of the
// row created by the interrupted attempt instead of duplicating it.
func (g *RESTGateway) InsertSession(ctx context.Context, in model.SessionInsert) (string, error) {
	path := "/rest/v1/workout_sessions?on_conflict=client_key&select=id"
	body, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	req, err := g.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation,resolution=merge-duplicates")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", g.reject(resp, path)
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return "", fmt.Errorf("failed to decode session id: %w", err)
	}
	if len(rows) == 0 || rows[0].ID == "" {
		return "", fmt.Errorf("insert session: no id returned: %w", ErrRejected)
	}
	return rows[0].ID, nil
}

// InsertSet upserts a session set keyed on its client idempotency key.
func (g *RESTGateway) InsertSet(ctx context.Context, in model.SetInsert) error {
	return g.upsert(ctx, "/rest/v1/session_sets?on_conflict=client_key", in)
}

// UploadImage stores an image blob and returns its public URL.
func (g *RESTGateway) UploadImage(ctx context.Context, key string, blob []byte) (string, error) {
	path := fmt.Sprintf("/storage/v1/object/%s/%s", g.cfg.StorageBucket, key)
	req, err := g.newRequest(ctx, http.MethodPost, path, bytes.NewReader(blob))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("x-upsert", "true")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", g.reject(resp, path)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", g.cfg.BaseURL, g.cfg.StorageBucket, key), nil
}

// Close is a no-op; the HTTP client holds no persistent resources.
func (g *RESTGateway) Close() error {
	return nil
}

func (g *RESTGateway) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", g.cfg.APIKey)
	if g.cfg.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.AccessToken)
	}
	return req, nil
}

func (g *RESTGateway) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := g.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (g *RESTGateway) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := g.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return g.reject(resp, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func (g *RESTGateway) upsert(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	req, err := g.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=ignore-duplicates")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return g.reject(resp, path)
	}
	return nil
}

func (g *RESTGateway) reject(resp *http.Response, path string) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	log.Printf("[RESTGateway] %s rejected: status=%d body=%s", path, resp.StatusCode, snippet)
	return fmt.Errorf("%s: status %d: %w", path, resp.StatusCode, ErrRejected)
}

// Ensure RESTGateway implements Gateway
var _ Gateway = (*RESTGateway)(nil)
