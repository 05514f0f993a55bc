// Package prefs holds the process-wide user preferences as an immutable
// snapshot with a single mutating owner. Readers take copies; interested
// components subscribe for change notifications instead of reaching into a
// global.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Allantoteles/MyPork/internal/model"
	"github.com/Allantoteles/MyPork/internal/staging"
)

const (
	metaUnits       = "prefs.units"
	metaRestSeconds = "prefs.rest_seconds"

	// DefaultRestSeconds is the rest timer default between sets.
	DefaultRestSeconds = 60
)

// ErrInvalidUnits is returned for unit strings other than "kg" and "lbs".
var ErrInvalidUnits = errors.New("prefs: units must be \"kg\" or \"lbs\"")

// Preferences is an immutable snapshot of the user's settings.
type Preferences struct {
	Units       string `json:"units"`
	RestSeconds int    `json:"rest_seconds"`
}

// Imperial reports whether weights display in pounds.
func (p Preferences) Imperial() bool {
	return strings.Contains(p.Units, "lb")
}

// DisplayWeight converts a canonical kilogram value to the preferred unit.
func (p Preferences) DisplayWeight(kg float64) float64 {
	return model.ToDisplayWeight(kg, p.Imperial())
}

// CanonicalWeight converts a user-entered weight back to kilograms.
func (p Preferences) CanonicalWeight(display float64) float64 {
	return model.ToKg(display, p.Imperial())
}

// Subscriber receives the new snapshot after every preference change.
type Subscriber func(Preferences)

// Manager owns the current preferences. It is the only writer; changes are
// persisted to the staging store before subscribers are notified.
type Manager struct {
	store staging.Store

	mu      sync.RWMutex
	current Preferences
	subs    []Subscriber
}

// NewManager loads persisted preferences, falling back to defaults.
func NewManager(ctx context.Context, store staging.Store) (*Manager, error) {
	m := &Manager{
		store:   store,
		current: Preferences{Units: "kg", RestSeconds: DefaultRestSeconds},
	}

	units, err := store.GetMeta(ctx, metaUnits)
	switch {
	case err == nil:
		m.current.Units = units
	case errors.Is(err, staging.ErrNotFound):
	default:
		return nil, fmt.Errorf("load units: %w", err)
	}

	rest, err := store.GetMeta(ctx, metaRestSeconds)
	switch {
	case err == nil:
		if n, convErr := strconv.Atoi(rest); convErr == nil && n > 0 {
			m.current.RestSeconds = n
		}
	case errors.Is(err, staging.ErrNotFound):
	default:
		return nil, fmt.Errorf("load rest seconds: %w", err)
	}

	return m, nil
}

// Current returns the active snapshot.
func (m *Manager) Current() Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Subscribe registers a callback invoked after every successful update.
func (m *Manager) Subscribe(fn Subscriber) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

// Update validates, persists, and publishes a new snapshot.
func (m *Manager) Update(ctx context.Context, p Preferences) error {
	if p.Units != "kg" && p.Units != "lbs" {
		return ErrInvalidUnits
	}
	if p.RestSeconds <= 0 {
		p.RestSeconds = DefaultRestSeconds
	}

	if err := m.store.SetMeta(ctx, metaUnits, p.Units); err != nil {
		return fmt.Errorf("persist units: %w", err)
	}
	if err := m.store.SetMeta(ctx, metaRestSeconds, strconv.Itoa(p.RestSeconds)); err != nil {
		return fmt.Errorf("persist rest seconds: %w", err)
	}

	m.mu.Lock()
	m.current = p
	subs := make([]Subscriber, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
	return nil
}
