package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Allantoteles/MyPork/internal/remote"
	"github.com/Allantoteles/MyPork/internal/staging"
)

// SchedulerConfig holds the trigger policy intervals.
type SchedulerConfig struct {
	// StartupMaxAge is how old the last full sync may be before startup
	// triggers a new one. Default: 4 hours.
	StartupMaxAge time.Duration

	// SyncInterval is the periodic full-sync cadence. Default: 30 minutes.
	SyncInterval time.Duration

	// ProbeInterval is how often connectivity is polled to detect the
	// offline→online edge. Default: 30 seconds.
	ProbeInterval time.Duration

	// RunTimeout bounds a single sync run. Default: 5 minutes.
	RunTimeout time.Duration
}

// DefaultSchedulerConfig returns the default trigger policy.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		StartupMaxAge: 4 * time.Hour,
		SyncInterval:  30 * time.Minute,
		ProbeInterval: 30 * time.Second,
		RunTimeout:    5 * time.Minute,
	}
}

// Scheduler decides when the sync engine runs: at startup (guarded by the
// age of the last full sync), on reconnect, on app foreground, on a periodic
// timer, and on explicit user action. Overlap protection lives in the
// engine's state enum; a trigger firing mid-sync is simply dropped.
type Scheduler struct {
	engine *Engine
	store  staging.Store
	gw     remote.Gateway
	config SchedulerConfig

	ticker   *time.Ticker
	probe    *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time

	mu          sync.Mutex
	initialDone bool
	wasOnline   bool
}

// NewScheduler creates a sync scheduler.
func NewScheduler(engine *Engine, store staging.Store, gw remote.Gateway, config SchedulerConfig) *Scheduler {
	if config.StartupMaxAge == 0 {
		config.StartupMaxAge = 4 * time.Hour
	}
	if config.SyncInterval == 0 {
		config.SyncInterval = 30 * time.Minute
	}
	if config.ProbeInterval == 0 {
		config.ProbeInterval = 30 * time.Second
	}
	if config.RunTimeout == 0 {
		config.RunTimeout = 5 * time.Minute
	}
	return &Scheduler{
		engine: engine,
		store:  store,
		gw:     gw,
		config: config,
		stopCh: make(chan struct{}),
		now:    time.Now,
	}
}

// Start applies the startup trigger and begins the periodic timer and the
// connectivity watcher.
func (s *Scheduler) Start() {
	s.ticker = time.NewTicker(s.config.SyncInterval)
	s.probe = time.NewTicker(s.config.ProbeInterval)

	log.Printf("[Scheduler] Started - interval: %v, startup max age: %v",
		s.config.SyncInterval, s.config.StartupMaxAge)

	go func() {
		if s.startupDue() {
			s.runSync("startup")
		} else {
			log.Printf("[Scheduler] last full sync is recent, skipping startup sync")
			// The persisted baseline counts as the initial sync for the
			// foreground and periodic gates.
			s.markInitialDone()
		}
	}()

	s.mu.Lock()
	s.wasOnline = s.gw.Online(context.Background())
	s.mu.Unlock()

	go s.run()
}

// startupDue reports whether the startup trigger should fire: no full sync
// recorded yet, or the recorded one is older than StartupMaxAge.
func (s *Scheduler) startupDue() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	last, err := s.store.LastFullSync(ctx)
	if err != nil {
		log.Printf("[Scheduler] failed to read last full sync: %v", err)
		return true
	}
	return last.IsZero() || s.now().Sub(last) >= s.config.StartupMaxAge
}

func (s *Scheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			if s.initialSyncDone() && s.gw.Online(context.Background()) {
				s.runSync("periodic")
			}
		case <-s.probe.C:
			s.checkConnectivity()
		case <-s.stopCh:
			log.Printf("[Scheduler] Stopped")
			return
		}
	}
}

// checkConnectivity fires the reconnect trigger on the offline→online edge.
// Pending writes are most urgent right after regaining the network, so the
// reconnect sync runs unconditionally.
func (s *Scheduler) checkConnectivity() {
	online := s.gw.Online(context.Background())

	s.mu.Lock()
	reconnected := online && !s.wasOnline
	s.wasOnline = online
	s.mu.Unlock()

	if reconnected {
		s.runSync("reconnect")
	}
}

// OnReconnect applies the network-reconnect trigger: a full sync,
// unconditionally.
func (s *Scheduler) OnReconnect() {
	go s.runSync("reconnect")
}

// OnForeground applies the app-foreground trigger. It only fires once the
// initial sync has completed this process lifetime and the device is
// online; otherwise startup and foreground would stampede together.
func (s *Scheduler) OnForeground() {
	if !s.initialSyncDone() {
		return
	}
	if !s.gw.Online(context.Background()) {
		return
	}
	go s.runSync("foreground")
}

// RunNow applies the manual trigger and surfaces the result to the caller.
func (s *Scheduler) RunNow(ctx context.Context) error {
	err := s.engine.SyncAll(ctx)
	if err == nil {
		s.markInitialDone()
	}
	return err
}

// Stop halts the timers and the connectivity watcher.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
		if s.probe != nil {
			s.probe.Stop()
		}
		close(s.stopCh)
	})
}

func (s *Scheduler) initialSyncDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialDone
}

func (s *Scheduler) markInitialDone() {
	s.mu.Lock()
	s.initialDone = true
	s.mu.Unlock()
}

func (s *Scheduler) runSync(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.RunTimeout)
	defer cancel()

	log.Printf("[Scheduler] running sync (trigger: %s)", reason)
	err := s.engine.SyncAll(ctx)
	switch {
	case errors.Is(err, ErrSyncInProgress):
		log.Printf("[Scheduler] sync already running, %s trigger dropped", reason)
	case err != nil:
		log.Printf("[Scheduler] sync failed (trigger: %s): %v", reason, err)
	default:
		s.markInitialDone()
		log.Printf("[Scheduler] sync complete (trigger: %s)", reason)
	}
}
