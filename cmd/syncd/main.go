package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Allantoteles/MyPork/internal/cache"
	"github.com/Allantoteles/MyPork/internal/config"
	"github.com/Allantoteles/MyPork/internal/handler"
	"github.com/Allantoteles/MyPork/internal/prefs"
	"github.com/Allantoteles/MyPork/internal/remote"
	"github.com/Allantoteles/MyPork/internal/router"
	"github.com/Allantoteles/MyPork/internal/service"
	"github.com/Allantoteles/MyPork/internal/staging"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting MyPork sync daemon...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize the local staging store
	store, err := staging.NewSQLiteStore(cfg.Staging.Path)
	if err != nil {
		log.Fatalf("Failed to initialize staging store: %v", err)
	}
	defer store.Close()
	log.Printf("Staging store initialized at %s", cfg.Staging.Path)

	// Initialize the remote gateway based on config
	var gw remote.Gateway
	switch cfg.Remote.Backend {
	case "postgres", "postgresql":
		pgGateway, err := remote.NewPostgresGateway(remote.PostgresConfig{
			DSN:       cfg.Remote.PostgresDSN(),
			UserID:    cfg.Remote.UserID,
			UserEmail: cfg.Remote.UserEmail,
		})
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL gateway: %v", err)
		}
		gw = pgGateway
		log.Println("PostgreSQL remote gateway initialized")
	default: // rest
		gw = remote.NewRESTGateway(remote.RESTConfig{
			BaseURL:       cfg.Remote.BaseURL,
			APIKey:        cfg.Remote.APIKey,
			AccessToken:   cfg.Remote.AccessToken,
			StorageBucket: cfg.Remote.StorageBucket,
			Timeout:       cfg.Remote.Timeout,
		})
		log.Println("REST remote gateway initialized")
	}
	defer gw.Close()

	// Load user preferences
	prefsManager, err := prefs.NewManager(context.Background(), store)
	if err != nil {
		log.Fatalf("Failed to load preferences: %v", err)
	}

	// Initialize sync engine and scheduler
	engine := service.NewEngine(store, gw)
	scheduler := service.NewScheduler(engine, store, gw, service.SchedulerConfig{
		StartupMaxAge: cfg.Sync.StartupMaxAge,
		SyncInterval:  cfg.Sync.Interval,
		ProbeInterval: cfg.Sync.ProbeInterval,
		RunTimeout:    cfg.Sync.RunTimeout,
	})
	scheduler.Start()

	// Initialize handlers
	resolver := cache.NewResolver(store, gw)
	healthHandler := handler.New(cfg.App.Version, store)
	syncHandler := handler.NewSyncHandler(scheduler, store)
	dataHandler := handler.NewDataHandler(resolver, gw, store, prefsManager, cfg.Cache.MaxAge)
	prefsHandler := handler.NewPrefsHandler(prefsManager)

	// Create router
	r := router.New(router.Config{
		Handler:      healthHandler,
		SyncHandler:  syncHandler,
		DataHandler:  dataHandler,
		PrefsHandler: prefsHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop the scheduler first so no sync starts mid-shutdown
	scheduler.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
