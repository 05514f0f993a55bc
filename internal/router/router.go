package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/Allantoteles/MyPork/internal/handler"
	"github.com/Allantoteles/MyPork/internal/middleware"
)

// Config holds the handlers wired into the router.
type Config struct {
	Handler      *handler.Handler
	SyncHandler  *handler.SyncHandler
	DataHandler  *handler.DataHandler
	PrefsHandler *handler.PrefsHandler
}

// New creates and configures the HTTP router. The daemon listens on
// loopback for the app shell, so every route is open; CORS stays permissive
// for the same reason.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.SyncHandler != nil {
			r.Route("/sync", func(r chi.Router) {
				r.Post("/", cfg.SyncHandler.TriggerSync)
				r.Get("/pending", cfg.SyncHandler.PendingStats)
				r.Post("/events", cfg.SyncHandler.LifecycleEvent)
			})
		}

		if cfg.DataHandler != nil {
			r.Route("/exercises", func(r chi.Router) {
				r.Get("/", cfg.DataHandler.ListExercises)
				r.Post("/", cfg.DataHandler.CreateExercise)
				r.Delete("/{id}", cfg.DataHandler.DeleteExercise)
				r.Delete("/pending/{localID}", cfg.DataHandler.CancelPendingExercise)
			})
			r.Get("/routines", cfg.DataHandler.ListRoutines)
			r.Get("/profile", cfg.DataHandler.GetProfile)
			r.Post("/sessions", cfg.DataHandler.CreateSession)
		}

		if cfg.PrefsHandler != nil {
			r.Route("/preferences", func(r chi.Router) {
				r.Get("/", cfg.PrefsHandler.Get)
				r.Put("/", cfg.PrefsHandler.Update)
			})
		}
	})

	return r
}
