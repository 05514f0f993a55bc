package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all daemon configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	App     AppConfig
	Staging StagingConfig
	Remote  RemoteConfig
	Cache   CacheConfig
	Sync    SyncConfig
}

// ServerConfig holds HTTP server settings. The daemon serves the local app
// shell, so it binds to loopback by default.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"127.0.0.1"`
	Port            int           `envconfig:"SERVER_PORT" default:"7456"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"mypork-syncd"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// StagingConfig holds the local staging database settings.
type StagingConfig struct {
	Path string `envconfig:"STAGING_DB_PATH" default:"./data/mypork.db"`
}

// RemoteConfig holds remote gateway settings.
type RemoteConfig struct {
	// Backend selects the gateway implementation: rest or postgres.
	Backend string `envconfig:"REMOTE_BACKEND" default:"rest"`

	// REST (hosted backend) settings
	BaseURL       string        `envconfig:"REMOTE_BASE_URL" default:""`
	APIKey        string        `envconfig:"REMOTE_API_KEY" default:""`
	AccessToken   string        `envconfig:"REMOTE_ACCESS_TOKEN" default:""`
	StorageBucket string        `envconfig:"REMOTE_STORAGE_BUCKET" default:"exercise-images"`
	Timeout       time.Duration `envconfig:"REMOTE_TIMEOUT" default:"15s"`

	// PostgreSQL (self-hosted backend) settings
	Host      string `envconfig:"REMOTE_DB_HOST" default:"localhost"`
	Port      int    `envconfig:"REMOTE_DB_PORT" default:"5432"`
	Name      string `envconfig:"REMOTE_DB_NAME" default:"mypork"`
	User      string `envconfig:"REMOTE_DB_USER" default:"postgres"`
	Password  string `envconfig:"REMOTE_DB_PASS" default:""`
	SSLMode   string `envconfig:"REMOTE_DB_SSLMODE" default:"disable"`
	UserID    string `envconfig:"REMOTE_USER_ID" default:""`
	UserEmail string `envconfig:"REMOTE_USER_EMAIL" default:""`
}

// CacheConfig holds cache-first read settings.
type CacheConfig struct {
	MaxAge time.Duration `envconfig:"CACHE_MAX_AGE" default:"5m"`
}

// SyncConfig holds sync scheduling settings.
type SyncConfig struct {
	StartupMaxAge time.Duration `envconfig:"SYNC_STARTUP_MAX_AGE" default:"4h"`
	Interval      time.Duration `envconfig:"SYNC_INTERVAL" default:"30m"`
	ProbeInterval time.Duration `envconfig:"SYNC_PROBE_INTERVAL" default:"30s"`
	RunTimeout    time.Duration `envconfig:"SYNC_RUN_TIMEOUT" default:"5m"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (r *RemoteConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		r.User, r.Password, r.Host, r.Port, r.Name, r.SSLMode)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
