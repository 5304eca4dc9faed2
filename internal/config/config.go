package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Defaults for the on-disk dataset layout.
const (
	DefaultPort         = "3001"
	DefaultVillagesFile = "allfvill_newuid.geojson"
	DefaultPlansFile    = "comunity-plan.json"
	DefaultCacheTTL     = 10 * time.Minute
)

// ErrMissingDatabaseURL is returned by Validate when no DSN is configured.
var ErrMissingDatabaseURL = eris.New("config: DATABASE_URL is empty")

// Config holds the runtime configuration of the API server.
type Config struct {
	Port        string
	DatabaseURL string

	// Dataset locations
	DataDir         string
	OverlayDir      string
	VillagesFile    string
	PlansFile       string
	OverlayManifest string

	FrontendURL string

	Redis RedisConfig
	Log   LogConfig
}

// RedisConfig configures the optional building footprint cache.
// An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// LoadFromEnv loads configuration from environment variables.
//
// Environment variables:
//   - PORT: listen port (default: 3001)
//   - DATABASE_URL: postgres DSN for community plans (required)
//   - DATA_DIR: directory holding the village and plan files (default: ".")
//   - OVERLAY_DIR: directory holding overlay and building files (default: $DATA_DIR/data)
//   - VILLAGES_FILE, PLANS_FILE: file names inside DATA_DIR
//   - OVERLAY_MANIFEST: optional YAML file replacing the built-in overlay list
//   - FRONTEND_URL: extra allowed CORS origin
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, BUILDING_CACHE_TTL: building cache
//   - LOG_LEVEL, LOG_FORMAT: "debug|info|warn|error", "json|console"
func LoadFromEnv() Config {
	dataDir := envOr("DATA_DIR", ".")
	overlayDir := strings.TrimSpace(os.Getenv("OVERLAY_DIR"))
	if overlayDir == "" {
		overlayDir = filepath.Join(dataDir, "data")
	}

	ttl := DefaultCacheTTL
	if v := strings.TrimSpace(os.Getenv("BUILDING_CACHE_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		// ignore parse error, default 0
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			redisDB = n
		}
	}

	return Config{
		Port:            envOr("PORT", DefaultPort),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DataDir:         dataDir,
		OverlayDir:      overlayDir,
		VillagesFile:    envOr("VILLAGES_FILE", DefaultVillagesFile),
		PlansFile:       envOr("PLANS_FILE", DefaultPlansFile),
		OverlayManifest: strings.TrimSpace(os.Getenv("OVERLAY_MANIFEST")),
		FrontendURL:     strings.TrimSpace(os.Getenv("FRONTEND_URL")),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			TTL:      ttl,
		},
		Log: LogConfig{
			Level:  strings.ToLower(envOr("LOG_LEVEL", "info")),
			Format: strings.ToLower(envOr("LOG_FORMAT", "json")),
		},
	}
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return eris.Wrapf(err, "config: invalid PORT %q", c.Port)
	}
	return nil
}

// VillagesPath is the absolute-or-relative path of the GIS feature collection.
func (c Config) VillagesPath() string { return filepath.Join(c.DataDir, c.VillagesFile) }

// PlansPath is the path of the keyed community-plan dataset.
func (c Config) PlansPath() string { return filepath.Join(c.DataDir, c.PlansFile) }

// BuildingsDir is where per-village building footprints live.
func (c Config) BuildingsDir() string { return filepath.Join(c.OverlayDir, "builing-in-village") }

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
