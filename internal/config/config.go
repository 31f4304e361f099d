package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EngineLocal    = "local"
	EnginePostgres = "postgres"
)

type Config struct {
	Env              string
	ListenAddr       string
	StorageEngine    string
	DatabaseURL      string
	LocalStorePath   string
	MigrateOnStart   bool
	GeneratorURL     string
	GeneratorAPIKey  string
	GeneratorTimeout time.Duration
	ScoreWorkers     int
	LogLevel         string
	LogFormat        string
	EnableH2C        bool
}

// Load reads an optional .env file and then the environment. The returned
// error is not fatal: it flags settings the chosen storage engine needs.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:              getenv("APP_ENV", "development"),
		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
		StorageEngine:    strings.ToLower(getenv("STORAGE_ENGINE", EngineLocal)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		LocalStorePath:   getenv("LOCAL_STORE_PATH", "data/wellbeing.json"),
		MigrateOnStart:   getenvBool("MIGRATE_ON_START", true),
		GeneratorURL:     os.Getenv("GENERATOR_URL"),
		GeneratorAPIKey:  os.Getenv("GENERATOR_API_KEY"),
		GeneratorTimeout: getenvDuration("GENERATOR_TIMEOUT", 10*time.Second),
		ScoreWorkers:     getenvInt("SCORE_WORKERS", 0),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogFormat:        getenv("LOG_FORMAT", "text"),
		EnableH2C:        getenvBool("ENABLE_H2C", false),
	}
	switch cfg.StorageEngine {
	case EngineLocal:
	case EnginePostgres:
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL not set for storage engine %q", cfg.StorageEngine)
		}
	default:
		return cfg, fmt.Errorf("unknown STORAGE_ENGINE %q", cfg.StorageEngine)
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return out
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return out
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if out, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && out > 0 {
			return out
		}
	}
	return def
}
