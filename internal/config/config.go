package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

type Config struct {
	StoreDriver     string
	DatabaseURL     string
	BoltPath        string
	RedisURL        string
	ServerAddr      string
	LogLevel        slog.Level
	SubmitRateLimit int
	NodeID          int64
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, fills in variables that are not already set.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("loading .env: %v", err))
	}

	cfg := &Config{
		StoreDriver:     strings.ToLower(envOrDefault("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:     envOrDefault("DATABASE_URL", "postgres://localhost:5432/complaints_db?sslmode=disable"),
		BoltPath:        envOrDefault("BOLT_PATH", "complaints.db"),
		RedisURL:        os.Getenv("REDIS_URL"),
		ServerAddr:      serverAddr(),
		LogLevel:        parseLogLevel(os.Getenv("LOG_LEVEL")),
		SubmitRateLimit: 10,
	}

	var invalid []string
	if cfg.StoreDriver != DriverPostgres && cfg.StoreDriver != DriverBolt {
		invalid = append(invalid, "STORE_DRIVER (want postgres or bolt)")
	}
	if v := os.Getenv("SUBMIT_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			invalid = append(invalid, "SUBMIT_RATE_LIMIT (want a positive integer)")
		}
		cfg.SubmitRateLimit = n
	}
	if v := os.Getenv("NODE_ID"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			invalid = append(invalid, "NODE_ID (want an integer)")
		}
		cfg.NodeID = n
	}
	if len(invalid) > 0 {
		panic(fmt.Sprintf("invalid environment variables: %s", strings.Join(invalid, ", ")))
	}

	return cfg
}

// serverAddr prefers SERVER_ADDR and falls back to PORT (default 4000).
func serverAddr() string {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		return v
	}
	return ":" + envOrDefault("PORT", "4000")
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
