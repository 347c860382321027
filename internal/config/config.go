// internal/config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all service-level settings, populated from the environment.
type Config struct {
	ListenAddr  string // HTTP/WebSocket listen address.
	DatabaseURL string // Postgres connection string; empty disables persistence.
	RedisAddr   string // Redis address; empty disables the live-table cache.
	RedisDB     int
	JWTSecret   string // Secret for seat token signing.
	LogLevel    logrus.Level
}

// Load reads a .env file if present and builds the Config from environment
// variables with sensible defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Warn("failed to load .env file")
		}
	}

	cfg := &Config{
		ListenAddr:  getEnv("SKAT_LISTEN_ADDR", ":8080"),
		DatabaseURL: getEnv("SKAT_DATABASE_URL", ""),
		RedisAddr:   getEnv("SKAT_REDIS_ADDR", ""),
		RedisDB:     getEnvInt("SKAT_REDIS_DB", 0),
		JWTSecret:   getEnv("SKAT_JWT_SECRET", ""),
		LogLevel:    logrus.InfoLevel,
	}

	if lvl := os.Getenv("SKAT_LOG_LEVEL"); lvl != "" {
		parsed, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithField("level", lvl).Warn("unknown log level, using info")
		} else {
			cfg.LogLevel = parsed
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithField("key", key).WithError(err).Warn("invalid integer in environment")
		return fallback
	}
	return n
}
