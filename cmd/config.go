package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort           string
	APIBaseURL         string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	SessionTTL         time.Duration
	RedisAddr          string
	RedisPassword      string
	JournalDBPath      string
	MigrationsPath     string
	KafkaBrokers       []string
	BreakerMaxFailures uint32
	LogLevel           string
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:8081"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		SessionTTL:         getDuration("SESSION_TTL", 30*time.Minute),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		JournalDBPath:      getEnv("JOURNAL_DB_PATH", "./sales.db"),
		MigrationsPath:     getEnv("MIGRATIONS_PATH", "./internal/journal/migrations"),
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		BreakerMaxFailures: uint32(getInt("BREAKER_MAX_FAILURES", 5)),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
