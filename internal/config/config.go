// Package config loads application configuration from environment
// variables.  Required values are enforced with must(); optional ones
// carry defaults so a bare dev environment still boots.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field maps to
// one environment variable.
type Config struct {
	Env              string // APP_ENV: application environment ("dev", "prod")
	Port             string // APP_PORT: HTTP port to listen on
	DBUser           string // DB_USER: database username
	DBPass           string // DB_PASS: database password (optional)
	DBHost           string // DB_HOST: database host address
	DBPort           string // DB_PORT: database port number
	DBName           string // DB_NAME: database name
	JWTSecret        string // JWT_SECRET: HS256 secret shared with the identity provider
	MigrationsURL    string // MIGRATIONS_URL: golang-migrate source (default file://migrations)
	RewardStreakDays int    // REWARD_STREAK_DAYS: consecutive boarding days per coupon
}

// Load reads configuration from the environment.  Missing required
// variables abort startup with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		MigrationsURL:    getenv("MIGRATIONS_URL", "file://migrations"),
		RewardStreakDays: envInt("REWARD_STREAK_DAYS", 5),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}
