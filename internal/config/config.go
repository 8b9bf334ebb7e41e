package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the API process.
type Config struct {
	AppPort       string
	DatabaseURL   string // empty runs on in-memory stores
	SeedFile      string // catalog JSON loaded into the in-memory stores
	RedisAddress  string // empty disables distributed job locks
	JWTSecret     string
	JWTExpiresIn  time.Duration
	LoginUsername string
	LoginPassword string
	Timezone      string
	LogLevel      string
	DayCloseSpec  string
	MonthlySpec   string
	Prometheus    bool
	CORSOrigins   []string
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	expiry, err := time.ParseDuration(getEnv("JWT_EXPIRES_IN", "24h"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	prom, _ := strconv.ParseBool(getEnv("PROMETHEUS_ENABLED", "false"))

	cfg := &Config{
		AppPort:       getEnv("APP_PORT", "5000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SeedFile:      os.Getenv("CATALOG_SEED_FILE"),
		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiresIn:  expiry,
		LoginUsername: os.Getenv("LOGIN_USERNAME"),
		LoginPassword: os.Getenv("LOGIN_PASSWORD"),
		Timezone:      getEnv("APP_TIMEZONE", "Asia/Colombo"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DayCloseSpec:  getEnv("DAY_CLOSE_SCHEDULE", "0 0 * * *"),
		MonthlySpec:   getEnv("MONTHLY_ROLLUP_SCHEDULE", "1 0 1 * *"),
		Prometheus:    prom,
		CORSOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.LoginUsername == "" || cfg.LoginPassword == "" {
		return nil, errors.New("LOGIN_USERNAME and LOGIN_PASSWORD are required")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
