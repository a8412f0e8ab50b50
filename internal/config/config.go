package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=erp port=5432 sslmode=disable"

type Config struct {
	HTTPPort          string
	DatabaseDSN       string
	JWTSecret         string
	CORSOrigins       string
	TokenTTL          time.Duration
	OrderDueWithin    time.Duration // window for ORDER_DUE notifications
	ReportDefaultDays int
}

// Load reads the environment, after loading an optional .env file, and
// exits when a required value is missing or malformed.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] could not read .env: %v", err)
	}

	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN is using the default value, set your own PostgreSQL DSN in production.")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is using the default value, set your own origins in production.")
	}
	return cfg
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.OrderDueWithin, err = getDuration("ORDER_DUE_WITHIN", 48*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReportDefaultDays, err = getInt("REPORT_DEFAULT_DAYS", 30); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters")
	}
	if cfg.ReportDefaultDays < 1 {
		return nil, fmt.Errorf("REPORT_DEFAULT_DAYS must be positive, got %d", cfg.ReportDefaultDays)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
