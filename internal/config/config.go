package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the process configuration, read once from the environment at
// startup. Missing required values are fatal; the service must never run
// half-configured.
type Config struct {
	Port        int
	DatabaseURL string

	// Auth provider admin API.
	AuthURL        string
	AuthServiceKey string
	AuthTimeout    time.Duration

	// Token verification. One of the two must be set; JWKS wins.
	AuthJWTSecret string
	AuthJWKSURL   string

	// Base URL of the web app, used for email redirect targets. Optional.
	AppBaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           8080,
		AuthTimeout:    10 * time.Second,
		RedisAddr:      "localhost:6379",
		MinioEndpoint:  "localhost:9000",
		MinioAccessKey: "minioadmin",
		MinioSecretKey: "minioadmin",
		MinioBucket:    "request-photos",
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg.AuthURL = os.Getenv("AUTH_URL")
	if cfg.AuthURL == "" {
		return nil, fmt.Errorf("AUTH_URL is required")
	}
	cfg.AuthServiceKey = os.Getenv("AUTH_SERVICE_KEY")
	if cfg.AuthServiceKey == "" {
		return nil, fmt.Errorf("AUTH_SERVICE_KEY is required")
	}

	cfg.AuthJWTSecret = os.Getenv("AUTH_JWT_SECRET")
	cfg.AuthJWKSURL = os.Getenv("AUTH_JWKS_URL")
	if cfg.AuthJWTSecret == "" && cfg.AuthJWKSURL == "" {
		return nil, fmt.Errorf("one of AUTH_JWT_SECRET or AUTH_JWKS_URL is required")
	}

	cfg.AppBaseURL = os.Getenv("APP_BASE_URL")

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("AUTH_TIMEOUT_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTH_TIMEOUT_SECONDS %q: %w", v, err)
		}
		cfg.AuthTimeout = time.Duration(seconds) * time.Second
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.RedisDB = db
	}

	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	cfg.MinioUseSSL = os.Getenv("MINIO_USE_SSL") == "true"

	return cfg, nil
}
