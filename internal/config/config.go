// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only suitable for local development.
const DefaultJWTSecret = "dev-secret-change-me"

// Config holds all configuration for the circles server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Drafts   DraftsConfig
	Images   ImagesConfig
	Log      LogConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port       int
	StaticPath string
}

// DatabaseConfig selects the storage backend. Circles move to PostgreSQL
// when URL is set; users and drafts always live in the SQLite file at Path.
type DatabaseConfig struct {
	Path string
	URL  string
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// DraftsConfig selects where question drafts are kept. Redis is used when
// RedisAddr is set, otherwise the SQLite local_storage table.
type DraftsConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// ImagesConfig enables the FTP image store when FTPHost is set; otherwise
// images stay inline as data URIs.
type ImagesConfig struct {
	FTPHost     string
	FTPPort     string
	FTPUser     string
	FTPPassword string
	FTPDir      string
	BaseURL     string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// envFiles are tried in order; the first one that loads wins.
var envFiles = []string{"config.env", ".env"}

// LoadEnvFiles loads the first readable env file from paths (config.env and
// .env by default). Variables already set in the environment take precedence.
// It reports which file was loaded, or "" when none was found.
func LoadEnvFiles(paths ...string) string {
	if len(paths) == 0 {
		paths = envFiles
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := getDuration("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	draftTTL, err := getDuration("DRAFT_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:       port,
			StaticPath: getEnv("STATIC_PATH", "./static"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/circles.db"),
			URL:  getEnv("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", DefaultJWTSecret),
			TokenTTL:  tokenTTL,
		},
		Drafts: DraftsConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			TTL:           draftTTL,
		},
		Images: ImagesConfig{
			FTPHost:     getEnv("FTP_HOST", ""),
			FTPPort:     getEnv("FTP_PORT", "21"),
			FTPUser:     getEnv("FTP_USER", ""),
			FTPPassword: getEnv("FTP_PASSWORD", ""),
			FTPDir:      getEnv("FTP_DIR", "circle_images"),
			BaseURL:     getEnv("FTP_BASE_URL", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if cfg.Images.FTPHost != "" && cfg.Images.BaseURL == "" {
		return nil, fmt.Errorf("FTP_BASE_URL is required when FTP_HOST is set")
	}
	if cfg.Auth.JWTSecret == DefaultJWTSecret {
		slog.Warn("JWT_SECRET not set, using the development secret")
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
