// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	BackendGitHub = "github"
	BackendS3     = "s3"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	// Directory served for requests that are neither POST nor OPTIONS. Empty disables it.
	StaticDir string
	// Memory used while parsing a multipart body; larger parts spill to temp files.
	MaxFormMemory int64

	StorageBackend string

	// GitHub content store. Token, Repo and Owner have no defaults: a missing
	// value must reach the handler as empty so uploads fail closed.
	GitHubToken     string
	GitHubRepo      string
	GitHubOwner     string
	GitHubAPIBase   string
	UpstreamTimeout time.Duration

	// Object storage (S3-compatible), used when StorageBackend is "s3"
	StorageEndpoint   string
	StorageAccessKey  string
	StorageSecretKey  string
	StorageBucket     string
	StorageUseSSL     bool
	StoragePublicBase string // browser-accessible base URL, e.g. "http://localhost:9000/uploads"
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StaticDir:     getEnv("STATIC_DIR", ""),
		MaxFormMemory: getEnvInt64("MAX_FORM_MEMORY", 32<<20),

		StorageBackend: getEnv("STORAGE_BACKEND", BackendGitHub),

		GitHubToken:     getEnv("GITHUB_TOKEN", ""),
		GitHubRepo:      getEnv("REPO_NAME", ""),
		GitHubOwner:     getEnv("USER_NAME", ""),
		GitHubAPIBase:   getEnv("GITHUB_API_BASE", "https://api.github.com"),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),

		StorageEndpoint:   getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey:  getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey:  getEnv("STORAGE_SECRET_KEY", ""),
		StorageBucket:     getEnv("STORAGE_BUCKET", "uploads"),
		StorageUseSSL:     getEnv("STORAGE_USE_SSL", "false") == "true",
		StoragePublicBase: getEnv("STORAGE_PUBLIC_BASE", "http://localhost:9000/uploads"),
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
