// Package config holds the typed runtime configuration. Values come from the
// environment with an optional .env file; nothing is read at request time.
package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Media    MediaConfig
	SMTP     SMTPConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig selects the backing store. A postgres:// URL switches the
// driver; anything else is treated as a sqlite file path.
type DatabaseConfig struct {
	URL string
}

// AuthConfig holds token and master PIN settings.
type AuthConfig struct {
	SecretKey   string
	MasterPIN   string
	TokenExpiry time.Duration
}

// MediaConfig holds upload storage settings.
type MediaConfig struct {
	UploadDir string
	PublicURL string // URL prefix under which UploadDir is served
}

// SMTPConfig holds the environment fallback for guest PIN mail. The settings
// row in the database overrides these when populated.
type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	TLS        bool
	FromEmail  string
	FromName   string
}

var (
	current *Config
	mu      sync.RWMutex
)

// Load reads configuration from the environment. envFile may be empty; when
// set and present it is loaded first without overriding existing variables.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: getEnvInt("PORT", 8080),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "mediavault.db"),
		},
		Auth: AuthConfig{
			SecretKey:   getEnv("SECRET_KEY", "changethis"),
			MasterPIN:   getEnv("ACCESS_PIN", "12345678"),
			TokenExpiry: time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24*8)) * time.Minute,
		},
		Media: MediaConfig{
			UploadDir: getEnv("UPLOAD_DIR", "static/uploads"),
			PublicURL: getEnv("MEDIA_PUBLIC_URL", "/static/uploads"),
		},
		SMTP: SMTPConfig{
			Host:      getEnv("SMTP_HOST", ""),
			Port:      getEnvInt("SMTP_PORT", 587),
			User:      getEnv("SMTP_USER", ""),
			Password:  getEnv("SMTP_PASSWORD", ""),
			TLS:       getEnvBool("SMTP_TLS", true),
			FromEmail: getEnv("EMAILS_FROM_EMAIL", ""),
			FromName:  getEnv("EMAILS_FROM_NAME", "Media Vault"),
		},
	}

	mu.Lock()
	current = cfg
	mu.Unlock()
	return cfg, nil
}

// Get returns the loaded configuration, loading defaults if Load was never
// called (tests rely on this).
func Get() *Config {
	mu.RLock()
	cfg := current
	mu.RUnlock()
	if cfg != nil {
		return cfg
	}
	cfg, _ = Load("")
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
