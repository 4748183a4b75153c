// Package config handles application configuration via environment variables.
// It uses kelseyhightower/envconfig for parsing and provides sensible defaults.
// An optional .env file in the working directory is loaded first with godotenv.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
// Values are loaded from environment variables with the prefix "APP".
// Each field also falls back to the unprefixed name, so APP_SESSION_SECRET
// and SESSION_SECRET are both accepted.
type Config struct {
	// Server configuration (loaded separately to flatten env vars)
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Logging configuration
	Log LogConfig

	// Session cookie and password hashing configuration
	Session SessionConfig

	// Public site metadata (canonical URL, manifest)
	Site SiteConfig

	// Seed data configuration
	Seed SeedConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// Host is the HTTP server host (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// ReadTimeout is the maximum duration for reading the entire request (default: 10s)
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`

	// WriteTimeout is the maximum duration before timing out writes of the response (default: 30s)
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish (default: 30s)
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Storage selects the persistence backend: postgres or memory (default: postgres)
	Storage string `envconfig:"STORAGE" default:"postgres"`

	// Host is the database host (default: localhost)
	Host string `envconfig:"DB_HOST" default:"localhost"`

	// Port is the database port (default: 5432)
	Port int `envconfig:"DB_PORT" default:"5432"`

	// User is the database user (default: postgres)
	User string `envconfig:"DB_USER" default:"postgres"`

	// Password is the database password (required in production)
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`

	// Name is the database name (default: jokesite)
	Name string `envconfig:"DB_NAME" default:"jokesite"`

	// SSLMode is the SSL mode for the connection (default: disable)
	SSLMode string `envconfig:"DB_SSLMODE" default:"disable"`

	// MaxOpenConns is the maximum number of open connections (default: 25)
	MaxOpenConns int `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`

	// MaxIdleConns is the minimum number of connections kept open (default: 5)
	MaxIdleConns int `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`

	// ConnMaxLifetime is the maximum lifetime of a connection (default: 5m)
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`

	// AutoMigrate applies pending migrations on startup (default: true)
	AutoMigrate bool `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the log level: debug, info, warn, error (default: info)
	Level string `envconfig:"LOG_LEVEL" default:"info"`

	// Format is the log format: json, text, plain (default: json)
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// SessionConfig holds session cookie settings.
type SessionConfig struct {
	// Secret signs session cookies. Required.
	Secret string `envconfig:"SESSION_SECRET" required:"true"`

	// CookieName is the session cookie name (default: RJ_session)
	CookieName string `envconfig:"SESSION_COOKIE_NAME" default:"RJ_session"`

	// MaxAge is the session lifetime (default: 720h, 30 days)
	MaxAge time.Duration `envconfig:"SESSION_MAX_AGE" default:"720h"`

	// Env is the deployment environment; "production" marks cookies Secure.
	Env string `envconfig:"ENV" default:"development"`

	// PasswordCost is the bcrypt cost factor (default: 10)
	PasswordCost int `envconfig:"PASSWORD_COST" default:"10"`
}

// SiteConfig holds public metadata used by meta tags and the web manifest.
type SiteConfig struct {
	// URL is the canonical base URL, without trailing slash.
	URL string `envconfig:"URL" default:"http://localhost:8080"`

	Name            string   `envconfig:"SITE_NAME" default:"Remix Jokes"`
	Title           string   `envconfig:"SITE_TITLE" default:"Remix J🤪kes"`
	Description     string   `envconfig:"SITE_DESCRIPTION" default:"Collection of jokes built with Remix"`
	Keywords        string   `envconfig:"SITE_KEYWORDS" default:"remix, remix run, jokes, daddy jokes"`
	Image           string   `envconfig:"SITE_IMAGE" default:"https://remix-jokes.lol/social.png"`
	TwitterCreator  string   `envconfig:"SITE_TWITTER_CREATOR" default:"@RofiSyahrul"`
	BackgroundColor string   `envconfig:"SITE_BACKGROUND_COLOR" default:"hsl(278, 73%, 19%)"`
	ThemeColor      string   `envconfig:"SITE_THEME_COLOR" default:"hsl(277, 85%, 38%)"`
	IconSizes       []string `envconfig:"SITE_ICON_SIZES" default:"192,512"`
	Version         string   `envconfig:"VERSION" default:"dev"`
}

// SeedConfig holds the credentials of the seeded jokester.
type SeedConfig struct {
	Username string `envconfig:"SEED_USERNAME" default:"rofi"`
	Password string `envconfig:"SEED_PASSWORD"`
}

// IsProduction reports whether cookies must carry the Secure attribute.
func (c *SessionConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// UsesMemory reports whether the in-memory store was selected.
func (c *DatabaseConfig) UsesMemory() bool {
	return strings.EqualFold(c.Storage, "memory")
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables.
// It returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// Load each config section separately to flatten env var names
	// This allows env vars like APP_PORT instead of APP_SERVER_PORT
	sections := []struct {
		name   string
		target any
	}{
		{"server", &cfg.Server},
		{"database", &cfg.Database},
		{"log", &cfg.Log},
		{"session", &cfg.Session},
		{"site", &cfg.Site},
		{"seed", &cfg.Seed},
	}
	for _, s := range sections {
		if err := envconfig.Process("APP", s.target); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.name, err)
		}
	}

	if strings.TrimSpace(cfg.Session.Secret) == "" {
		return nil, fmt.Errorf("failed to load session config: SESSION_SECRET must be set")
	}
	if cfg.Session.MaxAge <= 0 {
		return nil, fmt.Errorf("failed to load session config: max age must be positive")
	}

	return &cfg, nil
}
