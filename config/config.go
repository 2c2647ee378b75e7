package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Uazapi   UazapiConfig
	RabbitMQ RabbitMQConfig
	Log      LogConfig
	// InternalSecret authenticates the job worker against the HTTP API (x-inngest-secret).
	InternalSecret string
}

type ServerConfig struct {
	Port        string
	GinMode     string
	CORSOrigin  string
	InternalURL string
}

type DatabaseConfig struct {
	Driver string
	URL    string
}

type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
}

type UazapiConfig struct {
	BaseURL        string
	AdminToken     string
	Timeout        time.Duration
	ConnectRetries int
	WebhookURL     string
}

type RabbitMQConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
	Queue    string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads the .env file (if any) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			CORSOrigin:  getEnv("CORS_ORIGIN", "http://localhost:3000"),
			InternalURL: getEnv("INTERNAL_API_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			URL:    os.Getenv("DATABASE_URL"),
		},
		Session: SessionConfig{
			Secret:     os.Getenv("SESSION_SECRET"),
			CookieName: getEnv("SESSION_COOKIE", "session"),
			TTL:        getDuration("SESSION_TTL", 24*time.Hour),
		},
		Uazapi: UazapiConfig{
			BaseURL:        strings.TrimRight(os.Getenv("UAZAPI_BASE_URL"), "/"),
			AdminToken:     os.Getenv("UAZAPI_ADMIN_TOKEN"),
			Timeout:        getDuration("UAZAPI_TIMEOUT", 30*time.Second),
			ConnectRetries: getInt("UAZAPI_CONNECT_RETRIES", 3),
			WebhookURL:     os.Getenv("WHATSAPP_WEBHOOK_URL"),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getInt("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", "/"),
			Queue:    getEnv("JOBS_QUEUE", "lifecycle_jobs"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		InternalSecret: os.Getenv("INTERNAL_SECRET"),
	}
}

// Validate returns an error listing every required value that is missing.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Session.Secret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if c.InternalSecret == "" {
		missing = append(missing, "INTERNAL_SECRET")
	}
	if c.Uazapi.BaseURL == "" {
		missing = append(missing, "UAZAPI_BASE_URL")
	}
	if c.Uazapi.AdminToken == "" {
		missing = append(missing, "UAZAPI_ADMIN_TOKEN")
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// InitDB opens the gorm connection for the configured driver.
func InitDB(cfg DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.URL)
	case "mysql":
		dialector = mysql.Open(cfg.URL)
	case "sqlite":
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
