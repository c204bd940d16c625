package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config is the runtime configuration of the catalog service.
type Config struct {
	Port            string
	UploadDir       string
	MaxUploadSize   int64
	StoreDriver     string
	SQLiteDSN       string
	RabbitMQURL     string
	EventsQueue     string
	ConsumeEvents   bool
	LogLevel        string
	Environment     string
	ShutdownTimeout time.Duration
}

// Address returns the listen address for Fiber.
func (c Config) Address() string {
	return ":" + c.Port
}

// EventsEnabled reports whether product events should be published.
func (c Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3200")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_SIZE", 5*1024*1024)
	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("SQLITE_DSN", "file:catalog?mode=memory&cache=shared")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("EVENTS_QUEUE", "product_events")
	v.SetDefault("EVENTS_CONSUME", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from v and checks it.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:            v.GetString("PORT"),
		UploadDir:       v.GetString("UPLOAD_DIR"),
		MaxUploadSize:   v.GetInt64("MAX_UPLOAD_SIZE"),
		StoreDriver:     v.GetString("STORE_DRIVER"),
		SQLiteDSN:       v.GetString("SQLITE_DSN"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		EventsQueue:     v.GetString("EVENTS_QUEUE"),
		ConsumeEvents:   v.GetBool("EVENTS_CONSUME"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		Environment:     v.GetString("APP_ENV"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.MaxUploadSize)
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLiteDSN == "" {
			return fmt.Errorf("SQLITE_DSN is required for the %s store", StoreSQLite)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.EventsEnabled() && c.EventsQueue == "" {
		return fmt.Errorf("EVENTS_QUEUE is required when RABBITMQ_URL is set")
	}
	return nil
}
