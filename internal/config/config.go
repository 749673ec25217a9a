package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Store drivers accepted by StoreDriver.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds runtime configuration values for the tracker.
type Config struct {
	AppName      string
	AppEnv       string
	AppAddr      string
	AllowOrigins string
	LogLevel     zerolog.Level
	StoreDriver  string
	StoreKey     string
	StoreReset   bool
	SQLitePath   string
	DatabaseURL  string
	RedisURL     string
	NATSURL      string
	NATSSubject  string
	SeedDemo     bool
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TRACKER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Student Assignment Tracker")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.addr", "127.0.0.1:8080")
	v.SetDefault("app.allow_origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("store.driver", StoreSQLite)
	v.SetDefault("store.key", "sas_demo_v1")
	v.SetDefault("sqlite.path", "tracker.db")
	v.SetDefault("nats.subject", "tracker.events")
	v.SetDefault("seed.demo", true)
	v.SetDefault("store.reset", false)

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("log.level")))
	if err != nil {
		return Config{}, fmt.Errorf("invalid log level: %w", err)
	}

	cfg := Config{
		AppName:      v.GetString("app.name"),
		AppEnv:       v.GetString("app.env"),
		AppAddr:      v.GetString("app.addr"),
		AllowOrigins: v.GetString("app.allow_origins"),
		LogLevel:     level,
		StoreDriver:  strings.ToLower(strings.TrimSpace(v.GetString("store.driver"))),
		StoreKey:     v.GetString("store.key"),
		StoreReset:   v.GetBool("store.reset"),
		SQLitePath:   v.GetString("sqlite.path"),
		DatabaseURL:  v.GetString("database.url"),
		RedisURL:     v.GetString("redis.url"),
		NATSURL:      v.GetString("nats.url"),
		NATSSubject:  v.GetString("nats.subject"),
		SeedDemo:     v.GetBool("seed.demo"),
	}

	if strings.TrimSpace(cfg.StoreKey) == "" {
		return Config{}, fmt.Errorf("store key must not be empty")
	}

	switch cfg.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			return Config{}, fmt.Errorf("sqlite path must be provided for the sqlite store")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("database url must be provided for the postgres store")
		}
	case StoreRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("redis url must be provided for the redis store")
		}
	default:
		return Config{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	return cfg, nil
}
