// Package config loads runtime settings from the environment through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	// DriverMemory keeps products in process memory; nothing survives a restart.
	DriverMemory = "memory"
)

// Config holds every setting the service reads at start-up.
type Config struct {
	AppPort           string
	DBDriver          string
	DatabaseDSN       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	RabbitMQURL       string
	AuthEnabled       bool
	JWTSecret         string
	SeedProducts      bool
	ShutdownTimeout   time.Duration
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "file:products.db?cache=shared")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SEED_PRODUCTS", false)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
}

// Load reads configuration from v, which should already have defaults and
// environment binding applied.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:           v.GetString("APP_PORT"),
		DBDriver:          strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		DBMaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		RabbitMQURL:       strings.TrimSpace(v.GetString("RABBITMQ_URL")),
		AuthEnabled:       v.GetBool("AUTH_ENABLED"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		SeedProducts:      v.GetBool("SEED_PRODUCTS"),
		ShutdownTimeout:   v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds a viper instance bound to the process environment and loads
// the configuration from it.
func FromEnv() (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return Load(v)
}

func (c Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required")
		}
	case DriverMemory:
		if c.AuthEnabled {
			return fmt.Errorf("AUTH_ENABLED requires a %s or %s database", DriverSQLite, DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %q, %q or %q)", c.DBDriver, DriverSQLite, DriverPostgres, DriverMemory)
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is true")
	}
	if c.DBMaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.DBMaxOpenConns)
	}
	return nil
}

// UsesDatabase reports whether the configured driver is backed by GORM.
func (c Config) UsesDatabase() bool {
	return c.DBDriver != DriverMemory
}

// EventsEnabled reports whether product events should be published.
func (c Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}
