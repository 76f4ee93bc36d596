package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL      string
	RedisURL         string
	IsProduction     bool
	EnableDBCheck    bool
	MigrationsDir    string
	SnapshotInterval int64
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_DIR", "migrations")
	viper.SetDefault("SNAPSHOT_INTERVAL", 100)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsDir = viper.GetString("MIGRATIONS_DIR")

	cfg.SnapshotInterval = viper.GetInt64("SNAPSHOT_INTERVAL")
	if cfg.SnapshotInterval <= 0 {
		log.Printf("Warning: Invalid SNAPSHOT_INTERVAL (%d). Defaulting to 100.\n", cfg.SnapshotInterval)
		cfg.SnapshotInterval = 100
	}

	return cfg, nil
}
