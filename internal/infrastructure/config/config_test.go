package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"PLANT_APP_NAME":                          os.Getenv("PLANT_APP_NAME"),
		"PLANT_APP_ENV":                           os.Getenv("PLANT_APP_ENV"),
		"PLANT_APP_PORT":                          os.Getenv("PLANT_APP_PORT"),
		"PLANT_DATABASE_HOST":                     os.Getenv("PLANT_DATABASE_HOST"),
		"PLANT_DATABASE_PORT":                     os.Getenv("PLANT_DATABASE_PORT"),
		"PLANT_DATABASE_USER":                     os.Getenv("PLANT_DATABASE_USER"),
		"PLANT_DATABASE_PASSWORD":                 os.Getenv("PLANT_DATABASE_PASSWORD"),
		"PLANT_DATABASE_DBNAME":                   os.Getenv("PLANT_DATABASE_DBNAME"),
		"PLANT_DATABASE_SSLMODE":                  os.Getenv("PLANT_DATABASE_SSLMODE"),
		"PLANT_DATABASE_MAX_OPEN_CONNS":           os.Getenv("PLANT_DATABASE_MAX_OPEN_CONNS"),
		"PLANT_DATABASE_MAX_IDLE_CONNS":           os.Getenv("PLANT_DATABASE_MAX_IDLE_CONNS"),
		"PLANT_WAREHOUSE_DEFAULT_BIN_CAPACITY":    os.Getenv("PLANT_WAREHOUSE_DEFAULT_BIN_CAPACITY"),
		"PLANT_WAREHOUSE_START_LOCATION":          os.Getenv("PLANT_WAREHOUSE_START_LOCATION"),
		"PLANT_WAREHOUSE_DEFAULT_DELIVERY_AMOUNT": os.Getenv("PLANT_WAREHOUSE_DEFAULT_DELIVERY_AMOUNT"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "plant-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "plant", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 100, cfg.Warehouse.DefaultBinCapacity)
		assert.Equal(t, "A-01-01", cfg.Warehouse.StartLocation)
		assert.Equal(t, 100, cfg.Warehouse.DefaultDeliveryAmount)
		assert.Equal(t, 24*time.Hour, cfg.Warehouse.IdempotencyTTL)
	})

	t.Run("loads values from environment variables with PLANT prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("PLANT_APP_NAME", "test-app")
		os.Setenv("PLANT_APP_PORT", "9000")
		os.Setenv("PLANT_DATABASE_HOST", "testdb.local")
		os.Setenv("PLANT_DATABASE_PORT", "5433")
		os.Setenv("PLANT_DATABASE_USER", "testuser")
		os.Setenv("PLANT_DATABASE_PASSWORD", "testpass")
		os.Setenv("PLANT_DATABASE_DBNAME", "testdb")
		os.Setenv("PLANT_DATABASE_SSLMODE", "require")
		os.Setenv("PLANT_WAREHOUSE_DEFAULT_BIN_CAPACITY", "250")
		os.Setenv("PLANT_WAREHOUSE_START_LOCATION", "B-01-01")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 250, cfg.Warehouse.DefaultBinCapacity)
		assert.Equal(t, "B-01-01", cfg.Warehouse.StartLocation)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("PLANT_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("PLANT_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects negative default bin capacity", func(t *testing.T) {
		clearEnv()
		os.Setenv("PLANT_WAREHOUSE_DEFAULT_BIN_CAPACITY", "-5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_bin_capacity")
	})

	t.Run("production requires database password", func(t *testing.T) {
		clearEnv()
		os.Setenv("PLANT_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "plant",
		Password: "p@ss/word",
		DBName:   "warehouse",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "warehouse")
	assert.Contains(t, dsn, "sslmode=disable")
	// password must be escaped, not raw
	assert.NotContains(t, dsn, "p@ss/word")
}
