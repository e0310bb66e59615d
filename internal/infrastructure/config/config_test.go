package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"RENTFOLIO_APP_NAME":                      os.Getenv("RENTFOLIO_APP_NAME"),
		"RENTFOLIO_APP_ENV":                       os.Getenv("RENTFOLIO_APP_ENV"),
		"RENTFOLIO_APP_PORT":                      os.Getenv("RENTFOLIO_APP_PORT"),
		"RENTFOLIO_DATABASE_HOST":                 os.Getenv("RENTFOLIO_DATABASE_HOST"),
		"RENTFOLIO_DATABASE_PORT":                 os.Getenv("RENTFOLIO_DATABASE_PORT"),
		"RENTFOLIO_DATABASE_PASSWORD":             os.Getenv("RENTFOLIO_DATABASE_PASSWORD"),
		"RENTFOLIO_DATABASE_MAX_OPEN_CONNS":       os.Getenv("RENTFOLIO_DATABASE_MAX_OPEN_CONNS"),
		"RENTFOLIO_DATABASE_MAX_IDLE_CONNS":       os.Getenv("RENTFOLIO_DATABASE_MAX_IDLE_CONNS"),
		"RENTFOLIO_BILLING_NUMBER_PREFIX":         os.Getenv("RENTFOLIO_BILLING_NUMBER_PREFIX"),
		"RENTFOLIO_BILLING_NUMBER_MAX_RETRIES":    os.Getenv("RENTFOLIO_BILLING_NUMBER_MAX_RETRIES"),
		"RENTFOLIO_BILLING_DEFAULT_DUE_DAYS":      os.Getenv("RENTFOLIO_BILLING_DEFAULT_DUE_DAYS"),
		"RENTFOLIO_BILLING_VAT_RATE_PERCENT":      os.Getenv("RENTFOLIO_BILLING_VAT_RATE_PERCENT"),
		"RENTFOLIO_SCHEDULER_OVERDUE_SCAN_INTERVAL": os.Getenv("RENTFOLIO_SCHEDULER_OVERDUE_SCAN_INTERVAL"),
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

		assert.Equal(t, "rentfolio-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "rentfolio", cfg.Database.DBName)
		assert.Equal(t, "INV", cfg.Billing.NumberPrefix)
		assert.Equal(t, 5, cfg.Billing.NumberMaxRetries)
		assert.Equal(t, 7, cfg.Billing.DefaultDueDays)
		assert.Equal(t, 15, cfg.Billing.VATRatePercent)
	})

	t.Run("loads values from environment variables with RENTFOLIO prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("RENTFOLIO_APP_PORT", "9000")
		os.Setenv("RENTFOLIO_DATABASE_HOST", "testdb.local")
		os.Setenv("RENTFOLIO_BILLING_NUMBER_PREFIX", "FACT")
		os.Setenv("RENTFOLIO_BILLING_DEFAULT_DUE_DAYS", "14")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, "FACT", cfg.Billing.NumberPrefix)
		assert.Equal(t, 14, cfg.Billing.DefaultDueDays)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("RENTFOLIO_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("RENTFOLIO_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("negative due days rejected", func(t *testing.T) {
		clearEnv()
		os.Setenv("RENTFOLIO_BILLING_DEFAULT_DUE_DAYS", "-3")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_due_days")
	})

	t.Run("vat rate outside 0-100 rejected", func(t *testing.T) {
		clearEnv()
		os.Setenv("RENTFOLIO_BILLING_VAT_RATE_PERCENT", "150")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vat_rate_percent")
	})

	t.Run("scan interval below a minute rejected", func(t *testing.T) {
		clearEnv()
		os.Setenv("RENTFOLIO_SCHEDULER_OVERDUE_SCAN_INTERVAL", "5s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "overdue_scan_interval")
	})

	t.Run("production requires database password", func(t *testing.T) {
		clearEnv()
		os.Setenv("RENTFOLIO_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "rentfolio",
		Password: "p@ss/word",
		DBName:   "rentfolio",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	assert.NotContains(t, dsn, "p@ss/word", "password must be escaped")
}
