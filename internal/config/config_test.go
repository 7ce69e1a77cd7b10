package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// t.Setenv cannot unset, so pin the documented defaults explicitly.
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "")
	t.Setenv("GENERATION_PROVIDER", "openai")
	t.Setenv("AUDITING_ENABLED", "true")
	t.Setenv("AUDIT_FAILURE_POLICY", "deliver")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "60")
	t.Setenv("GENERATION_TEMPERATURE", "0.1")
	t.Setenv("PORT", "3000")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.AuditingEnabled)
	assert.Equal(t, AuditPolicyDeliver, cfg.AuditPolicy)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, cfg.Database.Path, cfg.Database.DSN)
	assert.Equal(t, "gpt-4o", cfg.Generation.Model)
	assert.Equal(t, 60*time.Second, cfg.Generation.Timeout)
	assert.InDelta(t, 0.1, cfg.Generation.Temperature, 1e-6)
}

func TestLoadConfigDriverDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("GENERATION_PROVIDER", "openai")
	t.Setenv("AUDIT_FAILURE_POLICY", "deliver")
	t.Setenv("AUDITING_ENABLED", "true")

	t.Run("mysql", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		t.Setenv("DB_PORT", "3307")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Contains(t, cfg.Database.DSN, "@tcp(")
		assert.Contains(t, cfg.Database.DSN, ":3307)")
	})

	t.Run("postgres", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "postgres")
		t.Setenv("DB_PORT", "5433")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Contains(t, cfg.Database.DSN, "postgres://")
		assert.Contains(t, cfg.Database.DSN, ":5433/")
	})

	t.Run("explicit dsn wins", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("DB_DSN", "file::memory:")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "file::memory:", cfg.Database.DSN)
	})
}

func TestLoadConfigRejectsUnknownValues(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("GENERATION_PROVIDER", "openai")
	t.Setenv("AUDIT_FAILURE_POLICY", "deliver")
	t.Setenv("AUDITING_ENABLED", "true")

	t.Run("driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "oracle")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "DB_DRIVER")
	})
	t.Run("provider", func(t *testing.T) {
		t.Setenv("GENERATION_PROVIDER", "local")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "GENERATION_PROVIDER")
	})
	t.Run("policy", func(t *testing.T) {
		t.Setenv("AUDIT_FAILURE_POLICY", "ignore")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "AUDIT_FAILURE_POLICY")
	})
	t.Run("auditing flag", func(t *testing.T) {
		t.Setenv("AUDITING_ENABLED", "maybe")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "AUDITING_ENABLED")
	})
}

func TestLoadConfigTemperature(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("GENERATION_PROVIDER", "openai")
	t.Setenv("AUDIT_FAILURE_POLICY", "deliver")
	t.Setenv("AUDITING_ENABLED", "true")

	for _, value := range []string{"0", "2", "0.7"} {
		t.Run("accepts "+value, func(t *testing.T) {
			t.Setenv("GENERATION_TEMPERATURE", value)
			_, err := LoadConfig()
			assert.NoError(t, err)
		})
	}

	for _, value := range []string{"-3", "5", "2.01", "NaN", "Inf", "-Inf", "warm"} {
		t.Run("rejects "+value, func(t *testing.T) {
			t.Setenv("GENERATION_TEMPERATURE", value)
			_, err := LoadConfig()
			assert.ErrorContains(t, err, "GENERATION_TEMPERATURE")
		})
	}
}
