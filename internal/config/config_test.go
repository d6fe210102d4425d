package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.True(t, cfg.AuditAsync)
	assert.Equal(t, 3, cfg.SaleMaxRetries)
	assert.Equal(t, 50*time.Millisecond, cfg.SaleRetryInitial())
	assert.Equal(t, time.Minute, cfg.SettingsCacheTTL())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("AUDIT_ASYNC", "false")
	t.Setenv("SALE_MAX_RETRIES", "7")
	t.Setenv("SETTINGS_CACHE_TTL_SECONDS", "5")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173,http://caja.local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.False(t, cfg.AuditAsync)
	assert.Equal(t, 7, cfg.SaleMaxRetries)
	assert.Equal(t, 5*time.Second, cfg.SettingsCacheTTL())
	assert.Equal(t, []string{"http://localhost:5173", "http://caja.local"}, cfg.CORSOrigins)
}
