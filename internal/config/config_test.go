package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("EDUSYNC_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("EDUSYNC_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "EduSync API", cfg.AppName)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, 2*time.Minute, cfg.TranscriptCacheTTL)
	require.Equal(t, 5, cfg.SubmissionRateLimit)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.False(t, cfg.SeedEnabled)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("EDUSYNC_JWT_SECRET", "secret")
	t.Setenv("EDUSYNC_DATABASE_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadSQLiteDriver(t *testing.T) {
	t.Setenv("EDUSYNC_JWT_SECRET", "secret")
	t.Setenv("EDUSYNC_DATABASE_DRIVER", "SQLite")
	t.Setenv("EDUSYNC_APP_PORT", ":9000")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.UsesSQLite())
	require.Equal(t, ":9000", cfg.HTTPAddress())
}

func TestLoadSeedSettings(t *testing.T) {
	t.Setenv("EDUSYNC_JWT_SECRET", "secret")
	t.Setenv("EDUSYNC_SEED_ENABLED", "true")
	t.Setenv("EDUSYNC_SEED_TOKEN", "bootstrap")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.SeedEnabled)
	require.Equal(t, "bootstrap", cfg.SeedToken)
}
