package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":        "postgres://localhost:5432/ooh",
		"REDIS_URL":           "redis://localhost:6379/0",
		"PORT":                "",
		"DEFAULT_GST_PERCENT": "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 18.0, cfg.DefaultGSTPercent)
	require.Equal(t, 20, cfg.ListDefaultLimit)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379/0",
	})
	require.Error(t, err)
}

func TestLoadRejectsOutOfRangeGST(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL":        "postgres://localhost:5432/ooh",
		"REDIS_URL":           "redis://localhost:6379/0",
		"DEFAULT_GST_PERCENT": "180",
	})
	require.Error(t, err)
}
