package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTierTables(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []int{3, 10, 25, 50, -1, -1, -1}, cfg.Tiers.ChatRequestsPerDay)
	assert.Equal(t, []int{1, 5, 15, 30, -1, -1, -1}, cfg.Tiers.InsightsPerMonth)
	require.Len(t, cfg.Tiers.SavingsThresholds, 7)
	assert.Equal(t, "Elite Saver", cfg.Tiers.SavingsThresholds[0].Tier)
	assert.Equal(t, "Starter", cfg.Tiers.SavingsThresholds[6].Tier)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": "9000"},
		"ai": {"model": "grok-2"}
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "grok-2", cfg.AI.Model)

	// Untouched sections keep their defaults
	assert.Equal(t, "https://api.x.ai/v1", cfg.AI.BaseURL)
	assert.Equal(t, 30, cfg.Auth.JWTExpiryMinutes)
	assert.Equal(t, []int{3, 10, 25, 50, -1, -1, -1}, cfg.Tiers.ChatRequestsPerDay)
}

func TestLoadRejectsShortTierTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"tiers": {"chat_requests_per_day": [3, 10, 25]}
	}`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestGetRedisAddr(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "localhost:6379", cfg.Redis.GetRedisAddr())
}
