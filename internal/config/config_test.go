package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.Brands)
	assert.NotEmpty(t, cfg.QueryTemplates)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Brands = []string{"OpenAI", "Anthropic"}
	cfg.RunsPerQuery = 7
	cfg.Storage.History = "sqlite"
	cfg.Storage.SQLitePath = "som.db"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Brands, loaded.Brands)
	assert.Equal(t, 7, loaded.RunsPerQuery)
	assert.Equal(t, "sqlite", loaded.Storage.History)
	assert.Equal(t, cfg.RateLimitDelay, loaded.RateLimitDelay)
	require.NoError(t, loaded.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Brands = nil
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Brands = []string{"OpenAI", "OpenAI"}
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RunsPerQuery = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ConfidenceLevel = 1.0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.SignificanceAlpha = 0
	assert.Error(t, cfg.Validate())
}

func TestCategoriesSorted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QueryTemplates = map[string][]string{
		"zeta":  {"q"},
		"alpha": {"q"},
	}
	assert.Equal(t, []string{"alpha", "zeta"}, cfg.Categories())
}
