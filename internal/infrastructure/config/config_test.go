package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.60, cfg.Matcher.MinScore)
	assert.Equal(t, 3, cfg.Matcher.TopK)
	assert.Equal(t, 0.90, cfg.Matcher.High)
	assert.Equal(t, 0.75, cfg.Matcher.Medium)
	assert.Equal(t, 0.60, cfg.Matcher.Low)

	assert.Equal(t, "https://query.wikidata.org/sparql", cfg.Wikidata.Endpoint)
	assert.Equal(t, 500, cfg.Wikidata.DelayMS)
	assert.Equal(t, 1500, cfg.Wikidata.CutoffYear)
	assert.Equal(t, 3, cfg.Wikidata.Limit)

	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default().Matcher, cfg.Matcher)
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0o755))
	content := "matcher:\n  min_score: 0.5\n  top_k: 5\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(ConfigFilePath(dir), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Matcher.MinScore)
	assert.Equal(t, 5, cfg.Matcher.TopK)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched sections keep their defaults.
	assert.Equal(t, Default().Wikidata.Endpoint, cfg.Wikidata.Endpoint)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0o755))
	require.NoError(t, os.WriteFile(ConfigFilePath(dir), []byte("matcher: ["), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OUTREMER_LOG_LEVEL", "warn")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, ConfigFilePath(dir), path)
	assert.True(t, Exists(dir))

	// A second init must not clobber an edited config.
	_, err = WriteDefault(dir)
	require.Error(t, err)
}

func TestConfigPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("/base", DefaultConfigDir), ConfigDir("/base"))
	assert.Equal(t, filepath.Join("/base", DefaultConfigDir, DefaultConfigFile), ConfigFilePath("/base"))
}
