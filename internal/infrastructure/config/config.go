// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for outremer configuration.
	DefaultConfigDir = ".outremer"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	LLM      LLMConfig      `yaml:"llm,omitempty"`
	Matcher  MatcherConfig  `yaml:"matcher,omitempty"`
	Wikidata WikidataConfig `yaml:"wikidata,omitempty"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	LogLevel string         `yaml:"log_level,omitempty"`
}

// LLMConfig holds configuration for the extraction LLM provider.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// MatcherConfig holds the tunable matching thresholds.
type MatcherConfig struct {
	MinScore float64 `yaml:"min_score,omitempty"`
	TopK     int     `yaml:"top_k,omitempty"`
	High     float64 `yaml:"high,omitempty"`
	Medium   float64 `yaml:"medium,omitempty"`
	Low      float64 `yaml:"low,omitempty"`
}

// WikidataConfig holds configuration for the Wikidata reconciliation client.
type WikidataConfig struct {
	Endpoint   string `yaml:"endpoint,omitempty"`
	UserAgent  string `yaml:"user_agent,omitempty"`
	DelayMS    int    `yaml:"delay_ms,omitempty"`
	TimeoutS   int    `yaml:"timeout_s,omitempty"`
	MaxRetries int    `yaml:"max_retries,omitempty"`
	CutoffYear int    `yaml:"cutoff_year,omitempty"`
	Limit      int    `yaml:"limit,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite graph store.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database.
	Path string `yaml:"path,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Matcher: MatcherConfig{
			MinScore: 0.60,
			TopK:     3,
			High:     0.90,
			Medium:   0.75,
			Low:      0.60,
		},
		Wikidata: WikidataConfig{
			Endpoint:   "https://query.wikidata.org/sparql",
			UserAgent:  "outremer/1.0 (https://github.com/thodel/outremer)",
			DelayMS:    500,
			TimeoutS:   15,
			MaxRetries: 2,
			CutoffYear: 1500,
			Limit:      3,
		},
		SQLite: SQLiteConfig{
			Path: filepath.Join(DefaultConfigDir, "outremer.db"),
		},
		LogLevel: "info",
	}
}

// Load loads configuration from the .outremer directory in the given path.
// A missing config file is not an error: defaults apply, so the pipeline
// runs without prior setup.
func Load(basePath string) (*Config, error) {
	cfg := Default()

	configFile := ConfigFilePath(basePath)
	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		cfg.applyEnvOverrides()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = key
	}
	if level := os.Getenv("OUTREMER_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}

// ConfigDir returns the path to the .outremer config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Exists checks if an outremer config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

// WriteDefault writes the default configuration file, creating the config
// directory if needed. Fails if the file already exists.
func WriteDefault(basePath string) (string, error) {
	if Exists(basePath) {
		return "", fmt.Errorf("config already exists: %s", ConfigFilePath(basePath))
	}

	if err := os.MkdirAll(ConfigDir(basePath), 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("marshaling default config: %w", err)
	}

	path := ConfigFilePath(basePath)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}
