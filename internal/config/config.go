// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the DSN, admin password hash and
// model API key go to the OS keychain.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"askdb/cli/internal/sqlguard"
	"askdb/cli/internal/xdg"
)

// FileName is the config file inside the askdb config directory.
const FileName = "config.yaml"

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel   string                    `yaml:"log_level"`
	Output     string                    `yaml:"output"`
	SoftDelete sqlguard.SoftDeletePolicy `yaml:"soft_delete"`
	LLM        LLMConfig                 `yaml:"llm"`
	Server     ServerConfig              `yaml:"server"`
	History    HistoryConfig             `yaml:"history"`
}

// LLMConfig configures the OpenAI-compatible translation endpoint.
type LLMConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ServerConfig configures `askdb serve`.
type ServerConfig struct {
	Addr       string        `yaml:"addr"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// HistoryConfig controls the audit log.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		LogLevel:   "info",
		Output:     "table",
		SoftDelete: sqlguard.SoftDeletePolicy{Column: sqlguard.DefaultSoftDeleteColumn},
		LLM: LLMConfig{
			Endpoint:    "https://api.groq.com/openai/v1/chat/completions",
			Model:       "llama-3.3-70b-versatile",
			Temperature: 0.2,
			Timeout:     60 * time.Second,
		},
		Server: ServerConfig{
			Addr:       "127.0.0.1:8080",
			SessionTTL: 12 * time.Hour,
		},
		History: HistoryConfig{Enabled: true},
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Default(), err
	}
	return LoadFile(p)
}

// LoadFile reads configuration from p. Keys absent from the file keep their defaults.
func LoadFile(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Default(), err
	}
	c.applyDefaults()
	return c, nil
}

// applyDefaults refills fields a file set to empty values.
func (c *Config) applyDefaults() {
	d := Default()
	if strings.TrimSpace(c.SoftDelete.Column) == "" {
		c.SoftDelete.Column = d.SoftDelete.Column
	}
	if c.Output == "" {
		c.Output = d.Output
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = d.LLM.Endpoint
	}
	if c.LLM.Model == "" {
		c.LLM.Model = d.LLM.Model
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = d.LLM.Timeout
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.SessionTTL <= 0 {
		c.Server.SessionTTL = d.Server.SessionTTL
	}
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	return SaveFile(p, c)
}

// SaveFile writes configuration to p with 0600 permissions.
func SaveFile(p string, c Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
