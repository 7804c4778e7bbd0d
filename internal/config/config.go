// Package config loads gh-notifications-cleanup settings from an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teemow/gh-notifications-cleanup/internal/logging"
)

// AppName is used for the config directory and the environment prefix.
const AppName = "gh-notifications-cleanup"

// EnvPrefix prefixes every environment override, e.g. GH_NOTIFICATIONS_CLEANUP_API_URL.
const EnvPrefix = "GH_NOTIFICATIONS_CLEANUP"

// TokenEnv is the environment variable holding the GitHub personal access token.
const TokenEnv = "GITHUB_TOKEN"

// DefaultConcurrency is the number of cleanup requests allowed in flight.
const DefaultConcurrency = 10

// ErrMissingToken is returned by Validate when no GitHub token is configured.
var ErrMissingToken = errors.New("no GitHub token configured")

// MissingTokenHint is printed to users when ErrMissingToken is hit.
const MissingTokenHint = "Set GITHUB_TOKEN with a GitHub Personal Access Token."

// Config is the resolved application configuration.
type Config struct {
	// Token is the GitHub personal access token. Never log it unsanitized.
	Token string `mapstructure:"token"`

	// APIURL overrides the GitHub REST API base URL (GitHub Enterprise, tests).
	APIURL string `mapstructure:"api_url"`

	// Concurrency bounds the number of parallel mark-as-done requests.
	Concurrency int `mapstructure:"concurrency"`

	LogFormat string `mapstructure:"log_format"`
	Debug     bool   `mapstructure:"debug"`
}

// DefaultPath returns $XDG_CONFIG_HOME/gh-notifications-cleanup/config.yaml,
// falling back to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", AppName, "config.yaml")
}

// Load reads the configuration file at path (DefaultPath when empty) and
// applies environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("token", "")
	v.SetDefault("api_url", "")
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("log_format", logging.FormatText)
	v.SetDefault("debug", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("token", TokenEnv); err != nil {
		return nil, fmt.Errorf("binding %s: %w", TokenEnv, err)
	}

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Token = strings.TrimSpace(cfg.Token)

	return cfg, nil
}

// Validate checks settings required to talk to GitHub. A concurrency below 1
// is reset to DefaultConcurrency and one above it is capped there, so the
// setting can only lower the number of requests in flight.
func (c *Config) Validate() error {
	if c.Concurrency < 1 || c.Concurrency > DefaultConcurrency {
		c.Concurrency = DefaultConcurrency
	}
	if !logging.ValidFormat(c.LogFormat) {
		return fmt.Errorf("invalid log format %q, must be one of: text, json", c.LogFormat)
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}
