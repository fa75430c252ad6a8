// Package config handles loading and validating astuto-sync configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure. It is built once at startup and
// passed by value into the reader, publisher and driver.
type Config struct {
	// Source identifies the GitHub repository whose issues are mirrored.
	Source SourceConfig `yaml:"source"`

	// Astuto configures the destination feedback board.
	Astuto AstutoConfig `yaml:"astuto"`

	// Sync tunes pagination, retries and pacing.
	Sync SyncConfig `yaml:"sync"`

	// Log configures log output.
	Log LogConfig `yaml:"log"`
}

// SourceConfig holds the GitHub source repository settings.
type SourceConfig struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`

	// State filters fetched issues: "open", "closed" or "all".
	State string `yaml:"state,omitempty"`

	// Token is optional; an unauthenticated client works but has a much
	// smaller rate-limit budget.
	Token string `yaml:"token,omitempty"`
}

// AstutoConfig holds the destination board connection settings.
type AstutoConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	BoardID int    `yaml:"board_id"`
}

// SyncConfig holds pagination, retry and pacing settings.
type SyncConfig struct {
	PageSize          int      `yaml:"page_size,omitempty"`
	RequestTimeout    Duration `yaml:"request_timeout,omitempty"`
	MaxRetries        int      `yaml:"max_retries,omitempty"`
	MaxRateLimitWaits int      `yaml:"max_rate_limit_waits,omitempty"`

	// CreateDelay is a politeness pause after each create-post call.
	CreateDelay Duration `yaml:"create_delay,omitempty"`

	// Schedule is a cron spec used by the schedule command only.
	Schedule string `yaml:"schedule,omitempty"`
}

// LogConfig holds log output settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // "console" or "json"
}

// Duration wraps time.Duration so YAML values like "15s" parse directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load reads a config file from the given path, expands environment variables
// in its content, applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadFromEnv builds a config purely from environment variables, for running
// without a config file.
func LoadFromEnv() *Config {
	var cfg Config
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return &cfg
}

// FindConfigPath searches for a config file in standard locations.
func FindConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	candidates := []string{
		".astuto-sync.yaml",
		".astuto-sync.yml",
		".github/astuto-sync.yaml",
		".github/astuto-sync.yml",
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}

	return ""
}

// applyEnvOverrides lets the secrets and repository identity come straight
// from the environment, so the tool runs with no config file at all.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ASTUTO_API_KEY"); v != "" {
		c.Astuto.APIKey = v
	}
	if v := os.Getenv("ASTUTO_BASE_URL"); v != "" {
		c.Astuto.BaseURL = v
	}
	if v := os.Getenv("ASTUTO_BOARD_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.Astuto.BoardID = id
		}
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.Source.Token = v
	}
	if v := os.Getenv("SOURCE_OWNER"); v != "" {
		c.Source.Owner = v
	}
	if v := os.Getenv("SOURCE_REPO"); v != "" {
		c.Source.Repo = v
	}
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	if c.Source.State == "" {
		c.Source.State = "all"
	}
	if c.Sync.PageSize == 0 {
		c.Sync.PageSize = 100
	}
	if c.Sync.RequestTimeout == 0 {
		c.Sync.RequestTimeout = Duration(15 * time.Second)
	}
	if c.Sync.MaxRetries == 0 {
		c.Sync.MaxRetries = 3
	}
	if c.Sync.MaxRateLimitWaits == 0 {
		c.Sync.MaxRateLimitWaits = 3
	}
	if c.Sync.CreateDelay == 0 {
		c.Sync.CreateDelay = Duration(1 * time.Second)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Source.Owner == "" || c.Source.Repo == "" {
		return fmt.Errorf("source owner and repo are required (set source.owner/source.repo or SOURCE_OWNER/SOURCE_REPO)")
	}
	switch c.Source.State {
	case "open", "closed", "all":
	default:
		return fmt.Errorf("invalid source state %q (expected open, closed or all)", c.Source.State)
	}
	if c.Astuto.BaseURL == "" {
		return fmt.Errorf("astuto base_url is required (set astuto.base_url or ASTUTO_BASE_URL)")
	}
	if c.Astuto.APIKey == "" {
		return fmt.Errorf("astuto api_key is required (set astuto.api_key or ASTUTO_API_KEY)")
	}
	if c.Astuto.BoardID == 0 {
		return fmt.Errorf("astuto board_id is required (set astuto.board_id or ASTUTO_BOARD_ID)")
	}
	if c.Sync.PageSize < 1 || c.Sync.PageSize > 100 {
		return fmt.Errorf("sync page_size must be between 1 and 100, got %d", c.Sync.PageSize)
	}
	return nil
}
