// Package config provides configuration loading and validation for the service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultBaseURL        = "https://portal.aiub.edu"
	DefaultPort           = 8080
	DefaultFetchTimeout   = 30 * time.Second
	DefaultMaxConcurrency = 4
	DefaultLogLevel       = "info"
)

// Config represents the service configuration. It can be loaded from a JSON or YAML
// file and is then overridden by environment variables.
type Config struct {
	// Portal
	BaseURL         string   `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	FetchTimeout    Duration `json:"fetch_timeout,omitempty" yaml:"fetch_timeout,omitempty"`
	MaxConcurrency  int      `json:"max_concurrency,omitempty" yaml:"max_concurrency,omitempty" validate:"gte=0,lte=64"`
	UseBrowser      bool     `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // render pages in headless Chrome
	WithdrawnGrades []string `json:"withdrawn_grades,omitempty" yaml:"withdrawn_grades,omitempty" validate:"dive,required"`

	// Server
	Port       int      `json:"port,omitempty" yaml:"port,omitempty" validate:"gte=0,lte=65535"`
	ClientURLs []string `json:"client_urls,omitempty" yaml:"client_urls,omitempty" validate:"dive,url"` // allowed CORS origins

	// Logging
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	LogFile  string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

// Duration is a time.Duration that reads "30s"-style strings or plain seconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.parse(s)
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("duration must be a string or a number of seconds: %w", err)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		FetchTimeout:   Duration(DefaultFetchTimeout),
		MaxConcurrency: DefaultMaxConcurrency,
		Port:           DefaultPort,
		LogLevel:       DefaultLogLevel,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables. Unset variables leave
// the field untouched.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORTAL_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("CLIENT_URL"); v != "" {
		c.ClientURLs = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("WITHDRAWN_GRADES"); v != "" {
		c.WithdrawnGrades = splitList(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: PORT must be an integer: %w", err)
		}
		c.Port = port
	}
	if v := os.Getenv("MAX_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: MAX_CONCURRENCY must be an integer: %w", err)
		}
		c.MaxConcurrency = n
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		if err := c.FetchTimeout.parse(v); err != nil {
			return fmt.Errorf("config error: FETCH_TIMEOUT: %w", err)
		}
	}
	if v := os.Getenv("USE_BROWSER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: USE_BROWSER must be a boolean: %w", err)
		}
		c.UseBrowser = b
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("config error: 'fetch_timeout' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxConcurrency == 0 {
		result.MaxConcurrency = defaults.MaxConcurrency
	}
	if result.FetchTimeout == 0 {
		result.FetchTimeout = defaults.FetchTimeout
	}

	// Slices
	if len(result.ClientURLs) == 0 {
		result.ClientURLs = defaults.ClientURLs
	}
	if len(result.WithdrawnGrades) == 0 {
		result.WithdrawnGrades = defaults.WithdrawnGrades
	}

	// Bool fields
	if !result.UseBrowser {
		result.UseBrowser = defaults.UseBrowser
	}

	return result
}

// Load reads the optional config file, applies environment overrides and defaults,
// and validates the result.
func Load(path string) (Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	merged := cfg.MergeWithDefaults(Default())
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
