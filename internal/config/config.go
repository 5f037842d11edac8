package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Viper keys for the persisted console settings. Absence of a key means
// "unset", never an error.
const (
	KeyAPIEndpoint = "api_endpoint"
	KeyAPIKey      = "api_key"
	KeyAWSRegion   = "aws_region"
	KeyDebugMode   = "debug_mode"
)

const (
	DefaultRegion = "us-east-1"
	// The original console boots with debug logging on until told otherwise.
	DefaultDebug = true
)

// Settings is an immutable snapshot of the console configuration. Consumers
// hold a value, not a pointer; updating settings produces a new value via
// Store.Save and callers rebuild whatever depends on it.
type Settings struct {
	APIEndpoint string
	APIKey      string
	Region      string
	Debug       bool
}

// Configured reports whether the settings are complete enough to reach the
// remote API.
func (s Settings) Configured() bool {
	return s.APIEndpoint != "" && s.APIKey != ""
}

// Validate checks the settings as entered by the user before they are saved.
func (s Settings) Validate() error {
	if s.APIEndpoint == "" {
		return fmt.Errorf("api_endpoint: required")
	}
	if !strings.HasPrefix(s.APIEndpoint, "http://") && !strings.HasPrefix(s.APIEndpoint, "https://") {
		return fmt.Errorf("api_endpoint: must start with http:// or https://")
	}
	if s.APIKey == "" {
		return fmt.Errorf("api_key: required")
	}
	return nil
}

// MaskedKey returns the API key suitable for display: configured keys are
// never echoed back.
func (s Settings) MaskedKey() string {
	if s.APIKey == "" {
		return ""
	}
	return "***configured***"
}

// Store persists Settings in a YAML file managed by viper, with environment
// overrides (CONSOLE_API_ENDPOINT and friends) applied on load.
type Store struct {
	v    *viper.Viper
	path string
}

// NewStore builds a Store against the given file path. An empty path falls
// back to CONSOLE_CONFIG, then to console.yaml in the working directory.
func NewStore(path string) *Store {
	if path == "" {
		path = os.Getenv("CONSOLE_CONFIG")
	}
	if path == "" {
		path = "console.yaml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault(KeyAPIEndpoint, "")
	v.SetDefault(KeyAPIKey, "")
	v.SetDefault(KeyAWSRegion, DefaultRegion)
	v.SetDefault(KeyDebugMode, DefaultDebug)
	v.SetEnvPrefix("CONSOLE")
	v.AutomaticEnv()

	return &Store{v: v, path: path}
}

// Load reads the settings file if it exists. A missing file is not an error:
// it simply yields the defaults, and the caller surfaces a "not configured"
// notice instead.
func (s *Store) Load() (Settings, error) {
	if err := s.v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(s.path); os.IsNotExist(statErr) {
			return s.current(), nil
		}
		return Settings{}, fmt.Errorf("read config %s: %w", s.path, err)
	}
	return s.current(), nil
}

// Save validates and persists new settings, returning the value now in
// effect.
func (s *Store) Save(in Settings) (Settings, error) {
	in.APIEndpoint = strings.TrimSpace(in.APIEndpoint)
	in.APIKey = strings.TrimSpace(in.APIKey)
	if in.Region == "" {
		in.Region = DefaultRegion
	}
	if err := in.Validate(); err != nil {
		return Settings{}, err
	}

	s.v.Set(KeyAPIEndpoint, in.APIEndpoint)
	s.v.Set(KeyAPIKey, in.APIKey)
	s.v.Set(KeyAWSRegion, in.Region)
	s.v.Set(KeyDebugMode, in.Debug)

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Settings{}, fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return Settings{}, fmt.Errorf("write config %s: %w", s.path, err)
	}
	return in, nil
}

// Clear resets every setting to its default and persists the reset, matching
// the console's "clear all settings" action.
func (s *Store) Clear() (Settings, error) {
	s.v.Set(KeyAPIEndpoint, "")
	s.v.Set(KeyAPIKey, "")
	s.v.Set(KeyAWSRegion, DefaultRegion)
	s.v.Set(KeyDebugMode, false)
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return Settings{}, fmt.Errorf("write config %s: %w", s.path, err)
	}
	return s.current(), nil
}

func (s *Store) current() Settings {
	return Settings{
		APIEndpoint: s.v.GetString(KeyAPIEndpoint),
		APIKey:      s.v.GetString(KeyAPIKey),
		Region:      s.v.GetString(KeyAWSRegion),
		Debug:       s.v.GetBool(KeyDebugMode),
	}
}
