package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings holds client configuration
type Settings struct {
	URL           string        `mapstructure:"url"`
	Store         string        `mapstructure:"store"`      // auto | file | keyring | memory
	StorePath     string        `mapstructure:"store_path"` // credentials file location
	Timeout       time.Duration `mapstructure:"timeout"`
	RedirectDelay time.Duration `mapstructure:"redirect_delay"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"`
}

// NewViper creates a new viper instance with defaults and environment binding.
// An optional config.yaml in ~/.config/gramctl is merged when present.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("url", "")
	v.SetDefault("store", "auto")
	v.SetDefault("store_path", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("redirect_delay", 2*time.Second)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")

	v.SetEnvPrefix("GRAMCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "gramctl"))
	}

	return v
}

// LoadWithViper loads settings using a pre-configured viper instance.
// A missing config file is not an error.
func LoadWithViper(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &s, nil
}

// Validate validates the settings
func (s *Settings) Validate() error {
	switch s.Store {
	case "auto", "file", "keyring", "memory":
	default:
		return fmt.Errorf("store must be auto, file, keyring or memory")
	}

	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if s.RedirectDelay < 0 {
		return fmt.Errorf("redirect_delay cannot be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[s.LogLevel] {
		return fmt.Errorf("log_level must be debug, info, warn, or error")
	}

	if s.LogFormat != "json" && s.LogFormat != "text" {
		return fmt.Errorf("log_format must be json or text")
	}

	return nil
}
