// Package config loads appearances configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Bridge kinds.
const (
	BridgeHelper    = "helper"
	BridgeDirectory = "directory"
)

// Config is the root configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Registry RegistryConfig `mapstructure:"registry"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	History  HistoryConfig  `mapstructure:"history"`
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BridgeConfig selects and configures the native bridge.
type BridgeConfig struct {
	// Kind is "helper" or "directory".
	Kind string `mapstructure:"kind"`

	// Helper is the name or path of the helper executable.
	Helper string `mapstructure:"helper"`

	// SearchPath lists directories searched for Helper before $PATH.
	SearchPath []string `mapstructure:"search_path"`

	// Dir holds snapshot files for the directory bridge.
	Dir string `mapstructure:"dir"`
}

// RegistryConfig tunes the appearance registry.
type RegistryConfig struct {
	// UpdateBuffer is the capacity of the native update channel.
	UpdateBuffer int `mapstructure:"update_buffer"`
}

// DaemonConfig configures the gRPC daemon.
type DaemonConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// HistoryConfig configures the install log.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Bridge: BridgeConfig{
			Kind:   BridgeHelper,
			Helper: "vappearances-helper",
		},
		Registry: RegistryConfig{
			UpdateBuffer: 64,
		},
		Daemon: DaemonConfig{
			Host: "127.0.0.1",
			Port: 50177,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    filepath.Join(defaultDataDir(), "history.db"),
		},
	}
}

// Load reads configuration from path (or the default locations when empty)
// layered over defaults and APPEARANCES_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("APPEARANCES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	switch c.Bridge.Kind {
	case BridgeHelper:
		if strings.TrimSpace(c.Bridge.Helper) == "" {
			return errors.New("bridge.helper is required for the helper bridge")
		}
	case BridgeDirectory:
		if strings.TrimSpace(c.Bridge.Dir) == "" {
			return errors.New("bridge.dir is required for the directory bridge")
		}
	default:
		return fmt.Errorf("unknown bridge kind %q", c.Bridge.Kind)
	}
	if c.Daemon.Port < 0 || c.Daemon.Port > 65535 {
		return fmt.Errorf("daemon.port out of range: %d", c.Daemon.Port)
	}
	if c.Registry.UpdateBuffer < 0 {
		return fmt.Errorf("registry.update_buffer must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("bridge.kind", cfg.Bridge.Kind)
	v.SetDefault("bridge.helper", cfg.Bridge.Helper)
	v.SetDefault("bridge.search_path", cfg.Bridge.SearchPath)
	v.SetDefault("bridge.dir", cfg.Bridge.Dir)
	v.SetDefault("registry.update_buffer", cfg.Registry.UpdateBuffer)
	v.SetDefault("daemon.host", cfg.Daemon.Host)
	v.SetDefault("daemon.port", cfg.Daemon.Port)
	v.SetDefault("history.enabled", cfg.History.Enabled)
	v.SetDefault("history.path", cfg.History.Path)
}

func defaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "appearances")
	}
	return "."
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "appearances")
	}
	return "."
}
