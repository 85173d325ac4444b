package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Supported store backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// EnvPrefix is prepended to environment overrides, e.g. EXPENSE_TRACKER_STORE_PATH
const EnvPrefix = "EXPENSE_TRACKER"

// Config represents the application configuration
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Display DisplayConfig `mapstructure:"display"`
	Log     LogConfig     `mapstructure:"log"`
	Budget  string        `mapstructure:"budget"` // default for total-balance
}

// StoreConfig says where records are kept
type StoreConfig struct {
	Path    string `mapstructure:"path"`
	Backend string `mapstructure:"backend"` // "file", "sqlite" or "bolt"
}

// DisplayConfig controls how values are shown
type DisplayConfig struct {
	Currency   string `mapstructure:"currency"`
	DateFormat string `mapstructure:"date_format"` // Go layout for the current date
}

// LogConfig sets the logger level
type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", "expenses.json")
	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("display.currency", "Rs.")
	v.SetDefault("display.date_format", "02 January 2006")
	v.SetDefault("budget", "")
	v.SetDefault("log.level", "warn")
}

// LoadConfig loads configuration from file and environment variables.
// With an empty configPath, expense-tracker.toml is looked up in the working
// directory and the user config directory; a missing file means defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("expense-tracker")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/expense-tracker")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate checks that the store settings are usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	switch c.Store.Backend {
	case BackendFile, BackendSQLite, BackendBolt:
	default:
		return fmt.Errorf("unknown store.backend %q, use %s, %s or %s", c.Store.Backend, BackendFile, BackendSQLite, BackendBolt)
	}
	if c.Display.DateFormat == "" {
		return fmt.Errorf("display.date_format must not be empty")
	}
	return nil
}
