package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Search   SearchConfig   `mapstructure:"search"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	UI       UIConfig       `mapstructure:"ui"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CatalogConfig controls where courses come from.
type CatalogConfig struct {
	// SeedFile is an optional TOML course list imported at startup.
	SeedFile  string        `mapstructure:"seed_file"`
	LoadDelay time.Duration `mapstructure:"load_delay"`
}

// SearchConfig tunes the catalog search box.
type SearchConfig struct {
	Debounce        time.Duration `mapstructure:"debounce"`
	SuggestDistance int           `mapstructure:"suggest_distance"`
}

// AuthConfig selects the authenticator. Mode is "mock" or "local".
type AuthConfig struct {
	Mode    string        `mapstructure:"mode"`
	Latency time.Duration `mapstructure:"latency"`
}

// StorageConfig selects the durable key-value area used for the session.
// Driver is "sqlite", "redis" or "memory".
type StorageConfig struct {
	Driver        string `mapstructure:"driver"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	SealToken     bool   `mapstructure:"seal_token"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

// Load reads configuration from file and env. Env var overrides use prefix EDUSHOP_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("EDUSHOP_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "edushop"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("EDUSHOP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "edushop", "edushop.db"))
	v.SetDefault("catalog.seed_file", "")
	v.SetDefault("catalog.load_delay", time.Second)
	v.SetDefault("search.debounce", 300*time.Millisecond)
	v.SetDefault("search.suggest_distance", 2)
	v.SetDefault("auth.mode", "mock")
	v.SetDefault("auth.latency", 1500*time.Millisecond)
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.seal_token", false)
	v.SetDefault("ui.currency_symbol", "₽")
}

func (c Config) validate() error {
	switch strings.ToLower(c.Auth.Mode) {
	case "mock", "local":
	default:
		return fmt.Errorf("config: unknown auth.mode %q", c.Auth.Mode)
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Search.Debounce < 0 || c.Catalog.LoadDelay < 0 || c.Auth.Latency < 0 {
		return fmt.Errorf("config: delays must not be negative")
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("EDUSHOP_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "edushop", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("catalog.seed_file", cfg.Catalog.SeedFile)
	v.Set("catalog.load_delay", cfg.Catalog.LoadDelay.String())
	v.Set("search.debounce", cfg.Search.Debounce.String())
	v.Set("search.suggest_distance", cfg.Search.SuggestDistance)
	v.Set("auth.mode", cfg.Auth.Mode)
	v.Set("auth.latency", cfg.Auth.Latency.String())
	v.Set("storage.driver", cfg.Storage.Driver)
	v.Set("storage.redis_addr", cfg.Storage.RedisAddr)
	v.Set("storage.redis_password", cfg.Storage.RedisPassword)
	v.Set("storage.redis_db", cfg.Storage.RedisDB)
	v.Set("storage.seal_token", cfg.Storage.SealToken)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
