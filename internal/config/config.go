// Package config loads pursuit's settings from defaults, an optional YAML
// file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config is the complete pursuit configuration. LLM settings live in
// llm.LoadConfig.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Server  ServerConfig  `yaml:"server"`
	Gateway GatewayConfig `yaml:"gateway"`
	Log     LogConfig     `yaml:"log"`
}

// StoreConfig selects where prompt settings persist.
type StoreConfig struct {
	// Backend is sqlite, redis or memory.
	Backend   string `yaml:"backend"`
	DBPath    string `yaml:"db_path"`
	RedisAddr string `yaml:"redis_addr"`
	// Profile scopes every key, so several prompt setups can share a store.
	Profile string `yaml:"profile"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// GatewayConfig points the CLI at a running `pursuit serve` instead of
// calling the model in-process.
type GatewayConfig struct {
	URL string `yaml:"url"`
}

type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is console or json.
	Format string `yaml:"format"`
}

// DefaultConfig returns the built-in settings. home is used for the
// database path and may be empty.
func DefaultConfig(home string) *Config {
	dbPath := "pursuit.db"
	if home != "" {
		dbPath = filepath.Join(home, ".pursuit", "pursuit.db")
	}
	return &Config{
		Store: StoreConfig{
			Backend:   StoreSQLite,
			DBPath:    dbPath,
			RedisAddr: "localhost:6379",
			Profile:   "default",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Log: LogConfig{Level: "warn", Format: "console"},
	}
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreSQLite:
		if c.Store.DBPath == "" {
			return fmt.Errorf("store.db_path is required for the sqlite backend")
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis backend")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("store.backend must be sqlite, redis or memory, got %q", c.Store.Backend)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file named by
// PURSUIT_CONFIG (or ~/.pursuit/config.yaml when present) and PURSUIT_*
// environment variables.
func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	cfg := DefaultConfig(home)

	path := os.Getenv("PURSUIT_CONFIG")
	explicit := path != ""
	if !explicit && home != "" {
		path = filepath.Join(home, ".pursuit", "config.yaml")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads defaults overlaid with the YAML file at path.
func LoadFromFile(path string) (*Config, error) {
	home, _ := os.UserHomeDir()
	cfg := DefaultConfig(home)
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Store.DBPath, "PURSUIT_DB")
	set(&c.Store.Backend, "PURSUIT_STORE")
	set(&c.Store.Profile, "PURSUIT_PROFILE")
	set(&c.Store.RedisAddr, "PURSUIT_REDIS_ADDR")
	set(&c.Gateway.URL, "PURSUIT_GATEWAY_URL")
	set(&c.Server.Addr, "PURSUIT_ADDR")
	set(&c.Log.Level, "PURSUIT_LOG_LEVEL")
	set(&c.Log.Format, "PURSUIT_LOG_FORMAT")

	c.Store.Backend = strings.ToLower(c.Store.Backend)
	c.Log.Format = strings.ToLower(c.Log.Format)
}
