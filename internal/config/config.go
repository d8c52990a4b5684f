// Package config resolves taskboard settings from defaults, the project
// config file, the environment and command-line flags, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nick-dorsch/taskboard/internal/ids"
	"github.com/nick-dorsch/taskboard/internal/kv"
	"github.com/nick-dorsch/taskboard/internal/logging"
	"github.com/nick-dorsch/taskboard/internal/storage"
)

const (
	DefaultDir        = ".taskboard"
	DefaultConfigFile = "config.toml"
	DefaultHTTPAddr   = ":8000"
	DefaultDBFile     = "taskboard.db"
	DefaultJSONFile   = "tasks.json"
)

// Config is the resolved configuration.
type Config struct {
	// Dir is the project data directory holding config.toml and the
	// default storage files.
	Dir string `toml:"-"`

	Storage StorageConfig `toml:"storage"`
	IDs     IDConfig      `toml:"ids"`
	HTTP    HTTPConfig    `toml:"http"`
	Log     LogConfig     `toml:"log"`
}

type StorageConfig struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
	CurrentKey    string `toml:"current_key"`
	LegacyKey     string `toml:"legacy_key"`
}

type IDConfig struct {
	Format string `toml:"format"`
}

type HTTPConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dir: DefaultDir,
		Storage: StorageConfig{
			Backend:     kv.BackendSQLite,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "taskboard:",
			CurrentKey:  storage.DefaultCurrentKey,
			LegacyKey:   storage.DefaultLegacyKey,
		},
		IDs: IDConfig{Format: ids.KindUUID},
		HTTP: HTTPConfig{
			Addr:           DefaultHTTPAddr,
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// ConfigPath is the location of the project config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, DefaultConfigFile)
}

// StoragePath returns the configured storage file, or the backend's default
// file inside Dir.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Backend {
	case kv.BackendFile:
		return filepath.Join(c.Dir, DefaultJSONFile)
	default:
		return filepath.Join(c.Dir, DefaultDBFile)
	}
}

func (c *Config) KVOptions() kv.Options {
	return kv.Options{
		Backend:       c.Storage.Backend,
		Path:          c.StoragePath(),
		RedisAddr:     c.Storage.RedisAddr,
		RedisPassword: c.Storage.RedisPassword,
		RedisDB:       c.Storage.RedisDB,
		RedisPrefix:   c.Storage.RedisPrefix,
	}
}

func (c *Config) LoggingOptions() logging.Options {
	opts := logging.DefaultOptions()
	opts.Level = c.Log.Level
	opts.Format = c.Log.Format
	return opts
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case kv.BackendSQLite, kv.BackendRedis, kv.BackendFile, kv.BackendMemory:
	default:
		return fmt.Errorf("%w: %q", kv.ErrUnknownBackend, c.Storage.Backend)
	}
	if _, err := ids.New(c.IDs.Format); err != nil {
		return err
	}
	if strings.TrimSpace(c.Storage.CurrentKey) == "" || strings.TrimSpace(c.Storage.LegacyKey) == "" {
		return fmt.Errorf("storage keys must not be empty")
	}
	if c.Storage.CurrentKey == c.Storage.LegacyKey {
		return fmt.Errorf("current and legacy storage keys must differ: %q", c.Storage.CurrentKey)
	}
	return nil
}

// Write saves the file-backed settings to path as TOML.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
