package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/nick-dorsch/taskboard/internal/kv"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "TASKBOARD_"

// Flags are the global command-line options. Register binds them to a
// FlagSet; only flags the user actually set override lower layers.
type Flags struct {
	Dir       string
	Backend   string
	DBPath    string
	RedisAddr string
	IDFormat  string
	Addr      string
	LogLevel  string
	LogFormat string
	Verbose   bool
	Ephemeral bool

	set map[string]bool
}

func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Dir, "dir", DefaultDir, "Project data directory")
	fs.StringVar(&f.Backend, "backend", "", "Storage backend (sqlite, redis, file, memory)")
	fs.StringVar(&f.DBPath, "db-path", "", "Path to the storage file")
	fs.StringVar(&f.RedisAddr, "redis-addr", "", "Redis address for the redis backend")
	fs.StringVar(&f.IDFormat, "id-format", "", "Task id format (uuid, nanoid)")
	fs.StringVar(&f.Addr, "addr", "", "HTTP listen address")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFormat, "log-format", "", "Log format (text, json, logfmt)")
	fs.BoolVar(&f.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&f.Ephemeral, "ephemeral", false, "Keep the board in memory only")
}

func (f *Flags) isSet(name string) bool {
	return f.set[name]
}

// Parse parses args into f and records which flags were given.
func (f *Flags) Parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return nil
}

// Load resolves the configuration. flags must already be parsed; a nil
// flags value applies no overrides.
func Load(flags *Flags) (*Config, error) {
	if flags == nil {
		flags = &Flags{}
	}
	env, err := readEnv(".env")
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if v := env(EnvPrefix + "DIR"); v != "" {
		cfg.Dir = v
	}
	if flags.isSet("dir") {
		cfg.Dir = flags.Dir
	}

	if err := loadConfigFile(cfg, cfg.ConfigPath()); err != nil {
		return nil, err
	}
	if err := loadFromEnv(cfg, env); err != nil {
		return nil, err
	}
	applyFlags(cfg, flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFile decodes a TOML file over cfg. A missing file is fine.
func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load config file %s: %w", path, err)
}

// readEnv returns a lookup over the process environment, falling back to
// values from a dotenv file. The process environment always wins.
func readEnv(path string) (func(string) string, error) {
	dotenv, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		dotenv = map[string]string{}
	}
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}, nil
}

func loadFromEnv(cfg *Config, env func(string) string) error {
	str := func(name string, dst *string) {
		if v := env(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	str("BACKEND", &cfg.Storage.Backend)
	str("STORAGE_PATH", &cfg.Storage.Path)
	str("REDIS_ADDR", &cfg.Storage.RedisAddr)
	str("REDIS_PASSWORD", &cfg.Storage.RedisPassword)
	str("REDIS_PREFIX", &cfg.Storage.RedisPrefix)
	str("CURRENT_KEY", &cfg.Storage.CurrentKey)
	str("LEGACY_KEY", &cfg.Storage.LegacyKey)
	str("ID_FORMAT", &cfg.IDs.Format)
	str("ADDR", &cfg.HTTP.Addr)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	if v := env(EnvPrefix + "REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sREDIS_DB %q: %w", EnvPrefix, v, err)
		}
		cfg.Storage.RedisDB = db
	}
	if v := env(EnvPrefix + "CORS_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	return nil
}

func applyFlags(cfg *Config, f *Flags) {
	if f.isSet("backend") {
		cfg.Storage.Backend = f.Backend
	}
	if f.isSet("db-path") {
		cfg.Storage.Path = f.DBPath
	}
	if f.isSet("redis-addr") {
		cfg.Storage.RedisAddr = f.RedisAddr
	}
	if f.isSet("id-format") {
		cfg.IDs.Format = f.IDFormat
	}
	if f.isSet("addr") {
		cfg.HTTP.Addr = f.Addr
	}
	if f.isSet("log-level") {
		cfg.Log.Level = f.LogLevel
	}
	if f.isSet("log-format") {
		cfg.Log.Format = f.LogFormat
	}
	if f.Verbose {
		cfg.Log.Level = "debug"
	}
	if f.Ephemeral {
		cfg.Storage.Backend = kv.BackendMemory
	}
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
