package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/benchdef/pkg/suite"
)

// Cache backends selectable in the config file.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendOff   = "off"
)

// Config is the optional on-disk CLI configuration, read from
// ~/.config/benchdef/config.toml. Every field has a flag or a built-in
// default, so a missing file is not an error.
//
// Example:
//
//	[definitions]
//	files = ["resources/frameworks.yaml", "resources/frameworks_2024Q2.yaml"]
//	image_author = "myorg"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "72h"
//
//	[suites]
//	dirs = ["resources/benchmarks"]
//	folds = 5
type Config struct {
	Definitions DefinitionsConfig `toml:"definitions"`
	Suites      SuitesConfig      `toml:"suites"`
	Cache       CacheConfig       `toml:"cache"`
	Server      ServerConfig      `toml:"server"`
	Store       StoreConfig       `toml:"store"`
}

// DefinitionsConfig sets where definitions are loaded from and which
// defaults are filled in during resolution.
type DefinitionsConfig struct {
	Files        []string          `toml:"files"`
	ImageAuthor  string            `toml:"image_author"`
	ModulePrefix string            `toml:"module_prefix"`
	Dirs         map[string]string `toml:"dirs"`
}

// SuitesConfig sets suite search directories and constraint defaults.
// Zero values fall back to the standard constraint defaults.
type SuitesConfig struct {
	Dirs              []string `toml:"dirs"`
	MaxRuntimeSeconds int      `toml:"max_runtime_seconds"`
	Cores             int      `toml:"cores"`
	Folds             int      `toml:"folds"`
	MaxMemSizeMB      int      `toml:"max_mem_size_mb"`
	Seed              int64    `toml:"seed"`
}

// CacheConfig selects the resolution cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // file, redis, or off
	TTL           string `toml:"ttl"`     // Go duration, e.g. "72h"; empty keeps the defaults
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig sets serve command defaults.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig sets the snapshot store connection.
type StoreConfig struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// DefaultConfigPath returns the config file location using the XDG
// standard (~/.config/benchdef/config.toml).
func DefaultConfigPath() string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// LoadConfig reads a TOML config file. A missing file yields the zero
// config; a malformed one yields the zero config together with an error so
// the caller can warn without aborting.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return &Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return &Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "", CacheBackendFile, CacheBackendRedis, CacheBackendOff:
	default:
		return fmt.Errorf("unknown cache backend %q (must be file, redis, or off)", c.Cache.Backend)
	}
	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("invalid cache ttl %q: %w", c.Cache.TTL, err)
		}
	}
	return nil
}

// CacheTTL returns the configured cache TTL, or zero to keep the built-in
// per-artifact defaults. Validity is checked when the config is loaded.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0
	}
	return d
}

// SuiteDefaults converts configured constraint defaults into suite
// defaults, falling back to the standard values field by field.
func (c *Config) SuiteDefaults() suite.Defaults {
	d := suite.StandardDefaults()
	if c.Suites.MaxRuntimeSeconds != 0 {
		d.MaxRuntimeSeconds = c.Suites.MaxRuntimeSeconds
	}
	if c.Suites.Cores != 0 {
		d.Cores = c.Suites.Cores
	}
	if c.Suites.Folds != 0 {
		d.Folds = c.Suites.Folds
	}
	if c.Suites.MaxMemSizeMB != 0 {
		d.MaxMemSizeMB = c.Suites.MaxMemSizeMB
	}
	if c.Suites.Seed != 0 {
		d.Seed = c.Suites.Seed
	}
	return d
}

// suiteDirs returns the suite search directories: explicit flags win, then
// the config file, then the working directory.
func (c *CLI) suiteDirs(flagDirs []string) []string {
	if len(flagDirs) > 0 {
		return flagDirs
	}
	if len(c.Config.Suites.Dirs) > 0 {
		return c.Config.Suites.Dirs
	}
	return []string{"."}
}
