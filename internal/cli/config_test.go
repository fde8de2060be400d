package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/benchdef/pkg/suite"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfig() returned nil config")
	}
	if cfg.Cache.Backend != "" {
		t.Errorf("missing file should yield zero config, got backend %q", cfg.Cache.Backend)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error: %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfig(\"\") returned nil config")
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[definitions]
files = ["a.yaml", "b.yaml"]
image_author = "myorg"
module_prefix = "frameworks"

[definitions.dirs]
input = "/data/in"
output = "/data/out"

[cache]
backend = "redis"
redis_addr = "cache.internal:6379"
ttl = "72h"

[suites]
dirs = ["resources/benchmarks"]
folds = 5
seed = 42

[server]
addr = "0.0.0.0:9000"

[store]
mongo_uri = "mongodb://db:27017"
database = "catalogs"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if got := len(cfg.Definitions.Files); got != 2 {
		t.Errorf("Definitions.Files count = %d, want 2", got)
	}
	if cfg.Definitions.ImageAuthor != "myorg" {
		t.Errorf("ImageAuthor = %q, want myorg", cfg.Definitions.ImageAuthor)
	}
	if cfg.Definitions.Dirs["input"] != "/data/in" {
		t.Errorf("Dirs[input] = %q, want /data/in", cfg.Definitions.Dirs["input"])
	}
	if cfg.Cache.Backend != CacheBackendRedis {
		t.Errorf("Cache.Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Cache.RedisAddr != "cache.internal:6379" {
		t.Errorf("RedisAddr = %q", cfg.Cache.RedisAddr)
	}
	if got := cfg.CacheTTL(); got != 72*time.Hour {
		t.Errorf("CacheTTL() = %v, want 72h", got)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.MongoURI != "mongodb://db:27017" {
		t.Errorf("Store.MongoURI = %q", cfg.Store.MongoURI)
	}
}

func TestCacheTTLUnset(t *testing.T) {
	cfg := &Config{}
	if got := cfg.CacheTTL(); got != 0 {
		t.Errorf("CacheTTL() = %v, want 0 for empty config", got)
	}
}

func TestLoadConfigBadTTL(t *testing.T) {
	path := writeConfig(t, `
[cache]
ttl = "three days"
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() should reject an unparseable ttl")
	}
}

func TestLoadConfigBadBackend(t *testing.T) {
	path := writeConfig(t, `
[cache]
backend = "memcached"
`)
	cfg, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig() should reject unknown cache backend")
	}
	if cfg == nil {
		t.Fatal("LoadConfig() should still return a usable zero config")
	}
	if cfg.Cache.Backend != "" {
		t.Errorf("bad file should yield zero config, got backend %q", cfg.Cache.Backend)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfig(t, "definitions = not valid toml [")
	cfg, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig() should report malformed TOML")
	}
	if cfg == nil {
		t.Fatal("LoadConfig() should still return a usable zero config")
	}
}

func TestSuiteDefaults(t *testing.T) {
	cfg := &Config{}
	got := cfg.SuiteDefaults()
	want := suite.StandardDefaults()
	if got != want {
		t.Errorf("zero config defaults = %+v, want %+v", got, want)
	}

	cfg.Suites.Folds = 5
	cfg.Suites.MaxRuntimeSeconds = 3600
	got = cfg.SuiteDefaults()
	if got.Folds != 5 {
		t.Errorf("Folds = %d, want 5", got.Folds)
	}
	if got.MaxRuntimeSeconds != 3600 {
		t.Errorf("MaxRuntimeSeconds = %d, want 3600", got.MaxRuntimeSeconds)
	}
	if got.Cores != suite.DefaultCores {
		t.Errorf("Cores = %d, want default %d", got.Cores, suite.DefaultCores)
	}
}

func TestSuiteDirsPrecedence(t *testing.T) {
	c := &CLI{Config: &Config{}}
	c.Config.Suites.Dirs = []string{"from-config"}

	if got := c.suiteDirs([]string{"from-flag"}); got[0] != "from-flag" {
		t.Errorf("flag dirs should win, got %v", got)
	}
	if got := c.suiteDirs(nil); got[0] != "from-config" {
		t.Errorf("config dirs should be used, got %v", got)
	}

	c.Config.Suites.Dirs = nil
	if got := c.suiteDirs(nil); got[0] != "." {
		t.Errorf("fallback should be the working directory, got %v", got)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	want := filepath.Join("/tmp/custom-config", appName, "config.toml")
	if got := DefaultConfigPath(); got != want {
		t.Errorf("DefaultConfigPath() = %q, want %q", got, want)
	}
}
