// Package cli implements the benchdef command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/benchdef/pkg/buildinfo"
	"github.com/matzehuels/benchdef/pkg/cache"
	"github.com/matzehuels/benchdef/pkg/pipeline"
	"github.com/matzehuels/benchdef/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "benchdef"

	// defaultDefinitionsFile is consulted when neither flags nor the config
	// file name any definition sources.
	defaultDefinitionsFile = "resources/frameworks.yaml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config
}

// New creates a new CLI instance with a default logger. The config file is
// read eagerly so every command sees the same settings; a missing or broken
// file leaves the zero config in place.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{Logger: newLogger(w, level)}
	cfg, err := LoadConfig(DefaultConfigPath())
	if err != nil {
		c.Logger.Warn("ignoring config file", "path", DefaultConfigPath(), "err", err)
	}
	c.Config = cfg
	return c
}

// SetLogLevel updates the logger's level. At debug level the resolver and
// cache hooks are wired up so pipeline internals become visible.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level == log.DebugLevel {
		c.wireDebugHooks()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "benchdef",
		Short:        "Benchdef resolves AutoML framework definitions",
		Long:         `Benchdef loads hierarchical framework definition files, resolves inheritance into a complete catalog, and serves the result as JSON exports, diagrams, snapshots, and an HTTP API.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.getCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.suiteCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.snapshotsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(backend, nil, c.Logger), nil
}

// newCache picks the cache backend configured for the CLI. Redis failures
// are surfaced; an unresolvable home directory degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == CacheBackendOff {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.Backend == CacheBackendRedis {
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Config.Cache.RedisAddr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
		})
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newStore creates the snapshot store selected by flag or config. With no
// kind and no configured MongoDB URI it returns a nil store, which disables
// snapshot features.
func (c *CLI) newStore(ctx context.Context, kind, mongoURI string) (store.Store, error) {
	if kind == "" && c.Config.Store.MongoURI != "" {
		kind = "mongo"
	}
	switch kind {
	case "":
		return nil, nil
	case "memory":
		return store.NewMemoryStore(), nil
	case "mongo":
		uri := mongoURI
		if uri == "" {
			uri = c.Config.Store.MongoURI
		}
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        uri,
			Database:   c.Config.Store.Database,
			Collection: c.Config.Store.Collection,
		})
	default:
		return nil, fmt.Errorf("unknown store %q (must be memory or mongo)", kind)
	}
}

// requireStore opens the configured snapshot store or fails.
func (c *CLI) requireStore(ctx context.Context, kind, mongoURI string) (store.Store, error) {
	st, err := c.newStore(ctx, kind, mongoURI)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("no snapshot store configured (use --store or the config file)")
	}
	return st, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/benchdef/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/benchdef/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// resolveFlags are the flags shared by every command that loads and
// resolves definitions.
type resolveFlags struct {
	files        []string
	imageAuthor  string
	modulePrefix string
	dirs         map[string]string
	refresh      bool
	noCache      bool
}

// register binds the shared resolution flags to cmd.
func (f *resolveFlags) register(cmd *cobra.Command) {
	f.registerSources(cmd)
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "re-resolve even when cached")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the resolution cache")
}

// registerSources binds only the definition source and default flags, for
// commands where cache control makes no sense.
func (f *resolveFlags) registerSources(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.files, "file", "f", nil, "definition file or directory (repeatable)")
	cmd.Flags().StringVar(&f.imageAuthor, "image-author", "", "docker namespace for defaulted images")
	cmd.Flags().StringVar(&f.modulePrefix, "module-prefix", "", "prefix for defaulted module paths")
	cmd.Flags().StringToStringVar(&f.dirs, "dir", nil, "setup command directory (key=path, repeatable)")
}

// pipelineOptions merges flag values over config file values. Flags win,
// the config file fills gaps, and built-in defaults cover the rest.
func (c *CLI) pipelineOptions(f *resolveFlags) pipeline.Options {
	opts := pipeline.Options{
		Paths:        f.files,
		ImageAuthor:  f.imageAuthor,
		ModulePrefix: f.modulePrefix,
		Dirs:         f.dirs,
		Refresh:      f.refresh,
		Logger:       c.Logger,
		CacheTTL:     c.Config.CacheTTL(),
	}
	if len(opts.Paths) == 0 {
		opts.Paths = c.Config.Definitions.Files
	}
	if len(opts.Paths) == 0 {
		opts.Paths = []string{defaultDefinitionsFile}
	}
	if opts.ImageAuthor == "" {
		opts.ImageAuthor = c.Config.Definitions.ImageAuthor
	}
	if opts.ModulePrefix == "" {
		opts.ModulePrefix = c.Config.Definitions.ModulePrefix
	}
	if len(opts.Dirs) == 0 {
		opts.Dirs = c.Config.Definitions.Dirs
	}
	return opts
}

// runPipeline resolves a catalog with the shared flags applied.
func (c *CLI) runPipeline(ctx context.Context, f *resolveFlags) (*pipeline.Result, error) {
	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()
	return runner.Execute(ctx, c.pipelineOptions(f))
}
