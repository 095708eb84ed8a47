// Package cli implements the mutuals command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mutuals/internal/config"
	"github.com/matzehuels/mutuals/pkg/buildinfo"
	"github.com/matzehuels/mutuals/pkg/cache"
	"github.com/matzehuels/mutuals/pkg/pipeline"
	"github.com/matzehuels/mutuals/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mutuals"

	// keyScope versions cache keys; bump it when the cached adjacency changes shape.
	keyScope = "v1"
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
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Mutuals maps the people you share servers with",
		Long:         `Mutuals turns a membership snapshot (servers, their members, and the mutual servers you share with them) into an interactive graph: tap anyone to see exactly who and what they connect to.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mutuals/config.toml)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config or the default path.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil
		}
		path = p
	}
	cfg, undecoded, err := config.Load(path)
	if err != nil {
		return err
	}
	for _, key := range undecoded {
		c.Logger.Warn("unknown config key", "key", key, "file", path)
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The returned close
// function releases the cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, func()) {
	store := c.newCache(ctx, noCache)
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(cache.NewDefaultKeyer(), keyScope), c.Logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, func() { _ = store.Close() }
}

// newCache opens the configured cache backend. Backends that cannot be
// reached degrade to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	cfg := c.Config.Cache
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache()
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNullCache()
		}
		return rc
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Inputs
// =============================================================================

// buildFlags are the flags shared by every command that builds a model.
type buildFlags struct {
	separator    string
	keepSuffixes bool
	noCache      bool
	refresh      bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.separator, "separator", "", "member id suffix separator (default from config, \"#\")")
	cmd.Flags().BoolVar(&f.keepSuffixes, "keep-suffixes", false, "do not strip member id suffixes")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "rebuild even if a cached model exists")
}

// buildOptions merges flags over the config.
func (c *CLI) buildOptions(f buildFlags) pipeline.BuildOptions {
	opts := pipeline.BuildOptions{
		Separator:    c.Config.Membership.Separator,
		KeepSuffixes: c.Config.Membership.KeepSuffixes || f.keepSuffixes,
		Layout:       c.Config.Layout.Options(),
		Refresh:      f.refresh,
	}
	if f.separator != "" {
		opts.Separator = f.separator
	}
	return opts
}

// openSource resolves a file path or MongoDB URI.
func (c *CLI) openSource(loc string) source.Source {
	return source.Open(loc, c.Config.Source.Options())
}

// build loads and builds the model for loc.
func (c *CLI) build(ctx context.Context, loc string, f buildFlags) (*pipeline.Runner, *pipeline.Result, func(), error) {
	runner, closeFn := c.newRunner(ctx, f.noCache)
	res, err := runner.Build(ctx, c.openSource(loc), c.buildOptions(f))
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return runner, res, closeFn, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mutuals/).
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
