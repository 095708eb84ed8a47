package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mutuals/internal/config"
	"github.com/matzehuels/mutuals/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the model and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached models and renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd.OutOrStdout())
			store := c.newCache(cmd.Context(), false)
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				p.info("Cache is disabled")
				return nil
			}
			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			if count == 0 {
				p.info("Cache is empty")
				return nil
			}
			p.success("Cleared %d cached entries", count)
			switch s := store.(type) {
			case *cache.FileCache:
				p.detail("Directory: %s", s.Dir())
			case *cache.RedisCache:
				p.detail("Redis: %s (prefix %q)", c.Config.Cache.RedisAddr, c.Config.Cache.RedisPrefix)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend == config.BackendRedis {
				fmt.Fprintf(cmd.OutOrStdout(), "redis://%s/%d\n", c.Config.Cache.RedisAddr, c.Config.Cache.RedisDB)
				return nil
			}
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
