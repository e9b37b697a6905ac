package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"streamfinder/internal/cache"
	"streamfinder/internal/logging"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the response cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache contents by namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store cache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Backend:          %s\n", stats.Backend)
				fmt.Fprintf(out, "Location:         %s\n", stats.Location)
				fmt.Fprintf(out, "Discovery keys:   %d\n", stats.DiscoveryKeys)
				fmt.Fprintf(out, "Movies:           %d\n", stats.Items)
				fmt.Fprintf(out, "Streaming links:  %d\n", stats.StreamingLinks)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached discovery result, movie and link",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store cache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d discovery keys and %d movies from %s cache at %s\n",
					stats.DiscoveryKeys, stats.Items, stats.Backend, stats.Location)
				return nil
			})
		},
	}
}

// withStore opens only the cache backend, without the API clients.
func (c *commandContext) withStore(fn func(cache.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	store, err := cache.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()
	return fn(store)
}
