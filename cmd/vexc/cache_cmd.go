package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recera/vexc/cmd/vexc/internal/config"
	"github.com/recera/vexc/cmd/vexc/internal/ui"
	"github.com/recera/vexc/internal/cache"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the compile cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show compile cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close()

			stats := c.GetStats()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Title("Compile cache"))
			fmt.Fprintf(out, "%-10s %s\n", "dir", c.Dir())
			fmt.Fprintf(out, "%-10s %d\n", "entries", stats.EntryCount)
			fmt.Fprintf(out, "%-10s %s\n", "size", formatBytes(stats.TotalSize))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached render function",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Cleared %s", c.Dir()))
			return nil
		},
	})

	return cmd
}

func openCache() (*cache.Cache, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cacheCfg, err := cfg.CacheConfig()
	if err != nil {
		return nil, err
	}
	return cache.New(cacheCfg)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strings.TrimSpace(fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp]))
}
