package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gocharset/internal/logging"
	"github.com/yaklabco/gocharset/pkg/cache"
	"github.com/yaklabco/gocharset/pkg/config"
)

// defaultCacheMaxAge is how old an entry gets before "cache prune" drops it.
const defaultCacheMaxAge = 30 * 24 * time.Hour

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the detection cache",
		Long: `Detection results are cached per file, keyed by path, size, modification
time and the number of bytes inspected. A changed file is detected again
automatically; these commands only manage disk usage.`,
	}

	cmd.AddCommand(newCacheInfoCommand())
	cmd.AddCommand(newCachePruneCommand())
	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show where the cache lives and how big it is",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd, func(store *cache.Store) error {
				count, err := store.Count(commandContext(cmd))
				if err != nil {
					return err
				}

				size := "0 B"
				if info, err := os.Stat(store.Path()); err == nil {
					size = humanize.Bytes(uint64(info.Size()))
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "path:    %s\n", store.Path())
				fmt.Fprintf(out, "entries: %s\n", humanize.Comma(count))
				fmt.Fprintf(out, "size:    %s\n", size)
				return nil
			})
		},
	}
}

func newCachePruneCommand() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop entries not refreshed recently",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return usageError(fmt.Errorf("--older-than must be positive, got %s", olderThan))
			}
			return withCache(cmd, func(store *cache.Store) error {
				cutoff := time.Now().Add(-olderThan)
				removed, err := store.Prune(commandContext(cmd), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s entries last used before %s\n",
					humanize.Comma(removed), humanize.Time(cutoff))
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", defaultCacheMaxAge, "age after which entries are dropped")

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd, func(store *cache.Store) error {
				// Entries are stamped with the time they were written, so a
				// cutoff in the future matches all of them.
				removed, err := store.Prune(commandContext(cmd), time.Now().Add(time.Hour))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s entries\n", humanize.Comma(removed))
				return nil
			})
		},
	}
}

// withCache opens the configured cache, runs fn and closes the cache.
func withCache(cmd *cobra.Command, fn func(store *cache.Store) error) error {
	workDir, err := workingDir()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, workDir, &config.Config{})
	if err != nil {
		return err
	}

	path := cfg.Cache.Path
	if path == "" {
		if path, err = cache.DefaultPath(); err != nil {
			return fmt.Errorf("locate cache: %w", err)
		}
	}

	store, err := cache.Open(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Default().Warn("close detection cache", logging.FieldError, err)
		}
	}()

	return fn(store)
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError(err)
	}
	return nil
}
