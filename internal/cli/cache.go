package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/structio/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clean the local conversion cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := c.cacheRoot()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
		c.fileCacheCommand("stats", "Show entry count and size", func(fc *cache.FileCache) error {
			st, err := fc.Stats(false)
			if err != nil {
				return err
			}
			printKeyValue("Directory", fc.Dir())
			printKeyValue("Entries", humanize.Comma(int64(st.Entries)))
			printKeyValue("Size", humanize.Bytes(uint64(st.Bytes)))
			printKeyValue("Expired", humanize.Comma(int64(st.Expired)))
			return nil
		}),
		c.fileCacheCommand("prune", "Remove expired entries", func(fc *cache.FileCache) error {
			st, err := fc.Stats(true)
			if err != nil {
				return err
			}
			printSuccess("Removed %d expired entries", st.Expired)
			printDetail("%d entries (%s) remain", st.Entries, humanize.Bytes(uint64(st.Bytes)))
			return nil
		}),
		c.fileCacheCommand("clear", "Remove every cached conversion, summary and render", func(fc *cache.FileCache) error {
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %s", fc.Dir())
			return nil
		}),
	)
	return cmd
}

// fileCacheCommand builds a subcommand that only applies to the file
// backend. Other backends are reported and skipped.
func (c *CLI) fileCacheCommand(use, short string, run func(*cache.FileCache) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ch, err := c.newCache(cmd.Context())
			if err != nil {
				return err
			}
			defer ch.Close()
			fc, ok := ch.(*cache.FileCache)
			if !ok {
				printWarning("cache %s only works with the file backend", use)
				return nil
			}
			return run(fc)
		},
	}
}

// cacheRoot is the configured cache directory, or the per-user default.
func (c *CLI) cacheRoot() (string, error) {
	if dir := c.config().Cache.Dir; dir != "" {
		return dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}
