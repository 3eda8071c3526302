// Package cli implements the structio command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/structio/pkg/blocktype"
	"github.com/matzehuels/structio/pkg/buildinfo"
	"github.com/matzehuels/structio/pkg/cache"
	"github.com/matzehuels/structio/pkg/codec"
	"github.com/matzehuels/structio/pkg/pipeline"
)

const appName = "structio"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	typesPath  string
	noCache    bool

	cfg *Config
	reg *blocktype.Registry
}

// New creates a CLI writing logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "structio reads, writes and converts versioned building files",
		Long:         `structio encodes and decodes buildings (roots plus typed, linked blocks) in the versioned binary structure format, converts between format versions and JSON, and inspects or renders existing files.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/structio/config.toml)")
	root.PersistentFlags().StringVar(&c.typesPath, "types", "", "block type table (TOML) replacing the built-in one")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the artifact cache")

	root.AddCommand(c.decodeCommand())
	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.typesCommand())
	root.AddCommand(c.exampleCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			c.cfg = defaultConfig()
			return nil
		}
		path = filepath.Join(dir, "config.toml")
	}
	cfg, err := readConfig(path, explicit, c.Logger)
	if err != nil {
		return err
	}
	if c.typesPath != "" {
		cfg.Types = c.typesPath
	}
	c.cfg = cfg
	return nil
}

// config returns the loaded configuration, or defaults outside a command run.
func (c *CLI) config() *Config {
	if c.cfg == nil {
		c.cfg = defaultConfig()
	}
	return c.cfg
}

// registry returns the block type table named by --types or the config,
// falling back to the built-in table.
func (c *CLI) registry() (*blocktype.Registry, error) {
	if c.reg != nil {
		return c.reg, nil
	}
	path := c.config().Types
	if path == "" {
		c.reg = blocktype.Default()
		return c.reg, nil
	}
	reg, err := blocktype.LoadFile(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded type table", "path", path, "types", len(reg.Types()))
	c.reg = reg
	return reg, nil
}

func (c *CLI) codecOptions() ([]codec.Option, error) {
	reg, err := c.registry()
	if err != nil {
		return nil, err
	}
	return []codec.Option{codec.WithRegistry(reg), codec.WithLogger(c.Logger)}, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	reg, err := c.registry()
	if err != nil {
		return nil, err
	}
	ch, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if p := c.config().Cache.Prefix; p != "" {
		keyer = cache.NewScopedKeyer(nil, p)
	}
	return pipeline.NewRunner(ch, keyer, reg, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.config().Cache
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	case "", "file":
		dir, err := c.cacheRoot()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
	return nil, fmt.Errorf("unknown cache backend %q (want file, redis or none)", cfg.Backend)
}

// version resolves the --version flag against the configured default.
func (c *CLI) version(cmd *cobra.Command, flag int) (uint8, error) {
	v := c.config().Version
	if cmd.Flags().Changed("version") {
		v = flag
	}
	return validateVersion(v)
}

func (c *CLI) compress(cmd *cobra.Command, flag bool) bool {
	if cmd.Flags().Changed("compress") {
		return flag
	}
	return c.config().Compress
}

// cacheDir returns the cache directory using XDG standard (~/.cache/structio/).
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

// configDir returns $XDG_CONFIG_HOME/structio or ~/.config/structio.
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

// dataDir returns $XDG_DATA_HOME/structio or ~/.local/share/structio.
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
