// Package cli implements the srcfetch command-line interface.
//
// The root command copies and unpacks the source archives of a pom.xml's
// dependencies:
//
//	srcfetch <destination> <pom.xml> [flags]
//
// Subcommands manage the dependency list cache and show the config file
// location. All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/srcfetch/pkg/buildinfo"
	"github.com/matzehuels/srcfetch/pkg/cache"
	"github.com/matzehuels/srcfetch/pkg/config"
	"github.com/matzehuels/srcfetch/pkg/mvn"
	"github.com/matzehuels/srcfetch/pkg/observability"
	"github.com/matzehuels/srcfetch/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// lockSubdir holds destination lock files inside the cache directory.
	lockSubdir = "locks"
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

	// Tool replaces the mvn executable. When nil, the binary from config or
	// --mvn is executed.
	Tool mvn.Runner

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.Logger.SetReportCaller(level <= log.DebugLevel)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.fetchCommand()
	root.Version = buildinfo.Version
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/srcfetch/config.toml)")

	observability.SetToolHooks(toolLogger{c.Logger})

	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	memo, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	tool := c.Tool
	if tool == nil {
		tool = mvn.ExecRunner{Binary: cfg.MvnBinary}
	}
	return pipeline.NewRunner(nil, tool, memo, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := config.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// loadConfig reads the file named by --config, or the default location.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	return config.LoadDefault()
}
