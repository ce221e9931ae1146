package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/srcfetch/pkg/config"
	"github.com/matzehuels/srcfetch/pkg/maven"
	"github.com/matzehuels/srcfetch/pkg/pipeline"
)

// fetchFlags holds the root command's flags.
type fetchFlags struct {
	repoRoot string
	mvn      string
	timeout  time.Duration
	offline  bool
	refresh  bool
	noCache  bool
}

// fetchCommand creates the root command, which runs the pipeline.
func (c *CLI) fetchCommand() *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "srcfetch <destination> <pom.xml>",
		Short: "Copy and unpack the sources of a Maven project's dependencies",
		Long: `srcfetch reads a pom.xml, asks mvn for the full dependency list while mvn
downloads the "-sources.jar" archives, then copies every archive found in the
local Maven repository into <destination> and unpacks it there.

Archives holding absolute paths or ".." segments are refused.`,
		Example: `  srcfetch ./deps-src ./pom.xml
  srcfetch -m /opt/m2 --offline ./deps-src ./pom.xml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg)
			return c.runFetch(cmd, args[0], args[1], cfg, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.repoRoot, "repo-root", "m", "", "Maven home directory holding repository/ (default ~/.m2)")
	cmd.Flags().StringVar(&flags.mvn, "mvn", "", "mvn executable (default \"mvn\")")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", pipeline.DefaultTimeout, "time limit for the mvn invocations")
	cmd.Flags().BoolVar(&flags.offline, "offline", false, "skip mvn and use only the dependencies declared in pom.xml")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore the cached dependency list")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the dependency list cache")

	return cmd
}

// apply overlays flags the user set explicitly onto cfg.
func (f fetchFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("repo-root") {
		cfg.RepoRoot = f.repoRoot
	}
	if set("mvn") {
		cfg.MvnBinary = f.mvn
	}
	if set("timeout") {
		cfg.Timeout = config.Duration{Duration: f.timeout}
	}
	if set("offline") {
		cfg.Offline = f.offline
	}
}

func (c *CLI) runFetch(cmd *cobra.Command, dest, pom string, cfg config.Config, flags fetchFlags) error {
	runner, err := c.newRunner(cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, runErr := runner.Run(cmd.Context(), pipeline.Options{
		Destination: dest,
		Descriptor:  pom,
		RepoRoot:    cfg.RepoRoot,
		Offline:     cfg.Offline,
		Timeout:     cfg.Timeout.Duration,
		CacheTTL:    cfg.CacheTTL.Duration,
		Refresh:     flags.refresh,
		LockDir:     lockDir(),
	})
	if res == nil {
		return runErr
	}
	prog.done("Run finished", "archives", len(res.Extracted))

	printSummary(res, dest)
	if runErr != nil {
		return fmt.Errorf("some archives were not extracted: %w", runErr)
	}
	return nil
}

// lockDir places destination locks under the cache directory.
func lockDir() string {
	dir, err := config.CacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, lockSubdir)
}

func printSummary(res *pipeline.Result, dest string) {
	if len(res.Failed) == 0 {
		printSuccess("Extracted %d source archives into %s", len(res.Extracted), dest)
	} else {
		printWarning("Extracted %d of %d source archives into %s", len(res.Extracted), len(res.Copied), dest)
	}
	if res.Project != nil {
		printKeyValue("Project", res.Project.String())
	}
	printStats(len(res.Declared), len(res.Listed), len(res.Missing), res.Stats.ListCacheHit)

	if len(res.Missing) > 0 {
		printWarning("No source archive for %d dependencies", len(res.Missing))
		for _, s := range maven.Strings(res.Missing) {
			printDetail("%s", s)
		}
	}
	if len(res.Failed) > 0 {
		printWarning("Not extracted: %d archives", len(res.Failed))
		for _, name := range res.Failed {
			printDetail("%s", name)
		}
	}
	for _, conflict := range res.Conflicts {
		printWarning("Skipped %s: same filename as %s", conflict.Skipped, conflict.Kept)
	}
}
