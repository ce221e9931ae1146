package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/matzehuels/srcfetch/pkg/archive"
	"github.com/matzehuels/srcfetch/pkg/cache"
	"github.com/matzehuels/srcfetch/pkg/errors"
	"github.com/matzehuels/srcfetch/pkg/filesystem"
	"github.com/matzehuels/srcfetch/pkg/maven"
	"github.com/matzehuels/srcfetch/pkg/mvn"
	"github.com/matzehuels/srcfetch/pkg/observability"
)

// lockRetryDelay is how often a blocked run retries the destination lock.
const lockRetryDelay = 200 * time.Millisecond

// Runner executes the pipeline with a shared cache and logger.
//
// The Runner holds no per-run state. Multiple goroutines can use the same
// Runner with different options; runs into the same destination are
// serialised by a file lock.
type Runner struct {
	FS     filesystem.FS // Existence checks for repository lookups
	Tool   mvn.Runner    // Executes mvn
	Cache  cache.Cache   // Dependency list memo
	Logger *log.Logger
}

// NewRunner creates a runner.
// A nil fsys uses the real filesystem, a nil tool runs "mvn" from PATH and a
// nil cache disables memoisation.
func NewRunner(fsys filesystem.FS, tool mvn.Runner, c cache.Cache, logger *log.Logger) *Runner {
	if fsys == nil {
		fsys = filesystem.OS{}
	}
	if tool == nil {
		tool = mvn.ExecRunner{}
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{FS: fsys, Tool: tool, Cache: c, Logger: logger}
}

// Run copies and unpacks the source archives of the descriptor's
// dependencies into opts.Destination.
//
// A missing descriptor or repository stops the run with a FILE_NOT_FOUND or
// NOT_FOUND error, and an mvn timeout with TIMEOUT; the Result is nil then.
// Archives that fail the safety check are skipped; their errors are joined and
// returned together with the Result once every other archive is extracted.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run", res.RunID[:8])

	// Stage 1: Parse
	parseStart := time.Now()
	content, err := os.ReadFile(opts.Descriptor)
	if os.IsNotExist(err) {
		return nil, errors.NotFound(opts.Descriptor)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", opts.Descriptor)
	}

	ex := maven.ParseDescriptor(string(content))
	if ex.Err != nil {
		logger.Warn("could not parse pom.xml, continuing without declared dependencies",
			"path", opts.Descriptor, "error", ex.Err)
	}
	// Versions often come from dependencyManagement or a parent pom.
	for _, s := range ex.Skipped {
		logger.Debug("skipping incomplete dependency", "dependency", s.Raw, "reason", s.Reason)
	}
	if n := len(ex.Skipped); n > 0 {
		logger.Warn("skipped incomplete dependencies", "count", n)
	}
	res.Project = ex.Project
	res.Declared = ex.Coordinates
	res.Stats.ParseTime = time.Since(parseStart)

	logger.Info("parsed pom.xml",
		"project", projectName(ex.Project),
		"declared", len(res.Declared),
		"duration", res.Stats.ParseTime)

	// Stage 2: Fetch
	if opts.Offline {
		logger.Info("offline, skipping mvn")
	} else {
		fetchStart := time.Now()
		observability.Pipeline().OnFetchStart(ctx, opts.Descriptor)
		listed, hit, err := FetchDependenciesWithCacheInfo(ctx, FetchOptions{
			Descriptor: opts.Descriptor,
			Content:    content,
			Runner:     r.Tool,
			Timeout:    opts.Timeout,
			Cache:      r.Cache,
			CacheTTL:   opts.CacheTTL,
			Refresh:    opts.Refresh,
			Logger:     logger,
		})
		observability.Pipeline().OnFetchComplete(ctx, opts.Descriptor, len(listed), time.Since(fetchStart), err)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		res.Listed = listed
		res.Stats.FetchTime = time.Since(fetchStart)
		res.Stats.ListCacheHit = hit

		logger.Info("resolved dependencies",
			"listed", len(listed),
			"cached", hit,
			"duration", res.Stats.FetchTime)
	}
	res.Coordinates = maven.Merge(res.Declared, res.Listed)

	// Stage 3: Locate
	repo, err := maven.NewRepository(opts.RepoRoot, r.FS)
	if err != nil {
		return nil, err
	}
	found, missing, err := repo.Locate(res.Coordinates)
	if err != nil {
		return nil, err
	}
	res.Archives = found
	res.Missing = missing
	for _, c := range missing {
		logger.Debug("no source archive", "coordinate", c.String())
	}
	logger.Info("located source archives",
		"repository", repo.Dir(),
		"found", len(found),
		"missing", len(missing))

	// Stage 4: Unpack
	extractStart := time.Now()
	observability.Pipeline().OnExtractStart(ctx, opts.Destination, len(found))
	extractErr := r.withLock(ctx, opts, func() error {
		if err := os.MkdirAll(opts.Destination, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create destination %s", opts.Destination)
		}

		paths := make([]string, len(found))
		for i, a := range found {
			paths[i] = a.Path
		}
		copied, err := archive.CopyArchives(paths, opts.Destination)
		if copied != nil {
			res.Copied = copied.Copied
			res.Conflicts = copied.Conflicts
		}
		if err != nil {
			return err
		}
		for _, c := range copied.Conflicts {
			logger.Warn("archive filename conflict", "error", c.Error())
		}

		names := archive.StripPaths(copied.Copied)
		extracted, err := archive.ExtractAll(opts.Destination, names)
		res.Extracted = extracted
		res.Failed = notIn(names, extracted)
		return err
	})
	res.Stats.ExtractTime = time.Since(extractStart)
	observability.Pipeline().OnExtractComplete(ctx, opts.Destination, res.Stats.ExtractTime, extractErr)

	if extractErr != nil {
		logger.Error("extraction incomplete", "error", extractErr)
		return res, extractErr
	}

	logger.Info("extracted sources",
		"archives", len(res.Extracted),
		"destination", opts.Destination,
		"duration", res.Stats.ExtractTime)
	return res, nil
}

// withLock runs fn while holding an exclusive lock for opts.Destination.
func (r *Runner) withLock(ctx context.Context, opts Options, fn func() error) error {
	lockDir := opts.LockDir
	if lockDir == "" {
		lockDir = os.TempDir()
	}
	if err := os.MkdirAll(lockDir, 0755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}

	abs, err := filepath.Abs(opts.Destination)
	if err != nil {
		abs = opts.Destination
	}
	fileLock := flock.New(filepath.Join(lockDir, "dest-"+cache.Hash([]byte(abs))[:16]+".lock"))
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire lock: %s is busy", opts.Destination)
	}
	defer func() { _ = fileLock.Unlock() }()

	return fn()
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// notIn returns the names missing from subset, which must keep the order of
// names.
func notIn(names, subset []string) []string {
	var out []string
	i := 0
	for _, n := range names {
		if i < len(subset) && subset[i] == n {
			i++
			continue
		}
		out = append(out, n)
	}
	return out
}

func projectName(c *maven.Coordinate) string {
	if c == nil {
		return "(unknown)"
	}
	return c.String()
}
