package pipeline

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/srcfetch/pkg/cache"
	"github.com/matzehuels/srcfetch/pkg/errors"
	"github.com/matzehuels/srcfetch/pkg/maven"
	"github.com/matzehuels/srcfetch/pkg/mvn"
	"github.com/matzehuels/srcfetch/pkg/observability"
)

// ListCacheKeyType is the cache key type of memoised dependency lists.
// It labels cache hook events and names the entries' directory in a
// [cache.FileCache].
const ListCacheKeyType = "deplist"

// FetchOptions configures [FetchDependencies].
type FetchOptions struct {
	Descriptor string        // Path to pom.xml, passed to mvn -f
	Content    []byte        // Descriptor bytes; used for the cache key
	Runner     mvn.Runner    // mvn.ExecRunner{} when nil
	Timeout    time.Duration // DefaultTimeout when zero
	Cache      cache.Cache   // Dependency list memo; disabled when nil
	CacheTTL   time.Duration // DefaultCacheTTL when zero
	Refresh    bool          // Skip the memo read
	Logger     *log.Logger
}

// FetchDependencies lists the project's dependencies with mvn while mvn
// downloads their source archives into the local repository.
//
// Both invocations run concurrently and the call returns only after both have
// finished, so every archive mvn fetched is on disk when the list comes back.
// Failures of either invocation are logged and yield a shorter list. When the
// timeout fires both processes are killed and a TIMEOUT error is returned.
func FetchDependencies(ctx context.Context, opts FetchOptions) ([]maven.Coordinate, error) {
	coords, _, err := FetchDependenciesWithCacheInfo(ctx, opts)
	return coords, err
}

// FetchDependenciesWithCacheInfo is [FetchDependencies] that also reports
// whether the list came from the cache. The source download runs either way.
func FetchDependenciesWithCacheInfo(ctx context.Context, opts FetchOptions) ([]maven.Coordinate, bool, error) {
	opts.setDefaults()
	logger := opts.Logger

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	key := opts.cacheKey()
	var cached []string
	hit := false
	if key != "" && !opts.Refresh {
		var err error
		hit, err = cache.GetJSON(ctx, opts.Cache, key, &cached)
		if err != nil {
			logger.Debug("dependency list cache read failed", "error", err)
		}
		if hit {
			observability.Cache().OnCacheHit(ctx, ListCacheKeyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, ListCacheKeyType)
		}
	}

	var listed []maven.Coordinate
	g, gctx := errgroup.WithContext(ctx)
	if !hit {
		g.Go(func() error {
			lister := &mvn.Lister{Runner: opts.Runner, Descriptor: opts.Descriptor, Logger: logger}
			coords, err := lister.List(gctx)
			listed = coords
			return err
		})
	}
	g.Go(func() error {
		trigger := &mvn.SourceTrigger{Runner: opts.Runner, Descriptor: opts.Descriptor, Logger: logger}
		return trigger.Fetch(gctx)
	})

	if err := g.Wait(); err != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, false, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(),
				"mvn did not finish within %s", opts.Timeout)
		}
		return nil, false, err
	}

	if hit {
		coords := decodeCoordinates(cached, logger)
		logger.Debug("dependency list served from cache", "count", len(coords))
		return coords, true, nil
	}

	// An empty list usually means mvn failed; don't pin that for a day.
	if key != "" && len(listed) > 0 {
		if err := cache.SetJSON(ctx, opts.Cache, key, maven.Strings(listed), opts.CacheTTL); err != nil {
			logger.Debug("dependency list cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, ListCacheKeyType, len(listed))
		}
	}
	return listed, false, nil
}

func (o *FetchOptions) setDefaults() {
	if o.Runner == nil {
		o.Runner = mvn.ExecRunner{}
	}
	o.Runner = observedRunner{o.Runner}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// cacheKey identifies a descriptor by its absolute path and content.
// The path matters because mvn resolves parent poms relative to it.
func (o *FetchOptions) cacheKey() string {
	if o.Cache == nil || o.Content == nil {
		return ""
	}
	path, err := filepath.Abs(o.Descriptor)
	if err != nil {
		path = o.Descriptor
	}
	return cache.Key(ListCacheKeyType, path, cache.Hash(o.Content))
}

func decodeCoordinates(values []string, logger *log.Logger) []maven.Coordinate {
	coords := make([]maven.Coordinate, 0, len(values))
	for _, v := range values {
		c, err := maven.ParseCoordinate(v)
		if err != nil {
			logger.Debug("dropping cached coordinate", "value", v, "error", err)
			continue
		}
		coords = append(coords, c)
	}
	return coords
}

// observedRunner reports every invocation to the tool hooks.
type observedRunner struct {
	mvn.Runner
}

func (r observedRunner) Run(ctx context.Context, args []string) (mvn.Result, error) {
	start := time.Now()
	res, err := r.Runner.Run(ctx, args)
	goal := ""
	if len(args) > 0 {
		goal = args[len(args)-1]
	}
	observability.Tool().OnToolRun(ctx, goal, res.ExitCode, time.Since(start), err)
	return res, err
}
