// Package pipeline runs the srcfetch pipeline for CLI commands.
//
// A run turns a pom.xml into unpacked sources in a destination directory:
//
//  1. Parse: read the descriptor and collect its declared coordinates
//  2. Fetch: run "mvn dependency:list" and "mvn dependency:sources" together
//  3. Locate: find each coordinate's source archive in the local repository
//  4. Unpack: copy the archives into the destination and extract them
//
// Stage 2 is skipped with [Options.Offline]. The dependency list of stage 2
// is memoised in a [cache.Cache] keyed by the descriptor's content.
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, nil, fileCache, logger)
//	res, err := runner.Run(ctx, pipeline.Options{
//	    Destination: "./src-deps",
//	    Descriptor:  "./pom.xml",
//	})
package pipeline

import (
	"time"

	"github.com/matzehuels/srcfetch/pkg/archive"
	"github.com/matzehuels/srcfetch/pkg/errors"
	"github.com/matzehuels/srcfetch/pkg/maven"
)

const (
	// DefaultTimeout bounds the concurrent mvn invocations of one run.
	DefaultTimeout = 10 * time.Minute

	// DefaultCacheTTL is how long a memoised dependency list stays valid.
	DefaultCacheTTL = 24 * time.Hour
)

// Options configures a single [Runner.Run].
type Options struct {
	Destination string        // Directory receiving archives and sources; created if missing
	Descriptor  string        // Path to pom.xml
	RepoRoot    string        // Maven home; ~/.m2 when empty
	Offline     bool          // Skip mvn and use only declared coordinates
	Timeout     time.Duration // Bound for the mvn invocations; DefaultTimeout when zero
	CacheTTL    time.Duration // Dependency list TTL; DefaultCacheTTL when zero
	Refresh     bool          // Ignore a memoised dependency list
	LockDir     string        // Directory for destination lock files; os.TempDir() when empty
}

// ValidateAndSetDefaults checks required fields and fills defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Destination == "" {
		return errors.New(errors.ErrCodeInvalidInput, "destination is required")
	}
	if o.Descriptor == "" {
		return errors.New(errors.ErrCodeInvalidInput, "pom.xml path is required")
	}
	if o.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timeout must not be negative")
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	return nil
}

// Result describes the outcome of a run.
type Result struct {
	RunID       string
	Project     *maven.Coordinate  // The pom's own coordinate, when complete
	Declared    []maven.Coordinate // From the descriptor
	Listed      []maven.Coordinate // From mvn dependency:list
	Coordinates []maven.Coordinate // Declared then listed, deduplicated
	Archives    []maven.Archive    // Archives found in the repository
	Missing     []maven.Coordinate // Coordinates without a source archive
	Copied      []string           // Archive paths inside the destination
	Extracted   []string           // Copied archive filenames unpacked completely
	Failed      []string           // Copied archive filenames refused or not unpacked
	Conflicts   []archive.Conflict // Archives skipped for a duplicate filename
	Stats       Stats
}

// Stats holds timing and counters for a run.
type Stats struct {
	ParseTime    time.Duration
	FetchTime    time.Duration
	ExtractTime  time.Duration
	ListCacheHit bool
}
