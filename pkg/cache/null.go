package cache

import (
	"context"
	"time"
)

// NullCache backs --no-cache: every lookup misses, so each run asks mvn for
// the dependency list again. Writes are accepted and dropped.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() NullCache {
	return NullCache{}
}

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
