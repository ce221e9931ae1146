// Package filesystem abstracts the existence checks made while locating
// source archives.
//
// Production code uses [OS], which asks the operating system. Tests use
// [Fake], which answers from an explicit set of paths or treats every path
// as existing.
package filesystem

import (
	"os"
	"sync"
)

// FS reports whether a path exists.
type FS interface {
	Exists(path string) bool
}

// OS implements FS on top of os.Stat.
type OS struct{}

// Exists reports whether path exists. Permission errors count as missing.
func (OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Fake is an in-memory FS for tests. The zero value has no paths.
// It is safe for concurrent use.
type Fake struct {
	// AllExist makes every path exist regardless of the path set.
	AllExist bool

	mu    sync.RWMutex
	paths map[string]struct{}
}

// NewFake returns a Fake containing paths.
func NewFake(paths ...string) *Fake {
	f := &Fake{}
	f.Add(paths...)
	return f
}

// Add marks paths as existing.
func (f *Fake) Add(paths ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.paths == nil {
		f.paths = make(map[string]struct{}, len(paths))
	}
	for _, p := range paths {
		f.paths[p] = struct{}{}
	}
}

// Exists reports whether path was added or AllExist is set.
func (f *Fake) Exists(path string) bool {
	if f.AllExist {
		return true
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.paths[path]
	return ok
}

var (
	_ FS = OS{}
	_ FS = (*Fake)(nil)
)
