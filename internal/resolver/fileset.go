package resolver

import (
	"fmt"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/danieljhkim/subpkg/internal/fsops"
	"github.com/danieljhkim/subpkg/internal/project"
)

// MemSet is an in-memory FileSet.
type MemSet map[string]struct{}

// NewMemSet builds a MemSet from paths.
func NewMemSet(paths ...string) MemSet {
	s := make(MemSet, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

// TableSet exposes the logical paths of a node table as a FileSet.
func TableSet(table project.Table) MemSet {
	s := make(MemSet, len(table))
	for k := range table {
		s[k] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s MemSet) Has(p string) bool {
	_, ok := s[p]
	return ok
}

// DiskSet answers existence queries against a directory, caching answers in
// a bounded LRU. A DiskSet must be discarded once files under root move.
type DiskSet struct {
	fs    fsops.FS
	root  string
	cache *lru.Cache[string, bool]
}

// NewDiskSet creates a DiskSet rooted at root.
func NewDiskSet(fs fsops.FS, root string, cacheSize int) (*DiskSet, error) {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[string, bool](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver cache: %w", err)
	}
	return &DiskSet{fs: fs, root: root, cache: cache}, nil
}

// Has reports whether root/p exists. Lookup errors count as absent.
func (d *DiskSet) Has(p string) bool {
	if hit, ok := d.cache.Get(p); ok {
		return hit
	}
	exists, err := d.fs.Exists(filepath.Join(d.root, filepath.FromSlash(p)))
	if err != nil {
		exists = false
	}
	d.cache.Add(p, exists)
	return exists
}

// Union reports a path present when any member set has it.
type Union []FileSet

// Has reports membership in any set.
func (u Union) Has(p string) bool {
	for _, s := range u {
		if s != nil && s.Has(p) {
			return true
		}
	}
	return false
}

// suffixed appends a fixed suffix before asking the wrapped set.
type suffixed struct {
	set    FileSet
	suffix string
}

// WithSuffix returns a FileSet that asks set for p+suffix. It lets logical
// paths be looked up against a DiskSet that only knows physical files.
func WithSuffix(set FileSet, suffix string) FileSet {
	return suffixed{set: set, suffix: suffix}
}

func (s suffixed) Has(p string) bool {
	return s.set.Has(p + s.suffix)
}
