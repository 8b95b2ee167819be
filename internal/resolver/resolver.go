// Package resolver finds the file backing a logical path among its
// platform and mode variants.
//
// A logical path such as "components/card" may be backed by
// "components/card.weapp", "components/card/index" or a tagged variant of
// either. The same lookup runs against the real output directory or against
// an in-memory set such as the keys of the compiled-node table.
package resolver

import (
	"path"
	"strings"

	"github.com/danieljhkim/subpkg/internal/platform"
)

// FileSet answers existence queries for slash-separated paths.
type FileSet interface {
	Has(p string) bool
}

// Resolver resolves logical paths using an ordered list of variant tags.
type Resolver struct {
	tags []string
}

// New creates a Resolver for a platform and build mode.
func New(platformName, mode string) *Resolver {
	return &Resolver{tags: platform.Tags(platformName, mode)}
}

// Tags returns the variant tags, most specific first.
func (r *Resolver) Tags() []string {
	return append([]string(nil), r.tags...)
}

// Candidates lists the paths tried for logical+suffix, in order.
func (r *Resolver) Candidates(logical, suffix string) []string {
	p := strings.TrimSuffix(logical, "/")
	var out []string
	for _, tag := range r.tags {
		out = append(out, p+"."+tag+suffix)
		out = append(out, p+"/index."+tag+suffix)
		if dir, ok := strings.CutSuffix(p, "/index"); ok && dir != "" {
			out = append(out, dir+"."+tag+"/index"+suffix)
		}
	}
	out = append(out, p+suffix, p+"/index"+suffix)
	return out
}

// Resolve returns the first candidate present in set.
func (r *Resolver) Resolve(logical, suffix string, set FileSet) (string, bool) {
	if logical == "" || set == nil {
		return "", false
	}
	for _, candidate := range r.Candidates(path.Clean(logical), suffix) {
		if set.Has(candidate) {
			return candidate, true
		}
	}
	return "", false
}
