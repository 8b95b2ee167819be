package graph

import (
	"path"
	"strings"

	"github.com/danieljhkim/subpkg/internal/resolver"
)

// Style is the way an import path was written.
type Style int

const (
	// StyleRelative is "./x" or "../x".
	StyleRelative Style = iota
	// StyleAbsolute is "/x", rooted at the output directory.
	StyleAbsolute
	// StyleModule is a bare node_modules import such as "vant/button".
	StyleModule
)

// Reference is a resolved import.
type Reference struct {
	// Spec is the import string as written.
	Spec string

	// Style is how Spec was written.
	Style Style

	// Abs is the logical path Spec points at, before variant resolution.
	Abs string

	// Key is the node the import resolved to.
	Key string
}

// Tail returns the part the resolver appended to Abs (e.g. "/index").
func (r Reference) Tail() string {
	if strings.HasPrefix(r.Key, r.Abs) {
		return r.Key[len(r.Abs):]
	}
	return ""
}

// AbsPath turns an import spec into a logical path relative to the output
// root. Module imports are placed under npmRoot. Imports that escape the
// output root, URLs and plugin references are rejected.
func AbsPath(referrer, spec, npmRoot string) (string, Style, bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.Contains(spec, "://") {
		return "", 0, false
	}

	var abs string
	var style Style
	switch {
	case strings.HasPrefix(spec, "/"):
		abs, style = path.Clean(strings.TrimPrefix(spec, "/")), StyleAbsolute
	case strings.HasPrefix(spec, "."):
		abs, style = path.Join(path.Dir(referrer), spec), StyleRelative
	default:
		if npmRoot == "" {
			return "", 0, false
		}
		abs, style = path.Join(npmRoot, spec), StyleModule
	}

	if abs == "." || abs == ".." || strings.HasPrefix(abs, "../") {
		return "", 0, false
	}
	return abs, style, true
}

// Resolve resolves spec, written in referrer, against the node set.
func Resolve(r *resolver.Resolver, set resolver.FileSet, referrer, spec, npmRoot string) (Reference, bool) {
	abs, style, ok := AbsPath(referrer, spec, npmRoot)
	if !ok {
		return Reference{}, false
	}
	key, ok := r.Resolve(abs, "", set)
	if !ok {
		return Reference{}, false
	}
	return Reference{Spec: spec, Style: style, Abs: abs, Key: key}, true
}
