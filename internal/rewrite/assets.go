package rewrite

import (
	"strings"

	"github.com/danieljhkim/subpkg/internal/planner"
)

// RekeyAssets renames emitted assets according to ops. Every suffix variant
// of an operation's source is stored under the destination; sources that
// moved or were removed are deleted once every operation has been applied.
// It returns the number of assets written.
func RekeyAssets(assets map[string][]byte, ops []planner.Operation, suffixes []string) int {
	var drop []string
	written := 0
	for _, op := range ops {
		for _, suffix := range suffixes {
			src := op.From + suffix
			content, ok := assets[src]
			if !ok {
				continue
			}
			if op.To != "" {
				assets[op.To+suffix] = content
				written++
			}
			if op.Type != planner.OpCopy {
				drop = append(drop, src)
			}
		}
	}
	for _, key := range drop {
		if !isDestination(ops, key, suffixes) {
			delete(assets, key)
		}
	}
	return written
}

// isDestination reports whether key was written by one of ops.
func isDestination(ops []planner.Operation, key string, suffixes []string) bool {
	for _, op := range ops {
		if op.To == "" {
			continue
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(key, suffix) && op.To+suffix == key {
				return true
			}
		}
	}
	return false
}
