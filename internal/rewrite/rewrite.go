package rewrite

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/subpkg/internal/graph"
	"github.com/danieljhkim/subpkg/internal/project"
	"github.com/danieljhkim/subpkg/internal/resolver"
)

// Rewriter re-bases import strings against a relocation.
type Rewriter struct {
	resolver *resolver.Resolver
	npmRoot  string
}

// New creates a Rewriter resolving imports the same way the graph builder
// does.
func New(r *resolver.Resolver, npmRoot string) *Rewriter {
	return &Rewriter{resolver: r, npmRoot: npmRoot}
}

// Skip is a relocation that was not applied because another node already
// holds its destination key.
type Skip struct {
	From string
	To   string
}

// Apply rekeys relocated nodes and rewrites every import in the table. It
// returns the number of import strings that changed and the relocations
// dropped for an occupied destination.
func (rw *Rewriter) Apply(table project.Table, reloc Relocation) (int, []Skip) {
	if len(reloc) == 0 {
		return 0, nil
	}
	return rw.apply(table, reloc, resolver.TableSet(table))
}

// apply resolves imports against set, the node paths before relocation.
func (rw *Rewriter) apply(table project.Table, reloc Relocation, set resolver.FileSet) (int, []Skip) {
	old := make(project.Table, len(table))
	for k, n := range table {
		old[k] = n
	}
	for k := range table {
		delete(table, k)
	}

	changed := 0
	var skipped []Skip
	// Nodes that stay put claim their keys first.
	var moved []string
	for _, key := range old.Keys() {
		if reloc.Moved(key) {
			moved = append(moved, key)
			continue
		}
		changed += rw.rebaseNode(old[key], key, key, set, reloc)
		table[key] = old[key]
	}
	for _, key := range moved {
		for _, dest := range reloc[key] {
			if _, taken := table[dest]; taken {
				skipped = append(skipped, Skip{From: key, To: dest})
				continue
			}
			n := old[key].Clone()
			changed += rw.rebaseNode(n, key, dest, set, reloc)
			table[dest] = n
		}
	}
	return changed, skipped
}

// Restore reverses a relocation applied by an earlier build. Among fan-out
// copies the first destination wins and the others are dropped.
func (rw *Rewriter) Restore(table project.Table, reloc Relocation) int {
	if len(reloc) == 0 {
		return 0
	}
	set := resolver.TableSet(table)
	inv := Relocation{}
	winners := make(map[string]string)
	for _, from := range reloc.Sources() {
		for _, d := range reloc[from] {
			if _, ok := table[d]; !ok {
				continue
			}
			if _, ok := winners[from]; !ok {
				winners[from] = d
				inv[d] = []string{from}
			}
		}
	}
	for _, from := range reloc.Sources() {
		for _, d := range reloc[from] {
			if d != from && winners[from] != d {
				delete(table, d)
			}
		}
	}
	// References to dropped copies still map back to their source.
	for from, dests := range reloc {
		for _, d := range dests {
			if _, ok := inv[d]; !ok {
				inv[d] = []string{from}
			}
		}
	}
	changed, _ := rw.apply(table, inv, set)
	return changed
}

// rebaseNode rewrites the imports of n, which moved from oldKey to newKey.
func (rw *Rewriter) rebaseNode(n *project.Node, oldKey, newKey string, set resolver.FileSet, reloc Relocation) int {
	changed := 0
	if n.Config != nil {
		for i, ref := range n.Config.UsingComponents {
			if !ref.IsPath() {
				continue
			}
			spec := rw.rebaseComponent(ref.Path, oldKey, newKey, set, reloc)
			if spec != ref.Path {
				n.Config.UsingComponents[i].Path = spec
				changed++
			}
		}
	}
	for i, imp := range n.StyleImports {
		spec := rebaseFile(imp, oldKey, newKey, reloc)
		if spec != imp {
			n.StyleImports[i] = spec
			changed++
		}
	}
	return changed
}

// rebaseComponent rewrites one usingComponents value. Unresolvable values
// and values whose referrer and target both stay put come back unchanged.
func (rw *Rewriter) rebaseComponent(spec, oldKey, newKey string, set resolver.FileSet, reloc Relocation) string {
	ref, ok := graph.Resolve(rw.resolver, set, oldKey, spec, rw.npmRoot)
	if !ok {
		return spec
	}
	target := reloc.Target(ref.Key, newKey)
	if target == ref.Key && (oldKey == newKey || ref.Style != graph.StyleRelative) {
		return spec
	}
	base := strings.TrimSuffix(target, ref.Tail())
	return format(ref.Style, path.Dir(newKey), base)
}

// rebaseFile rewrites a file import (style @import) that carries its own
// suffix. Bare imports are relative to the referrer.
func rebaseFile(spec, oldKey, newKey string, reloc Relocation) string {
	style := graph.StyleRelative
	var abs string
	switch {
	case spec == "" || strings.Contains(spec, "://"):
		return spec
	case strings.HasPrefix(spec, "/"):
		style, abs = graph.StyleAbsolute, path.Clean(strings.TrimPrefix(spec, "/"))
	default:
		abs = path.Join(path.Dir(oldKey), spec)
	}
	if abs == ".." || strings.HasPrefix(abs, "../") {
		return spec
	}

	ext := path.Ext(abs)
	stem := strings.TrimSuffix(abs, ext)
	target := reloc.Target(stem, newKey)
	if target == stem && (oldKey == newKey || style == graph.StyleAbsolute) {
		return spec
	}
	return format(style, path.Dir(newKey), target+ext)
}

// format writes target in the given style as seen from dir.
func format(style graph.Style, dir, target string) string {
	if style == graph.StyleAbsolute {
		return "/" + target
	}
	rel, err := filepath.Rel(filepath.FromSlash(dir), filepath.FromSlash(target))
	if err != nil {
		return "/" + target
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}
