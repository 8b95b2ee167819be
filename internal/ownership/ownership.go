// Package ownership turns the usage graph into a final package assignment
// per component.
//
// The ownership of a component is the union of the packages that use it
// directly and the ownership of every component that uses it. Main
// dominance then collapses the result: a component reachable from the main
// package, or from two or more subpackages, belongs to main.
//
// Propagation walks parent edges with an iterative Tarjan traversal. Every
// strongly connected component is resolved once and all of its members share
// the result, so cyclic component graphs terminate and diamond-shaped ones are
// not re-walked. Because the merge is a set union, the outcome does not depend
// on the order in which parents are visited.
package ownership

import (
	"sort"

	"github.com/danieljhkim/subpkg/internal/graph"
	"github.com/danieljhkim/subpkg/internal/project"
)

// Record is the final placement of one component.
type Record struct {
	// SubRoots are the packages that must hold a copy: main first, then
	// subpackage roots in lexical order.
	SubRoots []string `json:"subRoots"`

	// Move is true when the component leaves the main package.
	Move bool `json:"move"`
}

// Owners returns the non-main roots of the record.
func (r Record) Owners() []string {
	var out []string
	for _, root := range r.SubRoots {
		if root != project.RootMain {
			out = append(out, root)
		}
	}
	return out
}

// Map holds the Record of every component in the graph.
type Map map[string]Record

// Options configures Resolve.
type Options struct {
	// AllowMultiOwner keeps components used by several subpackages in those
	// subpackages instead of collapsing them into main.
	AllowMultiOwner bool
}

// MergeSets returns the union of a and b in first-seen order.
func MergeSets(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// HasMainRoot reports whether set is dominated by main: it contains main,
// or (unless multi-ownership is allowed) it names two or more packages.
func HasMainRoot(set []string, allowMultiOwner bool) bool {
	for _, v := range set {
		if v == project.RootMain {
			return true
		}
	}
	return !allowMultiOwner && len(set) >= 2
}

// finalize applies main dominance and puts the set in canonical order.
func finalize(set []string, opts Options) Record {
	if len(set) == 0 || HasMainRoot(set, opts.AllowMultiOwner) {
		return Record{SubRoots: []string{project.RootMain}, Move: false}
	}
	roots := append([]string(nil), set...)
	sort.Strings(roots)
	return Record{SubRoots: roots, Move: true}
}

// Resolve computes the Record of every component in preset.
func Resolve(preset graph.Preset, opts Options) Map {
	w := newWalker(preset, opts)

	keys := make([]string, 0, len(preset))
	for k := range preset {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, seen := w.index[k]; !seen {
			w.visit(k)
		}
	}

	out := make(Map, len(preset))
	for _, k := range keys {
		out[k] = finalize(w.resolved[w.component[k]], opts)
	}
	return out
}

// walker is the iterative Tarjan state over parent edges.
type walker struct {
	preset graph.Preset
	opts   Options

	next     int
	index    map[string]int
	low      map[string]int
	onStack  map[string]bool
	stack    []string
	resolved [][]string
	// component maps a node to its index in resolved.
	component map[string]int
}

func newWalker(preset graph.Preset, opts Options) *walker {
	return &walker{
		preset:    preset,
		opts:      opts,
		index:     make(map[string]int),
		low:       make(map[string]int),
		onStack:   make(map[string]bool),
		component: make(map[string]int),
	}
}

func (w *walker) parents(node string) []string {
	if e, ok := w.preset[node]; ok {
		return e.Parents
	}
	return nil
}

func (w *walker) subRoots(node string) []string {
	if e, ok := w.preset[node]; ok {
		return e.SubRoots
	}
	return nil
}

func (w *walker) open(node string) {
	w.index[node] = w.next
	w.low[node] = w.next
	w.next++
	w.stack = append(w.stack, node)
	w.onStack[node] = true
}

func (w *walker) visit(root string) {
	type frame struct {
		node string
		i    int
	}
	frames := []frame{{node: root}}
	w.open(root)

	for len(frames) > 0 {
		f := &frames[len(frames)-1]
		parents := w.parents(f.node)
		if f.i < len(parents) {
			p := parents[f.i]
			f.i++
			if _, seen := w.index[p]; !seen {
				w.open(p)
				frames = append(frames, frame{node: p})
				continue
			}
			if w.onStack[p] && w.index[p] < w.low[f.node] {
				w.low[f.node] = w.index[p]
			}
			continue
		}

		node := f.node
		frames = frames[:len(frames)-1]
		if len(frames) > 0 {
			caller := frames[len(frames)-1].node
			if w.low[node] < w.low[caller] {
				w.low[caller] = w.low[node]
			}
		}
		if w.low[node] == w.index[node] {
			w.emit(node)
		}
	}
}

// emit pops the strongly connected component rooted at head and resolves
// it. Every parent outside the component was emitted earlier, so its set is
// final.
func (w *walker) emit(head string) {
	var members []string
	for {
		n := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		w.onStack[n] = false
		members = append(members, n)
		if n == head {
			break
		}
	}
	sort.Strings(members)

	id := len(w.resolved)
	for _, m := range members {
		w.component[m] = id
	}

	var set []string
	for _, m := range members {
		set = MergeSets(set, w.subRoots(m))
	}
	for _, m := range members {
		if HasMainRoot(set, w.opts.AllowMultiOwner) {
			break
		}
		for _, p := range w.parents(m) {
			if pid := w.component[p]; pid != id {
				set = MergeSets(set, w.resolved[pid])
			}
		}
	}
	w.resolved = append(w.resolved, set)
}
