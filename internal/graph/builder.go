package graph

import (
	"github.com/danieljhkim/subpkg/internal/project"
	"github.com/danieljhkim/subpkg/internal/resolver"
	"github.com/danieljhkim/subpkg/internal/subpackage"
)

// Entry is the pre-resolution record of one component.
type Entry struct {
	// SubRoots are the packages known to use the component, first-seen order.
	SubRoots []string

	// Parents are referencing components whose ownership is still open.
	Parents []string
}

// HasMain reports whether SubRoots contains the main package.
func (e *Entry) HasMain() bool {
	return e != nil && contains(e.SubRoots, project.RootMain)
}

// Preset maps a component path to its Entry.
type Preset map[string]*Entry

func (p Preset) entry(key string) *Entry {
	e, ok := p[key]
	if !ok {
		e = &Entry{}
		p[key] = e
	}
	return e
}

// Options configures Build.
type Options struct {
	Resolver *resolver.Resolver

	// NpmRoot is where node_modules imports live in the output.
	NpmRoot string
}

// Build scans every non-entry node with usingComponents and records who uses
// which component. Unresolvable imports and imports of pages or the entry
// are skipped.
func Build(table project.Table, subRoots subpackage.SubRootMap, opts Options) Preset {
	preset := Preset{}
	set := resolver.TableSet(table)

	for _, key := range table.Keys() {
		node := table[key]
		if node.Kind == project.KindEntry {
			continue
		}
		refs := node.Components()
		if len(refs) == 0 {
			continue
		}
		own := subRoots.RootOf(key)

		for _, ref := range refs {
			if !ref.IsPath() {
				continue
			}
			target, ok := Resolve(opts.Resolver, set, key, ref.Path, opts.NpmRoot)
			if !ok || target.Key == key {
				continue
			}
			if table[target.Key].Kind != project.KindComponent {
				continue
			}
			e := preset.entry(target.Key)

			switch {
			case node.Kind == project.KindPage:
				e.SubRoots = appendUnique(e.SubRoots, own)
			case preset[key].HasMain():
				e.SubRoots = appendUnique(e.SubRoots, preset[key].SubRoots...)
			default:
				e.Parents = appendUnique(e.Parents, key)
			}
		}
	}
	return preset
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if !contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}
