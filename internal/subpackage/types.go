package subpackage

import (
	"encoding/json"
	"sort"

	"github.com/danieljhkim/subpkg/internal/project"
)

// Target records where a subpackage page comes from and where it goes.
type Target struct {
	// SubRoot is the canonical root of the owning subpackage.
	SubRoot string `json:"subRoot"`

	// OriginalPath is the declared logical page path (sourceRoot/page).
	OriginalPath string `json:"originalPath"`

	// Dest is the relocated logical page path (subRoot/page).
	Dest string `json:"dest"`
}

// SubRootMap maps a resolved page source path to its Target.
type SubRootMap map[string]Target

// RootOf returns the subpackage root owning page p, or main.
func (m SubRootMap) RootOf(p string) string {
	if t, ok := m[p]; ok {
		return t.SubRoot
	}
	return project.RootMain
}

// NormalizedSubpackage is a declared subpackage after normalization.
type NormalizedSubpackage struct {
	// Root is the canonical output root.
	Root string

	// SourceRoot is the declared root the pages are compiled under.
	SourceRoot string

	// Pages are page paths relative to Root.
	Pages []string

	// Name is the package alias; only kept on weapp.
	Name string

	// Extra carries unknown declared fields into the manifest.
	Extra map[string]json.RawMessage
}

// MarshalJSON writes the manifest form {root, pages, name?, ...}.
func (n NormalizedSubpackage) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(n.Extra)+3)
	for k, v := range n.Extra {
		fields[k] = v
	}
	fields["root"] = n.Root
	pages := n.Pages
	if pages == nil {
		pages = []string{}
	}
	fields["pages"] = pages
	if n.Name != "" {
		fields["name"] = n.Name
	}
	return json.Marshal(fields)
}

// PreloadRule is one preloadRule manifest entry.
type PreloadRule struct {
	Packages []string `json:"packages"`
	Network  string   `json:"network"`
}

// PreloadRuleTable maps a trigger page to the packages it preloads.
type PreloadRuleTable map[string]*PreloadRule

// PageMove relocates a subpackage page from its source root to its
// canonical root.
type PageMove struct {
	From    string `json:"from"`
	To      string `json:"to"`
	SubRoot string `json:"subRoot"`
}

// Result is the output of Format.
type Result struct {
	SubRootMap  SubRootMap             `json:"subRootMap"`
	PreloadRule PreloadRuleTable       `json:"preloadRule"`
	SubPackages []NormalizedSubpackage `json:"subPackages"`
	PageMoves   []PageMove             `json:"pageMoves"`
}

// Empty reports whether there is nothing to place.
func (r *Result) Empty() bool {
	return r == nil || len(r.SubPackages) == 0
}

// Roots returns the canonical roots in declaration order.
func (r *Result) Roots() []string {
	if r == nil {
		return nil
	}
	roots := make([]string, 0, len(r.SubPackages))
	for _, sp := range r.SubPackages {
		roots = append(roots, sp.Root)
	}
	return roots
}

// RulePages returns the preload rule keys in sorted order.
func (t PreloadRuleTable) RulePages() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
