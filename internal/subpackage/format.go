package subpackage

import (
	"fmt"
	"path"
	"strings"

	"github.com/danieljhkim/subpkg/internal/platform"
	"github.com/danieljhkim/subpkg/internal/project"
	"github.com/danieljhkim/subpkg/internal/resolver"
)

// AutoRoot is the outputRoot value that derives the root from the source
// root and the entry index.
const AutoRoot = "auto"

// DefaultNetwork is used when a preload rule does not name a network.
const DefaultNetwork = "all"

// FormatInput is the input of Format.
type FormatInput struct {
	Declared []project.DeclaredSubpackage
	Platform string
	Resolver *resolver.Resolver

	// Files is searched for the source nodes backing each page.
	Files resolver.FileSet
}

// CanonicalRoot computes the single-level output root of a declared entry.
func CanonicalRoot(sourceRoot, outputRoot string, index int) string {
	root := outputRoot
	if root == "" || root == AutoRoot {
		root = fmt.Sprintf("%s-%d", strings.Trim(sourceRoot, "/"), index)
	}
	return flatten(root)
}

func flatten(p string) string {
	p = strings.Trim(path.Clean("/"+p), "/")
	return strings.ReplaceAll(p, "/", "-")
}

// Format normalizes the declared subpackages. It returns an empty Result
// when nothing is declared or the platform has no suffix table.
func Format(in FormatInput) *Result {
	res := &Result{
		SubRootMap:  SubRootMap{},
		PreloadRule: PreloadRuleTable{},
	}
	if len(in.Declared) == 0 {
		return res
	}
	if _, ok := platform.Lookup(in.Platform); !ok {
		return res
	}

	used := make(map[string]bool, len(in.Declared))
	for index, decl := range in.Declared {
		sourceRoot := strings.Trim(path.Clean("/"+decl.Root), "/")
		root := CanonicalRoot(sourceRoot, decl.OutputRoot, index)
		if used[root] {
			root = fmt.Sprintf("%s-%d", root, index)
		}
		used[root] = true

		pages := make([]string, 0, len(decl.Pages))
		for _, page := range decl.Pages {
			page = strings.Trim(page, "/")
			pages = append(pages, page)

			original := path.Join(sourceRoot, page)
			source := original
			if in.Resolver != nil {
				if resolved, ok := in.Resolver.Resolve(original, "", in.Files); ok {
					source = resolved
				}
			}
			// Keep the variant or /index tail the resolver matched.
			dest := path.Join(root, page) + strings.TrimPrefix(source, original)
			res.SubRootMap[source] = Target{SubRoot: root, OriginalPath: original, Dest: dest}
			if source != dest {
				res.PageMoves = append(res.PageMoves, PageMove{From: source, To: dest, SubRoot: root})
			}
		}

		normalized := NormalizedSubpackage{
			Root:       root,
			SourceRoot: sourceRoot,
			Pages:      pages,
			Extra:      decl.Extra,
		}

		packageID := root
		if in.Platform == platform.Weapp {
			normalized.Name = decl.Name
			if decl.Name != "" {
				packageID = decl.Name
			}
		}
		collectPreloadRule(res.PreloadRule, decl, packageID)

		res.SubPackages = append(res.SubPackages, normalized)
	}
	return res
}

func collectPreloadRule(table PreloadRuleTable, decl project.DeclaredSubpackage, packageID string) {
	network := decl.Network
	if network == "" {
		network = DefaultNetwork
	}
	for _, rule := range decl.PreloadRule {
		if rule == "" {
			continue
		}
		entry, ok := table[rule]
		if !ok {
			entry = &PreloadRule{Network: network}
			table[rule] = entry
		}
		entry.Packages = append(entry.Packages, packageID)
	}
}
