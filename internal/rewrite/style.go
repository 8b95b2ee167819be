package rewrite

import "github.com/danieljhkim/subpkg/internal/project"

// RewriteStyle re-bases the @import targets of a style file that belonged to
// the node at oldPath and now belongs to the node at newPath. Global style
// files pass the same path twice.
func RewriteStyle(content []byte, oldPath, newPath string, reloc Relocation) []byte {
	if len(reloc) == 0 && oldPath == newPath {
		return content
	}
	return project.ReplaceStyleImports(content, func(spec string) string {
		return rebaseFile(spec, oldPath, newPath, reloc)
	})
}
