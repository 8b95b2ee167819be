// Package platform holds the per-platform file-kind suffix table.
//
// Each mini-program platform emits the same four logical kinds of file for a
// page or component (template, style, config, script) under different
// extensions. The table is configuration data: the planner only uses it to
// expand a logical path into the physical files that travel with it.
package platform

import "sort"

// FileKind is a logical kind of emitted file.
type FileKind string

const (
	KindTempl  FileKind = "templ"
	KindStyle  FileKind = "style"
	KindConfig FileKind = "config"
	KindScript FileKind = "script"
)

// Weapp is the platform whose manifest supports named subpackages.
const Weapp = "weapp"

// FileTypes maps each FileKind to its filename suffix.
type FileTypes map[FileKind]string

var fileTypeMap = map[string]FileTypes{
	"weapp": {
		KindTempl:  ".wxml",
		KindStyle:  ".wxss",
		KindConfig: ".json",
		KindScript: ".js",
	},
	"alipay": {
		KindTempl:  ".axml",
		KindStyle:  ".acss",
		KindConfig: ".json",
		KindScript: ".js",
	},
	"tt": {
		KindTempl:  ".ttml",
		KindStyle:  ".ttss",
		KindConfig: ".json",
		KindScript: ".js",
	},
	"swan": {
		KindTempl:  ".swan",
		KindStyle:  ".css",
		KindConfig: ".json",
		KindScript: ".js",
	},
	"qq": {
		KindTempl:  ".qml",
		KindStyle:  ".qss",
		KindConfig: ".json",
		KindScript: ".js",
	},
	"jd": {
		KindTempl:  ".jxml",
		KindStyle:  ".jxss",
		KindConfig: ".json",
		KindScript: ".js",
	},
}

// Lookup returns the suffix table for a platform.
func Lookup(name string) (FileTypes, bool) {
	ft, ok := fileTypeMap[name]
	return ft, ok
}

// Names returns the known platform identifiers in sorted order.
func Names() []string {
	names := make([]string, 0, len(fileTypeMap))
	for name := range fileTypeMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suffix returns the suffix for a kind, or "" when the kind is unknown.
func (ft FileTypes) Suffix(kind FileKind) string {
	return ft[kind]
}

// Suffixes returns every suffix of the table in a stable order
// (templ, style, config, script).
func (ft FileTypes) Suffixes() []string {
	order := []FileKind{KindTempl, KindStyle, KindConfig, KindScript}
	out := make([]string, 0, len(order))
	for _, k := range order {
		if s, ok := ft[k]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Tags returns the variant tags tried by path resolution, most specific
// first: "platform.mode", "mode", "platform". Empty parts are skipped.
func Tags(platformName, mode string) []string {
	var tags []string
	if platformName != "" && mode != "" {
		tags = append(tags, platformName+"."+mode)
	}
	if mode != "" {
		tags = append(tags, mode)
	}
	if platformName != "" {
		tags = append(tags, platformName)
	}
	return tags
}
