package project

import (
	"bytes"
	"regexp"
)

// styleImport matches @import "x", @import 'x' and @import url("x").
var styleImport = regexp.MustCompile(`@import\s+(?:url\(\s*)?["']([^"']+)["']`)

// ParseStyleImports returns the @import targets of a style file in order.
func ParseStyleImports(content []byte) []string {
	var out []string
	for _, m := range styleImport.FindAllSubmatch(content, -1) {
		out = append(out, string(m[1]))
	}
	return out
}

// ReplaceStyleImports rewrites every @import target through fn. Content
// outside the quoted targets is left untouched.
func ReplaceStyleImports(content []byte, fn func(string) string) []byte {
	matches := styleImport.FindAllSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content
	}
	var buf bytes.Buffer
	last := 0
	for _, m := range matches {
		start, end := m[2], m[3]
		buf.Write(content[last:start])
		buf.WriteString(fn(string(content[start:end])))
		last = end
	}
	buf.Write(content[last:])
	return buf.Bytes()
}
