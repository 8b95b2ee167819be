// Package subpackage normalizes the declared subPackages list.
//
// Every declared entry gets a canonical single-level output root, its pages
// are resolved to the source nodes that back them, and preload rules are
// grouped into the table written to the generated manifest.
package subpackage
