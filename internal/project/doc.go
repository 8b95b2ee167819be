// Package project models the compiled-node table handed over by the host
// build pipeline.
//
// A Table maps an extension-less logical path (slash separated, relative to
// the output root) to a Node. Nodes are a tagged variant over Entry, Page and
// Component: the Entry carries the application config, pages and components
// carry their usingComponents declarations and optional style imports.
//
// Only usingComponents values, style imports and the entry's subPackages and
// preloadRule fields are ever rewritten; every other config field is carried
// through untouched as raw JSON.
package project
