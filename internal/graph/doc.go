// Package graph builds the component usage graph of a compiled mini-program.
//
// The graph records, for every custom component, which packages use it
// directly (subRoots) and which components use it whose own ownership is not
// known yet (parents). Resolving parents into a final ownership is left to
// the ownership package so that all decisions are taken over the complete
// graph.
package graph
