// Package rewrite keeps import strings valid after the move plan relocates
// nodes.
//
// A Relocation maps each old logical path to its new location(s). Apply
// rekeys the compiled-node table and re-bases every usingComponents value and
// style import from the referrer's new location to the target's new location.
// Restore runs the inverse so a rebuild starts from the pre-move layout.
// RewriteStyle and RekeyAssets carry the same relocation to emitted style
// files and asset maps.
package rewrite
