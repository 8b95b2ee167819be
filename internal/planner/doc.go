// Package planner turns ownership decisions into a move plan.
//
// The planner produces a deterministic MovePlan for relocating compiled
// components and pages between the main package and subpackages. It detects
// conflicts and fixes the order of operations before anything is rewritten or
// touched on disk.
//
// Key responsibilities:
//   - Generate forward moves for components owned by a single subpackage
//   - Fan out copies for components deliberately shared by several subpackages
//   - Generate back moves for shared components nested under a subpackage
//   - Detect conflicts (duplicate destinations, occupied paths, opposing moves)
package planner
