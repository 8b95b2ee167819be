package planner

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/danieljhkim/subpkg/internal/ownership"
	"github.com/danieljhkim/subpkg/internal/project"
	"github.com/danieljhkim/subpkg/internal/subpackage"
)

// DefaultSharedDir is where back moves land inside the main package.
const DefaultSharedDir = "common"

// Input is everything BuildMovePlan needs.
type Input struct {
	// Table is the compiled-node table; used to detect occupied destinations.
	Table project.Table

	// Subpackages is the formatter result.
	Subpackages *subpackage.Result

	// Ownership is the resolved ownership of every referenced component.
	Ownership ownership.Map

	// SharedDir is the main-package directory receiving back moves.
	SharedDir string

	// Force allows destinations that already hold another node.
	Force bool
}

// packageDir is a directory owned by one subpackage.
type packageDir struct {
	dir  string
	root string
}

// homes lists subpackage directories, longest first, so nested roots win.
func homes(res *subpackage.Result) []packageDir {
	if res == nil {
		return nil
	}
	var dirs []packageDir
	for _, sp := range res.SubPackages {
		dirs = append(dirs, packageDir{dir: sp.Root, root: sp.Root})
		if sp.SourceRoot != "" && sp.SourceRoot != sp.Root {
			dirs = append(dirs, packageDir{dir: sp.SourceRoot, root: sp.Root})
		}
	}
	sort.SliceStable(dirs, func(i, j int) bool {
		return len(dirs[i].dir) > len(dirs[j].dir)
	})
	return dirs
}

// locate returns the package p physically sits in and p relative to that
// package directory.
func locate(dirs []packageDir, p string) (root, rel string) {
	for _, d := range dirs {
		if rest, ok := strings.CutPrefix(p, d.dir+"/"); ok {
			return d.root, rest
		}
	}
	return project.RootMain, p
}

// BuildMovePlan generates a deterministic plan from the ownership map and the
// page moves of the formatter.
func BuildMovePlan(in Input) *MovePlan {
	plan := NewMovePlan()
	if in.Subpackages.Empty() {
		return plan
	}
	sharedDir := strings.Trim(in.SharedDir, "/")
	if sharedDir == "" {
		sharedDir = DefaultSharedDir
	}
	dirs := homes(in.Subpackages)

	keys := make([]string, 0, len(in.Ownership))
	for k := range in.Ownership {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		rec := in.Ownership[key]
		home, rel := locate(dirs, key)

		if !rec.Move {
			if home == project.RootMain {
				continue
			}
			plan.AddOperation(Operation{
				Type:   OpMove,
				From:   key,
				To:     path.Join(sharedDir, key),
				IsBack: true,
				Kind:   project.KindComponent,
				Owner:  project.RootMain,
			})
			continue
		}

		owners := rec.Owners()
		if len(owners) == 1 {
			dest := path.Join(owners[0], rel)
			if dest != key {
				plan.AddOperation(Operation{
					Type:  OpMove,
					From:  key,
					To:    dest,
					Kind:  project.KindComponent,
					Owner: owners[0],
				})
			}
			continue
		}

		keep := false
		for _, owner := range owners {
			dest := path.Join(owner, rel)
			if dest == key {
				keep = true
				continue
			}
			plan.AddOperation(Operation{
				Type:  OpCopy,
				From:  key,
				To:    dest,
				Kind:  project.KindComponent,
				Owner: owner,
			})
		}
		if !keep {
			plan.AddOperation(Operation{
				Type: OpRemove,
				From: key,
				Kind: project.KindComponent,
			})
		}
	}

	pages := append([]subpackage.PageMove(nil), in.Subpackages.PageMoves...)
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].From < pages[j].From })
	for _, pm := range pages {
		plan.AddOperation(Operation{
			Type:  OpMove,
			From:  pm.From,
			To:    pm.To,
			Kind:  project.KindPage,
			Owner: pm.SubRoot,
		})
	}

	NewConflictChecker(in.Table, in.Force).Check(plan)
	return plan
}

// describe renders an operation for conflict messages.
func describe(op Operation) string {
	switch {
	case op.Type == OpRemove:
		return fmt.Sprintf("remove %s", op.From)
	case op.IsBack:
		return fmt.Sprintf("back move of %s", op.From)
	default:
		return fmt.Sprintf("%s of %s", op.Type, op.From)
	}
}
