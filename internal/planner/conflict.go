package planner

import (
	"fmt"

	"github.com/danieljhkim/subpkg/internal/project"
)

// ConflictChecker checks a plan for operations that cannot all be honored.
type ConflictChecker struct {
	table project.Table
	force bool
}

// NewConflictChecker creates a new ConflictChecker. A nil table disables the
// occupied-destination check.
func NewConflictChecker(table project.Table, force bool) *ConflictChecker {
	return &ConflictChecker{
		table: table,
		force: force,
	}
}

// Check records every conflict found in plan.
func (c *ConflictChecker) Check(plan *MovePlan) {
	sources := make(map[string]Operation)
	targets := make(map[string]Operation)

	for _, op := range plan.Operations {
		if prev, ok := sources[op.From]; ok && prev.IsBack != op.IsBack {
			plan.AddConflict(Conflict{
				Path:     op.From,
				Reason:   "Path is both a forward and a back move source",
				Existing: describe(prev),
				Incoming: describe(op),
			})
		}
		if _, ok := sources[op.From]; !ok {
			sources[op.From] = op
		}

		if op.To == "" {
			continue
		}
		if prev, ok := targets[op.To]; ok {
			plan.AddConflict(Conflict{
				Path:     op.To,
				Reason:   "Destination is targeted by more than one operation",
				Existing: describe(prev),
				Incoming: describe(op),
			})
			continue
		}
		targets[op.To] = op
	}

	for _, op := range plan.Operations {
		if op.To == "" {
			continue
		}
		if conflict := c.CheckPath(op, sources); conflict != nil {
			plan.AddConflict(*conflict)
		}
	}
}

// CheckPath checks whether the destination of op already holds a node that
// stays in place. Returns nil if the path is safe to use.
func (c *ConflictChecker) CheckPath(op Operation, sources map[string]Operation) *Conflict {
	if c.table == nil || c.force {
		return nil
	}
	existing, ok := c.table[op.To]
	if !ok {
		return nil
	}
	if leaving, moved := sources[op.To]; moved && leaving.Type != OpCopy {
		return nil
	}
	return &Conflict{
		Path:     op.To,
		Reason:   fmt.Sprintf("Destination already holds a %s", existing.Kind),
		Existing: string(existing.Kind),
		Incoming: describe(op),
	}
}
