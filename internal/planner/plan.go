package planner

import "github.com/danieljhkim/subpkg/internal/project"

// MovePlan represents the relocations of one build.
type MovePlan struct {
	// Operations is the ordered list of operations to execute
	Operations []Operation `json:"operations"`

	// Conflicts is a list of detected conflicts (empty if no conflicts)
	Conflicts []Conflict `json:"conflicts"`
}

// Operation represents a single relocation of a logical path.
type Operation struct {
	// Type is the operation type: "move", "copy", "remove"
	Type string `json:"type"`

	// From is the logical source path
	From string `json:"from"`

	// To is the logical destination path (empty for remove)
	To string `json:"to,omitempty"`

	// IsBack marks a return into the main package
	IsBack bool `json:"isBack,omitempty"`

	// Kind is the kind of node being relocated
	Kind project.Kind `json:"kind"`

	// Owner is the package receiving the node
	Owner string `json:"owner,omitempty"`
}

// Conflict represents a conflict detected during planning.
type Conflict struct {
	// Path is the logical path where the conflict was detected
	Path string `json:"path"`

	// Reason is a human-readable explanation of the conflict
	Reason string `json:"reason"`

	// Existing describes what currently claims the path
	Existing string `json:"existing"`

	// Incoming describes what the plan wants to put there
	Incoming string `json:"incoming"`
}

// Operation type constants
const (
	OpMove   = "move"
	OpCopy   = "copy"
	OpRemove = "remove"
)

// NewMovePlan creates a new empty MovePlan.
func NewMovePlan() *MovePlan {
	return &MovePlan{
		Operations: []Operation{},
		Conflicts:  []Conflict{},
	}
}

// HasConflicts returns true if the plan has any conflicts.
func (p *MovePlan) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// AddOperation adds an operation to the plan.
func (p *MovePlan) AddOperation(op Operation) {
	p.Operations = append(p.Operations, op)
}

// AddConflict adds a conflict to the plan.
func (p *MovePlan) AddConflict(conflict Conflict) {
	p.Conflicts = append(p.Conflicts, conflict)
}

// Empty reports whether the plan relocates nothing.
func (p *MovePlan) Empty() bool {
	return p == nil || len(p.Operations) == 0
}

// Count returns the number of operations of type opType.
func (p *MovePlan) Count(opType string) int {
	n := 0
	for _, op := range p.Operations {
		if op.Type == opType {
			n++
		}
	}
	return n
}

// Destinations returns every destination of from, in plan order.
func (p *MovePlan) Destinations(from string) []string {
	var out []string
	for _, op := range p.Operations {
		if op.From == from && op.To != "" {
			out = append(out, op.To)
		}
	}
	return out
}
