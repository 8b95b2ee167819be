package rewrite

import (
	"sort"
	"strings"

	"github.com/danieljhkim/subpkg/internal/planner"
)

// Relocation maps an old logical path to every path it lives at afterwards.
// A path that keeps its source next to fan-out copies lists itself.
type Relocation map[string][]string

// FromPlan builds the relocation of a move plan.
func FromPlan(plan *planner.MovePlan) Relocation {
	reloc := Relocation{}
	if plan == nil {
		return reloc
	}
	leaves := make(map[string]bool)
	for _, op := range plan.Operations {
		switch op.Type {
		case planner.OpMove:
			leaves[op.From] = true
			reloc[op.From] = append(reloc[op.From], op.To)
		case planner.OpCopy:
			reloc[op.From] = append(reloc[op.From], op.To)
		case planner.OpRemove:
			leaves[op.From] = true
		}
	}
	for from, dests := range reloc {
		if !leaves[from] {
			reloc[from] = append([]string{from}, dests...)
		}
	}
	return reloc
}

// Moved reports whether p has any destination other than itself.
func (r Relocation) Moved(p string) bool {
	dests, ok := r[p]
	return ok && !(len(dests) == 1 && dests[0] == p)
}

// Sources returns the relocated paths in sorted order.
func (r Relocation) Sources() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Target returns where a reference to old points after relocation, as seen
// from a referrer now at referrer. For fan-out the copy in the referrer's own
// package wins, then the kept source, then the first destination.
func (r Relocation) Target(old, referrer string) string {
	dests := r[old]
	switch len(dests) {
	case 0:
		return old
	case 1:
		return dests[0]
	}
	pkg := topDir(referrer)
	for _, d := range dests {
		if topDir(d) == pkg {
			return d
		}
	}
	for _, d := range dests {
		if d == old {
			return d
		}
	}
	return dests[0]
}

// Inverse maps every destination back to its source.
func (r Relocation) Inverse() Relocation {
	inv := make(Relocation, len(r))
	for from, dests := range r {
		for _, d := range dests {
			inv[d] = []string{from}
		}
	}
	return inv
}

func topDir(p string) string {
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}
