package planner

import (
	"strings"
	"testing"

	"github.com/danieljhkim/subpkg/internal/ownership"
	"github.com/danieljhkim/subpkg/internal/project"
)

func TestConflictChecker_DuplicateDestination(t *testing.T) {
	plan := NewMovePlan()
	plan.AddOperation(Operation{Type: OpMove, From: "components/c", To: "a-0/c"})
	plan.AddOperation(Operation{Type: OpMove, From: "widgets/c", To: "a-0/c"})

	NewConflictChecker(nil, false).Check(plan)

	if len(plan.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %+v", plan.Conflicts)
	}
	c := plan.Conflicts[0]
	if c.Path != "a-0/c" {
		t.Errorf("conflict path = %s", c.Path)
	}
	if !strings.Contains(c.Existing, "components/c") || !strings.Contains(c.Incoming, "widgets/c") {
		t.Errorf("conflict should name both sources: %+v", c)
	}
}

func TestConflictChecker_OpposingDirections(t *testing.T) {
	plan := NewMovePlan()
	plan.AddOperation(Operation{Type: OpMove, From: "b/d", To: "b-1/d"})
	plan.AddOperation(Operation{Type: OpMove, From: "b/d", To: "common/b/d", IsBack: true})

	NewConflictChecker(nil, false).Check(plan)

	if !plan.HasConflicts() {
		t.Fatal("expected a conflict")
	}
	if plan.Conflicts[0].Path != "b/d" {
		t.Errorf("conflict path = %s", plan.Conflicts[0].Path)
	}
}

func TestConflictChecker_OccupiedDestination(t *testing.T) {
	table := project.Table{
		"components/c":     {Kind: project.KindComponent},
		"a-0/components/c": {Kind: project.KindComponent},
		"components/e":     {Kind: project.KindComponent},
		"a-0/components/e": {Kind: project.KindComponent},
	}
	ops := []Operation{
		{Type: OpMove, From: "components/c", To: "a-0/components/c", Kind: project.KindComponent},
		// The occupant of the destination leaves, so this one is fine.
		{Type: OpMove, From: "components/e", To: "a-0/components/e", Kind: project.KindComponent},
		{Type: OpMove, From: "a-0/components/e", To: "common/a-0/components/e", IsBack: true, Kind: project.KindComponent},
	}

	tests := []struct {
		name  string
		force bool
		want  int
	}{
		{name: "reported", force: false, want: 1},
		{name: "forced", force: true, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := NewMovePlan()
			for _, op := range ops {
				plan.AddOperation(op)
			}
			NewConflictChecker(table, tt.force).Check(plan)
			if len(plan.Conflicts) != tt.want {
				t.Fatalf("expected %d conflicts, got %+v", tt.want, plan.Conflicts)
			}
			if tt.want > 0 && plan.Conflicts[0].Existing != string(project.KindComponent) {
				t.Errorf("existing = %s", plan.Conflicts[0].Existing)
			}
		})
	}
}

func TestBuildMovePlan_ReportsConflicts(t *testing.T) {
	plan := BuildMovePlan(Input{
		Table: project.Table{
			"components/c":     {Kind: project.KindComponent},
			"a-0/components/c": {Kind: project.KindComponent},
		},
		Subpackages: twoPackages(),
		Ownership:   ownership.Map{"components/c": owned("a-0")},
	})
	if !plan.HasConflicts() {
		t.Fatal("expected occupied destination conflict")
	}
}
