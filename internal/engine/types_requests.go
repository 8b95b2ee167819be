package engine

import "github.com/danieljhkim/subpkg/internal/config"

// PlanRequest represents a request to plan a build without applying it.
type PlanRequest struct {
	// Settings are the resolved build settings
	Settings config.Settings

	// TablePath is an optional JSON table dump; the output directory is
	// scanned when empty
	TablePath string

	// Force accepts destinations that already hold a node
	Force bool
}

// ApplyRequest represents a request to run a full build.
type ApplyRequest struct {
	// Settings are the resolved build settings
	Settings config.Settings

	// TablePath is an optional JSON table dump; the output directory is
	// scanned when empty
	TablePath string

	// Force proceeds despite conflicts
	Force bool

	// DryRun performs planning and rewriting in memory only
	DryRun bool

	// TableOut is where the rewritten table is saved (optional)
	TableOut string

	// PlanOut is where the executed plan is saved for a later restore (optional)
	PlanOut string
}

// RestoreRequest represents a request to revert a previous build's
// relocation in a table dump.
type RestoreRequest struct {
	// Settings are the resolved build settings
	Settings config.Settings

	// TablePath is the table dumped after the previous build
	TablePath string

	// PreviousPlanPath is the plan saved by the previous build. Empty reads
	// the plan from the build record.
	PreviousPlanPath string

	// TableOut is where the restored table is written; defaults to TablePath
	TableOut string
}
