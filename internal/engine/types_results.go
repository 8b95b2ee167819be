package engine

import (
	"time"

	"github.com/danieljhkim/subpkg/internal/ownership"
	"github.com/danieljhkim/subpkg/internal/planner"
	"github.com/danieljhkim/subpkg/internal/subpackage"
)

// PlanResult represents the result of planning a build.
type PlanResult struct {
	// BuildID identifies the build
	BuildID string `json:"buildId"`

	// Fingerprint is the digest of the input table
	Fingerprint string `json:"fingerprint"`

	// Subpackages is the normalized subpackage declaration
	Subpackages *subpackage.Result `json:"subpackages"`

	// Ownership is the final package of every used component
	Ownership ownership.Map `json:"ownership"`

	// Plan is the generated move plan
	Plan *planner.MovePlan `json:"plan"`

	// AlreadyPlaced is true when the output matches the last recorded
	// apply; Plan is then the recorded plan
	AlreadyPlaced bool `json:"alreadyPlaced,omitempty"`
}

// ApplyResult represents the result of a full build.
type ApplyResult struct {
	// BuildID identifies the build
	BuildID string `json:"buildId"`

	// Fingerprint is the digest of the input table
	Fingerprint string `json:"fingerprint"`

	// Plan is the generated plan
	Plan *planner.MovePlan `json:"plan"`

	// Applied is false for dry runs and failed builds
	Applied bool `json:"applied"`

	// Emit describes the physical side of the build (nil for dry runs)
	Emit *EmitResult `json:"emit,omitempty"`

	// AlreadyPlaced is true when the output matches the last recorded
	// apply and nothing was done; Plan is then the recorded plan
	AlreadyPlaced bool `json:"alreadyPlaced,omitempty"`
}

// EmitResult represents what Emit changed on disk.
type EmitResult struct {
	Moved   int `json:"moved"`
	Copied  int `json:"copied"`
	Removed int `json:"removed"`

	// Skipped counts suffix variants whose source did not exist
	Skipped int `json:"skipped"`

	// ConfigsWritten counts config files whose usingComponents changed
	ConfigsWritten int `json:"configsWritten"`

	// StylesWritten counts style files whose imports changed
	StylesWritten int `json:"stylesWritten"`

	// DirsPruned counts source directories removed once empty
	DirsPruned int `json:"dirsPruned"`

	// ManifestWritten is true once app config carries the manifest
	ManifestWritten bool `json:"manifestWritten"`

	// Duration is the time since the build started
	Duration time.Duration `json:"duration"`
}

// RestoreResult represents the result of restoring a table.
type RestoreResult struct {
	// Relocated is the number of relocated source paths in the plan
	Relocated int `json:"relocated"`

	// Rewritten is the number of import strings changed
	Rewritten int `json:"rewritten"`

	// TablePath is where the restored table was written
	TablePath string `json:"tablePath"`
}
