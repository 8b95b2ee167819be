package state

import (
	"time"

	"github.com/danieljhkim/subpkg/internal/planner"
)

// SchemaVersion is the version of BuildRecord written by this build.
const SchemaVersion = 1

// BuildRecord is the persisted result of one apply.
type BuildRecord struct {
	// SchemaVersion is the version of this schema
	SchemaVersion int `json:"schemaVersion"`

	// BuildID identifies the build that wrote the record
	BuildID string `json:"buildId"`

	// Platform is the platform the output was placed for
	Platform string `json:"platform"`

	// OutputDir is the placed output directory
	OutputDir string `json:"outputDir"`

	// InputFingerprint is the digest of the node table before placement
	InputFingerprint string `json:"inputFingerprint"`

	// OutputFingerprint is the digest of the node table scanned after placement
	OutputFingerprint string `json:"outputFingerprint"`

	// Roots are the canonical subpackage roots in declaration order
	Roots []string `json:"roots"`

	// AppliedAt is when the placement finished
	AppliedAt time.Time `json:"appliedAt"`

	// Plan is the applied move plan
	Plan *planner.MovePlan `json:"plan"`
}

// NewBuildRecord creates a record for a build.
func NewBuildRecord(buildID, platform, outputDir string, appliedAt time.Time) *BuildRecord {
	return &BuildRecord{
		SchemaVersion: SchemaVersion,
		BuildID:       buildID,
		Platform:      platform,
		OutputDir:     outputDir,
		Roots:         []string{},
		AppliedAt:     appliedAt,
		Plan:          planner.NewMovePlan(),
	}
}

// Placed reports whether the record describes an output directory whose
// scan fingerprints to fingerprint on platform.
func (r *BuildRecord) Placed(platform, fingerprint string) bool {
	return r != nil && r.Platform == platform && r.OutputFingerprint != "" && r.OutputFingerprint == fingerprint
}
