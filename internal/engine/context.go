package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danieljhkim/subpkg/internal/config"
	"github.com/danieljhkim/subpkg/internal/graph"
	"github.com/danieljhkim/subpkg/internal/ownership"
	"github.com/danieljhkim/subpkg/internal/planner"
	"github.com/danieljhkim/subpkg/internal/platform"
	"github.com/danieljhkim/subpkg/internal/project"
	"github.com/danieljhkim/subpkg/internal/resolver"
	"github.com/danieljhkim/subpkg/internal/rewrite"
	"github.com/danieljhkim/subpkg/internal/subpackage"
)

// BuildContext is the state of one build, passed explicitly between the
// pipeline stages.
type BuildContext struct {
	// ID identifies the build in logs.
	ID string

	// StartedAt is when the build context was created.
	StartedAt time.Time

	Settings  config.Settings
	FileTypes platform.FileTypes
	Resolver  *resolver.Resolver

	// Disk answers existence queries against the output directory for
	// pages the node table does not hold.
	Disk resolver.FileSet

	// EntryKey is the logical path of the entry node.
	EntryKey string

	// App is the declared app config, read once per build.
	App *project.AppConfig

	Subpackages *subpackage.Result
	Preset      graph.Preset
	Ownership   ownership.Map
	Plan        *planner.MovePlan

	// Relocation is derived from Plan.
	Relocation rewrite.Relocation

	// Previous is the relocation applied by the build before this one.
	Previous rewrite.Relocation

	// SkippedMoves lists relocations left out of the table because their
	// destination key was already taken.
	SkippedMoves []rewrite.Skip
}

// NewBuildContext creates the context of a new build. Disk may be nil.
func NewBuildContext(settings config.Settings, now time.Time) (*BuildContext, error) {
	ft, ok := platform.Lookup(settings.Platform)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, settings.Platform)
	}
	return &BuildContext{
		ID:        uuid.NewString(),
		StartedAt: now,
		Settings:  settings,
		FileTypes: ft,
		Resolver:  resolver.New(settings.Platform, settings.Mode),
	}, nil
}

// idleBuildContext creates the context of a build with nothing to place,
// used when the platform has no suffix table.
func idleBuildContext(settings config.Settings, now time.Time) *BuildContext {
	return &BuildContext{
		ID:          uuid.NewString(),
		StartedAt:   now,
		Settings:    settings,
		Subpackages: &subpackage.Result{},
		Plan:        planner.NewMovePlan(),
	}
}

// Suffixes returns the platform file suffixes.
func (bc *BuildContext) Suffixes() []string {
	return bc.FileTypes.Suffixes()
}

// ConfigSuffix returns the platform config suffix.
func (bc *BuildContext) ConfigSuffix() string {
	return bc.FileTypes.Suffix(platform.KindConfig)
}

// StyleSuffix returns the platform style suffix.
func (bc *BuildContext) StyleSuffix() string {
	return bc.FileTypes.Suffix(platform.KindStyle)
}
