package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/subpkg/internal/ctxlog"
	"github.com/danieljhkim/subpkg/internal/graph"
	"github.com/danieljhkim/subpkg/internal/ownership"
	"github.com/danieljhkim/subpkg/internal/planner"
	"github.com/danieljhkim/subpkg/internal/project"
	"github.com/danieljhkim/subpkg/internal/resolver"
	"github.com/danieljhkim/subpkg/internal/rewrite"
	"github.com/danieljhkim/subpkg/internal/subpackage"
)

// Pipeline runs the placement stages over a node table in order:
// Restore, FormatSpec, BuildGraph, ResolveOwnership, PlanMoves and
// RewriteReferences. Emit is done by the Engine once the table is final.
type Pipeline struct {
	bc       *BuildContext
	rewriter *rewrite.Rewriter
	force    bool
}

// NewPipeline creates a pipeline over bc. force lets PlanMoves accept
// occupied destinations.
func NewPipeline(bc *BuildContext, force bool) *Pipeline {
	return &Pipeline{
		bc:       bc,
		rewriter: rewrite.New(bc.Resolver, bc.Settings.NpmRoot),
		force:    force,
	}
}

// Context returns the build context of the pipeline.
func (p *Pipeline) Context() *BuildContext {
	return p.bc
}

// Run executes every stage up to and including RewriteReferences. A table
// without declared subpackages is left untouched.
func (p *Pipeline) Run(ctx context.Context, table project.Table) error {
	if err := p.Plan(ctx, table); err != nil {
		return err
	}
	p.RewriteReferences(ctx, table)
	return nil
}

// Plan executes the stages up to and including PlanMoves.
func (p *Pipeline) Plan(ctx context.Context, table project.Table) error {
	p.Restore(ctx, table)
	if err := p.FormatSpec(ctx, table); err != nil {
		return err
	}
	p.BuildGraph(ctx, table)
	p.ResolveOwnership(ctx)
	return p.PlanMoves(ctx, table)
}

// Restore reverts the relocation of the previous build so graph
// construction sees the pre-move layout.
func (p *Pipeline) Restore(ctx context.Context, table project.Table) {
	if len(p.bc.Previous) == 0 {
		return
	}
	n := p.rewriter.Restore(table, p.bc.Previous)
	ctxlog.FromContext(ctx).Debug("restored previous layout",
		"build", p.bc.ID, "relocated", len(p.bc.Previous), "rewritten", n)
}

// FormatSpec reads the declared subpackages from the entry node once per
// build context, normalizes them and writes the normalized subPackages and
// preloadRule back into the entry config.
func (p *Pipeline) FormatSpec(ctx context.Context, table project.Table) error {
	key, entry, ok := table.Entry()
	if !ok {
		return ErrNoEntry
	}
	p.bc.EntryKey = key
	if p.bc.Subpackages != nil {
		return nil
	}

	app, err := entry.AppConfig()
	if err != nil {
		return fmt.Errorf("failed to read app config: %w", err)
	}
	p.bc.App = app

	files := resolver.FileSet(resolver.TableSet(table))
	if p.bc.Disk != nil {
		files = resolver.Union{files, resolver.WithSuffix(p.bc.Disk, p.bc.ConfigSuffix())}
	}
	p.bc.Subpackages = subpackage.Format(subpackage.FormatInput{
		Declared: app.SubPackages,
		Platform: p.bc.Settings.Platform,
		Resolver: p.bc.Resolver,
		Files:    files,
	})
	if p.bc.Subpackages.Empty() {
		ctxlog.FromContext(ctx).Debug("no subpackages declared", "build", p.bc.ID)
		return nil
	}

	if entry.Config == nil {
		entry.Config = &project.NodeConfig{}
	}
	m := p.bc.Subpackages.Manifest()
	if err := entry.Config.SetExtra("subPackages", m.SubPackages); err != nil {
		return err
	}
	if len(m.PreloadRule) > 0 {
		if err := entry.Config.SetExtra("preloadRule", m.PreloadRule); err != nil {
			return err
		}
	}
	ctxlog.FromContext(ctx).Info("normalized subpackages",
		"build", p.bc.ID, "roots", p.bc.Subpackages.Roots(), "preloadRules", len(m.PreloadRule))
	return nil
}

// BuildGraph records which packages use which component.
func (p *Pipeline) BuildGraph(ctx context.Context, table project.Table) {
	if p.bc.Subpackages.Empty() {
		p.bc.Preset = graph.Preset{}
		return
	}
	p.bc.Preset = graph.Build(table, p.bc.Subpackages.SubRootMap, graph.Options{
		Resolver: p.bc.Resolver,
		NpmRoot:  p.bc.Settings.NpmRoot,
	})
	ctxlog.FromContext(ctx).Debug("built usage graph", "build", p.bc.ID, "components", len(p.bc.Preset))
}

// ResolveOwnership finalizes the package of every used component.
func (p *Pipeline) ResolveOwnership(ctx context.Context) {
	p.bc.Ownership = ownership.Resolve(p.bc.Preset, ownership.Options{
		AllowMultiOwner: p.bc.Settings.AllowMultiOwner,
	})
	moving := 0
	for _, rec := range p.bc.Ownership {
		if rec.Move {
			moving++
		}
	}
	ctxlog.FromContext(ctx).Debug("resolved ownership",
		"build", p.bc.ID, "components", len(p.bc.Ownership), "leavingMain", moving)
}

// PlanMoves derives the move plan and its relocation. Conflicts are
// returned as ErrConflict unless the pipeline is forced.
func (p *Pipeline) PlanMoves(ctx context.Context, table project.Table) error {
	p.bc.Plan = planner.BuildMovePlan(planner.Input{
		Table:       table,
		Subpackages: p.bc.Subpackages,
		Ownership:   p.bc.Ownership,
		SharedDir:   p.bc.Settings.SharedDir,
		Force:       p.force,
	})
	p.bc.Relocation = rewrite.FromPlan(p.bc.Plan)

	logger := ctxlog.FromContext(ctx)
	logger.Info("planned moves",
		"build", p.bc.ID,
		"moves", p.bc.Plan.Count(planner.OpMove),
		"copies", p.bc.Plan.Count(planner.OpCopy),
		"removes", p.bc.Plan.Count(planner.OpRemove),
		"conflicts", len(p.bc.Plan.Conflicts))

	if p.bc.Plan.HasConflicts() {
		for _, c := range p.bc.Plan.Conflicts {
			logger.Warn("move conflict", "path", c.Path, "reason", c.Reason, "existing", c.Existing, "incoming", c.Incoming)
		}
		if !p.force {
			return fmt.Errorf("%w: %d conflicts detected", ErrConflict, len(p.bc.Plan.Conflicts))
		}
	}
	return nil
}

// RewriteReferences rekeys the table and re-bases every import.
func (p *Pipeline) RewriteReferences(ctx context.Context, table project.Table) {
	n, skipped := p.rewriter.Apply(table, p.bc.Relocation)
	logger := ctxlog.FromContext(ctx)
	for _, s := range skipped {
		logger.Warn("destination already in the table, node not relocated", "build", p.bc.ID, "from", s.From, "to", s.To)
	}
	p.bc.SkippedMoves = skipped
	logger.Debug("rewrote references", "build", p.bc.ID, "rewritten", n, "skipped", len(skipped))
}
