package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/danieljhkim/subpkg/internal/config"
	"github.com/danieljhkim/subpkg/internal/ctxlog"
	"github.com/danieljhkim/subpkg/internal/project"
	"github.com/danieljhkim/subpkg/internal/rewrite"
	"github.com/danieljhkim/subpkg/internal/subpackage"
)

// Plugin adapts the pipeline to a host build tool that calls back at fixed
// lifecycle points. Each OnBuildStart opens a fresh BuildContext that
// remembers the relocation of the build before it, so a watch-mode rebuild
// over an already rewritten table is restored first.
type Plugin struct {
	engine   *Engine
	settings config.Settings

	mu       sync.Mutex
	pipeline *Pipeline
	table    project.Table
	previous rewrite.Relocation

	// idle is set for a build on a platform without a suffix table; every
	// hook then leaves the host's output alone.
	idle *BuildContext

	// The declared config is read from the entry once; later builds see the
	// normalized config written back into it.
	app         *project.AppConfig
	subpackages *subpackage.Result
}

// NewPlugin creates a Plugin building with settings.
func NewPlugin(e *Engine, settings config.Settings) *Plugin {
	return &Plugin{engine: e, settings: settings}
}

// Context returns the context of the current build, or nil.
func (p *Plugin) Context() *BuildContext {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.idle != nil {
		return p.idle
	}
	if p.pipeline == nil {
		return nil
	}
	return p.pipeline.Context()
}

// OnBuildStart opens a new build. A platform without a suffix table opens
// an idle build instead of failing the host.
func (p *Plugin) OnBuildStart(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.idle = nil
	p.table = nil
	bc, err := p.engine.NewBuild(p.settings)
	if errors.Is(err, ErrUnknownPlatform) {
		p.pipeline = nil
		p.idle = idleBuildContext(p.settings, p.engine.clock.Now())
		ctxlog.FromContext(ctx).Info("unknown platform, nothing to place", "build", p.idle.ID, "platform", p.settings.Platform)
		return nil
	}
	if err != nil {
		return err
	}
	bc.Previous = p.previous
	bc.App = p.app
	bc.Subpackages = p.subpackages
	p.pipeline = NewPipeline(bc, false)
	ctxlog.FromContext(ctx).Info("build started", "build", bc.ID, "platform", bc.Settings.Platform)
	return nil
}

// ModifyTemplateContent runs the placement pipeline over the host's live
// node table, rewriting it in place. A table without an entry is left alone.
func (p *Plugin) ModifyTemplateContent(ctx context.Context, table project.Table) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.idle != nil {
		return nil
	}
	if p.pipeline == nil {
		return errors.New("build not started")
	}

	if err := p.pipeline.Run(ctx, table); err != nil {
		if errors.Is(err, ErrNoEntry) {
			ctxlog.FromContext(ctx).Debug("no entry node, skipping", "build", p.pipeline.Context().ID)
			return nil
		}
		return err
	}
	bc := p.pipeline.Context()
	p.table = table
	p.previous = bc.Relocation
	p.app = bc.App
	p.subpackages = bc.Subpackages
	return nil
}

// ModifyAssets rekeys the host's emitted assets by the move plan and returns
// the number of assets written.
func (p *Plugin) ModifyAssets(ctx context.Context, assets map[string][]byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pipeline == nil {
		return 0
	}
	bc := p.pipeline.Context()
	if bc.Plan == nil {
		return 0
	}
	n := rewrite.RekeyAssets(assets, bc.Plan.Operations, bc.Suffixes())
	ctxlog.FromContext(ctx).Debug("rekeyed assets", "build", bc.ID, "written", n)
	return n
}

// OnBuildFinish moves whatever the host emitted at old locations and writes
// the manifest.
func (p *Plugin) OnBuildFinish(ctx context.Context) (*EmitResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pipeline == nil || p.table == nil {
		return &EmitResult{}, nil
	}
	return p.engine.Emit(ctx, p.pipeline.Context(), p.table)
}
