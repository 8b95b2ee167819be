// Package engine orchestrates subpackage placement builds.
//
// The engine package sits between the CLI (or a host build tool) and the
// placement packages. It creates the explicit BuildContext of every build,
// drives the Pipeline stages over the compiled-node table and emits the
// result: physical moves in the output directory, rewritten config and style
// files, and the subpackage manifest.
//
// Key components:
//   - Engine: Main orchestrator called by the CLI
//   - BuildContext: Per-build state threaded through every stage
//   - Pipeline: Ordered stages from restore to reference rewriting
//   - Plugin: Host lifecycle adapter on top of the pipeline
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/danieljhkim/subpkg/internal/clock"
	"github.com/danieljhkim/subpkg/internal/config"
	"github.com/danieljhkim/subpkg/internal/ctxlog"
	"github.com/danieljhkim/subpkg/internal/fsops"
	"github.com/danieljhkim/subpkg/internal/hash"
	"github.com/danieljhkim/subpkg/internal/planner"
	"github.com/danieljhkim/subpkg/internal/project"
	"github.com/danieljhkim/subpkg/internal/resolver"
	"github.com/danieljhkim/subpkg/internal/rewrite"
	"github.com/danieljhkim/subpkg/internal/state"
)

// Engine orchestrates builds.
// It is the main API surface called by the CLI.
type Engine struct {
	fs     fsops.FS
	hasher hash.Hasher
	clock  clock.Clock
}

// New creates a new Engine with the given dependencies.
func New(fs fsops.FS, hasher hash.Hasher, clk clock.Clock) *Engine {
	return &Engine{
		fs:     fs,
		hasher: hasher,
		clock:  clk,
	}
}

// NewBuild creates the context of a new build, with a disk lookup rooted at
// the output directory.
func (e *Engine) NewBuild(settings config.Settings) (*BuildContext, error) {
	bc, err := NewBuildContext(settings, e.clock.Now())
	if err != nil {
		return nil, err
	}
	disk, err := resolver.NewDiskSet(e.fs, settings.OutputDir, settings.ResolverCacheSize)
	if err != nil {
		return nil, err
	}
	bc.Disk = disk
	return bc, nil
}

// LoadTable reads the node table from a JSON dump, or scans the output
// directory when tablePath is empty.
func (e *Engine) LoadTable(bc *BuildContext, tablePath string) (project.Table, error) {
	if tablePath != "" {
		return project.LoadTable(e.fs, tablePath)
	}
	table, err := project.ScanOutput(e.fs, bc.Settings.OutputDir, bc.FileTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", bc.Settings.OutputDir, err)
	}
	return table, nil
}

// Plan runs the pipeline up to move planning without changing anything.
func (e *Engine) Plan(ctx context.Context, req *PlanRequest) (*PlanResult, error) {
	bc, err := e.NewBuild(req.Settings)
	if err != nil {
		return nil, err
	}
	ctx = ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx).With("build", bc.ID))

	table, err := e.LoadTable(bc, req.TablePath)
	if err != nil {
		return nil, err
	}
	fingerprint, err := hash.Table(e.hasher, table)
	if err != nil {
		return nil, err
	}

	if rec := e.placedRecord(ctx, bc, req.TablePath, fingerprint); rec != nil {
		return &PlanResult{
			BuildID:       bc.ID,
			Fingerprint:   fingerprint,
			Plan:          rec.Plan,
			AlreadyPlaced: true,
		}, nil
	}

	planErr := NewPipeline(bc, req.Force).Plan(ctx, table)
	result := &PlanResult{
		BuildID:     bc.ID,
		Fingerprint: fingerprint,
		Subpackages: bc.Subpackages,
		Ownership:   bc.Ownership,
		Plan:        bc.Plan,
	}
	if planErr != nil {
		return result, planErr
	}
	return result, nil
}

// Algorithm steps:
// 1. Create the build context and load the node table
// 2. Skip output already placed by the recorded apply
// 3. Run the pipeline (restore, format, graph, ownership, plan, rewrite)
// 4. Stop on conflicts, or after planning for a dry run
// 5. Emit: physical moves, config and style rewrites, manifest
// 6. Persist the rewritten table, the plan and the build record
func (e *Engine) Apply(ctx context.Context, req *ApplyRequest) (*ApplyResult, error) {
	bc, err := e.NewBuild(req.Settings)
	if err != nil {
		return nil, err
	}
	ctx = ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx).With("build", bc.ID))

	table, err := e.LoadTable(bc, req.TablePath)
	if err != nil {
		return nil, err
	}
	fingerprint, err := hash.Table(e.hasher, table)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{BuildID: bc.ID, Fingerprint: fingerprint}
	if rec := e.placedRecord(ctx, bc, req.TablePath, fingerprint); rec != nil {
		result.Plan = rec.Plan
		result.AlreadyPlaced = true
		return result, nil
	}

	if err := NewPipeline(bc, req.Force).Run(ctx, table); err != nil {
		result.Plan = bc.Plan
		return result, err
	}
	result.Plan = bc.Plan

	if req.DryRun {
		return result, nil
	}

	emitted, err := e.Emit(ctx, bc, table)
	result.Emit = emitted
	if err != nil {
		return result, err
	}
	result.Applied = true

	if req.TableOut != "" {
		if err := project.SaveTable(e.fs, req.TableOut, table); err != nil {
			return result, err
		}
	}
	if req.PlanOut != "" {
		if err := SavePlan(e.fs, req.PlanOut, bc.Plan); err != nil {
			return result, err
		}
	}
	if emitted.ManifestWritten && req.TablePath == "" {
		if err := e.recordBuild(bc, fingerprint); err != nil {
			return result, err
		}
	}
	return result, nil
}

// stateStore returns the build record store of settings, or nil when
// recording is disabled.
func (e *Engine) stateStore(bc *BuildContext) state.Store {
	if bc.Settings.StateFile == "" {
		return nil
	}
	return state.NewFileStore(e.fs, bc.Settings.StateFile)
}

// placedRecord returns the build record when the scanned output is exactly
// what the recorded apply left behind. Table dumps are never matched.
func (e *Engine) placedRecord(ctx context.Context, bc *BuildContext, tablePath, fingerprint string) *state.BuildRecord {
	store := e.stateStore(bc)
	if store == nil || tablePath != "" {
		return nil
	}
	rec, err := store.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			ctxlog.FromContext(ctx).Warn("ignoring build record", "file", bc.Settings.StateFile, "error", err)
		}
		return nil
	}
	if rec.OutputDir != bc.Settings.OutputDir || !rec.Placed(bc.Settings.Platform, fingerprint) {
		return nil
	}
	ctxlog.FromContext(ctx).Info("output already placed", "build", bc.ID, "placedBy", rec.BuildID)
	return rec
}

// recordBuild rescans the placed output and saves the build record.
func (e *Engine) recordBuild(bc *BuildContext, inputFingerprint string) error {
	store := e.stateStore(bc)
	if store == nil {
		return nil
	}
	placed, err := e.LoadTable(bc, "")
	if err != nil {
		return err
	}
	outputFingerprint, err := hash.Table(e.hasher, placed)
	if err != nil {
		return err
	}

	rec := state.NewBuildRecord(bc.ID, bc.Settings.Platform, bc.Settings.OutputDir, e.clock.Now())
	rec.InputFingerprint = inputFingerprint
	rec.OutputFingerprint = outputFingerprint
	rec.Roots = bc.Subpackages.Roots()
	rec.Plan = bc.Plan
	return store.Save(rec)
}

// Restore reverse-patches a table dumped after an earlier build, using the
// plan that build saved.
func (e *Engine) Restore(ctx context.Context, req *RestoreRequest) (*RestoreResult, error) {
	bc, err := e.NewBuild(req.Settings)
	if err != nil {
		return nil, err
	}
	table, err := project.LoadTable(e.fs, req.TablePath)
	if err != nil {
		return nil, err
	}
	plan, err := e.previousPlan(bc, req.PreviousPlanPath)
	if err != nil {
		return nil, err
	}

	reloc := rewrite.FromPlan(plan)
	n := rewrite.New(bc.Resolver, bc.Settings.NpmRoot).Restore(table, reloc)
	ctxlog.FromContext(ctx).Info("restored table", "build", bc.ID, "relocated", len(reloc), "rewritten", n)

	out := req.TableOut
	if out == "" {
		out = req.TablePath
	}
	if err := project.SaveTable(e.fs, out, table); err != nil {
		return nil, err
	}
	return &RestoreResult{Relocated: len(reloc), Rewritten: n, TablePath: out}, nil
}

// previousPlan reads the plan file, or the plan of the build record when
// no file is given.
func (e *Engine) previousPlan(bc *BuildContext, file string) (*planner.MovePlan, error) {
	if file != "" {
		return LoadPlan(e.fs, file)
	}
	store := e.stateStore(bc)
	if store == nil {
		return nil, ErrNoPreviousPlan
	}
	rec, err := store.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no build record at %s", ErrNoPreviousPlan, bc.Settings.StateFile)
		}
		return nil, err
	}
	return rec.Plan, nil
}

// SavePlan writes a move plan as indented JSON.
func SavePlan(fs fsops.FS, file string, plan *planner.MovePlan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	if err := fs.AtomicWrite(file, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return nil
}

// LoadPlan reads a plan written by SavePlan.
func LoadPlan(fs fsops.FS, file string) (*planner.MovePlan, error) {
	data, err := fs.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	plan := planner.NewMovePlan()
	if err := json.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", file, err)
	}
	return plan, nil
}
