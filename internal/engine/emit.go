package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/danieljhkim/subpkg/internal/clock"
	"github.com/danieljhkim/subpkg/internal/ctxlog"
	"github.com/danieljhkim/subpkg/internal/planner"
	"github.com/danieljhkim/subpkg/internal/project"
	"github.com/danieljhkim/subpkg/internal/rewrite"
	"github.com/danieljhkim/subpkg/internal/subpackage"
)

// Emit makes the output directory match the rewritten table: it executes the
// move plan, rewrites config and style files and finally merges the manifest
// into the app config. The manifest is only written when every operation
// succeeded; otherwise the failures are returned wrapped in ErrDegradedBuild.
func (e *Engine) Emit(ctx context.Context, bc *BuildContext, table project.Table) (*EmitResult, error) {
	logger := ctxlog.FromContext(ctx)
	root := bc.Settings.OutputDir
	result := &EmitResult{}

	if bc.Subpackages.Empty() {
		result.Duration = clock.Elapsed(e.clock, bc.StartedAt)
		return result, nil
	}

	var errs []error
	if bc.Plan != nil {
		x := &executor{fs: e.fs, hasher: e.hasher, concurrency: bc.Settings.Concurrency}
		stats, failures := x.run(ctx, root, bc.Plan.Operations, bc.Suffixes())
		result.Moved, result.Copied, result.Removed, result.Skipped = stats.Moved, stats.Copied, stats.Removed, stats.Skipped
		errs = append(errs, failures...)
	}

	n, failures := e.writeConfigs(bc, table)
	result.ConfigsWritten = n
	errs = append(errs, failures...)

	n, failures = e.writeStyles(bc, table)
	result.StylesWritten = n
	errs = append(errs, failures...)

	if len(errs) > 0 {
		for _, err := range errs {
			logger.Error("operation failed", "error", err)
		}
		result.Duration = clock.Elapsed(e.clock, bc.StartedAt)
		return result, fmt.Errorf("%w: %d operations failed: %w", ErrDegradedBuild, len(errs), errors.Join(errs...))
	}

	if bc.Plan != nil {
		result.DirsPruned = e.pruneDirs(root, bc.Plan.Operations)
	}

	if err := e.writeManifest(bc); err != nil {
		result.Duration = clock.Elapsed(e.clock, bc.StartedAt)
		return result, err
	}
	result.ManifestWritten = true
	result.Duration = clock.Elapsed(e.clock, bc.StartedAt)

	logger.Info("build emitted",
		"moved", result.Moved,
		"copied", result.Copied,
		"removed", result.Removed,
		"skipped", result.Skipped,
		"configs", result.ConfigsWritten,
		"styles", result.StylesWritten,
		"dirsPruned", result.DirsPruned,
		"duration", result.Duration)
	return result, nil
}

// writeConfigs stores the rewritten usingComponents of every node whose
// config file on disk differs. Other fields are kept.
func (e *Engine) writeConfigs(bc *BuildContext, table project.Table) (int, []error) {
	written := 0
	var errs []error
	for _, key := range table.Keys() {
		n := table[key]
		if key == bc.EntryKey || len(n.Components()) == 0 {
			continue
		}
		file := path.Join(bc.Settings.OutputDir, key+bc.ConfigSuffix())
		changed, err := e.patchConfig(file, n.Config.UsingComponents)
		if err != nil {
			errs = append(errs, fmt.Errorf("config %s: %w", file, err))
			continue
		}
		if changed {
			written++
		}
	}
	return written, errs
}

func (e *Engine) patchConfig(file string, using project.UsingComponents) (bool, error) {
	exists, err := e.fs.Exists(file)
	if err != nil || !exists {
		return false, err
	}
	data, err := e.fs.ReadFile(file)
	if err != nil {
		return false, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return false, fmt.Errorf("failed to parse: %w", err)
	}

	encoded, err := using.MarshalJSON()
	if err != nil {
		return false, err
	}
	var next, current bytes.Buffer
	if err := json.Compact(&next, encoded); err != nil {
		return false, err
	}
	if raw, ok := fields["usingComponents"]; ok && json.Compact(&current, raw) == nil {
		if bytes.Equal(current.Bytes(), next.Bytes()) {
			return false, nil
		}
	}
	fields["usingComponents"] = next.Bytes()

	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return false, err
	}
	if err := e.fs.AtomicWrite(file, append(out, '\n'), 0644); err != nil {
		return false, err
	}
	return true, nil
}

// writeStyles re-bases the @import targets of every node style file and of
// the configured global style files.
func (e *Engine) writeStyles(bc *BuildContext, table project.Table) (int, []error) {
	suffix := bc.StyleSuffix()
	if suffix == "" {
		return 0, nil
	}
	inverse := bc.Relocation.Inverse()

	type styleFile struct{ oldKey, newKey string }
	var files []styleFile
	seen := make(map[string]bool)
	for _, key := range table.Keys() {
		oldKey := key
		if src, ok := inverse[key]; ok {
			oldKey = src[0]
		}
		files = append(files, styleFile{oldKey: oldKey, newKey: key})
		seen[key] = true
	}
	for _, g := range bc.Settings.GlobalStyles {
		if !seen[g] {
			files = append(files, styleFile{oldKey: g, newKey: g})
		}
	}

	written := 0
	var errs []error
	for _, f := range files {
		file := path.Join(bc.Settings.OutputDir, f.newKey+suffix)
		exists, err := e.fs.Exists(file)
		if err != nil {
			errs = append(errs, fmt.Errorf("style %s: %w", file, err))
			continue
		}
		if !exists {
			continue
		}
		data, err := e.fs.ReadFile(file)
		if err != nil {
			errs = append(errs, fmt.Errorf("style %s: %w", file, err))
			continue
		}
		out := rewrite.RewriteStyle(data, f.oldKey, f.newKey, bc.Relocation)
		if bytes.Equal(out, data) {
			continue
		}
		if err := e.fs.AtomicWrite(file, out, 0644); err != nil {
			errs = append(errs, fmt.Errorf("style %s: %w", file, err))
			continue
		}
		written++
	}
	return written, errs
}

// pruneDirs removes the source directories that moves and removes left
// without files, walking up towards root.
func (e *Engine) pruneDirs(root string, ops []planner.Operation) int {
	seen := make(map[string]bool)
	pruned := 0
	for _, op := range ops {
		if op.Type == planner.OpCopy {
			continue
		}
		for dir := path.Dir(op.From); dir != "." && dir != "/" && !seen[dir]; dir = path.Dir(dir) {
			seen[dir] = true
			full := path.Join(root, dir)
			info, err := e.fs.Lstat(full)
			if err != nil || !info.IsDir() {
				break
			}
			files, err := e.fs.ListFiles(full)
			if err != nil || len(files) > 0 {
				break
			}
			if err := e.fs.RemoveAll(full); err != nil {
				break
			}
			pruned++
		}
	}
	return pruned
}

// writeManifest merges subPackages and preloadRule into the app config.
func (e *Engine) writeManifest(bc *BuildContext) error {
	entry := bc.EntryKey
	if entry == "" {
		entry = project.EntryKey
	}
	file := path.Join(bc.Settings.OutputDir, entry+bc.ConfigSuffix())

	var data []byte
	exists, err := e.fs.Exists(file)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", file, err)
	}
	if exists {
		if data, err = e.fs.ReadFile(file); err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
	}
	out, err := subpackage.MergeAppJSON(data, bc.Subpackages.Manifest())
	if err != nil {
		return err
	}
	if err := e.fs.AtomicWrite(file, out, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
