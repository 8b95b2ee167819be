package engine

import (
	"context"
	"fmt"
	"path"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/danieljhkim/subpkg/internal/fsops"
	"github.com/danieljhkim/subpkg/internal/hash"
	"github.com/danieljhkim/subpkg/internal/planner"
)

// executor runs the physical side of a move plan as a bounded-parallel
// batch. Operations sharing a source run in plan order inside one task so a
// fan-out's copies finish before its remove.
type executor struct {
	fs          fsops.FS
	hasher      hash.Hasher
	concurrency int
}

// execStats counts what the batch did.
type execStats struct {
	Moved   int
	Copied  int
	Removed int
	Skipped int
}

// run executes ops under root for every suffix. Missing sources are skipped.
// Every failure is captured; the batch never stops early.
func (x *executor) run(ctx context.Context, root string, ops []planner.Operation, suffixes []string) (execStats, []error) {
	var order []string
	groups := make(map[string][]planner.Operation)
	for _, op := range ops {
		if _, ok := groups[op.From]; !ok {
			order = append(order, op.From)
		}
		groups[op.From] = append(groups[op.From], op)
	}

	var (
		mu    sync.Mutex
		stats execStats
		errs  []error
	)
	record := func(s execStats, failures []error) {
		mu.Lock()
		defer mu.Unlock()
		stats.Moved += s.Moved
		stats.Copied += s.Copied
		stats.Removed += s.Removed
		stats.Skipped += s.Skipped
		errs = append(errs, failures...)
	}

	g := new(errgroup.Group)
	limit := x.concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for _, from := range order {
		group := groups[from]
		g.Go(func() error {
			var s execStats
			var failures []error
			for _, op := range group {
				if err := ctx.Err(); err != nil {
					failures = append(failures, &OpError{Op: op, Path: op.From, Err: err})
					continue
				}
				for _, suffix := range suffixes {
					done, err := x.execute(root, op, suffix)
					if err != nil {
						failures = append(failures, &OpError{Op: op, Path: op.From + suffix, Err: err})
						continue
					}
					switch {
					case !done:
						s.Skipped++
					case op.Type == planner.OpMove:
						s.Moved++
					case op.Type == planner.OpCopy:
						s.Copied++
					case op.Type == planner.OpRemove:
						s.Removed++
					}
				}
			}
			record(s, failures)
			return nil
		})
	}
	_ = g.Wait()
	return stats, errs
}

// execute applies op to one suffix variant. It reports false when the source
// does not exist.
func (x *executor) execute(root string, op planner.Operation, suffix string) (bool, error) {
	if err := x.fs.ValidateRelPath(op.From); err != nil {
		return false, err
	}
	if op.Type != planner.OpRemove {
		if err := x.fs.ValidateRelPath(op.To); err != nil {
			return false, err
		}
	}
	src := path.Join(root, op.From+suffix)
	exists, err := x.fs.Exists(src)
	if err != nil {
		return false, fmt.Errorf("failed to check source: %w", err)
	}
	if !exists {
		return false, nil
	}

	switch op.Type {
	case planner.OpRemove:
		if err := x.fs.Remove(src); err != nil {
			return false, fmt.Errorf("failed to remove: %w", err)
		}
		return true, nil
	case planner.OpCopy, planner.OpMove:
		dst := path.Join(root, op.To+suffix)
		same, err := x.identical(src, dst)
		if err != nil {
			return false, err
		}
		if op.Type == planner.OpCopy {
			if same {
				return true, nil
			}
			if err := x.fs.Copy(src, dst); err != nil {
				return false, fmt.Errorf("failed to copy: %w", err)
			}
			return true, nil
		}
		if same {
			if err := x.fs.Remove(src); err != nil {
				return false, fmt.Errorf("failed to remove moved source: %w", err)
			}
			return true, nil
		}
		if err := x.fs.Move(src, dst); err != nil {
			return false, fmt.Errorf("failed to move: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

// identical reports whether dst already holds the bytes of src.
func (x *executor) identical(src, dst string) (bool, error) {
	exists, err := x.fs.Exists(dst)
	if err != nil || !exists {
		return false, err
	}
	a, err := x.fs.ReadFile(src)
	if err != nil {
		return false, fmt.Errorf("failed to read source: %w", err)
	}
	b, err := x.fs.ReadFile(dst)
	if err != nil {
		return false, fmt.Errorf("failed to read destination: %w", err)
	}
	if len(a) != len(b) {
		return false, nil
	}
	return x.hasher.Sum(a) == x.hasher.Sum(b), nil
}
