package engine

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/subpkg/internal/planner"
)

var (
	// ErrConflict indicates the move plan has conflicts.
	ErrConflict = errors.New("conflict detected")

	// ErrNoEntry indicates the node table has no application entry.
	ErrNoEntry = errors.New("no entry node")

	// ErrDegradedBuild indicates at least one physical operation failed, so
	// the manifest was not written.
	ErrDegradedBuild = errors.New("degraded build")

	// ErrUnknownPlatform indicates the platform has no suffix table.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrNoPreviousPlan indicates restore has neither a plan file nor a
	// build record to take the plan from.
	ErrNoPreviousPlan = errors.New("no previous plan")
)

// OpError is the failure of one physical operation.
type OpError struct {
	Op   planner.Operation
	Path string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op.Type, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
