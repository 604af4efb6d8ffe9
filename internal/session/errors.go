package session

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/blockgridgo/internal/program"
)

var (
	// ErrRejectedEdit classifies edits refused for structural or gating
	// reasons. It matches every program.ErrRejected error too.
	ErrRejectedEdit = program.ErrRejected
	// ErrInvalidReference classifies operations naming an unknown block.
	ErrInvalidReference = program.ErrInvalidReference

	ErrEditLocked   = fmt.Errorf("%w: the program cannot change until the next puzzle", ErrRejectedEdit)
	ErrModeMismatch = fmt.Errorf("%w: block is not available in this mode", ErrRejectedEdit)
	ErrModeLocked   = fmt.Errorf("%w: mode is chosen by progression", ErrRejectedEdit)

	ErrRunInProgress    = errors.New("a run is already in progress")
	ErrAlreadyAttempted = errors.New("puzzle already attempted")
	ErrLocked           = errors.New("no attempts left")
	ErrNoPuzzle         = errors.New("no puzzle loaded")
	ErrUnsolvablePuzzle = errors.New("puzzle cannot be solved")
)
