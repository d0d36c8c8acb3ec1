package retarget

import (
	"fmt"

	"github.com/pkg/errors"

	"devstabilize/internal/trs"
)

// Error kinds, matched with errors.Is.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrEntityNotFound      = errors.New("entity not found")
	ErrDegenerateTransform = trs.ErrDegenerate
	ErrAdapterFailure      = errors.New("scene adapter failure")
)

// FrameError reports the frame at which a per-frame step failed.
type FrameError struct {
	Frame int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Frame, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// adapterError tags a scene call failure as ErrAdapterFailure while keeping the cause.
type adapterError struct {
	op  string
	err error
}

func (e *adapterError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrAdapterFailure, e.op, e.err)
}

func (e *adapterError) Unwrap() error {
	return e.err
}

func (e *adapterError) Is(target error) bool {
	return target == ErrAdapterFailure
}

func adapterFailure(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &adapterError{op: fmt.Sprintf(format, args...), err: err}
}
