package colsel

import (
	"errors"
	"fmt"

	"github.com/hupe1980/colsel/candidate"
	"github.com/hupe1980/colsel/internal/imprints"
	"github.com/hupe1980/colsel/internal/resource"
	"github.com/hupe1980/colsel/internal/selection"
)

var (
	// ErrInvalidArgument is returned for a malformed query or configuration.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfMemory is returned when a result buffer cannot be reserved.
	// Any partial result has been released.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrClosed is returned by an engine after Close.
	ErrClosed = errors.New("engine closed")
)

// ErrUnknownOperator indicates a comparison operator ThetaSelect does not
// know.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUnknownOperator struct {
	Op    string
	cause error
}

func (e *ErrUnknownOperator) Error() string {
	return fmt.Sprintf("unknown operator: %q", e.Op)
}

func (e *ErrUnknownOperator) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, candidate.ErrOutOfMemory) || errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	if errors.Is(err, selection.ErrInvalidArgument) || errors.Is(err, candidate.ErrUnsorted) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if errors.Is(err, imprints.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}
