package selection

import "errors"

var (
	// ErrInvalidArgument is returned for a malformed predicate.
	ErrInvalidArgument = errors.New("selection: invalid argument")

	// ErrUnsupportedOperator is returned by ThetaSelect for an unknown
	// comparison operator.
	ErrUnsupportedOperator = errors.New("selection: unsupported operator")
)
