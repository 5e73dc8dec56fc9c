package headers

import "errors"

var (
	// ErrUnsatisfiableConstraints reports a request no relaxation step
	// could satisfy against the loaded models. Surfaced only in strict
	// mode; otherwise the pipeline falls back to a minimal stub.
	ErrUnsatisfiableConstraints = errors.New("unsatisfiable constraints")

	// ErrMissingUserAgent reports a value network that produced no
	// user-agent header, which breaks browser detection and ordering.
	ErrMissingUserAgent = errors.New("generated headers carry no user-agent")
)
