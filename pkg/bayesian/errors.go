package bayesian

import "errors"

// Tokens with reserved meaning across the persisted models.
const (
	// MissingValue marks a dataset field that should be dropped from the
	// final output when sampled.
	MissingValue = "*MISSING_VALUE*"
	// StringifiedPrefix marks a value whose remainder is a JSON payload
	// encoded as a string.
	StringifiedPrefix = "*STRINGIFIED*"
)

var (
	// ErrMalformedModel reports a network document that violates the model
	// invariants: bad JSON, duplicate node names, unknown parents, or
	// parents declared after their children.
	ErrMalformedModel = errors.New("malformed network model")

	// ErrEmptyConstraint reports a constraint whose allowed set is empty,
	// or became empty while propagating through the network.
	ErrEmptyConstraint = errors.New("empty constraint")
)
