package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds = errors.New("index out of range")
	ErrUsage       = errors.New("invalid command usage")
	ErrNoFormula   = errors.New("no formula to evaluate against")
)
