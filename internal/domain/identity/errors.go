package identity

import (
	"errors"
)

// ErrNoMatch means the two layers share no lake identifiers. Fatal to the
// run, but a clean early exit with diagnostics rather than a crash; it
// usually indicates mismatched identifier formats or the wrong input files.
var ErrNoMatch = errors.New("no matching lakes between layers")
