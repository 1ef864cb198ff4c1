package merge

import (
	"errors"
)

// ErrGeometryRepair marks a lake whose geometry could not be consolidated
// even after a validity-fixing pass. Per-lake and recoverable: the lake is
// excluded from output and counted, the batch continues.
var ErrGeometryRepair = errors.New("geometry repair failed")
