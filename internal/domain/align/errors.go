package align

import (
	"errors"
)

// ErrProjection is fatal to the whole run: without a consistent CRS no
// downstream area or buffer computation is trustworthy.
var ErrProjection = errors.New("projection failed")
