package shapefile

import "errors"

var (
	// ErrMissingField signals that a layer lacks an attribute column the
	// pipeline cannot operate without.
	ErrMissingField = errors.New("required attribute field missing")

	// ErrUnsupportedShape signals a record whose shape type cannot be
	// converted to a lake geometry.
	ErrUnsupportedShape = errors.New("unsupported shape")
)
