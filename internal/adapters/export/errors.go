package export

import "errors"

var (
	// ErrWriteOutput signals a filesystem failure while writing artifacts.
	ErrWriteOutput = errors.New("failed to write output")

	// ErrEncodeGeometry signals a geometry that could not be converted to
	// GeoJSON form.
	ErrEncodeGeometry = errors.New("failed to encode geometry")
)
