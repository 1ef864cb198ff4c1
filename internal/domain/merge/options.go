package merge

import (
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
)

// Option applies a configuration option to the Merger.
type Option func(*Merger)

// WithBufferDistance sets the merge tolerance in CRS units (meters).
func WithBufferDistance(d float64) Option {
	return func(m *Merger) {
		if d > 0 {
			m.bufferDistance = d
		}
	}
}

// WithLogger sets a custom logger for the merger.
func WithLogger(log logger.Logger) Option {
	return func(m *Merger) {
		if log != nil {
			m.log = log
		}
	}
}
