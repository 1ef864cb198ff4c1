package aggregate

import (
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithAreaBounds sets the inclusive admission range in acres.
func WithAreaBounds(min, max float64) Option {
	return func(a *Aggregator) {
		if min <= max {
			a.minArea = min
			a.maxArea = max
		}
	}
}

// WithLogger sets a custom logger for the aggregator.
func WithLogger(log logger.Logger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}
