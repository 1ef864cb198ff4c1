package identity

import (
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
)

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithLogger sets a custom logger for the matcher.
func WithLogger(log logger.Logger) Option {
	return func(m *Matcher) {
		if log != nil {
			m.log = log
		}
	}
}
