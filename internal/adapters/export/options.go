package export

import "github.com/chrisfahey1010/LakeMapper/pkg/logger"

// Option applies a configuration option to the Exporter.
type Option func(*Exporter)

// WithLogger overrides the exporter's logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Exporter) {
		if log != nil {
			e.log = log
		}
	}
}
