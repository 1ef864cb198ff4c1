package shapefile

import (
	"github.com/chrisfahey1010/LakeMapper/pkg/geometry"
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
)

// Option configures a Loader.
type Option func(*Loader)

// WithLogger overrides the loader's logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithEngine supplies a shared geometry engine instead of the default.
func WithEngine(engine *geometry.Engine) Option {
	return func(l *Loader) {
		if engine != nil {
			l.engine = engine
		}
	}
}
