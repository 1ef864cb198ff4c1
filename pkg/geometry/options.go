package geometry

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithQuadSegs sets the number of quadrant segments used to approximate
// buffer arcs. Higher values give rounder corners at more vertices.
func WithQuadSegs(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.quadSegs = n
		}
	}
}
