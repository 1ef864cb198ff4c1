package worker

type poolConfig struct {
	bufferDistance float64
	minArea        float64
	maxArea        float64
}

// Option applies a configuration option to the worker pool.
type Option func(*poolConfig)

// WithBufferDistance sets the merge tolerance passed to each worker's merger.
func WithBufferDistance(d float64) Option {
	return func(c *poolConfig) {
		if d > 0 {
			c.bufferDistance = d
		}
	}
}

// WithAreaBounds sets the inclusive acreage admission range.
func WithAreaBounds(minArea, maxArea float64) Option {
	return func(c *poolConfig) {
		if minArea <= maxArea {
			c.minArea = minArea
			c.maxArea = maxArea
		}
	}
}
