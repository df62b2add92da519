package trend

import "math"

const (
	defaultBandwidth         = 0.43
	defaultProjectionHorizon = 3
	defaultMinValidPoints    = 3
)

// Config defines the smoothing and projection parameters
type Config struct {
	// Bandwidth is the fraction of valid points used as the local neighborhood, in (0, 1]
	Bandwidth float64

	// ProjectionHorizon is the number of future points appended to the result
	ProjectionHorizon int

	// MinValidPoints is the number of valid samples below which no fit is attempted
	MinValidPoints int
}

// DefaultConfig returns the default smoothing parameters
func DefaultConfig() Config {
	return Config{
		Bandwidth:         defaultBandwidth,
		ProjectionHorizon: defaultProjectionHorizon,
		MinValidPoints:    defaultMinValidPoints,
	}
}

// Option configures a smoothing run
type Option func(*Config)

// WithBandwidth sets the neighborhood fraction
func WithBandwidth(bandwidth float64) Option {
	return func(c *Config) {
		c.Bandwidth = bandwidth
	}
}

// WithProjectionHorizon sets how many points are extrapolated past the data
func WithProjectionHorizon(horizon int) Option {
	return func(c *Config) {
		c.ProjectionHorizon = horizon
	}
}

// WithMinValidPoints sets the minimum number of valid samples required for a fit
func WithMinValidPoints(points int) Option {
	return func(c *Config) {
		c.MinValidPoints = points
	}
}

// WithConfig replaces the whole configuration
func WithConfig(config Config) Option {
	return func(c *Config) {
		*c = config
	}
}

// normalize brings out-of-domain values back into range
func (c Config) normalize() Config {
	if math.IsNaN(c.Bandwidth) || c.Bandwidth <= 0 {
		c.Bandwidth = defaultBandwidth
	}
	if c.Bandwidth > 1 {
		c.Bandwidth = 1
	}
	if c.ProjectionHorizon < 0 {
		c.ProjectionHorizon = 0
	}
	if c.MinValidPoints < 1 {
		c.MinValidPoints = 1
	}
	return c
}

func newConfig(options ...Option) Config {
	config := DefaultConfig()
	for _, option := range options {
		option(&config)
	}
	return config.normalize()
}
