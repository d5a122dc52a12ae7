package fractal

import (
	"fmt"
	"math"
)

// Option configures a Renderer or a still render.
// Use functional options to customise behaviour.
//
// Example:
//
//	// Parallel renderer on all CPUs with the default palette
//	r, err := fractal.NewRenderer(vp)
//
//	// Strictly sequential, custom palette
//	r, err := fractal.NewRenderer(vp, fractal.WithSequential(), fractal.WithPalette(fractal.Rainbow))
type Option func(*options)

// options holds the optional configuration shared by NewRenderer and
// RenderStill.
type options struct {
	workers      int
	sequential   bool
	tileSize     int
	escapeRadius float64
	colors       ColorMapper
	supersample  int
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		workers:      0, // GOMAXPROCS
		tileSize:     0, // parallel.DefaultTileSize
		escapeRadius: DefaultEscapeRadius,
		colors:       DefaultColorMapper(),
		supersample:  1,
	}
}

func resolveOptions(opts []Option) (options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := validateEscapeRadius(o.escapeRadius); err != nil {
		return o, err
	}
	if o.supersample < 1 {
		o.supersample = 1
	}
	return o, nil
}

func validateEscapeRadius(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 1 {
		return fmt.Errorf("%w: %v (must be finite and > 1)", ErrInvalidEscapeRadius, r)
	}
	return nil
}

// WithWorkers sets the number of worker goroutines. Zero or negative
// selects GOMAXPROCS; one selects sequential execution.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSequential evaluates every tile on the calling goroutine, in
// row-major tile order. Output is byte-identical to parallel execution.
func WithSequential() Option {
	return func(o *options) {
		o.sequential = true
	}
}

// WithParallel enables or disables parallel execution.
func WithParallel(enabled bool) Option {
	return func(o *options) {
		o.sequential = !enabled
	}
}

// WithTileSize sets the edge length of the square work units.
func WithTileSize(n int) Option {
	return func(o *options) {
		o.tileSize = n
	}
}

// WithEscapeRadius sets the bailout radius. Larger radii give smoother
// colouring at the cost of a few extra iterations per pixel.
func WithEscapeRadius(r float64) Option {
	return func(o *options) {
		o.escapeRadius = r
	}
}

// WithColorMapper sets the full colour mapping.
func WithColorMapper(m ColorMapper) Option {
	return func(o *options) {
		o.colors = m
	}
}

// WithPalette replaces only the palette of the colour mapping.
func WithPalette(p Palette) Option {
	return func(o *options) {
		o.colors.Palette = p
	}
}

// WithSupersample renders stills at n times the resolution in each
// direction and downsamples the result. It has no effect on live rendering.
func WithSupersample(n int) Option {
	return func(o *options) {
		o.supersample = n
	}
}
