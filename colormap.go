package fractal

import "math"

// Default colour mapping parameters.
const (
	// DefaultPeriod is the number of smoothed iterations per palette cycle.
	DefaultPeriod = 64.0

	// DefaultGamma leaves the palette coordinate unchanged.
	DefaultGamma = 1.0
)

// ColorMapper turns escape results into colours.
//
// Bounded pixels take the Interior colour. Escaped pixels map their
// smoothed value to a palette coordinate, either cyclically
// (frac((Smooth+Offset)/Period)) or, with Normalize, against MaxIterations
// (clamp(Smooth/MaxIterations, 0, 1)). The coordinate is raised to Gamma and
// looked up in Palette; a Palette that is also a Shader colours from the
// whole escape result.
//
// Because the smoothed value and every built-in palette are continuous, the
// colour changes by at most a constant times the change in smoothed value:
// there are no bands at integer iteration boundaries. The bound holds for
// Gamma >= 1; a smaller Gamma has unbounded slope where the coordinate
// approaches 0.
type ColorMapper struct {
	Palette  Palette
	Interior RGBA

	Period float64
	Offset float64
	Gamma  float64

	Normalize     bool
	MaxIterations int
}

// DefaultColorMapper returns the cyclic Classic palette with black interior.
func DefaultColorMapper() ColorMapper {
	return ColorMapper{
		Palette:  Classic,
		Interior: Black,
		Period:   DefaultPeriod,
		Gamma:    DefaultGamma,
	}
}

// WithPalette returns a copy of m using p.
func (m ColorMapper) WithPalette(p Palette) ColorMapper {
	m.Palette = p
	return m
}

// Coordinate returns the palette coordinate in [0, 1] for a smoothed escape
// value.
func (m ColorMapper) Coordinate(smooth float64) float64 {
	var t float64
	if m.Normalize {
		limit := float64(m.MaxIterations)
		if limit <= 0 {
			limit = 1
		}
		t = clamp01(smooth / limit)
	} else {
		period := m.Period
		if period <= 0 {
			period = DefaultPeriod
		}
		t = (smooth + m.Offset) / period
		t -= math.Floor(t)
	}

	if m.Gamma > 0 && m.Gamma != 1 {
		t = math.Pow(t, m.Gamma)
	}
	return t
}

// Colorize maps one escape result to a colour.
func (m ColorMapper) Colorize(res EscapeResult) RGBA {
	if !res.Escaped {
		return m.Interior
	}
	p := m.Palette
	if p == nil {
		p = Classic
	}
	t := m.Coordinate(res.Smooth)
	if s, ok := p.(Shader); ok {
		return s.Shade(res, t)
	}
	return p.At(t)
}
