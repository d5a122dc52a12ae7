package fractal

import (
	"image/color"
	"math"
)

// RGBA is a colour with components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// RGB creates an opaque colour.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// RGB8 creates an opaque colour from 8-bit components.
func RGB8(r, g, b uint8) RGBA {
	return RGB(float64(r)/255, float64(g)/255, float64(b)/255)
}

// Common colours.
var (
	Black = RGB(0, 0, 0)
	White = RGB(1, 1, 1)
)

// Color converts c to a color.NRGBA.
func (c RGBA) Color() color.Color {
	return c.NRGBA()
}

// NRGBA converts c to 8-bit non-premultiplied components, clamping each
// channel to [0, 255].
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

// FromColor converts a standard color.Color.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// Hex parses "RGB", "RRGGBB" or "RRGGBBAA", with or without a leading '#'.
// Malformed input yields opaque black.
func Hex(hex string) RGBA {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var v [4]uint32
	v[3] = 255
	switch len(hex) {
	case 3:
		for i := range 3 {
			d, ok := hexDigits(hex[i : i+1])
			if !ok {
				return Black
			}
			v[i] = d * 17
		}
	case 6, 8:
		for i := 0; i < len(hex)/2; i++ {
			d, ok := hexDigits(hex[2*i : 2*i+2])
			if !ok {
				return Black
			}
			v[i] = d
		}
	default:
		return Black
	}

	return RGBA{
		R: float64(v[0]) / 255,
		G: float64(v[1]) / 255,
		B: float64(v[2]) / 255,
		A: float64(v[3]) / 255,
	}
}

func hexDigits(s string) (uint32, bool) {
	var val uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		val *= 16
		switch {
		case '0' <= c && c <= '9':
			val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			val += uint32(c - 'A' + 10)
		default:
			return 0, false
		}
	}
	return val, true
}

// Lerp interpolates linearly between c and other.
func (c RGBA) Lerp(other RGBA, t float64) RGBA {
	return RGBA{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// Distance returns the largest per-channel difference between c and other.
func (c RGBA) Distance(other RGBA) float64 {
	return max(
		math.Abs(c.R-other.R),
		math.Abs(c.G-other.G),
		math.Abs(c.B-other.B),
		math.Abs(c.A-other.A),
	)
}

// HSL creates a colour from hue [0, 360), saturation and lightness [0, 1].
func HSL(h, s, l float64) RGBA {
	c := (1 - math.Abs(2*l-1)) * s
	return hueChroma(h, c, l-c/2)
}

// HSV creates a colour from hue [0, 360), saturation and value [0, 1].
func HSV(h, s, v float64) RGBA {
	c := v * s
	return hueChroma(h, c, v-c)
}

// hueChroma builds the RGB cube point for hue h with chroma c and offset m.
// It is continuous in h, including across 360.
func hueChroma(h, c, m float64) RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 60
	x := c * (1 - math.Abs(math.Mod(h, 2)-1))

	var r, g, b float64
	switch {
	case h < 1:
		r, g, b = c, x, 0
	case h < 2:
		r, g, b = x, c, 0
	case h < 3:
		r, g, b = 0, c, x
	case h < 4:
		r, g, b = 0, x, c
	case h < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return RGB(r+m, g+m, b+m)
}

// to8 converts a [0, 1] channel to a rounded, clamped byte.
func to8(v float64) uint8 {
	v = v*255 + 0.5
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
