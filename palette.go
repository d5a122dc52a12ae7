package fractal

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// Palette maps a normalised scalar t in [0, 1] to a colour.
//
// Implementations must be continuous in t. Palettes used with cyclic colour
// mapping should also satisfy At(0) == At(1) so the colour does not jump
// when the escape value wraps. Palettes are read-only and safe for
// concurrent use by the frame workers.
type Palette interface {
	At(t float64) RGBA
}

// PaletteFunc adapts a function to the Palette interface.
type PaletteFunc func(t float64) RGBA

// At implements Palette.
func (f PaletteFunc) At(t float64) RGBA { return f(t) }

// Gradient interpolates linearly between colour stops spaced evenly over
// [0, 1]. A cyclic gradient wraps from the last stop back to the first.
type Gradient struct {
	Stops  []RGBA
	Cyclic bool
}

// At implements Palette.
func (g Gradient) At(t float64) RGBA {
	n := len(g.Stops)
	switch {
	case n == 0:
		return Black
	case n == 1:
		return g.Stops[0]
	}

	t = clamp01(t)
	segments := n - 1
	if g.Cyclic {
		segments = n
	}

	p := t * float64(segments)
	i := int(p)
	if i >= segments {
		i = segments - 1
	}
	f := p - float64(i)
	return g.Stops[i].Lerp(g.Stops[(i+1)%n], f)
}

// Cosine is a procedural palette a + b·cos(2π(c·t + d)) per channel.
// With integer C components the palette is cyclic.
type Cosine struct {
	A, B, C, D [3]float64
}

// At implements Palette.
func (p Cosine) At(t float64) RGBA {
	var ch [3]float64
	for i := range ch {
		ch[i] = p.A[i] + p.B[i]*math.Cos(2*math.Pi*(p.C[i]*t+p.D[i]))
	}
	return RGB(ch[0], ch[1], ch[2])
}

// ultraFractal is the 16-colour cycle popularised by Ultra Fractal.
var ultraFractal = []RGBA{
	RGB8(66, 30, 15),
	RGB8(25, 7, 26),
	RGB8(9, 1, 47),
	RGB8(4, 4, 73),
	RGB8(0, 7, 100),
	RGB8(12, 44, 138),
	RGB8(24, 82, 177),
	RGB8(57, 125, 209),
	RGB8(134, 181, 229),
	RGB8(211, 236, 248),
	RGB8(241, 233, 191),
	RGB8(248, 201, 95),
	RGB8(255, 170, 0),
	RGB8(204, 128, 0),
	RGB8(153, 87, 0),
	RGB8(106, 52, 3),
}

// Built-in palettes.
var (
	// Classic cycles through the Ultra Fractal colour table.
	Classic Palette = Gradient{Stops: ultraFractal, Cyclic: true}

	// Hue walks once around the HSV colour wheel.
	Hue Palette = PaletteFunc(func(t float64) RGBA {
		return HSV(360*t, 1, 1)
	})

	// Rainbow is Inigo Quilez's cosine palette.
	Rainbow Palette = Cosine{
		A: [3]float64{0.5, 0.5, 0.5},
		B: [3]float64{0.5, 0.5, 0.5},
		C: [3]float64{1, 1, 1},
		D: [3]float64{0, 0.10, 0.20},
	}

	// Stripes is a grey cosine band, bright at t = 0 and dark at t = 0.5.
	Stripes Palette = PaletteFunc(func(t float64) RGBA {
		v := (1 + math.Cos(2*math.Pi*t)) / 2
		return RGB(v, v, v)
	})

	// Bernstein is a smooth ramp from black through blue and orange back to
	// black built from Bernstein polynomials.
	Bernstein Palette = PaletteFunc(func(t float64) RGBA {
		t = clamp01(t)
		u := 1 - t
		return RGB(9*u*t*t*t, 15*u*u*t*t, 8.5*u*u*u*t)
	})

	// Grayscale fades black to white and back.
	Grayscale Palette = Gradient{Stops: []RGBA{Black, White}, Cyclic: true}

	// LambertClassic lights the Classic palette with DefaultLight.
	LambertClassic Palette = Lambert{Base: Classic, Light: DefaultLight, Gain: 0.75}

	// WhiteLambert lights a white exterior with DefaultLight.
	WhiteLambert Palette = Lambert{Light: DefaultLight, Gain: 0.75}
)

// Shader is implemented by palettes that colour escaped pixels from the
// orbit itself as well as from the palette coordinate.
type Shader interface {
	Palette
	Shade(res EscapeResult, t float64) RGBA
}

// DefaultLight is the direction towards the light used by the Lambert
// palettes, with the complex plane as the x-y plane.
var DefaultLight = [3]float64{-2.1, 0.75, 4}

// Lambert shades the exterior of the set as a diffuse surface.
//
// The surface normal at an escaped pixel is (u, 1) with u = z/dz scaled to
// unit length, which follows the gradient of the escape potential. The
// pixel's Base colour is scaled by Gain times the dot product of the normal
// and the unit Light direction, floored at 0 and clamped to full
// brightness. A nil Base shades white.
type Lambert struct {
	Base  Palette
	Light [3]float64
	Gain  float64
}

// At returns the unshaded base colour.
func (l Lambert) At(t float64) RGBA {
	if l.Base == nil {
		return White
	}
	return l.Base.At(t)
}

// Shade implements Shader.
func (l Lambert) Shade(res EscapeResult, t float64) RGBA {
	c := l.At(t)
	k := l.Intensity(res.Z, res.DZ)
	return RGBA{R: clamp01(c.R * k), G: clamp01(c.G * k), B: clamp01(c.B * k), A: c.A}
}

// Intensity returns the diffuse light factor for an orbit value z with
// derivative dz. A degenerate ratio gives the flat normal (0, 0, 1).
func (l Lambert) Intensity(z, dz complex128) float64 {
	lx, ly, lz := l.Light[0], l.Light[1], l.Light[2]
	if norm := math.Sqrt(lx*lx + ly*ly + lz*lz); norm > 0 {
		lx, ly, lz = lx/norm, ly/norm, lz/norm
	}

	var nx, ny float64
	if dz != 0 {
		u := z / dz
		if a := cmplx.Abs(u); a > 0 && !math.IsInf(a, 0) && !math.IsNaN(a) {
			nx, ny = real(u)/a, imag(u)/a
		}
	}
	return l.Gain * math.Max(nx*lx+ny*ly+lz, 0)
}

// NamedPalette pairs a palette with its registry name.
type NamedPalette struct {
	Name string
	Palette
}

var palettes = []NamedPalette{
	{"classic", Classic},
	{"rainbow", Rainbow},
	{"hue", Hue},
	{"stripes", Stripes},
	{"bernstein", Bernstein},
	{"grayscale", Grayscale},
	{"lambert", LambertClassic},
	{"white-lambert", WhiteLambert},
}

// Palettes returns the built-in palettes in cycling order.
func Palettes() []NamedPalette {
	out := make([]NamedPalette, len(palettes))
	copy(out, palettes)
	return out
}

// PaletteNames returns the built-in palette names in cycling order.
func PaletteNames() []string {
	names := make([]string, len(palettes))
	for i, p := range palettes {
		names[i] = p.Name
	}
	return names
}

// PaletteByName looks up a built-in palette (case-insensitive).
func PaletteByName(name string) (NamedPalette, error) {
	for _, p := range palettes {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return NamedPalette{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownPalette, name, strings.Join(PaletteNames(), ", "))
}

// NextPalette returns the built-in palette after name, wrapping around.
// Unknown names yield the first palette.
func NextPalette(name string) NamedPalette {
	for i, p := range palettes {
		if strings.EqualFold(p.Name, name) {
			return palettes[(i+1)%len(palettes)]
		}
	}
	return palettes[0]
}

func clamp01(t float64) float64 {
	switch {
	case t < 0 || math.IsNaN(t):
		return 0
	case t > 1:
		return 1
	}
	return t
}
