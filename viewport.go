package fractal

import (
	"fmt"
	"image"
	"math"
	"math/cmplx"
)

// Viewport is the rectangular region of the complex plane sampled by a frame
// together with the frame resolution.
//
// Scale is the half-height of the region in complex units. Pixels are
// square, so the half-width is Scale*Width/Height. A Viewport is a value:
// Pan, Zoom and Resize return a new Viewport and never modify the receiver,
// which keeps it immutable for the duration of a frame.
type Viewport struct {
	Center complex128
	Scale  float64
	Width  int
	Height int
}

// DefaultViewport returns the classic full view of the Mandelbrot set,
// -2.5..1.0 on the real axis and -1.25..1.25 on the imaginary axis, fitted
// to the given resolution.
func DefaultViewport(width, height int) Viewport {
	return RegionViewport(Region{Xmin: -2.5, Xmax: 1.0, Ymin: -1.25, Ymax: 1.25}, width, height)
}

// SquareViewport returns a viewport centred at center whose shorter side
// spans center±radius.
func SquareViewport(center complex128, radius float64, width, height int) Viewport {
	r := real(center)
	i := imag(center)
	return RegionViewport(Region{Xmin: r - radius, Xmax: r + radius, Ymin: i - radius, Ymax: i + radius}, width, height)
}

// RegionViewport returns the smallest viewport at the given resolution that
// contains the whole region. The region is centred; the axis with spare
// room is extended.
func RegionViewport(reg Region, width, height int) Viewport {
	vp := Viewport{
		Center: complex((reg.Xmin+reg.Xmax)/2, (reg.Ymin+reg.Ymax)/2),
		Scale:  math.Abs(reg.Ymax-reg.Ymin) / 2,
		Width:  width,
		Height: height,
	}
	if width > 0 && height > 0 {
		halfW := math.Abs(reg.Xmax-reg.Xmin) / 2
		vp.Scale = math.Max(vp.Scale, halfW*float64(height)/float64(width))
	}
	return vp
}

// MaxPixels is the largest frame, in pixels, a viewport may describe. The
// live renderer keeps an orbit state and a colour per pixel, so the limit
// bounds its memory.
const MaxPixels = 1 << 25

// Validate reports whether the viewport can be rendered. The returned error
// wraps ErrInvalidViewport.
func (v Viewport) Validate() error {
	switch {
	case v.Width <= 0 || v.Height <= 0:
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidViewport, v.Width, v.Height)
	case v.Width > MaxPixels || v.Height > MaxPixels || v.Width > MaxPixels/v.Height:
		return fmt.Errorf("%w: resolution %dx%d exceeds %d pixels", ErrInvalidViewport, v.Width, v.Height, MaxPixels)
	case math.IsNaN(v.Scale) || math.IsInf(v.Scale, 0) || v.Scale <= 0:
		return fmt.Errorf("%w: scale %v", ErrInvalidViewport, v.Scale)
	case cmplx.IsNaN(v.Center) || cmplx.IsInf(v.Center):
		return fmt.Errorf("%w: center %v", ErrInvalidViewport, v.Center)
	}
	return nil
}

// PixelSize returns the distance between neighbouring pixel centres in
// complex units.
func (v Viewport) PixelSize() float64 {
	return 2 * v.Scale / float64(v.Height)
}

// HalfWidth returns the half-width of the sampled region in complex units.
func (v Viewport) HalfWidth() float64 {
	return v.Scale * float64(v.Width) / float64(v.Height)
}

// Pixels returns Width*Height.
func (v Viewport) Pixels() int {
	return v.Width * v.Height
}

// Bounds returns the pixel rectangle of the frame.
func (v Viewport) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.Width, v.Height)
}

// PixelToComplex maps the centre of pixel (x, y) to its sample point.
// Row 0 is the top of the frame; imaginary values grow upwards.
func (v Viewport) PixelToComplex(x, y int) complex128 {
	px := v.PixelSize()
	re := real(v.Center) + (float64(x)+0.5-float64(v.Width)/2)*px
	im := imag(v.Center) + (float64(v.Height)/2-float64(y)-0.5)*px
	return complex(re, im)
}

// ComplexToPixel maps a complex point to continuous pixel coordinates. It is
// the inverse of PixelToComplex: the centre of pixel (x, y) maps back to
// (x+0.5, y+0.5).
func (v Viewport) ComplexToPixel(c complex128) (x, y float64) {
	px := v.PixelSize()
	x = (real(c)-real(v.Center))/px + float64(v.Width)/2
	y = float64(v.Height)/2 - (imag(c)-imag(v.Center))/px
	return x, y
}

// Pan moves the view by dx, dy pixels. Positive dx reveals content to the
// right, positive dy reveals content below.
func (v Viewport) Pan(dx, dy float64) Viewport {
	px := v.PixelSize()
	v.Center += complex(dx*px, -dy*px)
	return v
}

// Zoom magnifies the view by factor around anchor. Factors above 1 zoom in.
// The complex coordinate under the anchor pixel's centre is unchanged.
func (v Viewport) Zoom(factor float64, anchor image.Point) Viewport {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return v
	}
	a := v.PixelToComplex(anchor.X, anchor.Y)
	v.Center = a + (v.Center-a)/complex(factor, 0)
	v.Scale /= factor
	return v
}

// Resize changes the resolution, keeping centre and scale.
func (v Viewport) Resize(width, height int) Viewport {
	v.Width = width
	v.Height = height
	return v
}

// String implements fmt.Stringer.
func (v Viewport) String() string {
	return fmt.Sprintf("center=(%g,%g) scale=%g %dx%d",
		real(v.Center), imag(v.Center), v.Scale, v.Width, v.Height)
}
