package fractal

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

// FrameBuffer is a dense row-major RGBA8 pixel buffer, one element per
// pixel of the viewport. Alpha is always opaque.
//
// Pixel (x, y) occupies Data()[4*(y*width+x) : 4*(y*width+x)+4]. During a
// frame each worker writes only the cells of its own tiles; after the frame
// the buffer is handed read-only to a Sink.
type FrameBuffer struct {
	width  int
	height int
	data   []uint8
}

// NewFrameBuffer creates an opaque black buffer.
func NewFrameBuffer(width, height int) *FrameBuffer {
	width = max(width, 0)
	height = max(height, 0)
	fb := &FrameBuffer{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
	fb.Clear(Black)
	return fb
}

// frameBufferFromRGBA wraps an image's pixels. The image must start at the
// origin with a tight stride.
func frameBufferFromRGBA(img *image.RGBA) *FrameBuffer {
	b := img.Bounds()
	return &FrameBuffer{width: b.Dx(), height: b.Dy(), data: img.Pix}
}

// Width returns the width in pixels.
func (fb *FrameBuffer) Width() int { return fb.width }

// Height returns the height in pixels.
func (fb *FrameBuffer) Height() int { return fb.height }

// Data returns the raw RGBA bytes.
func (fb *FrameBuffer) Data() []uint8 { return fb.data }

// Set stores the colour of pixel (x, y). Out-of-range writes are ignored.
func (fb *FrameBuffer) Set(x, y int, c RGBA) {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		return
	}
	fb.setIndex(y*fb.width+x, c)
}

// setIndex stores the colour of the pixel at row-major index idx.
func (fb *FrameBuffer) setIndex(idx int, c RGBA) {
	i := idx * 4
	fb.data[i+0] = to8(c.R)
	fb.data[i+1] = to8(c.G)
	fb.data[i+2] = to8(c.B)
	fb.data[i+3] = 0xff
}

// RGBAAt returns the colour of pixel (x, y), or the zero colour when out
// of range.
func (fb *FrameBuffer) RGBAAt(x, y int) color.RGBA {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		return color.RGBA{}
	}
	i := (y*fb.width + x) * 4
	return color.RGBA{R: fb.data[i], G: fb.data[i+1], B: fb.data[i+2], A: fb.data[i+3]}
}

// Clear fills the buffer with c.
func (fb *FrameBuffer) Clear(c RGBA) {
	r, g, b := to8(c.R), to8(c.G), to8(c.B)
	for i := 0; i < len(fb.data); i += 4 {
		fb.data[i+0] = r
		fb.data[i+1] = g
		fb.data[i+2] = b
		fb.data[i+3] = 0xff
	}
}

// Resize reallocates the buffer when the dimensions change. The contents
// are cleared to black.
func (fb *FrameBuffer) Resize(width, height int) {
	if width == fb.width && height == fb.height {
		return
	}
	*fb = *NewFrameBuffer(width, height)
}

// Clone returns a deep copy, for sinks that keep a frame past Present.
func (fb *FrameBuffer) Clone() *FrameBuffer {
	data := make([]uint8, len(fb.data))
	copy(data, fb.data)
	return &FrameBuffer{width: fb.width, height: fb.height, data: data}
}

// ToImage copies the buffer into a new image.RGBA.
func (fb *FrameBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(fb.Bounds())
	copy(img.Pix, fb.data)
	return img
}

// EncodePNG writes the buffer as a PNG image.
func (fb *FrameBuffer) EncodePNG(w io.Writer) error {
	return png.Encode(w, fb)
}

// SavePNG writes the buffer to a PNG file.
func (fb *FrameBuffer) SavePNG(path string) error {
	return writePNG(path, fb)
}

// At implements the image.Image interface.
func (fb *FrameBuffer) At(x, y int) color.Color {
	return fb.RGBAAt(x, y)
}

// Bounds implements the image.Image interface.
func (fb *FrameBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.width, fb.height)
}

// ColorModel implements the image.Image interface.
func (fb *FrameBuffer) ColorModel() color.Model {
	return color.RGBAModel
}
