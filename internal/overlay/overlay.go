// Package overlay draws short text captions onto rendered frames.
//
// Captions are set in Go Regular and drawn over a translucent backing box
// in the top-left corner of the image, which keeps them legible on both
// bright and dark parts of a fractal.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultSize is the caption font size in pixels.
const DefaultSize = 13.0

// Captioner draws multi-line captions.
//
// A Captioner is safe for concurrent use; drawing is serialised because
// font faces keep internal glyph buffers.
type Captioner struct {
	mu      sync.Mutex
	face    font.Face
	fg      image.Image
	bg      image.Image
	padding int
}

// New parses Go Regular at the given size.
func New(size float64) (*Captioner, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	return newCaptioner(face), nil
}

func newCaptioner(face font.Face) *Captioner {
	return &Captioner{
		face:    face,
		fg:      image.NewUniform(color.White),
		bg:      image.NewUniform(color.NRGBA{A: 0xa0}),
		padding: 4,
	}
}

var (
	defaultOnce      sync.Once
	defaultCaptioner *Captioner
)

// Default returns a shared Captioner at DefaultSize. If the embedded font
// cannot be loaded it falls back to the fixed 7x13 bitmap face.
func Default() *Captioner {
	defaultOnce.Do(func() {
		c, err := New(DefaultSize)
		if err != nil {
			c = newCaptioner(basicfont.Face7x13)
		}
		defaultCaptioner = c
	})
	return defaultCaptioner
}

// Measure returns the size of the backing box for text.
func (c *Captioner) Measure(text string) image.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.measure(splitLines(text))
}

func (c *Captioner) measure(lines []string) image.Point {
	if len(lines) == 0 {
		return image.Point{}
	}
	var width fixed.Int26_6
	for _, line := range lines {
		width = max(width, font.MeasureString(c.face, line))
	}
	lineHeight := c.face.Metrics().Height.Ceil()
	return image.Point{
		X: width.Ceil() + 2*c.padding,
		Y: len(lines)*lineHeight + 2*c.padding,
	}
}

// Draw renders text into the top-left corner of dst. Lines are separated
// by '\n'. Empty text draws nothing.
func (c *Captioner) Draw(dst draw.Image, text string) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	origin := dst.Bounds().Min
	box := image.Rectangle{Min: origin, Max: origin.Add(c.measure(lines))}.Intersect(dst.Bounds())
	draw.Draw(dst, box, c.bg, image.Point{}, draw.Over)

	m := c.face.Metrics()
	d := &font.Drawer{Dst: dst, Src: c.fg, Face: c.face}
	for i, line := range lines {
		y := origin.Y + c.padding + i*m.Height.Ceil() + m.Ascent.Ceil()
		d.Dot = fixed.P(origin.X+c.padding, y)
		d.DrawString(line)
	}
}

func splitLines(text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
