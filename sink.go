package fractal

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/gogpu/fractal/internal/overlay"
)

// Sink receives completed frames.
//
// The frame buffer is read-only for the sink and only valid until Present
// returns: a live renderer overwrites it on the next tick. Sinks that keep a
// frame must Clone it.
type Sink interface {
	Present(fb *FrameBuffer) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(fb *FrameBuffer) error

// Present implements Sink.
func (f SinkFunc) Present(fb *FrameBuffer) error { return f(fb) }

// PNGSink writes each frame it receives to a PNG file.
type PNGSink struct {
	// Path is the output file. It is overwritten by every frame.
	Path string

	// Caption, when non-empty, is drawn in the top-left corner. Lines are
	// separated by '\n'.
	Caption string
}

// Present implements Sink.
func (s PNGSink) Present(fb *FrameBuffer) error {
	var img image.Image = fb
	if s.Caption != "" {
		rgba := fb.ToImage()
		overlay.Default().Draw(rgba, s.Caption)
		img = rgba
	}
	if err := writePNG(s.Path, img); err != nil {
		return fmt.Errorf("fractal: write %s: %w", s.Path, err)
	}
	Logger().Info("fractal: wrote image", "path", s.Path, "width", fb.Width(), "height", fb.Height())
	return nil
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if err := png.Encode(bw, img); err != nil {
		return err
	}
	return bw.Flush()
}
