package fractal

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSinkFunc(t *testing.T) {
	want := errors.New("sink")
	var got *FrameBuffer
	fb := NewFrameBuffer(1, 1)
	err := SinkFunc(func(f *FrameBuffer) error {
		got = f
		return want
	}).Present(fb)
	if got != fb || err != want {
		t.Errorf("Present() = %v, frame %p, want %v, frame %p", err, got, want, fb)
	}
}

func readPNG(t *testing.T, path string) *FrameBuffer {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	fb := NewFrameBuffer(img.Bounds().Dx(), img.Bounds().Dy())
	for y := range fb.Height() {
		for x := range fb.Width() {
			fb.Set(x, y, FromColor(img.At(x, y)))
		}
	}
	return fb
}

func TestPNGSink(t *testing.T) {
	fb := NewFrameBuffer(40, 30)
	fb.Clear(White)

	path := filepath.Join(t.TempDir(), "plain.png")
	if err := (PNGSink{Path: path}).Present(fb); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	got := readPNG(t, path)
	if got.Width() != 40 || got.Height() != 30 {
		t.Fatalf("size = %dx%d, want 40x30", got.Width(), got.Height())
	}
	if got.RGBAAt(1, 1).R != 0xff {
		t.Errorf("RGBAAt(1, 1) = %v, want white", got.RGBAAt(1, 1))
	}
}

func TestPNGSink_Caption(t *testing.T) {
	fb := NewFrameBuffer(120, 60)
	fb.Clear(White)

	path := filepath.Join(t.TempDir(), "caption.png")
	if err := (PNGSink{Path: path, Caption: "center -0.75\nscale 1.25"}).Present(fb); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	got := readPNG(t, path)
	if got.RGBAAt(1, 1).R == 0xff {
		t.Errorf("RGBAAt(1, 1) = %v, want darkened by the caption box", got.RGBAAt(1, 1))
	}
	if got.RGBAAt(119, 59).R != 0xff {
		t.Errorf("RGBAAt(119, 59) = %v, want untouched", got.RGBAAt(119, 59))
	}
	if fb.RGBAAt(1, 1).R != 0xff {
		t.Error("caption was drawn into the source frame")
	}
}

func TestPNGSink_Error(t *testing.T) {
	err := PNGSink{Path: filepath.Join(t.TempDir(), "no", "such", "dir.png")}.Present(NewFrameBuffer(1, 1))
	if err == nil {
		t.Error("Present() into a missing directory succeeded")
	}
}
