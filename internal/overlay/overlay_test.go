package overlay

import (
	"image"
	"image/color"
	"testing"
)

func TestNew(t *testing.T) {
	c, err := New(DefaultSize)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	size := c.Measure("iterations 1,000")
	if size.X <= 0 || size.Y <= 0 {
		t.Errorf("Measure() = %v, want positive size", size)
	}
}

func TestDefault_Shared(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() returned different captioners")
	}
}

func TestMeasure_Lines(t *testing.T) {
	c := Default()
	one := c.Measure("scale")
	two := c.Measure("scale\nscale")
	if two.Y <= one.Y {
		t.Errorf("two lines height = %d, want > %d", two.Y, one.Y)
	}
	if two.X != one.X {
		t.Errorf("two lines width = %d, want %d", two.X, one.X)
	}
	if got := c.Measure(""); got != (image.Point{}) {
		t.Errorf("Measure(\"\") = %v, want zero", got)
	}
}

func TestDraw(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	c := Default()
	c.Draw(img, "center -0.75\nscale 1.25")
	box := c.Measure("center -0.75\nscale 1.25")

	// The backing box darkens the corner.
	if got := img.RGBAAt(1, 1); got.R == 0xff {
		t.Errorf("corner pixel = %v, want darkened", got)
	}

	// Outside the box nothing changes.
	want := color.RGBA{0xff, 0xff, 0xff, 0xff}
	if got := img.RGBAAt(box.X+5, box.Y+5); got != want {
		t.Errorf("pixel outside caption = %v, want %v", got, want)
	}
}

func TestDraw_Empty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	Default().Draw(img, "")
	for i, v := range img.Pix {
		if v != 0 {
			t.Fatalf("Pix[%d] = %d, want 0", i, v)
		}
	}
}

func TestDraw_SmallImage(t *testing.T) {
	// The caption is clipped, not an error.
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	Default().Draw(img, "a long caption that does not fit")
}

func TestInt(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1048576, "1,048,576"},
		{-4096, "-4,096"},
	}
	for _, tt := range tests {
		if got := Int(tt.n); got != tt.want {
			t.Errorf("Int(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
