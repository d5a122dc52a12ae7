package fractal

import (
	"fmt"
	"image"
	"time"

	xdraw "golang.org/x/image/draw"
)

// RenderStill renders one frame of vp at the given iteration budget.
//
// With WithSupersample(n) the frame is evaluated at n times the resolution
// in each direction over the same region of the plane and resampled down
// with a Catmull-Rom filter, which smooths the aliasing along the boundary
// of the set.
func RenderStill(vp Viewport, budget int, opts ...Option) (*FrameBuffer, error) {
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	ss := o.supersample
	if vp.Width > MaxPixels/ss || vp.Height > MaxPixels/ss {
		return nil, fmt.Errorf("%w: %dx%d at %dx supersampling exceeds %d pixels", ErrInvalidViewport, vp.Width, vp.Height, ss, MaxPixels)
	}

	start := time.Now()
	hi := vp.Resize(vp.Width*ss, vp.Height*ss)

	r, err := NewRenderer(hi, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	fb, err := r.Render(budget)
	if err != nil {
		return nil, err
	}
	if ss > 1 {
		fb = downsample(fb, vp.Width, vp.Height)
	}

	Logger().Info("fractal: still rendered",
		"viewport", vp.String(),
		"budget", budget,
		"supersample", ss,
		"elapsed", time.Since(start))
	return fb, nil
}

// downsample resamples src to width x height.
func downsample(src *FrameBuffer, width, height int) *FrameBuffer {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	// The filter may round alpha off 0xff at the edges.
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return frameBufferFromRGBA(dst)
}
