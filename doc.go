// Package fractal renders the Mandelbrot set by escape time.
//
// # Overview
//
// fractal maps a Viewport (a rectangle of the complex plane plus a pixel
// resolution) to a frame of colours. Each pixel's sample point c is iterated
// under z ← z² + c until |z| leaves the escape radius or the iteration
// budget runs out; escaped pixels are coloured by a smoothed, band-free
// escape value and bounded pixels take the interior colour.
//
// # Quick Start
//
//	import "github.com/gogpu/fractal"
//
//	// Batch: one still at 1000 iterations
//	vp := fractal.DefaultViewport(1080, 771)
//	fb, err := fractal.RenderStill(vp, 1000, fractal.WithSupersample(2))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fb.SavePNG("mandelbrot.png")
//
// # Live Refinement
//
// A Renderer keeps one OrbitState per pixel. Refine raises every pixel that
// has not escaped to a new cumulative budget, resuming each orbit exactly
// where it stopped, and skips tiles whose pixels have all escaped. A Session
// wraps this in a state machine (idle, refining, converged) driven by input
// events; a Loop connects a Session to an event channel and a Sink.
//
//	r, _ := fractal.NewRenderer(vp)
//	defer r.Close()
//	s, _ := fractal.NewSession(r, fractal.WithStep(16), fractal.WithMaxBudget(4096))
//	loop := &fractal.Loop{Session: s, Events: events, Sink: sink, Interval: fractal.DefaultInterval}
//	err := loop.Run(ctx)
//
// # Parallelism
//
// Frames are split into square tiles evaluated by a fork-join worker pool.
// Tiles are disjoint, so workers never share a pixel's orbit state or frame
// buffer cell and no locks are taken. WithSequential runs the same tiles in
// order on the calling goroutine and produces byte-identical frames.
//
// # Coordinate System
//
// Pixel (0, 0) is the top-left corner; rows grow downwards while imaginary
// values grow upwards. Each pixel samples the plane at its centre.
//
// # Logging
//
// The package is silent by default. Install a *slog.Logger with SetLogger to
// see lifecycle events at Info and per-frame statistics at Debug.
package fractal

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
