package fractal

import (
	"fmt"
	"time"

	"github.com/gogpu/fractal/internal/parallel"
)

// Renderer evaluates frames of a viewport.
//
// It owns the per-pixel OrbitStore and the live FrameBuffer, partitions the
// frame into tiles and runs the tiles on a worker pool (or sequentially).
// Tiles are disjoint: the kernel for one tile reads and writes only its own
// pixels' orbit states and frame buffer cells, so no locking is needed and
// parallel and sequential execution produce identical frames.
//
// Thread safety: Renderer is NOT safe for concurrent use. One goroutine
// drives it; the parallelism is internal to each call.
type Renderer struct {
	vp      Viewport
	store   *OrbitStore
	frame   *FrameBuffer
	grid    *parallel.TileGrid
	pool    *parallel.Pool
	colors  ColorMapper
	boundSq float64
	budget  int
}

// FrameStats summarises one Refine or Render pass.
type FrameStats struct {
	// Budget is the cumulative iteration budget of the pass.
	Budget int

	// Tiles is the number of tiles in the frame; Processed how many of them
	// had work in this pass; ActiveTiles how many still hold bounded pixels
	// afterwards.
	Tiles       int
	Processed   int
	ActiveTiles int

	// Escaped and Bounded count pixels after the pass.
	Escaped int
	Bounded int

	Elapsed time.Duration
}

// Converged reports whether every pixel has escaped.
func (s FrameStats) Converged() bool {
	return s.ActiveTiles == 0
}

// NewRenderer creates a renderer for vp. It returns an error wrapping
// ErrInvalidViewport or ErrInvalidEscapeRadius when the parameters cannot
// be rendered.
func NewRenderer(vp Viewport, opts ...Option) (*Renderer, error) {
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := vp.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		vp:      vp,
		store:   NewOrbitStore(vp.Width, vp.Height),
		frame:   NewFrameBuffer(vp.Width, vp.Height),
		grid:    parallel.NewTileGrid(vp.Width, vp.Height, o.tileSize),
		colors:  o.colors,
		boundSq: o.escapeRadius * o.escapeRadius,
	}
	if !o.sequential && o.workers != 1 {
		r.pool = parallel.NewPool(o.workers)
	}

	Logger().Debug("fractal: renderer created",
		"viewport", vp.String(),
		"workers", r.Workers(),
		"tiles", r.grid.TileCount())
	return r, nil
}

// Close stops the worker pool. The renderer must not be used afterwards.
func (r *Renderer) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Viewport returns the active viewport.
func (r *Renderer) Viewport() Viewport { return r.vp }

// Frame returns the live frame buffer updated in place by Refine.
func (r *Renderer) Frame() *FrameBuffer { return r.frame }

// Store returns the per-pixel orbit store.
func (r *Renderer) Store() *OrbitStore { return r.store }

// ColorMapper returns the active colour mapping.
func (r *Renderer) ColorMapper() ColorMapper { return r.colors }

// Budget returns the cumulative budget reached by the last Refine.
func (r *Renderer) Budget() int { return r.budget }

// Workers returns the number of goroutines evaluating tiles.
func (r *Renderer) Workers() int {
	if r.pool == nil {
		return 1
	}
	return r.pool.Workers()
}

// SetViewport switches to a new viewport. All per-pixel state is
// invalidated and every tile becomes active; a resolution change also
// reallocates the store and frame buffer.
func (r *Renderer) SetViewport(vp Viewport) error {
	if err := vp.Validate(); err != nil {
		return err
	}
	if vp.Width != r.vp.Width || vp.Height != r.vp.Height {
		r.frame.Resize(vp.Width, vp.Height)
		r.grid.Resize(vp.Width, vp.Height)
	}
	r.vp = vp
	r.Invalidate()
	return nil
}

// Invalidate discards all per-pixel progress without changing the viewport.
func (r *Renderer) Invalidate() {
	r.store.Resize(r.vp.Width, r.vp.Height)
	r.grid.ActivateAll()
	r.budget = 0
}

// SetColorMapper changes the colour mapping. Orbit state is kept; every
// pixel is recoloured by the next Refine.
func (r *Renderer) SetColorMapper(m ColorMapper) {
	r.colors = m
	r.grid.MarkRecolor()
}

// Refine advances every pixel that has not escaped to the cumulative
// iteration budget and recolours it. Tiles whose pixels have all escaped
// are skipped; their frame buffer cells keep the colour they escaped with.
func (r *Renderer) Refine(budget int) (FrameStats, error) {
	if budget < 0 {
		return FrameStats{}, fmt.Errorf("%w: %d", ErrInvalidBudget, budget)
	}
	start := time.Now()

	tiles := r.grid.Pending()
	r.run(len(tiles), func(i int) {
		r.refineTile(tiles[i], budget)
	})
	r.budget = budget

	stats := r.stats(budget, len(tiles), start)
	Logger().Debug("fractal: refine",
		"budget", budget,
		"processed", stats.Processed,
		"active", stats.ActiveTiles,
		"escaped", stats.Escaped,
		"bounded", stats.Bounded,
		"elapsed", stats.Elapsed)
	return stats, nil
}

// refineTile is the live kernel. It touches only the tile's own pixels.
func (r *Renderer) refineTile(t *parallel.Tile, budget int) {
	w := r.vp.Width
	b := t.Rect()
	escaped, bounded := 0, 0

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := y * w
		for x := b.Min.X; x < b.Max.X; x++ {
			idx := row + x
			st := r.store.At(idx)
			if st.Escaped() {
				escaped++
				if t.Recolor {
					r.frame.setIndex(idx, r.colors.Colorize(st.Result()))
				}
				continue
			}

			res := Evaluate(r.vp.PixelToComplex(x, y), st, budget-st.Iterations(), r.boundSq)
			if res.Escaped {
				escaped++
			} else {
				bounded++
			}
			r.frame.setIndex(idx, r.colors.Colorize(res))
		}
	}

	t.Escaped = escaped
	t.Bounded = bounded
	t.Active = bounded > 0
	t.Recolor = false
}

// Render evaluates a complete frame from scratch at the given budget into a
// new frame buffer. Per-pixel state is ephemeral: the OrbitStore and the
// live frame are not touched.
func (r *Renderer) Render(budget int) (*FrameBuffer, error) {
	if budget < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBudget, budget)
	}
	start := time.Now()

	fb := NewFrameBuffer(r.vp.Width, r.vp.Height)
	tiles := r.grid.Tiles()
	r.run(len(tiles), func(i int) {
		r.renderTile(fb, tiles[i], budget)
	})

	Logger().Debug("fractal: render",
		"budget", budget,
		"tiles", len(tiles),
		"elapsed", time.Since(start))
	return fb, nil
}

// renderTile is the batch kernel.
func (r *Renderer) renderTile(fb *FrameBuffer, t *parallel.Tile, budget int) {
	w := r.vp.Width
	b := t.Rect()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := y * w
		for x := b.Min.X; x < b.Max.X; x++ {
			res := Evaluate(r.vp.PixelToComplex(x, y), nil, budget, r.boundSq)
			fb.setIndex(row+x, r.colors.Colorize(res))
		}
	}
}

// run executes fn for tile indices [0, n) and returns once all have
// finished.
func (r *Renderer) run(n int, fn func(i int)) {
	if r.pool == nil {
		parallel.ForEachSequential(n, fn)
		return
	}
	r.pool.ForEach(n, fn)
}

func (r *Renderer) stats(budget, processed int, start time.Time) FrameStats {
	escaped, bounded := r.grid.Totals()
	return FrameStats{
		Budget:      budget,
		Tiles:       r.grid.TileCount(),
		Processed:   processed,
		ActiveTiles: r.grid.ActiveCount(),
		Escaped:     escaped,
		Bounded:     bounded,
		Elapsed:     time.Since(start),
	}
}
