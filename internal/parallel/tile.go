// Package parallel partitions a frame into independent tiles and evaluates
// them on a fork-join worker pool.
//
// A frame is divided into square tiles (64x64 pixels by default). Tiles never
// overlap, so a worker processing one tile owns every pixel, every per-pixel
// record and the Tile bookkeeping for that region for the duration of a
// frame. That ownership is the only synchronisation the kernels rely on.
//
// Thread safety: TileGrid is NOT thread-safe. Between frames it is mutated by
// the owning renderer; during a frame each Tile is mutated only by the
// goroutine processing it.
package parallel

import "image"

// DefaultTileSize is the edge length of a tile in pixels.
// 64x64 float64 orbit records plus RGBA output stay within L2 on common CPUs.
const DefaultTileSize = 64

// Tile is a rectangular block of pixels processed as one unit of work.
//
// Edge tiles are smaller when the frame is not evenly divisible by the tile
// size.
type Tile struct {
	// Index is the position of the tile in the grid's row-major order.
	Index int

	// X, Y is the top-left pixel of the tile in frame space.
	X, Y int

	// Width and Height are the actual pixel dimensions of the tile.
	Width, Height int

	// Active marks tiles that still contain pixels whose orbit has not
	// escaped. Inactive tiles are skipped by refinement passes; their
	// pixels keep the colour computed when they escaped.
	Active bool

	// Recolor forces every pixel of the tile to be recoloured on the next
	// pass even if it is terminal (palette changes).
	Recolor bool

	// Escaped and Bounded count the tile's pixels after the last pass.
	Escaped int
	Bounded int
}

// Rect returns the tile bounds in frame space.
func (t *Tile) Rect() image.Rectangle {
	return image.Rect(t.X, t.Y, t.X+t.Width, t.Y+t.Height)
}

// Pixels returns the number of pixels covered by the tile.
func (t *Tile) Pixels() int {
	return t.Width * t.Height
}

// Pending reports whether the tile has work for the next pass.
func (t *Tile) Pending() bool {
	return t.Active || t.Recolor
}
