package parallel

// TileGrid divides a frame into tiles.
//
// Tiles are stored in a flat slice in row-major order:
// index = ty * tilesX + tx.
type TileGrid struct {
	tiles  []*Tile
	width  int
	height int
	size   int
}

// NewTileGrid creates a grid covering a width x height frame with tiles of
// the given edge length. A size of 0 or less selects DefaultTileSize.
// Zero or negative frame dimensions produce an empty grid.
func NewTileGrid(width, height, size int) *TileGrid {
	if size <= 0 {
		size = DefaultTileSize
	}
	g := &TileGrid{size: size}
	g.Resize(width, height)
	return g
}

// Resize rebuilds the grid for new frame dimensions. Every tile of the new
// grid is active. If the dimensions are unchanged this is a no-op.
func (g *TileGrid) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		g.tiles = nil
		g.width, g.height = 0, 0
		return
	}
	if g.width == width && g.height == height && g.tiles != nil {
		return
	}

	g.width = width
	g.height = height
	tilesX := (width + g.size - 1) / g.size
	tilesY := (height + g.size - 1) / g.size
	g.tiles = make([]*Tile, tilesX*tilesY)

	for ty := range tilesY {
		for tx := range tilesX {
			x := tx * g.size
			y := ty * g.size
			idx := ty*tilesX + tx
			g.tiles[idx] = &Tile{
				Index:  idx,
				X:      x,
				Y:      y,
				Width:  min(g.size, width-x),
				Height: min(g.size, height-y),
				Active: true,
			}
		}
	}
}

// ActivateAll marks every tile active and resets its counters.
// Called whenever the per-pixel state is invalidated.
func (g *TileGrid) ActivateAll() {
	for _, t := range g.tiles {
		t.Active = true
		t.Recolor = false
		t.Escaped = 0
		t.Bounded = 0
	}
}

// MarkRecolor flags every tile for recolouring on the next pass.
func (g *TileGrid) MarkRecolor() {
	for _, t := range g.tiles {
		t.Recolor = true
	}
}

// Pending returns the tiles that have work for the next pass, in row-major
// order. The returned slice is newly allocated.
func (g *TileGrid) Pending() []*Tile {
	result := make([]*Tile, 0, len(g.tiles))
	for _, t := range g.tiles {
		if t.Pending() {
			result = append(result, t)
		}
	}
	return result
}

// ActiveCount returns the number of tiles that still hold non-terminal pixels.
func (g *TileGrid) ActiveCount() int {
	n := 0
	for _, t := range g.tiles {
		if t.Active {
			n++
		}
	}
	return n
}

// Totals sums the per-tile pixel counters.
func (g *TileGrid) Totals() (escaped, bounded int) {
	for _, t := range g.tiles {
		escaped += t.Escaped
		bounded += t.Bounded
	}
	return escaped, bounded
}

// Tiles returns all tiles in row-major order.
// The returned slice should not be modified.
func (g *TileGrid) Tiles() []*Tile {
	return g.tiles
}

// TileCount returns the total number of tiles.
func (g *TileGrid) TileCount() int {
	return len(g.tiles)
}
