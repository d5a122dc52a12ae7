package parallel

import (
	"image"
	"testing"
)

// =============================================================================
// Tile Tests
// =============================================================================

func TestTile_Rect(t *testing.T) {
	tile := Tile{X: 128, Y: 64, Width: 32, Height: 16}

	want := image.Rect(128, 64, 160, 80)
	if got := tile.Rect(); got != want {
		t.Errorf("Rect() = %v, want %v", got, want)
	}
	if tile.Pixels() != 32*16 {
		t.Errorf("Pixels() = %d, want %d", tile.Pixels(), 32*16)
	}
}

func TestTile_Pending(t *testing.T) {
	tests := []struct {
		name            string
		active, recolor bool
		want            bool
	}{
		{"idle", false, false, false},
		{"active", true, false, true},
		{"recolor", false, true, true},
		{"both", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := Tile{Active: tt.active, Recolor: tt.recolor}
			if got := tile.Pending(); got != tt.want {
				t.Errorf("Pending() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// TileGrid Tests
// =============================================================================

func TestTileGrid_Dimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		size          int
		wantTiles     int
		wantLastW     int
		wantLastH     int
	}{
		{"exact", 128, 128, 64, 4, 64, 64},
		{"edge tiles", 100, 70, 64, 4, 36, 6},
		{"default size", 65, 1, 0, 2, 1, 1},
		{"small tiles", 10, 10, 4, 9, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewTileGrid(tt.width, tt.height, tt.size)
			if g.TileCount() != tt.wantTiles {
				t.Fatalf("TileCount() = %d, want %d", g.TileCount(), tt.wantTiles)
			}
			last := g.Tiles()[g.TileCount()-1]
			if got := last.Rect().Max; got != image.Pt(tt.width, tt.height) {
				t.Errorf("last tile ends at %v, want frame corner", got)
			}
			if last.Width != tt.wantLastW || last.Height != tt.wantLastH {
				t.Errorf("last tile = %dx%d, want %dx%d", last.Width, last.Height, tt.wantLastW, tt.wantLastH)
			}
		})
	}
}

func TestTileGrid_CoversFrameOnce(t *testing.T) {
	const w, h = 150, 97
	g := NewTileGrid(w, h, 32)

	seen := make([]int, w*h)
	for i, tile := range g.Tiles() {
		if tile.Index != i {
			t.Errorf("tile %d has Index %d", i, tile.Index)
		}
		for y := tile.Y; y < tile.Y+tile.Height; y++ {
			for x := tile.X; x < tile.X+tile.Width; x++ {
				seen[y*w+x]++
			}
		}
	}
	for i, n := range seen {
		if n != 1 {
			t.Fatalf("pixel %d covered %d times, want 1", i, n)
		}
	}
}

func TestTileGrid_Empty(t *testing.T) {
	for _, dims := range [][2]int{{0, 10}, {10, 0}, {-1, -1}} {
		g := NewTileGrid(dims[0], dims[1], 64)
		if g.TileCount() != 0 {
			t.Errorf("NewTileGrid(%d, %d) has %d tiles, want 0", dims[0], dims[1], g.TileCount())
		}
		if len(g.Pending()) != 0 || g.ActiveCount() != 0 {
			t.Error("empty grid should have no pending tiles")
		}
	}
}

func TestTileGrid_ActiveAndRecolor(t *testing.T) {
	g := NewTileGrid(128, 128, 64)

	if g.ActiveCount() != 4 {
		t.Fatalf("new grid ActiveCount() = %d, want 4", g.ActiveCount())
	}

	for _, tile := range g.Tiles() {
		tile.Active = false
		tile.Escaped = tile.Pixels()
	}
	if len(g.Pending()) != 0 {
		t.Errorf("Pending() = %d tiles, want 0", len(g.Pending()))
	}
	if esc, bnd := g.Totals(); esc != 128*128 || bnd != 0 {
		t.Errorf("Totals() = (%d, %d), want (%d, 0)", esc, bnd, 128*128)
	}

	g.MarkRecolor()
	if len(g.Pending()) != 4 {
		t.Errorf("Pending() after MarkRecolor = %d tiles, want 4", len(g.Pending()))
	}

	g.ActivateAll()
	if g.ActiveCount() != 4 {
		t.Errorf("ActiveCount() after ActivateAll = %d, want 4", g.ActiveCount())
	}
	if esc, _ := g.Totals(); esc != 0 {
		t.Errorf("Totals() after ActivateAll escaped = %d, want 0", esc)
	}
	for _, tile := range g.Tiles() {
		if tile.Recolor {
			t.Error("ActivateAll should clear Recolor")
		}
	}
}

func TestTileGrid_Resize(t *testing.T) {
	g := NewTileGrid(64, 64, 64)
	first := g.Tiles()[0]
	first.Active = false

	g.Resize(64, 64)
	if g.Tiles()[0] != first {
		t.Error("Resize with same dimensions should keep tiles")
	}

	g.Resize(130, 10)
	if g.TileCount() != 3 {
		t.Errorf("after Resize TileCount() = %d, want 3", g.TileCount())
	}
	if last := g.Tiles()[2]; last.Rect() != image.Rect(128, 0, 130, 10) {
		t.Errorf("after Resize last tile = %v, want %v", last.Rect(), image.Rect(128, 0, 130, 10))
	}
	if g.ActiveCount() != 3 {
		t.Errorf("after Resize ActiveCount() = %d, want 3", g.ActiveCount())
	}

	g.Resize(0, 0)
	if g.TileCount() != 0 {
		t.Error("Resize(0, 0) should empty the grid")
	}
}
