package fractal

import (
	"fmt"
	"image"
)

// Event is a discrete input delivered to a Session by an input
// collaborator: a terminal, a window or a remote client.
type Event interface {
	fmt.Stringer
	event()
}

// Pan moves the view by DX, DY pixels. Positive DX reveals content to the
// right, positive DY content below.
type Pan struct {
	DX, DY float64
}

// Zoom magnifies the view by Factor around the Anchor pixel. Factors above
// 1 zoom in.
type Zoom struct {
	Factor float64
	Anchor image.Point
}

// Resize changes the frame resolution.
type Resize struct {
	Width, Height int
}

// PaletteChange selects a palette. A non-nil Palette is used directly under
// Name; otherwise Name is looked up among the built-in palettes; an empty
// event cycles to the next built-in palette.
type PaletteChange struct {
	Name    string
	Palette Palette
}

// BudgetChange sets the maximum cumulative iteration budget.
type BudgetChange struct {
	Max int
}

// Reset restores the initial viewport.
type Reset struct{}

// Pause toggles automatic refinement.
type Pause struct{}

// Step runs exactly one refinement tick while paused.
type Step struct{}

// Quit ends the session.
type Quit struct{}

func (Pan) event()           {}
func (Zoom) event()          {}
func (Resize) event()        {}
func (PaletteChange) event() {}
func (BudgetChange) event()  {}
func (Reset) event()         {}
func (Pause) event()         {}
func (Step) event()          {}
func (Quit) event()          {}

func (e Pan) String() string  { return fmt.Sprintf("pan(%g,%g)", e.DX, e.DY) }
func (e Zoom) String() string { return fmt.Sprintf("zoom(%g@%d,%d)", e.Factor, e.Anchor.X, e.Anchor.Y) }
func (e Resize) String() string {
	return fmt.Sprintf("resize(%dx%d)", e.Width, e.Height)
}
func (e PaletteChange) String() string {
	if e.Name == "" && e.Palette == nil {
		return "palette(next)"
	}
	return fmt.Sprintf("palette(%s)", e.Name)
}
func (e BudgetChange) String() string { return fmt.Sprintf("budget(%d)", e.Max) }
func (Reset) String() string          { return "reset" }
func (Pause) String() string          { return "pause" }
func (Step) String() string           { return "step" }
func (Quit) String() string           { return "quit" }
