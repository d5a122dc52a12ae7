package term

import (
	"image"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/fractal"
)

// Input translation parameters.
const (
	// PanFraction is the share of the frame moved by one pan key press.
	PanFraction = 0.125

	// ZoomStep is the zoom factor of one key press or click.
	ZoomStep = 2.0

	// WheelStep is the zoom factor of one mouse wheel notch.
	WheelStep = 1.25
)

// Input translates tcell events into fractal events.
//
// It tracks the frame size and iteration cap it has requested so that
// relative commands (pan by a share of the frame, double the cap) can be
// expressed as absolute events without reading the session from another
// goroutine.
type Input struct {
	Width, Height int
	MaxBudget     int
}

// NewInput starts tracking from a session snapshot.
func NewInput(st fractal.Status) *Input {
	return &Input{
		Width:     st.Viewport.Width,
		Height:    st.Viewport.Height,
		MaxBudget: st.MaxBudget,
	}
}

// Translate maps one terminal event. It returns false for events with no
// meaning to the explorer.
func (in *Input) Translate(ev tcell.Event) (fractal.Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return in.key(ev)
	case *tcell.EventMouse:
		return in.mouse(ev)
	case *tcell.EventResize:
		w, h := FrameSize(ev.Size())
		in.Width, in.Height = w, h
		return fractal.Resize{Width: w, Height: h}, true
	}
	return nil, false
}

func (in *Input) key(ev *tcell.EventKey) (fractal.Event, bool) {
	dx := PanFraction * float64(in.Width)
	dy := PanFraction * float64(in.Height)

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return fractal.Quit{}, true
	case tcell.KeyLeft:
		return fractal.Pan{DX: -dx}, true
	case tcell.KeyRight:
		return fractal.Pan{DX: dx}, true
	case tcell.KeyUp:
		return fractal.Pan{DY: -dy}, true
	case tcell.KeyDown:
		return fractal.Pan{DY: dy}, true
	case tcell.KeyRune:
	default:
		return nil, false
	}

	switch r := ev.Rune(); r {
	case 'q':
		return fractal.Quit{}, true
	case 'h':
		return fractal.Pan{DX: -dx}, true
	case 'l':
		return fractal.Pan{DX: dx}, true
	case 'k':
		return fractal.Pan{DY: -dy}, true
	case 'j':
		return fractal.Pan{DY: dy}, true
	case '+', '=':
		return fractal.Zoom{Factor: ZoomStep, Anchor: in.center()}, true
	case '-', '_':
		return fractal.Zoom{Factor: 1 / ZoomStep, Anchor: in.center()}, true
	case 'c', 'p':
		return fractal.PaletteChange{}, true
	case ']':
		in.MaxBudget *= 2
		return fractal.BudgetChange{Max: in.MaxBudget}, true
	case '[':
		in.MaxBudget = max(in.MaxBudget/2, 1)
		return fractal.BudgetChange{Max: in.MaxBudget}, true
	case 'r':
		return fractal.Reset{}, true
	case ' ':
		return fractal.Pause{}, true
	case '.', 's':
		return fractal.Step{}, true
	default:
		if r >= '1' && r <= '9' {
			names := fractal.PaletteNames()
			if i := int(r - '1'); i < len(names) {
				return fractal.PaletteChange{Name: names[i]}, true
			}
		}
	}
	return nil, false
}

func (in *Input) mouse(ev *tcell.EventMouse) (fractal.Event, bool) {
	x, y := ev.Position()
	// A cell covers two pixel rows; anchor on the upper one.
	anchor := image.Pt(x, 2*y)
	if anchor.X >= in.Width || anchor.Y >= in.Height {
		return nil, false
	}

	b := ev.Buttons()
	switch {
	case b&tcell.Button1 != 0:
		return fractal.Zoom{Factor: ZoomStep, Anchor: anchor}, true
	case b&tcell.Button2 != 0, b&tcell.Button3 != 0:
		return fractal.Zoom{Factor: 1 / ZoomStep, Anchor: anchor}, true
	case b&tcell.WheelUp != 0:
		return fractal.Zoom{Factor: WheelStep, Anchor: anchor}, true
	case b&tcell.WheelDown != 0:
		return fractal.Zoom{Factor: 1 / WheelStep, Anchor: anchor}, true
	}
	return nil, false
}

func (in *Input) center() image.Point {
	return image.Pt(in.Width/2, in.Height/2)
}
