// Package window explores a fractal session in a desktop window.
//
// The game loop runs inside ebiten: each Update applies the input of that
// tick to the session and runs at most one refinement tick, and Draw uploads
// the live frame buffer as a texture. Resizing the window resizes the
// viewport, so one window pixel is one frame pixel.
package window

import (
	"errors"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/fractal"
)

// Input parameters.
const (
	// PanFraction is the share of the frame moved by one pan key press.
	PanFraction = 0.125

	// ZoomStep is the zoom factor of one key press or click.
	ZoomStep = 2.0

	// WheelStep is the zoom factor of one mouse wheel notch.
	WheelStep = 1.25
)

// Config describes the window.
type Config struct {
	Title string

	// ShowStatus draws the session caption in the top-left corner.
	ShowStatus bool

	// TPS is the number of updates per second. Zero keeps ebiten's default.
	TPS int
}

// Game adapts a Session to ebiten.Game.
type Game struct {
	session *fractal.Session
	cfg     Config
	canvas  *ebiten.Image
	dirty   bool

	// Layout may run on another goroutine than Update; it only records the
	// size, which Update applies.
	mu   sync.Mutex
	size image.Point
}

// NewGame wraps session.
func NewGame(session *fractal.Session, cfg Config) *Game {
	return &Game{session: session, cfg: cfg, dirty: true}
}

// Run opens a window sized to the session viewport and explores until the
// window is closed or the user quits.
func Run(session *fractal.Session, cfg Config) error {
	vp := session.Renderer().Viewport()
	if cfg.Title == "" {
		cfg.Title = "fractal"
	}
	ebiten.SetWindowSize(vp.Width, vp.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}

	fractal.Logger().Info("window: explorer started", "width", vp.Width, "height", vp.Height)
	err := ebiten.RunGame(NewGame(session, cfg))
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	fractal.Logger().Info("window: explorer stopped", "err", err)
	return err
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	events := g.input()
	if ev, ok := g.resize(); ok {
		events = append(events, ev)
	}
	for _, ev := range events {
		quit, err := g.session.Apply(ev)
		if err != nil {
			fractal.Logger().Warn("window: event rejected", "event", ev.String(), "err", err)
			continue
		}
		if quit {
			return ebiten.Termination
		}
	}

	if _, ok := g.session.Tick(); ok {
		g.dirty = true
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	fb := g.session.Frame()
	if g.canvas == nil || g.canvas.Bounds() != fb.Bounds() {
		if g.canvas != nil {
			g.canvas.Deallocate()
		}
		g.canvas = ebiten.NewImage(fb.Width(), fb.Height())
		g.dirty = true
	}
	if g.dirty {
		g.canvas.WritePixels(fb.Data())
		g.dirty = false
	}
	screen.DrawImage(g.canvas, nil)

	if g.cfg.ShowStatus {
		ebitenutil.DebugPrint(screen, g.session.Status().Caption())
	}
}

// Layout implements ebiten.Game. The logical screen follows the window so
// that resizing re-renders at the new resolution.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := max(outsideWidth, 1), max(outsideHeight, 1)
	g.mu.Lock()
	g.size = image.Pt(w, h)
	g.mu.Unlock()
	return w, h
}

// resize returns a Resize event when the window size differs from the
// viewport.
func (g *Game) resize() (fractal.Event, bool) {
	g.mu.Lock()
	size := g.size
	g.mu.Unlock()

	vp := g.session.Renderer().Viewport()
	if size.X == 0 || (size.X == vp.Width && size.Y == vp.Height) {
		return nil, false
	}
	return fractal.Resize{Width: size.X, Height: size.Y}, true
}

// input collects the events of this tick.
func (g *Game) input() []fractal.Event {
	st := g.session.Status()
	w, h := st.Viewport.Width, st.Viewport.Height

	var events []fractal.Event
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		if ev, ok := KeyEvent(k, st); ok {
			events = append(events, ev)
		}
	}

	x, y := ebiten.CursorPosition()
	anchor := image.Pt(x, y)
	if !anchor.In(image.Rect(0, 0, w, h)) {
		return events
	}
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		events = append(events, fractal.Zoom{Factor: ZoomStep, Anchor: anchor})
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight):
		events = append(events, fractal.Zoom{Factor: 1 / ZoomStep, Anchor: anchor})
	}
	if _, dy := ebiten.Wheel(); dy > 0 {
		events = append(events, fractal.Zoom{Factor: WheelStep, Anchor: anchor})
	} else if dy < 0 {
		events = append(events, fractal.Zoom{Factor: 1 / WheelStep, Anchor: anchor})
	}
	return events
}

// KeyEvent maps a key press to a session event given the current status.
func KeyEvent(k ebiten.Key, st fractal.Status) (fractal.Event, bool) {
	w, h := st.Viewport.Width, st.Viewport.Height
	dx := PanFraction * float64(w)
	dy := PanFraction * float64(h)
	center := image.Pt(w/2, h/2)

	switch k {
	case ebiten.KeyEscape, ebiten.KeyQ:
		return fractal.Quit{}, true
	case ebiten.KeyLeft, ebiten.KeyH:
		return fractal.Pan{DX: -dx}, true
	case ebiten.KeyRight, ebiten.KeyL:
		return fractal.Pan{DX: dx}, true
	case ebiten.KeyUp, ebiten.KeyK:
		return fractal.Pan{DY: -dy}, true
	case ebiten.KeyDown, ebiten.KeyJ:
		return fractal.Pan{DY: dy}, true
	case ebiten.KeyEqual, ebiten.KeyNumpadAdd:
		return fractal.Zoom{Factor: ZoomStep, Anchor: center}, true
	case ebiten.KeyMinus, ebiten.KeyNumpadSubtract:
		return fractal.Zoom{Factor: 1 / ZoomStep, Anchor: center}, true
	case ebiten.KeyC, ebiten.KeyP:
		return fractal.PaletteChange{}, true
	case ebiten.KeyBracketRight:
		return fractal.BudgetChange{Max: st.MaxBudget * 2}, true
	case ebiten.KeyBracketLeft:
		return fractal.BudgetChange{Max: max(st.MaxBudget/2, 1)}, true
	case ebiten.KeyR:
		return fractal.Reset{}, true
	case ebiten.KeySpace:
		return fractal.Pause{}, true
	case ebiten.KeyPeriod, ebiten.KeyS:
		return fractal.Step{}, true
	}

	if k >= ebiten.KeyDigit1 && k <= ebiten.KeyDigit9 {
		names := fractal.PaletteNames()
		if i := int(k - ebiten.KeyDigit1); i < len(names) {
			return fractal.PaletteChange{Name: names[i]}, true
		}
	}
	return nil, false
}
