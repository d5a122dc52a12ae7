package fractal

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gogpu/fractal/internal/overlay"
)

// Live refinement defaults.
const (
	// DefaultStep is the number of iterations added per tick.
	DefaultStep = 16

	// DefaultMaxBudget caps the cumulative budget of a live session.
	DefaultMaxBudget = 1000
)

// State is the refinement state of a live session.
type State int

const (
	// StateIdle means the view was just (re)started and no tick has run.
	StateIdle State = iota

	// StateRefining means the cumulative budget is being raised tick by
	// tick over the pixels that have not escaped.
	StateRefining

	// StateConverged means every pixel escaped or the maximum budget was
	// reached. No further automatic refinement happens until the view is
	// invalidated or the budget cap is raised.
	StateConverged
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefining:
		return "refining"
	case StateConverged:
		return "converged"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	step      int
	maxBudget int
	palette   string
}

// WithStep sets the iterations added per tick.
func WithStep(n int) SessionOption {
	return func(o *sessionOptions) {
		o.step = n
	}
}

// WithMaxBudget sets the cumulative budget at which refinement stops.
func WithMaxBudget(n int) SessionOption {
	return func(o *sessionOptions) {
		o.maxBudget = n
	}
}

// WithPaletteName records the name of the renderer's initial palette. It
// is the starting point for palette cycling and is reported by Status.
func WithPaletteName(name string) SessionOption {
	return func(o *sessionOptions) {
		o.palette = name
	}
}

// Session is the live refinement state machine.
//
// Input collaborators feed it events through Apply, which only updates
// state; Tick does the work of one frame. Changing the view invalidates all
// per-pixel state and returns the session to StateIdle, so a tick never
// mixes orbits from two viewports.
//
// A Session is not safe for concurrent use.
type Session struct {
	renderer *Renderer
	initial  Viewport

	state    State
	paused   bool
	stepOnce bool
	recolor  bool

	step      int
	maxBudget int
	budget    int
	palette   string

	last FrameStats
}

// Status is a snapshot of a session for status lines and overlays.
type Status struct {
	State     State
	Paused    bool
	Budget    int
	MaxBudget int
	Step      int
	Viewport  Viewport
	Palette   string
	Stats     FrameStats
}

// NewSession starts a live session on r. The session does not own r; the
// caller closes it.
func NewSession(r *Renderer, opts ...SessionOption) (*Session, error) {
	o := sessionOptions{
		step:      DefaultStep,
		maxBudget: DefaultMaxBudget,
		palette:   palettes[0].Name,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.step <= 0 {
		return nil, fmt.Errorf("%w: step %d", ErrInvalidBudget, o.step)
	}
	if o.maxBudget <= 0 {
		return nil, fmt.Errorf("%w: max %d", ErrInvalidBudget, o.maxBudget)
	}

	s := &Session{
		renderer:  r,
		initial:   r.Viewport(),
		step:      o.step,
		maxBudget: o.maxBudget,
		palette:   o.palette,
	}
	r.Invalidate()

	Logger().Info("fractal: session started",
		"viewport", s.initial.String(),
		"step", s.step,
		"max", s.maxBudget,
		"workers", r.Workers())
	return s, nil
}

// Renderer returns the renderer driven by the session.
func (s *Session) Renderer() *Renderer { return s.renderer }

// State returns the refinement state.
func (s *Session) State() State { return s.state }

// Paused reports whether automatic refinement is paused.
func (s *Session) Paused() bool { return s.paused }

// Budget returns the cumulative iteration budget reached so far.
func (s *Session) Budget() int { return s.budget }

// Frame returns the live frame buffer.
func (s *Session) Frame() *FrameBuffer { return s.renderer.Frame() }

// Apply updates the session for one input event. It reports quit for a
// Quit event. An event that would produce an invalid view is rejected with
// an error and leaves the session unchanged.
func (s *Session) Apply(ev Event) (quit bool, err error) {
	vp := s.renderer.Viewport()

	switch e := ev.(type) {
	case Pan:
		err = s.setViewport(vp.Pan(e.DX, e.DY))
	case Zoom:
		if !(e.Factor > 0) || math.IsInf(e.Factor, 1) {
			return false, fmt.Errorf("%w: zoom factor %v", ErrInvalidViewport, e.Factor)
		}
		err = s.setViewport(vp.Zoom(e.Factor, e.Anchor))
	case Resize:
		err = s.setViewport(vp.Resize(e.Width, e.Height))
	case Reset:
		err = s.setViewport(s.initial)
	case PaletteChange:
		err = s.setPalette(e)
	case BudgetChange:
		err = s.setMaxBudget(e.Max)
	case Pause:
		s.paused = !s.paused
		s.stepOnce = false
	case Step:
		if s.paused {
			s.stepOnce = true
		}
	case Quit:
		return true, nil
	default:
		return false, fmt.Errorf("fractal: unknown event %T", ev)
	}

	if err == nil {
		Logger().Debug("fractal: event", "event", ev.String(), "state", s.state.String())
	}
	return false, err
}

func (s *Session) setViewport(vp Viewport) error {
	if err := s.renderer.SetViewport(vp); err != nil {
		return err
	}
	s.restart()
	return nil
}

// restart drops all refinement progress.
func (s *Session) restart() {
	s.state = StateIdle
	s.budget = 0
	s.recolor = false
	s.last = FrameStats{}
}

func (s *Session) setPalette(e PaletteChange) error {
	var np NamedPalette
	switch {
	case e.Palette != nil:
		np = NamedPalette{Name: e.Name, Palette: e.Palette}
	case e.Name != "":
		p, err := PaletteByName(e.Name)
		if err != nil {
			return err
		}
		np = p
	default:
		np = NextPalette(s.palette)
	}

	s.palette = np.Name
	s.renderer.SetColorMapper(s.renderer.ColorMapper().WithPalette(np.Palette))
	if s.state != StateIdle {
		s.recolor = true
	}
	return nil
}

func (s *Session) setMaxBudget(m int) error {
	if m <= 0 {
		return fmt.Errorf("%w: max %d", ErrInvalidBudget, m)
	}
	s.maxBudget = m

	switch {
	case m < s.budget:
		// Orbits already ran past the new cap; start over under it.
		s.renderer.Invalidate()
		s.restart()
	case s.state == StateConverged && m > s.budget && s.last.ActiveTiles > 0:
		s.state = StateRefining
	}
	return nil
}

// Pending reports whether the next Tick would produce a frame.
func (s *Session) Pending() bool {
	switch {
	case s.recolor:
		return true
	case s.paused:
		return s.stepOnce
	default:
		return s.state != StateConverged
	}
}

// Tick runs one refinement step and returns the updated frame. It returns
// false when there is nothing to do: the session is converged or paused
// with no pending recolour or single step.
func (s *Session) Tick() (*FrameBuffer, bool) {
	if !s.Pending() {
		return nil, false
	}

	step := s.stepOnce
	s.stepOnce = false

	// A palette change on a finished or paused view only recolours.
	if s.state == StateConverged || (s.paused && !step) {
		return s.refine(s.budget)
	}

	if s.state == StateIdle {
		s.state = StateRefining
	}
	return s.refine(min(s.budget+s.step, s.maxBudget))
}

func (s *Session) refine(budget int) (*FrameBuffer, bool) {
	stats, err := s.renderer.Refine(budget)
	if err != nil {
		Logger().Warn("fractal: refine failed", "budget", budget, "err", err)
		return nil, false
	}
	s.budget = budget
	s.recolor = false
	s.last = stats

	if s.state == StateRefining && (stats.Converged() || s.budget >= s.maxBudget) {
		s.state = StateConverged
		Logger().Info("fractal: converged",
			"budget", s.budget,
			"escaped", stats.Escaped,
			"bounded", stats.Bounded)
	}
	return s.renderer.Frame(), true
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	return Status{
		State:     s.state,
		Paused:    s.paused,
		Budget:    s.budget,
		MaxBudget: s.maxBudget,
		Step:      s.step,
		Viewport:  s.renderer.Viewport(),
		Palette:   s.palette,
		Stats:     s.last,
	}
}

// Caption formats the status as a short multi-line caption.
func (st Status) Caption() string {
	state := st.State.String()
	if st.Paused {
		state += " (paused)"
	}
	c := st.Viewport.Center

	var b strings.Builder
	fmt.Fprintf(&b, "center %.12g %+.12gi  scale %.6g\n", real(c), imag(c), st.Viewport.Scale)
	fmt.Fprintf(&b, "iterations %s / %s  %s\n", overlay.Int(st.Budget), overlay.Int(st.MaxBudget), st.Palette)
	fmt.Fprintf(&b, "%s  %s escaped  %s tiles active  %s",
		state,
		overlay.Int(st.Stats.Escaped),
		overlay.Int(st.Stats.ActiveTiles),
		st.Stats.Elapsed.Round(time.Microsecond))
	return b.String()
}
