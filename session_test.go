package fractal

import (
	"bytes"
	"errors"
	"image"
	"math"
	"strings"
	"testing"
)

func newTestSession(t *testing.T, vp Viewport, opts ...SessionOption) *Session {
	t.Helper()
	s, err := NewSession(newTestRenderer(t, vp), opts...)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s
}

func tick(t *testing.T, s *Session) *FrameBuffer {
	t.Helper()
	fb, ok := s.Tick()
	if !ok {
		t.Fatalf("Tick() = false in state %v (budget %d)", s.State(), s.Budget())
	}
	return fb
}

func apply(t *testing.T, s *Session, ev Event) {
	t.Helper()
	if _, err := s.Apply(ev); err != nil {
		t.Fatalf("Apply(%v) error = %v", ev, err)
	}
}

// =============================================================================
// Construction
// =============================================================================

func TestNewSession_Errors(t *testing.T) {
	r := newTestRenderer(t, DefaultViewport(8, 8))
	if _, err := NewSession(r, WithStep(0)); !errors.Is(err, ErrInvalidBudget) {
		t.Errorf("WithStep(0) error = %v, want ErrInvalidBudget", err)
	}
	if _, err := NewSession(r, WithMaxBudget(-5)); !errors.Is(err, ErrInvalidBudget) {
		t.Errorf("WithMaxBudget(-5) error = %v, want ErrInvalidBudget", err)
	}
}

func TestNewSession_Defaults(t *testing.T) {
	s := newTestSession(t, DefaultViewport(8, 8))
	st := s.Status()
	if st.State != StateIdle || st.Step != DefaultStep || st.MaxBudget != DefaultMaxBudget {
		t.Errorf("Status() = %+v", st)
	}
	if st.Palette != "classic" {
		t.Errorf("Palette = %q, want classic", st.Palette)
	}
	if !s.Pending() {
		t.Error("new session has no pending work")
	}
}

// =============================================================================
// State transitions
// =============================================================================

func TestSession_RefinesToBudgetCap(t *testing.T) {
	s := newTestSession(t, DefaultViewport(32, 24), WithStep(10), WithMaxBudget(30))

	for i, want := range []int{10, 20, 30} {
		tick(t, s)
		if s.Budget() != want {
			t.Errorf("tick %d: Budget() = %d, want %d", i+1, s.Budget(), want)
		}
		wantState := StateRefining
		if want == 30 {
			wantState = StateConverged
		}
		if s.State() != wantState {
			t.Errorf("tick %d: State() = %v, want %v", i+1, s.State(), wantState)
		}
	}

	if s.Pending() {
		t.Error("converged session still pending")
	}
	if _, ok := s.Tick(); ok {
		t.Error("Tick() on converged session produced a frame")
	}

	want, _ := newTestRenderer(t, DefaultViewport(32, 24)).Render(30)
	if !bytes.Equal(s.Frame().Data(), want.Data()) {
		t.Error("converged frame differs from a render at the cap")
	}
}

func TestSession_ConvergesWhenAllEscaped(t *testing.T) {
	s := newTestSession(t, outsideViewport(), WithStep(10), WithMaxBudget(1000))
	tick(t, s)
	if s.State() != StateConverged {
		t.Errorf("State() = %v, want converged", s.State())
	}
	if s.Budget() != 10 {
		t.Errorf("Budget() = %d, want 10", s.Budget())
	}
}

func TestSession_StepCappedAtMax(t *testing.T) {
	s := newTestSession(t, insideViewport(), WithStep(16), WithMaxBudget(40))
	tick(t, s)
	tick(t, s)
	tick(t, s)
	if s.Budget() != 40 || s.State() != StateConverged {
		t.Errorf("Budget() = %d, State() = %v, want 40 converged", s.Budget(), s.State())
	}
}

func TestSession_ViewChangesRestart(t *testing.T) {
	events := []Event{
		Pan{DX: 4, DY: -2},
		Zoom{Factor: 2, Anchor: image.Pt(3, 3)},
		Resize{Width: 20, Height: 10},
		Reset{},
	}
	for _, ev := range events {
		t.Run(ev.String(), func(t *testing.T) {
			s := newTestSession(t, DefaultViewport(32, 24), WithStep(10), WithMaxBudget(30))
			tick(t, s)
			tick(t, s)

			apply(t, s, ev)

			if s.State() != StateIdle || s.Budget() != 0 {
				t.Errorf("after %v: State() = %v, Budget() = %d, want idle at 0", ev, s.State(), s.Budget())
			}
			store := s.Renderer().Store()
			for i := range store.Len() {
				if st := store.At(i); *st != (OrbitState{}) {
					t.Fatalf("after %v: pixel %d = %+v, want fresh", ev, i, *st)
				}
			}
			tick(t, s)
			if s.Budget() != 10 {
				t.Errorf("first tick after %v: Budget() = %d, want 10", ev, s.Budget())
			}
		})
	}
}

func TestSession_Reset(t *testing.T) {
	vp := DefaultViewport(32, 24)
	s := newTestSession(t, vp)
	apply(t, s, Zoom{Factor: 8, Anchor: image.Pt(1, 1)})
	apply(t, s, Pan{DX: 7})
	apply(t, s, Reset{})
	if got := s.Status().Viewport; got != vp {
		t.Errorf("Viewport after Reset = %v, want %v", got, vp)
	}
}

func TestSession_InvalidViewChangeRejected(t *testing.T) {
	vp := DefaultViewport(32, 24)
	s := newTestSession(t, vp, WithStep(10))
	tick(t, s)

	if _, err := s.Apply(Resize{Width: 0, Height: 24}); !errors.Is(err, ErrInvalidViewport) {
		t.Errorf("Resize(0x24) error = %v, want ErrInvalidViewport", err)
	}
	if _, err := s.Apply(Zoom{Factor: 0}); !errors.Is(err, ErrInvalidViewport) {
		t.Errorf("Zoom(0) error = %v, want ErrInvalidViewport", err)
	}
	if s.Status().Viewport != vp || s.Budget() != 10 || s.State() != StateRefining {
		t.Errorf("rejected events changed the session: %+v", s.Status())
	}
}

func TestSession_ResizeTooLarge(t *testing.T) {
	vp := DefaultViewport(32, 24)
	s := newTestSession(t, vp, WithStep(10))
	tick(t, s)

	for _, ev := range []Resize{
		{Width: 1 << 25, Height: 1 << 25},
		{Width: MaxPixels + 1, Height: 1},
		{Width: math.MaxInt, Height: math.MaxInt},
	} {
		if _, err := s.Apply(ev); !errors.Is(err, ErrInvalidViewport) {
			t.Errorf("Apply(%v) error = %v, want ErrInvalidViewport", ev, err)
		}
	}
	if s.Status().Viewport != vp || s.Budget() != 10 || s.State() != StateRefining {
		t.Errorf("oversized resize changed the session: %+v", s.Status())
	}
	if fb := s.Frame(); fb.Width() != 32 || fb.Height() != 24 {
		t.Errorf("Frame() = %dx%d, want 32x24", fb.Width(), fb.Height())
	}
	if got := s.Renderer().Store().Len(); got != 32*24 {
		t.Errorf("Store().Len() = %d, want %d", got, 32*24)
	}
}

func TestSession_ZoomNonFiniteRejected(t *testing.T) {
	vp := DefaultViewport(32, 24)
	s := newTestSession(t, vp, WithStep(10))
	tick(t, s)

	for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN(), -2} {
		if _, err := s.Apply(Zoom{Factor: f, Anchor: image.Pt(4, 4)}); !errors.Is(err, ErrInvalidViewport) {
			t.Errorf("Zoom(%v) error = %v, want ErrInvalidViewport", f, err)
		}
	}
	if s.Status().Viewport != vp || s.Budget() != 10 || s.State() != StateRefining {
		t.Errorf("non-finite zoom changed the session: %+v", s.Status())
	}
}

// =============================================================================
// Budget cap
// =============================================================================

func TestSession_RaiseBudgetResumes(t *testing.T) {
	s := newTestSession(t, DefaultViewport(32, 24), WithStep(10), WithMaxBudget(20))
	tick(t, s)
	tick(t, s)
	if s.State() != StateConverged {
		t.Fatalf("State() = %v, want converged", s.State())
	}
	before := s.Renderer().Store().Get(16, 12).Iterations()

	apply(t, s, BudgetChange{Max: 40})
	if s.State() != StateRefining {
		t.Errorf("State() after raise = %v, want refining", s.State())
	}
	tick(t, s)
	if s.Budget() != 30 {
		t.Errorf("Budget() = %d, want 30", s.Budget())
	}
	if got := s.Renderer().Store().Get(16, 12).Iterations(); before == 20 && got != 30 {
		t.Errorf("bounded pixel Iterations() = %d, want resumed to 30", got)
	}
}

func TestSession_RaiseBudgetAfterFullEscape(t *testing.T) {
	s := newTestSession(t, outsideViewport(), WithStep(10), WithMaxBudget(20))
	tick(t, s)
	apply(t, s, BudgetChange{Max: 100})
	if s.State() != StateConverged || s.Pending() {
		t.Errorf("State() = %v, Pending() = %v, want converged with no work", s.State(), s.Pending())
	}
}

func TestSession_LowerBudgetRestarts(t *testing.T) {
	s := newTestSession(t, DefaultViewport(32, 24), WithStep(10), WithMaxBudget(50))
	for range 4 {
		tick(t, s)
	}

	apply(t, s, BudgetChange{Max: 15})
	if s.State() != StateIdle || s.Budget() != 0 {
		t.Errorf("State() = %v, Budget() = %d, want idle at 0", s.State(), s.Budget())
	}
	tick(t, s)
	tick(t, s)
	if s.Budget() != 15 || s.State() != StateConverged {
		t.Errorf("Budget() = %d, State() = %v, want 15 converged", s.Budget(), s.State())
	}
}

func TestSession_BudgetChangeInvalid(t *testing.T) {
	s := newTestSession(t, DefaultViewport(8, 8))
	if _, err := s.Apply(BudgetChange{Max: 0}); !errors.Is(err, ErrInvalidBudget) {
		t.Errorf("BudgetChange(0) error = %v, want ErrInvalidBudget", err)
	}
}

// =============================================================================
// Palette
// =============================================================================

func TestSession_PaletteCycle(t *testing.T) {
	s := newTestSession(t, DefaultViewport(8, 8))
	names := PaletteNames()
	for i := 1; i <= len(names); i++ {
		apply(t, s, PaletteChange{})
		if got, want := s.Status().Palette, names[i%len(names)]; got != want {
			t.Errorf("after %d changes Palette = %q, want %q", i, got, want)
		}
	}
}

func TestSession_PaletteByName(t *testing.T) {
	s := newTestSession(t, DefaultViewport(8, 8))
	apply(t, s, PaletteChange{Name: "hue"})
	if s.Status().Palette != "hue" {
		t.Errorf("Palette = %q, want hue", s.Status().Palette)
	}
	if _, err := s.Apply(PaletteChange{Name: "plaid"}); !errors.Is(err, ErrUnknownPalette) {
		t.Errorf("PaletteChange(plaid) error = %v, want ErrUnknownPalette", err)
	}

	custom := PaletteFunc(func(float64) RGBA { return White })
	apply(t, s, PaletteChange{Name: "white", Palette: custom})
	if s.Status().Palette != "white" {
		t.Errorf("Palette = %q, want white", s.Status().Palette)
	}
}

func TestSession_PaletteRecolorsConverged(t *testing.T) {
	s := newTestSession(t, DefaultViewport(32, 24), WithStep(10), WithMaxBudget(20))
	tick(t, s)
	tick(t, s)
	before := s.Frame().Clone()

	apply(t, s, PaletteChange{Name: "grayscale"})
	if s.State() != StateConverged {
		t.Errorf("State() = %v, want converged", s.State())
	}
	if !s.Pending() {
		t.Fatal("palette change left no pending recolour")
	}
	tick(t, s)

	if s.Budget() != 20 {
		t.Errorf("Budget() = %d, want unchanged 20", s.Budget())
	}
	if bytes.Equal(before.Data(), s.Frame().Data()) {
		t.Error("frame not recoloured")
	}
	if s.Pending() {
		t.Error("session still pending after recolour")
	}

	want, _ := newTestRenderer(t, DefaultViewport(32, 24), WithPalette(Grayscale)).Render(20)
	if !bytes.Equal(s.Frame().Data(), want.Data()) {
		t.Error("recoloured frame differs from a grayscale render")
	}
}

// =============================================================================
// Pause and step
// =============================================================================

func TestSession_PauseAndStep(t *testing.T) {
	s := newTestSession(t, insideViewport(), WithStep(5), WithMaxBudget(100))
	tick(t, s)

	apply(t, s, Pause{})
	if !s.Paused() || s.Pending() {
		t.Fatalf("Paused() = %v, Pending() = %v, want paused with no work", s.Paused(), s.Pending())
	}
	if _, ok := s.Tick(); ok {
		t.Error("Tick() while paused produced a frame")
	}

	apply(t, s, Step{})
	tick(t, s)
	if s.Budget() != 10 {
		t.Errorf("Budget() after step = %d, want 10", s.Budget())
	}
	if _, ok := s.Tick(); ok {
		t.Error("second Tick() after a single step produced a frame")
	}

	apply(t, s, Pause{})
	tick(t, s)
	if s.Budget() != 15 {
		t.Errorf("Budget() after resume = %d, want 15", s.Budget())
	}
}

func TestSession_StepIgnoredWhenRunning(t *testing.T) {
	s := newTestSession(t, insideViewport(), WithStep(5))
	apply(t, s, Step{})
	tick(t, s)
	tick(t, s)
	if s.Budget() != 10 {
		t.Errorf("Budget() = %d, want 10", s.Budget())
	}
}

func TestSession_StepOnConvergedDoesNotSpin(t *testing.T) {
	s := newTestSession(t, outsideViewport(), WithStep(5))
	tick(t, s)
	apply(t, s, Pause{})
	apply(t, s, Step{})
	s.Tick()
	if s.Pending() {
		t.Error("session pending after stepping a converged view")
	}
}

func TestSession_PaletteWhilePaused(t *testing.T) {
	s := newTestSession(t, insideViewport(), WithStep(5))
	tick(t, s)
	apply(t, s, Pause{})
	apply(t, s, PaletteChange{})
	tick(t, s)
	if s.Budget() != 5 {
		t.Errorf("Budget() = %d, want 5: recolour must not refine", s.Budget())
	}
}

// =============================================================================
// Misc
// =============================================================================

type bogusEvent struct{}

func (bogusEvent) event()         {}
func (bogusEvent) String() string { return "bogus" }

func TestSession_Quit(t *testing.T) {
	s := newTestSession(t, DefaultViewport(8, 8))
	quit, err := s.Apply(Quit{})
	if !quit || err != nil {
		t.Errorf("Apply(Quit) = %v, %v, want true, nil", quit, err)
	}
	quit, err = s.Apply(bogusEvent{})
	if quit || err == nil {
		t.Errorf("Apply(bogus) = %v, %v, want false, error", quit, err)
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateIdle:      "idle",
		StateRefining:  "refining",
		StateConverged: "converged",
		State(9):       "State(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestStatus_Caption(t *testing.T) {
	s := newTestSession(t, DefaultViewport(32, 24), WithStep(10), WithMaxBudget(3000))
	tick(t, s)
	apply(t, s, Pause{})

	caption := s.Status().Caption()
	for _, want := range []string{"iterations 10 / 3,000", "classic", "refining (paused)", "scale 1.3125"} {
		if !strings.Contains(caption, want) {
			t.Errorf("Caption() = %q, want it to contain %q", caption, want)
		}
	}
	if n := strings.Count(caption, "\n"); n != 2 {
		t.Errorf("Caption() has %d line breaks, want 2", n)
	}
}
