package stream

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/fractal"
)

// ErrUnknownCommand is returned for a command type the server does not
// accept from clients.
var ErrUnknownCommand = errors.New("stream: unknown command")

// ErrInvalidCommand is returned for a command whose arguments are out of
// range.
var ErrInvalidCommand = errors.New("stream: invalid command")

// MaxFramePixels caps the live frame a client may resize to.
const MaxFramePixels = 4096 * 4096

// Command is a client request, sent as a JSON text message.
//
// Type selects the event; the other fields are read as that event needs
// them. Pan offsets and zoom anchors are in frame pixels.
type Command struct {
	Type string `json:"type"`

	DX float64 `json:"dx,omitempty"`
	DY float64 `json:"dy,omitempty"`

	Factor float64 `json:"factor,omitempty"`
	X      int     `json:"x,omitempty"`
	Y      int     `json:"y,omitempty"`

	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	Palette string `json:"palette,omitempty"`
	Max     int    `json:"max,omitempty"`
}

// Event converts the command to a session event. Clients cannot quit the
// server, so there is no command for Quit.
func (c Command) Event() (fractal.Event, error) {
	switch c.Type {
	case "pan":
		return fractal.Pan{DX: c.DX, DY: c.DY}, nil
	case "zoom":
		return fractal.Zoom{Factor: c.Factor, Anchor: image.Pt(c.X, c.Y)}, nil
	case "resize":
		if c.Width <= 0 || c.Height <= 0 ||
			c.Width > MaxFramePixels || c.Height > MaxFramePixels ||
			c.Width*c.Height > MaxFramePixels {
			return nil, fmt.Errorf("%w: resize to %dx%d", ErrInvalidCommand, c.Width, c.Height)
		}
		return fractal.Resize{Width: c.Width, Height: c.Height}, nil
	case "palette":
		return fractal.PaletteChange{Name: c.Palette}, nil
	case "budget":
		return fractal.BudgetChange{Max: c.Max}, nil
	case "reset":
		return fractal.Reset{}, nil
	case "pause":
		return fractal.Pause{}, nil
	case "step":
		return fractal.Step{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
}

// Status is the JSON text message sent before every frame.
type Status struct {
	Type string `json:"type"`

	State     string     `json:"state"`
	Paused    bool       `json:"paused"`
	Budget    int        `json:"budget"`
	MaxBudget int        `json:"maxBudget"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Center    [2]float64 `json:"center"`
	Scale     float64    `json:"scale"`
	Palette   string     `json:"palette"`

	Escaped     int `json:"escaped"`
	ActiveTiles int `json:"activeTiles"`

	Caption string `json:"caption"`
}

// NewStatus converts a session snapshot.
func NewStatus(st fractal.Status) Status {
	vp := st.Viewport
	return Status{
		Type:        "status",
		State:       st.State.String(),
		Paused:      st.Paused,
		Budget:      st.Budget,
		MaxBudget:   st.MaxBudget,
		Width:       vp.Width,
		Height:      vp.Height,
		Center:      [2]float64{real(vp.Center), imag(vp.Center)},
		Scale:       vp.Scale,
		Palette:     st.Palette,
		Escaped:     st.Stats.Escaped,
		ActiveTiles: st.Stats.ActiveTiles,
		Caption:     st.Caption(),
	}
}
