// Package term explores the fractal in a terminal.
//
// Frames are drawn with the upper half block '▀': each character cell
// shows two vertically stacked pixels, the upper one as the foreground
// colour and the lower one as the background colour. The last row of the
// screen is a status line. Key and mouse input is translated into
// fractal events.
package term

import (
	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/fractal"
)

const (
	halfBlock  = '▀'
	statusRows = 1
)

// FrameSize returns the frame resolution that fills a terminal of the given
// size, leaving room for the status line.
func FrameSize(cols, rows int) (width, height int) {
	return max(cols, 1), max(2*(rows-statusRows), 2)
}

// Sink presents frames on a tcell screen.
type Sink struct {
	screen tcell.Screen
	status func() string
	style  tcell.Style
}

// NewSink creates a sink drawing to screen. status, if non-nil, supplies
// the text of the status line for each frame.
func NewSink(screen tcell.Screen, status func() string) *Sink {
	return &Sink{
		screen: screen,
		status: status,
		style:  tcell.StyleDefault.Reverse(true),
	}
}

// Present implements fractal.Sink.
func (s *Sink) Present(fb *fractal.FrameBuffer) error {
	cols, rows := s.screen.Size()
	imageRows := rows - statusRows

	for cy := 0; cy < imageRows && 2*cy < fb.Height(); cy++ {
		for cx := 0; cx < cols && cx < fb.Width(); cx++ {
			top := fb.RGBAAt(cx, 2*cy)
			bottom := fb.RGBAAt(cx, 2*cy+1)
			st := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			s.screen.SetContent(cx, cy, halfBlock, nil, st)
		}
	}

	if s.status != nil && rows > 0 {
		s.drawStatus(rows-1, cols, s.status())
	}
	s.screen.Show()
	return nil
}

func (s *Sink) drawStatus(y, cols int, text string) {
	x := 0
	for _, r := range text {
		if x >= cols {
			break
		}
		s.screen.SetContent(x, y, r, nil, s.style)
		x++
	}
	for ; x < cols; x++ {
		s.screen.SetContent(x, y, ' ', nil, s.style)
	}
}
