package term

import (
	"context"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/fractal"
)

// Run explores session on screen until the user quits or ctx is done. The
// screen must be initialised; Run does not finalise it.
func Run(ctx context.Context, screen tcell.Screen, session *fractal.Session, interval time.Duration) error {
	screen.EnableMouse(tcell.MouseButtonEvents)
	screen.HideCursor()
	screen.Clear()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan fractal.Event, 64)
	go poll(ctx, screen, NewInput(session.Status()), events)

	loop := &fractal.Loop{
		Session: session,
		Events:  events,
		Sink: NewSink(screen, func() string {
			return StatusLine(session.Status())
		}),
		Interval: interval,
	}

	fractal.Logger().Info("term: explorer started")
	err := loop.Run(ctx)
	fractal.Logger().Info("term: explorer stopped", "err", err)
	return err
}

// poll forwards translated terminal input until the screen is finalised
// or ctx is done.
func poll(ctx context.Context, screen tcell.Screen, in *Input, out chan<- fractal.Event) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		fe, ok := in.Translate(ev)
		if !ok {
			continue
		}
		select {
		case out <- fe:
		case <-ctx.Done():
			return
		}
	}
}

// StatusLine flattens the session caption into one line.
func StatusLine(st fractal.Status) string {
	return " " + strings.ReplaceAll(st.Caption(), "\n", "  |  ")
}
