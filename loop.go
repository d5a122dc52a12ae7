package fractal

import (
	"context"
	"fmt"
	"time"
)

// DefaultInterval paces live frames at roughly 60 per second.
const DefaultInterval = 16600 * time.Microsecond

// Loop drives a Session from an event channel and presents every frame to
// a Sink.
//
// While the session has work, Loop drains pending events without blocking
// between ticks; once it is converged or paused, Loop blocks until the next
// event. Events are applied between frames only, so a frame in flight is
// never interrupted: a view change simply invalidates its result before the
// next tick.
type Loop struct {
	Session *Session
	Events  <-chan Event
	Sink    Sink

	// Interval is the minimum time between frames. Zero means no pacing.
	Interval time.Duration
}

// Run processes events and frames until a Quit event arrives, the event
// channel is closed, the context is cancelled or the sink fails. It
// returns nil on Quit or channel close.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if l.drain() {
			return nil
		}

		if !l.Session.Pending() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev, ok := <-l.Events:
				if !ok || l.apply(ev) {
					return nil
				}
				continue
			}
		}

		start := time.Now()
		if fb, ok := l.Session.Tick(); ok {
			if err := l.Sink.Present(fb); err != nil {
				return fmt.Errorf("fractal: present frame: %w", err)
			}
		}

		if wait := l.Interval - time.Since(start); wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// drain applies every event that is already queued. It reports whether
// the loop should stop.
func (l *Loop) drain() bool {
	for {
		select {
		case ev, ok := <-l.Events:
			if !ok || l.apply(ev) {
				return true
			}
		default:
			return false
		}
	}
}

// apply hands one event to the session. Rejected events are logged and
// dropped; the view stays as it was.
func (l *Loop) apply(ev Event) (quit bool) {
	quit, err := l.Session.Apply(ev)
	if err != nil {
		Logger().Warn("fractal: event rejected", "event", ev.String(), "err", err)
	}
	return quit
}
