// Package stream serves a live fractal session to web browsers.
//
// Every frame presented to the Server is encoded once as PNG and pushed to
// all connected websocket clients, preceded by a JSON status message.
// Clients send JSON commands back, which arrive on Events as session
// events. A slow client only ever holds the latest frame: older undelivered
// frames are dropped rather than queued.
package stream

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/cache"
)

// WriteTimeout bounds the delivery of one frame to one client.
const WriteTimeout = 5 * time.Second

//go:embed index.html
var indexHTML []byte

// message is one websocket message of a broadcast.
type message struct {
	typ  websocket.MessageType
	data []byte
}

type client struct {
	conn *websocket.Conn
	send chan []message
}

// Server broadcasts frames to websocket clients and collects their
// commands. It implements fractal.Sink.
type Server struct {
	events chan fractal.Event
	status func() fractal.Status

	stills    *cache.Cache[stillKey, []byte]
	stillOpts []fractal.Option

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []message
}

// NewServer creates a server. status is called from Present to describe
// each frame; it may be nil.
func NewServer(status func() fractal.Status, opts ...ServerOption) *Server {
	s := &Server{
		events:  make(chan fractal.Event, 64),
		status:  status,
		clients: make(map[*client]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Events returns the commands received from clients.
func (s *Server) Events() <-chan fractal.Event { return s.events }

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Handler returns the HTTP handler: the viewer page at "/", the websocket
// endpoint at "/ws" and, when enabled, snapshots at "/still.png".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/still.png", s.serveStill)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexHTML)
	})
	return mux
}

// Present implements fractal.Sink.
func (s *Server) Present(fb *fractal.FrameBuffer) error {
	var buf bytes.Buffer
	if err := fb.EncodePNG(&buf); err != nil {
		return fmt.Errorf("stream: encode frame: %w", err)
	}

	msgs := make([]message, 0, 2)
	if s.status != nil {
		data, err := json.Marshal(NewStatus(s.status()))
		if err != nil {
			return fmt.Errorf("stream: encode status: %w", err)
		}
		msgs = append(msgs, message{websocket.MessageText, data})
	}
	msgs = append(msgs, message{websocket.MessageBinary, buf.Bytes()})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = msgs
	for c := range s.clients {
		c.deliver(msgs)
	}
	fractal.Logger().Debug("stream: frame broadcast", "bytes", buf.Len(), "clients", len(s.clients))
	return nil
}

// deliver replaces any undelivered frame with msgs. Callers hold s.mu, so
// there is a single producer per client.
func (c *client) deliver(msgs []message) {
	select {
	case c.send <- msgs:
		return
	default:
	}
	select {
	case <-c.send:
	default:
	}
	c.send <- msgs
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		fractal.Logger().Warn("stream: websocket accept failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &client{conn: conn, send: make(chan []message, 1)}
	s.add(c)
	defer s.remove(c)
	fractal.Logger().Info("stream: client connected", "remote", r.RemoteAddr)

	go func() {
		defer cancel()
		if err := c.writeLoop(ctx); err != nil && ctx.Err() == nil {
			fractal.Logger().Warn("stream: client dropped", "remote", r.RemoteAddr, "err", err)
		}
	}()

	err = s.readLoop(ctx, conn)
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		fractal.Logger().Info("stream: client disconnected", "remote", r.RemoteAddr)
	default:
		if ctx.Err() == nil {
			fractal.Logger().Warn("stream: client read failed", "remote", r.RemoteAddr, "err", err)
		}
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) add(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
	if s.last != nil {
		c.deliver(s.last)
	}
}

// Close disconnects every client.
func (s *Server) Close() {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c.conn)
		delete(s.clients, c)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}

// readLoop forwards client commands until the connection fails.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		var cmd Command
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			return err
		}
		ev, err := cmd.Event()
		if err != nil {
			fractal.Logger().Warn("stream: command rejected", "type", cmd.Type, "err", err)
			continue
		}
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *client) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msgs := <-c.send:
			for _, m := range msgs {
				if err := c.write(ctx, m); err != nil {
					return err
				}
			}
		}
	}
}

func (c *client) write(ctx context.Context, m message) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()
	return c.conn.Write(ctx, m.typ, m.data)
}

// Run serves session on addr until ctx is done. It returns nil when ctx is
// cancelled.
func Run(ctx context.Context, addr string, session *fractal.Session, interval time.Duration, opts ...ServerOption) error {
	s := NewServer(session.Status, opts...)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	fractal.Logger().Info("stream: listening", "addr", "http://"+addr)

	loop := &fractal.Loop{
		Session:  session,
		Events:   s.Events(),
		Sink:     s,
		Interval: interval,
	}
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopErr := make(chan error, 1)
	go func() {
		loopErr <- loop.Run(loopCtx)
	}()

	var err error
	select {
	case err = <-errc:
		cancel()
		<-loopErr
		return fmt.Errorf("stream: serve %s: %w", addr, err)
	case err = <-loopErr:
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		fractal.Logger().Warn("stream: shutdown", "err", serr)
	}
	s.Close()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if st, ok := s.StillStats(); ok {
		fractal.Logger().Info("stream: still cache",
			"entries", st.Len,
			"capacity", st.Capacity,
			"hits", st.Hits,
			"misses", st.Misses)
	}
	fractal.Logger().Info("stream: stopped", "err", err)
	return err
}
