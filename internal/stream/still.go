package stream

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/cache"
)

// Limits on snapshot requests.
const (
	// MaxStillPixels caps the evaluated samples of one snapshot,
	// supersampling included.
	MaxStillPixels = 4096 * 4096

	// MaxStillIterations caps the iteration budget of one snapshot.
	MaxStillIterations = 1_000_000
)

// stillKey identifies one snapshot.
type stillKey struct {
	vp          fractal.Viewport
	budget      int
	palette     string
	supersample int
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithStills enables the /still.png snapshot endpoint. Up to limit encoded
// images are kept in memory. opts are applied to every snapshot render
// before the request's palette.
func WithStills(limit int, opts ...fractal.Option) ServerOption {
	return func(s *Server) {
		s.stills = cache.New[stillKey, []byte](limit)
		s.stillOpts = opts
	}
}

// StillStats returns the snapshot cache counters. ok is false when the
// snapshot endpoint is disabled.
func (s *Server) StillStats() (st cache.Stats, ok bool) {
	if s.stills == nil {
		return cache.Stats{}, false
	}
	return s.stills.Stats(), true
}

// serveStill renders the view described by the query string as PNG.
//
// Parameters: re, im and scale (required), width, height, iterations,
// palette and supersample.
func (s *Server) serveStill(w http.ResponseWriter, r *http.Request) {
	if s.stills == nil {
		http.NotFound(w, r)
		return
	}
	key, err := parseStillKey(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.stills.GetOrCreate(key, func() ([]byte, error) {
		return s.renderStill(key)
	})
	if err != nil {
		fractal.Logger().Warn("stream: still failed", "viewport", key.vp.String(), "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, _ := s.StillStats()
	fractal.Logger().Debug("stream: still served",
		"viewport", key.vp.String(),
		"bytes", len(data),
		"cached", st.Len,
		"hits", st.Hits,
		"misses", st.Misses)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) renderStill(key stillKey) ([]byte, error) {
	p, err := fractal.PaletteByName(key.palette)
	if err != nil {
		return nil, err
	}
	opts := append([]fractal.Option{}, s.stillOpts...)
	opts = append(opts, fractal.WithPalette(p.Palette), fractal.WithSupersample(key.supersample))

	fb, err := fractal.RenderStill(key.vp, key.budget, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := fb.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseStillKey(q url.Values) (stillKey, error) {
	key := stillKey{
		vp:          fractal.Viewport{Width: 1080, Height: 720},
		budget:      fractal.DefaultMaxBudget,
		palette:     "classic",
		supersample: 1,
	}

	var re, im float64
	floats := []struct {
		name string
		dst  *float64
	}{{"re", &re}, {"im", &im}, {"scale", &key.vp.Scale}}
	for _, f := range floats {
		v, err := strconv.ParseFloat(q.Get(f.name), 64)
		if err != nil {
			return key, fmt.Errorf("parameter %s: %w", f.name, err)
		}
		*f.dst = v
	}
	key.vp.Center = complex(re, im)

	ints := []struct {
		name string
		dst  *int
	}{
		{"width", &key.vp.Width},
		{"height", &key.vp.Height},
		{"iterations", &key.budget},
		{"supersample", &key.supersample},
	}
	for _, f := range ints {
		s := q.Get(f.name)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return key, fmt.Errorf("parameter %s: %w", f.name, err)
		}
		*f.dst = v
	}
	if name := q.Get("palette"); name != "" {
		key.palette = name
	}

	if err := key.vp.Validate(); err != nil {
		return key, err
	}
	switch {
	case key.supersample < 1 || key.supersample > 16:
		return key, fmt.Errorf("supersample %d out of range [1, 16]", key.supersample)
	case key.vp.Width > MaxStillPixels || key.vp.Height > MaxStillPixels,
		key.vp.Pixels()*key.supersample*key.supersample > MaxStillPixels:
		return key, fmt.Errorf("snapshot of %dx%d at %dx supersampling is too large", key.vp.Width, key.vp.Height, key.supersample)
	case key.budget < 0 || key.budget > MaxStillIterations:
		return key, fmt.Errorf("iterations %d out of range [0, %d]", key.budget, MaxStillIterations)
	}
	return key, nil
}
