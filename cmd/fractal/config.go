package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/fractal"
)

// config holds the flags shared by every subcommand.
type config struct {
	width, height int
	fit           bool

	center string
	scale  float64
	region string

	iterations   int
	step         int
	escapeRadius float64

	palette   string
	period    float64
	gamma     float64
	normalize bool

	workers    int
	sequential bool

	verbose bool
	logFile string
}

func defaultConfig() config {
	return config{
		width:        1080,
		height:       720,
		scale:        1.25,
		region:       "full",
		iterations:   fractal.DefaultMaxBudget,
		step:         fractal.DefaultStep,
		escapeRadius: fractal.DefaultEscapeRadius,
		palette:      "classic",
		period:       fractal.DefaultPeriod,
		gamma:        fractal.DefaultGamma,
	}
}

func (c *config) bind(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.IntVar(&c.width, "width", c.width, "frame width in pixels")
	f.IntVar(&c.height, "height", c.height, "frame height in pixels")
	f.BoolVar(&c.fit, "fit", c.fit, "shrink width or height to the region's aspect ratio")
	f.StringVar(&c.center, "center", c.center, `view centre as "re,im"; overrides --region`)
	f.Float64Var(&c.scale, "scale", c.scale, "half-height of the view in the complex plane (with --center)")
	f.StringVar(&c.region, "region", c.region, "named region: "+strings.Join(fractal.RegionNames(), ", "))
	f.IntVarP(&c.iterations, "iterations", "n", c.iterations, "iteration budget (maximum for live modes)")
	f.IntVar(&c.step, "step", c.step, "iterations added per live frame")
	f.Float64Var(&c.escapeRadius, "escape-radius", c.escapeRadius, "bailout radius, must be > 1")
	f.StringVarP(&c.palette, "palette", "p", c.palette, "palette: "+strings.Join(fractal.PaletteNames(), ", "))
	f.Float64Var(&c.period, "period", c.period, "smoothed iterations per palette cycle")
	f.Float64Var(&c.gamma, "gamma", c.gamma, "exponent applied to the palette coordinate, at least 1")
	f.BoolVar(&c.normalize, "normalize", c.normalize, "spread the palette once over the iteration budget instead of cycling")
	f.IntVarP(&c.workers, "workers", "j", c.workers, "worker goroutines (0 = GOMAXPROCS)")
	f.BoolVar(&c.sequential, "sequential", c.sequential, "render on a single goroutine")
	f.BoolVarP(&c.verbose, "verbose", "v", c.verbose, "log per-frame detail")
	f.StringVar(&c.logFile, "log-file", c.logFile, "write logs to this file instead of stderr")
}

func (c *config) validate() error {
	var errs []error
	if c.width <= 0 || c.height <= 0 {
		errs = append(errs, fmt.Errorf("resolution %dx%d must be positive", c.width, c.height))
	}
	if c.iterations <= 0 {
		errs = append(errs, fmt.Errorf("--iterations %d must be positive", c.iterations))
	}
	if c.step <= 0 {
		errs = append(errs, fmt.Errorf("--step %d must be positive", c.step))
	}
	if c.center != "" && !(c.scale > 0) {
		errs = append(errs, fmt.Errorf("--scale %v must be positive", c.scale))
	}
	if !(c.gamma >= 1) || math.IsInf(c.gamma, 1) {
		errs = append(errs, fmt.Errorf("--gamma %v must be a finite value of at least 1", c.gamma))
	}
	if c.workers < 0 {
		errs = append(errs, fmt.Errorf("--workers %d must not be negative", c.workers))
	}
	if _, err := fractal.PaletteByName(c.palette); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// viewport resolves the view flags at the configured resolution.
func (c *config) viewport() (fractal.Viewport, error) {
	return c.viewportAt(c.width, c.height)
}

func (c *config) viewportAt(width, height int) (fractal.Viewport, error) {
	if c.center != "" {
		z, err := parseCenter(c.center)
		if err != nil {
			return fractal.Viewport{}, err
		}
		vp := fractal.Viewport{Center: z, Scale: c.scale, Width: width, Height: height}
		return vp, vp.Validate()
	}

	reg, err := fractal.RegionByName(c.region)
	if err != nil {
		return fractal.Viewport{}, err
	}
	if c.fit {
		width, height = reg.FitResolution(width, height)
	}
	vp := fractal.RegionViewport(reg, width, height)
	return vp, vp.Validate()
}

// parseCenter accepts "re,im" or a Go complex literal such as "-0.75+0.1i".
func parseCenter(s string) (complex128, error) {
	if re, im, ok := strings.Cut(s, ","); ok {
		x, err := strconv.ParseFloat(strings.TrimSpace(re), 64)
		if err != nil {
			return 0, fmt.Errorf("--center %q: %w", s, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(im), 64)
		if err != nil {
			return 0, fmt.Errorf("--center %q: %w", s, err)
		}
		return complex(x, y), nil
	}
	z, err := strconv.ParseComplex(strings.TrimSpace(s), 128)
	if err != nil {
		return 0, fmt.Errorf("--center %q: %w", s, err)
	}
	return z, nil
}

func (c *config) colorMapper() (fractal.ColorMapper, error) {
	p, err := fractal.PaletteByName(c.palette)
	if err != nil {
		return fractal.ColorMapper{}, err
	}
	m := fractal.DefaultColorMapper().WithPalette(p.Palette)
	m.Period = c.period
	m.Gamma = c.gamma
	m.Normalize = c.normalize
	m.MaxIterations = c.iterations
	return m, nil
}

func (c *config) rendererOptions() ([]fractal.Option, error) {
	m, err := c.colorMapper()
	if err != nil {
		return nil, err
	}
	return []fractal.Option{
		fractal.WithWorkers(c.workers),
		fractal.WithParallel(!c.sequential),
		fractal.WithEscapeRadius(c.escapeRadius),
		fractal.WithColorMapper(m),
	}, nil
}

// newSession builds a renderer and live session for vp. The caller closes
// the renderer.
func (c *config) newSession(vp fractal.Viewport) (*fractal.Session, *fractal.Renderer, error) {
	opts, err := c.rendererOptions()
	if err != nil {
		return nil, nil, err
	}
	r, err := fractal.NewRenderer(vp, opts...)
	if err != nil {
		return nil, nil, err
	}
	s, err := fractal.NewSession(r,
		fractal.WithStep(c.step),
		fractal.WithMaxBudget(c.iterations),
		fractal.WithPaletteName(c.palette),
	)
	if err != nil {
		r.Close()
		return nil, nil, err
	}
	return s, r, nil
}

// setupLogging installs the process logger. Without --log-file it writes
// to fallback; a nil fallback keeps the library silent. The returned
// function closes the log file.
func (c *config) setupLogging(fallback io.Writer) (func(), error) {
	w := fallback
	closeFn := func() {}
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return closeFn, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	if w == nil {
		fractal.SetLogger(nil)
		return closeFn, nil
	}

	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	fractal.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return closeFn, nil
}
