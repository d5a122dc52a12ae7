package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/stream"
	"github.com/gogpu/fractal/internal/term"
	"github.com/gogpu/fractal/internal/window"
)

func rootCmd() *cobra.Command {
	cfg := defaultConfig()

	cmd := &cobra.Command{
		Use:     "fractal",
		Short:   "Render and explore the Mandelbrot set",
		Version: fractal.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cfg.validate()
		},
	}
	cfg.bind(cmd)

	cmd.AddCommand(
		renderCmd(&cfg),
		exploreCmd(&cfg),
		windowCmd(&cfg),
		serveCmd(&cfg),
	)
	return cmd
}

func renderCmd(cfg *config) *cobra.Command {
	var (
		out         string
		supersample int
		caption     bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one image to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// At this point usage information has already been printed if obviously incorrect.
			cmd.SilenceUsage = true

			closeLog, err := cfg.setupLogging(os.Stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			vp, err := cfg.viewport()
			if err != nil {
				return err
			}
			opts, err := cfg.rendererOptions()
			if err != nil {
				return err
			}
			opts = append(opts, fractal.WithSupersample(supersample))

			fb, err := fractal.RenderStill(vp, cfg.iterations, opts...)
			if err != nil {
				return err
			}

			sink := fractal.PNGSink{Path: out}
			if caption {
				sink.Caption = fractal.Status{
					State:     fractal.StateConverged,
					Budget:    cfg.iterations,
					MaxBudget: cfg.iterations,
					Viewport:  vp,
					Palette:   cfg.palette,
				}.Caption()
			}
			return sink.Present(fb)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "mandelbrot.png", "output PNG path")
	f.IntVar(&supersample, "supersample", 1, "samples per pixel along each axis")
	f.BoolVar(&caption, "caption", false, "draw the view parameters onto the image")
	return cmd
}

func exploreCmd(cfg *config) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			// The screen owns stderr while it runs.
			closeLog, err := cfg.setupLogging(nil)
			if err != nil {
				return err
			}
			defer closeLog()

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			defer screen.Fini()

			vp, err := cfg.viewportAt(term.FrameSize(screen.Size()))
			if err != nil {
				return err
			}
			session, r, err := cfg.newSession(vp)
			if err != nil {
				return err
			}
			defer r.Close()

			return term.Run(cmd.Context(), screen, session, interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", fractal.DefaultInterval, "minimum time between frames")
	return cmd
}

func windowCmd(cfg *config) *cobra.Command {
	var (
		status bool
		tps    int
	)

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Explore interactively in a desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			closeLog, err := cfg.setupLogging(os.Stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			vp, err := cfg.viewport()
			if err != nil {
				return err
			}
			session, r, err := cfg.newSession(vp)
			if err != nil {
				return err
			}
			defer r.Close()

			return window.Run(session, window.Config{
				Title:      "fractal " + vp.String(),
				ShowStatus: status,
				TPS:        tps,
			})
		},
	}
	f := cmd.Flags()
	f.BoolVar(&status, "status", true, "overlay the session status")
	f.IntVar(&tps, "tps", 60, "updates per second")
	return cmd
}

func serveCmd(cfg *config) *cobra.Command {
	var (
		addr     string
		interval time.Duration
		stills   int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live view to web browsers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			closeLog, err := cfg.setupLogging(os.Stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			vp, err := cfg.viewport()
			if err != nil {
				return err
			}
			session, r, err := cfg.newSession(vp)
			if err != nil {
				return err
			}
			defer r.Close()

			opts, err := cfg.rendererOptions()
			if err != nil {
				return err
			}
			return stream.Run(cmd.Context(), addr, session, interval, stream.WithStills(stills, opts...))
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", "localhost:8080", "listen address")
	f.DurationVar(&interval, "interval", 100*time.Millisecond, "minimum time between frames")
	f.IntVar(&stills, "stills", 32, "snapshots kept in memory for /still.png")
	return cmd
}
