// Command fractal renders and explores the Mandelbrot set.
//
//	fractal render --region seahorse --iterations 2000 --out seahorse.png
//	fractal explore                     # terminal, half-block pixels
//	fractal window                      # desktop window
//	fractal serve --addr localhost:8080 # browser viewer over websocket
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}
