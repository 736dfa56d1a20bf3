package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/PhantomInTheWire/square-tiles/pkg/config"
	"github.com/PhantomInTheWire/square-tiles/pkg/grid"
	"github.com/PhantomInTheWire/square-tiles/pkg/split"
	"github.com/urfave/cli/v2"
)

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func run(c *cli.Context) error {
	cfg, err := config.FromCLI(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if cfg.Mode == config.ModeInteractive {
		if err := config.Prompt(os.Stdin, c.App.Writer, cfg); err != nil {
			return cli.Exit(err, 1)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cli.Exit(err, 1)
	}

	opts, err := cfg.SplitOptions()
	if err != nil {
		return cli.Exit(err, 1)
	}
	opts.Logger = newLogger(c.Bool("verbose"))
	opts.OnTile = func(t grid.Tile, path string) {
		fmt.Fprintf(c.App.Writer, "tile %d,%d saved to %s\n", t.Row, t.Col, path)
	}

	s, err := split.New(opts)
	if err != nil {
		return cli.Exit(err, 1)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	res, err := s.Split(ctx, cfg.Image, cfg.Rows, cfg.Cols)
	if err != nil {
		return cli.Exit(err, 1)
	}

	fmt.Fprintf(c.App.Writer, "%d tiles of %dx%d saved to %s\n", len(res.Files), res.Layout.TileSize, res.Layout.TileSize, cfg.Output)
	return nil
}

func main() {
	app := &cli.App{
		Name:      "square-tiles",
		Usage:     "split an image into a grid of transparent-padded square tiles",
		Version:   "1.0.0",
		ArgsUsage: "IMAGE ROWS|auto COLS",
		Flags:     config.Flags(),
		Action:    run,
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
