package main

import (
	"fmt"
	"image"
	"log"
	"os"

	"github.com/PhantomInTheWire/square-tiles/pkg/stitch"
	"github.com/disintegration/imaging"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "stitcher",
		Usage:     "reassemble square tiles into a single image",
		ArgsUsage: "DIRECTORY OUTPUT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "size",
				Usage: "WIDTHxHEIGHT of the original image; crops the padding away",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				cli.ShowAppHelpAndExit(c, 1)
			}

			img, err := stitch.Canvas(c.Args().Get(0))
			if err != nil {
				return cli.Exit(err, 1)
			}

			var out image.Image = img
			if size := c.String("size"); size != "" {
				var w, h int
				if _, err := fmt.Sscanf(size, "%dx%d", &w, &h); err != nil {
					return cli.Exit(fmt.Errorf("invalid size %q: %w", size, err), 1)
				}
				if out, err = stitch.Restore(img, w, h); err != nil {
					return cli.Exit(err, 1)
				}
			}

			if err := imaging.Save(out, c.Args().Get(1)); err != nil {
				return cli.Exit(err, 1)
			}
			fmt.Fprintf(c.App.Writer, "Wrote output to %s\n", c.Args().Get(1))
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
