package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PhantomInTheWire/square-tiles/pkg/grid"
	"github.com/urfave/cli/v2"
)

// Flags returns the command line flags shared by the tools. Values given on
// the command line override the configuration file.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			EnvVars: []string{"SQUARE_TILES_CONFIG"},
			Usage:   "path to a YAML configuration file",
		},
		&cli.StringFlag{
			Name:    "mode",
			EnvVars: []string{"SQUARE_TILES_MODE"},
			Value:   string(ModeFlags),
			Usage:   "where the image and grid come from: flags, fixed, auto or interactive",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			EnvVars: []string{"SQUARE_TILES_OUTPUT"},
			Value:   DefaultOutput,
			Usage:   "directory to write tiles to",
		},
		&cli.StringFlag{
			Name:  "format",
			Value: "png",
			Usage: "tile file format: png, tif or bmp",
		},
		&cli.StringFlag{
			Name:  "policy",
			Value: grid.PerAxisCeil.String(),
			Usage: "tile size policy: ceil or square",
		},
		&cli.BoolFlag{
			Name:  "keep-going",
			Usage: "keep writing tiles after one fails and report all failures",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}
}

// FromCLI builds the configuration from the optional --config file, the
// flags and the positional arguments.
func FromCLI(c *cli.Context) (*Config, error) {
	cfg := Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}

	if c.IsSet("mode") || c.String("config") == "" {
		m, err := ParseMode(c.String("mode"))
		if err != nil {
			return nil, err
		}
		cfg.Mode = m
	}
	if c.IsSet("output") || cfg.Output == "" {
		cfg.Output = c.String("output")
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.IsSet("policy") {
		cfg.Policy = c.String("policy")
	}
	if c.IsSet("keep-going") {
		cfg.ContinueOnError = c.Bool("keep-going")
	}

	if err := cfg.ApplyArgs(c.Args().Slice()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyArgs fills in the image and grid from positional arguments according
// to the mode:
//
//	flags:       IMAGE ROWS COLS (ROWS may be "auto")
//	auto:        IMAGE COLS
//	fixed:       [IMAGE]
//	interactive: [IMAGE]
func (c *Config) ApplyArgs(args []string) error {
	switch c.Mode {
	case ModeFlags:
		if len(args) != 3 {
			return fmt.Errorf("config: expected IMAGE ROWS COLS, got %d arguments", len(args))
		}
		c.Image = args[0]
		if strings.EqualFold(args[1], "auto") {
			c.Mode, c.Rows = ModeAuto, 0
		} else {
			rows, err := parseCount("rows", args[1])
			if err != nil {
				return err
			}
			c.Rows = rows
		}
		cols, err := parseCount("cols", args[2])
		if err != nil {
			return err
		}
		c.Cols = cols
	case ModeAuto:
		if len(args) != 2 {
			return fmt.Errorf("config: expected IMAGE COLS, got %d arguments", len(args))
		}
		cols, err := parseCount("cols", args[1])
		if err != nil {
			return err
		}
		c.Image, c.Cols, c.Rows = args[0], cols, 0
	case ModeFixed, ModeInteractive:
		if len(args) > 1 {
			return fmt.Errorf("config: expected at most IMAGE, got %d arguments", len(args))
		}
		if len(args) == 1 {
			c.Image = args[0]
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownMode, c.Mode)
	}
	return nil
}

func parseCount(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", name, s, err)
	}
	return n, nil
}
