// Package config holds the run configuration shared by the command line
// tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/PhantomInTheWire/square-tiles/pkg/grid"
	"github.com/PhantomInTheWire/square-tiles/pkg/kube"
	"github.com/PhantomInTheWire/square-tiles/pkg/split"
	"github.com/PhantomInTheWire/square-tiles/pkg/storage"
	"gopkg.in/yaml.v2"
)

// Mode selects where the image path and grid dimensions come from.
type Mode string

const (
	// ModeFlags takes IMAGE ROWS COLS from the command line.
	ModeFlags Mode = "flags"
	// ModeFixed takes everything from the configuration file.
	ModeFixed Mode = "fixed"
	// ModeAuto takes IMAGE COLS and derives the row count.
	ModeAuto Mode = "auto"
	// ModeInteractive prompts for the values on standard input.
	ModeInteractive Mode = "interactive"
)

const DefaultOutput = "output"

var errUnknownMode = errors.New("config: unknown mode")

// ParseMode validates a mode name. The empty string selects ModeFlags.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeFlags, nil
	case ModeFlags, ModeFixed, ModeAuto, ModeInteractive:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", errUnknownMode, s)
}

type Config struct {
	Mode            Mode   `yaml:"mode"`
	Image           string `yaml:"image"`
	Rows            int    `yaml:"rows"`
	Cols            int    `yaml:"cols"`
	Output          string `yaml:"output"`
	Format          string `yaml:"format"`
	Policy          string `yaml:"policy"`
	ContinueOnError bool   `yaml:"continue_on_error"`

	Upload   *storage.Config `yaml:"upload,omitempty"`
	Dispatch *kube.Config    `yaml:"dispatch,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Mode:   ModeFlags,
		Output: DefaultOutput,
		Format: "png",
		Policy: grid.PerAxisCeil.String(),
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := Default()
	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	if c.Mode, err = ParseMode(string(c.Mode)); err != nil {
		return nil, err
	}
	return c, nil
}

// AutoRows reports whether the row count is derived from the aspect ratio.
func (c *Config) AutoRows() bool {
	return c.Mode == ModeAuto || (c.Mode == ModeInteractive && c.Rows == 0)
}

// Validate checks the values needed to start a run. Grid dimensions are
// validated again, against the image, when the layout is computed.
func (c *Config) Validate() error {
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.Image == "" {
		return errors.New("config: no image given")
	}
	if c.Cols <= 0 {
		return &grid.InvalidGridError{Rows: c.Rows, Cols: c.Cols, Reason: "column count must be positive"}
	}
	if !c.AutoRows() && c.Rows <= 0 {
		return &grid.InvalidGridError{Rows: c.Rows, Cols: c.Cols, Reason: "row count must be positive"}
	}
	if c.Output == "" {
		return errors.New("config: no output directory given")
	}
	if _, err := split.FormatFor(c.Format); err != nil {
		return err
	}
	if _, err := grid.ParsePolicy(c.Policy); err != nil {
		return err
	}
	return nil
}

// SplitOptions converts the configuration into options for a Splitter.
func (c *Config) SplitOptions() (split.Options, error) {
	policy, err := grid.ParsePolicy(c.Policy)
	if err != nil {
		return split.Options{}, err
	}
	return split.Options{
		OutDir:          c.Output,
		Format:          c.Format,
		Policy:          policy,
		AutoRows:        c.AutoRows(),
		ContinueOnError: c.ContinueOnError,
	}, nil
}
