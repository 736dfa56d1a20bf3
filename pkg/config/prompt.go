package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maxAttempts = 3

var errTooManyAttempts = errors.New("config: too many invalid answers")

type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func (p *prompter) ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.w, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.w, "%s: ", question)
	}

	line, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

// askInt asks until it gets a positive integer. An empty answer returns def,
// which may be zero when optional is set.
func (p *prompter) askInt(question string, def int, optional bool) (int, error) {
	d := ""
	if def > 0 {
		d = strconv.Itoa(def)
	}
	for i := 0; i < maxAttempts; i++ {
		s, err := p.ask(question, d)
		if err != nil {
			return 0, err
		}
		if s == "" && optional {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err == nil && n > 0 {
			return n, nil
		}
		fmt.Fprintf(p.w, "%q is not a positive integer\n", s)
	}
	return 0, errTooManyAttempts
}

// Prompt fills in the image path and grid dimensions interactively, using
// the current values of c as defaults. Leaving the row count empty derives
// it from the image.
func Prompt(r io.Reader, w io.Writer, c *Config) error {
	p := &prompter{r: bufio.NewReader(r), w: w}

	image, err := p.ask("Image path", c.Image)
	if err != nil {
		return err
	}
	if image == "" {
		return errors.New("config: no image given")
	}

	cols, err := p.askInt("Columns", c.Cols, false)
	if err != nil {
		return err
	}

	rows, err := p.askInt("Rows (empty to derive from the image)", c.Rows, true)
	if err != nil {
		return err
	}

	output, err := p.ask("Output directory", c.Output)
	if err != nil {
		return err
	}

	c.Mode = ModeInteractive
	c.Image, c.Cols, c.Rows, c.Output = image, cols, rows, output
	return nil
}
