package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runCLI(t *testing.T, args ...string) (*Config, error) {
	t.Helper()

	var cfg *Config
	app := &cli.App{
		Name:  "test",
		Flags: Flags(),
		Action: func(c *cli.Context) (err error) {
			cfg, err = FromCLI(c)
			return err
		},
	}
	err := app.Run(append([]string{"test"}, args...))
	return cfg, err
}

func TestFromCLIFlags(t *testing.T) {
	c, err := runCLI(t, "-o", "out", "--format", "tif", "--keep-going", "photo.png", "2", "3")
	require.NoError(t, err)

	assert.Equal(t, ModeFlags, c.Mode)
	assert.Equal(t, "photo.png", c.Image)
	assert.Equal(t, 2, c.Rows)
	assert.Equal(t, 3, c.Cols)
	assert.Equal(t, "out", c.Output)
	assert.Equal(t, "tif", c.Format)
	assert.True(t, c.ContinueOnError)
	require.NoError(t, c.Validate())
}

func TestFromCLIAutoRows(t *testing.T) {
	c, err := runCLI(t, "photo.png", "auto", "4")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, c.Mode)
	assert.True(t, c.AutoRows())

	c, err = runCLI(t, "--mode", "auto", "photo.png", "5")
	require.NoError(t, err)
	assert.Equal(t, 5, c.Cols)
	assert.Equal(t, DefaultOutput, c.Output)
}

func TestFromCLIConfigFile(t *testing.T) {
	path := writeConfig(t, sample)

	c, err := runCLI(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, ModeFixed, c.Mode)
	assert.Equal(t, "photo.jpg", c.Image)
	assert.Equal(t, "tiles", c.Output)
	assert.Equal(t, "square", c.Policy)

	c, err = runCLI(t, "--config", path, "--policy", "ceil", "-o", "elsewhere", "other.png")
	require.NoError(t, err)
	assert.Equal(t, "other.png", c.Image)
	assert.Equal(t, "ceil", c.Policy)
	assert.Equal(t, "elsewhere", c.Output)
}

func TestFromCLIBadArgs(t *testing.T) {
	tests := [][]string{
		{"photo.png", "2"},
		{"photo.png", "two", "3"},
		{"photo.png", "2", "3.5"},
		{"--mode", "auto", "photo.png"},
		{"--mode", "auto", "photo.png", "x"},
		{"--mode", "fixed", "a.png", "b.png"},
		{"--mode", "nope", "a.png"},
	}

	for _, args := range tests {
		_, err := runCLI(t, args...)
		assert.Error(t, err, "%v", args)
	}
}
