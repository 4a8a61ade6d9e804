// Package config handles command-line flag parsing, environment variable
// overrides and validation of the resulting application configuration.
// Priority is CLI flags, then environment variables, then defaults.
package config

import (
	"encoding/binary"
	"flag"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	apperrors "github.com/mbarre/pixview/internal/errors"
)

// EnvPrefix is prepended to every environment variable the application reads.
const EnvPrefix = "PIXVIEW_"

// Defaults used when neither flag nor environment variable is present.
const (
	DefaultPalette    = "rainbow"
	DefaultBackground = "#929292"
	DefaultTheme      = "dark"
)

// AppConfig holds the complete runtime configuration of the viewer.
type AppConfig struct {
	// Files are the images to open, in the order they were given.
	Files []string

	// Colorize maps 16-bit grayscale images through the selected palette.
	Colorize bool
	// Palette names the colormap applied when Colorize is set.
	Palette string
	// LittleEndian selects little-endian sample order for raw 16-bit
	// Netpbm data. The default is big-endian per the format definition.
	LittleEndian bool
	// Background is the letterbox color as a #rrggbb string.
	Background string
	// Upscale enlarges images smaller than the terminal viewport.
	Upscale bool

	// Print renders each image once to stdout instead of starting the
	// interactive viewer.
	Print bool
	// Identify reports image metadata without rendering pixels.
	Identify bool

	// Theme selects the color theme (dark, light, none).
	Theme string
	// NoColor disables all styled output.
	NoColor bool
	// MetricsAddr, when non-empty, serves Prometheus metrics on that address.
	MetricsAddr string

	// Verbose enables debug logging; Quiet suppresses informational output.
	Verbose bool
	Quiet   bool
}

// ByteOrder returns the sample byte order implied by the configuration.
func (c *AppConfig) ByteOrder() binary.ByteOrder {
	if c.LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// BackgroundColor parses the configured background color. Validate has
// already rejected malformed values, so errors here only occur on a config
// that bypassed validation.
func (c *AppConfig) BackgroundColor() (color.RGBA, error) {
	return ParseHexColor(c.Background)
}

// ParseConfig parses command-line arguments into an AppConfig, applies
// environment variable overrides for flags that were not set explicitly, and
// validates the result. Usage and error output goes to output.
//
// Returns flag.ErrHelp when the user asked for help.
func ParseConfig(args []string, output io.Writer) (*AppConfig, error) {
	config := &AppConfig{
		Palette:    DefaultPalette,
		Background: DefaultBackground,
		Theme:      DefaultTheme,
	}

	fs := flag.NewFlagSet("pixview", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.BoolVar(&config.Colorize, "c", false, "Colorize 16-bit grayscale images")
	fs.BoolVar(&config.Colorize, "colorize", false, "Colorize 16-bit grayscale images (alias for -c)")
	fs.StringVar(&config.Palette, "palette", config.Palette, "Colormap for -c (rainbow, heat, gray)")
	fs.BoolVar(&config.LittleEndian, "little-endian", false, "Read raw 16-bit Netpbm samples as little-endian")
	fs.StringVar(&config.Background, "background", config.Background, "Letterbox color as #rrggbb")
	fs.BoolVar(&config.Upscale, "upscale", false, "Enlarge images smaller than the terminal")
	fs.BoolVar(&config.Print, "print", false, "Render images to stdout and exit")
	fs.BoolVar(&config.Identify, "identify", false, "Print image metadata and exit")
	fs.StringVar(&config.Theme, "theme", config.Theme, "Color theme (dark, light, none)")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable styled output")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	fs.BoolVar(&config.Verbose, "v", false, "Enable verbose logging")
	fs.BoolVar(&config.Verbose, "verbose", false, "Enable verbose logging (alias for -v)")
	fs.BoolVar(&config.Quiet, "q", false, "Suppress informational output")
	fs.BoolVar(&config.Quiet, "quiet", false, "Suppress informational output (alias for -q)")

	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: pixview [options] <image> [image ...]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	config.Files = fs.Args()

	applyEnvOverrides(config, fs)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for contradictions and malformed values.
func (c *AppConfig) Validate() error {
	if len(c.Files) == 0 {
		return apperrors.NewConfigError("no input files given")
	}
	if c.Verbose && c.Quiet {
		return apperrors.NewConfigError("-verbose and -quiet are mutually exclusive")
	}
	if c.Print && c.Identify {
		return apperrors.NewConfigError("-print and -identify are mutually exclusive")
	}
	switch c.Theme {
	case "dark", "light", "none":
	default:
		return apperrors.NewConfigError("invalid theme %q (valid: dark, light, none)", c.Theme)
	}
	if c.Palette == "" {
		return apperrors.NewConfigError("palette must not be empty")
	}
	if _, err := ParseHexColor(c.Background); err != nil {
		return apperrors.NewConfigError("invalid background %q: %v", c.Background, err)
	}
	return nil
}

// ParseHexColor parses a #rrggbb string into an opaque RGBA color.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("expected #rrggbb")
	}
	var channels [3]uint8
	for i := range channels {
		v, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("expected #rrggbb")
		}
		channels[i] = uint8(v)
	}
	return color.RGBA{R: channels[0], G: channels[1], B: channels[2], A: 255}, nil
}
