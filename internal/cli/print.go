package cli

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/mbarre/pixview/internal/decode"
	"github.com/mbarre/pixview/internal/format"
	"github.com/mbarre/pixview/internal/logging"
	"github.com/mbarre/pixview/internal/render"
)

// Fallback viewport when the output is not a terminal.
const (
	defaultPrintCols = 80
	defaultPrintRows = 24
)

// PrintOptions configures non-interactive rendering.
type PrintOptions struct {
	// Decode carries the byte order and colormap settings.
	Decode decode.Options
	// Background is the letterbox fill color.
	Background color.RGBA
	// Upscale enlarges images smaller than the viewport.
	Upscale bool
	// Cols and Rows override the detected terminal size when positive.
	Cols int
	Rows int
}

// Print decodes every file and writes it to out as half-block cells, each
// image preceded by a caption line. Rendering continues past individual
// decode failures; the first failure is returned after all files were
// attempted.
func Print(ctx context.Context, files []string, out io.Writer, opts PrintOptions, logger logging.Logger) error {
	cols, rows := opts.Cols, opts.Rows
	if cols <= 0 || rows <= 0 {
		cols, rows = terminalSize()
	}

	var firstErr error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := decode.Load(ctx, path, opts.Decode)
		if err != nil {
			if logger != nil {
				logger.Error("decode failed", err, logging.String("file", path))
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		fmt.Fprintf(out, "%s (%s, %s)\n", frame.Name(), frame.Format,
			format.Dimensions(frame.Bounds().Dx(), frame.Bounds().Dy()))
		fmt.Fprintln(out, render.Render(frame.Image, render.Options{
			Cols:       cols,
			Rows:       rows - 1, // caption line
			Upscale:    opts.Upscale,
			Background: opts.Background,
		}))
	}
	return firstErr
}

// terminalSize reports the stdout terminal dimensions, falling back to a
// conventional 80x24 when stdout is not a terminal.
func terminalSize() (cols, rows int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 || rows <= 0 {
		return defaultPrintCols, defaultPrintRows
	}
	return cols, rows
}
