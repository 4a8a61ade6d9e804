// Package cli implements the non-interactive output modes: identifying image
// metadata and printing rendered images to stdout.
//
// # Naming Conventions
//
//   - Display* functions write formatted output to an [io.Writer].
//   - Format* functions return a formatted string without performing I/O.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/briandowns/spinner"
	"golang.org/x/sync/errgroup"

	"github.com/mbarre/pixview/internal/decode"
	"github.com/mbarre/pixview/internal/format"
	"github.com/mbarre/pixview/internal/logging"
)

// identifyRow pairs a file with its metadata or scan failure.
type identifyRow struct {
	path string
	info *decode.Info
	err  error
}

// Identify scans files concurrently and writes one metadata line per file to
// out, in the order the files were given. Files that cannot be read or
// decoded produce an error line; the combined failures are returned after
// all files have been reported.
func Identify(ctx context.Context, files []string, out io.Writer, logger logging.Logger) error {
	rows := make([]identifyRow, len(files))

	spin := newSpinner(spinner.WithWriter(os.Stderr))
	spin.UpdateSuffix(fmt.Sprintf(" scanning %d files...", len(files)))
	spin.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		g.Go(func() error {
			info, err := decode.Identify(gctx, path)
			rows[i] = identifyRow{path: path, info: info, err: err}
			// Scan errors are reported per file, not aborted on.
			return nil
		})
	}
	// Only context cancellation can surface here.
	err := g.Wait()
	spin.Stop()
	if err != nil {
		return err
	}

	DisplayIdentify(out, rows, logger)

	var failures []error
	for _, row := range rows {
		if row.err != nil {
			failures = append(failures, row.err)
		}
	}
	return errors.Join(failures...)
}

// DisplayIdentify writes the scan results as an aligned table.
func DisplayIdentify(out io.Writer, rows []identifyRow, logger logging.Logger) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tFORMAT\tSIZE\tDEPTH\tBYTES")
	for _, row := range rows {
		if row.err != nil {
			if logger != nil {
				logger.Error("identify failed", row.err, logging.String("file", row.path))
			}
			fmt.Fprintf(w, "%s\terror\t-\t-\t-\n", row.path)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d-bit\t%s\n",
			row.path,
			row.info.Format,
			format.Dimensions(row.info.Width, row.info.Height),
			row.info.BitDepth,
			format.ByteSize(row.info.FileSize))
	}
	w.Flush()
}
