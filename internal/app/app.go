// Package app wires configuration, logging, metrics and the viewing modes
// together. It owns the process lifecycle from argument parsing to exit code.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/mbarre/pixview/internal/cli"
	"github.com/mbarre/pixview/internal/colormap"
	"github.com/mbarre/pixview/internal/config"
	"github.com/mbarre/pixview/internal/decode"
	apperrors "github.com/mbarre/pixview/internal/errors"
	"github.com/mbarre/pixview/internal/logging"
	"github.com/mbarre/pixview/internal/server"
	"github.com/mbarre/pixview/internal/tui"
	"github.com/mbarre/pixview/internal/ui"
)

// Application represents the pixview application instance.
type Application struct {
	Config    *config.AppConfig
	ErrWriter io.Writer
	Logger    logging.Logger
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer) (*Application, error) {
	var cmdArgs []string
	if len(args) > 0 {
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}

	return &Application{Config: cfg, ErrWriter: errWriter}, nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	switch {
	case a.Config.Verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case a.Config.Quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	interactive := !a.Config.Identify && !a.Config.Print && stdoutIsTerminal()
	if a.Logger == nil {
		a.Logger = newModeLogger(interactive)
	}

	ui.InitTheme(a.Config.NoColor)
	if !a.Config.NoColor {
		ui.SetTheme(a.Config.Theme)
	}

	decodeOpts, err := a.decodeOptions()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	var metrics *server.Metrics
	if a.Config.MetricsAddr != "" {
		metrics = server.NewMetrics()
		srv := server.New(a.Config.MetricsAddr, metrics, a.Logger)
		go func() {
			if err := srv.Start(ctx); err != nil {
				a.Logger.Error("metrics server failed", err)
			}
		}()
	}

	switch {
	case a.Config.Identify:
		return a.runIdentify(ctx, out)
	case a.Config.Print:
		return a.runPrint(ctx, out, decodeOpts)
	case !interactive:
		// No terminal to run the viewer in; render once instead.
		return a.runPrint(ctx, out, decodeOpts)
	default:
		return a.runViewer(ctx, decodeOpts, metrics)
	}
}

// newModeLogger picks the logging destination for the selected mode. The
// interactive viewer holds the alternate screen, so a stderr write would land
// inside the rendered frame; its logging is discarded and decode failures
// surface through the in-viewer error panel.
func newModeLogger(interactive bool) logging.Logger {
	if interactive {
		return logging.NewLogger(io.Discard, "viewer")
	}
	return logging.NewDefaultLogger()
}

// decodeOptions resolves the byte order and colormap from the configuration.
func (a *Application) decodeOptions() (decode.Options, error) {
	opts := decode.Options{ByteOrder: a.Config.ByteOrder()}
	if a.Config.Colorize {
		m, err := colormap.Get(a.Config.Palette)
		if err != nil {
			return decode.Options{}, err
		}
		opts.Colormap = m
	}
	return opts, nil
}

// runIdentify scans the files and prints their metadata.
func (a *Application) runIdentify(ctx context.Context, out io.Writer) int {
	if err := cli.Identify(ctx, a.Config.Files, out, a.Logger); err != nil {
		if apperrors.IsContextError(err) {
			return apperrors.ExitErrorCanceled
		}
		return apperrors.ExitErrorDecode
	}
	return apperrors.ExitSuccess
}

// runPrint renders each file once to out.
func (a *Application) runPrint(ctx context.Context, out io.Writer, decodeOpts decode.Options) int {
	bg, err := a.Config.BackgroundColor()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	err = cli.Print(ctx, a.Config.Files, out, cli.PrintOptions{
		Decode:     decodeOpts,
		Background: bg,
		Upscale:    a.Config.Upscale,
	}, a.Logger)
	switch {
	case err == nil:
		return apperrors.ExitSuccess
	case apperrors.IsContextError(err):
		return apperrors.ExitErrorCanceled
	default:
		return apperrors.ExitErrorDecode
	}
}

// runViewer launches the interactive viewer.
func (a *Application) runViewer(ctx context.Context, decodeOpts decode.Options, metrics *server.Metrics) int {
	bg, err := a.Config.BackgroundColor()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	return runProgram(ctx, tui.ViewerOptions{
		Files:      a.Config.Files,
		Decode:     decodeOpts,
		Background: bg,
		Upscale:    a.Config.Upscale,
	}, metrics, a.Logger)
}

// runProgram launches the interactive viewer. It is a variable so tests can
// substitute the bubbletea program.
var runProgram = tui.Run

// stdoutIsTerminal reports whether stdout is attached to a terminal.
var stdoutIsTerminal = func() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// ExitCodeForError maps a startup error to the process exit code.
// Configuration errors get their dedicated code so scripts can tell a bad
// invocation apart from a runtime failure.
func ExitCodeForError(err error) int {
	var cfgErr apperrors.ConfigError
	if errors.As(err, &cfgErr) {
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitErrorGeneric
}
