// Package tui implements the interactive viewer: a bubbletea program that
// shows one image at a time and pages through the file list with the
// arrow keys.
package tui

import (
	"context"
	"image/color"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mbarre/pixview/internal/decode"
	apperrors "github.com/mbarre/pixview/internal/errors"
	"github.com/mbarre/pixview/internal/logging"
	"github.com/mbarre/pixview/internal/render"
	"github.com/mbarre/pixview/internal/server"
)

// ViewerOptions carries everything the viewer needs from the configuration.
type ViewerOptions struct {
	// Files are the images to page through.
	Files []string
	// Decode holds byte order and colormap settings.
	Decode decode.Options
	// Background is the letterbox fill color.
	Background color.RGBA
	// Upscale enlarges images smaller than the terminal.
	Upscale bool
}

// frameLoadedMsg reports the outcome of loading one file.
type frameLoadedMsg struct {
	index    int
	frame    *decode.Frame
	err      error
	duration time.Duration
}

// Model is the root bubbletea model of the viewer.
type Model struct {
	header HeaderModel
	footer FooterModel
	keymap KeyMap

	opts  ViewerOptions
	index int

	// Decode results by file index. A file appears in at most one of the
	// two maps once its load completed.
	frames map[int]*decode.Frame
	errs   map[int]error

	width    int
	height   int
	rendered string
	// renderedFor tracks which file the rendered string belongs to;
	// -1 means it must be rebuilt.
	renderedFor int

	ctx      context.Context
	metrics  *server.Metrics
	logger   logging.Logger
	exitCode int
}

// NewModel creates the viewer model for the given files.
func NewModel(ctx context.Context, opts ViewerOptions, metrics *server.Metrics, logger logging.Logger) Model {
	keymap := DefaultKeyMap()
	header := NewHeaderModel()
	header.SetPosition(0, len(opts.Files))

	return Model{
		header:      header,
		footer:      NewFooterModel(keymap),
		keymap:      keymap,
		opts:        opts,
		frames:      make(map[int]*decode.Frame),
		errs:        make(map[int]error),
		renderedFor: -1,
		ctx:         ctx,
		metrics:     metrics,
		logger:      logger,
		exitCode:    apperrors.ExitSuccess,
	}
}

// Init starts loading the first image.
func (m Model) Init() tea.Cmd {
	return m.loadCmd(0)
}

// loadCmd returns a command that decodes the file at index. Already loaded
// files produce their cached result immediately.
func (m Model) loadCmd(index int) tea.Cmd {
	if frame, ok := m.frames[index]; ok {
		return func() tea.Msg {
			return frameLoadedMsg{index: index, frame: frame}
		}
	}
	if err, ok := m.errs[index]; ok {
		return func() tea.Msg {
			return frameLoadedMsg{index: index, err: err}
		}
	}
	ctx, path, opts := m.ctx, m.opts.Files[index], m.opts.Decode
	return func() tea.Msg {
		start := time.Now()
		frame, err := decode.Load(ctx, path, opts)
		return frameLoadedMsg{index: index, frame: frame, err: err, duration: time.Since(start)}
	}
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(m.width)
		m.footer.SetWidth(m.width)
		m.rebuildRender()
		return m, nil

	case frameLoadedMsg:
		return m.handleFrameLoaded(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Prev):
		return m.moveTo(m.index - 1)

	case key.Matches(msg, m.keymap.Next):
		return m.moveTo(m.index + 1)

	case key.Matches(msg, m.keymap.First):
		return m.moveTo(0)

	case key.Matches(msg, m.keymap.Last):
		return m.moveTo(len(m.opts.Files) - 1)
	}

	return m, nil
}

// moveTo switches to the file at index, clamped to the list bounds. Paging
// past either end stays on the current image.
func (m Model) moveTo(index int) (tea.Model, tea.Cmd) {
	if index < 0 {
		index = 0
	}
	if index > len(m.opts.Files)-1 {
		index = len(m.opts.Files) - 1
	}
	if index == m.index {
		return m, nil
	}

	m.index = index
	m.renderedFor = -1
	m.header.SetPosition(m.index, len(m.opts.Files))
	m.footer.SetError("")
	m.footer.SetLoading(true)
	return m, m.loadCmd(index)
}

func (m Model) handleFrameLoaded(msg frameLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errs[msg.index] = msg.err
		if m.metrics != nil {
			m.metrics.ObserveDecodeFailure()
		}
		if m.logger != nil {
			m.logger.Error("decode failed", msg.err,
				logging.String("file", m.opts.Files[msg.index]))
		}
	} else {
		if _, cached := m.frames[msg.index]; !cached && m.metrics != nil {
			m.metrics.ObserveDecode(msg.frame.Format, msg.duration)
		}
		m.frames[msg.index] = msg.frame
	}

	if msg.index != m.index {
		return m, nil // stale result from a file already paged past
	}

	m.footer.SetLoading(false)
	if err, ok := m.errs[m.index]; ok {
		m.header.SetCaption(m.opts.Files[m.index])
		m.footer.SetError(err.Error())
		m.renderedFor = -1
	} else {
		frame := m.frames[m.index]
		b := frame.Bounds()
		m.header.SetFrame(frame.Name(), frame.Format, b.Dx(), b.Dy(), frame.BitDepth)
		m.rebuildRender()
		if m.metrics != nil {
			m.metrics.ObserveView()
		}
	}
	return m, nil
}

// rebuildRender refreshes the cached cell grid for the current file at the
// current terminal size. With no decoded frame the cache is invalidated so
// View falls back to the placeholder.
func (m *Model) rebuildRender() {
	frame, ok := m.frames[m.index]
	if !ok || m.width == 0 || m.height == 0 {
		m.renderedFor = -1
		return
	}
	m.rendered = render.Render(frame.Image, render.Options{
		Cols:       m.width,
		Rows:       m.bodyRows(),
		Upscale:    m.opts.Upscale,
		Letterbox:  true,
		Background: m.opts.Background,
	})
	m.renderedFor = m.index
}

// bodyRows returns the terminal rows available for the image.
func (m Model) bodyRows() int {
	rows := m.height - 2 // header and footer
	if rows < 1 {
		rows = 1
	}
	return rows
}

// View renders the viewer.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.viewBody(),
		m.footer.View(),
	)
}

// viewBody renders the image area from the cached cell grid, or a centered
// placeholder while the current file is loading or failed to decode.
func (m Model) viewBody() string {
	if m.renderedFor == m.index {
		return m.rendered
	}

	var text string
	if err, failed := m.errs[m.index]; failed {
		text = errorStyle.Render("cannot display image") + "\n" + dimStyle.Render(err.Error())
	} else {
		text = dimStyle.Render("loading " + m.opts.Files[m.index] + "...")
	}
	return lipgloss.Place(m.width, m.bodyRows(), lipgloss.Center, lipgloss.Center, text)
}

// Run is the public entry point for the interactive viewer. It creates the
// bubbletea program, runs it, and returns the process exit code.
func Run(ctx context.Context, opts ViewerOptions, metrics *server.Metrics, logger logging.Logger) int {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	model := NewModel(ctx, opts, metrics, logger)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		if apperrors.IsContextError(err) {
			return apperrors.ExitErrorCanceled
		}
		return apperrors.ExitErrorGeneric
	}

	if m, ok := finalModel.(Model); ok {
		return m.exitCode
	}
	return apperrors.ExitSuccess
}
