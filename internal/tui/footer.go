package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FooterModel renders the bottom bar with key hints and status.
type FooterModel struct {
	keymap  KeyMap
	width   int
	loading bool
	errText string
}

// NewFooterModel creates a footer for the given bindings.
func NewFooterModel(keymap KeyMap) FooterModel {
	return FooterModel{keymap: keymap}
}

// SetWidth updates the available width.
func (f *FooterModel) SetWidth(w int) {
	f.width = w
}

// SetLoading toggles the loading indicator.
func (f *FooterModel) SetLoading(loading bool) {
	f.loading = loading
}

// SetError sets the status message shown when the current image failed to
// load. An empty string clears it.
func (f *FooterModel) SetError(text string) {
	f.errText = text
}

// View renders the footer.
func (f FooterModel) View() string {
	var status string
	switch {
	case f.errText != "":
		status = errorStyle.Render(f.errText)
	case f.loading:
		status = dimStyle.Render("loading...")
	}

	var hints []string
	for _, b := range f.keymap.ShortHelp() {
		h := b.Help()
		hints = append(hints, footerKeyStyle.Render(h.Key)+" "+footerDescStyle.Render(h.Desc))
	}
	help := strings.Join(hints, footerDescStyle.Render("  •  "))

	innerWidth := f.width - 2
	if innerWidth < 0 {
		innerWidth = 0
	}
	gap := innerWidth - lipgloss.Width(help) - lipgloss.Width(status)
	if gap < 0 {
		gap = 0
	}

	return footerStyle.Width(f.width).Render(help + spaces(gap) + status)
}
