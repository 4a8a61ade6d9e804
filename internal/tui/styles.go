package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mbarre/pixview/internal/ui"
)

// Style variables for the viewer chrome.
// Initialized from the ui theme system via initTUIStyles().
var (
	headerStyle     lipgloss.Style
	titleStyle      lipgloss.Style
	captionStyle    lipgloss.Style
	positionStyle   lipgloss.Style
	footerStyle     lipgloss.Style
	footerKeyStyle  lipgloss.Style
	footerDescStyle lipgloss.Style
	errorStyle      lipgloss.Style
	dimStyle        lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all TUI styles from the current ui theme.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Background(t.Bg).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	captionStyle = lipgloss.NewStyle().
		Foreground(t.Text)

	positionStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	footerStyle = lipgloss.NewStyle().
		Background(t.Bg).
		Padding(0, 1)

	footerKeyStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	footerDescStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	errorStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)

	dimStyle = lipgloss.NewStyle().
		Foreground(t.Dim)
}
