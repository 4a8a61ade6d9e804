package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// HeaderModel renders the top bar: current file name, its properties and the
// position in the file list.
type HeaderModel struct {
	caption  string
	details  string
	position string
	width    int
}

// NewHeaderModel creates an empty header.
func NewHeaderModel() HeaderModel {
	return HeaderModel{}
}

// SetFrame updates the displayed file name and properties.
func (h *HeaderModel) SetFrame(name, format string, width, height, bitDepth int) {
	h.caption = name
	h.details = fmt.Sprintf("%s %dx%d %d-bit", format, width, height, bitDepth)
}

// SetCaption sets the file name without properties, used while a file is
// loading or failed to load.
func (h *HeaderModel) SetCaption(name string) {
	h.caption = name
	h.details = ""
}

// SetPosition updates the "index/total" indicator.
func (h *HeaderModel) SetPosition(index, total int) {
	h.position = fmt.Sprintf("%d/%d", index+1, total)
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// View renders the header.
func (h HeaderModel) View() string {
	title := titleStyle.Render(h.caption)
	left := title
	if h.details != "" {
		left += positionStyle.Render(" | ") + captionStyle.Render(h.details)
	}
	right := positionStyle.Render(h.position)

	innerWidth := h.width - 2
	if innerWidth < 0 {
		innerWidth = 0
	}
	gap := innerWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return headerStyle.Width(h.width).Render(left + spaces(gap) + right)
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
