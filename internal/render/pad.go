package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pad fits text into a fixed-width cell. Width is measured on the visible
// text, so color control sequences added by styling do not count against the
// cell. Text already at or past the width is returned unchanged rather than
// truncated.
func Pad(text string, width int, align string) string {
	if width <= 0 {
		return text
	}
	gap := width - lipgloss.Width(text)
	if gap <= 0 {
		return text
	}
	switch align {
	case "right":
		return strings.Repeat(" ", gap) + text
	case "center":
		left := gap / 2
		return strings.Repeat(" ", left) + text + strings.Repeat(" ", gap-left)
	default:
		return text + strings.Repeat(" ", gap)
	}
}
