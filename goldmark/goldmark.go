// Package goldmark renders assistant answers, written in markdown, to
// ANSI-styled terminal text. Parsing uses goldmark with the GFM extensions
// (tables, strikethrough, task lists); styling uses lipgloss colors taken
// from a ragchat.Theme.
package goldmark

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/ragchat"
)

// defaultWidth is used when the caller has no terminal width yet.
const defaultWidth = 80

// Render parses markdown source and returns styled terminal output with no
// trailing newline. Prose is word-wrapped to width; code blocks and tables
// keep their own layout.
func Render(source string, width int, theme ragchat.Theme) string {
	source = Sanitize(source)
	if strings.TrimSpace(source) == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return newRenderer([]byte(source), theme).document(width)
}

// Sanitize removes terminal escape sequences and control characters other
// than tab and newline from text received over the network. CRLF becomes LF.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' || r == '\n' || (r > 0x1F && r != 0x7F) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
