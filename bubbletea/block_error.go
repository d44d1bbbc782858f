package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/ragchat/goldmark"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders an assistant message whose exchange failed.
type ErrorBlock struct {
	text   string
	styles Styles
}

// NewErrorBlock creates an ErrorBlock from a failed message's content. The
// markdown "**Error:**" marker is replaced by the error style.
func NewErrorBlock(content string, styles Styles) *ErrorBlock {
	text := strings.TrimPrefix(goldmark.Sanitize(content), "**Error:** ")
	return &ErrorBlock{text: text, styles: styles}
}

func (b *ErrorBlock) View(width int) string {
	content := b.styles.Error.Render("Error: " + b.text)
	return lipgloss.NewStyle().Width(width).Render(content)
}
