package bubbletea

import (
	"strings"

	"github.com/fwojciec/ragchat"
	"github.com/fwojciec/ragchat/goldmark"
)

var _ MessageBlock = (*AssistantTextBlock)(nil)

// AssistantTextBlock renders a streamed answer as markdown.
// Text up to the last blank line outside a code fence is rendered once per
// width and cached; only the tail is re-rendered as tokens arrive.
type AssistantTextBlock struct {
	content strings.Builder
	theme   ragchat.Theme

	stable        string // prefix ending at the last safe blank line
	stableByWidth map[int]string
}

// NewAssistantTextBlock creates an empty block for a streaming answer.
func NewAssistantTextBlock(theme ragchat.Theme) *AssistantTextBlock {
	return &AssistantTextBlock{
		theme:         theme,
		stableByWidth: make(map[int]string),
	}
}

// Append adds a streamed token.
func (b *AssistantTextBlock) Append(token string) {
	b.content.WriteString(token)
	b.advanceStable()
}

// Text returns the raw markdown received so far.
func (b *AssistantTextBlock) Text() string {
	return b.content.String()
}

func (b *AssistantTextBlock) View(width int) string {
	head := b.renderStable(width)
	tail := b.tail()
	if openFence(tail) {
		// Close the fence for display only so a half-streamed code block
		// renders as code.
		tail += "\n```"
	}
	tailOut := goldmark.Render(tail, width, b.theme)
	switch {
	case strings.TrimSpace(tailOut) == "":
		return head
	case head == "":
		return tailOut
	default:
		return head + "\n\n" + tailOut
	}
}

// advanceStable moves the stable prefix to the last "\n\n" whose prefix has
// no open code fence.
func (b *AssistantTextBlock) advanceStable() {
	raw := b.content.String()
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		if candidate := raw[:idx]; !openFence(candidate) {
			if candidate != b.stable {
				b.stable = candidate
				clear(b.stableByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *AssistantTextBlock) renderStable(width int) string {
	if width <= 0 || b.stable == "" {
		return ""
	}
	if cached, ok := b.stableByWidth[width]; ok {
		return cached
	}
	out := goldmark.Render(b.stable, width, b.theme)
	b.stableByWidth[width] = out
	return out
}

func (b *AssistantTextBlock) tail() string {
	raw := b.content.String()
	if b.stable == "" {
		return raw
	}
	return strings.TrimPrefix(raw, b.stable+"\n\n")
}

// openFence reports an odd number of "```" markers in s.
func openFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
