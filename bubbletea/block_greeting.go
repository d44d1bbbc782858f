package bubbletea

import "github.com/charmbracelet/x/ansi"

// Greeting is the assistant's opening line, shown above the transcript.
const Greeting = "Hello! To get started, please enter your API Key below. I'm ready to help you with your knowledge base."

var _ MessageBlock = (*GreetingBlock)(nil)

// GreetingBlock renders the opening line. It is not part of the transcript.
type GreetingBlock struct {
	styles Styles
}

// NewGreetingBlock creates a GreetingBlock.
func NewGreetingBlock(styles Styles) *GreetingBlock {
	return &GreetingBlock{styles: styles}
}

func (b *GreetingBlock) View(width int) string {
	return b.styles.Accent.Render("● ") + ansi.Wordwrap(Greeting, max(width-2, 10), "")
}
