// Package bubbletea provides the Bubble Tea terminal UI for ragchat.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/ragchat"
)

// AgentFunc runs one exchange for req against session. The onEvent callback
// is called for each streaming event. The function blocks until the stream
// ends or the context is cancelled.
type AgentFunc func(ctx context.Context, session *ragchat.Session, req ragchat.Request, onEvent func(ragchat.Event)) error

// Run creates and runs the Bubble Tea TUI program. It blocks until the
// program exits and returns the final model. Cancelling ctx quits the
// program.
func Run(ctx context.Context, m Model) (Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		m = fm
	}
	return m, err
}

// StreamEventMsg wraps a streaming event for delivery to the Bubble Tea model.
type StreamEventMsg struct {
	Event ragchat.Event
}

// AgentDoneMsg signals that the exchange has completed.
type AgentDoneMsg struct {
	Err error
}
