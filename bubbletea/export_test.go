package bubbletea

import "context"

// SetRunningWithCancel puts the model in a running state with a cancel
// function.
func SetRunningWithCancel(m Model, cancel context.CancelFunc) Model {
	m.running = true
	m.cancel = cancel
	return m
}

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// StatusLine exports statusLine for testing.
func StatusLine(m Model) string {
	return m.statusLine()
}
