package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/ragchat"
	bt "github.com/fwojciec/ragchat/bubbletea"
	"github.com/fwojciec/ragchat/mock"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, run bt.AgentFunc, opts ...bt.Option) bt.Model {
	t.Helper()
	m := bt.New(run, &ragchat.Session{}, ragchat.DefaultTheme(), opts...)
	return updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

// initModelWithKey creates a model whose store already holds an API key.
func initModelWithKey(t *testing.T, run bt.AgentFunc) (bt.Model, map[string]string) {
	t.Helper()
	kv := map[string]string{ragchat.CredentialKey: "sk-test"}
	return initModel(t, run, bt.WithStore(mock.MapStore(kv))), kv
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

func typeText(t *testing.T, m bt.Model, s string) bt.Model {
	t.Helper()
	return updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func plainContent(m bt.Model) string {
	return ansi.Strip(bt.RenderContent(m))
}

// nopAgent is a mock agent that does nothing.
func nopAgent(context.Context, *ragchat.Session, ragchat.Request, func(ragchat.Event)) error {
	return nil
}
