package bubbletea

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/ragchat"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// Placeholders for the question field.
const (
	PlaceholderNoKey = "Please enter your API key first."
	PlaceholderReady = "Ask a question about your knowledge base..."
)

// Field identifies which input has keyboard focus.
type Field int

const (
	FieldQuestion Field = iota
	FieldKey
)

// Model is the Bubble Tea model for the ragchat TUI.
type Model struct {
	// KeyInput holds the API key. Exported for test access.
	KeyInput textinput.Model
	// Input holds the question being typed. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript area. Exported for test access.
	Viewport viewport.Model
	// Spinner animates the typing indicator. Exported for test access.
	Spinner spinner.Model

	run     AgentFunc
	session *ragchat.Session
	store   ragchat.KeyValueStore
	theme   ragchat.Theme
	styles  Styles
	now     func() time.Time

	// transcript is the model's own view of the conversation. It changes
	// only through ragchat.Reduce. The session is written by the agent
	// goroutine and is not read after New.
	transcript ragchat.Transcript
	greeting   MessageBlock
	blocks     []MessageBlock // one per transcript message

	focus   Field
	running bool
	cancel  context.CancelFunc
	eventCh chan ragchat.Event
	doneCh  chan error
	err     error
	ready   bool
}

// Option configures a Model.
type Option func(*Model)

// WithStore persists the API key field to store on every change and
// pre-fills it from the stored credential.
func WithStore(store ragchat.KeyValueStore) Option {
	return func(m *Model) {
		m.store = store
	}
}

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// New creates a TUI Model. Existing messages in session are shown, and the
// API key field starts with the credential found in the store, if any.
func New(run AgentFunc, session *ragchat.Session, theme ragchat.Theme, opts ...Option) Model {
	styles := NewStyles(theme)

	key := textinput.New()
	key.Prompt = "API key: "
	key.PromptStyle = styles.Label
	key.Placeholder = "paste your key"
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '•'
	key.CharLimit = 0

	in := textinput.New()
	in.Prompt = "> "
	in.PromptStyle = styles.UserMsg
	in.CharLimit = 0

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Accent))

	m := Model{
		KeyInput:   key,
		Input:      in,
		Spinner:    sp,
		run:        run,
		session:    session,
		theme:      theme,
		styles:     styles,
		now:        time.Now,
		transcript: session.Transcript,
		greeting:   NewGreetingBlock(styles),
	}
	for _, opt := range opts {
		opt(&m)
	}

	if m.store != nil {
		stored, err := ragchat.LoadCredential(m.store)
		if err != nil {
			m.err = err
		}
		m.KeyInput.SetValue(stored)
	}
	if m.hasKey() {
		m = m.focusField(FieldQuestion)
	} else {
		m = m.focusField(FieldKey)
	}
	m = m.syncBlocks()
	return m
}

// Running reports whether an exchange is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Focus returns the field that has keyboard focus.
func (m Model) Focus() Field { return m.focus }

// Transcript returns the conversation as displayed.
func (m Model) Transcript() ragchat.Transcript { return m.transcript }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamEventMsg:
		if tok, ok := msg.Event.(ragchat.EventToken); ok {
			m.transcript = ragchat.Reduce(m.transcript, ragchat.ActionToken{Token: tok.Token})
			m = m.refresh()
		}
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case AgentDoneMsg:
		return m.finish(msg.Err)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		if m.transcript.Typing() {
			m.Viewport.SetContent(m.renderContent())
		}
		return m, cmd
	}

	// Remaining messages (mouse wheel, cursor blink) go to the viewport and,
	// when idle, to the focused input.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.running {
		m, cmd = m.updateFocused(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.KeyInput.View())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	// Status line, key field, question field, and the newlines between
	// the four sections.
	const chrome = 3 + 3
	vpHeight := max(msg.Height-chrome, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.KeyInput.Width = max(msg.Width-runewidth.StringWidth(m.KeyInput.Prompt)-1, 1)
	m.Input.Width = max(msg.Width-runewidth.StringWidth(m.Input.Prompt)-1, 1)
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyTab, tea.KeyShiftTab:
		if m.running {
			return m, nil
		}
		next := FieldKey
		if m.focus == FieldKey {
			next = FieldQuestion
		}
		m = m.focusField(next)
		return m, textinput.Blink

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		if m.focus == FieldKey {
			if m.hasKey() {
				m = m.focusField(FieldQuestion)
			}
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" || !m.hasKey() {
			return m, nil
		}
		return m.submit(text)
	}

	if m.running {
		return m, nil
	}

	// Only non-character keys scroll the viewport, so typing never moves it.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes && msg.Type != tea.KeySpace {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m, cmd = m.updateFocused(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// updateFocused forwards msg to the focused input. A change to the key
// field is persisted immediately.
func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == FieldQuestion {
		m.Input, cmd = m.Input.Update(msg)
		return m, cmd
	}
	before := m.KeyInput.Value()
	m.KeyInput, cmd = m.KeyInput.Update(msg)
	if after := m.KeyInput.Value(); after != before {
		m = m.saveKey(after)
	}
	return m, cmd
}

func (m Model) saveKey(key string) Model {
	m.Input.Placeholder = m.placeholder()
	if m.store == nil {
		return m
	}
	if err := ragchat.SaveCredential(m.store, strings.TrimSpace(key)); err != nil {
		m.err = err
		return m
	}
	m.err = nil
	return m
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	req := ragchat.Request{Question: text, APIKey: strings.TrimSpace(m.KeyInput.Value())}
	m.transcript = ragchat.Reduce(m.transcript, ragchat.ActionSubmit{Question: text, Time: m.now()})

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan ragchat.Event, 256)
	m.doneCh = make(chan error, 1)
	m.running = true
	m.Input.Blur()
	m.KeyInput.Blur()
	m = m.refresh()

	return m, tea.Batch(
		startAgent(m.run, ctx, m.session, req, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
		m.Spinner.Tick,
	)
}

func (m Model) finish(err error) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
	m.cancel = nil
	m.eventCh = nil
	m.doneCh = nil

	if err != nil {
		m.transcript = ragchat.Reduce(m.transcript, ragchat.ActionFail{Err: err})
		if !errors.Is(err, context.Canceled) {
			m.err = err
		}
	} else {
		m.transcript = ragchat.Reduce(m.transcript, ragchat.ActionComplete{})
	}
	m = m.focusField(m.focus)
	m = m.refresh()
	return m, textinput.Blink
}

func (m Model) focusField(f Field) Model {
	m.focus = f
	if f == FieldKey {
		m.Input.Blur()
		m.KeyInput.Focus()
	} else {
		m.KeyInput.Blur()
		m.Input.Focus()
	}
	m.Input.Placeholder = m.placeholder()
	return m
}

func (m Model) hasKey() bool {
	return strings.TrimSpace(m.KeyInput.Value()) != ""
}

func (m Model) placeholder() string {
	if m.hasKey() {
		return PlaceholderReady
	}
	return PlaceholderNoKey
}

// refresh brings the blocks in line with the transcript and redraws the
// viewport pinned to the bottom.
func (m Model) refresh() Model {
	m = m.syncBlocks()
	if m.ready {
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
	}
	return m
}

// syncBlocks keeps one block per transcript message. Streaming assistant
// blocks receive only the newly arrived suffix so their render cache
// survives.
func (m Model) syncBlocks() Model {
	msgs := m.transcript.Messages
	if len(m.blocks) > len(msgs) {
		m.blocks = m.blocks[:len(msgs)]
	}
	for i, msg := range msgs {
		if i == len(m.blocks) {
			m.blocks = append(m.blocks, m.newBlock(msg))
			continue
		}
		m.blocks[i] = m.updateBlock(m.blocks[i], msg)
	}
	return m
}

func (m Model) newBlock(msg ragchat.Message) MessageBlock {
	switch {
	case msg.Role == ragchat.RoleUser:
		return NewUserMessageBlock(msg.Content, m.styles)
	case msg.Failed:
		return NewErrorBlock(msg.Content, m.styles)
	default:
		b := NewAssistantTextBlock(m.theme)
		b.Append(msg.Content)
		return b
	}
}

func (m Model) updateBlock(b MessageBlock, msg ragchat.Message) MessageBlock {
	switch b := b.(type) {
	case *UserMessageBlock:
		if msg.Role == ragchat.RoleUser {
			return b
		}
	case *ErrorBlock:
		if msg.Failed {
			return b
		}
	case *AssistantTextBlock:
		if msg.Role == ragchat.RoleAssistant && !msg.Failed {
			if rest, ok := strings.CutPrefix(msg.Content, b.Text()); ok {
				if rest != "" {
					b.Append(rest)
				}
				return b
			}
		}
	}
	return m.newBlock(msg)
}

func (m Model) renderContent() string {
	width := m.Viewport.Width
	parts := []string{m.greeting.View(width)}
	for _, b := range m.blocks {
		if v := b.View(width); v != "" {
			parts = append(parts, v)
		}
	}
	if m.transcript.Typing() {
		parts = append(parts, m.Spinner.View()+" "+m.styles.Muted.Render("Thinking..."))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	fit := func(s string) string {
		if width <= 0 {
			return s
		}
		return runewidth.Truncate(s, width, "…")
	}
	switch {
	case m.err != nil:
		return m.styles.Error.Render(fit("Error: " + m.err.Error()))
	case m.running:
		return m.Spinner.View() + " " + m.styles.Muted.Render(fit("Thinking... Ctrl+C to cancel"))
	case !m.hasKey():
		return m.styles.Muted.Render(fit("Enter your API key, then Tab to the question field. Ctrl+C to quit"))
	default:
		return m.styles.Muted.Render(fit("Enter to send, Tab to edit key, Ctrl+C to quit"))
	}
}

// startAgent runs the exchange in a goroutine and signals completion.
func startAgent(run AgentFunc, ctx context.Context, session *ragchat.Session, req ragchat.Request, eventCh chan<- ragchat.Event, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := run(ctx, session, req, func(e ragchat.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForEvent waits for the next event from the channel.
// When the channel closes, it reads the error from doneCh and returns AgentDoneMsg.
func listenForEvent(ch <-chan ragchat.Event, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return AgentDoneMsg{Err: <-doneCh}
		}
		return StreamEventMsg{Event: evt}
	}
}
