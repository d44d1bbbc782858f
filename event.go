package ragchat

// Event is a sealed interface representing a streaming event.
// Events are purely semantic. Transport errors come from Next()'s error
// return, not from events.
type Event interface {
	event()
}

// EventToken carries one incremental piece of assistant text, appended
// verbatim to the in-progress message.
type EventToken struct {
	Token string
}

func (EventToken) event() {}

// Interface compliance check.
var _ Event = EventToken{}
