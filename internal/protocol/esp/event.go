package esp

import "fmt"

// EventKind discriminates Event.
type EventKind uint8

const (
	EventLine EventKind = iota + 1
	EventStream
)

func (k EventKind) String() string {
	switch k {
	case EventLine:
		return "line"
	case EventStream:
		return "stream"
	default:
		return "invalid"
	}
}

// Event is one decoded unit: either a completed line or a stream switch.
// Text is set only for EventLine, Stream only for EventStream.
type Event struct {
	Kind   EventKind
	Text   string
	Stream Stream
}

func LineEvent(text string) Event {
	return Event{Kind: EventLine, Text: text}
}

func StreamEvent(s Stream) Event {
	return Event{Kind: EventStream, Stream: s}
}

func (e Event) IsLine() bool {
	return e.Kind == EventLine
}

func (e Event) IsStream() bool {
	return e.Kind == EventStream
}

func (e Event) String() string {
	switch e.Kind {
	case EventLine:
		return fmt.Sprintf("Line(%q)", e.Text)
	case EventStream:
		return fmt.Sprintf("Stream(%s)", e.Stream)
	default:
		return "Event(invalid)"
	}
}
