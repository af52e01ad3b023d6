package esp

import (
	"fmt"
	"strings"
)

// Stream is the logical channel a line belongs to.
type Stream uint8

const (
	StreamUnknown Stream = iota
	StreamPrompt
	StreamResult
	StreamOutput
	StreamException
	StreamLog
	StreamSetPrompt
	StreamStateVec
	StreamStatus
)

const (
	controlNul   byte = 0x00
	controlFirst byte = 0x80
	controlLast  byte = 0x87
)

var streamNames = [...]string{
	StreamUnknown:   "Unknown",
	StreamPrompt:    "Prompt",
	StreamResult:    "Result",
	StreamOutput:    "Output",
	StreamException: "Exception",
	StreamLog:       "Log",
	StreamSetPrompt: "SetPrompt",
	StreamStateVec:  "StateVec",
	StreamStatus:    "Status",
}

// Streams returns every stream tag in control-byte order.
func Streams() []Stream {
	out := make([]Stream, 0, len(streamNames))
	for i := range streamNames {
		out = append(out, Stream(i))
	}
	return out
}

func (s Stream) String() string {
	if int(s) < len(streamNames) {
		return streamNames[s]
	}
	return fmt.Sprintf("Stream(%d)", uint8(s))
}

// IsControlByte reports whether b switches the current stream.
func IsControlByte(b byte) bool {
	return b == controlNul || (b >= controlFirst && b <= controlLast)
}

// StreamFromByte maps a control byte to its stream. Bytes outside the
// control range map to StreamUnknown.
func StreamFromByte(b byte) Stream {
	switch b {
	case 0x80:
		return StreamPrompt
	case 0x81:
		return StreamResult
	case 0x82:
		return StreamOutput
	case 0x83:
		return StreamException
	case 0x84:
		return StreamLog
	case 0x85:
		return StreamSetPrompt
	case 0x86:
		return StreamStateVec
	case 0x87:
		return StreamStatus
	default:
		return StreamUnknown
	}
}

// ParseStream resolves a stream by name, ignoring case.
func ParseStream(name string) (Stream, error) {
	want := strings.TrimSpace(name)
	for i, n := range streamNames {
		if strings.EqualFold(n, want) {
			return Stream(i), nil
		}
	}
	return StreamUnknown, fmt.Errorf("%w: %q", ErrUnknownStream, name)
}

// StreamSet is a set of stream tags, one bit per tag.
type StreamSet uint16

func NewStreamSet(streams ...Stream) StreamSet {
	var set StreamSet
	for _, s := range streams {
		if int(s) < len(streamNames) {
			set |= 1 << s
		}
	}
	return set
}

func (set StreamSet) Has(s Stream) bool {
	return int(s) < len(streamNames) && set&(1<<s) != 0
}

// Names lists the members in control-byte order.
func (set StreamSet) Names() []string {
	out := []string{}
	for _, s := range Streams() {
		if set.Has(s) {
			out = append(out, s.String())
		}
	}
	return out
}

// ParseStreamSet resolves stream names. Blank entries are skipped.
func ParseStreamSet(names []string) (StreamSet, error) {
	var set StreamSet
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		s, err := ParseStream(name)
		if err != nil {
			return 0, err
		}
		set |= NewStreamSet(s)
	}
	return set, nil
}
