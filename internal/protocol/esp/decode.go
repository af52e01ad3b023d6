package esp

import (
	"bytes"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultMaxBufferLength = 4096

// Options configures a Decoder.
type Options struct {
	// MaxBufferLength caps the bytes kept for one line; excess bytes are
	// dropped. Zero or negative selects DefaultMaxBufferLength.
	MaxBufferLength int

	// Debug logs every completed raw line at debug level.
	Debug bool

	Logger *zerolog.Logger
}

func DefaultOptions() Options {
	return Options{MaxBufferLength: DefaultMaxBufferLength}
}

// Stats counts decoder output since creation.
type Stats struct {
	Lines           uint64
	StreamChanges   uint64
	SuppressedEmpty uint64
	DroppedBytes    uint64
}

// Decoder turns a fragmented byte stream into Events.
//
// A Decoder is owned by exactly one goroutine; it has no internal locking.
type Decoder struct {
	maxLen  int
	debug   bool
	log     zerolog.Logger
	line    []byte
	dropped int
	current Stream
	pending *Event
	stats   Stats
}

func NewDecoder(opts Options) *Decoder {
	if opts.MaxBufferLength <= 0 {
		opts.MaxBufferLength = DefaultMaxBufferLength
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Decoder{
		maxLen:  opts.MaxBufferLength,
		debug:   opts.Debug,
		log:     logger.With().Str("component", "esp.decoder").Logger(),
		line:    make([]byte, 0, min(opts.MaxBufferLength, 256)),
		current: StreamUnknown,
	}
}

// CurrentStream is the stream of the most recently returned stream Event.
// A switch that had to wait behind a pending line takes effect on the call
// that returns it, not on the call that consumed the control byte.
func (d *Decoder) CurrentStream() Stream {
	return d.current
}

// Pending reports whether the next Decode call returns a queued Event
// without reading input.
func (d *Decoder) Pending() bool {
	return d.pending != nil
}

// Buffered is the number of bytes staged for the line being assembled.
func (d *Decoder) Buffered() int {
	return len(d.line)
}

// Dropped is the number of bytes dropped from the line being assembled.
func (d *Decoder) Dropped() int {
	return d.dropped
}

func (d *Decoder) Stats() Stats {
	return d.stats
}

// Decode consumes a prefix of buf and returns at most one Event. It returns
// false when buf does not yet complete an Event; every byte it looked at has
// then been taken into the decoder, so the caller appends new data to buf
// and calls again. Decode never fails and never blocks.
func (d *Decoder) Decode(buf *bytes.Buffer) (Event, bool) {
	if d.pending != nil {
		ev := *d.pending
		d.pending = nil
		d.emitted(ev)
		return ev, true
	}
	if buf == nil || buf.Len() == 0 {
		return Event{}, false
	}

	src := buf.Bytes()
	for k, b := range src {
		switch {
		case b == '\n':
			if len(d.line) == 0 {
				d.stats.SuppressedEmpty++
				d.resetLine()
				continue
			}
			buf.Next(k + 1)
			ev := LineEvent(d.flush())
			d.emitted(ev)
			return ev, true

		case IsControlByte(b):
			buf.Next(k + 1)
			next := StreamEvent(StreamFromByte(b))
			if len(d.line) == 0 {
				d.resetLine()
				d.emitted(next)
				return next, true
			}
			d.pending = &next
			ev := LineEvent(d.flush())
			d.emitted(ev)
			return ev, true

		default:
			d.push(b)
		}
	}
	buf.Reset()
	return Event{}, false
}

func (d *Decoder) push(b byte) {
	if len(d.line) < d.maxLen {
		d.line = append(d.line, b)
		return
	}
	if d.dropped == 0 {
		d.log.Warn().Int("max", d.maxLen).Uint8("byte", b).Msg("buffer full, dropping bytes")
	}
	d.dropped++
	d.stats.DroppedBytes++
}

func (d *Decoder) flush() string {
	if d.debug {
		d.log.Debug().Hex("raw", d.line).Int("len", len(d.line)).Msg("RCVD")
	}
	if d.dropped > 0 {
		d.log.Debug().Int("dropped", d.dropped).Int("kept", len(d.line)).Msg("line truncated")
	}
	text := lossyText(d.line)
	d.resetLine()
	return text
}

func (d *Decoder) resetLine() {
	d.line = d.line[:0]
	d.dropped = 0
}

func (d *Decoder) emitted(ev Event) {
	switch ev.Kind {
	case EventLine:
		d.stats.Lines++
	case EventStream:
		d.stats.StreamChanges++
		d.current = ev.Stream
	}
}
