// Package transcript records session traffic as JSON lines.
package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/danmuck/espclient/internal/protocol/esp"
	"github.com/goccy/go-json"
)

const (
	DirIn  = "in"
	DirOut = "out"
)

// Entry is one recorded line of a transcript.
type Entry struct {
	Time   time.Time `json:"t"`
	Dir    string    `json:"dir"`
	Kind   string    `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Stream string    `json:"stream,omitempty"`
}

// Recorder appends entries to a writer. Write failures are kept and
// reported by Err and Close; recording stops after the first one.
type Recorder struct {
	mu     sync.Mutex
	w      *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
	now    func() time.Time
	err    error
}

// Open appends to the transcript file at path, creating it if needed.
func Open(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("transcript open failed (%s): %w", path, err)
	}
	r := NewRecorder(f)
	r.closer = f
	return r, nil
}

func NewRecorder(w io.Writer) *Recorder {
	bw := bufio.NewWriter(w)
	return &Recorder{w: bw, enc: json.NewEncoder(bw), now: time.Now}
}

func (r *Recorder) Received(ev esp.Event) {
	e := Entry{Dir: DirIn, Kind: ev.Kind.String()}
	switch ev.Kind {
	case esp.EventLine:
		e.Text = ev.Text
	case esp.EventStream:
		e.Stream = ev.Stream.String()
	}
	r.record(e)
}

func (r *Recorder) Sent(line string) {
	r.record(Entry{Dir: DirOut, Kind: esp.EventLine.String(), Text: line})
}

func (r *Recorder) record(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	e.Time = r.now().UTC()
	if err := r.enc.Encode(e); err != nil {
		r.err = err
		return
	}
	r.err = r.w.Flush()
}

func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.w.Flush(); err != nil && r.err == nil {
		r.err = err
	}
	if r.closer != nil {
		if err := r.closer.Close(); err != nil && r.err == nil {
			r.err = err
		}
		r.closer = nil
	}
	return r.err
}

// Read decodes a transcript produced by a Recorder.
func Read(rd io.Reader) ([]Entry, error) {
	dec := json.NewDecoder(rd)
	var out []Entry
	for {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, e)
	}
}
