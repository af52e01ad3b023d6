package esp

import (
	"bytes"
	"io"
)

const DefaultReadChunk = 1024

// Reader pulls Events from a byte-stream transport.
type Reader struct {
	r     io.Reader
	dec   *Decoder
	buf   bytes.Buffer
	chunk []byte
	err   error
}

// NewReader reads from r in chunks of DefaultReadChunk bytes.
func NewReader(r io.Reader, dec *Decoder) *Reader {
	return NewReaderSize(r, dec, DefaultReadChunk)
}

func NewReaderSize(r io.Reader, dec *Decoder, chunk int) *Reader {
	if dec == nil {
		dec = NewDecoder(DefaultOptions())
	}
	if chunk <= 0 {
		chunk = DefaultReadChunk
	}
	return &Reader{r: r, dec: dec, chunk: make([]byte, chunk)}
}

// Next returns the next Event. Events that can be decoded from data already
// read are returned before a read failure is reported. Read failures are
// sticky and returned as *TransportError.
func (r *Reader) Next() (Event, error) {
	for {
		if ev, ok := r.dec.Decode(&r.buf); ok {
			return ev, nil
		}
		if r.err != nil {
			return Event{}, r.err
		}
		n, err := r.r.Read(r.chunk)
		if n > 0 {
			r.buf.Write(r.chunk[:n])
		}
		if err != nil {
			r.err = NewTransportError("read", err)
		}
	}
}

// WriteLine encodes line and writes it to w.
func WriteLine(w io.Writer, line string) error {
	b, err := EncodeLine(line)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return NewTransportError("write", err)
	}
	return nil
}
