package esp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

var (
	ErrNulInLine     = errors.New("esp: line contains NUL byte")
	ErrUnknownStream = errors.New("esp: unknown stream")
)

// ErrorKind classifies a transport failure.
type ErrorKind uint8

const (
	KindOther ErrorKind = iota
	KindEOF
	KindTimeout
	KindClosed
	KindReset
)

func (k ErrorKind) String() string {
	switch k {
	case KindEOF:
		return "eof"
	case KindTimeout:
		return "timeout"
	case KindClosed:
		return "closed"
	case KindReset:
		return "reset"
	default:
		return "other"
	}
}

// TransportError wraps an I/O failure of the connection carrying the
// protocol. The decoder never produces one; read and write helpers do.
type TransportError struct {
	Op  string
	Err error
}

func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("esp: transport: %v", e.Err)
	}
	return fmt.Sprintf("esp: transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Kind reports the failure category of the wrapped error.
func (e *TransportError) Kind() ErrorKind {
	return classify(e.Err)
}

// Is treats two transport errors as equal when their kinds match.
func (e *TransportError) Is(target error) bool {
	t, ok := target.(*TransportError)
	if !ok {
		return false
	}
	return e.Kind() == t.Kind()
}

func classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindEOF
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) {
		return KindClosed
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNABORTED) {
		return KindReset
	}
	return KindOther
}
