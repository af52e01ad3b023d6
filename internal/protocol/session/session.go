package session

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/espclient/internal/protocol/esp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotStarted     = errors.New("session: not started")
	ErrAlreadyStarted = errors.New("session: already started")
	ErrClosed         = errors.New("session: closed")
)

// Observer sees traffic in the order it happens. Received runs on the read
// goroutine; Sent runs on the caller of SendLine.
type Observer interface {
	Received(ev esp.Event)
	Sent(line string)
}

// TruncationObserver is implemented by observers that want to know how many
// inbound bytes the decoder dropped for oversized lines.
type TruncationObserver interface {
	Truncated(dropped uint64)
}

// Session pumps one connection through an esp.Decoder.
type Session struct {
	conn      net.Conn
	cfg       Config
	log       zerolog.Logger
	observers []Observer

	dec     *esp.Decoder
	prompts chan struct{}
	done    chan struct{}
	current atomic.Uint32
	started atomic.Bool
	closed  atomic.Bool

	writeMu   sync.Mutex
	cancel    context.CancelFunc
	closeOnce sync.Once
	err       error
}

func New(conn net.Conn, cfg Config, observers ...Observer) *Session {
	if cfg.ReadChunk <= 0 {
		cfg.ReadChunk = esp.DefaultReadChunk
	}
	logger := log.Logger.With().Str("component", "session").Str("remote", conn.RemoteAddr().String()).Logger()
	return &Session{
		conn:      conn,
		cfg:       cfg,
		log:       logger,
		observers: observers,
		dec:       esp.NewDecoder(cfg.Decoder),
		prompts:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Start launches the read goroutine. It owns the decoder until the
// connection fails or Close is called.
func (s *Session) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()
	go s.readLoop(ctx)
	return nil
}

func (s *Session) readLoop(ctx context.Context) {
	defer close(s.done)
	defer s.cancel()

	r := esp.NewReaderSize(s.conn, s.dec, s.cfg.ReadChunk)
	var dropped uint64
	for {
		ev, err := r.Next()
		if err != nil {
			if s.closed.Load() || ctx.Err() != nil {
				s.log.Debug().Err(err).Msg("read loop stopped")
			} else {
				s.log.Warn().Err(err).Msg("read loop ended")
			}
			s.err = err
			return
		}
		if ev.IsStream() {
			s.current.Store(uint32(ev.Stream))
		}
		for _, o := range s.observers {
			o.Received(ev)
		}
		if total := s.dec.Stats().DroppedBytes; total > dropped {
			s.truncated(total - dropped)
			dropped = total
		}
		if ev.IsStream() && ev.Stream == esp.StreamPrompt {
			select {
			case s.prompts <- struct{}{}:
			default:
			}
		}
	}
}

func (s *Session) truncated(n uint64) {
	for _, o := range s.observers {
		if t, ok := o.(TruncationObserver); ok {
			t.Truncated(n)
		}
	}
}

// Prompts signals that at least one Prompt stream switch arrived since the
// last receive. Observers have seen the switch before it is signalled.
// Switches that arrive while a signal is queued are coalesced, so the read
// goroutine never waits on the consumer.
func (s *Session) Prompts() <-chan struct{} {
	return s.prompts
}

// Done is closed when the read goroutine exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err reports why the read goroutine exited. It is nil until Done is closed.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// CurrentStream is the stream of the last switch the read goroutine
// delivered to observers.
func (s *Session) CurrentStream() esp.Stream {
	return esp.Stream(s.current.Load())
}

// SendLine frames line and writes it. Concurrent callers are serialized.
func (s *Session) SendLine(line string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.cfg.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	if err := esp.WriteLine(s.conn, line); err != nil {
		return err
	}
	if s.cfg.Decoder.Debug {
		raw := []byte(strings.TrimSuffix(line, "\n"))
		s.log.Debug().Hex("raw", raw).Int("len", len(raw)).Msg("SENT")
	}
	for _, o := range s.observers {
		o.Sent(line)
	}
	return nil
}

// Close stops the read goroutine, closes the connection and waits for the
// goroutine to exit.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.cancel != nil {
			s.cancel()
		}
		err = s.conn.Close()
		if s.started.Load() {
			<-s.done
		}
	})
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
