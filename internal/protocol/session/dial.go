package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrMissingAddr   = errors.New("session: missing server address")
	ErrConnectFailed = errors.New("session: connect failed")
)

// Dial opens a TCP connection to addr, retrying up to cfg.ConnectAttempts
// times with backoff between attempts.
func Dial(ctx context.Context, addr string, cfg Config) (net.Conn, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, ErrMissingAddr
	}
	attempts := max(cfg.ConnectAttempts, 1)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		d := net.Dialer{Timeout: cfg.ConnectTimeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			log.Debug().Str("addr", addr).Int("attempt", attempt).Msg("connected")
			return conn, nil
		}
		lastErr = err
		if attempt == attempts || ctx.Err() != nil {
			break
		}
		delay := cfg.Backoff.Delay(attempt, rng)
		log.Warn().Err(err).Str("addr", addr).Int("attempt", attempt).Dur("retry_in", delay).Msg("connect failed")
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %s: %w", ErrConnectFailed, addr, ctx.Err())
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempt(s): %w", ErrConnectFailed, addr, attempts, lastErr)
}
