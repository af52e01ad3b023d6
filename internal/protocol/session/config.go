package session

import (
	"time"

	"github.com/danmuck/espclient/internal/protocol/esp"
)

// BackoffConfig defines retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines connection and read-loop settings.
type Config struct {
	ConnectTimeout  time.Duration
	ConnectAttempts int
	WriteTimeout    time.Duration
	ReadChunk       int
	Backoff         BackoffConfig
	Decoder         esp.Options
}

// DefaultConfig mirrors the stock client: one connect attempt, 1 KiB reads
// and a 4 KiB line limit.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:  5 * time.Second,
		ConnectAttempts: 1,
		WriteTimeout:    15 * time.Second,
		ReadChunk:       esp.DefaultReadChunk,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
		Decoder: esp.DefaultOptions(),
	}
}
