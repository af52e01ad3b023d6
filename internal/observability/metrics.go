package observability

import (
	"sync"

	"github.com/danmuck/espclient/internal/protocol/esp"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	linesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "espclient",
			Subsystem: "codec",
			Name:      "lines_received_total",
			Help:      "Lines decoded from the server.",
		},
	)
	streamChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "espclient",
			Subsystem: "codec",
			Name:      "stream_changes_total",
			Help:      "Stream switches decoded from the server.",
		},
		[]string{"stream"},
	)
	droppedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "espclient",
			Subsystem: "codec",
			Name:      "dropped_bytes_total",
			Help:      "Inbound bytes dropped because a line exceeded the buffer limit.",
		},
	)
	linesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "espclient",
			Subsystem: "session",
			Name:      "lines_sent_total",
			Help:      "Lines sent to the server.",
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "espclient",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total status server requests.",
		},
		[]string{"method", "route", "code"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(linesReceived, streamChanges, droppedBytes, linesSent, httpRequests)
	})
}

// SessionMetrics feeds session traffic into the process counters and keeps
// a snapshot for the status endpoint.
type SessionMetrics struct {
	mu       sync.Mutex
	snapshot Snapshot
}

// Snapshot is the status view of one session.
type Snapshot struct {
	Stream       string `json:"stream"`
	LinesIn      uint64 `json:"lines_in"`
	LinesOut     uint64 `json:"lines_out"`
	Switches     uint64 `json:"stream_switches"`
	DroppedBytes uint64 `json:"dropped_bytes"`
}

func NewSessionMetrics() *SessionMetrics {
	RegisterMetrics()
	return &SessionMetrics{snapshot: Snapshot{Stream: esp.StreamUnknown.String()}}
}

func (m *SessionMetrics) Received(ev esp.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch ev.Kind {
	case esp.EventLine:
		linesReceived.Inc()
		m.snapshot.LinesIn++
	case esp.EventStream:
		streamChanges.WithLabelValues(ev.Stream.String()).Inc()
		m.snapshot.Switches++
		m.snapshot.Stream = ev.Stream.String()
	}
}

func (m *SessionMetrics) Sent(string) {
	linesSent.Inc()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.LinesOut++
}

func (m *SessionMetrics) Truncated(n uint64) {
	droppedBytes.Add(float64(n))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.DroppedBytes += n
}

func (m *SessionMetrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}
