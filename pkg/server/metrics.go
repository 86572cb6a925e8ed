package server

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"
)

// Metrics tracks server runtime statistics.
// All counters use atomic operations for lock-free concurrent access.
type Metrics struct {
	startTime time.Time

	// Connection counters
	TotalConnections  atomic.Int64 // lifetime TCP connections accepted
	ActiveConnections atomic.Int64 // current live connections
	TotalDisconnects  atomic.Int64 // total client disconnects (clean + unclean)
	SecureSessions    atomic.Int64 // handshakes completed through the secure ack

	// Account counters
	AccountsCreated  atomic.Int64 // accounts created during this run
	VerifyFailures   atomic.Int64 // wrong verification codes submitted
	SuccessfulLogins atomic.Int64
	FailedLogins     atomic.Int64

	// Traffic counters
	PacketsIn       atomic.Int64 // decoded inbound packets
	PacketsOut      atomic.Int64 // enqueued outbound packets
	BytesIn         atomic.Int64 // wire bytes read
	BytesOut        atomic.Int64 // wire bytes enqueued
	DecodeFailures  atomic.Int64 // frames that failed decrypt or decompress
	MovementRelayed atomic.Int64 // movement and transform packets rebroadcast
}

// NewMetrics creates a new Metrics instance with the start time set to now.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// MetricsSnapshot is a point-in-time view of all metrics as a
// serializable struct.
type MetricsSnapshot struct {
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`

	ActiveConnections int64 `json:"active_connections"`
	TotalConnections  int64 `json:"total_connections"`
	TotalDisconnects  int64 `json:"total_disconnects"`
	SecureSessions    int64 `json:"secure_sessions"`

	AccountsCreated  int64 `json:"accounts_created"`
	VerifyFailures   int64 `json:"verify_failures"`
	SuccessfulLogins int64 `json:"successful_logins"`
	FailedLogins     int64 `json:"failed_logins"`

	PacketsIn       int64 `json:"packets_in"`
	PacketsOut      int64 `json:"packets_out"`
	BytesIn         int64 `json:"bytes_in"`
	BytesOut        int64 `json:"bytes_out"`
	DecodeFailures  int64 `json:"decode_failures"`
	MovementRelayed int64 `json:"movement_relayed"`
}

// Snapshot returns a read-consistent snapshot of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	uptime := time.Since(m.startTime)
	return MetricsSnapshot{
		Uptime:            uptime.Truncate(time.Second).String(),
		UptimeSeconds:     int64(uptime.Seconds()),
		ActiveConnections: m.ActiveConnections.Load(),
		TotalConnections:  m.TotalConnections.Load(),
		TotalDisconnects:  m.TotalDisconnects.Load(),
		SecureSessions:    m.SecureSessions.Load(),
		AccountsCreated:   m.AccountsCreated.Load(),
		VerifyFailures:    m.VerifyFailures.Load(),
		SuccessfulLogins:  m.SuccessfulLogins.Load(),
		FailedLogins:      m.FailedLogins.Load(),
		PacketsIn:         m.PacketsIn.Load(),
		PacketsOut:        m.PacketsOut.Load(),
		BytesIn:           m.BytesIn.Load(),
		BytesOut:          m.BytesOut.Load(),
		DecodeFailures:    m.DecodeFailures.Load(),
		MovementRelayed:   m.MovementRelayed.Load(),
	}
}

// JSON returns the metrics snapshot as a JSON string.
func (m *Metrics) JSON() string {
	data, err := json.MarshalIndent(m.Snapshot(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// LogSummary writes a periodic metrics summary to the logger.
func (m *Metrics) LogSummary() {
	s := m.Snapshot()
	slog.Info("metrics",
		"uptime", s.Uptime,
		"connections", s.ActiveConnections,
		"total_connections", s.TotalConnections,
		"packets_in", s.PacketsIn,
		"packets_out", s.PacketsOut,
		"bytes_in", s.BytesIn,
		"bytes_out", s.BytesOut,
		"logins", s.SuccessfulLogins,
		"movement_relayed", s.MovementRelayed,
	)
}

// StartPeriodicLog starts a goroutine that logs metrics every interval.
// It stops when the done channel is closed.
func (m *Metrics) StartPeriodicLog(interval time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				m.LogSummary()
			}
		}
	}()
}
