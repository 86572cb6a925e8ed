package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// StartMetricsHTTP starts a lightweight HTTP server that exposes /metrics
// in Prometheus text exposition format. It runs in the background and
// shuts down when the server context is cancelled.
func (s *Server) StartMetricsHTTP() {
	addr := s.cfg.MetricsAddr
	if addr == "" {
		return // metrics endpoint disabled
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("metrics HTTP listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics HTTP error", "err", err)
		}
	}()

	go func() {
		<-s.ctx.Done()
		_ = srv.Close()
	}()
}

// handleMetrics writes all metrics in Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	m := s.metrics
	uptime := time.Since(m.startTime).Seconds()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	// Write errors to http.ResponseWriter are non-actionable; suppress errcheck.
	write := func(name, help, mtype string, value int64) {
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
	}
	writeFloat := func(name, help, mtype string, value float64) {
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		_, _ = fmt.Fprintf(w, "%s %f\n", name, value)
	}

	writeFloat("finalaisle_uptime_seconds", "Server uptime in seconds.", "gauge", uptime)

	write("finalaisle_connections_active", "Current live connections.", "gauge",
		m.ActiveConnections.Load())
	write("finalaisle_connections_total", "Lifetime TCP connections accepted.", "counter",
		m.TotalConnections.Load())
	write("finalaisle_disconnects_total", "Total client disconnects.", "counter",
		m.TotalDisconnects.Load())
	write("finalaisle_secure_sessions_total", "Handshakes completed through the secure ack.", "counter",
		m.SecureSessions.Load())

	write("finalaisle_accounts_created_total", "Accounts created.", "counter",
		m.AccountsCreated.Load())
	write("finalaisle_verify_failures_total", "Wrong verification codes submitted.", "counter",
		m.VerifyFailures.Load())
	write("finalaisle_logins_success_total", "Successful logins.", "counter",
		m.SuccessfulLogins.Load())
	write("finalaisle_logins_failed_total", "Failed logins.", "counter",
		m.FailedLogins.Load())

	write("finalaisle_packets_in_total", "Decoded inbound packets.", "counter",
		m.PacketsIn.Load())
	write("finalaisle_packets_out_total", "Enqueued outbound packets.", "counter",
		m.PacketsOut.Load())
	write("finalaisle_bytes_in_total", "Wire bytes read.", "counter",
		m.BytesIn.Load())
	write("finalaisle_bytes_out_total", "Wire bytes enqueued.", "counter",
		m.BytesOut.Load())
	write("finalaisle_decode_failures_total", "Frames that failed decrypt or decompress.", "counter",
		m.DecodeFailures.Load())
	write("finalaisle_movement_relayed_total", "Movement packets rebroadcast.", "counter",
		m.MovementRelayed.Load())
}
