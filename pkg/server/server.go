// Package server implements the Final Aisle game server.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/TripleSteak/Final-Aisle/pkg/crypto"
	"github.com/TripleSteak/Final-Aisle/pkg/datastore"
	"github.com/TripleSteak/Final-Aisle/pkg/email"
	"github.com/TripleSteak/Final-Aisle/pkg/packet"
	"github.com/TripleSteak/Final-Aisle/pkg/wire"
)

const (
	// handshakeTimeout bounds how long a fresh connection may take to
	// deliver its public key and the secure ack.
	handshakeTimeout = 10 * time.Second

	eventBuffer = 256

	readBuffer = 4096
)

// Dependencies holds external dependencies for the server.
// Server assumes ownership of Store and will Close() it on shutdown.
type Dependencies struct {
	Store datastore.AccountStore
	Mail  email.Sender
}

// Server is the main Final Aisle server.
type Server struct {
	cfg      Config
	sessions *SessionManager
	presence *Presence
	metrics  *Metrics
	store    datastore.AccountStore
	mail     email.Sender
	events   chan Event
	ln       net.Listener
	ctx      context.Context
	cancel   context.CancelFunc

	// send delivers one packet to one session. Swappable so tests can
	// record traffic without sockets.
	send func(*Session, packet.Packet)
}

// New creates a new Server instance.
func New(cfg Config, deps Dependencies) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		sessions: NewSessionManager(),
		metrics:  NewMetrics(),
		store:    deps.Store,
		mail:     deps.Mail,
		events:   make(chan Event, eventBuffer),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.presence = NewPresence(s)
	s.send = s.sendWire
	return s
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager { return s.sessions }

// Metrics returns the server metrics.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Addr returns the bound listener address, useful when the configured
// port was 0.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.cfg.Addr
	}
	return s.ln.Addr().String()
}

// Start binds the game listener and launches the accept loop and the
// dispatcher.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.ln = ln
	slog.Info("game listener started", "addr", s.cfg.Addr)

	go s.dispatch()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
					slog.Error("accept error", "err", err)
					continue
				}
			}
			go s.handleConn(conn)
		}
	}()

	return nil
}

// handleConn owns a connection's read side from accept to close. The
// first inbound frame must be the client's compressed RSA public key;
// everything after the key exchange is decoded with the session codec
// and forwarded to the dispatcher.
func (s *Server) handleConn(conn net.Conn) {
	sess := s.sessions.Create(conn)
	remote := conn.RemoteAddr().String()

	s.metrics.TotalConnections.Add(1)
	s.metrics.ActiveConnections.Add(1)
	slog.Debug("new connection", "session", sess.id, "remote", remote)

	go sess.writeLoop()

	defer func() {
		sess.close()
		s.sessions.Remove(sess.id)
		s.metrics.ActiveConnections.Add(-1)
		s.metrics.TotalDisconnects.Add(1)
		s.events <- DisconnectedEvent{Session: sess}
	}()

	// The handshake has to finish promptly; afterwards the connection
	// may idle as long as the client likes.
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))

	var acc wire.Accumulator
	buf := make([]byte, readBuffer)
	keySent := false

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			s.metrics.BytesIn.Add(int64(n))
			acc.Push(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				slog.Debug("read failed", "session", sess.id, "err", err)
			}
			return
		}

		for {
			frame, ferr := acc.Next()
			if ferr != nil {
				slog.Warn("invalid frame, dropping connection", "session", sess.id, "err", ferr)
				return
			}
			if frame == nil {
				break
			}

			if !keySent {
				if err := s.completeKeyExchange(sess, frame); err != nil {
					slog.Warn("key exchange failed", "session", sess.id, "remote", remote, "err", err)
					return
				}
				keySent = true
				_ = conn.SetReadDeadline(time.Time{}) // clear deadline
				s.events <- ConnectedEvent{Session: sess}
				continue
			}

			raw, err := sess.codec.Decode(frame)
			if err != nil {
				// A garbled frame is the client's problem, not grounds
				// for a disconnect.
				s.metrics.DecodeFailures.Add(1)
				slog.Warn("frame decode failed", "session", sess.id, "err", err)
				continue
			}
			pkt, err := packet.Unmarshal(raw)
			if err != nil {
				s.metrics.DecodeFailures.Add(1)
				slog.Warn("packet unmarshal failed", "session", sess.id, "err", err)
				continue
			}
			s.metrics.PacketsIn.Add(1)
			s.events <- PacketEvent{Session: sess, Packet: pkt}
		}
	}
}

// completeKeyExchange parses the client's public key frame, generates
// the session's AES key, and returns it wrapped under the client's
// key. The reply is compressed and framed but not AES encrypted, as
// the client has no codec yet.
func (s *Server) completeKeyExchange(sess *Session, frame []byte) error {
	der, err := wire.Decompress(frame)
	if err != nil {
		return fmt.Errorf("decompress public key: %w", err)
	}
	pub, err := crypto.ParsePublicKey(der)
	if err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}

	key, err := crypto.GenerateSessionKey()
	if err != nil {
		return fmt.Errorf("generate session key: %w", err)
	}
	codec, err := wire.NewCodec(key)
	if err != nil {
		return fmt.Errorf("build codec: %w", err)
	}

	wrapped, err := crypto.WrapSessionKey(pub, key)
	if err != nil {
		return fmt.Errorf("wrap session key: %w", err)
	}
	compressed, err := wire.Compress(wrapped)
	if err != nil {
		return fmt.Errorf("compress session key: %w", err)
	}

	sess.codec = codec
	reply := wire.PrependLength(compressed)
	s.metrics.BytesOut.Add(int64(len(reply)))
	sess.enqueue(reply)
	return nil
}

// sendWire encodes a packet for one session and queues it on the
// session's writer.
func (s *Server) sendWire(sess *Session, pkt packet.Packet) {
	if sess.codec == nil {
		slog.Error("send before key exchange", "session", sess.id, "key", pkt.Key())
		return
	}
	raw, err := packet.Marshal(pkt)
	if err != nil {
		slog.Error("packet marshal failed", "session", sess.id, "key", pkt.Key(), "err", err)
		return
	}
	frame, err := sess.codec.Encode(raw)
	if err != nil {
		slog.Error("packet encode failed", "session", sess.id, "key", pkt.Key(), "err", err)
		return
	}
	s.metrics.PacketsOut.Add(1)
	s.metrics.BytesOut.Add(int64(len(frame)))
	sess.enqueue(frame)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() {
	s.cancel()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	for _, sess := range s.sessions.All() {
		sess.close()
	}
}
