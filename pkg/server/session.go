package server

import (
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TripleSteak/Final-Aisle/pkg/model"
	"github.com/TripleSteak/Final-Aisle/pkg/wire"
)

const (
	// sessionSendBuffer bounds the per-session outbound queue.
	sessionSendBuffer = 64

	writeTimeout = 10 * time.Second
)

// Session is one client connection from accept to close. Fields past
// the connection plumbing are owned by the dispatcher goroutine and
// must not be touched elsewhere.
type Session struct {
	id    int64
	conn  net.Conn
	codec *wire.Codec

	outbound  chan []byte
	closeOnce sync.Once
	closed    chan struct{}

	// Dispatcher-owned state.
	secure  bool
	account *model.Account
	pending *model.PendingRegistration
}

// ID returns the session's numeric identifier, unique for the life of
// the process.
func (s *Session) ID() int64 { return s.id }

// Account returns the logged-in account, or nil before login.
func (s *Session) Account() *model.Account { return s.account }

// RemoteAddr reports the peer address for logging.
func (s *Session) RemoteAddr() string {
	if s.conn == nil {
		return ""
	}
	return s.conn.RemoteAddr().String()
}

// enqueue hands wire bytes to the session's writer goroutine. Bytes
// are dropped if the session is closed or its queue is full; a client
// that cannot drain its queue is not allowed to stall the dispatcher.
func (s *Session) enqueue(frame []byte) {
	select {
	case <-s.closed:
	case s.outbound <- frame:
	default:
		slog.Warn("outbound queue full, dropping frame", "session", s.id)
	}
}

// close shuts the connection down exactly once.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.conn.Close()
	})
}

// writeLoop drains the outbound queue onto the socket. One per
// session; this serializes writes so broadcast and reply frames never
// interleave mid-frame.
func (s *Session) writeLoop() {
	for {
		select {
		case <-s.closed:
			return
		case frame := <-s.outbound:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := s.conn.Write(frame); err != nil {
				slog.Debug("write failed", "session", s.id, "err", err)
				s.close()
				return
			}
		}
	}
}

// SessionManager tracks live sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	nextID   atomic.Int64
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[int64]*Session)}
}

// Create registers a session for a freshly accepted connection.
func (sm *SessionManager) Create(conn net.Conn) *Session {
	sess := &Session{
		id:       sm.nextID.Add(1),
		conn:     conn,
		outbound: make(chan []byte, sessionSendBuffer),
		closed:   make(chan struct{}),
	}
	sm.mu.Lock()
	sm.sessions[sess.id] = sess
	sm.mu.Unlock()
	return sess
}

// Get retrieves a session by ID.
func (sm *SessionManager) Get(id int64) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Remove drops a session from the registry.
func (sm *SessionManager) Remove(id int64) {
	sm.mu.Lock()
	delete(sm.sessions, id)
	sm.mu.Unlock()
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// All returns a snapshot of live sessions.
func (sm *SessionManager) All() []*Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	result := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		result = append(result, s)
	}
	return result
}
