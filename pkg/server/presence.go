package server

import (
	"log/slog"

	"github.com/TripleSteak/Final-Aisle/pkg/packet"
)

// Presence tracks which sessions are in the world and fans gameplay
// packets out to them. Only called from the dispatcher goroutine, so
// no locking: the online set cannot change mid-broadcast.
type Presence struct {
	srv    *Server
	online map[int64]*Session
}

// NewPresence creates an empty presence set.
func NewPresence(srv *Server) *Presence {
	return &Presence{srv: srv, online: make(map[int64]*Session)}
}

// Count returns the number of sessions in the world.
func (p *Presence) Count() int { return len(p.online) }

// Online reports whether a session is in the world.
func (p *Presence) Online(id int64) bool {
	_, ok := p.online[id]
	return ok
}

// Broadcast sends a packet to every online session except the sender.
// Pass exclude 0 to reach everyone.
func (p *Presence) Broadcast(pkt packet.Packet, exclude int64) {
	for id, sess := range p.online {
		if id == exclude {
			continue
		}
		p.srv.send(sess, pkt)
	}
}

// LogIn announces a freshly authenticated session to everyone already
// in the world. The newcomer learns who else is online by asking with
// a post-connect request once its world is loaded.
func (p *Presence) LogIn(sess *Session) {
	if _, ok := p.online[sess.id]; ok {
		return
	}
	p.online[sess.id] = sess
	p.Broadcast(announcePacket(packet.KeyPlayerConnected, sess), sess.id)

	slog.Info("player entered world",
		"session", sess.id,
		"username", sess.account.Username,
		"online", len(p.online),
	)
}

// PostLogin replays a connect announcement for every other online
// player as unicast to the requester, so a late joiner reconstructs
// who is already in the world.
func (p *Presence) PostLogin(sess *Session) {
	for id, other := range p.online {
		if id == sess.id {
			continue
		}
		p.srv.send(sess, announcePacket(packet.KeyPlayerConnected, other))
	}
}

// LogOut removes a session from the world. Sessions that never made it
// past login produce no announcement.
func (p *Presence) LogOut(sess *Session) {
	if _, ok := p.online[sess.id]; !ok {
		return
	}
	delete(p.online, sess.id)
	p.Broadcast(packet.NewInt(packet.KeyPlayerDisconnected, int(sess.id)), 0)

	slog.Info("player left world", "session", sess.id, "online", len(p.online))
}

// announcePacket describes one online player: session ID, then the
// active character's display components.
func announcePacket(key string, sess *Session) packet.Packet {
	ch, err := sess.account.ActiveCharacter()
	if err != nil {
		// Accounts always carry at least one character; reaching this
		// means the store handed back a broken account.
		slog.Error("online session has no active character", "session", sess.id)
		return packet.NewEmpty(key)
	}
	values := append([]any{int(sess.id)}, ch.DisplayComponents()...)
	return packet.MustComposite(key, values...)
}
