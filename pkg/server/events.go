package server

import "github.com/TripleSteak/Final-Aisle/pkg/packet"

// Event is a message from a connection goroutine to the dispatcher.
// The dispatcher consumes all events on one goroutine, so per-session
// ordering is exactly socket arrival order and handlers never race on
// session state.
type Event interface{ isEvent() }

// ConnectedEvent fires after the session key has been delivered.
type ConnectedEvent struct {
	Session *Session
}

// DisconnectedEvent fires when a connection's read loop exits, for any
// reason.
type DisconnectedEvent struct {
	Session *Session
}

// PacketEvent carries one decoded packet.
type PacketEvent struct {
	Session *Session
	Packet  packet.Packet
}

func (ConnectedEvent) isEvent()    {}
func (DisconnectedEvent) isEvent() {}
func (PacketEvent) isEvent()       {}
