// Package wire implements the byte-level transport format: length
// framing of messages and the compress-then-encrypt payload codec.
//
// Every message on the wire is [4-byte little-endian length][payload].
// The length covers only the payload that follows, never the header
// itself.
package wire

import (
	"encoding/binary"
	"fmt"
)

// FrameHeaderSize is the byte size of the length prefix.
const FrameHeaderSize = 4

// MaxFrameSize bounds a single framed payload (8 MiB). A declared
// length beyond this is a protocol violation, not a frame to wait for.
const MaxFrameSize = 8 << 20

// ErrFrameTooLarge is returned when a declared frame length exceeds
// MaxFrameSize or is negative.
var ErrFrameTooLarge = fmt.Errorf("wire: declared frame length exceeds %d bytes", MaxFrameSize)

// PrependLength returns payload with its 4-byte little-endian length
// prefixed.
func PrependLength(payload []byte) []byte {
	out := make([]byte, FrameHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out, uint32(len(payload)))
	copy(out[FrameHeaderSize:], payload)
	return out
}

// Accumulator turns an arbitrarily chunked byte stream into complete
// frames. Push appends received bytes; Next extracts one frame at a
// time. A frame split across reads is never extracted early, and
// multiple fully buffered frames are drained one call each.
type Accumulator struct {
	buf []byte
}

// Push appends freshly read bytes to the pending buffer.
func (a *Accumulator) Push(b []byte) {
	a.buf = append(a.buf, b...)
}

// Pending returns the number of buffered, not-yet-extracted bytes.
func (a *Accumulator) Pending() int { return len(a.buf) }

// Next extracts the next complete frame payload (without the length
// header). It returns (nil, nil) when more bytes are needed, and an
// error when the declared length is invalid; the stream is then
// unrecoverable and the connection should be dropped.
func (a *Accumulator) Next() ([]byte, error) {
	if len(a.buf) < FrameHeaderSize {
		return nil, nil
	}
	declared := int(int32(binary.LittleEndian.Uint32(a.buf)))
	if declared < 0 || declared > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	total := FrameHeaderSize + declared
	if len(a.buf) < total {
		return nil, nil
	}

	frame := make([]byte, declared)
	copy(frame, a.buf[FrameHeaderSize:total])
	// Trim consumed bytes; reslicing would pin the backing array.
	a.buf = append(a.buf[:0], a.buf[total:]...)
	return frame, nil
}
