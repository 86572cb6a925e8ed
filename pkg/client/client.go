// Package client implements a headless Final Aisle protocol client,
// used for integration debugging against a live server.
package client

import (
	"fmt"
	"net"
	"time"

	"github.com/TripleSteak/Final-Aisle/pkg/crypto"
	"github.com/TripleSteak/Final-Aisle/pkg/packet"
	"github.com/TripleSteak/Final-Aisle/pkg/wire"
)

const handshakeTimeout = 10 * time.Second

// Client is one connection to the game server. Not safe for
// concurrent use.
type Client struct {
	conn  net.Conn
	codec *wire.Codec
	acc   wire.Accumulator
	buf   []byte
}

// Dial connects, performs the key exchange, and confirms the secure
// channel. On return the connection is ready for game traffic.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: dial: %w", err)
	}
	c := &Client{conn: conn, buf: make([]byte, 4096)}
	if err := c.handshake(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

// Close shuts the connection down.
func (c *Client) Close() error {
	return c.conn.Close()
}

// handshake sends our public key and installs the codec from the
// server's wrapped session key reply.
func (c *Client) handshake() error {
	priv, err := crypto.GenerateHandshakeKey()
	if err != nil {
		return fmt.Errorf("client: generate keypair: %w", err)
	}
	der, err := crypto.MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		return fmt.Errorf("client: marshal public key: %w", err)
	}
	compressed, err := wire.Compress(der)
	if err != nil {
		return fmt.Errorf("client: compress public key: %w", err)
	}

	_ = c.conn.SetDeadline(time.Now().Add(handshakeTimeout))
	defer func() { _ = c.conn.SetDeadline(time.Time{}) }()

	if _, err := c.conn.Write(wire.PrependLength(compressed)); err != nil {
		return fmt.Errorf("client: send public key: %w", err)
	}

	frame, err := c.nextFrame()
	if err != nil {
		return fmt.Errorf("client: read session key: %w", err)
	}
	wrapped, err := wire.Decompress(frame)
	if err != nil {
		return fmt.Errorf("client: decompress session key: %w", err)
	}
	key, err := crypto.UnwrapSessionKey(priv, wrapped)
	if err != nil {
		return fmt.Errorf("client: unwrap session key: %w", err)
	}
	if c.codec, err = wire.NewCodec(key); err != nil {
		return fmt.Errorf("client: build codec: %w", err)
	}

	// Prove to the server we can speak the encrypted channel.
	return c.Send(packet.NewEmpty(packet.KeySecureEstablished))
}

// Send encodes and writes one packet.
func (c *Client) Send(pkt packet.Packet) error {
	raw, err := packet.Marshal(pkt)
	if err != nil {
		return fmt.Errorf("client: marshal %s: %w", pkt.Key(), err)
	}
	frame, err := c.codec.Encode(raw)
	if err != nil {
		return fmt.Errorf("client: encode %s: %w", pkt.Key(), err)
	}
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("client: write %s: %w", pkt.Key(), err)
	}
	return nil
}

// Recv blocks until the next packet arrives or the deadline passes.
// Pass zero to wait indefinitely.
func (c *Client) Recv(timeout time.Duration) (packet.Packet, error) {
	if timeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
		defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	}
	frame, err := c.nextFrame()
	if err != nil {
		return packet.Packet{}, fmt.Errorf("client: read frame: %w", err)
	}
	raw, err := c.codec.Decode(frame)
	if err != nil {
		return packet.Packet{}, fmt.Errorf("client: decode frame: %w", err)
	}
	return packet.Unmarshal(raw)
}

// Register starts a registration for the given credentials.
func (c *Client) Register(email, username, password string) error {
	pkt, err := packet.NewComposite(packet.KeyTryNewAccount, email, username, password)
	if err != nil {
		return err
	}
	return c.Send(pkt)
}

// VerifyEmail submits a verification code.
func (c *Client) VerifyEmail(code string) error {
	return c.Send(packet.NewString(packet.KeyTryVerifyEmail, code))
}

// Login authenticates with an email or username plus password.
func (c *Client) Login(identifier, password string) error {
	pkt, err := packet.NewComposite(packet.KeyTryLogin, identifier, password)
	if err != nil {
		return err
	}
	return c.Send(pkt)
}

// nextFrame reads from the socket until one whole frame is buffered.
func (c *Client) nextFrame() ([]byte, error) {
	for {
		frame, err := c.acc.Next()
		if err != nil {
			return nil, err
		}
		if frame != nil {
			return frame, nil
		}
		n, err := c.conn.Read(c.buf)
		if n > 0 {
			c.acc.Push(c.buf[:n])
		}
		if err != nil {
			return nil, err
		}
	}
}
