package client_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TripleSteak/Final-Aisle/pkg/client"
	"github.com/TripleSteak/Final-Aisle/pkg/datastore"
	"github.com/TripleSteak/Final-Aisle/pkg/email"
	"github.com/TripleSteak/Final-Aisle/pkg/packet"
	"github.com/TripleSteak/Final-Aisle/pkg/server"
)

const recvTimeout = 5 * time.Second

func startTestServer(t *testing.T) (*server.Server, datastore.AccountStore) {
	t.Helper()

	st := datastore.NewMemoryStore()
	cfg := server.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.MetricsAddr = ""
	srv := server.New(cfg, server.Dependencies{
		Store: st,
		Mail:  &email.LogSender{Log: slog.New(slog.NewTextHandler(io.Discard, nil))},
	})
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Shutdown)
	return srv, st
}

// TestLoginOverWire drives a real TCP connection through the key
// exchange and a login, asserting on the packets that come back.
func TestLoginOverWire(t *testing.T) {
	srv, st := startTestServer(t)
	_, err := st.CreateAccount("it@example.com", "ituser", "hunter2")
	require.NoError(t, err)

	c, err := client.Dial(srv.Addr())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Login("ituser", "hunter2"))

	pkt, err := c.Recv(recvTimeout)
	require.NoError(t, err)
	require.Equal(t, packet.KeyLoginSuccess, pkt.Key())
	require.Equal(t, packet.TypeEmpty, pkt.Type())

	pkt, err = c.Recv(recvTimeout)
	require.NoError(t, err)
	require.Equal(t, packet.KeyCharacterInfo, pkt.Key())
	comp, err := pkt.Composite()
	require.NoError(t, err)
	require.Equal(t, 8, comp.Len())
	name, err := comp.String(1)
	require.NoError(t, err)
	require.Equal(t, "ituser's character", name)
}

func TestLoginFailOverWire(t *testing.T) {
	srv, _ := startTestServer(t)

	c, err := client.Dial(srv.Addr())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Login("nobody", "pw"))
	pkt, err := c.Recv(recvTimeout)
	require.NoError(t, err)
	require.Equal(t, packet.KeyLoginFail, pkt.Key())
}

// TestPresenceOverWire logs two clients in and checks that the first
// hears about the second, while the second is told who was already
// there.
func TestPresenceOverWire(t *testing.T) {
	srv, st := startTestServer(t)
	_, err := st.CreateAccount("one@example.com", "one", "pw")
	require.NoError(t, err)
	_, err = st.CreateAccount("two@example.com", "two", "pw")
	require.NoError(t, err)

	first, err := client.Dial(srv.Addr())
	require.NoError(t, err)
	defer first.Close()
	require.NoError(t, first.Login("one", "pw"))
	for _, want := range []string{packet.KeyLoginSuccess, packet.KeyCharacterInfo} {
		pkt, err := first.Recv(recvTimeout)
		require.NoError(t, err)
		require.Equal(t, want, pkt.Key())
	}

	second, err := client.Dial(srv.Addr())
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Login("two", "pw"))
	for _, want := range []string{packet.KeyLoginSuccess, packet.KeyCharacterInfo} {
		pkt, err := second.Recv(recvTimeout)
		require.NoError(t, err)
		require.Equal(t, want, pkt.Key())
	}

	pkt, err := first.Recv(recvTimeout)
	require.NoError(t, err)
	require.Equal(t, packet.KeyPlayerConnected, pkt.Key())
	comp, err := pkt.Composite()
	require.NoError(t, err)
	require.Equal(t, 5, comp.Len())
	name, err := comp.String(2)
	require.NoError(t, err)
	require.Equal(t, "two's character", name)

	// Asking for the world roster replays the first player to the
	// second, unicast.
	require.NoError(t, second.Send(packet.NewEmpty(packet.KeyPlayerPostConnect)))
	pkt, err = second.Recv(recvTimeout)
	require.NoError(t, err)
	require.Equal(t, packet.KeyPlayerConnected, pkt.Key())
	comp, err = pkt.Composite()
	require.NoError(t, err)
	name, err = comp.String(2)
	require.NoError(t, err)
	require.Equal(t, "one's character", name)
}
