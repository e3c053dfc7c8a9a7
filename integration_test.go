package main

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testHarness wires a Server's event loop up without binding any real
// listener, then lets tests attach NetworkClients over net.Pipe as if they
// had been accepted off a socket.
type testHarness struct {
	s      *Server
	nextID uint64
}

func newTestHarness(t *testing.T, cfg *Config) *testHarness {
	t.Helper()

	s := newServer(cfg)
	for _, ch := range cfg.Channels {
		s.registry.Channels[ch.NameLower] = ch
	}
	require.NoError(t, s.startBots())

	go s.run()
	t.Cleanup(s.Shutdown)

	return &testHarness{s: s}
}

// connect simulates an accepted connection: a net.Pipe stands in for the
// socket, one end driven by the test as "the client", the other end owned
// by a NetworkClient exactly as acceptLoop would construct one.
func (h *testHarness) connect(t *testing.T) (net.Conn, *bufio.Reader) {
	t.Helper()

	testSide, serverSide := net.Pipe()
	h.nextID++
	nc := newNetworkClient(h.s, h.nextID, &conn{raw: serverSide})
	nc.initialized = true

	h.s.events <- clientEvent{kind: eventAccepted, client: nc}
	go nc.readLoop()
	go nc.writeLoop()

	t.Cleanup(func() { _ = testSide.Close() })

	return testSide, bufio.NewReader(testSide)
}

func sendLine(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	_, err := conn.Write([]byte(line + "\r\n"))
	require.NoError(t, err)
}

// readLine reads one CRLF-terminated line with a generous timeout so a
// missing reply fails the test instead of hanging the suite.
func readLine(t *testing.T, conn net.Conn, r *bufio.Reader) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimRight(line, "\r\n")
}

func testConfig() *Config {
	return &Config{
		ServerName: "irc.example",
		Channels: map[string]*Channel{
			"dev": newChannel("dev", "dev talk", map[string]struct{}{"alice": {}}, false),
		},
	}
}

func TestEndToEndUnregisteredNickRejected(t *testing.T) {
	h := newTestHarness(t, testConfig())
	conn, r := h.connect(t)

	sendLine(t, conn, "NICK 1bad")

	line := readLine(t, conn, r)
	require.Equal(t, ":irc.example 432 * 1bad :Erroneous nickname", line)
}

func TestEndToEndWelcomeFlow(t *testing.T) {
	h := newTestHarness(t, testConfig())
	conn, r := h.connect(t)

	sendLine(t, conn, "NICK alice")
	sendLine(t, conn, "USER a 0 * :A")

	require.Contains(t, readLine(t, conn, r), " 001 ")
	require.Contains(t, readLine(t, conn, r), " 002 ")
	require.Contains(t, readLine(t, conn, r), " 003 ")
	require.Contains(t, readLine(t, conn, r), " 004 ")
	require.Contains(t, readLine(t, conn, r), " 375 ") // RPL_MOTDSTART
	require.Contains(t, readLine(t, conn, r), " 376 ") // RPL_ENDOFMOTD (no MOTD lines configured)
	require.Contains(t, readLine(t, conn, r), "MODE alice +i")
}

func TestEndToEndJoinGrantsVoice(t *testing.T) {
	h := newTestHarness(t, testConfig())
	conn, r := h.connect(t)

	sendLine(t, conn, "NICK alice")
	sendLine(t, conn, "USER a 0 * :A")
	for i := 0; i < 7; i++ {
		readLine(t, conn, r) // drain the welcome block
	}

	sendLine(t, conn, "JOIN #dev")

	require.Equal(t, ":alice!alice@network JOIN #dev", readLine(t, conn, r))
	require.Equal(t, ":ChanServ!chanserv@virtual MODE #dev +v alice", readLine(t, conn, r))
	require.Contains(t, readLine(t, conn, r), " 332 ") // RPL_TOPIC
	require.Contains(t, readLine(t, conn, r), " 353 ") // RPL_NAMREPLY
	require.Contains(t, readLine(t, conn, r), " 366 ") // RPL_ENDOFNAMES
}

func TestEndToEndObserverRefused(t *testing.T) {
	cfg := testConfig()
	cfg.Channels["locked"] = newChannel("locked", "locked room", nil, false)
	h := newTestHarness(t, cfg)
	conn, r := h.connect(t)

	sendLine(t, conn, "NICK bob")
	sendLine(t, conn, "USER b 0 * :B")
	for i := 0; i < 7; i++ {
		readLine(t, conn, r)
	}

	sendLine(t, conn, "JOIN #locked")

	require.Equal(t, fmt.Sprintf(":%s NOTICE bob :You are not allowed to join this channel!", "irc.example"),
		readLine(t, conn, r))
}

func TestEndToEndNickForbiddenAfterIdentify(t *testing.T) {
	cfg := testConfig()
	digest := ""
	for i := 0; i < 64; i++ {
		digest += "aa"
	}
	raw, err := parseDigest(digest)
	require.NoError(t, err)
	cfg.Credentials = CredentialTable{"alice": raw}

	h := newTestHarness(t, cfg)
	conn, r := h.connect(t)

	sendLine(t, conn, "NICK alice")
	sendLine(t, conn, "USER a 0 * :A")
	for i := 0; i < 7; i++ {
		readLine(t, conn, r)
	}
	require.Contains(t, readLine(t, conn, r), "protected") // identify notice

	// Find the NetworkClient the harness just built and flip Identified
	// directly, the way a successful NickServ IDENTIFY would.
	var nc *NetworkClient
	for _, c := range h.s.registry.Connections {
		nc = c
	}
	h.s.events <- clientEvent{kind: eventCallback, fn: func() { nc.onIdentified() }}
	time.Sleep(50 * time.Millisecond)

	sendLine(t, conn, "NICK alice2")

	require.Equal(t, ":irc.example NOTICE alice :You cannot change your nickname after having identified!",
		readLine(t, conn, r))
}
