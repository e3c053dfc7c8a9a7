package main

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

// Deadline durations for the per-client state machine.
const (
	registrationTimeout = 120 * time.Second
	identifyTimeout     = 240 * time.Second
	pingInterval        = 120 * time.Second
	pingTimeout         = 60 * time.Second
)

// deadlinePhase names where a NetworkClient sits in the single deadline
// state machine below. Exactly one deadline is ever outstanding at a time.
type deadlinePhase int

const (
	phaseAwaitingRegistration deadlinePhase = iota
	phaseAwaitingIdentify
	phaseAlive // idle, waiting out pingInterval before we PING
	phaseAwaitingPong
	phaseNone // no deadline armed (before accept, and during teardown)
)

// eventKind distinguishes the events the single server goroutine consumes
// from client reader/writer/timer goroutines.
type eventKind int

const (
	eventAccepted eventKind = iota
	eventMessage
	eventDead
	eventTimerFired
	eventTLSHandshakeDone
	// eventCallback runs an arbitrary closure on the server's single event
	// loop goroutine. Used by bots (VoteBot's ballot timer) that need to
	// mutate shared state from a timer without a NetworkClient of their own.
	eventCallback
)

// clientEvent is how readLoop/writeLoop/timers report back to the single
// server goroutine that owns all registry and channel state. Nothing
// outside Server.run ever mutates a NetworkClient's registration state,
// channel membership, or the registries themselves.
type clientEvent struct {
	kind     eventKind
	client   *NetworkClient
	message  Message
	err      error
	timerSeq uint64
	tlsOK    bool
	fn       func()
}

// NetworkClient is a live TCP (plain or TLS) connection. It owns exactly one
// reusable deadline timer and a single-writer send queue.
type NetworkClient struct {
	id     uint64
	conn   *conn
	server *Server

	frames frameReader

	writeQueue chan string

	nickname      string
	nicknameLower string
	userSent      bool
	nickSent      bool
	identified    bool

	// reserved is true once we know (from the credential table) that this
	// client's chosen nick requires identification.
	reserved bool

	joinedChannels map[string]*Channel // keyed by Channel.NameLower

	phase    deadlinePhase
	timer    *time.Timer
	timerSeq uint64 // bumped on every (re)schedule; stale firings are ignored

	// initialized is false until any required TLS handshake completes. No
	// ERROR farewell is sent on teardown while false.
	initialized bool

	shutdownComplete bool
}

func newNetworkClient(s *Server, id uint64, c *conn) *NetworkClient {
	return &NetworkClient{
		id:             id,
		conn:           c,
		server:         s,
		writeQueue:     make(chan string, 512),
		joinedChannels: make(map[string]*Channel),
		phase:          phaseNone,
		initialized:    !c.isTLS,
	}
}

func (c *NetworkClient) String() string {
	return fmt.Sprintf("client#%d", c.id)
}

func (c *NetworkClient) Nickname() string      { return c.nickname }
func (c *NetworkClient) NicknameLower() string { return c.nicknameLower }
func (c *NetworkClient) IsNetworkClient() bool { return true }

func (c *NetworkClient) Prefix() string {
	return c.nickname + "!" + c.nicknameLower + "@network"
}

func (c *NetworkClient) registered() bool {
	return c.nickSent && c.userSent
}

// SendIRCMessage renders and enqueues a line attributed to from.
func (c *NetworkClient) SendIRCMessage(from Client, command string, params []string) {
	c.enqueue(Message{Prefix: from.Prefix(), Command: command, Params: params})
}

func (c *NetworkClient) SendNotice(from Client, text string) {
	c.enqueue(Message{Prefix: from.Prefix(), Command: "NOTICE", Params: []string{c.nickname, text}})
}

func (c *NetworkClient) SendPrivateMessage(from Client, text string) {
	c.enqueue(Message{Prefix: from.Prefix(), Command: "PRIVMSG", Params: []string{c.nickname, text}})
}

func (c *NetworkClient) SendNumericReply(serverName, numeric string, params []string) {
	target := c.nickname
	if target == "" {
		target = "*"
	}
	full := append([]string{target}, params...)
	c.enqueue(Message{Prefix: serverName, Command: numeric, Params: full})
}

// enqueue never blocks the caller (which runs on the single server
// goroutine): the queue is sized generously, and a client that can't keep up
// is the sort of problem that shows up as a dead write loop, not a server
// stall.
func (c *NetworkClient) enqueue(m Message) {
	select {
	case c.writeQueue <- m.Encode():
	default:
		log.Printf("%s: write queue full, dropping connection", c)
		go func() {
			c.server.events <- clientEvent{kind: eventDead, client: c, err: fmt.Errorf("send queue exceeded")}
		}()
	}
}

// readLoop reads and frames bytes off the socket, posting one eventMessage
// per parsed line (or an eventDead on I/O or framing failure) to the
// server's event channel. It never touches shared state directly.
func (c *NetworkClient) readLoop() {
	buf := make([]byte, readBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			c.server.events <- clientEvent{kind: eventDead, client: c, err: err}
			return
		}

		lines, ferr := c.frames.Feed(buf[:n])
		for _, line := range lines {
			msg, perr := ParseMessage(line)
			if perr != nil {
				// Malformed input is a session-fatal framing violation.
				c.server.events <- clientEvent{kind: eventDead, client: c, err: perr}
				return
			}
			c.server.events <- clientEvent{kind: eventMessage, client: c, message: msg}
		}
		if ferr != nil {
			c.server.events <- clientEvent{kind: eventDead, client: c, err: ferr}
			return
		}
	}
}

// writeLoop drains the send queue to the socket, one write in flight at a
// time.
func (c *NetworkClient) writeLoop() {
	for line := range c.writeQueue {
		if err := c.conn.Write([]byte(line)); err != nil {
			c.server.events <- clientEvent{kind: eventDead, client: c, err: err}
			return
		}
	}
}

// scheduleDeadline cancels whatever deadline is outstanding and arms a new
// one. Only the server goroutine calls this.
func (c *NetworkClient) scheduleDeadline(phase deadlinePhase, d time.Duration) {
	if c.timer != nil {
		c.timer.Stop()
	}
	seq := atomic.AddUint64(&c.timerSeq, 1)
	c.phase = phase
	c.timer = time.AfterFunc(d, func() {
		c.server.events <- clientEvent{kind: eventTimerFired, client: c, timerSeq: seq}
	})
}

// cancelDeadline disarms the current timer without arming a replacement
// (used during teardown).
func (c *NetworkClient) cancelDeadline() {
	if c.timer != nil {
		c.timer.Stop()
	}
	atomic.AddUint64(&c.timerSeq, 1)
	c.phase = phaseNone
}

// onPong transitions Alive <- AwaitingPong, rescheduling the next ping
// interval. A PONG in any other phase leaves the outstanding deadline alone.
func (c *NetworkClient) onPong() {
	if c.phase != phaseAwaitingPong {
		return
	}
	c.scheduleDeadline(phaseAlive, pingInterval)
}

// startPostWelcomeDeadline arms the next deadline once NICK+USER both
// landed: straight to the ping interval for an unreserved nick, or to the
// identify window for a reserved one.
func (c *NetworkClient) startPostWelcomeDeadline() {
	if c.reserved && !c.identified {
		c.scheduleDeadline(phaseAwaitingIdentify, identifyTimeout)
		return
	}
	c.scheduleDeadline(phaseAlive, pingInterval)
}

// onIdentified is called by NickServ's integration point when IDENTIFY
// succeeds. It flips the Identified flag and, if the identify deadline was
// the one outstanding, cancels it in favour of the ping interval.
func (c *NetworkClient) onIdentified() {
	c.identified = true
	if c.phase == phaseAwaitingIdentify {
		c.scheduleDeadline(phaseAlive, pingInterval)
	}
}
