package main

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

// serverIdentity is the Client used as the sender of server-originated
// lines that aren't attributed to a bot (PING, and the prefix on numeric
// replies). It never receives anything itself.
type serverIdentity struct {
	name string
}

func (s *serverIdentity) Nickname() string      { return s.name }
func (s *serverIdentity) NicknameLower() string { return strings.ToLower(s.name) }
func (s *serverIdentity) Prefix() string        { return s.name }
func (s *serverIdentity) IsNetworkClient() bool { return false }
func (s *serverIdentity) SendIRCMessage(Client, string, []string)     {}
func (s *serverIdentity) SendNotice(Client, string)                   {}
func (s *serverIdentity) SendPrivateMessage(Client, string)           {}
func (s *serverIdentity) SendNumericReply(string, string, []string)   {}

// Server is the composition root: configuration, the naming registry, the
// set of live listeners, the bot roster, and the single event channel that
// every connection/timer goroutine reports back to. Only the goroutine
// running run() ever touches the Registry or a Channel's member map.
type Server struct {
	config   *Config
	registry *Registry
	identity *serverIdentity

	events chan clientEvent

	nextID uint64

	listeners []net.Listener

	bots map[string]*VirtualClient

	// chanServ is kept as a direct handle because JOIN's voice-grant
	// broadcast calls into it deliberately, rather than going through the
	// generic PRIVMSG/fan-out path.
	chanServ *VirtualClient

	done chan struct{}
}

func newServer(cfg *Config) *Server {
	return &Server{
		config:   cfg,
		registry: newRegistry(),
		identity: &serverIdentity{name: cfg.ServerName},
		events:   make(chan clientEvent, 256),
		bots:     make(map[string]*VirtualClient),
		done:     make(chan struct{}),
	}
}

func (s *Server) self() Client { return s.identity }

// Start binds the configured listeners, launches the accept loops, starts
// every enabled bot, and enters the event loop. It returns once Shutdown
// has completed the teardown.
func (s *Server) Start() error {
	for _, ch := range s.config.Channels {
		s.registry.Channels[ch.NameLower] = ch
	}

	if err := s.startBots(); err != nil {
		return err
	}

	var tlsConfig *tls.Config
	if s.config.UseSSL {
		var err error
		tlsConfig, err = buildTLSConfig(s.config.SSLCert, s.config.SSLKey)
		if err != nil {
			return errors.Wrap(err, "unable to build TLS configuration")
		}
	}

	if s.config.UseIPv4 {
		ln, err := net.Listen("tcp4", fmt.Sprintf(":%s", s.config.Port))
		if err != nil {
			return errors.Wrap(err, "unable to listen on IPv4")
		}
		s.listeners = append(s.listeners, ln)
		go s.acceptLoop(ln, tlsConfig)
	}

	if s.config.UseIPv6 {
		ln, err := net.Listen("tcp6", fmt.Sprintf(":%s", s.config.Port))
		if err != nil {
			return errors.Wrap(err, "unable to listen on IPv6")
		}
		s.listeners = append(s.listeners, ln)
		go s.acceptLoop(ln, tlsConfig)
	}

	s.run()
	return nil
}

func (s *Server) startBots() error {
	if s.config.LogBot != nil {
		bot := newLogBot(s.config.LogBot)
		if s.registerBot("LogBot", bot) != nil {
			bot.seedMembership(s)
		}
	}

	s.chanServ = s.registerBot("ChanServ", newChanServ())

	s.registerBot("NickServ", newNickServ())

	if s.config.VoteBotManager != nil {
		for id, vbCfg := range s.config.VoteBots {
			bot := newVoteBot(vbCfg)
			s.registerBot(voteBotNickname(id), bot)
		}
	}

	return nil
}

func (s *Server) registerBot(nickname string, bot Bot) *VirtualClient {
	vc := newVirtualClient(nickname, bot)
	if !bot.Init(s) {
		log.Printf("bot %s: disabled (Init declined)", nickname)
		return nil
	}
	s.registry.bindNick(canonicalizeNick(nickname), vc)
	s.bots[canonicalizeNick(nickname)] = vc
	if pj, ok := bot.(interface{ postJoin(*VirtualClient) }); ok {
		pj.postJoin(vc)
	}
	return vc
}

func (s *Server) acceptLoop(ln net.Listener, tlsConfig *tls.Config) {
	for {
		raw, err := ln.Accept()
		if err != nil {
			return
		}

		id := atomic.AddUint64(&s.nextID, 1)

		isTLS := tlsConfig != nil
		var transport net.Conn = raw
		if isTLS {
			transport = tls.Server(raw, tlsConfig)
		}

		c, err := newConn(transport, isTLS)
		if err != nil {
			log.Printf("rejecting connection: %s", err)
			_ = raw.Close()
			continue
		}

		nc := newNetworkClient(s, id, c)
		s.events <- clientEvent{kind: eventAccepted, client: nc}

		go nc.readLoop()
		go nc.writeLoop()

		if isTLS {
			go s.handshakeTLS(nc, transport.(*tls.Conn))
		}
	}
}

func (s *Server) handshakeTLS(nc *NetworkClient, tlsConn *tls.Conn) {
	err := tlsConn.Handshake()
	s.events <- clientEvent{kind: eventTLSHandshakeDone, client: nc, err: err, tlsOK: err == nil}
}

// run is the single event loop. Every mutation of the registry, every
// channel membership change, and every fan-out happens here and only here.
func (s *Server) run() {
	for {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)
		case <-s.done:
			return
		}
	}
}

func (s *Server) handleEvent(ev clientEvent) {
	switch ev.kind {
	case eventAccepted:
		s.registry.Connections[ev.client.id] = ev.client
		ev.client.scheduleDeadline(phaseAwaitingRegistration, registrationTimeout)

	case eventTLSHandshakeDone:
		if !ev.tlsOK {
			s.disconnectClient(ev.client, "TLS handshake failed")
			return
		}
		ev.client.initialized = true

	case eventMessage:
		s.dispatch(ev.client, ev.message)

	case eventTimerFired:
		s.handleTimerFired(ev.client, ev.timerSeq)

	case eventDead:
		reason := "Connection reset"
		if ev.err != nil {
			reason = ev.err.Error()
		}
		s.disconnectClient(ev.client, reason)

	case eventCallback:
		ev.fn()
	}
}

// handleTimerFired advances a client's deadline state machine. A firing
// whose sequence number doesn't match the client's current timer generation
// raced with whatever canceled it and is ignored.
func (s *Server) handleTimerFired(c *NetworkClient, seq uint64) {
	if seq != atomic.LoadUint64(&c.timerSeq) {
		return
	}

	switch c.phase {
	case phaseAwaitingRegistration:
		s.disconnectClient(c, "Nick timeout")
	case phaseAwaitingIdentify:
		s.disconnectClient(c, "Identify timeout")
	case phaseAlive:
		c.SendIRCMessage(s.self(), "PING", []string{s.config.ServerName})
		c.scheduleDeadline(phaseAwaitingPong, pingTimeout)
	case phaseAwaitingPong:
		s.disconnectClient(c, fmt.Sprintf("Ping timeout: %d seconds", int(pingTimeout.Seconds())))
	}
}

// disconnectClient runs the centralized, idempotent teardown: cancel the
// timer, broadcast QUIT to every unique peer across joined channels, remove
// from every channel, remove from the nickname registry, send the ERROR
// farewell if the session ever finished any required TLS handshake, close
// the socket, and drop it from the connection set.
func (s *Server) disconnectClient(c *NetworkClient, reason string) {
	if c.shutdownComplete {
		return
	}
	c.shutdownComplete = true

	c.cancelDeadline()

	if c.nickname != "" {
		for _, peer := range peersOf(c, c.joinedChannels) {
			peer.SendIRCMessage(c, "QUIT", []string{reason})
		}
		for _, ch := range c.joinedChannels {
			delete(ch.Members, c)
		}
		c.joinedChannels = make(map[string]*Channel)
		s.registry.unbindNick(c.nicknameLower)
	}

	if c.initialized {
		who := c.nickname
		if who == "" {
			who = "*"
		}
		c.enqueue(Message{
			Command: "ERROR",
			Params:  []string{fmt.Sprintf("Closing Link: %s (%s)", who, reason)},
		})
	}

	close(c.writeQueue)
	_ = c.conn.Close()

	delete(s.registry.Connections, c.id)
}

// Shutdown cancels every outstanding client timer, closes every socket,
// clears the connection set, then clears the listener set, and finally
// stops the event loop. It may be called from any goroutine: the actual
// teardown runs on the event loop goroutine like every other registry
// mutation, and Shutdown blocks until that has happened.
func (s *Server) Shutdown() {
	finished := make(chan struct{})
	s.events <- clientEvent{kind: eventCallback, fn: func() {
		s.shutdownOnEventLoop()
		close(finished)
	}}
	<-finished
}

func (s *Server) shutdownOnEventLoop() {
	for _, c := range s.registry.Connections {
		s.disconnectClient(c, "Server shutting down")
	}
	for _, ln := range s.listeners {
		_ = ln.Close()
	}
	s.listeners = nil

	for _, vc := range s.bots {
		if closer, ok := vc.bot.(interface{ Close() }); ok {
			closer.Close()
		}
	}

	close(s.done)
}
