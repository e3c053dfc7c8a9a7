package main

func cmdPing(s *Server, c *NetworkClient, m Message) {
	if len(m.Params) == 0 {
		c.SendNumericReply(s.config.ServerName, errNeedMoreParams, []string{m.Command, "Not enough parameters"})
		return
	}
	c.SendIRCMessage(s.self(), "PONG", []string{s.config.ServerName, m.Params[0]})
}

// cmdPong's payload is ignored; receiving it simply means the client is
// alive, advancing the deadline state machine back to the next ping
// interval.
func cmdPong(s *Server, c *NetworkClient, m Message) {
	c.onPong()
}

// cmdQuit runs the centralized disconnect procedure with a fixed reason;
// any client-supplied reason is ignored.
func cmdQuit(s *Server, c *NetworkClient, m Message) {
	s.disconnectClient(c, "Quit")
}

func cmdMotd(s *Server, c *NetworkClient, m Message) {
	sendMOTD(s, c)
}

func cmdInfo(s *Server, c *NetworkClient, m Message) {
	name := s.config.ServerName
	c.SendNumericReply(name, rplInfo, []string{name})
	c.SendNumericReply(name, rplEndOfInfo, []string{"End of INFO list"})
}

func cmdVersion(s *Server, c *NetworkClient, m Message) {
	name := s.config.ServerName
	c.SendNumericReply(name, rplVersion, []string{"rosevircd", name})
}
