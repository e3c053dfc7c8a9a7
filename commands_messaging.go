package main

import "strings"

func cmdPrivmsg(s *Server, c *NetworkClient, m Message) {
	if len(m.Params) < 2 {
		if len(m.Params) == 0 {
			c.SendNumericReply(s.config.ServerName, errNoRecipient, []string{"No recipient given (PRIVMSG)"})
		} else {
			c.SendNumericReply(s.config.ServerName, errNoTextToSend, []string{"No text to send"})
		}
		return
	}

	target, text := m.Params[0], m.Params[1]

	if strings.HasPrefix(target, "#") {
		name := strings.TrimPrefix(target, "#")
		ch, ok := s.registry.findChannel(name)
		if !ok {
			c.SendNumericReply(s.config.ServerName, errNoSuchChannel, []string{target, "No such channel"})
			return
		}
		status, member := ch.Members[c]
		if !member || status == NoStatus {
			c.SendNumericReply(s.config.ServerName, errCannotSendToChan, []string{ch.Name, "Cannot send to channel"})
			return
		}
		for peer := range ch.Members {
			if peer == Client(c) {
				continue
			}
			peer.SendIRCMessage(c, "PRIVMSG", []string{ch.Name, text})
		}
		return
	}

	recipient, ok := s.registry.findClient(target)
	if !ok {
		c.SendNumericReply(s.config.ServerName, errNoSuchNick, []string{target, "No such nick/channel"})
		return
	}
	recipient.SendPrivateMessage(c, text)
}

// cmdNS is the "/ns <args>" alias for "PRIVMSG NickServ :<args>". All
// parameters are re-joined with single spaces into one message body.
func cmdNS(s *Server, c *NetworkClient, m Message) {
	nickServ, ok := s.registry.findClient("NickServ")
	if !ok {
		return
	}
	nickServ.SendPrivateMessage(c, strings.Join(m.Params, " "))
}
