package main

import "fmt"

func cmdNick(s *Server, c *NetworkClient, m Message) {
	if len(m.Params) == 0 {
		c.SendNumericReply(s.config.ServerName, errNoNicknameGiven, []string{"No nickname given"})
		return
	}
	nick := m.Params[0]

	if nick == c.nickname {
		return
	}

	if c.identified {
		c.SendNotice(s.self(), "You cannot change your nickname after having identified!")
		return
	}

	if !isValidNick(maxNickLength, nick) {
		c.SendNumericReply(s.config.ServerName, errErroneousNick, []string{nick, "Erroneous nickname"})
		return
	}

	nickLower := canonicalizeNick(nick)

	if existing, ok := s.registry.findClient(nick); ok && existing != Client(c) {
		c.SendNumericReply(s.config.ServerName, errNicknameInUse, []string{nick, "Nickname is already in use"})
		return
	}

	if c.nickname != "" {
		if len(c.joinedChannels) > 0 {
			c.SendNotice(s.self(), "You cannot change your nickname while on a channel!")
			return
		}

		oldPrefix := c.Prefix()
		s.registry.unbindNick(c.nicknameLower)
		c.nickname = nick
		c.nicknameLower = nickLower
		s.registry.bindNick(nickLower, c)
		c.reserved = s.config.Credentials.IsReserved(nickLower)
		c.SendIRCMessage(&prefixOnly{oldPrefix}, "NICK", []string{nick})
		return
	}

	c.nickname = nick
	c.nicknameLower = nickLower
	c.nickSent = true
	s.registry.bindNick(nickLower, c)
	c.reserved = s.config.Credentials.IsReserved(nickLower)

	if c.userSent {
		s.welcome(c)
	}
}

// prefixOnly is a throwaway Client used only so SendIRCMessage can attribute
// a line to a prefix string that no longer has a live Client behind it (a
// nick the sender just changed away from).
type prefixOnly struct{ prefix string }

func (p *prefixOnly) Nickname() string                              { return "" }
func (p *prefixOnly) NicknameLower() string                         { return "" }
func (p *prefixOnly) Prefix() string                                 { return p.prefix }
func (p *prefixOnly) IsNetworkClient() bool                          { return false }
func (p *prefixOnly) SendIRCMessage(Client, string, []string)        {}
func (p *prefixOnly) SendNotice(Client, string)                      {}
func (p *prefixOnly) SendPrivateMessage(Client, string)              {}
func (p *prefixOnly) SendNumericReply(string, string, []string)      {}

func cmdUser(s *Server, c *NetworkClient, m Message) {
	c.userSent = true

	if c.nickname != "" {
		s.welcome(c)
	}
}

// welcome sends the registration numerics, the MOTD, the compatibility
// +i MODE line, a protection notice if the nick is reserved, and arms the
// post-welcome deadline.
func (s *Server) welcome(c *NetworkClient) {
	name := s.config.ServerName

	c.SendNumericReply(name, rplWelcome, []string{fmt.Sprintf("Welcome to the network, %s", c.nickname)})
	c.SendNumericReply(name, rplYourHost, []string{fmt.Sprintf("Your host is %s", name)})
	c.SendNumericReply(name, rplCreated, []string{"This server has no particular creation date"})
	c.SendNumericReply(name, rplMyInfo, []string{name})

	sendMOTD(s, c)

	c.SendIRCMessage(c, "MODE", []string{c.nickname, "+i"})

	if c.reserved && !c.identified {
		c.SendNotice(s.self(), "This nickname is protected. If it is registered to you, identify via /msg NickServ IDENTIFY <password>.")
	}

	c.startPostWelcomeDeadline()
}

func sendMOTD(s *Server, c *NetworkClient) {
	name := s.config.ServerName
	c.SendNumericReply(name, rplMotdStart, []string{fmt.Sprintf("- %s Message of the Day -", name)})
	for _, line := range s.config.MOTD {
		c.SendNumericReply(name, rplMotd, []string{"- " + line})
	}
	c.SendNumericReply(name, rplEndOfMotd, []string{"End of MOTD command"})
}
