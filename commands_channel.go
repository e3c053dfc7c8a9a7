package main

import "strings"

func cmdJoin(s *Server, c *NetworkClient, m Message) {
	if len(m.Params) == 0 {
		c.SendNumericReply(s.config.ServerName, errNeedMoreParams, []string{m.Command, "Not enough parameters"})
		return
	}

	if m.Params[0] == "0" {
		for _, ch := range c.joinedChannels {
			partChannel(s, c, ch)
		}
		return
	}

	if c.reserved && !c.identified {
		c.SendNotice(s.self(), "You must identify before joining a channel.")
		return
	}

	for _, name := range strings.Split(m.Params[0], ",") {
		name = strings.TrimPrefix(strings.TrimSpace(name), "#")
		if name == "" {
			continue
		}
		joinChannel(s, c, name)
	}
}

func joinChannel(s *Server, c *NetworkClient, name string) {
	ch, ok := s.registry.findChannel(name)
	if !ok {
		c.SendNumericReply(s.config.ServerName, errNoSuchChannel, []string{"#" + name, "No such channel"})
		return
	}

	if ch.HasMember(c) {
		return
	}

	voice := ch.VoiceEligible(c)
	if !ch.AllowObservers && !voice {
		c.SendNotice(s.self(), "You are not allowed to join this channel!")
		return
	}

	status := NoStatus
	if voice {
		status = Voice
	}
	ch.Members[c] = status
	c.joinedChannels[ch.NameLower] = ch

	for member := range ch.Members {
		member.SendIRCMessage(c, "JOIN", []string{ch.Name})
	}

	if voice {
		if chanServ, ok := s.chanServ.bot.(*ChanServ); ok {
			chanServ.AnnounceVoice(ch, c)
		}
	}

	sendTopic(s, c, ch)
	sendNames(s, c, ch)
}

func cmdPart(s *Server, c *NetworkClient, m Message) {
	if len(m.Params) == 0 {
		c.SendNumericReply(s.config.ServerName, errNeedMoreParams, []string{m.Command, "Not enough parameters"})
		return
	}

	for _, name := range strings.Split(m.Params[0], ",") {
		name = strings.TrimPrefix(strings.TrimSpace(name), "#")
		if name == "" {
			continue
		}

		ch, ok := s.registry.findChannel(name)
		if !ok {
			c.SendNumericReply(s.config.ServerName, errNoSuchChannel, []string{"#" + name, "No such channel"})
			continue
		}
		if !ch.HasMember(c) {
			c.SendNumericReply(s.config.ServerName, errNotOnChannel, []string{ch.Name, "You're not on that channel"})
			continue
		}

		partChannel(s, c, ch)
	}
}

// partChannel broadcasts the PART to every current member (the leaver
// included), then removes both sides of the membership.
func partChannel(s *Server, c *NetworkClient, ch *Channel) {
	for member := range ch.Members {
		member.SendIRCMessage(c, "PART", []string{ch.Name})
	}
	delete(ch.Members, c)
	delete(c.joinedChannels, ch.NameLower)
}

func cmdTopic(s *Server, c *NetworkClient, m Message) {
	if len(m.Params) == 0 {
		c.SendNumericReply(s.config.ServerName, errNeedMoreParams, []string{m.Command, "Not enough parameters"})
		return
	}
	name := strings.TrimPrefix(m.Params[0], "#")

	ch, ok := s.registry.findChannel(name)
	if !ok {
		c.SendNumericReply(s.config.ServerName, errNoSuchChannel, []string{"#" + name, "No such channel"})
		return
	}

	// A second parameter would request a topic change; that's refused
	// silently since topics are immutable after load.
	sendTopic(s, c, ch)
}

func sendTopic(s *Server, c *NetworkClient, ch *Channel) {
	if ch.Topic == "" {
		c.SendNumericReply(s.config.ServerName, rplNoTopic, []string{ch.Name, "No topic is set"})
		return
	}
	c.SendNumericReply(s.config.ServerName, rplTopic, []string{ch.Name, ch.Topic})
}

func cmdNames(s *Server, c *NetworkClient, m Message) {
	if len(m.Params) == 0 {
		return
	}

	for _, name := range strings.Split(m.Params[0], ",") {
		name = strings.TrimPrefix(strings.TrimSpace(name), "#")
		if name == "" {
			continue
		}
		ch, ok := s.registry.findChannel(name)
		if !ok {
			c.SendNumericReply(s.config.ServerName, rplEndOfNames, []string{"#" + name, "End of NAMES list"})
			continue
		}
		sendNames(s, c, ch)
	}
}

func sendNames(s *Server, c *NetworkClient, ch *Channel) {
	var names []string
	for member, status := range ch.Members {
		n := member.Nickname()
		if status == Voice {
			n = "+" + n
		}
		names = append(names, n)
	}
	c.SendNumericReply(s.config.ServerName, rplNamReply, []string{"=", ch.Name, strings.Join(names, " ")})
	c.SendNumericReply(s.config.ServerName, rplEndOfNames, []string{ch.Name, "End of NAMES list"})
}
