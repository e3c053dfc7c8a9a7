package main

// ChanServ is the bot that publishes a MODE +v broadcast whenever a JOIN
// grants voice. It auto-joins every configured channel at startup so it
// shows up in NAMES alongside real members, the way the original
// service does, even though it never sends a JOIN line itself (it's
// registered directly into channel membership by postJoin).
type ChanServ struct {
	vc *VirtualClient
	s  *Server
}

func newChanServ() *ChanServ {
	return &ChanServ{}
}

// Init records the server handle; channel membership is seeded afterwards
// by postJoin.
func (cs *ChanServ) Init(s *Server) bool {
	cs.s = s
	return true
}

// postJoin runs once bots are registered and channels are loaded,
// recording ChanServ's own VirtualClient handle and seeding membership.
func (cs *ChanServ) postJoin(vc *VirtualClient) {
	cs.vc = vc
	for _, ch := range cs.s.registry.Channels {
		ch.Members[vc] = NoStatus
	}
}

func (cs *ChanServ) ReceiveIRCMessage(Client, string, []string) {}

func (cs *ChanServ) ReceivePrivateMessage(Client, string) {}

// AnnounceVoice broadcasts ":ChanServ!chanserv@virtual MODE #chan +v nick"
// to every current member of ch, including the newly-joined member. The
// JOIN handler calls this only after its own JOIN broadcast has gone out,
// preserving the ordering contract: JOIN before MODE +v.
func (cs *ChanServ) AnnounceVoice(ch *Channel, member Client) {
	for peer := range ch.Members {
		peer.SendIRCMessage(cs.vc, "MODE", []string{ch.Name, "+v", member.Nickname()})
	}
}
