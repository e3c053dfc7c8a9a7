package main

import "testing"

// fakeClient is a minimal Client used by tests that don't need a real
// socket or bot behind them.
type fakeClient struct {
	nick       string
	isNetwork  bool
	notices    []string
	privateMsg []string
}

func newFakeClient(nick string, isNetwork bool) *fakeClient {
	return &fakeClient{nick: nick, isNetwork: isNetwork}
}

func (f *fakeClient) Nickname() string      { return f.nick }
func (f *fakeClient) NicknameLower() string { return canonicalizeNick(f.nick) }
func (f *fakeClient) Prefix() string        { return f.nick + "!" + f.NicknameLower() + "@test" }
func (f *fakeClient) IsNetworkClient() bool { return f.isNetwork }

func (f *fakeClient) SendIRCMessage(Client, string, []string) {}
func (f *fakeClient) SendNotice(from Client, text string) {
	f.notices = append(f.notices, text)
}
func (f *fakeClient) SendPrivateMessage(from Client, text string) {
	f.privateMsg = append(f.privateMsg, text)
}
func (f *fakeClient) SendNumericReply(string, string, []string) {}

func TestChannelVoiceEligible(t *testing.T) {
	alice := newFakeClient("alice", true)
	bob := newFakeClient("bob", true)
	chanServ := newFakeClient("ChanServ", false)

	ch := newChannel("dev", "dev talk", map[string]struct{}{"alice": {}}, false)

	if !ch.VoiceEligible(alice) {
		t.Errorf("alice should be voice-eligible")
	}
	if ch.VoiceEligible(bob) {
		t.Errorf("bob should not be voice-eligible")
	}
	if !ch.VoiceEligible(chanServ) {
		t.Errorf("a virtual client should always be voice-eligible")
	}
}

func TestChannelMembership(t *testing.T) {
	alice := newFakeClient("alice", true)
	ch := newChannel("dev", "dev talk", nil, true)

	if ch.HasMember(alice) {
		t.Fatalf("alice should not be a member yet")
	}

	ch.Members[alice] = Voice
	if !ch.HasMember(alice) {
		t.Errorf("alice should be a member")
	}
}

func TestPeersOf(t *testing.T) {
	alice := newFakeClient("alice", true)
	bob := newFakeClient("bob", true)
	carol := newFakeClient("carol", true)

	dev := newChannel("dev", "", nil, true)
	dev.Members[alice] = NoStatus
	dev.Members[bob] = NoStatus

	ops := newChannel("ops", "", nil, true)
	ops.Members[alice] = NoStatus
	ops.Members[carol] = NoStatus

	channels := map[string]*Channel{"dev": dev, "ops": ops}

	peers := peersOf(alice, channels)
	if len(peers) != 2 {
		t.Fatalf("peersOf(alice) = %d peers, wanted 2 (bob and carol, deduplicated)", len(peers))
	}
}
