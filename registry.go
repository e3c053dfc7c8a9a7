package main

// Registry holds the process-global naming state: every registered client
// by lower-cased nickname, every configured channel by lower-cased name, and
// the set of live network connections. It is owned exclusively by the
// server's single event-loop goroutine; nothing else reads or writes it.
type Registry struct {
	// Nicknames maps a lower-cased nickname to the client (real or virtual)
	// currently holding it.
	Nicknames map[string]Client

	// Channels maps a lower-cased channel name (no leading '#') to the
	// channel. Populated once at startup; never added to or removed from
	// afterward.
	Channels map[string]*Channel

	// Connections holds every live NetworkClient by its connection id,
	// independent of whether it has registered a nickname yet.
	Connections map[uint64]*NetworkClient
}

func newRegistry() *Registry {
	return &Registry{
		Nicknames:   make(map[string]Client),
		Channels:    make(map[string]*Channel),
		Connections: make(map[uint64]*NetworkClient),
	}
}

// findClient looks up a client by nickname, case-insensitively.
func (r *Registry) findClient(nick string) (Client, bool) {
	c, ok := r.Nicknames[canonicalizeNick(nick)]
	return c, ok
}

// findChannel looks up a channel by name, case-insensitively. name may
// optionally carry the leading '#'.
func (r *Registry) findChannel(name string) (*Channel, bool) {
	ch, ok := r.Channels[canonicalizeChannel(name)]
	return ch, ok
}

// bindNick registers c under nickLower. Callers must have already checked
// the key is free (or belongs to c under a different case).
func (r *Registry) bindNick(nickLower string, c Client) {
	r.Nicknames[nickLower] = c
}

// unbindNick removes whatever client currently holds nickLower, if any.
func (r *Registry) unbindNick(nickLower string) {
	delete(r.Nicknames, nickLower)
}

// peersOf returns, across every channel c belongs to, the set of unique
// other clients sharing at least one of those channels with it. Used to
// compute the QUIT broadcast set exactly once per peer.
func peersOf(c Client, channels map[string]*Channel) []Client {
	seen := make(map[Client]struct{})
	var peers []Client
	for _, ch := range channels {
		for member := range ch.Members {
			if member == c {
				continue
			}
			if _, ok := seen[member]; ok {
				continue
			}
			seen[member] = struct{}{}
			peers = append(peers, member)
		}
	}
	return peers
}
