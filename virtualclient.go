package main

import "strings"

// Client is the capability set every participant in message delivery
// implements: real network connections and in-process bots alike. The
// dispatcher and every fan-out path (JOIN, PART, PRIVMSG, QUIT) operate
// purely in terms of this interface so they never need to type-switch on
// "real vs virtual".
type Client interface {
	// Nickname is the display-case nickname. Empty before registration.
	Nickname() string
	// NicknameLower is the canonical registry key.
	NicknameLower() string
	// Prefix is the "nick!nick_lc@{network|virtual}" token stamped on
	// server-originated lines attributed to this client.
	Prefix() string
	// IsNetworkClient distinguishes a real socket from an in-process bot;
	// only the eligibility/registration logic in the command handlers cares.
	IsNetworkClient() bool

	// SendIRCMessage delivers a command attributed to from to this client.
	// For a NetworkClient this renders and enqueues the line; for a
	// VirtualClient it is handed to the bot directly as structured data,
	// letting a bot observe channel traffic without reparsing.
	SendIRCMessage(from Client, command string, params []string)
	// SendNotice sends a NOTICE to this client from the given sender.
	SendNotice(from Client, text string)
	// SendPrivateMessage delivers a PRIVMSG body addressed directly at this
	// client. NetworkClients enqueue it like any other line; VirtualClients
	// route it to their bot-specific command parser.
	SendPrivateMessage(from Client, text string)
	// SendNumericReply sends a numeric reply line. Discarded on virtual
	// clients: bots never see server numerics.
	SendNumericReply(serverName, numeric string, params []string)
}

// VirtualClient is an in-process client: always registered
// ({NickSent,UserSent,Identified} == {true,true,true}) and never owns a
// socket. It does not go through the dispatcher, whose handlers take only a
// *NetworkClient sender; bots act by calling Client methods directly.
type VirtualClient struct {
	nickname string
	bot      Bot
}

// Bot is the behavior a concrete virtual client (ChanServ, NickServ, LogBot,
// VoteBot) plugs in. Only the integration contract lives in the core per
// the integration contract below; concrete policy (tallying rules, log
// file layout, help text)
// is the bot's own business.
type Bot interface {
	// Init runs once at startup, after the bot's VirtualClient has been
	// constructed but before it is registered into the nickname registry. A
	// false return disables the bot (LogBot returns false when it cannot open
	// a transcript file; a bot whose config file is absent is never created).
	Init(s *Server) bool

	// ReceiveIRCMessage is invoked for every fan-out the bot's VirtualClient
	// would otherwise passively receive: channel JOIN/PART/PRIVMSG/QUIT lines
	// addressed to the channels/clients it can see. sender is the client the
	// line is attributed to; params mirror the command's own parameter list.
	ReceiveIRCMessage(sender Client, command string, params []string)

	// ReceivePrivateMessage is invoked when a client PRIVMSGs this bot
	// directly (or, for NickServ, via the NS alias).
	ReceivePrivateMessage(sender Client, text string)
}

func newVirtualClient(nickname string, bot Bot) *VirtualClient {
	return &VirtualClient{nickname: nickname, bot: bot}
}

func (v *VirtualClient) Nickname() string      { return v.nickname }
func (v *VirtualClient) NicknameLower() string { return strings.ToLower(v.nickname) }
func (v *VirtualClient) IsNetworkClient() bool { return false }

func (v *VirtualClient) Prefix() string {
	return v.nickname + "!" + v.NicknameLower() + "@virtual"
}

func (v *VirtualClient) SendIRCMessage(from Client, command string, params []string) {
	v.bot.ReceiveIRCMessage(from, command, params)
}

func (v *VirtualClient) SendNotice(from Client, text string) {
	// Bots don't consume notices; only network clients display them.
	_ = from
	_ = text
}

func (v *VirtualClient) SendPrivateMessage(from Client, text string) {
	v.bot.ReceivePrivateMessage(from, text)
}

func (v *VirtualClient) SendNumericReply(string, string, []string) {
	// Numeric replies are discarded on virtual clients.
}
