package main

import (
	"fmt"
	"strings"
)

// NickServ handles identification against the password table. Its only
// core-relevant effect is flipping a client's Identified flag on a
// successful IDENTIFY, which client.go's onIdentified then uses to cancel
// the identify deadline in favour of the ping interval.
type NickServ struct {
	vc *VirtualClient
	s  *Server
}

func newNickServ() *NickServ {
	return &NickServ{}
}

func (ns *NickServ) Init(s *Server) bool {
	ns.s = s
	return true
}

func (ns *NickServ) postJoin(vc *VirtualClient) {
	ns.vc = vc
}

func (ns *NickServ) ReceiveIRCMessage(Client, string, []string) {}

// ReceivePrivateMessage parses one command from the message body. Supported
// commands: IDENTIFY <password> (or the FreeNode two-argument form IDENTIFY
// <nick> <password>, where <nick> is ignored since a connection only ever
// identifies its own bound nickname), GHOST <nick> <password>, and HELP.
func (ns *NickServ) ReceivePrivateMessage(sender Client, text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}

	cmd := strings.ToUpper(fields[0])
	args := fields[1:]

	switch cmd {
	case "IDENTIFY":
		ns.identify(sender, args)
	case "GHOST":
		ns.ghost(sender, args)
	case "HELP":
		ns.help(sender, args)
	default:
		sender.SendNotice(ns.vc, "Unknown command. Try HELP.")
	}
}

func (ns *NickServ) identify(sender Client, args []string) {
	nc, ok := sender.(*NetworkClient)
	if !ok {
		return
	}

	var password string
	switch len(args) {
	case 1:
		password = args[0]
	case 2:
		// FreeNode-style "IDENTIFY <nick> <password>"; the nick argument is
		// accepted but ignored, since only the connection's own bound nick
		// can ever be identified through it.
		password = args[1]
	default:
		sender.SendNotice(ns.vc, "Syntax: IDENTIFY <password>")
		return
	}

	if nc.identified {
		sender.SendNotice(ns.vc, "You are already identified.")
		return
	}

	if !ns.s.config.Credentials.Verify(nc.nicknameLower, password) {
		sender.SendNotice(ns.vc, "Password incorrect.")
		return
	}

	nc.onIdentified()
	sender.SendNotice(ns.vc, "Password accepted - you are now identified.")
}

// ghost disconnects another network client bound to a reserved nick whose
// password the requester can prove, freeing the nick for the requester.
func (ns *NickServ) ghost(sender Client, args []string) {
	if len(args) != 2 {
		sender.SendNotice(ns.vc, "Syntax: GHOST <nick> <password>")
		return
	}

	targetNick, password := args[0], args[1]
	targetLower := canonicalizeNick(targetNick)

	if !ns.s.config.Credentials.Verify(targetLower, password) {
		sender.SendNotice(ns.vc, "Password incorrect.")
		return
	}

	target, ok := ns.s.registry.findClient(targetNick)
	if !ok {
		sender.SendNotice(ns.vc, fmt.Sprintf("%s is not online.", targetNick))
		return
	}

	targetNC, ok := target.(*NetworkClient)
	if !ok {
		sender.SendNotice(ns.vc, "That nickname cannot be ghosted.")
		return
	}

	if target == Client(sender) {
		sender.SendNotice(ns.vc, "You cannot GHOST your own connection.")
		return
	}

	ns.s.disconnectClient(targetNC, fmt.Sprintf("GHOST command used by %s", sender.Nickname()))
	sender.SendNotice(ns.vc, fmt.Sprintf("%s has been ghosted.", targetNick))
}

// help sends the general command summary, or with an argument naming one of
// IDENTIFY/GHOST, that command's detail.
func (ns *NickServ) help(sender Client, args []string) {
	if len(args) == 0 {
		for _, line := range []string{
			"NickServ commands:",
			"IDENTIFY <password> -- prove ownership of your reserved nickname",
			"GHOST <nick> <password> -- disconnect a stale session using your nickname",
			"HELP <command> -- detail on one command",
		} {
			sender.SendNotice(ns.vc, line)
		}
		return
	}

	switch strings.ToUpper(args[0]) {
	case "IDENTIFY":
		for _, line := range []string{
			"IDENTIFY <password>",
			"Proves you own this reserved nickname so you may keep it and join its channels.",
			"Also accepted: IDENTIFY <nick> <password>.",
		} {
			sender.SendNotice(ns.vc, line)
		}
	case "GHOST":
		for _, line := range []string{
			"GHOST <nick> <password>",
			"Disconnects a stale connection holding <nick>, proven by its password.",
			"Refused against your own connection.",
		} {
			sender.SendNotice(ns.vc, line)
		}
	default:
		sender.SendNotice(ns.vc, fmt.Sprintf("No help for %s.", args[0]))
	}
}
