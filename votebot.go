package main

import (
	"fmt"
	"strings"
	"time"
)

// voteBotNickname derives the in-registry nickname for a configured VoteBot
// instance from its manager id.
func voteBotNickname(id string) string {
	return "VoteBot" + strings.ToUpper(id)
}

// ballot is one in-progress private vote.
type ballot struct {
	question string
	opener   string // nickname of the admin who started it
	votes    map[string]string
}

// VoteBot runs a single private ballot at a time for one channel: an admin
// opens it with a question, members cast YES/NO/ABSTAIN privately, and it
// closes either on an admin's TALLY command or when its time limit elapses.
type VoteBot struct {
	cfg *VoteBotConfig
	vc  *VirtualClient
	s   *Server

	current *ballot
}

func newVoteBot(cfg *VoteBotConfig) *VoteBot {
	return &VoteBot{cfg: cfg}
}

func (vb *VoteBot) Init(s *Server) bool {
	vb.s = s
	return true
}

func (vb *VoteBot) postJoin(vc *VirtualClient) {
	vb.vc = vc
}

func (vb *VoteBot) ReceiveIRCMessage(Client, string, []string) {}

// ReceivePrivateMessage accepts VOTE START <question> and VOTE TALLY from
// any admin named in the bot's configuration, and YES/NO/ABSTAIN from
// anyone while a ballot is open.
func (vb *VoteBot) ReceivePrivateMessage(sender Client, text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}

	cmd := strings.ToUpper(fields[0])

	switch cmd {
	case "YES", "NO", "ABSTAIN":
		vb.castVote(sender, cmd)
	case "VOTE":
		vb.handleVoteCommand(sender, fields[1:])
	default:
		sender.SendNotice(vb.vc, "Unknown command.")
	}
}

func (vb *VoteBot) isAdmin(sender Client) bool {
	_, ok := vb.cfg.Admins[sender.NicknameLower()]
	return ok
}

func (vb *VoteBot) handleVoteCommand(sender Client, args []string) {
	if len(args) == 0 {
		sender.SendNotice(vb.vc, "Syntax: VOTE START <question> | VOTE TALLY")
		return
	}

	switch strings.ToUpper(args[0]) {
	case "START":
		vb.startBallot(sender, strings.Join(args[1:], " "))
	case "TALLY":
		if !vb.isAdmin(sender) {
			sender.SendNotice(vb.vc, "Only a configured admin may tally a vote.")
			return
		}
		vb.tally(sender, "Tally requested by "+sender.Nickname())
	default:
		sender.SendNotice(vb.vc, "Syntax: VOTE START <question> | VOTE TALLY")
	}
}

func (vb *VoteBot) startBallot(sender Client, question string) {
	if !vb.isAdmin(sender) {
		sender.SendNotice(vb.vc, "Only a configured admin may start a vote.")
		return
	}
	if vb.current != nil {
		sender.SendNotice(vb.vc, "A vote is already in progress.")
		return
	}
	if question == "" {
		sender.SendNotice(vb.vc, "Syntax: VOTE START <question>")
		return
	}

	vb.current = &ballot{
		question: question,
		opener:   sender.Nickname(),
		votes:    make(map[string]string),
	}

	vb.announce(fmt.Sprintf("A vote has started: %s (reply privately with YES, NO, or ABSTAIN)", question))

	limit := time.Duration(vb.cfg.TimeLimit) * time.Second
	ballotRef := vb.current
	time.AfterFunc(limit, func() {
		vb.s.events <- clientEvent{kind: eventCallback, fn: func() {
			if vb.current == ballotRef {
				vb.tally(vb.vc, "Time limit reached")
			}
		}}
	})
}

func (vb *VoteBot) castVote(sender Client, choice string) {
	if vb.current == nil {
		sender.SendNotice(vb.vc, "No vote is in progress.")
		return
	}
	vb.current.votes[sender.NicknameLower()] = choice
	sender.SendNotice(vb.vc, "Your vote has been recorded.")
}

func (vb *VoteBot) tally(requestedBy Client, reason string) {
	if vb.current == nil {
		if requestedBy != nil {
			requestedBy.SendNotice(vb.vc, "No vote is in progress.")
		}
		return
	}

	var yes, no, abstain int
	for _, choice := range vb.current.votes {
		switch choice {
		case "YES":
			yes++
		case "NO":
			no++
		case "ABSTAIN":
			abstain++
		}
	}

	total := yes + no
	if vb.cfg.AbstentionTranslation {
		total += abstain
	}

	vb.announce(fmt.Sprintf("Vote closed (%s). Question: %s -- YES: %d, NO: %d, ABSTAIN: %d, counted total: %d",
		reason, vb.current.question, yes, no, abstain, total))

	vb.current = nil
}

// announce sends a NOTICE to every member of the bot's configured channel.
func (vb *VoteBot) announce(text string) {
	ch, ok := vb.s.registry.findChannel(vb.cfg.Channel)
	if !ok {
		return
	}
	for member := range ch.Members {
		member.SendNotice(vb.vc, text)
	}
}
