package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LogBot writes a timestamped transcript of JOIN/PART/PRIVMSG/QUIT traffic
// for each configured channel to its own file under LogPath. It joins those
// channels at startup (via seedMembership) so it receives the same
// fan-out traffic every other member does; no special-cased delivery path
// exists for it in the dispatcher.
type LogBot struct {
	cfg *LogBotConfig
	vc  *VirtualClient
	s   *Server

	loggers map[string]*log.Logger
	files   []*os.File

	// members tracks, per channel this bot logs, which nicknames it has
	// seen join (and not yet part), so a QUIT fan-out -- which carries no
	// channel parameter -- can still be attributed to the right transcripts.
	members map[string]map[string]struct{}
}

func newLogBot(cfg *LogBotConfig) *LogBot {
	return &LogBot{
		cfg:     cfg,
		loggers: make(map[string]*log.Logger),
		members: make(map[string]map[string]struct{}),
	}
}

func (lb *LogBot) Init(s *Server) bool {
	lb.s = s
	for _, chanLower := range lb.cfg.Channels {
		path := filepath.Join(lb.cfg.LogPath, chanLower+".log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("LogBot: unable to open %s: %s", path, err)
			return false
		}
		lb.files = append(lb.files, f)
		lb.loggers[chanLower] = log.New(f, "", 0)
		lb.members[chanLower] = make(map[string]struct{})
	}
	return true
}

// postJoin records the bot's own VirtualClient handle. Actual channel
// membership is seeded by seedMembership, which startBots calls after
// registerBot has succeeded.
func (lb *LogBot) postJoin(vc *VirtualClient) {
	lb.vc = vc
}

func (lb *LogBot) seedMembership(s *Server) {
	for chanLower := range lb.loggers {
		ch, ok := s.registry.findChannel(chanLower)
		if !ok {
			continue
		}
		ch.Members[lb.vc] = NoStatus
	}
}

func (lb *LogBot) ReceiveIRCMessage(sender Client, command string, params []string) {
	switch command {
	case "JOIN":
		if len(params) < 1 {
			return
		}
		chanLower := canonicalizeChannel(params[0])
		if lb.members[chanLower] == nil {
			return
		}
		lb.members[chanLower][sender.NicknameLower()] = struct{}{}
		voiced := ""
		if ch, ok := lb.s.registry.findChannel(chanLower); ok && ch.Members[sender] == Voice {
			voiced = " with voice status"
		}
		lb.writeLine(chanLower, fmt.Sprintf("%s has joined %s%s", sender.Nickname(), params[0], voiced))

	case "PART":
		if len(params) < 1 {
			return
		}
		chanLower := canonicalizeChannel(params[0])
		if lb.members[chanLower] == nil {
			return
		}
		lb.writeLine(chanLower, fmt.Sprintf("%s has left %s", sender.Nickname(), params[0]))
		delete(lb.members[chanLower], sender.NicknameLower())

	case "PRIVMSG":
		if len(params) < 2 || !strings.HasPrefix(params[0], "#") {
			return
		}
		chanLower := canonicalizeChannel(params[0])
		if lb.members[chanLower] == nil {
			return
		}
		lb.writeLine(chanLower, fmt.Sprintf("<%s> %s", sender.Nickname(), params[1]))

	case "QUIT":
		reason := ""
		if len(params) > 0 {
			reason = params[0]
		}
		for chanLower, set := range lb.members {
			if _, ok := set[sender.NicknameLower()]; !ok {
				continue
			}
			lb.writeLine(chanLower, fmt.Sprintf("%s has quit (%s)", sender.Nickname(), reason))
			delete(set, sender.NicknameLower())
		}
	}
}

func (lb *LogBot) ReceivePrivateMessage(Client, string) {}

func (lb *LogBot) writeLine(chanLower, text string) {
	logger, ok := lb.loggers[chanLower]
	if !ok {
		return
	}
	logger.Printf("[%s] %s", time.Now().Format("15:04"), text)
}

func (lb *LogBot) Close() {
	for _, f := range lb.files {
		_ = f.Close()
	}
}
