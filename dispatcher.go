package main

// commandHandler is the uniform shape every command handler takes: the
// server (for registry/config access), the network client the command came
// from, and the parsed message.
type commandHandler func(s *Server, c *NetworkClient, m Message)

// noRegistrationRequired lists the four commands that establish or maintain
// registration themselves; every other handler requires registration.
var noRegistrationRequired = map[string]struct{}{
	"NICK": {},
	"USER": {},
	"PING": {},
	"PONG": {},
}

var commandTable = map[string]commandHandler{
	"NICK": cmdNick,
	"USER": cmdUser,
	"PING": cmdPing,
	"PONG": cmdPong,

	"JOIN":  cmdJoin,
	"PART":  cmdPart,
	"TOPIC": cmdTopic,
	"NAMES": cmdNames,

	"PRIVMSG": cmdPrivmsg,
	"NS":      cmdNS,

	"QUIT": cmdQuit,

	"MOTD":    cmdMotd,
	"INFO":    cmdInfo,
	"VERSION": cmdVersion,
}

// dispatch routes one parsed message from c to its handler. Unknown
// commands are silently ignored. Commands other than NICK/USER/PING/PONG
// require that the client has already completed registration.
func (s *Server) dispatch(c *NetworkClient, m Message) {
	handler, ok := commandTable[m.Command]
	if !ok {
		return
	}

	if _, exempt := noRegistrationRequired[m.Command]; !exempt {
		if !c.registered() {
			return
		}
	}

	handler(s, c, m)
}
