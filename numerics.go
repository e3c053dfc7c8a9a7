package main

// Numeric reply codes this server sends. Names follow RFC 2812.
const (
	rplWelcome  = "001"
	rplYourHost = "002"
	rplCreated  = "003"
	rplMyInfo   = "004"

	rplNoTopic    = "331"
	rplTopic      = "332"
	rplVersion    = "351"
	rplNamReply   = "353"
	rplEndOfNames = "366"

	rplInfo      = "371"
	rplMotd      = "372"
	rplEndOfInfo = "374"
	rplMotdStart = "375"
	rplEndOfMotd = "376"

	errNoSuchNick       = "401"
	errNoSuchChannel    = "403"
	errCannotSendToChan = "404"
	errNoRecipient      = "411"
	errNoTextToSend     = "412"
	errNoNicknameGiven  = "431"
	errErroneousNick    = "432"
	errNicknameInUse    = "433"
	errNotOnChannel     = "442"
	errNeedMoreParams   = "461"
)
