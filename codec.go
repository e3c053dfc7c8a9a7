package main

import (
	"fmt"
	"strings"
)

// MaxLineLength is the maximum protocol message length, including the
// terminator. RFC 2812 section 2.3.
const MaxLineLength = 512

// Message holds a parsed protocol message. See RFC 1459/2812 section 2.3.1.
type Message struct {
	// Prefix is what we encode on messages we construct ourselves. A prefix
	// supplied by a client on ingress is parsed into it but never used (we
	// trust our own nickname binding, not client-asserted identity).
	Prefix string

	// Command is upper-cased for dispatch purposes.
	Command string

	// Params holds at most 15 parameters. A parameter containing a space, or
	// beginning with ':', or empty, must be the last one and is sent with a
	// leading ':' (the "trailing" parameter).
	Params []string
}

// Encode renders the message as a raw protocol line terminated with CRLF.
func (m Message) Encode() string {
	var b strings.Builder

	if len(m.Prefix) > 0 {
		b.WriteByte(':')
		b.WriteString(m.Prefix)
		b.WriteByte(' ')
	}

	b.WriteString(m.Command)

	for i, param := range m.Params {
		b.WriteByte(' ')
		if i == len(m.Params)-1 &&
			(param == "" || param[0] == ':' || strings.ContainsRune(param, ' ')) {
			b.WriteByte(':')
		}
		b.WriteString(param)
	}

	b.WriteString("\r\n")

	s := b.String()
	if len(s) > MaxLineLength {
		// Truncate at the frame boundary rather than emit an over-length line.
		s = s[:MaxLineLength-2] + "\r\n"
	}
	return s
}

// ParseMessage parses a single protocol line. line must not include the
// terminator. An optional leading ":prefix" is parsed but discarded by the
// caller (we never trust a client-supplied prefix); ParseMessage still
// returns it so callers that do trust the line (e.g. tests round-tripping
// our own output) can inspect it.
//
// Grammar (RFC 2812 section 2.3.1):
//
//	message = [ ":" prefix SPACE ] command [ params ] crlf
//	params  = *14( SPACE middle ) [ SPACE ":" trailing ]
//	        =/ 14( SPACE middle ) [ SPACE [ ":" ] trailing ]
func ParseMessage(line string) (Message, error) {
	if len(line) == 0 {
		return Message{}, fmt.Errorf("empty message")
	}

	var m Message
	rest := line

	if rest[0] == ':' {
		sp := strings.IndexByte(rest, ' ')
		if sp == -1 {
			return Message{}, fmt.Errorf("malformed message: prefix only")
		}
		m.Prefix = rest[1:sp]
		rest = strings.TrimLeft(rest[sp+1:], " ")
	}

	if rest == "" {
		return Message{}, fmt.Errorf("malformed message: no command")
	}

	sp := strings.IndexByte(rest, ' ')
	if sp == -1 {
		m.Command = strings.ToUpper(rest)
		return m, nil
	}
	m.Command = strings.ToUpper(rest[:sp])
	rest = strings.TrimLeft(rest[sp+1:], " ")

	for rest != "" {
		if rest[0] == ':' {
			m.Params = append(m.Params, rest[1:])
			break
		}

		sp := strings.IndexByte(rest, ' ')
		if sp == -1 {
			m.Params = append(m.Params, rest)
			break
		}
		m.Params = append(m.Params, rest[:sp])
		rest = strings.TrimLeft(rest[sp+1:], " ")
	}

	if len(m.Params) > 15 {
		return Message{}, fmt.Errorf("too many parameters")
	}

	return m, nil
}

// frameReader extracts complete lines (terminated by CRLF or a bare LF) from
// a byte stream, holding the partial tail between reads. It enforces the
// 512-byte frame cap including the terminator.
type frameReader struct {
	buf []byte
}

// errLineTooLong is returned when an unterminated run has reached the frame
// cap without finding a terminator; the caller must disconnect the session.
var errLineTooLong = fmt.Errorf("message too long")

// Feed appends newly-read bytes and extracts every complete line found so
// far, in order. Remaining partial data stays buffered for the next Feed.
func (f *frameReader) Feed(data []byte) ([]string, error) {
	f.buf = append(f.buf, data...)

	var lines []string
	for {
		idx := indexByte(f.buf, '\n')
		if idx == -1 {
			if len(f.buf) > MaxLineLength {
				return lines, errLineTooLong
			}
			return lines, nil
		}

		line := f.buf[:idx]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}

		if idx+1 > MaxLineLength {
			return lines, errLineTooLong
		}

		lines = append(lines, string(line))
		f.buf = f.buf[idx+1:]
	}
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
