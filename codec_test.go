package main

import "testing"

func TestParseMessage(t *testing.T) {
	tests := []struct {
		input   string
		prefix  string
		command string
		params  []string
		success bool
	}{
		{":irc.example PRIVMSG #dev :hi there", "irc.example", "PRIVMSG", []string{"#dev", "hi there"}, true},
		{"NICK alice", "", "NICK", []string{"alice"}, true},
		{"nick alice", "", "NICK", []string{"alice"}, true},
		{"PING", "", "PING", nil, true},
		{":irc.example", "", "", nil, false},
		{"", "", "", nil, false},
	}

	for _, test := range tests {
		msg, err := ParseMessage(test.input)
		if test.success && err != nil {
			t.Errorf("ParseMessage(%q) returned error: %s", test.input, err)
			continue
		}
		if !test.success {
			if err == nil {
				t.Errorf("ParseMessage(%q) = %+v, wanted error", test.input, msg)
			}
			continue
		}
		if msg.Prefix != test.prefix || msg.Command != test.command || !stringSlicesEqual(msg.Params, test.params) {
			t.Errorf("ParseMessage(%q) = %+v, wanted {%s %s %v}", test.input, msg,
				test.prefix, test.command, test.params)
		}
	}
}

func TestMessageEncode(t *testing.T) {
	tests := []struct {
		msg    Message
		output string
	}{
		{Message{Prefix: "irc.example", Command: "001", Params: []string{"alice", "Welcome"}}, ":irc.example 001 alice Welcome\r\n"},
		{Message{Command: "PING", Params: []string{"irc.example"}}, "PING irc.example\r\n"},
		{Message{Command: "PONG", Params: []string{"irc.example", "token"}}, "PONG irc.example token\r\n"},
	}

	for _, test := range tests {
		got := test.msg.Encode()
		if got != test.output {
			t.Errorf("%+v.Encode() = %q, wanted %q", test.msg, got, test.output)
		}
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	msg := Message{Command: "PRIVMSG", Params: []string{"#dev", "hello world"}}
	encoded := msg.Encode()

	line := encoded[:len(encoded)-2] // strip CRLF
	parsed, err := ParseMessage(line)
	if err != nil {
		t.Fatalf("ParseMessage(%q) returned error: %s", line, err)
	}

	if parsed.Command != msg.Command || !stringSlicesEqual(parsed.Params, msg.Params) {
		t.Errorf("round trip = %+v, wanted %+v", parsed, msg)
	}
}

func TestFrameReaderSplitsLines(t *testing.T) {
	var fr frameReader

	lines, err := fr.Feed([]byte("NICK alice\r\nUSER a 0 * :A\r\n"))
	if err != nil {
		t.Fatalf("Feed returned error: %s", err)
	}
	want := []string{"NICK alice", "USER a 0 * :A"}
	if !stringSlicesEqual(lines, want) {
		t.Errorf("Feed = %v, wanted %v", lines, want)
	}
}

func TestFrameReaderHoldsPartialTail(t *testing.T) {
	var fr frameReader

	lines, err := fr.Feed([]byte("NICK al"))
	if err != nil {
		t.Fatalf("Feed returned error: %s", err)
	}
	if len(lines) != 0 {
		t.Fatalf("Feed on partial data returned %v, wanted none", lines)
	}

	lines, err = fr.Feed([]byte("ice\r\n"))
	if err != nil {
		t.Fatalf("Feed returned error: %s", err)
	}
	want := []string{"NICK alice"}
	if !stringSlicesEqual(lines, want) {
		t.Errorf("Feed = %v, wanted %v", lines, want)
	}
}

func TestFrameReaderAcceptsBareLF(t *testing.T) {
	var fr frameReader
	lines, err := fr.Feed([]byte("PING irc.example\n"))
	if err != nil {
		t.Fatalf("Feed returned error: %s", err)
	}
	if !stringSlicesEqual(lines, []string{"PING irc.example"}) {
		t.Errorf("Feed = %v", lines)
	}
}

func TestFrameReaderRejectsOverlongLine(t *testing.T) {
	var fr frameReader

	payload := make([]byte, MaxLineLength+2)
	for i := range payload {
		payload[i] = 'a'
	}

	_, err := fr.Feed(payload)
	if err != errLineTooLong {
		t.Errorf("Feed on overlong payload returned %v, wanted errLineTooLong", err)
	}
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
