package main

import "strings"

// maxNickLength is the longest nickname this server will register.
const maxNickLength = 30

// maxTopicLength is arbitrary. Something low enough we won't hit the message
// limit when a topic is quoted back in a RPL_TOPIC line.
const maxTopicLength = 300

// canonicalizeNick converts the given nick to its canonical representation
// (which must be unique).
//
// Note: we don't check validity or strip whitespace.
func canonicalizeNick(n string) string {
	return strings.ToLower(n)
}

// canonicalizeChannel converts the given channel to its canonical
// representation (without the leading '#', which must be unique).
//
// Note: we don't check validity or strip whitespace.
func canonicalizeChannel(c string) string {
	return strings.ToLower(strings.TrimPrefix(c, "#"))
}

// isValidNick checks a nickname for validity: non-empty, no longer than
// maxLen, and composed only of ASCII letters and underscore.
func isValidNick(maxLen int, n string) bool {
	if len(n) == 0 || len(n) > maxLen {
		return false
	}

	for _, char := range n {
		if char >= 'a' && char <= 'z' {
			continue
		}
		if char >= 'A' && char <= 'Z' {
			continue
		}
		if char == '_' {
			continue
		}
		return false
	}

	return true
}

// isValidChannel checks a canonicalized (no leading '#') channel name for
// validity: non-empty, no longer than maxChannelLength, and composed only of
// ASCII letters, digits, and underscore.
func isValidChannel(c string) bool {
	if len(c) == 0 || len(c) > maxChannelLength {
		return false
	}

	for _, char := range c {
		if char >= 'a' && char <= 'z' {
			continue
		}
		if char >= 'A' && char <= 'Z' {
			continue
		}
		if char >= '0' && char <= '9' {
			continue
		}
		if char == '_' {
			continue
		}
		return false
	}

	return true
}

// maxChannelLength bounds a canonicalized channel name (excluding the
// leading '#').
const maxChannelLength = 50
