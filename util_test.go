package main

import (
	"strings"
	"testing"
)

func TestCanonicalizeNick(t *testing.T) {
	tests := []struct {
		input  string
		output string
	}{
		{"ABC", "abc"},
		{"abc", "abc"},
		{"Alice", "alice"},
	}

	for _, test := range tests {
		out := canonicalizeNick(test.input)
		if out != test.output {
			t.Errorf("canonicalizeNick(%s) = %s, wanted %s", test.input, out, test.output)
		}
	}
}

func TestCanonicalizeChannel(t *testing.T) {
	tests := []struct {
		input  string
		output string
	}{
		{"#Dev", "dev"},
		{"Dev", "dev"},
		{"dev", "dev"},
	}

	for _, test := range tests {
		out := canonicalizeChannel(test.input)
		if out != test.output {
			t.Errorf("canonicalizeChannel(%s) = %s, wanted %s", test.input, out, test.output)
		}
	}
}

func TestIsValidNick(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"alice", true},
		{"Alice_", true},
		{"", false},
		{"a1ice", false},
		{"al-ice", false},
		{strings.Repeat("a", 30), true},
		{strings.Repeat("a", 31), false},
	}

	for _, test := range tests {
		got := isValidNick(maxNickLength, test.input)
		if got != test.valid {
			t.Errorf("isValidNick(%q) = %v, wanted %v", test.input, got, test.valid)
		}
	}
}

func TestIsValidChannel(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"dev", true},
		{"dev_ops2", true},
		{"", false},
		{"dev-ops", false},
		{strings.Repeat("a", maxChannelLength), true},
		{strings.Repeat("a", maxChannelLength+1), false},
	}

	for _, test := range tests {
		got := isValidChannel(test.input)
		if got != test.valid {
			t.Errorf("isValidChannel(%q) = %v, wanted %v", test.input, got, test.valid)
		}
	}
}
