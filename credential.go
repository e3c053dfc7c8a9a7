package main

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// CredentialTable maps a lower-cased nickname to its SHA-512 password
// digest. A nickname present here is "reserved": connecting with it starts
// the identify deadline (client.go's phaseAwaitingIdentify), and the
// password must be proven via NickServ's IDENTIFY command before the
// reservation is satisfied.
type CredentialTable map[string][64]byte

// parseDigest hex-decodes a 128-character SHA-512 digest as stored in the
// password table file.
func parseDigest(hexDigest string) ([64]byte, error) {
	var digest [64]byte
	raw, err := hex.DecodeString(hexDigest)
	if err != nil {
		return digest, fmt.Errorf("malformed password hash: %w", err)
	}
	if len(raw) != len(digest) {
		return digest, fmt.Errorf("password hash must be %d bytes, got %d", len(digest), len(raw))
	}
	copy(digest[:], raw)
	return digest, nil
}

// IsReserved reports whether nickLower requires identification.
func (t CredentialTable) IsReserved(nickLower string) bool {
	_, ok := t[nickLower]
	return ok
}

// Verify reports whether password hashes to the digest stored for
// nickLower. A nickname with no entry never verifies.
func (t CredentialTable) Verify(nickLower, password string) bool {
	want, ok := t[nickLower]
	if !ok {
		return false
	}
	got := sha512.Sum512([]byte(password))
	return subtle.ConstantTimeCompare(want[:], got[:]) == 1
}
