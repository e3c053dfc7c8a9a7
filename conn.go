package main

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io/ioutil"
	"net"

	"github.com/pkg/errors"
)

// readBufferSize is sized to hold at least one full frame plus whatever
// partial tail is left over from the previous read.
const readBufferSize = 2 * MaxLineLength

// conn wraps a net.Conn (plain or TLS) with the raw read/write primitives a
// NetworkClient's reader/writer goroutines use. It does no framing itself;
// frameReader (codec.go) does that above it.
type conn struct {
	raw  net.Conn
	ip   net.IP
	isTLS bool
}

func newConn(c net.Conn, isTLS bool) (*conn, error) {
	host, _, err := net.SplitHostPort(c.RemoteAddr().String())
	if err != nil {
		return nil, errors.Wrap(err, "unable to determine remote address")
	}
	return &conn{raw: c, ip: net.ParseIP(host), isTLS: isTLS}, nil
}

func (c *conn) Read(buf []byte) (int, error) {
	return c.raw.Read(buf)
}

func (c *conn) Write(buf []byte) error {
	for len(buf) > 0 {
		n, err := c.raw.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

func (c *conn) Close() error {
	return c.raw.Close()
}

// buildTLSConfig loads the server's certificate/key: server mode,
// SSLv2/SSLv3 disallowed (MinVersion floors at TLS 1.0), and an encrypted
// private key is rejected rather than silently prompted for.
func buildTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	keyPEM, err := ioutil.ReadFile(keyFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read private key")
	}

	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, fmt.Errorf("private key is not valid PEM")
	}
	//nolint:staticcheck // x509.IsEncryptedPEMBlock is deprecated but this is
	// exactly the legacy-header check it performs; there is no replacement
	// for rejecting an encrypted key before we ever prompt for a passphrase.
	if x509.IsEncryptedPEMBlock(block) {
		return nil, fmt.Errorf("private key must not be password protected")
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load certificate/key pair")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS10,
	}, nil
}
