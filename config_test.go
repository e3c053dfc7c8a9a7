package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("unable to write %s: %s", name, err)
	}
}

func minimalConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "MainConfig.ini", ""+
		"[general]\n"+
		"name = irc.example\n"+
		"port = 6667\n"+
		"pidfile = "+filepath.Join(dir, "rosevircd.pid")+"\n"+
		"use_ipv4 = true\n"+
		"use_ipv6 = false\n")

	writeFile(t, dir, "Motd.txt", "Welcome to the network.\n")
	writeFile(t, dir, "Channels.ini", "dev = dev talk\n")

	return dir
}

func TestLoadConfigMinimal(t *testing.T) {
	dir := minimalConfigDir(t)

	cfg, err := loadConfig(dir)
	if err != nil {
		t.Fatalf("loadConfig: %s", err)
	}

	if cfg.ServerName != "irc.example" {
		t.Errorf("ServerName = %q, wanted irc.example", cfg.ServerName)
	}
	if cfg.Port != "6667" {
		t.Errorf("Port = %q, wanted 6667", cfg.Port)
	}
	if !cfg.UseIPv4 || cfg.UseIPv6 {
		t.Errorf("UseIPv4/UseIPv6 = %v/%v, wanted true/false", cfg.UseIPv4, cfg.UseIPv6)
	}

	ch, ok := cfg.Channels["dev"]
	if !ok {
		t.Fatalf("channel \"dev\" was not loaded")
	}
	if ch.Topic != "dev talk" {
		t.Errorf("topic = %q, wanted %q", ch.Topic, "dev talk")
	}
}

func TestLoadConfigMissingName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "MainConfig.ini", "[general]\nport = 6667\npidfile = x\nuse_ipv4 = true\n")
	writeFile(t, dir, "Motd.txt", "")
	writeFile(t, dir, "Channels.ini", "dev = dev talk\n")

	if _, err := loadConfig(dir); err == nil {
		t.Fatalf("loadConfig should have failed on missing general.name")
	}
}

func TestLoadChannelUsersRepeatedKeys(t *testing.T) {
	dir := minimalConfigDir(t)
	writeFile(t, dir, "Channel_Users.ini", "dev = alice\ndev = bob\nops = alice\n")

	cfg, err := loadConfig(dir)
	if err != nil {
		t.Fatalf("loadConfig: %s", err)
	}

	dev := cfg.Channels["dev"]
	if !dev.IsAllowed("alice") || !dev.IsAllowed("bob") {
		t.Errorf("dev allowed users = %v, wanted alice and bob both present", dev.AllowedUsers)
	}
}

func TestLoadCredentialsRoundTrip(t *testing.T) {
	dir := minimalConfigDir(t)
	// A syntactically valid 128-character hex digest; its actual preimage
	// doesn't matter for this test, only that it round-trips through
	// hex-decoding into the credential table.
	digest := ""
	for i := 0; i < 64; i++ {
		digest += "a1"
	}
	writeFile(t, dir, "NickServ_Users.ini", "alice = "+digest+"\n")

	cfg, err := loadConfig(dir)
	if err != nil {
		t.Fatalf("loadConfig: %s", err)
	}

	if !cfg.Credentials.IsReserved("alice") {
		t.Errorf("alice should be reserved")
	}
}
