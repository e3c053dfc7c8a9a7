package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// Config holds everything read from a configuration directory: the server's
// own MainConfig.ini, its MOTD, the preconfigured channel set (from
// Channels.ini/Channel_Users.ini/Channel_Observers.ini), the password table,
// and whichever bot config files are present.
type Config struct {
	ServerName string
	Port       string
	Pidfile    string
	UseIPv4    bool
	UseIPv6    bool

	UseSSL  bool
	SSLCert string
	SSLKey  string

	MOTD []string

	Channels map[string]*Channel

	Credentials CredentialTable

	LogBot         *LogBotConfig
	VoteBotManager *VoteBotManagerConfig
	VoteBots       map[string]*VoteBotConfig
}

// LogBotConfig is LogBot.ini: which channels to transcribe and where.
type LogBotConfig struct {
	Channels []string
	LogPath  string
}

// VoteBotManagerConfig is VoteBotManager.ini: which nickname owns which
// VoteBot instance id.
type VoteBotManagerConfig struct {
	// NickToID maps a lower-cased nickname to the VoteBot id it manages.
	NickToID map[string]string
}

// VoteBotConfig is one VoteBot_<id>.ini: the admins allowed to start/stop a
// ballot, the channel it runs in, its time limit, and whether an abstention
// counts toward the total.
type VoteBotConfig struct {
	ID                    string
	Admins                map[string]struct{}
	Channel               string
	TimeLimit             int // seconds
	AbstentionTranslation bool
}

// loadConfig reads every recognized file out of dir and produces a fully
// validated Config, or a fatal error naming the first problem found.
func loadConfig(dir string) (*Config, error) {
	cfg := &Config{
		Channels: make(map[string]*Channel),
		VoteBots: make(map[string]*VoteBotConfig),
	}

	if err := loadMainConfig(filepath.Join(dir, "MainConfig.ini"), cfg); err != nil {
		return nil, err
	}

	motd, err := loadMOTD(filepath.Join(dir, "Motd.txt"))
	if err != nil {
		return nil, err
	}
	cfg.MOTD = motd

	allowedUsers, err := loadChannelUsers(filepath.Join(dir, "Channel_Users.ini"))
	if err != nil {
		return nil, err
	}

	observers, err := loadChannelObservers(filepath.Join(dir, "Channel_Observers.ini"))
	if err != nil {
		return nil, err
	}

	if err := loadChannels(filepath.Join(dir, "Channels.ini"), cfg, allowedUsers, observers); err != nil {
		return nil, err
	}

	creds, err := loadCredentials(filepath.Join(dir, "NickServ_Users.ini"))
	if err != nil {
		return nil, err
	}
	cfg.Credentials = creds

	cfg.LogBot, err = loadLogBotConfig(filepath.Join(dir, "LogBot.ini"))
	if err != nil {
		return nil, err
	}

	cfg.VoteBotManager, err = loadVoteBotManagerConfig(filepath.Join(dir, "VoteBotManager.ini"))
	if err != nil {
		return nil, err
	}
	if cfg.VoteBotManager != nil {
		for _, id := range cfg.VoteBotManager.NickToID {
			vb, err := loadVoteBotConfig(dir, id)
			if err != nil {
				return nil, err
			}
			cfg.VoteBots[id] = vb
		}
	}

	return cfg, nil
}

func loadMainConfig(path string, cfg *Config) error {
	f, err := ini.Load(path)
	if err != nil {
		return errors.Wrap(err, "unable to read MainConfig.ini")
	}

	general := f.Section("general")
	cfg.ServerName = general.Key("name").String()
	if cfg.ServerName == "" {
		return fmt.Errorf("MainConfig.ini: general.name is required")
	}

	cfg.Port = general.Key("port").String()
	if cfg.Port == "" || cfg.Port == "0" {
		return fmt.Errorf("MainConfig.ini: general.port is required and must be nonzero")
	}

	cfg.Pidfile = general.Key("pidfile").String()
	if cfg.Pidfile == "" {
		return fmt.Errorf("MainConfig.ini: general.pidfile is required")
	}

	cfg.UseIPv4 = general.Key("use_ipv4").MustBool(false)
	cfg.UseIPv6 = general.Key("use_ipv6").MustBool(false)
	if !cfg.UseIPv4 && !cfg.UseIPv6 {
		return fmt.Errorf("MainConfig.ini: at least one of general.use_ipv4, general.use_ipv6 must be true")
	}

	ssl := f.Section("ssl")
	cfg.UseSSL = ssl.Key("use").MustBool(false)
	cfg.SSLCert = ssl.Key("certificate").String()
	cfg.SSLKey = ssl.Key("privatekey").String()
	if cfg.UseSSL && (cfg.SSLCert == "" || cfg.SSLKey == "") {
		return fmt.Errorf("MainConfig.ini: ssl.use is true but certificate/privatekey is missing")
	}

	return nil
}

// loadMOTD reads the message-of-the-day file, one line per RPL_MOTD. Lines
// longer than 80 characters are a configuration error.
func loadMOTD(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read Motd.txt")
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > 80 {
			return nil, fmt.Errorf("Motd.txt: line exceeds 80 characters: %q", line)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to read Motd.txt")
	}
	return lines, nil
}

// loadChannelUsers reads the repeated-key roster file ("channelname =
// nickname", one pair per line, a channel may repeat any number of times)
// into channel-lower -> set of nick-lower.
func loadChannelUsers(path string) (map[string]map[string]struct{}, error) {
	result := make(map[string]map[string]struct{})

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return result, nil
	}

	f, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true}, path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read Channel_Users.ini")
	}

	section := f.Section("")
	for _, key := range section.Keys() {
		chanLower := canonicalizeChannel(key.Name())
		if result[chanLower] == nil {
			result[chanLower] = make(map[string]struct{})
		}
		for _, nick := range key.ValueWithShadows() {
			if nick == "" {
				continue
			}
			result[chanLower][canonicalizeNick(nick)] = struct{}{}
		}
	}

	return result, nil
}

// loadChannelObservers reads "channelname = true|false"; a channel missing
// here defaults to false (observers disallowed).
func loadChannelObservers(path string) (map[string]bool, error) {
	result := make(map[string]bool)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return result, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read Channel_Observers.ini")
	}

	for _, key := range f.Section("").Keys() {
		result[canonicalizeChannel(key.Name())] = key.MustBool(false)
	}

	return result, nil
}

// loadChannels reads Channels.ini ("name = topic") and builds the final
// Channel set, joining in the allowed-user rosters and observer flags
// already loaded.
func loadChannels(path string, cfg *Config, allowedUsers map[string]map[string]struct{}, observers map[string]bool) error {
	f, err := ini.Load(path)
	if err != nil {
		return errors.Wrap(err, "unable to read Channels.ini")
	}

	keys := f.Section("").Keys()
	if len(keys) == 0 {
		return fmt.Errorf("Channels.ini: at least one channel is required")
	}

	for _, key := range keys {
		name := key.Name()
		nameLower := canonicalizeChannel(name)
		if !isValidChannel(nameLower) {
			return fmt.Errorf("Channels.ini: invalid channel name %q", name)
		}

		users := allowedUsers[nameLower]
		if users == nil {
			users = make(map[string]struct{})
		}

		cfg.Channels[nameLower] = newChannel(nameLower, key.String(), users, observers[nameLower])
	}

	return nil
}

// loadCredentials reads "nickname = <128-hex-char SHA-512>" pairs.
func loadCredentials(path string) (CredentialTable, error) {
	table := make(CredentialTable)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return table, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read NickServ_Users.ini")
	}

	for _, key := range f.Section("").Keys() {
		digest, err := parseDigest(key.String())
		if err != nil {
			return nil, errors.Wrapf(err, "NickServ_Users.ini: nickname %q", key.Name())
		}
		table[canonicalizeNick(key.Name())] = digest
	}

	return table, nil
}

func loadLogBotConfig(path string) (*LogBotConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read LogBot.ini")
	}

	general := f.Section("general")
	channels := strings.Split(general.Key("channels").String(), ",")
	for i := range channels {
		channels[i] = canonicalizeChannel(strings.TrimSpace(channels[i]))
	}

	logPath := general.Key("logpath").String()
	if logPath == "" {
		return nil, fmt.Errorf("LogBot.ini: general.logpath is required")
	}

	return &LogBotConfig{Channels: channels, LogPath: logPath}, nil
}

func loadVoteBotManagerConfig(path string) (*VoteBotManagerConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read VoteBotManager.ini")
	}

	nickToID := make(map[string]string)
	for _, key := range f.Section("").Keys() {
		nickToID[canonicalizeNick(key.Name())] = key.String()
	}

	return &VoteBotManagerConfig{NickToID: nickToID}, nil
}

func loadVoteBotConfig(dir, id string) (*VoteBotConfig, error) {
	path := filepath.Join(dir, fmt.Sprintf("VoteBot_%s.ini", id))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("VoteBotManager.ini references id %q but %s is missing", id, path)
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}

	general := f.Section("general")

	admins := make(map[string]struct{})
	for _, nick := range strings.Split(general.Key("admins").String(), ",") {
		nick = strings.TrimSpace(nick)
		if nick == "" {
			continue
		}
		admins[canonicalizeNick(nick)] = struct{}{}
	}

	channel := general.Key("channel").String()
	if channel == "" {
		return nil, fmt.Errorf("%s: general.channel is required", path)
	}

	return &VoteBotConfig{
		ID:                    id,
		Admins:                admins,
		Channel:               canonicalizeChannel(channel),
		TimeLimit:             general.Key("timelimit").MustInt(300),
		AbstentionTranslation: general.Key("abstention_translation").MustBool(false),
	}, nil
}
