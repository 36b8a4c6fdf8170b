package mnetclient

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// Default policy values (spec §4.6, §6.4).
const (
	DefaultPerRequestTimeout = 2 * time.Second
	DefaultMaxRetries        = 3
	DefaultMaxAlarmRetries   = 6
	DefaultPacketSendDelay   = 50 * time.Millisecond
	DefaultHostAddr          = 0xFB
)

// LogSink receives raw wire traffic for logging; it must not affect
// behavior (spec §7, "Logging").
type LogSink func(direction string, hexBytes string)

// DebugSink receives free-form protocol event messages.
type DebugSink func(msg string)

// Options configures a Client's retry/timeout policy, host address
// and manufacturer login code. The two sinks are injected at
// construction time rather than read from process-wide state (spec §9
// design note: "Global/process state -> injected sinks").
type Options struct {
	PerRequestTimeout time.Duration
	MaxRetries        int
	MaxAlarmRetries   int
	PacketSendDelay   time.Duration
	HostAddr          byte
	LoginCode         byte

	Log   LogSink
	Debug DebugSink
}

// DefaultOptions returns the policy defaults named in spec §6.4,
// logging through logrus.
func DefaultOptions() Options {
	return Options{
		PerRequestTimeout: DefaultPerRequestTimeout,
		MaxRetries:        DefaultMaxRetries,
		MaxAlarmRetries:   DefaultMaxAlarmRetries,
		PacketSendDelay:   DefaultPacketSendDelay,
		HostAddr:          DefaultHostAddr,
		LoginCode:         1, // Mita-Teknik master code (spec §6.5)
		Log:               logrusLogSink,
		Debug:             logrusDebugSink,
	}
}

func logrusLogSink(direction, hexBytes string) {
	log.Debugf("[MNET][%s] %s", direction, hexBytes)
}

func logrusDebugSink(msg string) {
	log.Debug(msg)
}

// LoadOptionsFile overlays timeout/retry/login/host settings from an
// INI file onto base, the way a CLI driver would load a
// client-options file alongside the data-point descriptor table.
// Unset keys keep base's value.
func LoadOptionsFile(path string, base Options) (Options, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return base, fmt.Errorf("mnetclient: load options %s: %w", path, err)
	}
	sec := cfg.Section("client")

	opts := base
	if sec.HasKey("per_request_timeout_ms") {
		opts.PerRequestTimeout = time.Duration(sec.Key("per_request_timeout_ms").MustInt(int(base.PerRequestTimeout/time.Millisecond))) * time.Millisecond
	}
	if sec.HasKey("max_retries") {
		opts.MaxRetries = sec.Key("max_retries").MustInt(base.MaxRetries)
	}
	if sec.HasKey("max_alarm_retries") {
		opts.MaxAlarmRetries = sec.Key("max_alarm_retries").MustInt(base.MaxAlarmRetries)
	}
	if sec.HasKey("packet_send_delay_ms") {
		opts.PacketSendDelay = time.Duration(sec.Key("packet_send_delay_ms").MustInt(int(base.PacketSendDelay/time.Millisecond))) * time.Millisecond
	}
	if sec.HasKey("host_addr") {
		opts.HostAddr = byte(sec.Key("host_addr").MustInt(int(base.HostAddr)))
	}
	if sec.HasKey("login_code") {
		opts.LoginCode = byte(sec.Key("login_code").MustInt(int(base.LoginCode)))
	}
	return opts, nil
}
