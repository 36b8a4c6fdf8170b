// Package mnetclient implements the client state machine (C6) and the
// high-level request/reply API (C7) over the M-net frame and channel
// layers: serial retrieval, login, and typed data-point I/O, with the
// retry/timeout policy spec §4.6 and §5 require.
package mnetclient

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mita-teknik/mnet/frame"
	"github.com/mita-teknik/mnet/internal/datatable"
	"github.com/mita-teknik/mnet/mnerr"
	"github.com/mita-teknik/mnet/obfuscate"
	"github.com/mita-teknik/mnet/transport"
)

// State is one of the four states in the client's lifecycle (spec
// §4.6).
type State int

const (
	StateFresh State = iota
	StateSerialKnown
	StateAuthenticated
	StateBroken
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "Fresh"
	case StateSerialKnown:
		return "SerialKnown"
	case StateAuthenticated:
		return "Authenticated"
	case StateBroken:
		return "Broken"
	default:
		return "Unknown"
	}
}

// Stats exposes read-only counters for the (out-of-scope) monitor
// driver to surface as health metrics, grounded on the teacher
// BusManager's Error() accessor.
type Stats struct {
	Retries      int
	CrcFailures  int
	Timeouts     int
	Transactions int
}

// Client is a single logical session over one ByteChannel. It is NOT
// safe for concurrent use by multiple callers without the shared
// mutex this type already serializes operations through (spec §5).
type Client struct {
	mu     sync.Mutex
	driver *transport.Driver
	opts   Options
	table  *datatable.Table

	state             State
	serial            [4]byte
	key               []byte
	alarmDescriptions map[uint16]string
	stats             Stats
}

// New creates a Client over ch using the given data-point descriptor
// table and options. The client starts in StateFresh; callers must
// call GetSerialNumber before any other operation, and Login before
// the write operations (SendCommand, SetControllerTime).
func New(ch transport.ByteChannel, table *datatable.Table, opts Options) *Client {
	return &Client{
		driver:            transport.NewDriver(ch),
		opts:              opts,
		table:             table,
		state:             StateFresh,
		alarmDescriptions: map[uint16]string{},
	}
}

// State returns the client's current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns a snapshot of the client's retry/error counters.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Reconnect implements the Broken --reconnect--> Fresh transition:
// it drops cached serial/key/state and returns the client to Fresh so
// GetSerialNumber can be retried.
func (c *Client) Reconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateFresh
	c.serial = [4]byte{}
	c.key = nil
	c.alarmDescriptions = map[uint16]string{}
}

func (c *Client) requireState(min State) error {
	if c.state == StateBroken {
		return mnerr.ErrNotReady
	}
	if c.state < min {
		return mnerr.ErrUnauthenticatedOp
	}
	return nil
}

// transact sends one request frame and awaits its paired reply,
// retrying on Timeout/BadCrc/BadFraming/BadLength/WrongReplyType up to
// maxRetries, clearing the input before each attempt (spec §4.6, §7).
func (c *Client) transact(dst byte, typ PacketType, payload []byte, maxRetries int) (frame.Frame, error) {
	c.stats.Transactions++
	want := expectedReply(typ)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.stats.Retries++
			time.Sleep(c.opts.PacketSendDelay)
		}
		if err := c.driver.Clear(); err != nil {
			return frame.Frame{}, fmt.Errorf("%w: %v", mnerr.ErrTransport, err)
		}

		raw, err := frame.Build(dst, c.opts.HostAddr, uint16(typ), payload)
		if err != nil {
			return frame.Frame{}, err
		}
		c.logWire("TX", raw)

		if err := c.driver.SendFrame(raw); err != nil {
			return frame.Frame{}, fmt.Errorf("%w: %v", mnerr.ErrTransport, err)
		}

		deadline := time.Now().Add(c.opts.PerRequestTimeout)
		reply, err := c.driver.ReceiveFrame(deadline)
		if err != nil {
			if !isRetryable(err) {
				return frame.Frame{}, fmt.Errorf("%w: %v", mnerr.ErrTransport, err)
			}
			lastErr = err
			c.countError(lastErr)
			continue
		}
		c.logWire("RX", mustBuildEcho(reply))

		if reply.Type != uint16(want) {
			lastErr = mnerr.ErrWrongReplyType
			continue
		}
		return reply, nil
	}
	return frame.Frame{}, lastErr
}

// isRetryable reports whether a ReceiveFrame error is one of the
// protocol-layer kinds transact retries on. Anything else — a raw
// transport failure bubbling up from the ByteChannel — is surfaced
// immediately instead (spec §7: "Transport: not retried at the
// protocol layer; surfaced immediately").
func isRetryable(err error) bool {
	switch {
	case errors.Is(err, mnerr.ErrTimeout),
		errors.Is(err, mnerr.ErrBadCrc),
		errors.Is(err, mnerr.ErrBadFraming),
		errors.Is(err, mnerr.ErrBadLength):
		return true
	default:
		return false
	}
}

func (c *Client) countError(err error) {
	switch err {
	case mnerr.ErrTimeout:
		c.stats.Timeouts++
	case mnerr.ErrBadCrc:
		c.stats.CrcFailures++
	}
}

func (c *Client) logWire(direction string, raw []byte) {
	if c.opts.Log != nil {
		c.opts.Log(direction, hex.EncodeToString(raw))
	}
}

func (c *Client) debugf(format string, args ...any) {
	if c.opts.Debug != nil {
		c.opts.Debug(fmt.Sprintf(format, args...))
	}
}

// mustBuildEcho reconstructs the raw bytes of a parsed reply purely
// for the wire-traffic log sink; logging must never affect protocol
// behavior, so a build failure here is swallowed into an empty trace
// rather than surfaced as an error.
func mustBuildEcho(f frame.Frame) []byte {
	raw, err := frame.Build(f.Dst, f.Src, f.Type, f.Payload)
	if err != nil {
		return nil
	}
	return raw
}

func (c *Client) retryBudget(alarmFamily bool) int {
	if alarmFamily {
		return c.opts.MaxAlarmRetries
	}
	return c.opts.MaxRetries
}

// deriveObfuscationKey computes and caches the key schedule once the
// serial number is known.
func (c *Client) deriveObfuscationKey() {
	c.key = obfuscate.DeriveKey(c.serial)
}
