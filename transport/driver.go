// Package transport provides the channel driver (C4): a thin state
// wrapper over a ByteChannel that sends and receives whole frames and
// clears stale input before a fresh request. It does not interpret
// packet types — it is strictly a frame pipe — and ships adapters for
// the two transports named in spec §6.7 (a real serial port, and a
// TCP tunnel to a transparent serial-over-IP endpoint) in the
// serialchannel and tcpchannel subpackages.
package transport

import (
	"time"

	"github.com/mita-teknik/mnet/frame"
)

// ByteChannel is the external transport collaborator: a byte-oriented
// link with a blocking, deadline-bounded read, a blocking write, and
// the ability to discard buffered input. Implementations live outside
// this module's core (serial port, TCP socket) — see serialchannel and
// tcpchannel.
type ByteChannel = frame.ByteChannel

// Driver wraps a ByteChannel with the frame pipe semantics the client
// state machine depends on.
type Driver struct {
	ch ByteChannel
}

// NewDriver wraps ch in a Driver.
func NewDriver(ch ByteChannel) *Driver {
	return &Driver{ch: ch}
}

// SendFrame writes a fully built frame to the channel.
func (d *Driver) SendFrame(raw []byte) error {
	return d.ch.Write(raw)
}

// ReceiveFrame reads and parses the next frame arriving before
// deadline.
func (d *Driver) ReceiveFrame(deadline time.Time) (frame.Frame, error) {
	raw, err := frame.ReadOne(d.ch, deadline)
	if err != nil {
		return frame.Frame{}, err
	}
	return frame.Parse(raw)
}

// Clear discards any buffered input, used before a fresh request to
// recover from garbage left by a previous timeout.
func (d *Driver) Clear() error {
	return d.ch.ClearInput()
}
