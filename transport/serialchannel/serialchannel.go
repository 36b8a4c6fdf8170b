// Package serialchannel adapts a real RS-232/RS-485 serial port to
// the frame.ByteChannel interface the M-net core consumes, using
// go.bug.st/serial for the line itself (grounded on the serial
// transport the retrieval pack's bluetooth/serial service uses for
// the same 8N1-line concern).
package serialchannel

import (
	"io"
	"time"

	"github.com/mita-teknik/mnet/mnerr"
	"go.bug.st/serial"
)

// pollInterval bounds how often Read re-checks the deadline while
// polling the port for the requested byte count.
const pollInterval = 10 * time.Millisecond

// Channel is a frame.ByteChannel backed by a real serial port at
// 38400 baud, 8 data bits, no parity, 1 stop bit (spec §6.7).
type Channel struct {
	port serial.Port
}

// Open opens the serial device at devicePath with the M-net line
// settings.
func Open(devicePath string) (*Channel, error) {
	mode := &serial.Mode{
		BaudRate: 38400,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(devicePath, mode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(pollInterval); err != nil {
		port.Close()
		return nil, err
	}
	return &Channel{port: port}, nil
}

// Read blocks until n bytes arrive or deadline elapses.
func (c *Channel) Read(n int, deadline time.Time) ([]byte, error) {
	buf := make([]byte, n)
	got := 0
	for got < n {
		if time.Now().After(deadline) {
			return nil, mnerr.ErrTimeout
		}
		nn, err := c.port.Read(buf[got:])
		if err != nil && err != io.EOF {
			return nil, err
		}
		got += nn
	}
	return buf, nil
}

// Write sends p in full.
func (c *Channel) Write(p []byte) error {
	_, err := c.port.Write(p)
	return err
}

// ClearInput discards any buffered, unread input on the line.
func (c *Channel) ClearInput() error {
	return c.port.ResetInputBuffer()
}

// Close releases the underlying serial port.
func (c *Channel) Close() error {
	return c.port.Close()
}
