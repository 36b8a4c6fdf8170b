// Package tcpchannel adapts a transparent serial-tunnel TCP endpoint
// to the frame.ByteChannel interface (spec §6.7(b)).
package tcpchannel

import (
	"bufio"
	"net"
	"time"

	"github.com/mita-teknik/mnet/mnerr"
)

// Channel is a frame.ByteChannel backed by a plain TCP stream. No
// framing of its own is assumed: the remote end is expected to proxy
// raw bytes to/from the turbine's serial line.
type Channel struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Dial opens a TCP connection to a transparent serial-tunnel endpoint
// at addr ("host:port").
func Dial(addr string) (*Channel, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Channel{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Read blocks until n bytes arrive or deadline elapses.
func (c *Channel) Read(n int, deadline time.Time) ([]byte, error) {
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := readFull(c.reader, buf); err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, mnerr.ErrTimeout
		}
		return nil, err
	}
	return buf, nil
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Write sends p in full.
func (c *Channel) Write(p []byte) error {
	_, err := c.conn.Write(p)
	return err
}

// ClearInput discards any buffered, unread input by reading whatever
// is immediately available without blocking.
func (c *Channel) ClearInput() error {
	_ = c.conn.SetReadDeadline(time.Now())
	buf := make([]byte, 4096)
	for {
		n, err := c.reader.Read(buf)
		if n == 0 || err != nil {
			break
		}
	}
	return c.conn.SetReadDeadline(time.Time{})
}

// Close releases the underlying TCP connection.
func (c *Channel) Close() error {
	return c.conn.Close()
}
