// Package fakechannel provides an in-memory frame.ByteChannel double
// for exercising the client state machine and driver without a real
// serial port or socket.
package fakechannel

import (
	"sync"
	"time"

	"github.com/mita-teknik/mnet/mnerr"
)

// Channel is a test double: writes are recorded, and reads are
// satisfied from a queue of canned replies that the test pushes with
// QueueReply. A Read with nothing queued fails at once with
// mnerr.ErrTimeout, which is how tests exercise retry logic.
type Channel struct {
	mu      sync.Mutex
	written [][]byte
	pending []byte
	queue   [][]byte
	cleared int
}

// New returns an empty fake channel.
func New() *Channel {
	return &Channel{}
}

// QueueReply appends raw frame bytes to be returned by subsequent
// Read calls, in order.
func (c *Channel) QueueReply(raw []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, raw)
}

// Written returns every byte slice passed to Write, in order.
func (c *Channel) Written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.written...)
}

// ClearedCount returns how many times ClearInput was called.
func (c *Channel) ClearedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleared
}

func (c *Channel) Write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, append([]byte(nil), p...))
	return nil
}

func (c *Channel) ClearInput() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared++
	c.pending = nil
	return nil
}

// Read drains n bytes from whatever reply is queued, pulling a new
// one off the queue as needed. If the queue runs dry before deadline,
// it returns mnerr.ErrTimeout.
func (c *Channel) Read(n int, deadline time.Time) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) == 0 {
		if len(c.queue) == 0 {
			return nil, mnerr.ErrTimeout
		}
		c.pending = c.queue[0]
		c.queue = c.queue[1:]
	}
	if time.Now().After(deadline) {
		return nil, mnerr.ErrTimeout
	}
	if n > len(c.pending) {
		n = len(c.pending)
	}
	out := c.pending[:n]
	c.pending = c.pending[n:]
	return out, nil
}
