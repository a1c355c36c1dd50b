// Package mock contains simulated versions of real runtime types primarily used for testing.
package mock

import (
	"bytes"
	"io"
	"net"
	"sync"
	"time"
)

// Connection implements net.Conn. What is written with RemoteWrite can be read with Read and what
// is written with Write can be obtained with RemoteBytes.
//
// A Connection can be made to deliver data in fragments, i.e. a Read never returns more than the
// number of bytes given to NewFragmentedConnection, which is how a slow stream transport appears
// to the reader.
type Connection struct {
	lock         sync.Mutex
	moreData     *sync.Cond
	input        bytes.Buffer
	output       bytes.Buffer
	closed       bool
	maxRead      int
	readDeadline time.Time
	timer        *time.Timer
}

// NewConnection returns a new connection, i.e. comparable to net.Dial() but everything is hardcoded
func NewConnection() *Connection {
	return NewFragmentedConnection(0)
}

// NewFragmentedConnection returns a new connection where no Read returns more than maxRead
// bytes. A maxRead <= 0 means no limit.
func NewFragmentedConnection(maxRead int) *Connection {
	c := &Connection{maxRead: maxRead}
	c.moreData = sync.NewCond(&c.lock)
	return c
}

// Addr implements net.Addr interface and is a static "tcp" "0.0.0.0"
type Addr struct{}

// Network returns a static "tcp"
func (a *Addr) Network() string { return "tcp" }

// String returns a static "0.0.0.0"
func (a *Addr) String() string { return "0.0.0.0" }

// Read reads data written by RemoteWrite. It blocks until data is available, the connection is
// closed, or the read deadline expires. A closed connection returns io.EOF once all data has been read.
func (c *Connection) Read(b []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for c.input.Len() == 0 {
		if c.closed {
			return 0, io.EOF
		}
		if !c.readDeadline.IsZero() && !time.Now().Before(c.readDeadline) {
			return 0, ErrTimeout
		}
		c.moreData.Wait()
	}
	if c.maxRead > 0 && len(b) > c.maxRead {
		b = b[:c.maxRead]
	}
	return c.input.Read(b)
}

// Write writes data to the connection. The data is available using RemoteBytes.
func (c *Connection) Write(b []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return 0, io.ErrClosedPipe
	}
	return c.output.Write(b)
}

// RemoteWrite writes data to the connection as if something was written on the remote side of
// a connection. The data will be returned from subsequent Read operations.
func (c *Connection) RemoteWrite(b []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return 0, io.ErrClosedPipe
	}
	n, err := c.input.Write(b)
	c.moreData.Broadcast()
	return n, err
}

// RemoteBytes returns and drains all bytes that have been written using Write
func (c *Connection) RemoteBytes() []byte {
	c.lock.Lock()
	defer c.lock.Unlock()
	bs := append([]byte{}, c.output.Bytes()...)
	c.output.Reset()
	return bs
}

// Close closes the connection. Blocked Read calls are released and will return io.EOF once
// the data that was written prior to the close has been consumed.
func (c *Connection) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.moreData.Broadcast()
	return nil
}

// LocalAddr returns a hardcoded local network address.
func (c *Connection) LocalAddr() net.Addr {
	return &Addr{}
}

// RemoteAddr returns a hardcoded remote network address.
func (c *Connection) RemoteAddr() net.Addr {
	return &Addr{}
}

// SetDeadline is the same as SetReadDeadline since writes never block
func (c *Connection) SetDeadline(t time.Time) error {
	return c.SetReadDeadline(t)
}

// SetReadDeadline sets the deadline for future Read calls and any currently-blocked Read call.
// A zero value for t means Read will not time out.
func (c *Connection) SetReadDeadline(t time.Time) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.readDeadline = t
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if !t.IsZero() {
		c.timer = time.AfterFunc(time.Until(t), func() {
			c.lock.Lock()
			c.moreData.Broadcast()
			c.lock.Unlock()
		})
	}
	return nil
}

// SetWriteDeadline is a no-op since writes never block
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return nil
}

// TimeoutError is returned for an expired deadline. It implements the net.Error interface.
type TimeoutError struct{}

// Error implements the net.Error interface.
func (e *TimeoutError) Error() string { return "i/o timeout" }

// Timeout implements the net.Error interface.
func (e *TimeoutError) Timeout() bool { return true }

// Temporary implements the net.Error interface.
func (e *TimeoutError) Temporary() bool { return true }

// ErrTimeout is returned for an expired deadline
var ErrTimeout error = &TimeoutError{}
