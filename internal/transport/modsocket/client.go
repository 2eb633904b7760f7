package modsocket

import (
	"bufio"
	"net"
	"time"

	"github.com/google/uuid"
)

const (
	// Time allowed to write a line to the mod
	writeWait = 5 * time.Second

	// Buffer size for outgoing lines
	sendBufferSize = 256

	// Longest inbound line accepted from the mod
	maxLineLength = 64 * 1024
)

// Client is one connected mod process
type Client struct {
	id          string
	conn        net.Conn
	send        chan []byte
	connectedAt time.Time
}

// NewClient wraps an accepted connection
func NewClient(conn net.Conn) *Client {
	return &Client{
		id:          uuid.NewString(),
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ID returns the identifier used in logs
func (c *Client) ID() string {
	return c.id
}

// writePump drains the send buffer onto the connection until the hub
// closes it
func (c *Client) writePump() {
	defer c.conn.Close()
	for line := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if _, err := c.conn.Write(line); err != nil {
			return
		}
	}
}

// readPump hands every inbound line to fn until the connection fails
func (c *Client) readPump(fn func(line string)) error {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	return scanner.Err()
}
