package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/racesync/internal/model"
)

const (
	// Time allowed to write a frame to the server
	writeWait = 10 * time.Second

	// Time allowed to establish the connection
	handshakeTimeout = 10 * time.Second

	// Buffer size for outgoing commands
	sendBufferSize = 256
)

// ErrSendBufferFull is returned when outgoing commands back up
var ErrSendBufferFull = errors.New("send buffer full")

// ErrNotConnected is returned when sending before the connection is up or
// after it went away
var ErrNotConnected = errors.New("not connected")

// Sink receives inbound events, including the open, close and socketError
// pseudo-events. It is called from the reader goroutine.
type Sink func(name string, payload json.RawMessage)

// Client is the websocket link to the race server
type Client struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
	logger *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu        sync.Mutex
	connected bool
	closing   bool
}

// New creates a Client for url. header is sent with the handshake (the
// session cookie lives there).
func New(url string, header http.Header, logger *slog.Logger) *Client {
	return &Client{
		url:    url,
		header: header,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		logger: logger.With(slog.String("component", "ws")),
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Send queues a command for the writer without blocking
func (c *Client) Send(cmd model.Command) error {
	c.mu.Lock()
	connected := c.connected
	c.mu.Unlock()
	if !connected {
		return fmt.Errorf("send %s: %w", cmd.CommandName(), ErrNotConnected)
	}

	frame, err := EncodeCommand(cmd)
	if err != nil {
		return err
	}
	select {
	case c.send <- frame:
		c.logger.Debug("command queued", slog.String("command", cmd.CommandName()))
		return nil
	default:
		c.logger.Warn("command dropped - send buffer full", slog.String("command", cmd.CommandName()))
		return fmt.Errorf("send %s: %w", cmd.CommandName(), ErrSendBufferFull)
	}
}

// Close tears the connection down. Run returns shortly after.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// Run connects and pumps frames until the connection ends, ctx is
// cancelled or Close is called
func (c *Client) Run(ctx context.Context, sink Sink) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, c.header)
	if err != nil {
		c.logger.Warn("connect failed", slog.String("url", c.url), slog.Any("error", err))
		sink(model.EventSocketError, messagePayload(err.Error()))
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.Close()

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	c.logger.Info("connected", slog.String("url", c.url))
	sink(model.EventOpen, nil)

	stop := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump(ctx, conn, stop)
	}()

	readErr := c.readPump(conn, sink)
	close(stop)
	_ = conn.Close()
	<-writerDone

	c.mu.Lock()
	closing := c.closing
	c.mu.Unlock()
	if closing || ctx.Err() != nil {
		return nil
	}

	if websocket.IsUnexpectedCloseError(readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.logger.Warn("connection lost", slog.Any("error", readErr))
	}
	sink(model.EventClose, nil)
	return nil
}

func (c *Client) readPump(conn *websocket.Conn, sink Sink) error {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		name, payload, err := DecodeFrame(frame)
		if err != nil {
			c.logger.Warn("dropping undecodable frame", slog.Any("error", err))
			continue
		}
		sink(name, payload)
	}
}

func (c *Client) writePump(ctx context.Context, conn *websocket.Conn, stop <-chan struct{}) {
	for {
		select {
		case frame := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn("write failed", slog.Any("error", err))
				_ = conn.Close()
				return
			}

		case <-c.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			_ = conn.Close()
			return

		case <-ctx.Done():
			_ = conn.Close()
			return

		case <-stop:
			return
		}
	}
}

func messagePayload(message string) json.RawMessage {
	data, _ := json.Marshal(model.MessagePayload{Message: message})
	return data
}
