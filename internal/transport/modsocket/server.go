package modsocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// DefaultAddr is where the mod expects to find us
const DefaultAddr = "127.0.0.1:9112"

// Server accepts mod connections on a local TCP port. Outbound lines go to
// every connected mod; inbound lines are handed to the line callback.
type Server struct {
	addr   string
	hub    *Hub
	logger *slog.Logger

	mu        sync.Mutex
	listener  net.Listener
	onConnect func()
	onLine    func(line string)
}

// NewServer creates a Server that will listen on addr
func NewServer(addr string, logger *slog.Logger) *Server {
	logger = logger.With(slog.String("component", "modsocket"))
	return &Server{
		addr:      addr,
		hub:       NewHub(logger),
		logger:    logger,
		onConnect: func() {},
		onLine:    func(string) {},
	}
}

// OnConnect sets the callback run after each mod connects
func (s *Server) OnConnect(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onConnect = fn
}

// OnLine sets the callback for inbound lines
func (s *Server) OnLine(fn func(line string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLine = fn
}

// Send queues a line for every connected mod without blocking
func (s *Server) Send(line string) bool {
	return s.hub.Broadcast([]byte(line + "\n"))
}

// Listen binds the port. Serve calls it if it has not been called yet.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ClientCount returns the number of connected mods
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

// Serve accepts connections until ctx is cancelled
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	ln := s.listener

	go s.hub.Run()
	go func() {
		<-ctx.Done()
		_ = ln.Close()
		s.hub.Close()
	}()

	s.logger.Info("mod socket listening", slog.String("addr", ln.Addr().String()))
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	client := NewClient(conn)
	s.hub.Register(client)
	go client.writePump()

	s.mu.Lock()
	onConnect, onLine := s.onConnect, s.onLine
	s.mu.Unlock()

	onConnect()
	err := client.readPump(onLine)
	if err != nil {
		s.logger.Debug("mod read failed", slog.String("client_id", client.id), slog.Any("error", err))
	}
	s.hub.Unregister(client)
	_ = conn.Close()
}
