package transfer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"zerocopy-bench/internal/dataset"

	"github.com/sirupsen/logrus"
)

type ServerConfig struct {
	Address    string
	Strategy   dataset.Strategy
	Size       int
	Iterations int
}

// Server sends Iterations messages on every accepted connection, then closes it.
type Server struct {
	config   ServerConfig
	listener *net.TCPListener
	logger   *logrus.Logger

	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
	conns    map[*net.TCPConn]struct{}
	sendErrs []error
}

func NewServer(cfg ServerConfig, logger *logrus.Logger) (*Server, error) {
	if _, err := dataset.ParseStrategy(string(cfg.Strategy)); err != nil {
		return nil, err
	}
	if cfg.Iterations <= 0 {
		return nil, fmt.Errorf("iterations must be greater than 0, got %d", cfg.Iterations)
	}
	if _, err := NewMessage(cfg.Size); err != nil {
		return nil, err
	}

	addr, err := net.ResolveTCPAddr("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", cfg.Address, err)
	}
	listener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Address, err)
	}

	logger.WithFields(logrus.Fields{
		"address":  listener.Addr().String(),
		"strategy": cfg.Strategy,
		"size":     cfg.Size,
	}).Debug("Transfer server listening")

	return &Server{
		config:   cfg,
		listener: listener,
		logger:   logger,
		conns:    make(map[*net.TCPConn]struct{}),
	}, nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled or Close is called, then
// waits for in-flight connections. It returns the first send failure, if any.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	for {
		conn, err := s.listener.AcceptTCP()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				break
			}
			s.Close()
			s.wg.Wait()
			return fmt.Errorf("accept failed: %w", err)
		}

		if !s.track(conn) {
			conn.Close()
			break
		}
		s.wg.Add(1)
		go s.handle(conn)
	}

	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.sendErrs...)
}

func (s *Server) handle(conn *net.TCPConn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	if err := s.send(conn); err != nil {
		if s.isClosed() {
			return
		}
		s.logger.WithField("remote", conn.RemoteAddr().String()).WithError(err).Error("Failed to send messages")
		s.mu.Lock()
		s.sendErrs = append(s.sendErrs, err)
		s.mu.Unlock()
	}
}

func (s *Server) send(conn *net.TCPConn) error {
	// Each connection owns its message, as every sender thread would.
	msg, err := NewMessage(s.config.Size)
	if err != nil {
		return err
	}

	sender, err := NewSender(s.config.Strategy, conn, s.logger)
	if err != nil {
		return err
	}
	if zc, ok := sender.(interface{ Close() ZeroCopyStats }); ok {
		defer zc.Close()
	}

	for i := 0; i < s.config.Iterations; i++ {
		n, err := sender.Send(msg)
		if err != nil {
			return fmt.Errorf("%s send %d: %w", s.config.Strategy, i, err)
		}
		if n != msg.Size() {
			return fmt.Errorf("%s send %d: short write %d of %d bytes", s.config.Strategy, i, n, msg.Size())
		}
	}
	return conn.CloseWrite()
}

func (s *Server) track(conn *net.TCPConn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn *net.TCPConn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops accepting and aborts in-flight connections.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conns := make([]*net.TCPConn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	err := s.listener.Close()
	for _, conn := range conns {
		conn.Close()
	}
	return err
}
