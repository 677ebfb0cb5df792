package ccmsim

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"

	"github.com/ccmlink-io/ccmlink/pkg/log"
)

// Server exposes a Module's AT front end on a TCP listener, one line-oriented
// session per connection. The host agent's transport dials it exactly as it
// would open a serial device.
type Server struct {
	module   *Module
	listener net.Listener
	logger   log.Logger
}

// NewServer starts listening on addr. Serve must be called to accept.
func NewServer(addr string, module *Module) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		module:   module,
		listener: ln,
		logger:   log.WithName("ccmsim"),
	}, nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Simulator listening", "addr", s.listener.Addr().String())

	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handle(ctx, conn)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	s.logger.Info("Host connected", "remote", conn.RemoteAddr().String())

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			s.logger.Info("Host disconnected", "remote", conn.RemoteAddr().String())
			return
		}
		reply := s.module.Exec(ctx, strings.TrimRight(line, "\r\n"))
		if _, err := conn.Write([]byte(reply)); err != nil {
			s.logger.Error(err, "Write failed, dropping session")
			return
		}
	}
}
