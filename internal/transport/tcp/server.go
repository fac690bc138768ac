// Package tcptransport serves the customer line protocol over TCP. Each
// connection is one customer session.
package tcptransport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/iliamunaev/virtual-cafe/internal/apperr"
	"github.com/iliamunaev/virtual-cafe/internal/protocol"
)

type registry interface {
	Join(name string) error
	Leave(name string)
}

type commandHandler interface {
	Handle(customer, line string) (reply string, quit bool)
}

// maxLine bounds a single request line. Longer lines get the invalid
// command reply.
const maxLine = 4096

// Server accepts customer connections.
type Server struct {
	registry registry
	handler  commandHandler
	log      *slog.Logger

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
	ready chan struct{}
}

// New returns a Server. It panics if registry or handler is nil.
func New(reg registry, h commandHandler, log *slog.Logger) *Server {
	if reg == nil || h == nil {
		panic("tcptransport.New: nil dependency")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		registry: reg,
		handler:  h,
		log:      log.With("component", "tcp"),
		conns:    make(map[net.Conn]struct{}),
		ready:    make(chan struct{}),
	}
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done. On return the
// listener and every open session are closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	close(s.ready)

	s.log.Info("listening", "addr", ln.Addr().String())

	stop := context.AfterFunc(ctx, s.shutdown)
	defer stop()

	var err error
	for {
		conn, aerr := ln.Accept()
		if aerr != nil {
			if ctx.Err() == nil && !errors.Is(aerr, net.ErrClosed) {
				err = fmt.Errorf("accept: %w", aerr)
			}
			break
		}
		if !s.track(conn) {
			_ = conn.Close()
			break
		}
		s.wg.Go(func() {
			defer s.untrack(conn)
			s.serveConn(conn)
		})
	}

	s.shutdown()
	s.wg.Wait()
	s.log.Info("stopped")
	return err
}

// Addr blocks until Serve has started and returns the listen address.
func (s *Server) Addr() net.Addr {
	<-s.ready
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ln.Addr()
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	if s.conns != nil {
		delete(s.conns, conn)
	}
	s.mu.Unlock()
	_ = conn.Close()
}

// shutdown closes the listener and every tracked connection. It is safe
// to call more than once.
func (s *Server) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return
	}
	_ = s.ln.Close()
	for c := range s.conns {
		_ = c.Close()
	}
	s.conns = nil
}

func (s *Server) serveConn(conn net.Conn) {
	log := s.log.With("session_id", uuid.NewString(), "remote", conn.RemoteAddr().String())
	log.Debug("connection opened")

	r := bufio.NewReaderSize(conn, maxLine)
	w := bufio.NewWriter(conn)

	send := func(reply string) bool {
		if _, err := w.WriteString(reply + "\n"); err != nil {
			return false
		}
		return w.Flush() == nil
	}

	if !send(protocol.Welcome) {
		return
	}
	name, err := readLine(r)
	if err != nil && !errors.Is(err, errLineTooLong) {
		log.Debug("connection closed before name")
		return
	}

	name = strings.TrimSpace(name)
	if err := s.registry.Join(name); err != nil {
		log.Info("session rejected", "customer", name, "kind", apperr.Kind(err))
		if errors.Is(err, apperr.ErrNameInUse) {
			send(protocol.NameInUse(name))
		} else {
			send(protocol.EmptyName)
		}
		return
	}
	defer s.registry.Leave(name)

	log = log.With("customer", name)
	log.Info("session started")

	for {
		line, err := readLine(r)
		switch {
		case errors.Is(err, errLineTooLong):
			log.Debug("request line too long")
			if !send(protocol.InvalidPrompt) {
				log.Info("write failed, ending session")
				return
			}
			continue
		case errors.Is(err, io.EOF):
			log.Info("customer disconnected")
			return
		case err != nil:
			log.Info("session ended", "err", err)
			return
		}

		reply, quit := s.handler.Handle(name, line)
		if !send(reply) {
			log.Info("write failed, ending session")
			return
		}
		if quit {
			log.Info("customer exited")
			return
		}
	}
}

var errLineTooLong = errors.New("request line too long")

// readLine returns the next line without its terminator. A line that does
// not fit the reader's buffer is consumed up to its newline and reported
// as errLineTooLong. A final unterminated line is returned before io.EOF.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = r.ReadSlice('\n')
		}
		if err != nil {
			return "", err
		}
		return "", errLineTooLong
	}
	if err != nil && (!errors.Is(err, io.EOF) || len(line) == 0) {
		return "", err
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}
