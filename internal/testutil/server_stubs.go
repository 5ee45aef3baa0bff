package testutil

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// FakeHTTPServer is a scriptable stand-in for the server package's httpServer.
// ListenAndServe returns ServeErr immediately. When Block is set, Shutdown waits
// for it to close or for ctx to end.
type FakeHTTPServer struct {
	AddrVal     string
	HandlerVal  http.Handler
	ServeErr    error
	ShutdownErr error
	Block       chan struct{}

	mu        sync.Mutex
	listens   int
	shutdowns int
	listening chan struct{}
}

func (s *FakeHTTPServer) ListenAndServe() error {
	s.mu.Lock()
	s.listens++
	s.ensureListeningLocked()
	select {
	case <-s.listening:
	default:
		close(s.listening)
	}
	s.mu.Unlock()
	return s.ServeErr
}

func (s *FakeHTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdowns++
	s.mu.Unlock()
	if s.Block != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.Block:
		}
	}
	return s.ShutdownErr
}

func (s *FakeHTTPServer) Addr() string {
	if s.AddrVal == "" {
		return ":0"
	}
	return s.AddrVal
}

func (s *FakeHTTPServer) Handler() http.Handler {
	if s.HandlerVal == nil {
		return http.NotFoundHandler()
	}
	return s.HandlerVal
}

// Listens reports how many times ListenAndServe ran.
func (s *FakeHTTPServer) Listens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listens
}

// Shutdowns reports how many times Shutdown ran.
func (s *FakeHTTPServer) Shutdowns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdowns
}

// WaitListening blocks until ListenAndServe has been called or timeout elapses.
func (s *FakeHTTPServer) WaitListening(timeout time.Duration) bool {
	s.mu.Lock()
	s.ensureListeningLocked()
	ch := s.listening
	s.mu.Unlock()
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *FakeHTTPServer) ensureListeningLocked() {
	if s.listening == nil {
		s.listening = make(chan struct{})
	}
}
