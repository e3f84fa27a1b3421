package httpbin

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/restclient/component"
	"github.com/kbukum/restclient/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Recorded is one request seen by the server.
type Recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
}

// Server is the echo server component.
type Server struct {
	engine *gin.Engine
	tls    bool

	mu       sync.RWMutex
	ts       *httptest.Server
	requests []Recorded
}

var _ component.Component = (*Server)(nil)
var _ testutil.TestComponent = (*Server)(nil)

// New creates a plain HTTP server. Call Start before use.
func New() *Server {
	s := &Server{}
	s.engine = s.routes()
	return s
}

// NewTLS creates a server that listens with a self-signed certificate.
func NewTLS() *Server {
	s := New()
	s.tls = true
	return s
}

// URL returns the base URL, e.g. "http://127.0.0.1:PORT". It is empty
// before Start.
func (s *Server) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ts == nil {
		return ""
	}
	return s.ts.URL
}

// Engine returns the gin engine for registering extra routes.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// TestServer returns the running httptest server, for its certificate and
// client.
func (s *Server) TestServer() *httptest.Server {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ts
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Recorded {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// Hits returns the number of recorded requests.
func (s *Server) Hits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requests)
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.requests = append(s.requests, Recorded{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.RawQuery,
		Header: c.Request.Header.Clone(),
	})
	s.mu.Unlock()
	c.Next()
}

func (s *Server) Name() string { return "httpbin" }

func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts != nil {
		return fmt.Errorf("httpbin: already started")
	}
	if s.tls {
		s.ts = httptest.NewTLSServer(s.engine)
	} else {
		s.ts = httptest.NewServer(s.engine)
	}
	return nil
}

func (s *Server) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts == nil {
		return nil
	}
	s.ts.Close()
	s.ts = nil
	return nil
}

func (s *Server) Health(_ context.Context) component.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ts == nil {
		return component.Health{Name: s.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: s.Name(), Status: component.StatusHealthy}
}

// Reset forgets the recorded requests.
func (s *Server) Reset(_ context.Context) error {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
	return nil
}

// Snapshot returns the number of recorded requests.
func (s *Server) Snapshot(_ context.Context) (interface{}, error) {
	return s.Hits(), nil
}

// Restore drops requests recorded after snap was taken.
func (s *Server) Restore(_ context.Context, snap interface{}) error {
	n, ok := snap.(int)
	if !ok {
		return fmt.Errorf("httpbin: unexpected snapshot %T", snap)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < len(s.requests) {
		s.requests = s.requests[:n]
	}
	return nil
}
