package httpclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/restclient/logger"
	"github.com/kbukum/restclient/testutil"
	"github.com/kbukum/restclient/testutil/httpbin"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:1: connect: connection refused")

// spyTransport answers every Send with resp or err and records what it was
// handed.
type spyTransport struct {
	resp  *RawResponse
	err   error
	delay time.Duration

	calls atomic.Int32
	mu    sync.Mutex
	last  *Descriptor
}

func (s *spyTransport) Send(ctx context.Context, d *Descriptor) (*RawResponse, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.last = d
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.resp == nil {
		return &RawResponse{StatusCode: 200, StatusText: "OK", Headers: NewHeaders()}, nil
	}
	return s.resp, nil
}

func (s *spyTransport) Calls() int { return int(s.calls.Load()) }

func (s *spyTransport) Last() *Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func respondWith(status int, body string) *spyTransport {
	return &spyTransport{resp: &RawResponse{
		StatusCode: status,
		StatusText: "test",
		Headers:    NewHeaders(),
		Body:       []byte(body),
	}}
}

func failing() *spyTransport {
	return &spyTransport{err: errConnRefused}
}

// newTestClient builds a client with a silent logger and closes it when the
// test ends.
func newTestClient(t *testing.T, cfg Config, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Nop())}, opts...)
	c, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.Close(ctx)
	})
	return c
}

func startHTTPBin(t *testing.T) *httpbin.Server {
	t.Helper()
	srv := httpbin.New()
	testutil.T(t).Setup(srv)
	return srv
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
