package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/http2"

	"github.com/kbukum/restclient/logger"
	"github.com/kbukum/restclient/observability"
	"github.com/kbukum/restclient/resilience"
)

// Transport sends a resolved request and returns the raw exchange. Errors
// are network or IO failures; any HTTP status is a successful exchange.
type Transport interface {
	Send(ctx context.Context, d *Descriptor) (*RawResponse, error)
}

// idleCloser is implemented by transports that pool connections.
type idleCloser interface {
	CloseIdleConnections()
}

// errBodyStalled reports a response body that sent nothing for longer than
// the socket timeout. It classifies as a timeout.
var errBodyStalled = fmt.Errorf("response body stalled: %w", context.DeadlineExceeded)

// HTTPTransport sends requests with net/http.
type HTTPTransport struct {
	client      *http.Client
	readTimeout time.Duration
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport builds a pooled transport from cfg. Connections per host
// are capped at MaxConcurrency; waiting for one blocks rather than fails.
func NewHTTPTransport(cfg Config) (*HTTPTransport, error) {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	t := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   cfg.MaxConcurrency,
		MaxConnsPerHost:       cfg.MaxConcurrency,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.SocketTimeout,
		ExpectContinueTimeout: time.Second,
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	t.TLSClientConfig = tlsCfg

	if cfg.HTTP2 {
		h2, err := http2.ConfigureTransports(t)
		if err != nil {
			return nil, fmt.Errorf("httpclient: configure http2: %w", err)
		}
		h2.ReadIdleTimeout = 30 * time.Second
		h2.PingTimeout = 15 * time.Second
	}

	return &HTTPTransport{client: &http.Client{Transport: t}, readTimeout: cfg.SocketTimeout}, nil
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, d *Descriptor) (*RawResponse, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	req, err := d.httpRequest(ctx)
	if err != nil {
		return nil, err
	}
	observability.InjectHeaders(ctx, req.Header)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	return readResponse(ctx, cancel, resp, t.readTimeout)
}

// CloseIdleConnections releases pooled connections.
func (t *HTTPTransport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}

// HTTPClient returns the underlying *http.Client for advanced use cases.
func (t *HTTPTransport) HTTPClient() *http.Client {
	return t.client
}

// readResponse drains the body. When idle is set, a gap longer than idle
// between two reads aborts the exchange through cancel.
func readResponse(ctx context.Context, cancel context.CancelCauseFunc, resp *http.Response, idle time.Duration) (*RawResponse, error) {
	defer func() { _ = resp.Body.Close() }()

	var r io.Reader = resp.Body
	if idle > 0 {
		sr := &stallReader{r: resp.Body, idle: idle}
		sr.timer = time.AfterFunc(idle, func() { cancel(errBodyStalled) })
		defer sr.timer.Stop()
		r = sr
	}

	body, err := io.ReadAll(r)
	if err != nil {
		if errors.Is(context.Cause(ctx), errBodyStalled) {
			return nil, errBodyStalled
		}
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return newRawResponse(resp, body), nil
}

// stallReader pushes its timer back after every read that made progress.
type stallReader struct {
	r     io.Reader
	idle  time.Duration
	timer *time.Timer
}

func (s *stallReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if n > 0 {
		s.timer.Reset(s.idle)
	}
	return n, err
}

// RetryTransport retries failed exchanges with backoff. Connection errors,
// 429 and 5xx (except 501) responses are retried; when attempts run out the
// last response is returned as is.
type RetryTransport struct {
	base   *HTTPTransport
	client *retryablehttp.Client
}

var _ Transport = (*RetryTransport)(nil)

// NewRetryTransport wraps base with the retry policy in cfg.
func NewRetryTransport(base *HTTPTransport, cfg resilience.RetryConfig, log *logger.Logger) *RetryTransport {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = base.client
	rc.Logger = retryLogger{log: log}
	rc.RetryMax = max(cfg.MaxAttempts-1, 0)
	rc.RetryWaitMin = cfg.InitialBackoff
	rc.RetryWaitMax = cfg.MaxBackoff
	rc.Backoff = func(_, _ time.Duration, attempt int, _ *http.Response) time.Duration {
		return cfg.Backoff(attempt + 1)
	}
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil && cfg.RetryIf != nil && !cfg.RetryIf(NewTransportError(err)) {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &RetryTransport{base: base, client: rc}
}

// Send implements Transport.
func (t *RetryTransport) Send(ctx context.Context, d *Descriptor) (*RawResponse, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	req, err := d.httpRequest(ctx)
	if err != nil {
		return nil, err
	}
	observability.InjectHeaders(ctx, req.Header)

	rreq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(rreq)
	if err != nil {
		return nil, err
	}
	return readResponse(ctx, cancel, resp, t.base.readTimeout)
}

// CloseIdleConnections releases pooled connections.
func (t *RetryTransport) CloseIdleConnections() {
	t.base.CloseIdleConnections()
}

// retryLogger adapts logger.Logger to retryablehttp.LeveledLogger.
type retryLogger struct {
	log *logger.Logger
}

var _ retryablehttp.LeveledLogger = retryLogger{}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.log.Error(msg, logger.Fields(kv...)) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.log.Debug(msg, logger.Fields(kv...)) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.log.Debug(msg, logger.Fields(kv...)) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.log.Warn(msg, logger.Fields(kv...)) }
