package httpclient

import (
	"context"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel"

	"github.com/kbukum/restclient/codec"
	"github.com/kbukum/restclient/logger"
	"github.com/kbukum/restclient/observability"
	"github.com/kbukum/restclient/resilience"
)

// Client issues requests with a shared configuration: base URL, default
// headers, transport, object mapper, guard and worker pool. It is safe for
// concurrent use and immutable once built.
type Client struct {
	cfg       Config
	baseURL   string
	headers   *Headers
	auth      *AuthConfig
	mapper    codec.ObjectMapper
	guard     resilience.Guard
	limiter   *resilience.RateLimiter
	transport Transport
	pool      *resilience.Bulkhead
	log       *logger.Logger
	inst      *observability.Instrumentation

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// Option configures collaborators that have no Config representation.
type Option func(*Client)

// WithObjectMapper sets the mapper used for object bodies. Defaults to
// codec.Default().
func WithObjectMapper(m codec.ObjectMapper) Option {
	return func(c *Client) { c.mapper = m }
}

// WithGuard replaces the guard built from Config.CircuitBreaker.
func WithGuard(g resilience.Guard) Option {
	return func(c *Client) { c.guard = g }
}

// WithTransport replaces the net/http transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithInstrumentation sets the tracer and metrics. Defaults to the global
// OpenTelemetry providers.
func WithInstrumentation(i *observability.Instrumentation) Option {
	return func(c *Client) { c.inst = i }
}

// WithAuth sets default credentials for every request.
func WithAuth(a *AuthConfig) Option {
	return func(c *Client) { c.auth = a }
}

// New creates a client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:     cfg,
		baseURL: cfg.BaseURL,
		headers: HeadersFromMap(cfg.Headers),
		mapper:  codec.Default(),
		pool: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          cfg.Name,
			MaxConcurrent: cfg.MaxConcurrency,
		}),
	}
	if cfg.RateLimiter != nil {
		c.limiter = resilience.NewRateLimiter(*cfg.RateLimiter)
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = logger.GetGlobalLogger()
	}
	c.log = c.log.WithComponent("httpclient").WithFields(logger.Fields(logger.FieldClient, cfg.Name))

	if c.inst == nil {
		inst, err := observability.NewInstrumentation(otel.GetTracerProvider(), otel.GetMeterProvider())
		if err != nil {
			return nil, err
		}
		c.inst = inst
	}

	if c.guard == nil {
		c.guard = c.newGuard()
	}

	if c.transport == nil {
		t, err := NewHTTPTransport(cfg)
		if err != nil {
			return nil, err
		}
		c.transport = t
		if cfg.Retry != nil {
			c.transport = NewRetryTransport(t, *cfg.Retry, c.log)
		}
	}

	return c, nil
}

func (c *Client) newGuard() resilience.Guard {
	if c.cfg.CircuitBreaker == nil {
		return resilience.NoopGuard{}
	}
	cbCfg := *c.cfg.CircuitBreaker
	userHook := cbCfg.OnStateChange
	cbCfg.OnStateChange = func(name string, from, to resilience.State) {
		c.log.Info("circuit breaker state changed", logger.Fields(
			logger.FieldBreaker, name,
			logger.FieldState, to.String(),
			"from", from.String(),
		))
		c.inst.Metrics().RecordBreakerTransition(context.Background(), name, from.String(), to.String())
		if userHook != nil {
			userHook(name, from, to)
		}
	}
	return resilience.NewCircuitBreaker(cbCfg)
}

// Name returns the client name.
func (c *Client) Name() string { return c.cfg.Name }

// Config returns a copy of the client's configuration.
func (c *Client) Config() Config { return c.cfg }

// Guard returns the guard consulted before each dispatch.
func (c *Client) Guard() resilience.Guard { return c.guard }

// ObjectMapper returns the mapper used for object bodies.
func (c *Client) ObjectMapper() codec.ObjectMapper { return c.mapper }

// Transport returns the transport requests are sent over.
func (c *Client) Transport() Transport { return c.transport }

// InFlight returns the number of async requests holding a worker slot.
func (c *Client) InFlight() int { return c.pool.InUse() }

// NewRequest starts a request with any method.
func (c *Client) NewRequest(method, url string) *Request {
	return newRequest(c, method, url)
}

// Get starts a GET request.
func (c *Client) Get(url string) *Request { return c.NewRequest(http.MethodGet, url) }

// Head starts a HEAD request.
func (c *Client) Head(url string) *Request { return c.NewRequest(http.MethodHead, url) }

// Options starts an OPTIONS request.
func (c *Client) Options(url string) *Request { return c.NewRequest(http.MethodOptions, url) }

// Post starts a POST request.
func (c *Client) Post(url string) *Request { return c.NewRequest(http.MethodPost, url) }

// Put starts a PUT request.
func (c *Client) Put(url string) *Request { return c.NewRequest(http.MethodPut, url) }

// Patch starts a PATCH request.
func (c *Client) Patch(url string) *Request { return c.NewRequest(http.MethodPatch, url) }

// Delete starts a DELETE request.
func (c *Client) Delete(url string) *Request { return c.NewRequest(http.MethodDelete, url) }

func (c *Client) track() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.inflight.Add(1)
	return true
}

func (c *Client) untrack() {
	c.inflight.Done()
}

// Close rejects new requests, waits for in-flight ones until ctx ends, then
// releases pooled connections. It is safe to call more than once.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(drained)
	}()

	var err error
	select {
	case <-drained:
	case <-ctx.Done():
		err = ctx.Err()
		c.log.Warn("closing with requests still in flight", logger.Fields(logger.FieldError, err.Error()))
	}

	if ic, ok := c.transport.(idleCloser); ok {
		ic.CloseIdleConnections()
	}
	return err
}

// IsClosed reports whether Close was called.
func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// IsAvailable reports whether the guard currently admits calls without
// consuming a trial slot.
func (c *Client) IsAvailable() bool {
	if c.IsClosed() {
		return false
	}
	if cb, ok := c.guard.(*resilience.CircuitBreaker); ok {
		return cb.State() != resilience.StateOpen
	}
	return true
}
