package httpclient

import (
	"time"

	"github.com/kbukum/restclient/codec"
	"github.com/kbukum/restclient/logger"
	"github.com/kbukum/restclient/observability"
	"github.com/kbukum/restclient/resilience"
)

// Builder assembles a Client step by step.
//
//	client, err := httpclient.NewBuilder().
//	    BaseURL("https://api.example.com").
//	    DefaultHeader("Accept", "application/json").
//	    CircuitBreaker(resilience.DefaultCircuitBreakerConfig("api")).
//	    Build()
type Builder struct {
	cfg  Config
	opts []Option
}

// NewBuilder starts from an empty Config.
func NewBuilder() *Builder {
	return &Builder{}
}

// FromConfig starts from an existing Config.
func FromConfig(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

func (b *Builder) Name(name string) *Builder {
	b.cfg.Name = name
	return b
}

func (b *Builder) BaseURL(url string) *Builder {
	b.cfg.BaseURL = url
	return b
}

// DefaultHeader adds a header sent with every request.
func (b *Builder) DefaultHeader(name, value string) *Builder {
	if b.cfg.Headers == nil {
		b.cfg.Headers = map[string]string{}
	}
	b.cfg.Headers[name] = value
	return b
}

func (b *Builder) ConnectTimeout(d time.Duration) *Builder {
	b.cfg.ConnectTimeout = d
	return b
}

func (b *Builder) SocketTimeout(d time.Duration) *Builder {
	b.cfg.SocketTimeout = d
	return b
}

func (b *Builder) MaxConcurrency(n int) *Builder {
	b.cfg.MaxConcurrency = n
	return b
}

func (b *Builder) UserAgent(ua string) *Builder {
	b.cfg.UserAgent = ua
	return b
}

func (b *Builder) RequestIDHeader(name string) *Builder {
	b.cfg.RequestIDHeader = name
	return b
}

func (b *Builder) HTTP2(enabled bool) *Builder {
	b.cfg.HTTP2 = enabled
	return b
}

func (b *Builder) TLS(tls *TLSConfig) *Builder {
	b.cfg.TLS = tls
	return b
}

func (b *Builder) CircuitBreaker(cfg resilience.CircuitBreakerConfig) *Builder {
	b.cfg.CircuitBreaker = &cfg
	return b
}

func (b *Builder) Retry(cfg resilience.RetryConfig) *Builder {
	b.cfg.Retry = &cfg
	return b
}

func (b *Builder) RateLimit(cfg resilience.RateLimiterConfig) *Builder {
	b.cfg.RateLimiter = &cfg
	return b
}

func (b *Builder) ObjectMapper(m codec.ObjectMapper) *Builder {
	b.opts = append(b.opts, WithObjectMapper(m))
	return b
}

func (b *Builder) Guard(g resilience.Guard) *Builder {
	b.opts = append(b.opts, WithGuard(g))
	return b
}

func (b *Builder) Transport(t Transport) *Builder {
	b.opts = append(b.opts, WithTransport(t))
	return b
}

func (b *Builder) Logger(l *logger.Logger) *Builder {
	b.opts = append(b.opts, WithLogger(l))
	return b
}

func (b *Builder) Instrumentation(i *observability.Instrumentation) *Builder {
	b.opts = append(b.opts, WithInstrumentation(i))
	return b
}

func (b *Builder) Auth(a *AuthConfig) *Builder {
	b.opts = append(b.opts, WithAuth(a))
	return b
}

// Build validates the configuration and creates the client. The builder
// can be reused; each Build yields an independent client.
func (b *Builder) Build() (*Client, error) {
	cfg := b.cfg
	if b.cfg.Headers != nil {
		cfg.Headers = make(map[string]string, len(b.cfg.Headers))
		for k, v := range b.cfg.Headers {
			cfg.Headers[k] = v
		}
	}
	return New(cfg, b.opts...)
}
