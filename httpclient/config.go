package httpclient

import (
	"time"

	"github.com/kbukum/restclient/resilience"
	"github.com/kbukum/restclient/validation"
	"github.com/kbukum/restclient/version"
)

const (
	defaultName           = "httpclient"
	defaultConnectTimeout = 10 * time.Second
	defaultSocketTimeout  = 60 * time.Second
	defaultMaxConcurrency = 20
)

// Config configures a Client. It is read once by New; later changes have
// no effect on clients already built from it.
type Config struct {
	// Name identifies the client in logs, metrics and the circuit breaker.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is prepended to every relative request URL.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// Headers are sent with every request. Request headers win on conflict.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// ConnectTimeout bounds connection establishment. Defaults to 10s.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout" validate:"gte=0"`

	// SocketTimeout bounds the wait for response headers and each silence
	// between body reads. Defaults to 60s.
	SocketTimeout time.Duration `yaml:"socket_timeout" mapstructure:"socket_timeout" validate:"gte=0"`

	// MaxConcurrency bounds in-flight async requests and connections per
	// host. Defaults to 20.
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency" validate:"gte=1"`

	// UserAgent is sent unless the request sets its own.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// RequestIDHeader, when set, stamps each request with a UUID under this
	// header unless the request or the context already carries one.
	RequestIDHeader string `yaml:"request_id_header" mapstructure:"request_id_header"`

	// HTTP2 enables HTTP/2 over TLS.
	HTTP2 bool `yaml:"http2" mapstructure:"http2"`

	// TLS configures the transport's TLS settings.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// CircuitBreaker enables the circuit-breaker guard. Nil admits every call.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`

	// Retry wraps the transport in a retrying one. Nil disables retry.
	Retry *resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`

	// RateLimiter paces dispatches. Nil disables it.
	RateLimiter *resilience.RateLimiterConfig `yaml:"rate_limiter" mapstructure:"rate_limiter"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.SocketTimeout == 0 {
		c.SocketTimeout = defaultSocketTimeout
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = defaultMaxConcurrency
	}
	if c.UserAgent == "" {
		c.UserAgent = version.UserAgent()
	}
	if c.CircuitBreaker != nil && c.CircuitBreaker.Name == "" {
		c.CircuitBreaker.Name = c.Name
	}
	if c.RateLimiter != nil && c.RateLimiter.Name == "" {
		c.RateLimiter.Name = c.Name
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return c.TLS.Validate()
}

// DefaultRetryConfig returns a default retry config suitable for HTTP clients.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = IsRetryable
	return &cfg
}

// DefaultCircuitBreakerConfig returns a default circuit breaker config.
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	return &cfg
}

// DefaultRateLimiterConfig returns a default rate limiter config.
func DefaultRateLimiterConfig(name string) *resilience.RateLimiterConfig {
	cfg := resilience.DefaultRateLimiterConfig(name)
	return &cfg
}
