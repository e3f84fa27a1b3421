package httpclient

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/restclient/version"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{CircuitBreaker: DefaultCircuitBreakerConfig("")}
	cfg.ApplyDefaults()

	if cfg.Name != "httpclient" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
	if cfg.ConnectTimeout != 10*time.Second {
		t.Errorf("expected connect timeout 10s, got %v", cfg.ConnectTimeout)
	}
	if cfg.SocketTimeout != 60*time.Second {
		t.Errorf("expected socket timeout 60s, got %v", cfg.SocketTimeout)
	}
	if cfg.MaxConcurrency != 20 {
		t.Errorf("expected max concurrency 20, got %d", cfg.MaxConcurrency)
	}
	if cfg.UserAgent != version.UserAgent() {
		t.Errorf("expected default user agent, got %q", cfg.UserAgent)
	}
	if cfg.CircuitBreaker.Name != "httpclient" {
		t.Errorf("expected breaker to inherit the client name, got %q", cfg.CircuitBreaker.Name)
	}
}

func TestConfig_ApplyDefaults_PreservesExisting(t *testing.T) {
	cfg := Config{Name: "orders", SocketTimeout: 5 * time.Second, MaxConcurrency: 2, UserAgent: "ua"}
	cfg.ApplyDefaults()
	if cfg.Name != "orders" || cfg.SocketTimeout != 5*time.Second || cfg.MaxConcurrency != 2 || cfg.UserAgent != "ua" {
		t.Errorf("expected explicit values to be kept, got %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{BaseURL: "http://localhost:8080"}, ""},
		{"bad base url", Config{BaseURL: "not a url"}, "base_url"},
		{"negative timeout", Config{ConnectTimeout: -1}, "connect_timeout"},
		{"negative concurrency", Config{MaxConcurrency: -3}, "max_concurrency"},
		{"tls version", Config{TLS: &TLSConfig{MinVersion: "1.0"}}, "tls.min_version"},
		{"tls pair", Config{TLS: &TLSConfig{CertFile: "cert.pem"}}, "cert_file and key_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.MaxAttempts <= 0 {
		t.Error("expected positive MaxAttempts")
	}
	if cfg.RetryIf == nil || cfg.RetryIf(NewMissingRouteParamError("id", "/{id}")) {
		t.Error("expected RetryIf to reject non-retryable errors")
	}
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("test")
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Name != "test" {
		t.Errorf("expected name 'test', got %q", cfg.Name)
	}
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig("test")
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Name != "test" {
		t.Errorf("expected name 'test', got %q", cfg.Name)
	}
}
