// Package resilience provides the policies the HTTP execution core wraps
// around network calls.
//
// This package includes:
//   - Guard: the narrow contract the core consults before and after a call
//   - CircuitBreaker: closed/open/half-open guard that fails fast
//   - NoopGuard: a guard that never rejects
//   - Bulkhead: bounded slots for asynchronous workers
//   - Retry: retries failed sends with jittered exponential backoff
//   - RateLimiter: token bucket pacing backed by golang.org/x/time/rate
//
// The core only depends on Guard, so any policy with the same three methods
// can be swapped in:
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("users-api"))
//	client, _ := httpclient.New(cfg, httpclient.WithGuard(cb))
package resilience
