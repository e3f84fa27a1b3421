// Package httpclient executes HTTP requests against remote services and
// decodes the responses into strings, byte streams, JSON trees or typed
// values.
//
// A Client is built once from a Config, either directly with New or with
// the fluent Builder, and is safe for concurrent use. Requests are created
// from the client, configured fluently, and executed in one of three modes:
//
//   - synchronously, with AsString, AsBinary, AsJSON or AsObject
//   - as a Future, with the *Async variants
//   - with a Callback, with the *Callback variants
//
// Async requests run on a bounded worker pool sized by MaxConcurrency.
// A Future settles exactly once and at most one callback hook fires.
//
// # Basic Usage
//
//	client, err := httpclient.NewBuilder().
//	    BaseURL("https://api.example.com").
//	    SocketTimeout(5 * time.Second).
//	    CircuitBreaker(*httpclient.DefaultCircuitBreakerConfig("users")).
//	    Build()
//
//	resp, err := httpclient.AsObject[User](ctx,
//	    client.Get("/users/{id}").RouteParam("id", "42"))
//
// Error statuses are not errors: the response carries the status and the
// raw body, and Response.Err classifies it when the caller wants one.
//
// # Fallback
//
// A request with WithFallback is served a synthetic response when it is
// rejected by the guard or fails in transport. Decode failures and calls
// cancelled by the caller never fall back.
//
//	resp, err := client.Get("/quotes").WithFallback("no quotes").AsString(ctx)
//	if resp.Fallback { ... }
//
// # Guard
//
// Each dispatch asks the client's resilience.Guard for permission and
// reports the outcome. Rejected calls are not reported. Any HTTP status
// counts as success and transport errors, timeouts included, count as
// failure. A call cancelled by its caller is neither: its permit is handed
// back through resilience.Releaser when the guard implements it.
package httpclient
