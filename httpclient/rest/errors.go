package rest

import "github.com/kbukum/restclient/httpclient"

// Error predicates re-exported so callers need not import httpclient.

// IsNotFound checks if the error is a 404 Not Found.
func IsNotFound(err error) bool { return httpclient.IsNotFound(err) }

// IsAuth checks if the error is a 401/403 authentication error.
func IsAuth(err error) bool { return httpclient.IsAuth(err) }

// IsRateLimit checks if the error is a 429 Too Many Requests.
func IsRateLimit(err error) bool { return httpclient.IsRateLimit(err) }

// IsServerError checks if the error is a 5xx server error.
func IsServerError(err error) bool { return httpclient.IsServerError(err) }

// IsRetryable checks if the error can be retried.
func IsRetryable(err error) bool { return httpclient.IsRetryable(err) }

// IsTimeout checks if the error is a timeout.
func IsTimeout(err error) bool { return httpclient.IsTimeout(err) }

// IsDeserialization checks if the body did not decode into the target type.
func IsDeserialization(err error) bool { return httpclient.IsDeserialization(err) }

// IsCircuitOpen checks if the call was rejected by the circuit breaker.
func IsCircuitOpen(err error) bool { return httpclient.IsCircuitOpen(err) }
