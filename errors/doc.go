// Package errors provides a structured application error with a
// machine-readable code, an HTTP status and optional details. Configuration
// validation and the echo test server report failures through it.
package errors
