// Package httpbin is an in-process echo server for exercising HTTP clients.
// It mirrors the httpbin.org endpoints the client tests rely on and records
// every request it receives.
package httpbin
