// Package testutil runs lifecycle components inside tests.
//
// A TestComponent is a component.Component that can also be reset between
// cases and snapshotted:
//
//	srv := httpbin.New()
//	testutil.T(t).Setup(srv) // stopped by t.Cleanup
//	testutil.T(t).Reset(srv)
//
// The httpbin subpackage provides the echo server the HTTP client tests run
// against.
package testutil
