package httpclient

import (
	"context"
	"sync"
)

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Default returns the process-wide client, creating one with default
// settings on first use. Prefer passing an explicit *Client; the default
// exists for scripts and tests.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultClient == nil || defaultClient.IsClosed() {
		c, err := New(Config{Name: "default"})
		if err != nil {
			// The zero Config always validates after defaults.
			panic(err)
		}
		defaultClient = c
	}
	return defaultClient
}

// SetDefault replaces the process-wide client and returns the previous
// one, which the caller owns and should close.
func SetDefault(c *Client) *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	prev := defaultClient
	defaultClient = c
	return prev
}

// CloseDefault closes the process-wide client if one was created.
func CloseDefault(ctx context.Context) error {
	defaultMu.Lock()
	c := defaultClient
	defaultClient = nil
	defaultMu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close(ctx)
}

// Get starts a GET request on the default client.
func Get(url string) *Request { return Default().Get(url) }

// Head starts a HEAD request on the default client.
func Head(url string) *Request { return Default().Head(url) }

// Options starts an OPTIONS request on the default client.
func Options(url string) *Request { return Default().Options(url) }

// Post starts a POST request on the default client.
func Post(url string) *Request { return Default().Post(url) }

// Put starts a PUT request on the default client.
func Put(url string) *Request { return Default().Put(url) }

// Patch starts a PATCH request on the default client.
func Patch(url string) *Request { return Default().Patch(url) }

// Delete starts a DELETE request on the default client.
func Delete(url string) *Request { return Default().Delete(url) }
