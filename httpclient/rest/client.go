package rest

import (
	"context"
	"net/http"

	"github.com/kbukum/restclient/httpclient"
)

const contentTypeJSON = "application/json"

// Client is a JSON-focused wrapper around the core client.
type Client struct {
	http *httpclient.Client
}

// New creates a client that sends Accept: application/json unless cfg
// sets its own.
func New(cfg httpclient.Config, opts ...httpclient.Option) (*Client, error) {
	headers := make(map[string]string, len(cfg.Headers)+1)
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if httpclient.HeadersFromMap(headers).First("Accept") == "" {
		headers["Accept"] = contentTypeJSON
	}
	cfg.Headers = headers

	c, err := httpclient.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(c *httpclient.Client) *Client {
	return &Client{http: c}
}

// HTTP returns the underlying client.
func (c *Client) HTTP() *httpclient.Client {
	return c.http
}

// Close closes the underlying client.
func (c *Client) Close(ctx context.Context) error {
	return c.http.Close(ctx)
}

// RequestOption configures a single request.
type RequestOption func(*httpclient.Request)

// WithQuery adds query parameters.
func WithQuery(params map[string]any) RequestOption {
	return func(r *httpclient.Request) { r.Queries(params) }
}

// WithHeaders sets request headers.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *httpclient.Request) { r.Headers(headers) }
}

// WithRouteParam binds a {name} placeholder in the path.
func WithRouteParam(name, value string) RequestOption {
	return func(r *httpclient.Request) { r.RouteParam(name, value) }
}

// WithAuth overrides the client credentials.
func WithAuth(auth *httpclient.AuthConfig) RequestOption {
	return func(r *httpclient.Request) { r.Auth(auth) }
}

// WithFallback sets the value served when the call cannot be completed.
func WithFallback(v any) RequestOption {
	return func(r *httpclient.Request) { r.WithFallback(v) }
}

// Get performs a GET and decodes the response into T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*httpclient.Response[T], error) {
	return do[T](ctx, c, http.MethodGet, path, nil, opts...)
}

// Post performs a POST with body written by the client's mapper.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*httpclient.Response[T], error) {
	return do[T](ctx, c, http.MethodPost, path, body, opts...)
}

// Put performs a PUT with body written by the client's mapper.
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*httpclient.Response[T], error) {
	return do[T](ctx, c, http.MethodPut, path, body, opts...)
}

// Patch performs a PATCH with body written by the client's mapper.
func Patch[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*httpclient.Response[T], error) {
	return do[T](ctx, c, http.MethodPatch, path, body, opts...)
}

// Delete performs a DELETE and decodes the response into T.
func Delete[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*httpclient.Response[T], error) {
	return do[T](ctx, c, http.MethodDelete, path, nil, opts...)
}

// GetAsync performs Get on the client's worker pool.
func GetAsync[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) *httpclient.Future[T] {
	r := build(c, http.MethodGet, path, nil, opts)
	return httpclient.AsObjectAsync[T](ctx, r)
}

func build(c *Client, method, path string, body any, opts []RequestOption) *httpclient.Request {
	r := c.http.NewRequest(method, path)
	if body != nil {
		r.Body(body)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// do executes the request. An error status yields the response, with the
// body decoded when it matches T, together with the classified error.
func do[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (*httpclient.Response[T], error) {
	resp, err := httpclient.AsObject[T](ctx, build(c, method, path, body, opts))
	switch {
	case resp == nil:
		return nil, err
	case err != nil && httpclient.IsDeserialization(err):
		if statusErr := resp.Err(); statusErr != nil {
			return resp, statusErr
		}
		if len(resp.Raw()) == 0 {
			return resp, nil
		}
		return resp, err
	case err != nil:
		return resp, err
	default:
		return resp, resp.Err()
	}
}
