package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// FallbackStatusText is the status text of a synthetic fallback response.
const FallbackStatusText = "Fallback"

// Response is the result of a call: status, headers, the retained raw
// payload and the body decoded into T.
type Response[T any] struct {
	// StatusCode is the HTTP status code. Fallback responses report 200.
	StatusCode int
	// StatusText is the reason phrase, e.g. "OK".
	StatusText string
	// Headers are the response headers.
	Headers *Headers
	// Body is the decoded payload.
	Body T
	// Fallback is true when Body is the request's fallback value rather
	// than a server response.
	Fallback bool

	raw []byte
}

// Raw returns the undecoded payload. It stays available when decoding fails.
func (r *Response[T]) Raw() []byte {
	return r.raw
}

// RawBody returns a fresh reader over the undecoded payload.
func (r *Response[T]) RawBody() io.Reader {
	return bytes.NewReader(r.raw)
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response[T]) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response[T]) IsError() bool {
	return r.StatusCode >= 400
}

// Err classifies a non-2xx status as an *Error. Execution never applies
// this implicitly; callers opt in.
func (r *Response[T]) Err() error {
	if r.Fallback {
		return nil
	}
	if e := ClassifyStatusCode(r.StatusCode, r.raw); e != nil {
		return e
	}
	return nil
}

// RawResponse is what a Transport returns for a completed exchange.
type RawResponse struct {
	StatusCode int
	StatusText string
	Headers    *Headers
	Body       []byte
}

func newRawResponse(resp *http.Response, body []byte) *RawResponse {
	return &RawResponse{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Headers:    HeadersFromHTTP(resp.Header),
		Body:       body,
	}
}

// statusText extracts the reason phrase from "200 OK".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
