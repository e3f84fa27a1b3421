package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/restclient/jsonnode"
	"github.com/kbukum/restclient/logger"
)

const (
	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeText = "text/plain; charset=utf-8"
)

// Request builds one call. Builder methods mutate and return the receiver;
// the request is snapshotted into a Descriptor when it is executed, so a
// Request can be reused or changed after an async execution starts.
type Request struct {
	client      *Client
	method      string
	url         string
	headers     *Headers
	routeParams map[string]string
	query       url.Values
	form        url.Values
	files       []FileField
	body        any
	auth        *AuthConfig
	fallback    any
	hasFallback bool
}

func newRequest(c *Client, method, rawURL string) *Request {
	return &Request{
		client:      c,
		method:      method,
		url:         rawURL,
		headers:     NewHeaders(),
		routeParams: map[string]string{},
		query:       url.Values{},
		form:        url.Values{},
	}
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// URL returns the URL template as given.
func (r *Request) URL() string { return r.url }

// Header replaces the values of a header.
func (r *Request) Header(name, value string) *Request {
	r.headers.Put(name, value)
	return r
}

// AddHeader appends a header value.
func (r *Request) AddHeader(name, value string) *Request {
	r.headers.Add(name, value)
	return r
}

// Headers replaces each listed header.
func (r *Request) Headers(headers map[string]string) *Request {
	HeadersFromMap(headers).Each(func(name string, values []string) {
		r.headers.Put(name, values...)
	})
	return r
}

// Auth sets the request credentials, overriding the client's.
func (r *Request) Auth(auth *AuthConfig) *Request {
	r.auth = auth
	return r
}

// BasicAuth sets HTTP Basic credentials.
func (r *Request) BasicAuth(username, password string) *Request {
	return r.Auth(BasicAuth(username, password))
}

// BearerAuth sets a bearer token.
func (r *Request) BearerAuth(token string) *Request {
	return r.Auth(BearerAuth(token))
}

// RouteParam binds a {name} placeholder in the URL template. The value is
// path-escaped.
func (r *Request) RouteParam(name, value string) *Request {
	r.routeParams[name] = value
	return r
}

// QueryString adds a query parameter. Repeated names accumulate; slice
// values add one entry per element.
func (r *Request) QueryString(name string, value any) *Request {
	appendValues(r.query, name, value)
	return r
}

// Queries adds every entry of params as a query parameter.
func (r *Request) Queries(params map[string]any) *Request {
	for k, v := range params {
		appendValues(r.query, k, v)
	}
	return r
}

// Field adds a form field. Repeated names accumulate. Fields are sent
// url-encoded, or as multipart parts when a file is attached.
func (r *Request) Field(name string, value any) *Request {
	appendValues(r.form, name, value)
	return r
}

// Fields adds every entry of fields as a form field.
func (r *Request) Fields(fields map[string]any) *Request {
	for k, v := range fields {
		appendValues(r.form, k, v)
	}
	return r
}

// File attaches a file from disk as a multipart part.
func (r *Request) File(field, path string) *Request {
	r.files = append(r.files, FileField{FieldName: field, Path: path})
	return r
}

// FileBytes attaches in-memory content as a multipart part. An empty
// contentType is sniffed from the data.
func (r *Request) FileBytes(field, fileName string, data []byte, contentType string) *Request {
	r.files = append(r.files, FileField{FieldName: field, FileName: fileName, Data: data, ContentType: contentType})
	return r
}

// FileReader attaches streamed content as a multipart part. The reader is
// consumed when the request is executed.
func (r *Request) FileReader(field, fileName string, rd io.Reader, contentType string) *Request {
	r.files = append(r.files, FileField{FieldName: field, FileName: fileName, Reader: rd, ContentType: contentType})
	return r
}

// Body sets the request body. []byte, string and io.Reader are sent as is;
// url.Values is form-encoded; *MultipartBody is multipart-encoded; any
// other value is written with the client's ObjectMapper.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// WithFallback sets the value returned, as a successful response, when the
// call cannot be completed: a transport failure or an open circuit.
func (r *Request) WithFallback(v any) *Request {
	r.fallback = v
	r.hasFallback = true
	return r
}

func appendValues(dst url.Values, name string, value any) {
	switch v := value.(type) {
	case nil:
		dst.Add(name, "")
	case string:
		dst.Add(name, v)
	case []string:
		for _, s := range v {
			dst.Add(name, s)
		}
	case []byte:
		dst.Add(name, string(v))
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				dst.Add(name, fmt.Sprint(rv.Index(i).Interface()))
			}
			return
		}
		dst.Add(name, fmt.Sprint(value))
	}
}

// Descriptor is the immutable, fully resolved form of a Request handed to
// the Transport.
type Descriptor struct {
	Method    string
	URL       string
	Headers   *Headers
	Body      []byte
	RequestID string

	Fallback    any
	HasFallback bool
}

var routeParamPattern = regexp.MustCompile(`\{([^{}/]+)\}`)

// resolveRoute substitutes every {name} placeholder in template.
func resolveRoute(template string, params map[string]string) (string, error) {
	var missing string
	resolved := routeParamPattern.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		return url.PathEscape(v)
	})
	if missing != "" {
		return "", NewMissingRouteParamError(missing, template)
	}
	return resolved, nil
}

// describe snapshots the request. Route parameters are resolved first so a
// missing one fails before anything else is attempted.
func (r *Request) describe(ctx context.Context) (*Descriptor, error) {
	c := r.client

	target, err := resolveRoute(r.url, r.routeParams)
	if err != nil {
		return nil, err
	}
	if c.baseURL != "" && !strings.Contains(target, "://") {
		target = strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(target, "/")
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("parse url %q: %v", target, err))
	}

	headers := Merge(c.headers, r.headers)
	query := u.Query()
	for k, vs := range r.query {
		query[k] = append(query[k], vs...)
	}

	auth := c.auth
	if r.auth != nil {
		auth = r.auth
	}
	auth.apply(headers, query)
	u.RawQuery = query.Encode()

	body, contentType, err := r.encodeBody()
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
	}
	if body != nil && contentType != "" && !headers.Has("Content-Type") {
		headers.Put("Content-Type", contentType)
	}
	if c.cfg.UserAgent != "" && !headers.Has("User-Agent") {
		headers.Put("User-Agent", c.cfg.UserAgent)
	}

	d := &Descriptor{
		Method:      r.method,
		URL:         u.String(),
		Headers:     headers,
		Body:        body,
		Fallback:    r.fallback,
		HasFallback: r.hasFallback,
	}

	if name := c.cfg.RequestIDHeader; name != "" {
		d.RequestID = headers.First(name)
		if d.RequestID == "" {
			d.RequestID = logger.RequestIDFromContext(ctx)
		}
		if d.RequestID == "" {
			d.RequestID = uuid.NewString()
		}
		headers.Put(name, d.RequestID)
	}

	return d, nil
}

func (r *Request) encodeBody() ([]byte, string, error) {
	if len(r.files) > 0 {
		if r.body != nil {
			return nil, "", fmt.Errorf("a body cannot be combined with file parts")
		}
		mp := &MultipartBody{Fields: r.form, Files: r.files}
		return mp.encode()
	}

	if r.body == nil {
		if len(r.form) == 0 {
			return nil, "", nil
		}
		return []byte(r.form.Encode()), contentTypeForm, nil
	}
	if len(r.form) > 0 {
		return nil, "", fmt.Errorf("a body cannot be combined with form fields")
	}

	switch v := r.body.(type) {
	case []byte:
		return v, "", nil
	case string:
		return []byte(v), contentTypeText, nil
	case io.Reader:
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(v); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "", nil
	case url.Values:
		return []byte(v.Encode()), contentTypeForm, nil
	case *MultipartBody:
		return v.encode()
	case *jsonnode.Node:
		return []byte(v.String()), "application/json", nil
	default:
		data, err := r.client.mapper.Write(v)
		if err != nil {
			return nil, "", err
		}
		return data, r.client.mapper.ContentType(), nil
	}
}

// httpRequest builds the *http.Request sent by the HTTP transports.
func (d *Descriptor) httpRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if d.Body != nil {
		body = bytes.NewReader(d.Body)
	}
	req, err := http.NewRequestWithContext(ctx, d.Method, d.URL, body)
	if err != nil {
		return nil, err
	}
	req.Header = d.Headers.ToHTTP()
	if host := d.Headers.First("Host"); host != "" {
		req.Host = host
	}
	return req, nil
}
