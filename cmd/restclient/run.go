package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/kbukum/restclient/codec"
	"github.com/kbukum/restclient/component"
	"github.com/kbukum/restclient/httpclient"
	"github.com/kbukum/restclient/logger"
	"github.com/kbukum/restclient/observability"
	"github.com/kbukum/restclient/validation"
)

const defaultRequestIDHeader = "X-Request-ID"

var supportedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

func errUnknownFormat(format string) error {
	return fmt.Errorf("unknown output format %q", format)
}

func run(cmd *cobra.Command, target string, f requestFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := validateFlags(target, f); err != nil {
		return err
	}
	if f.output != "raw" {
		if _, ok := codec.ForFormat(f.output); !ok {
			return errUnknownFormat(f.output)
		}
	}

	cfg, err := loadConfig(f.configFile)
	if err != nil {
		return err
	}
	if f.timeout > 0 {
		cfg.Client.SocketTimeout = f.timeout
	}
	if f.requestID != "" {
		ctx = logger.ContextWithRequestID(ctx, f.requestID)
		if cfg.Client.RequestIDHeader == "" {
			cfg.Client.RequestIDHeader = defaultRequestIDHeader
		}
	}
	if f.insecure {
		if cfg.Client.TLS == nil {
			cfg.Client.TLS = &httpclient.TLSConfig{}
		}
		cfg.Client.TLS.SkipVerify = true
	}

	log := logger.NewWithWriter(&cfg.Logging, cfg.Name, cmd.ErrOrStderr())

	shutdown, err := initTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer shutdown()

	registry := component.NewRegistry(log.WithComponent("registry"))
	clientComp := httpclient.NewComponent(cfg.Client, httpclient.WithLogger(log))
	if err := registry.Register(clientComp); err != nil {
		return err
	}
	if err := registry.StartAll(ctx); err != nil {
		return err
	}
	defer func() {
		if err := registry.StopAll(context.WithoutCancel(ctx)); err != nil {
			log.Warn("shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	req, err := buildRequest(clientComp.Client(), target, f)
	if err != nil {
		return err
	}

	resp, err := req.execute(ctx, f.output)
	if err != nil {
		return err
	}
	if err := printResponse(cmd.OutOrStdout(), resp, f); err != nil {
		return err
	}
	if f.fail {
		return resp.err
	}
	return nil
}

// validateFlags checks what can be judged before any config or network work.
func validateFlags(target string, f requestFlags) error {
	return validation.New().
		Required("url", target).
		OneOf("request", strings.ToUpper(f.method), supportedMethods).
		OptionalUUID("request-id", f.requestID).
		Custom(f.timeout >= 0, "timeout", "must not be negative").
		Err()
}

// buildRequest translates the flags into a request on c.
func buildRequest(c *httpclient.Client, target string, f requestFlags) (*cliRequest, error) {
	method := strings.ToUpper(f.method)
	if method == "" {
		method = http.MethodGet
		if f.data != "" || len(f.form) > 0 {
			method = http.MethodPost
		}
	}
	r := c.NewRequest(method, target)

	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("header %q: expected \"Name: value\"", h)
		}
		r.AddHeader(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	for _, kv := range f.query {
		k, v, err := splitPair("query", kv)
		if err != nil {
			return nil, err
		}
		r.QueryString(k, v)
	}
	for _, kv := range f.params {
		k, v, err := splitPair("param", kv)
		if err != nil {
			return nil, err
		}
		r.RouteParam(k, v)
	}
	for _, kv := range f.form {
		k, v, err := splitPair("form", kv)
		if err != nil {
			return nil, err
		}
		if path, isFile := strings.CutPrefix(v, "@"); isFile {
			r.File(k, path)
		} else {
			r.Field(k, v)
		}
	}

	if f.data != "" {
		body, err := readData(f.data)
		if err != nil {
			return nil, err
		}
		r.Body(body)
		if !hasHeader(f.headers, "Content-Type") {
			r.Header("Content-Type", detectContentType(body))
		}
	}

	if f.user != "" {
		user, pass, _ := strings.Cut(f.user, ":")
		r.BasicAuth(user, pass)
	}
	if f.bearer != "" {
		r.BearerAuth(f.bearer)
	}
	if f.fallback != "" {
		r.WithFallback(f.fallback)
	}
	return &cliRequest{r: r}, nil
}

func splitPair(kind, kv string) (string, string, error) {
	k, v, ok := strings.Cut(kv, "=")
	if !ok || k == "" {
		return "", "", fmt.Errorf("%s %q: expected key=value", kind, kv)
	}
	return k, v, nil
}

func readData(data string) ([]byte, error) {
	path, isFile := strings.CutPrefix(data, "@")
	if !isFile {
		return []byte(data), nil
	}
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func hasHeader(headers []string, name string) bool {
	for _, h := range headers {
		if n, _, ok := strings.Cut(h, ":"); ok && strings.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
	}
	return false
}

func detectContentType(body []byte) string {
	return mimetype.Detect(body).String()
}

// initTelemetry installs OTLP exporters when tracing or metrics are configured.
func initTelemetry(ctx context.Context, cfg *appConfig, log *logger.Logger) (func(), error) {
	var closers []func(context.Context) error

	if cfg.Tracing != nil {
		tc := *cfg.Tracing
		if tc.ServiceName == "" {
			tc.ServiceName = cfg.Name
		}
		tp, err := observability.InitTracer(ctx, tc)
		if err != nil {
			return nil, fmt.Errorf("tracing: %w", err)
		}
		closers = append(closers, tp.Shutdown)
	}
	if cfg.Metrics != nil {
		mc := *cfg.Metrics
		if mc.ServiceName == "" {
			mc.ServiceName = cfg.Name
		}
		mp, err := observability.InitMeter(ctx, mc)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		closers = append(closers, mp.Shutdown)
	}

	return func() {
		for _, c := range closers {
			if err := c(context.WithoutCancel(ctx)); err != nil {
				log.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
			}
		}
	}, nil
}

// cliRequest executes a request in the shape the output format needs.
type cliRequest struct {
	r *httpclient.Request
}

// cliResponse is the format-independent view of a response.
type cliResponse struct {
	status     int
	statusText string
	headers    *httpclient.Headers
	fallback   bool
	body       []byte
	tree       any
	err        error
}

// execute reads the body as text for raw output and as a JSON tree for the
// structured formats. A body that is not JSON is printed as is.
func (c *cliRequest) execute(ctx context.Context, output string) (*cliResponse, error) {
	if output == "raw" {
		resp, err := c.r.AsString(ctx)
		if err != nil {
			return nil, err
		}
		return &cliResponse{
			status: resp.StatusCode, statusText: resp.StatusText, headers: resp.Headers,
			fallback: resp.Fallback, body: []byte(resp.Body), err: resp.Err(),
		}, nil
	}

	resp, err := c.r.AsJSON(ctx)
	if err != nil && !(httpclient.IsDeserialization(err) && resp != nil) {
		return nil, err
	}
	out := &cliResponse{
		status: resp.StatusCode, statusText: resp.StatusText, headers: resp.Headers,
		fallback: resp.Fallback, err: resp.Err(),
	}
	switch {
	case err != nil:
		out.body = resp.Raw()
	case output == "json":
		out.body = []byte(resp.Body.String())
	default:
		out.tree = resp.Body.Interface()
	}
	return out, nil
}

func printResponse(w io.Writer, resp *cliResponse, f requestFlags) error {
	if f.include {
		if resp.fallback {
			fmt.Fprintln(w, "# fallback")
		}
		fmt.Fprintf(w, "HTTP %d %s\n", resp.status, resp.statusText)
		for _, name := range resp.headers.Names() {
			for _, v := range resp.headers.Get(name) {
				fmt.Fprintf(w, "%s: %s\n", name, v)
			}
		}
		fmt.Fprintln(w)
	}

	body := resp.body
	if resp.tree != nil {
		mapper, _ := codec.ForFormat(f.output)
		data, err := mapper.Write(resp.tree)
		if err != nil {
			return fmt.Errorf("write %s: %w", f.output, err)
		}
		body = data
	}
	return writeLine(w, body)
}

// writeLine writes data followed by exactly one newline.
func writeLine(w io.Writer, data []byte) error {
	data = bytes.TrimRight(data, "\n")
	if len(data) == 0 {
		return nil
	}
	_, err := w.Write(append(data, '\n'))
	return err
}
