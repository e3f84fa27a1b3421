package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/restclient/codec"
	"github.com/kbukum/restclient/jsonnode"
	"github.com/kbukum/restclient/logger"
	"github.com/kbukum/restclient/observability"
	"github.com/kbukum/restclient/resilience"
)

// Execution modes, reported in logs and spans.
const (
	ModeSync     = "sync"
	ModeFuture   = "future"
	ModeCallback = "callback"
)

// Execute runs r on the calling goroutine and decodes the body into shape.
//
// A missing route parameter fails before the guard or the transport is
// consulted. A rejected or failed call resolves to the request's fallback
// when one is set. A call cancelled by its caller always returns an error
// for which IsCancelled is true and is reported to the guard as neither
// success nor failure. HTTP error statuses are returned as responses; see
// Response.Err. A body that does not match shape yields the response
// together with an error for which IsDeserialization is true.
func Execute[T any](ctx context.Context, r *Request, shape codec.Shape[T]) (*Response[T], error) {
	c := r.client
	if !c.track() {
		return nil, NewClosedError()
	}
	defer c.untrack()

	d, err := r.describe(ctx)
	if err != nil {
		return nil, err
	}
	return execute(ctx, c, d, shape, ModeSync)
}

// ExecuteAsync runs r on the client's worker pool and returns a Future.
// Waiting for a free worker is part of the call, not a failure.
func ExecuteAsync[T any](ctx context.Context, r *Request, shape codec.Shape[T]) *Future[T] {
	return executeAsync(ctx, r, shape, nil, ModeFuture)
}

// ExecuteCallback runs r like ExecuteAsync and delivers the outcome to cb.
// Exactly one of cb's hooks fires, also when the returned Future is
// cancelled concurrently.
func ExecuteCallback[T any](ctx context.Context, r *Request, shape codec.Shape[T], cb Callback[T]) *Future[T] {
	return executeAsync(ctx, r, shape, &cb, ModeCallback)
}

func executeAsync[T any](ctx context.Context, r *Request, shape codec.Shape[T], cb *Callback[T], mode string) *Future[T] {
	c := r.client
	ctx, cancel := context.WithCancel(ctx)
	f := newFuture(cancel, cb)

	if !c.track() {
		cancel()
		f.settle(nil, NewClosedError())
		return f
	}

	d, err := r.describe(ctx)
	if err != nil {
		c.untrack()
		cancel()
		f.settle(nil, err)
		return f
	}

	go func() {
		defer c.untrack()
		defer cancel()

		if err := c.pool.Acquire(ctx); err != nil {
			f.settle(nil, NewTransportError(err))
			return
		}
		defer c.pool.Release()

		if f.IsDone() {
			return
		}
		resp, err := execute(ctx, c, d, shape, mode)
		f.settle(resp, err)
	}()
	return f
}

// execute consults the guard, dispatches and decodes.
func execute[T any](ctx context.Context, c *Client, d *Descriptor, shape codec.Shape[T], mode string) (*Response[T], error) {
	start := time.Now()
	ctx, obs := c.inst.StartRequest(ctx, c.cfg.Name, d.Method, d.URL,
		attribute.String(observability.AttrMode, mode),
		attribute.String(observability.AttrRequestID, d.RequestID),
	)

	fields := logger.Fields(
		logger.FieldMethod, d.Method,
		logger.FieldURL, d.URL,
		logger.FieldMode, mode,
	)
	if d.RequestID != "" {
		fields[logger.FieldRequestID] = d.RequestID
	}

	if !c.guard.Allow() {
		cause := NewCircuitOpenError(c.cfg.Name)
		if d.HasFallback {
			return serveFallback(ctx, c, d, shape, obs, cause, fields)
		}
		c.log.Debug("request rejected by circuit breaker", fields)
		obs.End(ctx, 0, observability.OutcomeRejected, cause)
		return nil, cause
	}

	raw, err := c.send(ctx, d)
	if err != nil {
		terr := NewTransportError(err)
		if terr.Code == ErrCodeCancelled || errors.Is(ctx.Err(), context.Canceled) {
			resilience.ReleaseGuard(c.guard)
			if terr.Code != ErrCodeCancelled {
				terr = NewCancelledError(ctx.Err())
			}
			fields[logger.FieldError] = terr.Error()
			c.log.Debug("request cancelled", logger.MergeWithDuration(fields, time.Since(start)))
			obs.End(ctx, 0, observability.OutcomeCancelled, terr)
			return nil, terr
		}

		c.guard.OnFailure()
		if d.HasFallback {
			return serveFallback(ctx, c, d, shape, obs, terr, fields)
		}
		fields[logger.FieldError] = terr.Error()
		c.log.Debug("request failed", logger.MergeWithDuration(fields, time.Since(start)))
		obs.End(ctx, 0, observability.OutcomeFailure, terr)
		return nil, terr
	}
	c.guard.OnSuccess()

	resp := &Response[T]{
		StatusCode: raw.StatusCode,
		StatusText: raw.StatusText,
		Headers:    raw.Headers,
		raw:        raw.Body,
	}
	fields[logger.FieldStatus] = raw.StatusCode

	body, err := codec.Decode(raw.Body, shape, c.mapper)
	if err != nil {
		derr := NewDeserializationError(raw.StatusCode, raw.Body, err)
		fields[logger.FieldError] = derr.Error()
		c.log.Debug("response body did not decode", logger.MergeWithDuration(fields, time.Since(start)))
		obs.End(ctx, raw.StatusCode, observability.OutcomeDecodeError, derr)
		return resp, derr
	}
	resp.Body = body

	c.log.Debug("request completed", logger.MergeWithDuration(fields, time.Since(start)))
	obs.End(ctx, raw.StatusCode, observability.OutcomeSuccess, nil)
	return resp, nil
}

func (c *Client) send(ctx context.Context, d *Descriptor) (*RawResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("rate limiter: %w: %v", context.DeadlineExceeded, err)
		}
	}
	return c.transport.Send(ctx, d)
}

// serveFallback builds the synthetic response for a request that could not
// be completed. A fallback that is not a T is converted through shape.
func serveFallback[T any](ctx context.Context, c *Client, d *Descriptor, shape codec.Shape[T], obs *observability.RequestObservation, cause error, fields map[string]interface{}) (*Response[T], error) {
	fields[logger.FieldError] = cause.Error()

	body, err := codec.Convert(d.Fallback, shape, c.mapper)
	if err != nil {
		derr := NewDeserializationError(0, nil, fmt.Errorf("fallback: %w", err))
		obs.End(ctx, 0, observability.OutcomeDecodeError, derr)
		return nil, derr
	}

	c.log.Warn("serving fallback response", fields)
	obs.End(ctx, 0, observability.OutcomeFallback, cause)
	return &Response[T]{
		StatusCode: 200,
		StatusText: FallbackStatusText,
		Headers:    NewHeaders(),
		Body:       body,
		Fallback:   true,
	}, nil
}

// AsString executes the request and returns the body as text.
func (r *Request) AsString(ctx context.Context) (*Response[string], error) {
	return Execute(ctx, r, codec.String())
}

// AsBinary executes the request and returns the body as a reader.
func (r *Request) AsBinary(ctx context.Context) (*Response[io.Reader], error) {
	return Execute(ctx, r, codec.Binary())
}

// AsJSON executes the request and parses the body into a tree.
func (r *Request) AsJSON(ctx context.Context) (*Response[*jsonnode.Node], error) {
	return Execute(ctx, r, codec.Tree())
}

// AsStringAsync is the async form of AsString.
func (r *Request) AsStringAsync(ctx context.Context) *Future[string] {
	return ExecuteAsync(ctx, r, codec.String())
}

// AsBinaryAsync is the async form of AsBinary.
func (r *Request) AsBinaryAsync(ctx context.Context) *Future[io.Reader] {
	return ExecuteAsync(ctx, r, codec.Binary())
}

// AsJSONAsync is the async form of AsJSON.
func (r *Request) AsJSONAsync(ctx context.Context) *Future[*jsonnode.Node] {
	return ExecuteAsync(ctx, r, codec.Tree())
}

// AsStringCallback is the callback form of AsString.
func (r *Request) AsStringCallback(ctx context.Context, cb Callback[string]) *Future[string] {
	return ExecuteCallback(ctx, r, codec.String(), cb)
}

// AsBinaryCallback is the callback form of AsBinary.
func (r *Request) AsBinaryCallback(ctx context.Context, cb Callback[io.Reader]) *Future[io.Reader] {
	return ExecuteCallback(ctx, r, codec.Binary(), cb)
}

// AsJSONCallback is the callback form of AsJSON.
func (r *Request) AsJSONCallback(ctx context.Context, cb Callback[*jsonnode.Node]) *Future[*jsonnode.Node] {
	return ExecuteCallback(ctx, r, codec.Tree(), cb)
}

// AsObject executes r and reads the body into T with the client's
// ObjectMapper.
func AsObject[T any](ctx context.Context, r *Request) (*Response[T], error) {
	return Execute(ctx, r, codec.Object[T]())
}

// AsListOf executes r and reads the body into a []T.
func AsListOf[T any](ctx context.Context, r *Request) (*Response[[]T], error) {
	return Execute(ctx, r, codec.Object[[]T]())
}

// AsObjectAsync is the async form of AsObject.
func AsObjectAsync[T any](ctx context.Context, r *Request) *Future[T] {
	return ExecuteAsync(ctx, r, codec.Object[T]())
}

// AsObjectCallback is the callback form of AsObject.
func AsObjectCallback[T any](ctx context.Context, r *Request, cb Callback[T]) *Future[T] {
	return ExecuteCallback(ctx, r, codec.Object[T](), cb)
}
