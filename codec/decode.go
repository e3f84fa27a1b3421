package codec

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/kbukum/restclient/jsonnode"
)

// DecodeError reports a payload that did not match the requested shape.
type DecodeError struct {
	Shape string
	Raw   []byte
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: decode %s: %v", e.Shape, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode converts raw into the value described by shape. A nil mapper falls
// back to the default JSON mapper.
func Decode[T any](raw []byte, shape Shape[T], mapper ObjectMapper) (T, error) {
	var zero T

	var v any
	switch shape.kind {
	case KindString:
		v = strings.ToValidUTF8(string(raw), "\uFFFD")
	case KindBinary:
		v = io.Reader(bytes.NewReader(raw))
	case KindTree:
		node, err := jsonnode.Parse(raw)
		if err != nil {
			return zero, &DecodeError{Shape: shape.Name(), Raw: raw, Err: err}
		}
		v = node
	default:
		if mapper == nil {
			mapper = Default()
		}
		var out T
		if err := mapper.Read(raw, &out); err != nil {
			return zero, &DecodeError{Shape: shape.Name(), Raw: raw, Err: err}
		}
		return out, nil
	}

	out, ok := v.(T)
	if !ok {
		return zero, &DecodeError{
			Shape: shape.Name(),
			Raw:   raw,
			Err:   fmt.Errorf("shape yields %T, not the requested type", v),
		}
	}
	return out, nil
}

// Convert adapts a value that is not a T into one. string and []byte values
// are decoded through shape; anything else is written with the mapper and
// read back as T.
func Convert[T any](v any, shape Shape[T], mapper ObjectMapper) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}
	if mapper == nil {
		mapper = Default()
	}
	switch raw := v.(type) {
	case []byte:
		return Decode(raw, shape, mapper)
	case string:
		return Decode([]byte(raw), shape, mapper)
	}

	var zero T
	raw, err := mapper.Write(v)
	if err != nil {
		return zero, &DecodeError{Shape: shape.Name(), Err: fmt.Errorf("write %T: %w", v, err)}
	}
	return Decode(raw, shape, mapper)
}
