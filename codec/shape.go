package codec

import (
	"fmt"
	"io"
	"reflect"

	"github.com/kbukum/restclient/jsonnode"
)

// Kind identifies the representation a Shape decodes into.
type Kind int

const (
	// KindObject reads the payload into a Go value through an ObjectMapper.
	KindObject Kind = iota
	// KindString decodes the payload as UTF-8 text.
	KindString
	// KindBinary exposes the payload as an io.Reader without parsing.
	KindBinary
	// KindTree parses the payload into a *jsonnode.Node.
	KindTree
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindTree:
		return "tree"
	default:
		return "unknown"
	}
}

// Shape declares the type a payload decodes into. The zero value decodes
// into T through the mapper.
type Shape[T any] struct {
	kind Kind
}

// String decodes the payload as text.
func String() Shape[string] { return Shape[string]{kind: KindString} }

// Binary exposes the payload as a reader.
func Binary() Shape[io.Reader] { return Shape[io.Reader]{kind: KindBinary} }

// Tree parses the payload into a JSON tree.
func Tree() Shape[*jsonnode.Node] { return Shape[*jsonnode.Node]{kind: KindTree} }

// Object reads the payload into T through an ObjectMapper.
func Object[T any]() Shape[T] { return Shape[T]{kind: KindObject} }

// Kind returns the shape's representation.
func (s Shape[T]) Kind() Kind { return s.kind }

// Name describes the shape for errors and logs, e.g. "object(main.User)".
func (s Shape[T]) Name() string {
	if s.kind != KindObject {
		return s.kind.String()
	}
	return fmt.Sprintf("object(%s)", reflect.TypeFor[T]())
}
