package jsonnode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Kind classifies a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// ErrNotContainer is returned by Parse when the payload is valid JSON but
// neither an object nor an array.
var ErrNotContainer = errors.New("jsonnode: payload is neither an object nor an array")

// Node is a parsed JSON value.
type Node struct {
	kind   Kind
	text   string // string value or number literal
	flag   bool
	keys   []string
	fields map[string]*Node
	items  []*Node
}

// Parse builds a tree from a JSON object or array. An empty or blank payload
// yields an empty object.
func Parse(raw []byte) (*Node, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return &Node{kind: KindObject, fields: map[string]*Node{}}, nil
	}
	n, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if n.kind != KindObject && n.kind != KindArray {
		return nil, ErrNotContainer
	}
	return n, nil
}

// Object builds an object node from ordered keys and values.
func Object(keys []string, values []*Node) *Node {
	n := &Node{kind: KindObject, fields: make(map[string]*Node, len(keys))}
	for i, k := range keys {
		n.set(k, values[i])
	}
	return n
}

// Array builds an array node.
func Array(items ...*Node) *Node {
	return &Node{kind: KindArray, items: items}
}

// StringValue builds a string node.
func StringValue(s string) *Node { return &Node{kind: KindString, text: s} }

func decode(raw []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	n, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("jsonnode: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("jsonnode: unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	return n, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q at offset %d", v, dec.InputOffset())
	case string:
		return &Node{kind: KindString, text: v}, nil
	case json.Number:
		return &Node{kind: KindNumber, text: v.String()}, nil
	case bool:
		return &Node{kind: KindBool, flag: v}, nil
	case nil:
		return &Node{kind: KindNull}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func decodeObject(dec *json.Decoder) (*Node, error) {
	n := &Node{kind: KindObject, fields: map[string]*Node{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key at offset %d", dec.InputOffset())
		}
		child, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		n.set(key, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeArray(dec *json.Decoder) (*Node, error) {
	n := &Node{kind: KindArray, items: []*Node{}}
	for dec.More() {
		child, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		n.items = append(n.items, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return n, nil
}

// set keeps the first position of a repeated key and the last value.
func (n *Node) set(key string, child *Node) {
	if _, dup := n.fields[key]; !dup {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = child
}

// Kind returns the node's kind.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

// IsArray reports whether the node was parsed from an array.
func (n *Node) IsArray() bool {
	return n != nil && n.kind == KindArray
}

// IsObject reports whether the node was parsed from an object.
func (n *Node) IsObject() bool {
	return n != nil && n.kind == KindObject
}

// IsNull reports whether the node is JSON null or missing.
func (n *Node) IsNull() bool {
	return n == nil || n.kind == KindNull
}

// AsObject returns n when it is an object and nil otherwise.
func (n *Node) AsObject() *Node {
	if !n.IsObject() {
		return nil
	}
	return n
}

// AsArray returns the elements of an array node. An object node is returned
// as the sole element of a one-element view. Scalars yield nil.
func (n *Node) AsArray() []*Node {
	switch {
	case n.IsArray():
		return n.items
	case n.IsObject():
		return []*Node{n}
	default:
		return nil
	}
}

// Get returns the value stored under key, or nil.
func (n *Node) Get(key string) *Node {
	if !n.IsObject() {
		return nil
	}
	return n.fields[key]
}

// Has reports whether an object node holds key.
func (n *Node) Has(key string) bool {
	if !n.IsObject() {
		return false
	}
	_, ok := n.fields[key]
	return ok
}

// Index returns the i-th element of an array node, or nil.
func (n *Node) Index(i int) *Node {
	if !n.IsArray() || i < 0 || i >= len(n.items) {
		return nil
	}
	return n.items[i]
}

// Keys returns object keys in document order.
func (n *Node) Keys() []string {
	if !n.IsObject() {
		return nil
	}
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Len returns the element count of an array or the key count of an object.
func (n *Node) Len() int {
	switch {
	case n.IsArray():
		return len(n.items)
	case n.IsObject():
		return len(n.keys)
	default:
		return 0
	}
}

// Text returns the value of a string node.
func (n *Node) Text() (string, bool) {
	if n == nil || n.kind != KindString {
		return "", false
	}
	return n.text, true
}

// Float returns the value of a number node.
func (n *Node) Float() (float64, bool) {
	if n == nil || n.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(n.text, 64)
	return f, err == nil
}

// Int returns the value of a number node holding an integer.
func (n *Node) Int() (int64, bool) {
	if n == nil || n.kind != KindNumber {
		return 0, false
	}
	i, err := strconv.ParseInt(n.text, 10, 64)
	return i, err == nil
}

// Bool returns the value of a bool node.
func (n *Node) Bool() (bool, bool) {
	if n == nil || n.kind != KindBool {
		return false, false
	}
	return n.flag, true
}

// Interface converts the tree to map[string]any, []any, string,
// json.Number, bool or nil. Key order is lost in the map form.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindObject:
		m := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			m[k] = n.fields[k].Interface()
		}
		return m
	case KindArray:
		s := make([]any, len(n.items))
		for i, item := range n.items {
			s[i] = item.Interface()
		}
		return s
	case KindString:
		return n.text
	case KindNumber:
		return json.Number(n.text)
	case KindBool:
		return n.flag
	default:
		return nil
	}
}

// String returns the compact JSON form with keys in document order.
func (n *Node) String() string {
	var buf bytes.Buffer
	n.write(&buf)
	return buf.String()
}

// MarshalJSON implements json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	n.write(&buf)
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Unlike Parse it accepts
// scalars, so a Node can sit anywhere inside a mapped struct.
func (n *Node) UnmarshalJSON(data []byte) error {
	parsed, err := decode(data)
	if err != nil {
		return err
	}
	*n = *parsed
	return nil
}

func (n *Node) write(buf *bytes.Buffer) {
	if n == nil {
		buf.WriteString("null")
		return
	}
	switch n.kind {
	case KindObject:
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, k)
			buf.WriteByte(':')
			n.fields[k].write(buf)
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.write(buf)
		}
		buf.WriteByte(']')
	case KindString:
		writeString(buf, n.text)
	case KindNumber:
		buf.WriteString(n.text)
	case KindBool:
		buf.WriteString(strconv.FormatBool(n.flag))
	default:
		buf.WriteString("null")
	}
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
