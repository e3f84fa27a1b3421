package jsonnode

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParse_Object(t *testing.T) {
	node, err := Parse([]byte(`{"name":"restclient","tags":["a","b"],"count":3}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if node.IsArray() {
		t.Error("expected an object-shaped node")
	}
	arr := node.AsArray()
	if len(arr) != 1 {
		t.Fatalf("expected a one-element view, got %d", len(arr))
	}
	if arr[0] != node.AsObject() {
		t.Error("expected the sole element to be the object view")
	}
	if got := node.Keys(); !reflect.DeepEqual(got, []string{"name", "tags", "count"}) {
		t.Errorf("expected keys in document order, got %v", got)
	}
	if name, _ := node.Get("name").Text(); name != "restclient" {
		t.Errorf("expected name restclient, got %q", name)
	}
	if count, ok := node.Get("count").Int(); !ok || count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
	if node.Get("tags").Len() != 2 {
		t.Errorf("expected 2 tags, got %d", node.Get("tags").Len())
	}
}

func TestParse_Array(t *testing.T) {
	node, err := Parse([]byte(`[{"id":1},{"id":2},{"id":3}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !node.IsArray() {
		t.Error("expected an array-shaped node")
	}
	if len(node.AsArray()) != 3 {
		t.Errorf("expected 3 elements, got %d", len(node.AsArray()))
	}
	if node.AsObject() != nil {
		t.Error("expected AsObject to return nil for an array payload")
	}
	if id, _ := node.Index(1).Get("id").Int(); id != 2 {
		t.Errorf("expected id 2, got %d", id)
	}
	if node.Index(3) != nil || node.Index(-1) != nil {
		t.Error("expected nil for out-of-range indexes")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		target  error
	}{
		{"scalar string", `"just text"`, ErrNotContainer},
		{"scalar number", `42`, ErrNotContainer},
		{"broken object", `{"a":`, nil},
		{"not json", `<html></html>`, nil},
		{"trailing data", `{"a":1} {"b":2}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse([]byte(tt.payload))
			if err == nil {
				t.Fatalf("expected an error, got %v", node)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, payload := range []string{"", "  \n"} {
		node, err := Parse([]byte(payload))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !node.IsObject() || node.Len() != 0 {
			t.Errorf("expected an empty object for %q, got %s", payload, node)
		}
	}
}

func TestScalars(t *testing.T) {
	node, err := Parse([]byte(`{"s":"x","f":1.5,"b":true,"n":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f, ok := node.Get("f").Float(); !ok || f != 1.5 {
		t.Errorf("expected 1.5, got %v", f)
	}
	if _, ok := node.Get("f").Int(); ok {
		t.Error("expected Int to fail on a fractional number")
	}
	if b, ok := node.Get("b").Bool(); !ok || !b {
		t.Error("expected true")
	}
	if !node.Get("n").IsNull() || !node.Get("missing").IsNull() {
		t.Error("expected null for explicit null and missing keys")
	}
	if _, ok := node.Get("s").Float(); ok {
		t.Error("expected Float to fail on a string")
	}
	if node.Get("s").AsArray() != nil {
		t.Error("expected scalars to have no array view")
	}
	if node.Get("s").Kind() != KindString {
		t.Errorf("expected string kind, got %s", node.Get("s").Kind())
	}
}

func TestString_KeepsOrder(t *testing.T) {
	payload := `{"z":1,"a":{"y":[true,null,"q"],"b":2.50}}`
	node, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := node.String(); got != payload {
		t.Errorf("expected %s, got %s", payload, got)
	}
}

func TestDuplicateKeys(t *testing.T) {
	node, err := Parse([]byte(`{"a":1,"b":2,"a":3}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(node.Keys(), []string{"a", "b"}) {
		t.Errorf("unexpected keys %v", node.Keys())
	}
	if v, _ := node.Get("a").Int(); v != 3 {
		t.Errorf("expected last value to win, got %d", v)
	}
}

func TestInterface(t *testing.T) {
	node, err := Parse([]byte(`{"a":[1,"x"],"b":false}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"a": []any{json.Number("1"), "x"},
		"b": false,
	}
	if got := node.Interface(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNodeInsideStruct(t *testing.T) {
	var envelope struct {
		ID   int   `json:"id"`
		Data *Node `json:"data"`
	}
	if err := json.Unmarshal([]byte(`{"id":7,"data":{"k":"v"}}`), &envelope); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := envelope.Data.Get("k").Text(); v != "v" {
		t.Errorf("expected v, got %q", v)
	}

	out, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `{"id":7,"data":{"k":"v"}}` {
		t.Errorf("unexpected output %s", out)
	}
}

func TestBuilders(t *testing.T) {
	obj := Object([]string{"b", "a"}, []*Node{StringValue("1"), Array(StringValue("x"))})
	if got := obj.String(); got != `{"b":"1","a":["x"]}` {
		t.Errorf("unexpected output %s", got)
	}
}
