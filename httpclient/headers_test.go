package httpclient

import (
	"net/http"
	"reflect"
	"testing"
)

func TestHeaders_CaseInsensitive(t *testing.T) {
	h := NewHeaders()
	h.Put("Content-Type", "application/json")

	for _, name := range []string{"content-type", "CONTENT-TYPE", "Content-Type", "cOnTeNt-TyPe"} {
		if got := h.First(name); got != "application/json" {
			t.Errorf("First(%q) = %q", name, got)
		}
		if !h.Has(name) {
			t.Errorf("Has(%q) = false", name)
		}
	}
	if h.Len() != 1 {
		t.Errorf("expected a single bucket, got %d", h.Len())
	}
}

func TestHeaders_PutReplaces(t *testing.T) {
	h := NewHeaders()
	h.Add("Accept", "text/plain")
	h.Add("accept", "text/html")
	h.Put("ACCEPT", "application/json")

	if got := h.Get("accept"); !reflect.DeepEqual(got, []string{"application/json"}) {
		t.Errorf("expected only the replacement, got %v", got)
	}
	if names := h.Names(); !reflect.DeepEqual(names, []string{"ACCEPT"}) {
		t.Errorf("expected Put to adopt its casing, got %v", names)
	}
}

func TestHeaders_AddAccumulates(t *testing.T) {
	h := NewHeaders()
	h.Add("X-Tag", "a")
	h.Add("x-tag", "b")

	if got := h.Get("X-TAG"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("expected [a b], got %v", got)
	}
	if names := h.Names(); !reflect.DeepEqual(names, []string{"X-Tag"}) {
		t.Errorf("expected the first casing to stick, got %v", names)
	}
}

func TestHeaders_GetReturnsCopy(t *testing.T) {
	h := NewHeaders()
	h.Put("X-A", "1")
	vals := h.Get("x-a")
	vals[0] = "changed"
	if h.First("X-A") != "1" {
		t.Error("Get must not expose internal storage")
	}
}

func TestHeaders_Del(t *testing.T) {
	h := NewHeaders()
	h.Put("A", "1")
	h.Put("B", "2")
	h.Put("C", "3")
	h.Del("b")

	if h.Has("B") {
		t.Error("expected B removed")
	}
	if h.First("c") != "3" {
		t.Error("expected C still reachable after reindexing")
	}
	if names := h.Names(); !reflect.DeepEqual(names, []string{"A", "C"}) {
		t.Errorf("unexpected names %v", names)
	}
	h.Del("missing")
}

func TestHeaders_ZeroValueAndNil(t *testing.T) {
	var h Headers
	h.Add("X", "1")
	if h.First("x") != "1" {
		t.Error("zero value should be usable")
	}

	var nilHeaders *Headers
	if nilHeaders.Has("x") || nilHeaders.Len() != 0 || nilHeaders.First("x") != "" {
		t.Error("nil container should read as empty")
	}
	if nilHeaders.Clone().Len() != 0 {
		t.Error("clone of nil should be empty")
	}
}

func TestMerge(t *testing.T) {
	base := NewHeaders()
	base.Put("Accept", "text/plain")
	base.Put("X-Client", "base")

	over := NewHeaders()
	over.Put("accept", "application/json")

	merged := Merge(base, over)
	if merged.First("Accept") != "application/json" {
		t.Errorf("expected the override to win, got %q", merged.First("Accept"))
	}
	if merged.First("X-Client") != "base" {
		t.Error("expected base headers to be kept")
	}
	if base.First("Accept") != "text/plain" {
		t.Error("Merge must not modify base")
	}
}

func TestHeaders_HTTPConversion(t *testing.T) {
	h := NewHeaders()
	h.Put("x-lower", "1")
	h.Add("X-Multi", "a")
	h.Add("X-Multi", "b")

	out := h.ToHTTP()
	if _, ok := out["x-lower"]; !ok {
		t.Errorf("expected casing kept on the wire, got %v", out)
	}
	if !reflect.DeepEqual(out["X-Multi"], []string{"a", "b"}) {
		t.Errorf("unexpected values %v", out["X-Multi"])
	}

	back := HeadersFromHTTP(http.Header{"B": {"2"}, "A": {"1", "11"}})
	if names := back.Names(); !reflect.DeepEqual(names, []string{"A", "B"}) {
		t.Errorf("expected sorted names, got %v", names)
	}
	if got := back.Get("a"); !reflect.DeepEqual(got, []string{"1", "11"}) {
		t.Errorf("unexpected values %v", got)
	}
}

func TestHeadersFromMap(t *testing.T) {
	h := HeadersFromMap(map[string]string{"Z": "26", "A": "1"})
	if names := h.Names(); !reflect.DeepEqual(names, []string{"A", "Z"}) {
		t.Errorf("expected sorted names, got %v", names)
	}
}
