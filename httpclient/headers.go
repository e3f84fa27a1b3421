package httpclient

import (
	"net/http"
	"sort"
	"strings"
)

// Headers is an ordered multi-value header container with case-insensitive
// lookup. Each name keeps the casing it was stored with for output.
//
// Put replaces a bucket and adopts the given casing; Add appends under the
// casing seen first. The zero value is ready to use. Headers is not safe for
// concurrent mutation.
type Headers struct {
	entries []headerEntry
	index   map[string]int
}

type headerEntry struct {
	name   string
	values []string
}

// NewHeaders returns an empty container.
func NewHeaders() *Headers {
	return &Headers{}
}

func headerKey(name string) string {
	return strings.ToLower(name)
}

func (h *Headers) lookup(name string) (int, bool) {
	if h == nil || h.index == nil {
		return 0, false
	}
	i, ok := h.index[headerKey(name)]
	return i, ok
}

// Put replaces every value stored under name.
func (h *Headers) Put(name string, values ...string) {
	vals := append([]string(nil), values...)
	if i, ok := h.lookup(name); ok {
		h.entries[i] = headerEntry{name: name, values: vals}
		return
	}
	if h.index == nil {
		h.index = make(map[string]int)
	}
	h.index[headerKey(name)] = len(h.entries)
	h.entries = append(h.entries, headerEntry{name: name, values: vals})
}

// Add appends a value under name.
func (h *Headers) Add(name, value string) {
	if i, ok := h.lookup(name); ok {
		h.entries[i].values = append(h.entries[i].values, value)
		return
	}
	h.Put(name, value)
}

// Get returns the values stored under name, or nil.
func (h *Headers) Get(name string) []string {
	i, ok := h.lookup(name)
	if !ok {
		return nil
	}
	return append([]string(nil), h.entries[i].values...)
}

// First returns the first value stored under name, or "".
func (h *Headers) First(name string) string {
	i, ok := h.lookup(name)
	if !ok || len(h.entries[i].values) == 0 {
		return ""
	}
	return h.entries[i].values[0]
}

// Has reports whether name is present.
func (h *Headers) Has(name string) bool {
	_, ok := h.lookup(name)
	return ok
}

// Del removes name.
func (h *Headers) Del(name string) {
	i, ok := h.lookup(name)
	if !ok {
		return
	}
	h.entries = append(h.entries[:i], h.entries[i+1:]...)
	delete(h.index, headerKey(name))
	for j := i; j < len(h.entries); j++ {
		h.index[headerKey(h.entries[j].name)] = j
	}
}

// Names returns the stored names in insertion order.
func (h *Headers) Names() []string {
	if h == nil {
		return nil
	}
	names := make([]string, len(h.entries))
	for i, e := range h.entries {
		names[i] = e.name
	}
	return names
}

// Len returns the number of distinct names.
func (h *Headers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}

// Each calls fn for every name in insertion order.
func (h *Headers) Each(fn func(name string, values []string)) {
	if h == nil {
		return
	}
	for _, e := range h.entries {
		fn(e.name, e.values)
	}
}

// Clone returns a deep copy.
func (h *Headers) Clone() *Headers {
	out := NewHeaders()
	h.Each(func(name string, values []string) {
		out.Put(name, values...)
	})
	return out
}

// Merge returns a copy of base with every name in over replacing the
// matching bucket.
func Merge(base, over *Headers) *Headers {
	out := base.Clone()
	over.Each(func(name string, values []string) {
		out.Put(name, values...)
	})
	return out
}

// ToHTTP converts to http.Header, keeping the stored casing on the wire.
func (h *Headers) ToHTTP() http.Header {
	out := make(http.Header, h.Len())
	h.Each(func(name string, values []string) {
		out[name] = append([]string(nil), values...)
	})
	return out
}

// HeadersFromHTTP converts http.Header, ordering names alphabetically.
func HeadersFromHTTP(src http.Header) *Headers {
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Strings(names)

	out := NewHeaders()
	for _, name := range names {
		for _, v := range src[name] {
			out.Add(name, v)
		}
	}
	return out
}

// HeadersFromMap builds a container from single-valued headers, ordering
// names alphabetically.
func HeadersFromMap(m map[string]string) *Headers {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := NewHeaders()
	for _, name := range names {
		out.Put(name, m[name])
	}
	return out
}
