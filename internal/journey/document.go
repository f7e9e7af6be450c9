package journey

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Node is a read-only view of one value inside a parsed response body.
// The zero Node is absent; every accessor on an absent Node reports a miss
// rather than failing, so lookups can be chained freely.
type Node struct {
	value   any
	present bool
}

// ParseDocument decodes a response body into a navigable tree.
// Numbers are kept as json.Number so they render exactly as the service sent them.
func ParseDocument(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Node{}, fmt.Errorf("decoding document: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Node{}, fmt.Errorf("decoding document: trailing data after top-level value")
	}

	return Node{value: v, present: true}, nil
}

// Exists reports whether the node holds a non-null value.
func (n Node) Exists() bool {
	return n.present && n.value != nil
}

// Get returns the member named key, or an absent Node when n is not an
// object or has no such member.
func (n Node) Get(key string) Node {
	obj, ok := n.value.(map[string]any)
	if !ok {
		return Node{}
	}
	v, ok := obj[key]
	if !ok {
		return Node{}
	}
	return Node{value: v, present: true}
}

// Path follows a chain of object members.
func (n Node) Path(keys ...string) Node {
	cur := n
	for _, k := range keys {
		cur = cur.Get(k)
		if !cur.Exists() {
			return Node{}
		}
	}
	return cur
}

// First returns the first member among keys that is present and non-null.
// It is the single lookup used for every field the service publishes under
// more than one name.
func (n Node) First(keys ...string) Node {
	for _, k := range keys {
		if v := n.Get(k); v.Exists() {
			return v
		}
	}
	return Node{}
}

// String returns the node as text. Strings are returned as-is, numbers and
// booleans in their JSON spelling, objects and arrays as compact JSON.
func (n Node) String() (string, bool) {
	if !n.Exists() {
		return "", false
	}
	switch v := n.value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(raw), true
	}
}

// StringOr returns the node as text, or def when it is absent.
func (n Node) StringOr(def string) string {
	if s, ok := n.String(); ok {
		return s
	}
	return def
}

// Int returns the node as an integer. Numeric strings are accepted since some
// API versions quote their amounts; fractional values are truncated.
func (n Node) Int() (int64, bool) {
	if !n.Exists() {
		return 0, false
	}

	var s string
	switch v := n.value.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = v
	default:
		return 0, false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

// Array returns the elements of an array node.
func (n Node) Array() ([]Node, bool) {
	arr, ok := n.value.([]any)
	if !ok || !n.present {
		return nil, false
	}
	out := make([]Node, len(arr))
	for i, v := range arr {
		out[i] = Node{value: v, present: true}
	}
	return out, true
}

// Items returns the elements of an array node, or nil for anything else.
func (n Node) Items() []Node {
	items, _ := n.Array()
	return items
}
