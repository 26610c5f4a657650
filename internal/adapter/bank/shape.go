package bank

import (
	"bytes"
	"encoding/json"
)

// The transaction API's response shape is not guaranteed. It may be a
// bare array of transactions, or an object nesting the array under one
// of several known paths. listPaths is the probe order; the first path
// whose leaf is an array wins. Adding a new shape is a one-line change.
var listPaths = [][]string{
	{"document", "listTransaction"},
	{"transactions"},
	{"value"},
	{"value", "transactions"},
	{"data"},
}

// extractList locates the transaction array inside body. It returns the
// raw array and true on a match, or nil and false when no known shape
// applies (callers degrade to an empty result with a warning, never an
// error).
func extractList(body []byte) (json.RawMessage, bool) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, false
	}
	if trimmed[0] == '[' {
		return trimmed, true
	}
	if trimmed[0] != '{' {
		return nil, false
	}

	for _, path := range listPaths {
		if list, ok := walkPath(trimmed, path); ok {
			return list, true
		}
	}
	return nil, false
}

// walkPath descends objects along path; the leaf must be an array.
func walkPath(raw json.RawMessage, path []string) (json.RawMessage, bool) {
	node := raw
	for _, key := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(node, &obj); err != nil {
			return nil, false
		}
		next, ok := obj[key]
		if !ok {
			return nil, false
		}
		node = next
	}

	leaf := bytes.TrimLeft(node, " \t\r\n")
	if len(leaf) == 0 || leaf[0] != '[' {
		return nil, false
	}
	return leaf, true
}
