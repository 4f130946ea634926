package adf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Decode reads one JSON value from r. Numbers are kept as json.Number so that
// an integer version can be told apart from a decimal one.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode adf json: %w", err)
	}
	return v, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(data []byte) (any, error) {
	return Decode(bytes.NewReader(data))
}

// DocumentFromValue converts a decoded JSON value into a Document without
// validating it. Missing or malformed fields become zero values.
func DocumentFromValue(v any) *Document {
	doc := &Document{}
	obj, ok := v.(map[string]any)
	if !ok {
		return doc
	}
	doc.Type, _ = obj["type"].(string)
	if version, ok := toInt(obj["version"]); ok {
		doc.Version = int(version)
	}
	doc.Content = nodesFromValue(obj["content"])
	return doc
}

// NodeFromValue converts a decoded JSON value into a Node. It never fails:
// non-object values produce a node with KindUnknown and an empty Type.
func NodeFromValue(v any) Node {
	obj, ok := v.(map[string]any)
	if !ok {
		return Node{}
	}

	typeName, _ := obj["type"].(string)
	n := Node{Kind: ParseKind(typeName), Type: typeName}
	n.Text, _ = obj["text"].(string)
	n.Attrs, _ = obj["attrs"].(map[string]any)
	n.Content = nodesFromValue(obj["content"])

	if rawMarks, ok := obj["marks"].([]any); ok {
		for _, rm := range rawMarks {
			if _, isObj := rm.(map[string]any); !isObj {
				continue
			}
			n.Marks = append(n.Marks, markFromValue(rm))
		}
	}
	return n
}

// nodesFromValue returns nil when v is not an array, and a non-nil slice
// (possibly empty) when it is. Renderers rely on that distinction.
func nodesFromValue(v any) []Node {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	nodes := make([]Node, 0, len(arr))
	for _, item := range arr {
		if _, isObj := item.(map[string]any); !isObj {
			continue
		}
		nodes = append(nodes, NodeFromValue(item))
	}
	return nodes
}

func markFromValue(v any) Mark {
	obj, ok := v.(map[string]any)
	if !ok {
		return Mark{}
	}
	typeName, _ := obj["type"].(string)
	m := Mark{Kind: ParseMarkKind(typeName), Type: typeName}
	m.Attrs, _ = obj["attrs"].(map[string]any)
	return m
}

// Value returns the document as generic JSON data, the shape accepted by
// Validate and by HTTP request bodies.
func (d *Document) Value() map[string]any {
	content := make([]any, 0, len(d.Content))
	for i := range d.Content {
		content = append(content, d.Content[i].Value())
	}
	return map[string]any{
		"type":    d.Type,
		"version": d.Version,
		"content": content,
	}
}

// Value returns the node as generic JSON data.
func (n *Node) Value() map[string]any {
	out := map[string]any{"type": n.TypeName()}
	if n.Text != "" {
		out["text"] = n.Text
	}
	if len(n.Attrs) > 0 {
		out["attrs"] = n.Attrs
	}
	if len(n.Content) > 0 {
		content := make([]any, 0, len(n.Content))
		for i := range n.Content {
			content = append(content, n.Content[i].Value())
		}
		out["content"] = content
	}
	if len(n.Marks) > 0 {
		marks := make([]any, 0, len(n.Marks))
		for _, m := range n.Marks {
			mv := map[string]any{"type": m.TypeName()}
			if len(m.Attrs) > 0 {
				mv["attrs"] = m.Attrs
			}
			marks = append(marks, mv)
		}
		out["marks"] = marks
	}
	return out
}

// attrString returns attrs[key] when it is a string.
func attrString(attrs map[string]any, key string) (string, bool) {
	s, ok := attrs[key].(string)
	return s, ok
}

// attrStringOr returns attrs[key] when it is a string, otherwise fallback.
func attrStringOr(attrs map[string]any, key, fallback string) string {
	if s, ok := attrString(attrs, key); ok {
		return s
	}
	return fallback
}

// attrInt returns attrs[key] when it holds an integral number.
func attrInt(attrs map[string]any, key string) (int64, bool) {
	return toInt(attrs[key])
}

// toInt accepts Go integers, json.Number integers and integral float64
// values (what encoding/json produces without UseNumber).
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// numericString renders a numeric attr as decimal text.
func numericString(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case json.Number:
		return n.String(), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	if i, ok := toInt(v); ok {
		return strconv.FormatInt(i, 10), true
	}
	return "", false
}
