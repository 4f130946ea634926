package adf

import (
	"encoding/json"
)

// Validate checks the top-level envelope of a decoded ADF value: an object
// with type "doc", integer version 1 and an array content. Nested nodes are
// not inspected.
//
// Versions are accepted only as Go integers or integral json.Number values;
// a float64 is treated as a decimal and rejected. Decode values with Decode
// (UseNumber) rather than a plain json.Unmarshal into any.
func Validate(v any) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return &ValidationError{Reason: ReasonNotAnObject, Got: v}
	}

	docType, ok := obj["type"].(string)
	if !ok {
		return &ValidationError{Reason: ReasonMissingField, Field: "type"}
	}
	if docType != KindDoc.String() {
		return &ValidationError{Reason: ReasonWrongType, Field: "doc", Got: docType}
	}

	version, ok := envelopeVersion(obj["version"])
	if !ok {
		return &ValidationError{Reason: ReasonMissingField, Field: "version", Got: obj["version"]}
	}
	if version != 1 {
		return &ValidationError{Reason: ReasonWrongVersion, Got: version}
	}

	content, ok := obj["content"]
	if !ok {
		return &ValidationError{Reason: ReasonMissingField, Field: "content"}
	}
	if _, isArray := content.([]any); !isArray {
		if _, isNodes := content.([]Node); !isNodes {
			return &ValidationError{Reason: ReasonWrongType, Field: "array", Got: content}
		}
	}

	return nil
}

// Validate checks the document envelope.
func (d *Document) Validate() error {
	if d.Type != KindDoc.String() {
		return &ValidationError{Reason: ReasonWrongType, Field: "doc", Got: d.Type}
	}
	if d.Version != 1 {
		return &ValidationError{Reason: ReasonWrongVersion, Got: d.Version}
	}
	if d.Content == nil {
		return &ValidationError{Reason: ReasonMissingField, Field: "content"}
	}
	return nil
}

func envelopeVersion(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}
