package adf

import (
	"errors"
	"fmt"
)

// Envelope validation errors. A *ValidationError matches ErrInvalidDocument
// and exactly one of the reason sentinels.
var (
	ErrInvalidDocument = errors.New("invalid ADF")
	ErrNotAnObject     = errors.New("must be an object")
	ErrMissingField    = errors.New("missing required field")
	ErrWrongType       = errors.New("field has wrong type")
	ErrWrongVersion    = errors.New("version must be 1")
)

// Input errors.
var (
	ErrInvalidInput = errors.New("must be string or ADF object")
)

// Reason classifies an envelope validation failure.
type Reason string

// Validation failure reasons.
const (
	ReasonNotAnObject  Reason = "NotAnObject"
	ReasonMissingField Reason = "MissingField"
	ReasonWrongType    Reason = "WrongType"
	ReasonWrongVersion Reason = "WrongVersion"
)

// ValidationError describes why a value is not a valid ADF envelope.
type ValidationError struct {
	Reason Reason

	// Field names the offending envelope key for MissingField, and the
	// expected value ("doc" or "array") for WrongType.
	Field string

	// Got is the rejected value, when there is one.
	Got any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonNotAnObject:
		return "invalid ADF: must be an object"
	case ReasonMissingField:
		return fmt.Sprintf("invalid ADF: missing required field '%s'", e.Field)
	case ReasonWrongType:
		if e.Field == "doc" {
			return fmt.Sprintf("invalid ADF: type must be 'doc', got '%v'", e.Got)
		}
		return fmt.Sprintf("invalid ADF: content must be %s", e.Field)
	case ReasonWrongVersion:
		return fmt.Sprintf("invalid ADF: version must be 1, got %v", e.Got)
	default:
		return "invalid ADF"
	}
}

// Is matches ErrInvalidDocument and the sentinel for the failure reason.
func (e *ValidationError) Is(target error) bool {
	if target == ErrInvalidDocument {
		return true
	}
	switch e.Reason {
	case ReasonNotAnObject:
		return target == ErrNotAnObject
	case ReasonMissingField:
		return target == ErrMissingField
	case ReasonWrongType:
		return target == ErrWrongType
	case ReasonWrongVersion:
		return target == ErrWrongVersion
	}
	return false
}

// InputError reports an input value of a shape the dispatcher does not accept.
type InputError struct {
	Field string
	Got   any
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("%s must be string or ADF object, got %s", e.Field, describe(e.Got))
}

// Unwrap returns ErrInvalidInput.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func describe(v any) string {
	switch val := v.(type) {
	case bool:
		return fmt.Sprintf("boolean %t", val)
	case []any:
		return fmt.Sprintf("array of %d elements", len(val))
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T %v", v, v)
	}
}
