package adf

import "fmt"

// Field names used when reporting rejected input.
const (
	FieldDescription = "description"
	FieldComment     = "comment"
)

// ProcessInput turns a user-supplied value into an ADF document ready to
// send. Strings are treated as Markdown, nil becomes an empty document, and
// objects must already be valid ADF and are returned unchanged. Any other
// value is rejected with an *InputError naming field.
func ProcessInput(v any, field string) (map[string]any, error) {
	switch val := v.(type) {
	case nil:
		return Build("").Value(), nil
	case string:
		return Build(val).Value(), nil
	case *string:
		if val == nil {
			return Build("").Value(), nil
		}
		return Build(*val).Value(), nil
	case map[string]any:
		if err := Validate(val); err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		return val, nil
	case *Document:
		if val == nil {
			return Build("").Value(), nil
		}
		if err := val.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		return val.Value(), nil
	default:
		return nil, &InputError{Field: field, Got: v}
	}
}

// ProcessDescriptionInput is ProcessInput for issue descriptions.
func ProcessDescriptionInput(v any) (map[string]any, error) {
	return ProcessInput(v, FieldDescription)
}

// ProcessCommentInput is ProcessInput for comment bodies.
func ProcessCommentInput(v any) (map[string]any, error) {
	return ProcessInput(v, FieldComment)
}
