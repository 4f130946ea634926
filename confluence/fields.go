package confluence

import (
	"net/url"
	"slices"
	"strings"
)

// FieldOptions selects what a v2 page request returns.
type FieldOptions struct {
	// BodyFormat is the body representation to include; empty omits the body.
	BodyFormat string

	IncludeVersion    bool
	IncludeLabels     bool
	IncludeProperties bool
	IncludeOperations bool

	// CustomIncludes become include-<name>=true parameters.
	CustomIncludes []string
}

// DefaultFieldOptions returns the options used when none are given: the ADF
// body and the version.
func DefaultFieldOptions() FieldOptions {
	return FieldOptions{
		BodyFormat:     RepresentationADF,
		IncludeVersion: true,
	}
}

// AllFieldOptions returns options including every optional section.
func AllFieldOptions() FieldOptions {
	return FieldOptions{
		BodyFormat:        RepresentationADF,
		IncludeVersion:    true,
		IncludeLabels:     true,
		IncludeProperties: true,
		IncludeOperations: true,
	}
}

// WithIncludes returns a copy with additional custom includes, skipping ones
// already present.
func (o FieldOptions) WithIncludes(additional ...string) FieldOptions {
	o.CustomIncludes = slices.Clone(o.CustomIncludes)
	for _, name := range additional {
		if name != "" && !slices.Contains(o.CustomIncludes, name) {
			o.CustomIncludes = append(o.CustomIncludes, name)
		}
	}
	return o
}

// Query returns the options as v2 query parameters.
func (o FieldOptions) Query() url.Values {
	q := url.Values{}
	if o.BodyFormat != "" {
		q.Set("body-format", o.BodyFormat)
	}
	if o.IncludeVersion {
		q.Set("include-version", "true")
	}
	if o.IncludeLabels {
		q.Set("include-labels", "true")
	}
	if o.IncludeProperties {
		q.Set("include-properties", "true")
	}
	if o.IncludeOperations {
		q.Set("include-operations", "true")
	}
	for _, name := range o.CustomIncludes {
		q.Set("include-"+name, "true")
	}
	return q
}

// ParseIncludes splits a comma-separated include list such as the value of
// CONFLUENCE_CUSTOM_INCLUDES.
func ParseIncludes(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SearchExpand returns the expand parameter for v1 CQL search: the storage
// body and version, plus space, history and metadata when all is set, plus
// any additional entries not already listed.
func SearchExpand(all bool, additional ...string) string {
	expand := []string{"body.storage", "version"}
	if all {
		expand = append(expand, "space", "history", "metadata")
	}
	for _, name := range additional {
		if name != "" && !slices.Contains(expand, name) {
			expand = append(expand, name)
		}
	}
	return strings.Join(expand, ",")
}
