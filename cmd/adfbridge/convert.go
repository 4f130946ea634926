package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/adfbridge/adf"
	clierrors "github.com/randalmurphal/adfbridge/errors"
)

// Output formats for md2adf.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var md2adfCommand = &command{
	name:    "md2adf",
	usage:   "md2adf [FILE|-]",
	summary: "convert Markdown to an ADF document",
	setup: func(fs *flag.FlagSet) func(context.Context, *app, []string) error {
		format := fs.StringP("format", "f", formatJSON, "output format: json, yaml")
		compact := fs.Bool("compact", false, "single-line JSON")

		return func(_ context.Context, a *app, args []string) error {
			if len(args) > 1 {
				return usageError("md2adf takes at most one input", "md2adf [FILE|-]")
			}
			data, _, readErr := a.readInput(args)
			if readErr != nil {
				return readErr
			}
			return writeDocument(a.env.Stdout, adf.Build(string(data)).Value(), *format, *compact)
		}
	},
}

func writeDocument(w io.Writer, doc map[string]any, format string, compact bool) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if !compact {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(doc)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if encodeErr := enc.Encode(doc); encodeErr != nil {
			return encodeErr
		}
		return enc.Close()
	default:
		return usageError(fmt.Sprintf("unknown format %q", format), "md2adf --format json|yaml")
	}
}

var adf2mdCommand = &command{
	name:    "adf2md",
	usage:   "adf2md [FILE|-]",
	summary: "render an ADF document as Markdown",
	setup: func(fs *flag.FlagSet) func(context.Context, *app, []string) error {
		fs.Int("max-depth", adf.DefaultMaxDepth, "nesting depth at which rendering stops")
		highlight := fs.Bool("highlight", false, "syntax-highlight the Markdown on a terminal")

		return func(_ context.Context, a *app, args []string) error {
			if len(args) > 1 {
				return usageError("adf2md takes at most one input", "adf2md [FILE|-]")
			}
			doc, docErr := readDocument(a, args)
			if docErr != nil {
				return docErr
			}

			md := a.renderer().Render(doc) + "\n"
			if *highlight {
				return highlightMarkdown(a.env.Stdout, a.out, md)
			}
			_, writeErr := io.WriteString(a.env.Stdout, md)
			return writeErr
		}
	},
}

// readDocument reads and validates an ADF document.
func readDocument(a *app, args []string) (any, error) {
	data, source, readErr := a.readInput(args)
	if readErr != nil {
		return nil, readErr
	}
	doc, decodeErr := adf.DecodeBytes(data)
	if decodeErr != nil {
		return nil, &clierrors.CLIError{
			Err:     clierrors.ErrInvalidInput,
			Message: fmt.Sprintf("%s is not JSON", source),
			Details: decodeErr.Error(),
		}
	}
	if validateErr := adf.Validate(doc); validateErr != nil {
		return nil, fmt.Errorf("%s: %w", source, validateErr)
	}
	return doc, nil
}

var validateCommand = &command{
	name:    "validate",
	usage:   "validate [FILE|-]",
	summary: "check that a JSON value is an ADF document envelope",
	setup: func(*flag.FlagSet) func(context.Context, *app, []string) error {
		return func(_ context.Context, a *app, args []string) error {
			if len(args) > 1 {
				return usageError("validate takes at most one input", "validate [FILE|-]")
			}
			data, source, readErr := a.readInput(args)
			if readErr != nil {
				return readErr
			}

			v, decodeErr := adf.DecodeBytes(data)
			if decodeErr == nil {
				decodeErr = adf.Validate(v)
			}
			if decodeErr != nil {
				fmt.Fprintf(a.env.Stdout, "%s %s: %v\n", a.out.fail.Sprint("invalid"), source, decodeErr)
				return exitStatus(exitError)
			}
			if !a.quiet {
				fmt.Fprintf(a.env.Stdout, "%s %s\n", a.out.ok.Sprint("valid"), source)
			}
			return nil
		}
	},
}

var roundtripCommand = &command{
	name:    "roundtrip",
	usage:   "roundtrip [FILE|-]",
	summary: "convert Markdown to ADF and back, showing what changed",
	setup: func(fs *flag.FlagSet) func(context.Context, *app, []string) error {
		fs.Int("max-depth", adf.DefaultMaxDepth, "nesting depth at which rendering stops")

		return func(_ context.Context, a *app, args []string) error {
			if len(args) > 1 {
				return usageError("roundtrip takes at most one input", "roundtrip [FILE|-]")
			}
			data, source, readErr := a.readInput(args)
			if readErr != nil {
				return readErr
			}

			want := adf.NormalizeWhitespace(string(data))
			got := a.renderer().Render(adf.Build(want).Value())

			diff, changed := lineDiff(a.out, want, got)
			if changed == 0 {
				a.infof("%s: round trip is lossless", source)
				return nil
			}
			fmt.Fprint(a.env.Stdout, diff)
			a.infof("%s: %d line(s) changed", source, changed)
			return exitStatus(exitError)
		}
	},
}
