package main

import (
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// palette colors output for one stream. It is disabled for non-terminals
// and when no_color is set.
type palette struct {
	enabled bool

	add, del, ok, fail, dim *color.Color
}

func newPalette(w io.Writer, noColor bool) *palette {
	p := &palette{
		enabled: !noColor && isTerminal(w),
		add:     color.New(color.FgGreen),
		del:     color.New(color.FgRed),
		ok:      color.New(color.FgGreen, color.Bold),
		fail:    color.New(color.FgRed, color.Bold),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.add, p.del, p.ok, p.fail, p.dim} {
		if p.enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// highlightMarkdown writes Markdown with terminal syntax highlighting, or
// as is when the palette is disabled.
func highlightMarkdown(w io.Writer, p *palette, md string) error {
	if !p.enabled {
		_, err := io.WriteString(w, md)
		return err
	}
	return quick.Highlight(w, md, "markdown", "terminal256", "monokai")
}

// lineDiff returns a line diff of want against got and the number of
// added or removed lines.
func lineDiff(p *palette, want, got string) (string, int) {
	if want == got {
		return "", 0
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []byte
	changed := 0
	for _, d := range diffs {
		prefix, c := "  ", p.dim
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, c = "+ ", p.add
		case diffmatchpatch.DiffDelete:
			prefix, c = "- ", p.del
		}
		for _, line := range splitLines(d.Text) {
			if d.Type != diffmatchpatch.DiffEqual {
				changed++
			}
			out = append(out, c.Sprint(prefix+line)...)
			out = append(out, '\n')
		}
	}
	return string(out), changed
}

// splitLines splits text into lines without their terminators; a trailing
// newline does not produce an empty last line.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
