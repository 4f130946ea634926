package confluence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanMetadata(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "macro id",
			html: `<ac:structured-macro ac:name="code" ac:macro-id="abc-123">`,
			want: `<ac:structured-macro ac:name="code">`,
		},
		{
			name: "schema version",
			html: `<ac:structured-macro ac:name="code" ac:schema-version="1">`,
			want: `<ac:structured-macro ac:name="code">`,
		},
		{
			name: "data layout",
			html: `<table data-layout="default"><tbody></tbody></table>`,
			want: `<table><tbody></tbody></table>`,
		},
		{
			name: "cdata unwrapped",
			html: `<![CDATA[let x = 1;]]>`,
			want: `let x = 1;`,
		},
		{
			name: "multiline cdata",
			html: "<ac:plain-text-body><![CDATA[a\nb]]></ac:plain-text-body>",
			want: "<ac:plain-text-body>a\nb</ac:plain-text-body>",
		},
		{
			name: "empty params",
			html: `<ac:parameter ac:name="" /><ac:parameter ac:name="">value</ac:parameter>`,
			want: ``,
		},
		{
			name: "named param kept",
			html: `<ac:parameter ac:name="language">go</ac:parameter>`,
			want: `<ac:parameter ac:name="language">go</ac:parameter>`,
		},
		{
			name: "adf attribute",
			html: `<ac:adf-attribute key="panel-type">note</ac:adf-attribute>`,
			want: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanMetadata(tt.html); got != tt.want {
				t.Errorf("CleanMetadata() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanBinaryData(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"mxGraphModel", `<mxGraphModel><root></root></mxGraphModel> text`, "text"},
		{"mxfile", "<mxfile host=\"x\">\n<diagram/>\n</mxfile>after", "after"},
		{"long base64", "before " + strings.Repeat("A", 600) + " after", "before  after"},
		{"short base64 kept", "id " + strings.Repeat("A", Base64RunThreshold-1), "id " + strings.Repeat("A", Base64RunThreshold-1)},
		{"table padding", "Data" + strings.Repeat(" ", 5132) + "more text", "Data more text"},
		{"normal spacing", "word1 word2  word3   word4", "word1 word2  word3   word4"},
		{"threshold", "col1" + strings.Repeat(" ", WhitespaceRunThreshold) + "col2", "col1 col2"},
		{"below threshold", "col1" + strings.Repeat(" ", WhitespaceRunThreshold-1) + "col2", "col1" + strings.Repeat(" ", WhitespaceRunThreshold-1) + "col2"},
		{"tabs", "a\t\t\t\t\t \t\t\t\t\tb", "a b"},
		{"newlines kept", "line1" + strings.Repeat(" ", 20) + "continued\nline2", "line1 continued\nline2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanBinaryData(tt.content); got != tt.want {
				t.Errorf("CleanBinaryData() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanStorage(t *testing.T) {
	html := `<ac:structured-macro ac:name="code" ac:macro-id="m1"><ac:plain-text-body><![CDATA[x := 1]]></ac:plain-text-body></ac:structured-macro>` +
		`<ac:structured-macro ac:name="drawio"><mxGraphModel><root/></mxGraphModel></ac:structured-macro>`

	got := CleanStorage(html)
	assert.Equal(t,
		`<ac:structured-macro ac:name="code"><ac:plain-text-body>x := 1</ac:plain-text-body></ac:structured-macro>`+
			`<ac:structured-macro ac:name="drawio"></ac:structured-macro>`,
		got)
}
