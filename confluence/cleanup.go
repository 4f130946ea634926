package confluence

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// Base64RunThreshold is the length at which a run of base64 characters
	// is treated as an embedded blob and removed.
	Base64RunThreshold = 500

	// WhitespaceRunThreshold is the length at which a run of horizontal
	// whitespace collapses to one space. Table padding in exported pages
	// can run to thousands of spaces.
	WhitespaceRunThreshold = 10
)

var (
	macroIDRegex        = regexp.MustCompile(`\s*ac:macro-id="[^"]*"`)
	schemaVersionRegex  = regexp.MustCompile(`\s*ac:schema-version="[^"]*"`)
	dataLayoutRegex     = regexp.MustCompile(`\s*data-layout="[^"]*"`)
	emptyParamSelfRegex = regexp.MustCompile(`<ac:parameter ac:name=""\s*/>`)
	emptyParamPairRegex = regexp.MustCompile(`<ac:parameter ac:name="">[^<]*</ac:parameter>`)
	adfAttributeRegex   = regexp.MustCompile(`<ac:adf-attribute[^>]*>.*?</ac:adf-attribute>`)
	cdataRegex          = regexp.MustCompile(`<!\[CDATA\[([\s\S]*?)\]\]>`)

	mxGraphModelRegex = regexp.MustCompile(`<mxGraphModel[\s\S]*?</mxGraphModel>`)
	mxFileRegex       = regexp.MustCompile(`<mxfile[\s\S]*?</mxfile>`)
	base64RunRegex    = regexp.MustCompile(`[A-Za-z0-9+/=]{` + strconv.Itoa(Base64RunThreshold) + `,}`)
	spaceRunRegex     = regexp.MustCompile(`[^\S\n]{` + strconv.Itoa(WhitespaceRunThreshold) + `,}`)
)

// CleanMetadata strips editor bookkeeping from storage-format XHTML: macro
// ids, schema versions, layout attributes, empty macro parameters and
// ac:adf-attribute elements. CDATA sections are unwrapped to their text.
func CleanMetadata(html string) string {
	result := macroIDRegex.ReplaceAllString(html, "")
	result = schemaVersionRegex.ReplaceAllString(result, "")
	result = dataLayoutRegex.ReplaceAllString(result, "")
	result = emptyParamSelfRegex.ReplaceAllString(result, "")
	result = emptyParamPairRegex.ReplaceAllString(result, "")
	result = adfAttributeRegex.ReplaceAllString(result, "")
	return cdataRegex.ReplaceAllString(result, "$1")
}

// CleanBinaryData removes embedded draw.io diagrams and long base64 runs,
// collapses long runs of horizontal whitespace, and trims the result.
// Newlines are preserved.
func CleanBinaryData(content string) string {
	result := mxGraphModelRegex.ReplaceAllString(content, "")
	result = mxFileRegex.ReplaceAllString(result, "")
	result = base64RunRegex.ReplaceAllString(result, "")
	result = spaceRunRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// CleanStorage applies CleanMetadata and then CleanBinaryData.
func CleanStorage(html string) string {
	return CleanBinaryData(CleanMetadata(html))
}
