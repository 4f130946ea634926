package adf

import (
	"encoding/json"
)

// Kind identifies an ADF node type.
type Kind uint8

// Node kinds. KindUnknown holds every type name this package does not model;
// the original name is kept in Node.Type.
const (
	KindUnknown Kind = iota
	KindDoc

	// Block kinds
	KindParagraph
	KindHeading
	KindBulletList
	KindOrderedList
	KindListItem
	KindCodeBlock
	KindBlockquote
	KindRule
	KindPanel
	KindTable
	KindTableRow
	KindTableHeader
	KindTableCell
	KindMediaSingle
	KindMediaGroup
	KindMedia
	KindExpand
	KindNestedExpand
	KindTaskList
	KindTaskItem
	KindDecisionList
	KindDecisionItem
	KindLayoutSection
	KindLayoutColumn
	KindEmbedCard
	KindBodiedExtension
	KindMultiBodiedExtension
	KindExtensionFrame

	// Inline kinds
	KindText
	KindHardBreak
	KindMention
	KindEmoji
	KindInlineCard
	KindDate
	KindStatus
	KindMediaInline
	KindPlaceholder
)

var kindNames = map[Kind]string{
	KindDoc:                  "doc",
	KindParagraph:            "paragraph",
	KindHeading:              "heading",
	KindBulletList:           "bulletList",
	KindOrderedList:          "orderedList",
	KindListItem:             "listItem",
	KindCodeBlock:            "codeBlock",
	KindBlockquote:           "blockquote",
	KindRule:                 "rule",
	KindPanel:                "panel",
	KindTable:                "table",
	KindTableRow:             "tableRow",
	KindTableHeader:          "tableHeader",
	KindTableCell:            "tableCell",
	KindMediaSingle:          "mediaSingle",
	KindMediaGroup:           "mediaGroup",
	KindMedia:                "media",
	KindExpand:               "expand",
	KindNestedExpand:         "nestedExpand",
	KindTaskList:             "taskList",
	KindTaskItem:             "taskItem",
	KindDecisionList:         "decisionList",
	KindDecisionItem:         "decisionItem",
	KindLayoutSection:        "layoutSection",
	KindLayoutColumn:         "layoutColumn",
	KindEmbedCard:            "embedCard",
	KindBodiedExtension:      "bodiedExtension",
	KindMultiBodiedExtension: "multiBodiedExtension",
	KindExtensionFrame:       "extensionFrame",
	KindText:                 "text",
	KindHardBreak:            "hardBreak",
	KindMention:              "mention",
	KindEmoji:                "emoji",
	KindInlineCard:           "inlineCard",
	KindDate:                 "date",
	KindStatus:               "status",
	KindMediaInline:          "mediaInline",
	KindPlaceholder:          "placeholder",
}

var kindsByName = invert(kindNames)

// ParseKind maps an ADF type name to its Kind. Unrecognized names,
// including the empty string, return KindUnknown.
func ParseKind(name string) Kind {
	return kindsByName[name]
}

// String returns the ADF type name, or "unknown" for KindUnknown.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsInline reports whether k is an inline kind.
func (k Kind) IsInline() bool {
	return k >= KindText && k <= KindPlaceholder
}

// MarkKind identifies a formatting mark.
type MarkKind uint8

// Mark kinds.
const (
	MarkUnknown MarkKind = iota
	MarkStrong
	MarkEm
	MarkCode
	MarkStrike
	MarkUnderline
	MarkLink
	MarkSubSup
	MarkTextColor
	MarkBackgroundColor
)

var markNames = map[MarkKind]string{
	MarkStrong:          "strong",
	MarkEm:              "em",
	MarkCode:            "code",
	MarkStrike:          "strike",
	MarkUnderline:       "underline",
	MarkLink:            "link",
	MarkSubSup:          "subsup",
	MarkTextColor:       "textColor",
	MarkBackgroundColor: "backgroundColor",
}

var marksByName = invert(markNames)

// ParseMarkKind maps a mark type name to its MarkKind.
func ParseMarkKind(name string) MarkKind {
	return marksByName[name]
}

// String returns the mark type name, or "unknown" for MarkUnknown.
func (k MarkKind) String() string {
	if name, ok := markNames[k]; ok {
		return name
	}
	return "unknown"
}

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, name := range m {
		out[name] = k
	}
	return out
}

// Document is an ADF document envelope.
type Document struct {
	Version int    `json:"version"` // Always 1
	Type    string `json:"type"`    // Always "doc"
	Content []Node `json:"content"`
}

// Node is a block or inline ADF node.
type Node struct {
	Kind Kind

	// Type is the type name as it appeared on the wire. It is the only record
	// of the name when Kind is KindUnknown.
	Type string

	Attrs   map[string]any
	Content []Node
	Text    string
	Marks   []Mark
}

// Mark is formatting applied to a text node.
type Mark struct {
	Kind  MarkKind
	Type  string
	Attrs map[string]any
}

// NewDocument returns an empty version 1 document.
func NewDocument() *Document {
	return &Document{
		Version: 1,
		Type:    KindDoc.String(),
		Content: []Node{},
	}
}

// NewNode returns a node of the given kind.
func NewNode(kind Kind) Node {
	return Node{Kind: kind, Type: kind.String()}
}

// NewText returns a text node carrying the given marks.
func NewText(text string, marks ...Mark) Node {
	n := NewNode(KindText)
	n.Text = text
	if len(marks) > 0 {
		n.Marks = marks
	}
	return n
}

// NewMark returns a mark of the given kind.
func NewMark(kind MarkKind, attrs map[string]any) Mark {
	return Mark{Kind: kind, Type: kind.String(), Attrs: attrs}
}

// TypeName returns the wire type name of the node.
func (n *Node) TypeName() string {
	if n.Type != "" {
		return n.Type
	}
	if n.Kind == KindUnknown {
		return ""
	}
	return n.Kind.String()
}

// TypeName returns the wire type name of the mark.
func (m *Mark) TypeName() string {
	if m.Type != "" {
		return m.Type
	}
	if m.Kind == MarkUnknown {
		return ""
	}
	return m.Kind.String()
}

type wireNode struct {
	Type    string         `json:"type"`
	Content []Node         `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

type wireMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// MarshalJSON encodes the node in ADF wire form.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{
		Type:    n.TypeName(),
		Content: n.Content,
		Text:    n.Text,
		Marks:   n.Marks,
		Attrs:   n.Attrs,
	})
}

// UnmarshalJSON decodes a node leniently: fields with unexpected shapes are
// dropped instead of failing the decode.
func (n *Node) UnmarshalJSON(data []byte) error {
	v, err := DecodeBytes(data)
	if err != nil {
		return err
	}
	*n = NodeFromValue(v)
	return nil
}

// MarshalJSON encodes the mark in ADF wire form.
func (m Mark) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMark{Type: m.TypeName(), Attrs: m.Attrs})
}

// UnmarshalJSON decodes a mark leniently.
func (m *Mark) UnmarshalJSON(data []byte) error {
	v, err := DecodeBytes(data)
	if err != nil {
		return err
	}
	*m = markFromValue(v)
	return nil
}
