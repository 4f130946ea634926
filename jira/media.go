package jira

import "regexp"

var mediaRefRegex = regexp.MustCompile(`\[Media: ([^\]]+)\]`)

// InjectAttachmentIDs rewrites "[Media: name]" references produced by the
// renderer to "[Media: name (id:ID)]" when an attachment with that filename
// exists, so readers can fetch the file. Unmatched references are unchanged.
func InjectAttachmentIDs(text string, attachments []AttachmentView) string {
	if len(attachments) == 0 {
		return text
	}

	return mediaRefRegex.ReplaceAllStringFunc(text, func(ref string) string {
		name := mediaRefRegex.FindStringSubmatch(ref)[1]
		for _, a := range attachments {
			if a.Filename == name && a.ID != "" {
				return "[Media: " + name + " (id:" + a.ID + ")]"
			}
		}
		return ref
	})
}
