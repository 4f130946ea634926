package testutil

import (
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// AssertMarkdown fails the test with a character diff when got != want.
func AssertMarkdown(t *testing.T, got, want string) {
	t.Helper()
	if got == want {
		return
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(want, got, false))
	t.Errorf("markdown mismatch (-want +got):\n%s\n\ngot:\n%s", dmp.DiffPrettyText(diffs), got)
}
