// Package testutil provides helpers for tests that exchange ADF documents.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/adfbridge/adf"
)

// LoadFixture loads a fixture file from the testdata directory.
// The path is relative to the testdata directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	fullPath := filepath.Join("testdata", path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", path, err)
	}

	return data
}

// LoadFixtureString loads a fixture file as a string.
func LoadFixtureString(t *testing.T, path string) string {
	t.Helper()
	return string(LoadFixture(t, path))
}

// LoadADFFixture loads a JSON fixture the way the converter reads
// documents, with numbers kept as json.Number. It fails the test unless the
// fixture is a valid ADF envelope.
func LoadADFFixture(t *testing.T, path string) map[string]any {
	t.Helper()

	v, err := adf.DecodeBytes(LoadFixture(t, path))
	if err != nil {
		t.Fatalf("failed to parse ADF fixture %s: %v", path, err)
	}
	if err := adf.Validate(v); err != nil {
		t.Fatalf("fixture %s: %v", path, err)
	}
	return v.(map[string]any)
}

// TempFile creates a temporary file with the given content.
// Returns the file path. File is automatically cleaned up when the test ends.
func TempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to create temp file %s: %v", name, err)
	}

	return path
}

// TempFileString creates a temporary file with string content.
func TempFileString(t *testing.T, name, content string) string {
	t.Helper()
	return TempFile(t, name, []byte(content))
}
