package testutil

import (
	"context"
	"testing"
	"time"
)

// TestContext returns the test's context. It is canceled just before the
// test's cleanups run, so clients started with it stop with the test.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	return t.Context()
}

// TestContextWithTimeout bounds TestContext by timeout, for tests against
// servers that might hang.
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelableContext returns a child of TestContext and its cancel func, for
// tests that interrupt a command part way.
func CancelableContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	t.Cleanup(cancel)
	return ctx, cancel
}
