package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/randalmurphal/adfbridge/config"
	"github.com/randalmurphal/adfbridge/confluence"
	"github.com/randalmurphal/adfbridge/jira"
	"github.com/randalmurphal/adfbridge/testutil"
)

// testEnv is an Environment over buffers whose settings come only from
// defaults and a private global file.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	home   string
}

func newTestEnv(t *testing.T, defaults map[string]string) *testEnv {
	t.Helper()

	home := t.TempDir()
	saver := config.SaveConfig{
		GlobalConfigDir: config.GlobalConfigDir,
		LocalConfigName: config.LocalConfigName,
		ValidKeys:       config.Keys,
		HomeDir:         home,
	}
	globalPath, err := saver.GlobalPath()
	if err != nil {
		t.Fatalf("GlobalPath() error = %v", err)
	}

	merged := config.Defaults()
	for k, v := range defaults {
		merged[k] = v
	}

	te := &testEnv{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, home: home}
	te.Environment = &Environment{
		Stdin:  strings.NewReader(""),
		Stdout: te.stdout,
		Stderr: te.stderr,
		NewResolver: func(explicitFile string, logger *slog.Logger) *config.Resolver {
			return config.NewResolverWithPaths(config.ResolverConfig{
				Defaults:     merged,
				ValidKeys:    config.Keys,
				ExplicitFile: explicitFile,
				Logger:       logger,
			}, globalPath, "")
		},
		Saver: saver,
		NewJira: func(*jira.Config, *slog.Logger) (*jira.Client, error) {
			t.Fatal("unexpected Jira client")
			return nil, nil
		},
		NewConfluence: func(*confluence.Config, *slog.Logger) (*confluence.Client, error) {
			t.Fatal("unexpected Confluence client")
			return nil, nil
		},
	}
	return te
}

func (te *testEnv) run(t *testing.T, args ...string) int {
	t.Helper()
	return run(testutil.TestContext(t), args, te.Environment)
}

func (te *testEnv) withStdin(s string) *testEnv {
	te.Stdin = strings.NewReader(s)
	return te
}

func TestRunDispatch(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no args", nil, exitUsage, "", "Usage:"},
		{"help", []string{"help"}, exitOK, "adfbridge md2adf", ""},
		{"version", []string{"version"}, exitOK, "adfbridge dev", ""},
		{"unknown", []string{"frobnicate"}, exitUsage, "", `unknown command "frobnicate"`},
		{"command help", []string{"md2adf", "--help"}, exitOK, "", "usage: adfbridge md2adf"},
		{"bad flag", []string{"md2adf", "--nope"}, exitUsage, "", "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t, nil)
			if got := te.run(t, tt.args...); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr %q)", got, tt.wantCode, te.stderr.String())
			}
			if !strings.Contains(te.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", te.stdout.String(), tt.wantStdout)
			}
			if !strings.Contains(te.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", te.stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestInvalidSettings(t *testing.T) {
	te := newTestEnv(t, map[string]string{config.KeyMaxDepth: "deep"})

	if got := te.run(t, "md2adf"); got != exitUsage {
		t.Errorf("exit code = %d, want %d", got, exitUsage)
	}
	if !strings.Contains(te.stderr.String(), "max_depth: invalid integer") {
		t.Errorf("stderr = %q", te.stderr.String())
	}
}

func TestFlagOverridesSettings(t *testing.T) {
	te := newTestEnv(t, nil)

	if got := te.run(t, "adf2md", "--max-depth", "0", filepath.Join("testdata", "runbook.json")); got != exitUsage {
		t.Errorf("exit code = %d, want %d", got, exitUsage)
	}
	if !strings.Contains(te.stderr.String(), "max_depth must be positive") {
		t.Errorf("stderr = %q", te.stderr.String())
	}
}

func TestCanceledContext(t *testing.T) {
	te := newTestEnv(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, err := newApp(te.Environment, commonFlags{}, nil, false)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	if got := a.finish(ctx.Err()); got != exitError {
		t.Errorf("finish() = %d, want %d", got, exitError)
	}
	if !strings.Contains(te.stderr.String(), "interrupted") {
		t.Errorf("stderr = %q", te.stderr.String())
	}
}
