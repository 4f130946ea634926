package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSetAndShow(t *testing.T) {
	te := newTestEnv(t, nil)

	require.Equal(t, exitOK, te.run(t, "config", "set", "api_token", "secret-token-9876"), te.stderr.String())
	assert.Contains(t, te.stderr.String(), "set api_token in ")
	require.Equal(t, exitOK, te.run(t, "config", "set", "domain", "acme.atlassian.net"))

	te.stdout.Reset()
	require.Equal(t, exitOK, te.run(t, "config", "show"), te.stderr.String())

	rows := map[string][]string{}
	for _, line := range strings.Split(strings.TrimSpace(te.stdout.String()), "\n")[1:] {
		fields := strings.Fields(line)
		rows[fields[0]] = fields[1:]
	}
	assert.Equal(t, []string{"****9876", "global"}, rows["api_token"])
	assert.Equal(t, []string{"acme.atlassian.net", "global"}, rows["domain"])
	assert.Equal(t, []string{"-"}, rows["email"])
	assert.NotContains(t, te.stdout.String(), "secret-token")
}

func TestConfigShowWithInvalidSettings(t *testing.T) {
	te := newTestEnv(t, map[string]string{"max_depth": "deep"})

	require.Equal(t, exitOK, te.run(t, "config", "show"), te.stderr.String())
	assert.Contains(t, te.stdout.String(), "max_depth")
	assert.Contains(t, te.stderr.String(), "ignoring unparseable settings")
	assert.Equal(t, exitUsage, te.run(t, "adf2md"))

	require.Equal(t, exitOK, te.run(t, "config", "set", "max_depth", "20"), te.stderr.String())
	te.stdout.Reset()
	te.withStdin(`{"type":"doc","version":1,"content":[]}`)
	assert.Equal(t, exitOK, te.run(t, "adf2md"), te.stderr.String())
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no subcommand", args: []string{"config"}, want: "config needs a subcommand"},
		{name: "unknown subcommand", args: []string{"config", "drop"}, want: `unknown config subcommand "drop"`},
		{name: "set without value", args: []string{"config", "set", "domain"}, want: "takes a key and a value"},
		{name: "unknown key", args: []string{"config", "set", "colour", "red"}, want: "colour"},
		{name: "local without git root", args: []string{"config", "set", "--local", "domain", "x.atlassian.net"}, want: "git"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t, nil)
			if got := te.run(t, tt.args...); got != exitUsage {
				t.Errorf("exit = %d, want %d (stderr %q)", got, exitUsage, te.stderr.String())
			}
			assert.Contains(t, te.stderr.String(), tt.want)
		})
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"short", "****"},
		{"12345678", "****"},
		{"123456789", "****6789"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.in); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
