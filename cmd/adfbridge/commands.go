package main

import (
	"fmt"
	"io"
)

// commandOrder is the order commands are listed in usage.
var commandOrder = []string{
	"md2adf", "adf2md", "validate", "roundtrip", "batch",
	"issue", "comment", "search", "page", "config",
}

var commands = map[string]*command{
	"md2adf":    md2adfCommand,
	"adf2md":    adf2mdCommand,
	"validate":  validateCommand,
	"roundtrip": roundtripCommand,
	"batch":     batchCommand,
	"issue":     issueCommand,
	"comment":   commentCommand,
	"search":    searchCommand,
	"page":      pageCommand,
	"config":    configCommand,
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "adfbridge converts between Markdown and Atlassian Document Format.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	for _, name := range commandOrder {
		cmd := commands[name]
		fmt.Fprintf(w, "  adfbridge %-36s %s\n", cmd.usage, cmd.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags: --config FILE, --verbose, --quiet, --no-color")
	fmt.Fprintln(w, "Run 'adfbridge COMMAND --help' for command flags.")
}
