// Command adfbridge converts between Markdown and Atlassian Document Format
// and reads or writes Jira issues and Confluence pages as Markdown.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// maxprocs.Set only fails on an invalid GOMAXPROCS value; runtime
	// defaults apply in that case.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}

// run dispatches to a subcommand and returns the process exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return exitUsage
	}

	name, rest := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		switch name {
		case "help", "-h", "--help":
			printUsage(env.Stdout)
			return exitOK
		case "version", "--version":
			fmt.Fprintln(env.Stdout, "adfbridge", Version)
			return exitOK
		}
		fmt.Fprintf(env.Stderr, "adfbridge: unknown command %q\n\n", name)
		printUsage(env.Stderr)
		return exitUsage
	}

	return execute(ctx, cmd, rest, env)
}
