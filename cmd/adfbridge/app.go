package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/randalmurphal/adfbridge/adf"
	"github.com/randalmurphal/adfbridge/config"
	"github.com/randalmurphal/adfbridge/confluence"
	clierrors "github.com/randalmurphal/adfbridge/errors"
	"github.com/randalmurphal/adfbridge/jira"
)

// command is one subcommand. setup registers its flags and returns the
// function that runs it with the remaining positional arguments.
type command struct {
	name    string
	usage   string
	summary string

	// lenient commands run even when settings fail validation.
	lenient bool

	setup func(fs *flag.FlagSet) func(ctx context.Context, a *app, args []string) error
}

// app is the per-invocation state shared by commands.
type app struct {
	env      *Environment
	logger   *slog.Logger
	resolver *config.Resolver
	resolved *config.Resolved
	settings *config.Settings

	// out colors stdout; errOut colors stderr.
	out    *palette
	errOut *palette

	quiet bool
}

func execute(ctx context.Context, cmd *command, args []string, env *Environment) int {
	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(env.Stderr, "usage: adfbridge %s\n\n%s\n\nFlags:\n", cmd.usage, cmd.summary)
		fs.PrintDefaults()
	}

	var common commonFlags
	addCommonFlags(fs, &common)
	runFn := cmd.setup(fs)

	if parseErr := fs.Parse(args); parseErr != nil {
		if errors.Is(parseErr, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(env.Stderr, "adfbridge %s: %v\n", cmd.name, parseErr)
		return exitUsage
	}

	a, appErr := newApp(env, common, flagOverrides(fs), cmd.lenient)
	if appErr == nil {
		appErr = runFn(ctx, a, fs.Args())
	}
	return a.finish(appErr)
}

func newApp(env *Environment, common commonFlags, overrides map[string]string, lenient bool) (*app, error) {
	level := slog.LevelInfo
	switch {
	case common.verbose:
		level = slog.LevelDebug
	case common.quiet:
		level = slog.LevelError
	}

	a := &app{
		env:    env,
		logger: slog.New(slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{Level: level})),
		quiet:  common.quiet,
	}
	a.out = newPalette(env.Stdout, common.noColor)
	a.errOut = newPalette(env.Stderr, common.noColor)

	a.resolver = env.NewResolver(common.config, a.logger)
	a.resolved = a.resolver.ResolveWithFlags(overrides)

	settings, loadErr := config.Load(a.resolved)
	if loadErr != nil {
		if !lenient {
			return a, &clierrors.CLIError{Err: clierrors.ErrInvalidInput, Message: loadErr.Error()}
		}
		a.logger.Warn("ignoring unparseable settings", "error", loadErr)
		a.settings = &config.Settings{}
		return a, nil
	}
	a.settings = settings
	if validateErr := settings.Validate(); validateErr != nil && !lenient {
		return a, validateErr
	}

	if settings.NoColor {
		a.out = newPalette(env.Stdout, true)
		a.errOut = newPalette(env.Stderr, true)
	}
	return a, nil
}

// finish reports err and returns the exit code.
func (a *app) finish(err error) int {
	if err == nil {
		return exitOK
	}

	var status exitStatus
	if errors.As(err, &status) {
		return int(status)
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(a.env.Stderr, "adfbridge: interrupted")
		return exitError
	}

	siteURL := ""
	if a.settings != nil {
		siteURL = a.settings.BaseURL()
	}
	opts := []clierrors.Option{}
	if siteURL != "" {
		opts = append(opts, clierrors.WithSiteURL(siteURL))
	}
	err = clierrors.Wrap(err, opts...)

	fmt.Fprintln(a.env.Stderr, a.errOut.fail.Sprint("error: ")+err.Error())
	return clierrors.ExitCode(err)
}

// renderer builds a renderer honoring max_depth.
func (a *app) renderer() *adf.Renderer {
	return adf.NewRenderer(adf.WithMaxDepth(a.settings.MaxDepth), adf.WithLogger(a.logger))
}

// infof prints a status line to stderr unless --quiet.
func (a *app) infof(format string, args ...any) {
	if a.quiet {
		return
	}
	fmt.Fprintf(a.env.Stderr, format+"\n", args...)
}

func (a *app) jira() (*jira.Client, error) {
	if credErr := a.settings.ValidateCredentials(); credErr != nil {
		return nil, credErr
	}
	return a.env.NewJira(a.settings.JiraConfig(), a.logger)
}

func (a *app) confluence() (*confluence.Client, error) {
	if credErr := a.settings.ValidateCredentials(); credErr != nil {
		return nil, credErr
	}
	return a.env.NewConfluence(a.settings.ConfluenceConfig(), a.logger)
}

// readInput reads the file named by args[0], or stdin when args is empty
// or names "-".
func (a *app) readInput(args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, readErr := io.ReadAll(a.env.Stdin)
		return data, "stdin", readErr
	}
	data, readErr := os.ReadFile(args[0])
	if readErr != nil {
		return nil, args[0], &clierrors.CLIError{Err: clierrors.ErrInvalidInput, Message: readErr.Error()}
	}
	return data, args[0], nil
}
