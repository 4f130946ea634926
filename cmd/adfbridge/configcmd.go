package main

import (
	"context"
	"fmt"
	"slices"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/randalmurphal/adfbridge/config"
)

var configCommand = &command{
	name:    "config",
	usage:   "config show | set KEY VALUE [--local]",
	summary: "show resolved settings or persist one",
	lenient: true,
	setup: func(fs *flag.FlagSet) func(context.Context, *app, []string) error {
		local := fs.Bool("local", false, "write to .adfbridge.yaml in the git root")

		return func(_ context.Context, a *app, args []string) error {
			if len(args) == 0 {
				return usageError("config needs a subcommand", "config show | set KEY VALUE [--local]")
			}
			switch args[0] {
			case "show":
				return a.showConfig()
			case "set":
				if len(args) != 3 {
					return usageError("config set takes a key and a value", "config set KEY VALUE [--local]")
				}
				return a.setConfig(args[1], args[2], *local)
			default:
				return usageError(fmt.Sprintf("unknown config subcommand %q", args[0]), "config show | set KEY VALUE")
			}
		}
	},
}

// showConfig prints every known key with its value and source. Secrets
// are masked.
func (a *app) showConfig() error {
	tw := tabwriter.NewWriter(a.env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
	for _, key := range config.Keys {
		value, source := a.resolved.GetWithSource(key)
		if source == "" {
			source = "-"
		}
		if value != "" && slices.Contains(config.SecretKeys, key) {
			value = maskSecret(value)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", key, value, source)
	}
	if flushErr := tw.Flush(); flushErr != nil {
		return flushErr
	}

	if path := a.resolver.GlobalPath(); path != "" {
		a.infof("global: %s", path)
	}
	if path := a.resolver.LocalPath(); path != "" {
		a.infof("local:  %s", path)
	}
	return nil
}

func (a *app) setConfig(key, value string, local bool) error {
	if local {
		if saveErr := a.env.Saver.SaveLocal(a.resolver.GitRoot(), key, value); saveErr != nil {
			return saveErr
		}
		a.infof("set %s in %s", key, config.LocalConfigName)
		return nil
	}

	if saveErr := a.env.Saver.SaveGlobal(key, value); saveErr != nil {
		return saveErr
	}
	path, _ := a.env.Saver.GlobalPath()
	a.infof("set %s in %s", key, path)
	return nil
}

// maskSecret keeps the last four characters of long secrets.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
