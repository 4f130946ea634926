package main

import (
	flag "github.com/spf13/pflag"

	"github.com/randalmurphal/adfbridge/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	noColor bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "extra config file layered above the local one")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log requests and rendering details")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored output")
}

// settingFlags binds command flags to config keys; a flag given on the
// command line overrides every other source.
var settingFlags = map[string]string{
	"max-depth": config.KeyMaxDepth,
	"workers":   config.KeyWorkers,
	"no-color":  config.KeyNoColor,
}

// flagOverrides collects the values of bound flags that were set.
func flagOverrides(fs *flag.FlagSet) map[string]string {
	overrides := make(map[string]string)
	for name, key := range settingFlags {
		if f := fs.Lookup(name); f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}
	return overrides
}
