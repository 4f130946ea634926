package config

// Source indicates where a configuration value came from.
type Source string

// Configuration sources, lowest priority first.
const (
	SourceDefault Source = "default"

	// SourceGlobal is ~/.config/adfbridge/config.yaml.
	SourceGlobal Source = "global"

	// SourceLocal is .adfbridge.yaml in the git root.
	SourceLocal Source = "local"

	// SourceFile is a file named explicitly with --config.
	SourceFile Source = "file"

	SourceEnv  Source = "env"
	SourceFlag Source = "flag"
)
