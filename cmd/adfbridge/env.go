package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/randalmurphal/adfbridge/config"
	"github.com/randalmurphal/adfbridge/confluence"
	"github.com/randalmurphal/adfbridge/jira"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// NewResolver builds the settings resolver for a --config value.
	NewResolver func(explicitFile string, logger *slog.Logger) *config.Resolver

	// Saver persists `config set` values.
	Saver config.SaveConfig

	NewJira       func(cfg *jira.Config, logger *slog.Logger) (*jira.Client, error)
	NewConfluence func(cfg *confluence.Config, logger *slog.Logger) (*confluence.Client, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewResolver: func(explicitFile string, logger *slog.Logger) *config.Resolver {
			cfg := config.AppResolverConfig(explicitFile)
			cfg.Logger = logger
			return config.NewResolver(cfg)
		},
		Saver: config.AppSaveConfig(),
		NewJira: func(cfg *jira.Config, logger *slog.Logger) (*jira.Client, error) {
			return jira.NewClient(cfg, jira.WithLogger(logger))
		},
		NewConfluence: func(cfg *confluence.Config, logger *slog.Logger) (*confluence.Client, error) {
			return confluence.NewClient(cfg, confluence.WithLogger(logger))
		},
	}
}
