package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ResolverConfig configures the layered resolver.
type ResolverConfig struct {
	// EnvPrefix is prepended to upper-cased key names for environment lookup:
	// with "ADFBRIDGE_", key "max_depth" reads ADFBRIDGE_MAX_DEPTH.
	EnvPrefix string

	// EnvNames maps keys to additional, conventional variable names such as
	// ATLASSIAN_DOMAIN. A prefixed variable wins when both are set.
	EnvNames map[string]string

	// GlobalConfigDir is the directory under ~/.config/ holding the global file.
	GlobalConfigDir string

	// GlobalConfigFile defaults to "config.yaml".
	GlobalConfigFile string

	// LocalConfigName is the file looked up in the git root.
	LocalConfigName string

	// ExplicitFile is an extra file layered above the local config.
	ExplicitFile string

	Defaults map[string]string

	// ValidKeys restricts which file keys are accepted. Nil accepts all.
	ValidKeys []string

	// GitRootFinder overrides git root detection.
	GitRootFinder func(startDir string) (string, error)

	// Logger receives parse and permission warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

func (c ResolverConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

// Resolver merges configuration from defaults, files and the environment.
type Resolver struct {
	config     ResolverConfig
	globalPath string
	localPath  string
	gitRoot    string
	logger     *slog.Logger

	// Warnings collects non-fatal issues found during resolution.
	Warnings []string
}

// NewResolver creates a resolver, locating the global file under the home
// directory and the local file in the enclosing git root.
func NewResolver(cfg ResolverConfig) *Resolver {
	r := newResolver(cfg)

	finder := cfg.GitRootFinder
	if finder == nil {
		finder = func(dir string) (string, error) { return findGitRoot(dir), nil }
	}
	if root, err := finder("."); err == nil && root != "" {
		r.gitRoot = root
		if cfg.LocalConfigName != "" {
			r.localPath = filepath.Join(root, cfg.LocalConfigName)
		}
	}

	if cfg.GlobalConfigDir != "" {
		if home, err := os.UserHomeDir(); err == nil {
			r.globalPath = filepath.Join(home, ".config", cfg.GlobalConfigDir, cfg.globalConfigFile())
		}
	}

	return r
}

// NewResolverWithPaths creates a resolver with explicit global and local paths.
func NewResolverWithPaths(cfg ResolverConfig, globalPath, localPath string) *Resolver {
	r := newResolver(cfg)
	r.globalPath = globalPath
	r.localPath = localPath
	return r
}

func newResolver(cfg ResolverConfig) *Resolver {
	r := &Resolver{config: cfg, logger: cfg.Logger}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

func (r *Resolver) warn(msg string, args ...any) {
	r.Warnings = append(r.Warnings, msg)
	r.logger.Warn(msg, args...)
}

// Resolved holds the merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or "" if unset.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns where a key's value came from.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// Int parses a key as an integer. Unset keys yield 0.
func (c *Resolved) Int(key string) (int, error) {
	raw := strings.TrimSpace(c.values[key])
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return n, nil
}

// Bool parses a key as a boolean. Unset or unparsable keys yield false.
func (c *Resolved) Bool(key string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(c.values[key]))
	return b
}

// List splits a comma-separated key, dropping blanks.
func (c *Resolved) List(key string) []string {
	var out []string
	for part := range strings.SplitSeq(c.values[key], ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	result := make(map[string]string, len(c.values))
	for k, v := range c.values {
		result[k] = v
	}
	return result
}

// Keys returns all configuration keys, sorted.
func (c *Resolved) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Resolve builds the final config.
// Priority (highest to lowest): env > explicit file > local > global > defaults.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	for key, value := range r.config.Defaults {
		cfg.values[key] = value
		cfg.sources[key] = SourceDefault
	}
	r.applyFile(cfg, r.globalPath, SourceGlobal)
	r.applyFile(cfg, r.localPath, SourceLocal)
	r.applyFile(cfg, r.config.ExplicitFile, SourceFile)
	r.applyEnv(cfg)

	return cfg
}

// ResolveWithFlags resolves config and applies non-empty flag overrides.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()
	for key, value := range flags {
		if value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceFlag
		}
	}
	return cfg
}

func (r *Resolver) applyFile(cfg *Resolved, path string, source Source) {
	if path == "" {
		return
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if source == SourceFile {
			r.warn("could not read config file", "path", path, "error", readErr)
		}
		return
	}
	r.checkPermissions(path)

	var parsed map[string]any
	if parseErr := yaml.Unmarshal(data, &parsed); parseErr != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, parseErr), "path", path)
		return
	}

	for key, value := range parsed {
		if len(r.config.ValidKeys) > 0 && !slices.Contains(r.config.ValidKeys, key) {
			r.warn(fmt.Sprintf("unknown config key %q in %s", key, path), "path", path, "key", key)
			continue
		}
		if strVal := toString(value); strVal != "" {
			cfg.values[key] = strVal
			cfg.sources[key] = source
		}
	}
}

// checkPermissions warns when a file that may hold a token is readable by
// group or others.
func (r *Resolver) checkPermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		r.warn(fmt.Sprintf("config file %s is accessible by others (%#o); run chmod 600", path, mode), "path", path)
	}
}

func (r *Resolver) applyEnv(cfg *Resolved) {
	keys := make(map[string]bool, len(r.config.Defaults)+len(r.config.EnvNames))
	for k := range r.config.Defaults {
		keys[k] = true
	}
	for k := range r.config.EnvNames {
		keys[k] = true
	}
	for k := range cfg.values {
		keys[k] = true
	}

	for key := range keys {
		if name, ok := r.config.EnvNames[key]; ok {
			if value := os.Getenv(name); value != "" {
				cfg.values[key] = value
				cfg.sources[key] = SourceEnv
			}
		}
		if r.config.EnvPrefix != "" {
			envKey := r.config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
			if value := os.Getenv(envKey); value != "" {
				cfg.values[key] = value
				cfg.sources[key] = SourceEnv
			}
		}
	}

	// NO_COLOR is honored whatever its value.
	if _, hasNoColor := os.LookupEnv("NO_COLOR"); hasNoColor {
		cfg.values[KeyNoColor] = "true"
		cfg.sources[KeyNoColor] = SourceEnv
	}
}

// GitRoot returns the detected git root directory.
func (r *Resolver) GitRoot() string {
	return r.gitRoot
}

// GlobalPath returns the path to the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// LocalPath returns the path to the local config file.
func (r *Resolver) LocalPath() string {
	return r.localPath
}

// toString flattens a YAML scalar or list to the resolver's string form.
// Lists become comma-separated.
func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := toString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// findGitRoot walks up from startDir looking for a .git directory.
func findGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		if info, statErr := os.Stat(filepath.Join(dir, ".git")); statErr == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
