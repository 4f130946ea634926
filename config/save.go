package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Save errors.
var (
	ErrGlobalDirNotConfigured = errors.New("global config directory not configured")
	ErrLocalNameNotConfigured = errors.New("local config name not configured")
	ErrNoGitRoot              = errors.New("git root not found")
	ErrUnknownKey             = errors.New("unknown config key")
)

// SaveConfig writes single keys to the global or local config file.
type SaveConfig struct {
	GlobalConfigDir  string
	GlobalConfigFile string
	LocalConfigName  string

	// ValidKeys restricts which keys may be written. Nil accepts all.
	ValidKeys []string

	// HomeDir overrides os.UserHomeDir.
	HomeDir string
}

// GlobalPath returns the global config file path.
func (c SaveConfig) GlobalPath() (string, error) {
	if c.GlobalConfigDir == "" {
		return "", ErrGlobalDirNotConfigured
	}
	home := c.HomeDir
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return "", err
		}
	}
	file := c.GlobalConfigFile
	if file == "" {
		file = "config.yaml"
	}
	return filepath.Join(home, ".config", c.GlobalConfigDir, file), nil
}

// SaveGlobal saves a key-value pair to the global config file, which is
// created with owner-only permissions since it may hold tokens.
func (c SaveConfig) SaveGlobal(key, value string) error {
	if keyErr := c.checkKey(key); keyErr != nil {
		return keyErr
	}
	path, pathErr := c.GlobalPath()
	if pathErr != nil {
		return pathErr
	}
	if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o700); mkdirErr != nil {
		return mkdirErr
	}
	return writeKey(path, key, value, 0o600)
}

// SaveLocal saves a key-value pair to the local config file in gitRoot.
func (c SaveConfig) SaveLocal(gitRoot, key, value string) error {
	if gitRoot == "" {
		return ErrNoGitRoot
	}
	if c.LocalConfigName == "" {
		return ErrLocalNameNotConfigured
	}
	if keyErr := c.checkKey(key); keyErr != nil {
		return keyErr
	}
	return writeKey(filepath.Join(gitRoot, c.LocalConfigName), key, value, 0o600)
}

// DeleteGlobalKey removes a key from the global config. A missing file is
// not an error.
func (c SaveConfig) DeleteGlobalKey(key string) error {
	path, pathErr := c.GlobalPath()
	if pathErr != nil {
		return pathErr
	}

	existing, readErr := readYAML(path)
	if readErr != nil {
		if errors.Is(readErr, os.ErrNotExist) {
			return nil
		}
		return readErr
	}
	if _, ok := existing[key]; !ok {
		return nil
	}
	delete(existing, key)
	return writeYAML(path, existing, 0o600)
}

func (c SaveConfig) checkKey(key string) error {
	if len(c.ValidKeys) > 0 && !slices.Contains(c.ValidKeys, key) {
		return fmt.Errorf("%w: %s\n\nValid keys: %s", ErrUnknownKey, key, strings.Join(c.ValidKeys, ", "))
	}
	return nil
}

func writeKey(path, key, value string, perm os.FileMode) error {
	existing, readErr := readYAML(path)
	if readErr != nil && !errors.Is(readErr, os.ErrNotExist) {
		return readErr
	}
	if existing == nil {
		existing = make(map[string]any)
	}
	existing[key] = parseValue(value)
	return writeYAML(path, existing, perm)
}

func readYAML(path string) (map[string]any, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, readErr
	}
	var existing map[string]any
	if parseErr := yaml.Unmarshal(data, &existing); parseErr != nil {
		return nil, fmt.Errorf("parse %s: %w", path, parseErr)
	}
	return existing, nil
}

func writeYAML(path string, values map[string]any, perm os.FileMode) error {
	data, marshalErr := yaml.Marshal(values)
	if marshalErr != nil {
		return marshalErr
	}
	return os.WriteFile(path, data, perm)
}

// parseValue keeps booleans typed in the YAML file; comma lists become
// sequences.
func parseValue(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	if strings.Contains(value, ",") {
		var items []string
		for part := range strings.SplitSeq(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items
	}
	return value
}
