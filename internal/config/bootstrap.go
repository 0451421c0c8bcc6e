package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed config.example.yml
var exampleYAML []byte

// Example returns the commented example config written on first run.
func Example() []byte { return append([]byte(nil), exampleYAML...) }

// EnsureUserConfig returns <dataDir>/config.yml, writing the example config
// there first if the file does not exist yet.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(userPath, exampleYAML, 0o644); err != nil {
		return "", err
	}
	return userPath, nil
}
