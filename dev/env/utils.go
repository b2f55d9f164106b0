package devenv

import (
	"errors"
	"fmt"
	"hrtools/lib/configutil"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

const moduleName = "hrtools"

var modName = regexp.MustCompile(`(?m)^module *([\w\-_./]+)$`)

func isWorkspaceRoot(dir string) bool {
	mod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return false
	}
	matches := modName.FindSubmatch(mod)
	return len(matches) >= 2 && string(matches[1]) == moduleName
}

// GetWorkspaceRoot walks up from the working directory to the directory
// holding this module's go.mod.
func GetWorkspaceRoot() (string, error) {
	current, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}
	for {
		if isWorkspaceRoot(current) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", os.ErrNotExist
		}
		current = parent
	}
}

func GetStateFilePath(path string) (string, error) {
	root, err := GetWorkspaceRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "dev", ".state", path), nil
}

func GetStateFile(path string) ([]byte, error) {
	statePath, err := GetStateFilePath(path)
	if err != nil {
		return nil, err
	}
	contents, err := os.ReadFile(statePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("no file at %s: %w", statePath, err)
	}
	return contents, err
}

func GetStateConfig[T any](path string) (T, error) {
	statePath, err := GetStateFilePath(path)
	if err != nil {
		var out T
		return out, err
	}
	return configutil.ReadConfig[T](statePath)
}

// RequireStateConfig is GetStateConfig for live tests, it skips the test
// when the config does not exist.
func RequireStateConfig[T any](t testing.TB, path string) T {
	t.Helper()
	config, err := GetStateConfig[T](path)
	if errors.Is(err, os.ErrNotExist) {
		t.Skipf("no %s in dev/.state, skipping live test", path)
	}
	if err != nil {
		t.Fatal(err)
	}
	return config
}
