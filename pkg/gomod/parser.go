package gomod

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// FindModulePath reads the go.mod at repoPath and returns the module's own
// import path, used by the diff-to-patch proposer to label symbols without
// requiring the caller to pass the module path explicitly.
func FindModulePath(repoPath string) (string, error) {
	gomodPath := filepath.Join(repoPath, "go.mod")

	data, err := os.ReadFile(gomodPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no go.mod found at %s", gomodPath)
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}

	f, err := modfile.Parse(gomodPath, data, nil)
	if err != nil {
		return "", fmt.Errorf("failed to parse go.mod: %w", err)
	}
	if f.Module == nil {
		return "", fmt.Errorf("go.mod at %s has no module directive", gomodPath)
	}
	return f.Module.Mod.Path, nil
}
