package transform

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// excludedDirs are never walked when expanding a glob-style Patch path;
// build output and dependency directories should not be transform targets.
var excludedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
}

// resolveFiles turns a Patch path into a concrete, sorted file list: the
// literal path if it exists under workdir, otherwise glob expansion.
func resolveFiles(workdir, patchPath string) ([]string, error) {
	literal := filepath.Join(workdir, patchPath)
	if info, err := os.Stat(literal); err == nil && !info.IsDir() {
		return []string{literal}, nil
	}

	pattern := filepath.Join(workdir, patchPath)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, m := range matches {
		if isExcluded(workdir, m) {
			continue
		}
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

func isExcluded(workdir, path string) bool {
	rel, err := filepath.Rel(workdir, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if excludedDirs[part] {
			return true
		}
	}
	return false
}
