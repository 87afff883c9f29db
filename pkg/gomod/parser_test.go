package gomod

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGoMod(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing go.mod: %v", err)
	}
	return dir
}

func TestFindModulePath(t *testing.T) {
	dir := writeGoMod(t, "module github.com/acme/widget\n\ngo 1.25\n")

	path, err := FindModulePath(dir)
	if err != nil {
		t.Fatalf("FindModulePath: %v", err)
	}
	if path != "github.com/acme/widget" {
		t.Errorf("path = %q, want %q", path, "github.com/acme/widget")
	}
}

func TestFindModulePath_MissingFile(t *testing.T) {
	dir := t.TempDir()

	if _, err := FindModulePath(dir); err == nil {
		t.Fatal("expected an error for a missing go.mod")
	}
}

func TestFindModulePath_MalformedFile(t *testing.T) {
	dir := writeGoMod(t, "this is not a go.mod\n")

	if _, err := FindModulePath(dir); err == nil {
		t.Fatal("expected an error for a malformed go.mod")
	}
}
