package transform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/emenda-labs/warden/core/driver"
	"github.com/emenda-labs/warden/core/model"
	"github.com/emenda-labs/warden/drivers/jspack"
	"github.com/stretchr/testify/require"
)

func newJSEngine() *Engine {
	registry := driver.NewRegistry()
	registry.Register(jspack.New(model.LanguageJavaScript))
	return New(registry, 0)
}

func TestApply_SelectorOutsideGrammar(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "function foo() {}")

	spec := model.ChangeSpec{
		Language: model.LanguageJavaScript,
		Patches: []model.Patch{
			{Path: "a.js", AstOp: model.AstOpRenameSymbol, Selector: "not a real selector", Details: model.PatchDetails{NewName: "bar"}},
		},
	}

	result := newJSEngine().Apply(spec, dir)
	require.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "InvalidSelector", result.Errors[0].Code)
}

func TestApply_GlobMatchingZeroFiles(t *testing.T) {
	dir := t.TempDir()

	spec := model.ChangeSpec{
		Language: model.LanguageJavaScript,
		Patches: []model.Patch{
			{Path: "*.nonexistent", AstOp: model.AstOpRenameSymbol, Selector: "Identifier[name='foo']", Details: model.PatchDetails{NewName: "bar"}},
		},
	}

	result := newJSEngine().Apply(spec, dir)
	require.True(t, result.Success)
	require.Empty(t, result.Errors)
	require.Empty(t, result.FilesModified)
}

func TestApply_RenameSymbolIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	original := "function oldName() { return oldName; }\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	spec := model.ChangeSpec{
		Language: model.LanguageJavaScript,
		Patches: []model.Patch{
			{Path: "a.js", AstOp: model.AstOpRenameSymbol, Selector: "Identifier[name='oldName']", Details: model.PatchDetails{NewName: "newName"}},
		},
	}

	engine := newJSEngine()

	first := engine.Apply(spec, dir)
	require.True(t, first.Success)
	require.Equal(t, []string{path}, first.FilesModified)
	afterFirst, err := os.ReadFile(path)
	require.NoError(t, err)

	second := engine.Apply(spec, dir)
	require.True(t, second.Success)
	afterSecond, err := os.ReadFile(path)
	require.NoError(t, err)

	require.Equal(t, string(afterFirst), string(afterSecond))
	require.Empty(t, second.FilesModified, "re-running renameSymbol(oldName->newName) finds no more oldName identifiers to touch")
}

func TestApply_ParseGenerateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "function untouched() { return 1; }\n")

	spec := model.ChangeSpec{
		Language: model.LanguageJavaScript,
		Patches: []model.Patch{
			{Path: "a.js", AstOp: model.AstOpRenameSymbol, Selector: "Identifier[name='doesNotExist']", Details: model.PatchDetails{NewName: "x"}},
		},
	}

	result := newJSEngine().Apply(spec, dir)
	require.True(t, result.Success)
	require.Empty(t, result.FilesModified, "no identifier matched, so the round-trip check should be the only thing that ran")
}
