package transform

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emenda-labs/warden/core/model"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestVerify_SymbolExists(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.ts", "export function handler() {}")

	e := New(nil, 0)
	spec := model.ChangeSpec{
		Invariants: []model.Invariant{
			{Name: "has-handler", Type: model.InvariantSymbolExists, Spec: "handler"},
		},
		Tests: model.TestPlan{MutationThreshold: 0.5},
	}

	result := e.Verify(context.Background(), spec, dir)
	require.True(t, result.Success)
	require.Len(t, result.InvariantRuns, 1)
	require.True(t, result.InvariantRuns[0].Passed)
}

func TestVerify_SymbolMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.ts", "export function other() {}")

	e := New(nil, 0)
	spec := model.ChangeSpec{
		Invariants: []model.Invariant{
			{Name: "has-handler", Type: model.InvariantSymbolExists, Spec: "handler"},
		},
		Tests: model.TestPlan{MutationThreshold: 0.5},
	}

	result := e.Verify(context.Background(), spec, dir)
	require.False(t, result.Success)
	require.False(t, result.InvariantRuns[0].Passed)
}

func TestVerify_RegexInvariant(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "def foo():\n    return 1\n")

	e := New(nil, 0)
	spec := model.ChangeSpec{
		Invariants: []model.Invariant{
			{Name: "has-return", Type: model.InvariantRegex, Spec: `return \d`},
		},
		Tests: model.TestPlan{MutationThreshold: 1.0},
	}

	result := e.Verify(context.Background(), spec, dir)
	require.True(t, result.InvariantRuns[0].Passed)
}

func TestVerify_SemanticRuleNoCalls(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "fetch('/legacy')")

	e := New(nil, 0)
	spec := model.ChangeSpec{
		Invariants: []model.Invariant{
			{Name: "no-legacy-fetch", Type: model.InvariantSemanticRule, Spec: "no calls to fetch"},
		},
		Tests: model.TestPlan{MutationThreshold: 0.5},
	}

	result := e.Verify(context.Background(), spec, dir)
	require.False(t, result.InvariantRuns[0].Passed)
}

func TestVerify_UnknownInvariantType(t *testing.T) {
	dir := t.TempDir()
	e := New(nil, 0)
	spec := model.ChangeSpec{
		Invariants: []model.Invariant{
			{Name: "bogus", Type: model.InvariantType("madeUp"), Spec: "x"},
		},
		Tests: model.TestPlan{MutationThreshold: 0},
	}

	result := e.Verify(context.Background(), spec, dir)
	require.False(t, result.Success)
	require.Contains(t, result.InvariantRuns[0].Message, model.ErrUnknownInvariantType.Error())
}

func TestEngine_TimeoutDefaultsWhenUnset(t *testing.T) {
	e := New(nil, 0)
	require.Equal(t, DefaultMutationTimeout, e.timeout())

	e2 := New(nil, 30*time.Second)
	require.Equal(t, 30*time.Second, e2.timeout())
}

func TestVerify_NoMutationToolSynthesizesThreshold(t *testing.T) {
	dir := t.TempDir()
	e := New(nil, 0)
	spec := model.ChangeSpec{
		Tests: model.TestPlan{MutationThreshold: 0.85},
	}

	result := e.Verify(context.Background(), spec, dir)
	require.True(t, result.Success)
	require.NotNil(t, result.MutationReport)
	require.True(t, result.MutationReport.Synthesized)
	require.Equal(t, 0.85, result.MutationReport.Score)
}
