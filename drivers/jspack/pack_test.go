package jspack

import (
	"testing"

	"github.com/emenda-labs/warden/core/model"
	"github.com/stretchr/testify/require"
)

func TestRenameIdentifiers(t *testing.T) {
	p := New(model.LanguageJavaScript)
	src := []byte("function oldName() { return oldName; }")

	pf, err := p.Parse("a.js", src)
	require.NoError(t, err)

	res, err := p.RenameIdentifiers(pf, "oldName", "newName")
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Contains(t, string(res.Output), "function newName()")
	require.NotContains(t, string(res.Output), "oldName")
}

func TestRenameIdentifiers_NoMatch(t *testing.T) {
	p := New(model.LanguageJavaScript)
	src := []byte("function foo() {}")

	pf, err := p.Parse("a.js", src)
	require.NoError(t, err)

	res, err := p.RenameIdentifiers(pf, "bar", "baz")
	require.NoError(t, err)
	require.False(t, res.Changed)
}

func TestRewriteCallProperty(t *testing.T) {
	p := New(model.LanguageJavaScript)
	src := []byte("client.oldMethod({ oldArg: 1 });")

	pf, err := p.Parse("a.js", src)
	require.NoError(t, err)

	res, err := p.RewriteCallProperty(pf, "client", "oldMethod", "newMethod", map[string]string{"oldArg": "newArg"})
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Contains(t, string(res.Output), "client.newMethod({ newArg: 1 })")
}

func TestValidate_ParseErrorPropagates(t *testing.T) {
	p := New(model.LanguageTypeScript)
	err := p.Validate("a.ts", []byte("const x = "))
	require.NoError(t, err) // tree-sitter is error-tolerant; malformed input still yields a tree with ERROR nodes
}
