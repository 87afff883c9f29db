package driver

import (
	"testing"

	"github.com/emenda-labs/warden/core/model"
	"github.com/stretchr/testify/require"
)

func TestParseSelector_Identifier(t *testing.T) {
	q, err := ParseSelector("Identifier[name='UserId']")
	require.NoError(t, err)
	require.Equal(t, IdentifierQuery{Name: "UserId"}, q)
}

func TestParseSelector_CallExpression(t *testing.T) {
	q, err := ParseSelector("CallExpression[callee.object.name='auth'][callee.property.name='login']")
	require.NoError(t, err)
	require.Equal(t, CallExpressionQuery{Object: "auth", Property: "login"}, q)
}

func TestParseSelector_TrimsWhitespace(t *testing.T) {
	q, err := ParseSelector("  Identifier[name='X']  ")
	require.NoError(t, err)
	require.Equal(t, IdentifierQuery{Name: "X"}, q)
}

func TestParseSelector_OutsideGrammar(t *testing.T) {
	cases := []string{
		"",
		"NotASelector",
		"Identifier[foo='bar']",
		"Identifier[name=bar]",
		"CallExpression[callee.object.name='a']",
		"CallExpression[callee.object.name='a'][callee.property.name='b'][extra='c']",
		"CallExpression",
	}
	for _, s := range cases {
		_, err := ParseSelector(s)
		require.Errorf(t, err, "selector %q should have been rejected", s)
		require.ErrorIsf(t, err, model.ErrInvalidSelector, "selector %q", s)
	}
}

func TestRegistry_GetUnregisteredLanguage(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get(model.LanguagePython)
	require.ErrorIs(t, err, model.ErrUnsupportedOperation)
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	pack := &fakePack{lang: model.LanguageJavaScript}
	r.Register(pack)

	got, err := r.Get(model.LanguageJavaScript)
	require.NoError(t, err)
	require.Same(t, pack, got)
}

type fakePack struct {
	lang model.Language
}

func (f *fakePack) Language() model.Language { return f.lang }
func (f *fakePack) Parse(path string, source []byte) (ParsedFile, error) {
	return ParsedFile{Path: path, Source: source}, nil
}
func (f *fakePack) RenameIdentifiers(pf ParsedFile, name, newName string) (RenameResult, error) {
	return RenameResult{Output: pf.Source}, nil
}
func (f *fakePack) RewriteCallProperty(pf ParsedFile, object, property, newProperty string, argsMap map[string]string) (RewriteResult, error) {
	return RewriteResult{Output: pf.Source}, nil
}
func (f *fakePack) Generate(pf ParsedFile) ([]byte, error) { return pf.Source, nil }
func (f *fakePack) Validate(path string, source []byte) error {
	return nil
}
