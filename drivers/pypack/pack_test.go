package pypack

import (
	"testing"

	"github.com/emenda-labs/warden/core/model"
	"github.com/stretchr/testify/require"
)

func TestParseSucceeds(t *testing.T) {
	p := New()
	require.Equal(t, model.LanguagePython, p.Language())
	require.NoError(t, p.Validate("a.py", []byte("def f():\n    pass\n")))
}

func TestRenameIdentifiers_Unsupported(t *testing.T) {
	p := New()
	pf, err := p.Parse("a.py", []byte("x = 1"))
	require.NoError(t, err)

	_, err = p.RenameIdentifiers(pf, "x", "y")
	require.ErrorIs(t, err, model.ErrUnsupportedOperation)
}
