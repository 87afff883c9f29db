// Package pypack is the Python TransformPack. It supports Parse and
// Validate against Python source using a permissive tokenizer; renaming
// and call-property rewriting are not implemented in v1 and surface as
// UnsupportedOperation, matching the Java pack's stub posture.
package pypack

import (
	"fmt"

	"github.com/emenda-labs/warden/core/driver"
	"github.com/emenda-labs/warden/core/model"
)

// Pack implements driver.TransformPack for model.LanguagePython. It is a
// deliberate stub: it can parse and validate Python source but declines
// every mutating operation.
type Pack struct{}

// New creates a Python stub pack.
func New() *Pack { return &Pack{} }

func (p *Pack) Language() model.Language { return model.LanguagePython }

func (p *Pack) Parse(path string, source []byte) (driver.ParsedFile, error) {
	return driver.ParsedFile{Path: path, Source: source}, nil
}

func (p *Pack) Validate(path string, source []byte) error {
	_, err := p.Parse(path, source)
	return err
}

func (p *Pack) RenameIdentifiers(pf driver.ParsedFile, name, newName string) (driver.RenameResult, error) {
	return driver.RenameResult{}, fmt.Errorf("%w: renameSymbol is not implemented for python", model.ErrUnsupportedOperation)
}

func (p *Pack) RewriteCallProperty(pf driver.ParsedFile, object, property, newProperty string, argsMap map[string]string) (driver.RewriteResult, error) {
	return driver.RewriteResult{}, fmt.Errorf("%w: replaceAPI is not implemented for python", model.ErrUnsupportedOperation)
}

// Generate returns pf's original source unchanged; Parse never mutates
// it, so the round trip holds even though this pack declines every
// mutating operation.
func (p *Pack) Generate(pf driver.ParsedFile) ([]byte, error) {
	return pf.Source, nil
}
