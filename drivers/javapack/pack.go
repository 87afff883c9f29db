// Package javapack is the Java TransformPack stub: Parse and Validate
// succeed, mutating operations are UnsupportedOperation until a real
// grammar is wired in.
package javapack

import (
	"fmt"

	"github.com/emenda-labs/warden/core/driver"
	"github.com/emenda-labs/warden/core/model"
)

// Pack implements driver.TransformPack for model.LanguageJava.
type Pack struct{}

// New creates a Java stub pack.
func New() *Pack { return &Pack{} }

func (p *Pack) Language() model.Language { return model.LanguageJava }

func (p *Pack) Parse(path string, source []byte) (driver.ParsedFile, error) {
	return driver.ParsedFile{Path: path, Source: source}, nil
}

func (p *Pack) Validate(path string, source []byte) error {
	_, err := p.Parse(path, source)
	return err
}

func (p *Pack) RenameIdentifiers(pf driver.ParsedFile, name, newName string) (driver.RenameResult, error) {
	return driver.RenameResult{}, fmt.Errorf("%w: renameSymbol is not implemented for java", model.ErrUnsupportedOperation)
}

func (p *Pack) RewriteCallProperty(pf driver.ParsedFile, object, property, newProperty string, argsMap map[string]string) (driver.RewriteResult, error) {
	return driver.RewriteResult{}, fmt.Errorf("%w: replaceAPI is not implemented for java", model.ErrUnsupportedOperation)
}

// Generate returns pf's original source unchanged; Parse never mutates
// it, so the round trip holds even though this pack declines every
// mutating operation.
func (p *Pack) Generate(pf driver.ParsedFile) ([]byte, error) {
	return pf.Source, nil
}
