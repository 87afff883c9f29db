package driver

import (
	"fmt"

	"github.com/emenda-labs/warden/core/model"
)

// ParsedFile is the opaque per-language AST handle plus its original
// source bytes, threaded through Rename/Rewrite/Generate within a single
// apply() call. The Transform Engine never inspects TreeHandle itself.
type ParsedFile struct {
	Path       string
	Source     []byte
	TreeHandle any
}

// RenameResult is the outcome of rewriting one file's identifiers.
type RenameResult struct {
	Output  []byte
	Changed bool
}

// RewriteResult is the outcome of rewriting one file's call expressions.
type RewriteResult struct {
	Output  []byte
	Changed bool
}

// TransformPack is the capability set a language pack must implement to
// participate in the Transform Engine: parse, mutate, validate. Selector
// matching itself is handled generically by the engine via ParseSelector;
// packs only need to walk their own tree once the selector is decoded.
// Variants register themselves in a Registry at process start.
type TransformPack interface {
	// Language reports which model.Language this pack serves.
	Language() model.Language

	// Parse parses source into a ParsedFile. A parser failure returns
	// model.ErrParseError wrapped with file-specific context.
	Parse(path string, source []byte) (ParsedFile, error)

	// RenameIdentifiers rewrites every identifier token whose text equals
	// name to newName. No binding/scope analysis is performed in v1.
	RenameIdentifiers(pf ParsedFile, name, newName string) (RenameResult, error)

	// RewriteCallProperty rewrites call expressions matching
	// object.property, renaming the property and remapping object-literal
	// argument keys per argsMap.
	RewriteCallProperty(pf ParsedFile, object, property, newProperty string, argsMap map[string]string) (RewriteResult, error)

	// Generate serializes pf back to source bytes with no mutation
	// applied. Parse never mutates, so Generate(Parse(source)) must
	// equal source for every pack; the engine uses this as a parser
	// fidelity check before trusting a pack's rewrites for a file.
	Generate(pf ParsedFile) ([]byte, error)

	// Validate parses source and reports a parse error without mutating.
	Validate(path string, source []byte) error
}

// Registry maps a model.Language to the TransformPack that serves it.
type Registry struct {
	packs map[model.Language]TransformPack
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{packs: make(map[model.Language]TransformPack)}
}

// Register adds a pack, keyed by its own Language().
func (r *Registry) Register(pack TransformPack) {
	r.packs[pack.Language()] = pack
}

// Get returns the pack for lang, or an error if none is registered.
func (r *Registry) Get(lang model.Language) (TransformPack, error) {
	pack, ok := r.packs[lang]
	if !ok {
		return nil, fmt.Errorf("%w: no transform pack registered for language %q", model.ErrUnsupportedOperation, lang)
	}
	return pack, nil
}
