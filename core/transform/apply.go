// Package transform is the Transform Engine (C4): it applies a
// ChangeSpec's patches to a working directory and verifies its
// invariants, dispatching to a language-specific driver.TransformPack for
// the actual AST work.
package transform

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/emenda-labs/warden/core/driver"
	"github.com/emenda-labs/warden/core/model"
)

// Engine is stateless between calls; a single instance is safe to share
// across concurrent requests since it holds no mutable state of its own
// beyond the read-only pack Registry.
type Engine struct {
	Registry *driver.Registry

	// MutationTimeout bounds the external typecheck/mutation-test
	// runner's context deadline. Zero means DefaultMutationTimeout.
	MutationTimeout time.Duration
}

// New creates a Transform Engine over the given pack registry. A
// mutationTimeout of zero falls back to DefaultMutationTimeout.
func New(registry *driver.Registry, mutationTimeout time.Duration) *Engine {
	return &Engine{Registry: registry, MutationTimeout: mutationTimeout}
}

func (e *Engine) timeout() time.Duration {
	if e.MutationTimeout > 0 {
		return e.MutationTimeout
	}
	return DefaultMutationTimeout
}

// Apply resolves every patch's target files, dispatches on astOp, and
// writes the mutated source back to disk. Patches run in list order;
// within a patch, files are processed in lexicographic order.
func (e *Engine) Apply(spec model.ChangeSpec, workdir string) model.DTEResult {
	result := model.DTEResult{Success: true}

	pack, err := e.Registry.Get(spec.Language)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, model.ResultError{Code: "UnsupportedOperation", Message: err.Error()})
		return result
	}

	modified := make(map[string]bool)

	for _, patch := range spec.Patches {
		if !model.SupportedAstOps[patch.AstOp] {
			result.Success = false
			result.Errors = append(result.Errors, model.ResultError{
				Code: "UnsupportedOperation", Message: fmt.Sprintf("astOp %q is not implemented", patch.AstOp), Path: patch.Path,
			})
			continue
		}

		files, err := resolveFiles(workdir, patch.Path)
		if err != nil {
			result.Success = false
			result.Errors = append(result.Errors, model.ResultError{Code: "IOError", Message: err.Error(), Path: patch.Path})
			continue
		}

		query, err := driver.ParseSelector(patch.Selector)
		if err != nil {
			result.Success = false
			result.Errors = append(result.Errors, model.ResultError{Code: "InvalidSelector", Message: err.Error(), Path: patch.Path})
			continue
		}

		for _, file := range files {
			if err := e.applyPatchToFile(pack, query, patch, file, modified); err != nil {
				result.Success = false
				result.Errors = append(result.Errors, model.ResultError{Code: "ParseError", Message: err.Error(), Path: file})
			}
		}
	}

	for f := range modified {
		result.FilesModified = append(result.FilesModified, f)
	}
	sort.Strings(result.FilesModified)

	return result
}

func (e *Engine) applyPatchToFile(pack driver.TransformPack, query driver.Query, patch model.Patch, file string, modified map[string]bool) error {
	source, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", model.ErrIOError, file, err)
	}

	pf, err := pack.Parse(file, source)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrParseError, file, err)
	}
	regenerated, err := pack.Generate(pf)
	if err != nil {
		return fmt.Errorf("%w: %s: generate: %v", model.ErrParseError, file, err)
	}
	if !bytes.Equal(regenerated, source) {
		return fmt.Errorf("%w: %s: parse/generate round trip did not reproduce the source", model.ErrParseError, file)
	}

	var output []byte
	var changed bool

	switch patch.AstOp {
	case model.AstOpRenameSymbol:
		q, ok := query.(driver.IdentifierQuery)
		if !ok {
			return fmt.Errorf("%w: renameSymbol requires an Identifier selector", model.ErrInvalidSelector)
		}
		res, err := pack.RenameIdentifiers(pf, q.Name, patch.Details.NewName)
		if err != nil {
			return err
		}
		output, changed = res.Output, res.Changed

	case model.AstOpReplaceAPI:
		q, ok := query.(driver.CallExpressionQuery)
		if !ok {
			return fmt.Errorf("%w: replaceAPI requires a CallExpression selector", model.ErrInvalidSelector)
		}
		res, err := pack.RewriteCallProperty(pf, q.Object, q.Property, patch.Details.NewProperty, patch.Details.ArgsMap)
		if err != nil {
			return err
		}
		output, changed = res.Output, res.Changed
	}

	if !changed {
		return nil
	}
	if err := os.WriteFile(file, output, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", model.ErrIOError, file, err)
	}
	modified[file] = true
	return nil
}
