package dte

import (
	"context"
	"fmt"

	"github.com/emenda-labs/warden/core/model"
	"github.com/emenda-labs/warden/pkg/gomod"
)

// Propose scans oldRoot and newRoot, diffs their exports, and returns both
// the raw DiffReport and the subset of changes translated into Patches a
// ChangeSpec author can accept as-is. Only high-confidence renames convert
// cleanly into a renameSymbol Patch; anything else is left in the report
// for a human or an agent to turn into hand-authored Patches.
//
// scopeModule labels the symbols in the report; if left empty it is read
// from oldRoot's go.mod so callers pointing at a real module tree don't
// have to pass its import path by hand.
func Propose(ctx context.Context, oldRoot, newRoot, scopeModule string) (model.DiffReport, []model.Patch, error) {
	if scopeModule == "" {
		if modPath, err := gomod.FindModulePath(oldRoot); err == nil {
			scopeModule = modPath
		}
	}

	oldSyms, oldSigs, err := ScanExports(ctx, oldRoot, scopeModule)
	if err != nil {
		return model.DiffReport{}, nil, fmt.Errorf("scanning old scope: %w", err)
	}
	newSyms, newSigs, err := ScanExports(ctx, newRoot, scopeModule)
	if err != nil {
		return model.DiffReport{}, nil, fmt.Errorf("scanning new scope: %w", err)
	}

	changes := DiffExports(oldSyms, newSyms, oldSigs, newSigs)
	report := model.DiffReport{Scope: scopeModule, Changes: changes}

	var patches []model.Patch
	for _, c := range changes {
		if c.Kind != model.ChangeKindRenamed || c.Confidence != model.ConfidenceHigh {
			continue
		}
		patches = append(patches, model.Patch{
			Path:     c.Package,
			AstOp:    model.AstOpRenameSymbol,
			Selector: fmt.Sprintf("Identifier[name='%s']", c.Symbol),
			Details:  model.PatchDetails{NewName: c.NewName},
		})
	}

	return report, patches, nil
}
