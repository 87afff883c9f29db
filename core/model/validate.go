package model

import (
	"fmt"
	"regexp"
)

var changeSpecIDPattern = regexp.MustCompile(`^CS-[0-9]+$`)

// ValidateChangeSpec checks required id/intent/scope/language/patches/
// invariants/tests fields, optional assumptions/risk/telemetry, plus the
// per-field enum and pattern constraints and the well-formedness of every
// patch.
func ValidateChangeSpec(cs ChangeSpec) error {
	if !changeSpecIDPattern.MatchString(cs.ID) {
		return fmt.Errorf("%w: id %q does not match ^CS-[0-9]+$", ErrInvalidChangeSpec, cs.ID)
	}
	if cs.Intent == "" {
		return fmt.Errorf("%w: intent is required", ErrInvalidChangeSpec)
	}
	if len(cs.Scope) == 0 {
		return fmt.Errorf("%w: scope must not be empty", ErrInvalidChangeSpec)
	}
	switch cs.Language {
	case LanguageTypeScript, LanguageJavaScript, LanguagePython, LanguageJava:
	default:
		return fmt.Errorf("%w: unrecognized language %q", ErrInvalidChangeSpec, cs.Language)
	}
	if cs.Risk != "" {
		switch cs.Risk {
		case RiskLow, RiskMedium, RiskHigh:
		default:
			return fmt.Errorf("%w: unrecognized risk %q", ErrInvalidChangeSpec, cs.Risk)
		}
	}
	if len(cs.Invariants) == 0 {
		return fmt.Errorf("%w: invariants must not be empty", ErrInvalidChangeSpec)
	}
	seenNames := make(map[string]bool, len(cs.Invariants))
	for _, inv := range cs.Invariants {
		if inv.Name == "" {
			return fmt.Errorf("%w: invariant name is required", ErrInvalidChangeSpec)
		}
		if seenNames[inv.Name] {
			return fmt.Errorf("%w: duplicate invariant name %q", ErrInvalidChangeSpec, inv.Name)
		}
		seenNames[inv.Name] = true
		switch inv.Type {
		case InvariantTypecheck, InvariantSymbolExists, InvariantAPICompat, InvariantRegex, InvariantSemanticRule:
		default:
			return fmt.Errorf("%w: unrecognized invariant type %q", ErrInvalidChangeSpec, inv.Type)
		}
	}

	switch cs.Tests.Strategy {
	case TestStrategyAugment, TestStrategyGenerate, TestStrategyHybrid:
	default:
		return fmt.Errorf("%w: unrecognized test strategy %q", ErrInvalidChangeSpec, cs.Tests.Strategy)
	}
	if cs.Tests.MutationThreshold < 0 || cs.Tests.MutationThreshold > 1 {
		return fmt.Errorf("%w: mutationThreshold %v out of [0,1]", ErrInvalidChangeSpec, cs.Tests.MutationThreshold)
	}

	for i, p := range cs.Patches {
		if err := validatePatch(p); err != nil {
			return fmt.Errorf("%w: patch[%d]: %v", ErrInvalidChangeSpec, i, err)
		}
	}

	return nil
}

func validatePatch(p Patch) error {
	if p.Path == "" {
		return fmt.Errorf("path is required")
	}
	if p.AstOp == "" {
		return fmt.Errorf("astOp is required")
	}
	if !SupportedAstOps[p.AstOp] {
		// Not a schema error: it is well-formed, just unsupported. apply()
		// surfaces this per-patch as UnsupportedOperation rather than
		// rejecting the whole ChangeSpec at validation time, EXCEPT that
		// truly unknown ops (not in the AstOp enum at all) fail fast here.
		switch p.AstOp {
		case AstOpMoveModule, AstOpInsertNode, AstOpDeleteNode, AstOpEditString, AstOpEditRegex:
			return nil
		default:
			return fmt.Errorf("unknown astOp %q", p.AstOp)
		}
	}
	switch p.AstOp {
	case AstOpRenameSymbol:
		if p.Details.NewName == "" {
			return fmt.Errorf("renameSymbol requires details.newName")
		}
	case AstOpReplaceAPI:
		if p.Details.NewProperty == "" && len(p.Details.ArgsMap) == 0 {
			return fmt.Errorf("replaceAPI requires details.newProperty and/or details.argsMap")
		}
	}
	return nil
}

// DefaultTelemetry seeds a telemetry map with the fields the Evidence Log
// always wants present, without overwriting caller-supplied values.
func DefaultTelemetry(cs ChangeSpec) map[string]string {
	out := make(map[string]string, len(cs.Telemetry)+1)
	for k, v := range cs.Telemetry {
		out[k] = v
	}
	if _, ok := out["risk"]; !ok && cs.Risk != "" {
		out["risk"] = string(cs.Risk)
	}
	return out
}
