// Package model holds the data types shared by every Warden component:
// the ChangeSpec contract, the Mission/Checkpoint/Batch/Snapshot workflow
// types, the append-only Event, and the Budget model.
package model

import "time"

// Language identifies a Transform Engine target.
type Language string

const (
	LanguageTypeScript Language = "typescript"
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
)

// RiskLevel classifies the blast radius a ChangeSpec author claims.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// AstOp is the set of AST-level operations a Patch may request.
// Only RenameSymbol and ReplaceAPI are implemented in v1; the rest
// fail with ErrUnsupportedOperation, per spec.
type AstOp string

const (
	AstOpRenameSymbol AstOp = "renameSymbol"
	AstOpReplaceAPI   AstOp = "replaceAPI"
	AstOpMoveModule   AstOp = "moveModule"
	AstOpInsertNode   AstOp = "insertNode"
	AstOpDeleteNode   AstOp = "deleteNode"
	AstOpEditString   AstOp = "editString"
	AstOpEditRegex    AstOp = "editRegex"
)

// SupportedAstOps is the v1 whitelist; anything else is UnsupportedOperation.
var SupportedAstOps = map[AstOp]bool{
	AstOpRenameSymbol: true,
	AstOpReplaceAPI:   true,
}

// PatchDetails carries astOp-specific parameters. Only the fields relevant
// to the dispatched op are read; the rest are ignored.
type PatchDetails struct {
	NewName     string            `json:"newName,omitempty"`
	NewProperty string            `json:"newProperty,omitempty"`
	ArgsMap     map[string]string `json:"argsMap,omitempty"`
}

// Patch is one AST-level operation targeting one path or glob.
type Patch struct {
	Path     string       `json:"path"`
	AstOp    AstOp        `json:"astOp"`
	Selector string       `json:"selector,omitempty"`
	Details  PatchDetails `json:"details,omitempty"`
}

// InvariantType selects which invariant runner handles a given Invariant.
type InvariantType string

const (
	InvariantTypecheck    InvariantType = "typecheck"
	InvariantSymbolExists InvariantType = "symbolExists"
	InvariantAPICompat    InvariantType = "apiCompat"
	InvariantRegex        InvariantType = "regex"
	InvariantSemanticRule InvariantType = "semanticRule"
)

// Invariant is a post-condition that must hold after all patches are applied.
// Spec is type-dependent: a shell command for typecheck, a symbol identifier
// for symbolExists, a regex for regex, and a restricted natural-language
// sentence for semanticRule.
type Invariant struct {
	Name string        `json:"name"`
	Type InvariantType `json:"type"`
	Spec string        `json:"spec"`
}

// TestStrategy selects how the test plan augments or generates coverage.
type TestStrategy string

const (
	TestStrategyAugment  TestStrategy = "augment"
	TestStrategyGenerate TestStrategy = "generate"
	TestStrategyHybrid   TestStrategy = "hybrid"
)

// TestPlan describes how test coverage for a ChangeSpec should be verified.
type TestPlan struct {
	Strategy          TestStrategy `json:"strategy"`
	Targets           []string     `json:"targets,omitempty"`
	MutationThreshold float64      `json:"mutationThreshold"`
}

// ChangeSpec is the transform contract: a declarative description of a
// code change and its post-conditions. Immutable once created.
type ChangeSpec struct {
	ID          string            `json:"id"`
	Intent      string            `json:"intent"`
	Scope       []string          `json:"scope"`
	Language    Language          `json:"language"`
	Assumptions []string          `json:"assumptions,omitempty"`
	Patches     []Patch           `json:"patches"`
	Invariants  []Invariant       `json:"invariants"`
	Tests       TestPlan          `json:"tests"`
	Risk        RiskLevel         `json:"risk,omitempty"`
	Telemetry   map[string]string `json:"telemetry,omitempty"`
}

// DTEResult is the Transform Engine's apply() result shape.
type DTEResult struct {
	Success        bool            `json:"success"`
	FilesModified  []string        `json:"filesModified"`
	Errors         []ResultError   `json:"errors"`
	Warnings       []string        `json:"warnings"`
	InvariantRuns  []InvariantRun  `json:"invariantRuns,omitempty"`
	MutationReport *MutationReport `json:"mutationReport,omitempty"`
}

// ResultError is a structured, non-panicking failure surfaced from apply/verify.
type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// InvariantRun is one invariant's verification outcome.
type InvariantRun struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
	Output  string `json:"output,omitempty"`
}

// MutationFindingStatus is the per-mutant outcome from an external runner.
type MutationFindingStatus string

const (
	MutationKilled   MutationFindingStatus = "Killed"
	MutationSurvived MutationFindingStatus = "Survived"
	MutationTimeout  MutationFindingStatus = "Timeout"
)

// MutationFinding is one mutant's classification.
type MutationFinding struct {
	File        string                `json:"file"`
	MutatorName string                `json:"mutatorName"`
	Status      MutationFindingStatus `json:"status"`
}

// MutationReport is the outcome of mutation-test orchestration.
// Synthesized is true when no mutation tool was found and the report was
// fabricated to exactly meet the threshold — a deliberate v1 compromise
// that downstream consumers can reject in CI.
type MutationReport struct {
	Score       float64           `json:"score"`
	Findings    []MutationFinding `json:"findings,omitempty"`
	Synthesized bool              `json:"synthesized"`
}

// Timestamp is a nanosecond-precision instant, injected rather than read
// from the wall clock so the whole pipeline can be driven deterministically
// in tests (see pkg/clock).
type Timestamp = time.Time
