// Package redact implements the content sanitization pipeline: a
// pre-compiled, ordered set of policies that scan content crossing a
// trust boundary for secrets and PII, and redact, block, or warn
// according to each policy's configured action.
package redact

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/emenda-labs/warden/core/model"
)

type compiledPolicy struct {
	policy   model.Policy
	patterns []*regexp.Regexp
}

// Engine holds a fixed, pre-compiled policy set. Regexes are compiled once
// at construction so scan() stays well under the 100ms/10KB latency
// target even under repeated calls.
type Engine struct {
	policies []compiledPolicy
}

// NewEngine compiles policies in the given order. An invalid regex in any
// policy pattern is a construction-time error, not a scan-time one.
func NewEngine(policies []model.Policy) (*Engine, error) {
	e := &Engine{policies: make([]compiledPolicy, 0, len(policies))}
	for _, p := range policies {
		cp := compiledPolicy{policy: p}
		for _, pat := range p.Patterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil, fmt.Errorf("compiling pattern %q for policy %s: %w", pat, p.ID, err)
			}
			cp.patterns = append(cp.patterns, re)
		}
		e.policies = append(e.policies, cp)
	}
	return e, nil
}

// NewDefaultEngine builds an Engine over DefaultPolicies().
func NewDefaultEngine() *Engine {
	e, err := NewEngine(DefaultPolicies())
	if err != nil {
		// DefaultPolicies patterns are fixed at compile time; a failure
		// here means the pattern set itself is broken.
		panic(fmt.Sprintf("redact: default policy set failed to compile: %v", err))
	}
	return e
}

type match struct {
	start, end int
	policy     model.Policy
}

// Scan runs every enabled policy over content in order and returns the
// findings plus the redacted output. Findings are located against the
// original content; replacements are applied from end to beginning so
// earlier offsets stay valid even though overlapping matches can occur.
// If any finding's policy action is block, Scan still returns the full
// result but also returns model.ErrPolicyViolation so the caller can
// decide whether to proceed.
func (e *Engine) Scan(content string) (model.ScanResult, error) {
	var matches []match
	var findings []model.Finding
	blocked := false

	for _, cp := range e.policies {
		if !cp.policy.Enabled {
			continue
		}
		for _, re := range cp.patterns {
			for _, loc := range re.FindAllStringIndex(content, -1) {
				start, end := loc[0], loc[1]
				findings = append(findings, model.Finding{
					Type:     cp.policy.Type,
					Location: locationOf(content, start, end),
					Severity: cp.policy.Severity,
					Message:  fmt.Sprintf("%s matched policy %s", cp.policy.Name, cp.policy.ID),
					Policy:   cp.policy.ID,
				})
				if cp.policy.Action == model.ActionRedact {
					matches = append(matches, match{start: start, end: end, policy: cp.policy})
				}
				if cp.policy.Action == model.ActionBlock {
					blocked = true
				}
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start > matches[j].start })

	redacted := content
	for _, m := range matches {
		redacted = redacted[:m.start] + placeholderFor(m.policy.Type) + redacted[m.end:]
	}

	result := model.ScanResult{Original: content, Redacted: redacted, Findings: findings}
	if blocked {
		return result, fmt.Errorf("%w: content matched a block policy", model.ErrPolicyViolation)
	}
	return result, nil
}

// ScanMultiple runs Scan against each entry in files, keyed by path. There
// is no cross-file correlation in v1.
func (e *Engine) ScanMultiple(files map[string]string) (map[string]model.ScanResult, error) {
	results := make(map[string]model.ScanResult, len(files))
	var firstErr error
	for path, content := range files {
		r, err := e.Scan(content)
		results[path] = r
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", path, err)
		}
	}
	return results, firstErr
}

func placeholderFor(t model.PolicyType) string {
	switch t {
	case model.PolicyTypeSecret:
		return "[REDACTED_SECRET]"
	case model.PolicyTypePII:
		return "[REDACTED_PII]"
	default:
		return "[REDACTED]"
	}
}

// locationOf converts a byte offset range into 1-based line/column pairs.
func locationOf(content string, start, end int) model.Location {
	return model.Location{
		StartLine: 1 + strings.Count(content[:start], "\n"),
		StartCol:  colOf(content, start),
		EndLine:   1 + strings.Count(content[:end], "\n"),
		EndCol:    colOf(content, end),
	}
}

func colOf(content string, offset int) int {
	lineStart := strings.LastIndex(content[:offset], "\n") + 1
	return offset - lineStart + 1
}
