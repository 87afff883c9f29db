// Package driver defines the Transform Engine's polymorphism boundary: the
// TransformPack capability set that each language pack implements, and the
// selector grammar used to target AST nodes within a Patch.
package driver

import (
	"fmt"
	"strings"

	"github.com/emenda-labs/warden/core/model"
)

// Query is the parsed form of a Patch selector. Only two shapes are
// recognized in v1; ParseSelector rejects everything else with
// model.ErrInvalidSelector.
type Query interface {
	isQuery()
}

// IdentifierQuery matches `Identifier[name='<NAME>']`.
type IdentifierQuery struct {
	Name string
}

func (IdentifierQuery) isQuery() {}

// CallExpressionQuery matches
// `CallExpression[callee.object.name='<O>'][callee.property.name='<P>']`.
type CallExpressionQuery struct {
	Object   string
	Property string
}

func (CallExpressionQuery) isQuery() {}

// ParseSelector parses the attribute-predicate selector subset: either
// Identifier[name='X'] or CallExpression[callee.object.name='O']
// [callee.property.name='P']. Selectors outside these two shapes yield
// model.ErrInvalidSelector.
func ParseSelector(selector string) (Query, error) {
	s := strings.TrimSpace(selector)

	if q, ok, err := parseIdentifier(s); ok || err != nil {
		return q, err
	}
	if q, ok, err := parseCallExpression(s); ok || err != nil {
		return q, err
	}
	return nil, fmt.Errorf("%w: %q", model.ErrInvalidSelector, selector)
}

// parseIdentifier attempts to parse `Identifier[name='X']`.
func parseIdentifier(s string) (Query, bool, error) {
	const prefix = "Identifier["
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, "]") {
		return nil, false, nil
	}
	body := s[len(prefix) : len(s)-1]
	name, ok := parseAttr(body, "name")
	if !ok {
		return nil, true, fmt.Errorf("%w: malformed Identifier selector %q", model.ErrInvalidSelector, s)
	}
	return IdentifierQuery{Name: name}, true, nil
}

// parseCallExpression attempts to parse
// `CallExpression[callee.object.name='O'][callee.property.name='P']`.
func parseCallExpression(s string) (Query, bool, error) {
	const prefix = "CallExpression"
	if !strings.HasPrefix(s, prefix) {
		return nil, false, nil
	}
	rest := s[len(prefix):]

	preds, err := splitPredicates(rest)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", model.ErrInvalidSelector, err)
	}
	if len(preds) != 2 {
		return nil, true, fmt.Errorf("%w: CallExpression selector requires exactly 2 predicates, got %d", model.ErrInvalidSelector, len(preds))
	}

	object, ok := parseAttr(preds[0], "callee.object.name")
	if !ok {
		return nil, true, fmt.Errorf("%w: malformed CallExpression selector %q", model.ErrInvalidSelector, s)
	}
	property, ok := parseAttr(preds[1], "callee.property.name")
	if !ok {
		return nil, true, fmt.Errorf("%w: malformed CallExpression selector %q", model.ErrInvalidSelector, s)
	}
	return CallExpressionQuery{Object: object, Property: property}, true, nil
}

// splitPredicates splits a run of `[...][...]` blocks into their inner bodies.
func splitPredicates(s string) ([]string, error) {
	var out []string
	for len(s) > 0 {
		if s[0] != '[' {
			return nil, fmt.Errorf("expected '[' at %q", s)
		}
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, fmt.Errorf("unterminated predicate in %q", s)
		}
		out = append(out, s[1:end])
		s = s[end+1:]
	}
	return out, nil
}

// parseAttr parses `<key>='<value>'` and confirms the key matches.
func parseAttr(body, key string) (string, bool) {
	prefix := key + "='"
	if !strings.HasPrefix(body, prefix) || !strings.HasSuffix(body, "'") {
		return "", false
	}
	value := body[len(prefix) : len(body)-1]
	return value, true
}
