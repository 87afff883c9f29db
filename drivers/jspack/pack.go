// Package jspack is the TransformPack for JavaScript and TypeScript,
// backed by Tree-sitter. It walks the parsed tree to find identifier and
// call-expression tokens, then rewrites the original source bytes
// end-to-beginning by descending start offset so earlier edits never
// invalidate later ones.
package jspack

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/emenda-labs/warden/core/driver"
	"github.com/emenda-labs/warden/core/model"
)

// Pack implements driver.TransformPack for model.LanguageJS/TS.
type Pack struct {
	lang model.Language
}

// New creates a Pack for the given JS-family language ("javascript" or
// "typescript"; both parse with the same grammar in v1).
func New(lang model.Language) *Pack {
	return &Pack{lang: lang}
}

func (p *Pack) Language() model.Language { return p.lang }

func (p *Pack) newParser() *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	return parser
}

func (p *Pack) Parse(path string, source []byte) (driver.ParsedFile, error) {
	parser := p.newParser()
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return driver.ParsedFile{}, fmt.Errorf("%w: %s: %v", model.ErrParseError, path, err)
	}
	return driver.ParsedFile{Path: path, Source: source, TreeHandle: tree}, nil
}

func (p *Pack) Validate(path string, source []byte) error {
	_, err := p.Parse(path, source)
	return err
}

// Generate returns pf's original source unchanged. Rename/rewrite here
// splice edits directly into the source bytes rather than serializing a
// mutated tree, so the parsed form always equals what was parsed.
func (p *Pack) Generate(pf driver.ParsedFile) ([]byte, error) {
	return pf.Source, nil
}

type byteEdit struct {
	start, end int
	text       string
}

func applyEdits(source []byte, edits []byteEdit) []byte {
	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	out := string(source)
	for _, e := range edits {
		out = out[:e.start] + e.text + out[e.end:]
	}
	return []byte(out)
}

// RenameIdentifiers rewrites every identifier node whose text equals name.
func (p *Pack) RenameIdentifiers(pf driver.ParsedFile, name, newName string) (driver.RenameResult, error) {
	tree, ok := pf.TreeHandle.(*sitter.Tree)
	if !ok {
		return driver.RenameResult{}, fmt.Errorf("%w: no parsed tree for %s", model.ErrParseError, pf.Path)
	}

	var edits []byteEdit
	walk(tree.RootNode(), func(n *sitter.Node) {
		if n.Type() != "identifier" && n.Type() != "property_identifier" {
			return
		}
		if string(pf.Source[n.StartByte():n.EndByte()]) == name {
			edits = append(edits, byteEdit{start: int(n.StartByte()), end: int(n.EndByte()), text: newName})
		}
	})

	if len(edits) == 0 {
		return driver.RenameResult{Output: pf.Source, Changed: false}, nil
	}
	return driver.RenameResult{Output: applyEdits(pf.Source, edits), Changed: true}, nil
}

// RewriteCallProperty rewrites call expressions callee=object.property.
func (p *Pack) RewriteCallProperty(pf driver.ParsedFile, object, property, newProperty string, argsMap map[string]string) (driver.RewriteResult, error) {
	tree, ok := pf.TreeHandle.(*sitter.Tree)
	if !ok {
		return driver.RewriteResult{}, fmt.Errorf("%w: no parsed tree for %s", model.ErrParseError, pf.Path)
	}

	var edits []byteEdit
	walk(tree.RootNode(), func(n *sitter.Node) {
		if n.Type() != "call_expression" {
			return
		}
		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Type() != "member_expression" {
			return
		}
		obj := fn.ChildByFieldName("object")
		prop := fn.ChildByFieldName("property")
		if obj == nil || prop == nil {
			return
		}
		if string(pf.Source[obj.StartByte():obj.EndByte()]) != object {
			return
		}
		if string(pf.Source[prop.StartByte():prop.EndByte()]) != property {
			return
		}
		if newProperty != "" {
			edits = append(edits, byteEdit{start: int(prop.StartByte()), end: int(prop.EndByte()), text: newProperty})
		}
		if len(argsMap) > 0 {
			args := n.ChildByFieldName("arguments")
			if args != nil {
				edits = append(edits, remapObjectArgKeys(args, pf.Source, argsMap)...)
			}
		}
	})

	if len(edits) == 0 {
		return driver.RewriteResult{Output: pf.Source, Changed: false}, nil
	}
	return driver.RewriteResult{Output: applyEdits(pf.Source, edits), Changed: true}, nil
}

// remapObjectArgKeys finds object-literal argument property keys matching
// argsMap and renames them to their mapped value.
func remapObjectArgKeys(args *sitter.Node, source []byte, argsMap map[string]string) []byteEdit {
	var edits []byteEdit
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() != "object" {
			continue
		}
		for j := 0; j < int(arg.NamedChildCount()); j++ {
			pair := arg.NamedChild(j)
			if pair.Type() != "pair" {
				continue
			}
			key := pair.ChildByFieldName("key")
			if key == nil {
				continue
			}
			keyName := string(source[key.StartByte():key.EndByte()])
			if mapped, ok := argsMap[keyName]; ok {
				edits = append(edits, byteEdit{start: int(key.StartByte()), end: int(key.EndByte()), text: mapped})
			}
		}
	}
	return edits
}

func walk(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	visit(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), visit)
	}
}
