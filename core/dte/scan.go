// Package dte proposes ChangeSpec Patches from a structural comparison of
// two scans of a Go source scope. It is the corpus feature the original
// distillation dropped: instead of always hand-authoring every Patch, a
// caller can point ScanExports at a before/after tree and let DiffExports
// classify what moved, renamed, or disappeared.
package dte

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/emenda-labs/warden/core/model"
)

// symbolKey uniquely identifies a symbol for index lookups in DiffExports.
type symbolKey struct {
	pkg  string
	kind model.SymbolKind
	name string // for methods: "Receiver.Method"
}

// FuncSigMap caches structured function signatures keyed by symbolKey.
// Built during ScanExports, consumed by DiffExports' fuzzy-match pass.
type FuncSigMap map[symbolKey]funcSignature

// ScanExports walks the source tree at rootDir and collects every exported
// symbol, along with a signature cache for fuzzy-match diffing.
func ScanExports(ctx context.Context, rootDir, scopeModule string) (model.Symbols, FuncSigMap, error) {
	fset := token.NewFileSet()
	var entries []model.Symbol
	sigMap := make(FuncSigMap)

	walkErr := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			base := d.Name()
			if base == "testdata" || base == "vendor" || strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		file, parseErr := parser.ParseFile(fset, path, nil, 0)
		if parseErr != nil {
			return fmt.Errorf("%w: %s: %v", model.ErrParseError, path, parseErr)
		}
		if file.Name.Name == "main" {
			return nil
		}

		pkgPath := computePackagePath(rootDir, path, scopeModule)

		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				collectFunc(fset, d, pkgPath, &entries, sigMap)
			case *ast.GenDecl:
				switch d.Tok {
				case token.TYPE:
					collectTypes(fset, d, pkgPath, &entries)
				case token.CONST:
					collectValues(fset, d, pkgPath, model.SymbolConst, &entries)
				case token.VAR:
					collectValues(fset, d, pkgPath, model.SymbolVar, &entries)
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		return model.Symbols{}, nil, fmt.Errorf("walking source at %s: %w", rootDir, walkErr)
	}

	return model.Symbols{Module: scopeModule, Entries: entries}, sigMap, nil
}

func collectFunc(fset *token.FileSet, funcDecl *ast.FuncDecl, pkgPath string, entries *[]model.Symbol, sigMap FuncSigMap) {
	if funcDecl.Name == nil || !funcDecl.Name.IsExported() {
		return
	}

	var sym model.Symbol
	var key symbolKey

	if funcDecl.Recv != nil {
		recvName := receiverTypeName(funcDecl.Recv)
		if recvName == "" || !ast.IsExported(recvName) {
			return
		}
		sym = model.Symbol{
			Kind:     model.SymbolMethod,
			Name:     recvName + "." + funcDecl.Name.Name,
			Package:  pkgPath,
			Receiver: recvName,
		}
		key = symbolKey{pkg: pkgPath, kind: model.SymbolMethod, name: sym.Name}
	} else {
		sym = model.Symbol{
			Kind:    model.SymbolFunc,
			Name:    funcDecl.Name.Name,
			Package: pkgPath,
		}
		key = symbolKey{pkg: pkgPath, kind: model.SymbolFunc, name: sym.Name}
	}

	sig := extractFuncSignature(funcDecl.Type)
	sym.Signature = renderFuncSignature(sig)
	sigMap[key] = sig

	*entries = append(*entries, sym)
}

func collectTypes(fset *token.FileSet, genDecl *ast.GenDecl, pkgPath string, entries *[]model.Symbol) {
	for _, spec := range genDecl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok || typeSpec.Name == nil || !typeSpec.Name.IsExported() {
			continue
		}

		typeName := typeSpec.Name.Name

		kind := model.SymbolType
		if _, isIface := typeSpec.Type.(*ast.InterfaceType); isIface {
			kind = model.SymbolInterface
		}

		*entries = append(*entries, model.Symbol{
			Kind:      kind,
			Name:      typeName,
			Package:   pkgPath,
			Signature: extractTypeSignature(typeSpec),
		})

		structType, ok := typeSpec.Type.(*ast.StructType)
		if !ok || structType.Fields == nil {
			continue
		}

		for _, field := range structType.Fields.List {
			if len(field.Names) == 0 {
				embName := baseTypeName(field.Type)
				if embName == "" || !ast.IsExported(embName) {
					continue
				}
				*entries = append(*entries, model.Symbol{
					Kind:      model.SymbolField,
					Name:      typeName + "." + embName,
					Package:   pkgPath,
					Signature: renderTypeExpr(field.Type),
				})
				continue
			}
			for _, name := range field.Names {
				if !name.IsExported() {
					continue
				}
				*entries = append(*entries, model.Symbol{
					Kind:      model.SymbolField,
					Name:      typeName + "." + name.Name,
					Package:   pkgPath,
					Signature: renderTypeExpr(field.Type),
				})
			}
		}
	}
}

func collectValues(fset *token.FileSet, genDecl *ast.GenDecl, pkgPath string, kind model.SymbolKind, entries *[]model.Symbol) {
	for _, spec := range genDecl.Specs {
		valSpec, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for _, name := range valSpec.Names {
			if !name.IsExported() {
				continue
			}
			*entries = append(*entries, model.Symbol{
				Kind:      kind,
				Name:      name.Name,
				Package:   pkgPath,
				Signature: extractConstVarType(valSpec),
			})
		}
	}
}

func computePackagePath(sourceRoot, filePath, scopeModule string) string {
	dir := filepath.Dir(filePath)
	relDir, err := filepath.Rel(sourceRoot, dir)
	if err != nil || relDir == "." || relDir == "" {
		return scopeModule
	}
	return scopeModule + "/" + filepath.ToSlash(relDir)
}

// baseTypeName strips pointers, generics, and package selectors down to a
// bare type identifier. Examples: *Client -> "Client", Foo[T] -> "Foo".
func baseTypeName(expr ast.Expr) string {
	if expr == nil {
		return ""
	}
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if idx, ok := expr.(*ast.IndexExpr); ok {
		expr = idx.X
	}
	if idx, ok := expr.(*ast.IndexListExpr); ok {
		expr = idx.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	if sel, ok := expr.(*ast.SelectorExpr); ok {
		return sel.Sel.Name
	}
	return ""
}

func receiverTypeName(recv *ast.FieldList) string {
	if recv == nil || len(recv.List) == 0 {
		return ""
	}
	return baseTypeName(recv.List[0].Type)
}
