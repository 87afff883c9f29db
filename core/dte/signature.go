package dte

import (
	"fmt"
	"go/ast"
	"sort"
	"strings"
)

// funcSignature holds structured function parameter and result types,
// used for param-overlap scoring in DiffExports' fuzzy-match pass.
type funcSignature struct {
	params  []string
	results []string
}

// renderTypeExpr converts any ast.Expr to its canonical string form. This
// is the single source of truth for type rendering in this package.
func renderTypeExpr(expr ast.Expr) string {
	if expr == nil {
		return ""
	}

	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return renderTypeExpr(e.X) + "." + e.Sel.Name
	case *ast.StarExpr:
		return "*" + renderTypeExpr(e.X)
	case *ast.ArrayType:
		if e.Len != nil {
			return fmt.Sprintf("[%s]%s", renderTypeExpr(e.Len), renderTypeExpr(e.Elt))
		}
		return "[]" + renderTypeExpr(e.Elt)
	case *ast.MapType:
		return "map[" + renderTypeExpr(e.Key) + "]" + renderTypeExpr(e.Value)
	case *ast.InterfaceType:
		if e.Methods == nil || len(e.Methods.List) == 0 {
			return "interface{}"
		}
		return "interface{...}"
	case *ast.FuncType:
		sig := extractFuncSignature(e)
		return "func" + renderFuncSignature(sig)
	case *ast.Ellipsis:
		return "..." + renderTypeExpr(e.Elt)
	case *ast.ChanType:
		switch e.Dir {
		case ast.RECV:
			return "<-chan " + renderTypeExpr(e.Value)
		case ast.SEND:
			return "chan<- " + renderTypeExpr(e.Value)
		default:
			return "chan " + renderTypeExpr(e.Value)
		}
	case *ast.StructType:
		return "struct{...}"
	case *ast.IndexExpr:
		return renderTypeExpr(e.X) + "[" + renderTypeExpr(e.Index) + "]"
	case *ast.IndexListExpr:
		indices := make([]string, len(e.Indices))
		for i, idx := range e.Indices {
			indices[i] = renderTypeExpr(idx)
		}
		return renderTypeExpr(e.X) + "[" + strings.Join(indices, ", ") + "]"
	case *ast.ParenExpr:
		return "(" + renderTypeExpr(e.X) + ")"
	case *ast.BasicLit:
		return e.Value
	default:
		return "unknown"
	}
}

func extractFuncSignature(funcType *ast.FuncType) funcSignature {
	if funcType == nil {
		return funcSignature{}
	}

	var params []string
	if funcType.Params != nil {
		for _, field := range funcType.Params.List {
			typeStr := renderTypeExpr(field.Type)
			if len(field.Names) == 0 {
				params = append(params, typeStr)
			} else {
				for range field.Names {
					params = append(params, typeStr)
				}
			}
		}
	}

	var results []string
	if funcType.Results != nil {
		for _, field := range funcType.Results.List {
			typeStr := renderTypeExpr(field.Type)
			if len(field.Names) == 0 {
				results = append(results, typeStr)
			} else {
				for range field.Names {
					results = append(results, typeStr)
				}
			}
		}
	}

	return funcSignature{params: params, results: results}
}

// renderFuncSignature renders "(Type1, Type2) RetType" or "(Type1) (R1, R2)".
func renderFuncSignature(sig funcSignature) string {
	paramStr := "(" + strings.Join(sig.params, ", ") + ")"
	switch len(sig.results) {
	case 0:
		return paramStr
	case 1:
		return paramStr + " " + sig.results[0]
	default:
		return paramStr + " (" + strings.Join(sig.results, ", ") + ")"
	}
}

func extractTypeSignature(typeSpec *ast.TypeSpec) string {
	if typeSpec.Assign.IsValid() {
		return "= " + renderTypeExpr(typeSpec.Type)
	}
	switch t := typeSpec.Type.(type) {
	case *ast.StructType:
		return renderStructSignature(t)
	case *ast.InterfaceType:
		return renderInterfaceSignature(t)
	default:
		return renderTypeExpr(typeSpec.Type)
	}
}

func renderStructSignature(structType *ast.StructType) string {
	if structType.Fields == nil || len(structType.Fields.List) == 0 {
		return "struct{}"
	}
	var fields []string
	for _, field := range structType.Fields.List {
		typeStr := renderTypeExpr(field.Type)
		if len(field.Names) == 0 {
			fields = append(fields, typeStr)
			continue
		}
		for _, name := range field.Names {
			if !name.IsExported() {
				continue
			}
			fields = append(fields, name.Name+" "+typeStr)
		}
	}
	if len(fields) == 0 {
		return "struct{}"
	}
	return "struct{" + strings.Join(fields, "; ") + "}"
}

func renderInterfaceSignature(interfaceType *ast.InterfaceType) string {
	if interfaceType.Methods == nil || len(interfaceType.Methods.List) == 0 {
		return "interface{}"
	}
	var entries []string
	for _, method := range interfaceType.Methods.List {
		if len(method.Names) > 0 {
			name := method.Names[0].Name
			if funcType, ok := method.Type.(*ast.FuncType); ok {
				sig := extractFuncSignature(funcType)
				entries = append(entries, name+renderFuncSignature(sig))
			}
		} else {
			entries = append(entries, renderTypeExpr(method.Type))
		}
	}
	sort.Strings(entries)
	if len(entries) == 0 {
		return "interface{}"
	}
	return "interface{" + strings.Join(entries, "; ") + "}"
}

func extractConstVarType(spec *ast.ValueSpec) string {
	if spec == nil || spec.Type == nil {
		return ""
	}
	return renderTypeExpr(spec.Type)
}
