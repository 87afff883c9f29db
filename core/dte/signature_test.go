package dte

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"
)

func TestRenderTypeExpr(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"ident", "type T = int", "int"},
		{"selector", "type T = context.Context", "context.Context"},
		{"pointer", "type T = *int", "*int"},
		{"slice", "type T = []string", "[]string"},
		{"array", "type T = [3]byte", "[3]byte"},
		{"map", "type T = map[string]int", "map[string]int"},
		{"chan_bidir", "type T = chan int", "chan int"},
		{"chan_recv", "type T = <-chan int", "<-chan int"},
		{"chan_send", "type T = chan<- int", "chan<- int"},
		{"empty_interface", "type T = interface{}", "interface{}"},
		{"func_type", "type T = func(int) error", "func(int) error"},
		{"nested_pointer_slice", "type T = *[]int", "*[]int"},
		{"map_of_slices", "type T = map[string][]int", "map[string][]int"},
		{"paren", "type T = (int)", "(int)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fset := token.NewFileSet()
			src := "package p\nimport \"context\"\nvar _ context.Context\n" + tt.src
			file, err := parser.ParseFile(fset, "", src, 0)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}

			for _, decl := range file.Decls {
				genDecl, ok := decl.(*ast.GenDecl)
				if !ok || genDecl.Tok != token.TYPE {
					continue
				}
				for _, spec := range genDecl.Specs {
					typeSpec := spec.(*ast.TypeSpec)
					if typeSpec.Name.Name != "T" {
						continue
					}
					got := renderTypeExpr(typeSpec.Type)
					if got != tt.want {
						t.Errorf("renderTypeExpr = %q, want %q", got, tt.want)
					}
					return
				}
			}
			t.Error("type T not found in parsed source")
		})
	}
}

func TestRenderFuncSignature(t *testing.T) {
	tests := []struct {
		name string
		sig  funcSignature
		want string
	}{
		{"no results", funcSignature{params: []string{"int", "string"}}, "(int, string)"},
		{"one result", funcSignature{params: []string{"int"}, results: []string{"error"}}, "(int) error"},
		{"multi result", funcSignature{results: []string{"int", "error"}}, "() (int, error)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderFuncSignature(tt.sig); got != tt.want {
				t.Errorf("renderFuncSignature = %q, want %q", got, tt.want)
			}
		})
	}
}
