package dte

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/emenda-labs/warden/core/model"
)

func testdataDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to determine test file path")
	}
	return filepath.Join(filepath.Dir(file), "testdata")
}

func TestScanExports_OldFixture(t *testing.T) {
	dir := filepath.Join(testdataDir(t), "old")
	syms, _, err := ScanExports(context.Background(), dir, "github.com/acme/testmod")
	if err != nil {
		t.Fatalf("ScanExports: %v", err)
	}

	if syms.Module != "github.com/acme/testmod" {
		t.Errorf("module = %q, want %q", syms.Module, "github.com/acme/testmod")
	}

	byName := make(map[string]model.Symbol)
	for _, s := range syms.Entries {
		byName[s.Package+"."+s.Name] = s
	}

	expected := []struct {
		key  string
		kind model.SymbolKind
	}{
		{"github.com/acme/testmod.DoWork", model.SymbolFunc},
		{"github.com/acme/testmod.SimpleFunc", model.SymbolFunc},
		{"github.com/acme/testmod.HelperFunc", model.SymbolFunc},
		{"github.com/acme/testmod.OldOnly", model.SymbolFunc},
		{"github.com/acme/testmod.Variadic", model.SymbolFunc},
		{"github.com/acme/testmod.Config", model.SymbolType},
		{"github.com/acme/testmod.Handler", model.SymbolInterface},
		{"github.com/acme/testmod.Token", model.SymbolType},
		{"github.com/acme/testmod.Config.Validate", model.SymbolMethod},
		{"github.com/acme/testmod.Config.Apply", model.SymbolMethod},
		{"github.com/acme/testmod.Config.Host", model.SymbolField},
		{"github.com/acme/testmod.Config.Port", model.SymbolField},
		{"github.com/acme/testmod.Config.Timeout", model.SymbolField},
		{"github.com/acme/testmod.MaxRetries", model.SymbolConst},
		{"github.com/acme/testmod.UntypedConst", model.SymbolConst},
		{"github.com/acme/testmod.ErrNotFound", model.SymbolVar},
		{"github.com/acme/testmod.DefaultConfig", model.SymbolVar},
		{"github.com/acme/testmod.ComputeHash", model.SymbolVar},
		{"github.com/acme/testmod/sub.SubFunc", model.SymbolFunc},
	}

	for _, want := range expected {
		got, ok := byName[want.key]
		if !ok {
			t.Errorf("missing symbol %q", want.key)
			continue
		}
		if got.Kind != want.kind {
			t.Errorf("%q kind = %q, want %q", want.key, got.Kind, want.kind)
		}
	}
}

func TestScanExports_SkipsUnexported(t *testing.T) {
	dir := filepath.Join(testdataDir(t), "old")
	syms, _, err := ScanExports(context.Background(), dir, "github.com/acme/testmod")
	if err != nil {
		t.Fatalf("ScanExports: %v", err)
	}
	for _, s := range syms.Entries {
		if s.Name[0] >= 'a' && s.Name[0] <= 'z' {
			t.Errorf("unexported symbol leaked into scan: %s", s.Name)
		}
	}
}
