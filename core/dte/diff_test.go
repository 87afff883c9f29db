package dte

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/emenda-labs/warden/core/model"
)

func TestDiffExports_IdenticalScopes(t *testing.T) {
	dir := filepath.Join(testdataDir(t), "old")
	syms, sigs, err := ScanExports(context.Background(), dir, "github.com/acme/testmod")
	if err != nil {
		t.Fatalf("ScanExports: %v", err)
	}

	changes := DiffExports(syms, syms, sigs, sigs)
	if len(changes) != 0 {
		t.Errorf("identical scopes should produce 0 changes, got %d", len(changes))
		for _, c := range changes {
			t.Logf("  %s %s %s", c.Kind, c.Package, c.Symbol)
		}
	}
}

func TestDiffExports_FullFixtures(t *testing.T) {
	oldDir := filepath.Join(testdataDir(t), "old")
	newDir := filepath.Join(testdataDir(t), "new")

	oldSyms, oldSigs, err := ScanExports(context.Background(), oldDir, "github.com/acme/testmod")
	if err != nil {
		t.Fatalf("ScanExports old: %v", err)
	}
	newSyms, newSigs, err := ScanExports(context.Background(), newDir, "github.com/acme/testmod")
	if err != nil {
		t.Fatalf("ScanExports new: %v", err)
	}

	changes := DiffExports(oldSyms, newSyms, oldSigs, newSigs)

	bySymbol := make(map[string]model.Change)
	for _, c := range changes {
		bySymbol[c.Symbol] = c
	}

	if c, ok := bySymbol["DoWork"]; ok {
		if c.Kind != model.ChangeKindSignatureChanged {
			t.Errorf("DoWork kind = %q, want signature_changed", c.Kind)
		}
		if c.Confidence != model.ConfidenceHigh {
			t.Errorf("DoWork confidence = %q, want high", c.Confidence)
		}
	} else {
		t.Error("missing change for DoWork")
	}

	if c, ok := bySymbol["HelperFunc"]; ok {
		if c.Kind != model.ChangeKindRenamed {
			t.Errorf("HelperFunc kind = %q, want renamed", c.Kind)
		}
		if c.NewName != "HelperFunction" {
			t.Errorf("HelperFunc new name = %q, want HelperFunction", c.NewName)
		}
		if c.Confidence != model.ConfidenceHigh {
			t.Errorf("HelperFunc confidence = %q, want high", c.Confidence)
		}
	} else {
		t.Error("missing change for HelperFunc")
	}

	if c, ok := bySymbol["OldOnly"]; ok {
		if c.Kind != model.ChangeKindRemoved {
			t.Errorf("OldOnly kind = %q, want removed", c.Kind)
		}
	} else {
		t.Error("missing change for OldOnly")
	}

	if _, ok := bySymbol["Variadic"]; ok {
		t.Error("Variadic is unchanged and should not appear in the diff")
	}
}

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"Foo", "Foo", 1.0},
		{"Foo", "Bar", 0},
	}
	for _, tt := range tests {
		if got := nameSimilarity(tt.a, tt.b); tt.want == 1.0 && got != 1.0 {
			t.Errorf("nameSimilarity(%q, %q) = %v, want 1.0", tt.a, tt.b, got)
		} else if tt.want == 0 && got == 1.0 {
			t.Errorf("nameSimilarity(%q, %q) = %v, want < 1.0", tt.a, tt.b, got)
		}
	}
}
