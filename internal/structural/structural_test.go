package structural

import (
	"testing"

	"hifcore/internal/semantics"
	"hifcore/internal/semantics/catalog"
	"hifcore/internal/tree"
)

func newHIF(t *testing.T) semantics.LanguageSemantics {
	t.Helper()
	cat, err := catalog.Open(nil)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() { cat.Close() })
	return semantics.NewHIF(cat)
}

func newPass(t *testing.T, a *tree.Arena) *Pass {
	t.Helper()
	return NewPass(a, newHIF(t))
}
