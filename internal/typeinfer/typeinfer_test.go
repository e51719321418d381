package typeinfer

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

func TestSemanticTypeCachesBitValue(t *testing.T) {
	a := tree.NewArena()
	sem := newHIF(t)
	e := New(a)

	bit := a.New(tree.KindBitValue, tree.BitValuePayload{Value: tree.Bit1})
	typ, ok := e.SemanticType(bit, sem)
	if !ok {
		t.Fatalf("SemanticType(bit) failed")
	}
	if a.Get(typ).Kind != tree.KindTypeBit {
		t.Fatalf("SemanticType(bit) kind = %v, want TypeBit", a.Get(typ).Kind)
	}

	// Second call must hit the cache and return the identical node.
	typ2, ok := e.SemanticType(bit, sem)
	if !ok || typ2 != typ {
		t.Fatalf("SemanticType cache miss: got %d, want %d", typ2, typ)
	}
}

func TestResetTypesPurgesCache(t *testing.T) {
	a := tree.NewArena()
	sem := newHIF(t)
	e := New(a)

	bit := a.New(tree.KindBitValue, tree.BitValuePayload{Value: tree.Bit1})
	if _, ok := e.SemanticType(bit, sem); !ok {
		t.Fatalf("initial SemanticType failed")
	}
	e.ResetTypes(bit, false)
	if _, ok := e.cache[cacheKey{node: bit, gen: a.Get(bit).Generation()}]; ok {
		t.Fatalf("ResetTypes did not purge cache entry")
	}
}

func TestSpanBitwidthZeroForSymbolic(t *testing.T) {
	a := tree.NewArena()
	e := New(a)
	r := a.New(tree.KindRangeNode, tree.RangeNodePayload{})
	_ = r
	nullRange := tree.NullRange(a)
	if e.SpanBitwidth(nullRange) != 0 {
		t.Fatalf("SpanBitwidth(null range) should be 0")
	}
	sym := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "N"})
	zero := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 0})
	if e.SpanBitwidth(tree.Range{Dir: tree.Downto, Left: sym, Right: zero}) != 0 {
		t.Fatalf("SpanBitwidth(symbolic range) should be 0")
	}
}
