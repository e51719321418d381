package tree

import "testing"

func TestArenaAttachDetach(t *testing.T) {
	a := NewArena()
	leaf := a.New(KindIntValue, IntValuePayload{Value: 3})
	expr := a.New(KindExpression, ExpressionPayload{Operator: OpUnaryMinus, Left: leaf})
	a.Attach(expr, leaf)

	if got := a.Get(leaf).Parent; got != expr {
		t.Fatalf("leaf parent = %d, want %d", got, expr)
	}
	children := a.Children(expr)
	if len(children) != 1 || children[0] != leaf {
		t.Fatalf("Children(expr) = %v, want [%d]", children, leaf)
	}

	a.Remove(expr)
	a.Flush()
	if a.IsLive(expr) || a.IsLive(leaf) {
		t.Fatalf("expected expr and leaf to be trashed after Flush")
	}
}

func TestArenaGeneration(t *testing.T) {
	a := NewArena()
	id := a.New(KindIdentifier, IdentifierPayload{Name: "clk"})
	g0 := a.Get(id).Generation()
	a.Bump(id)
	g1 := a.Get(id).Generation()
	if g1 != g0+1 {
		t.Fatalf("generation after Bump = %d, want %d", g1, g0+1)
	}
}

func TestRangeNullCanonicalization(t *testing.T) {
	a := NewArena()
	r := NullRange(a)
	if r.Dir != Downto {
		t.Fatalf("NullRange direction = %v, want Downto", r.Dir)
	}
	if !r.IsNull(a) {
		t.Fatalf("NullRange() should report IsNull")
	}
	if size := r.Size(a); size != 0 {
		t.Fatalf("NullRange size = %d, want 0", size)
	}
}

func TestRangeSizeAndInversion(t *testing.T) {
	a := NewArena()
	left := a.New(KindIntValue, IntValuePayload{Value: 7})
	right := a.New(KindIntValue, IntValuePayload{Value: 0})
	r := Range{Dir: Downto, Left: left, Right: right}
	if size := r.Size(a); size != 8 {
		t.Fatalf("Size([7 downto 0]) = %d, want 8", size)
	}
	inv := r.Inverted()
	if inv.Dir != Upto || inv.Left != right || inv.Right != left {
		t.Fatalf("Inverted() = %+v, want Upto [0..7]-shape", inv)
	}
}

func TestKindPredicates(t *testing.T) {
	if !KindIntValue.IsValue() {
		t.Fatal("KindIntValue should be IsValue")
	}
	if !KindTypeBitvector.IsType() {
		t.Fatal("KindTypeBitvector should be IsType")
	}
	if !KindSignal.IsDeclaration() {
		t.Fatal("KindSignal should be IsDeclaration")
	}
	if !KindForStmt.IsStatement() {
		t.Fatal("KindForStmt should be IsStatement")
	}
}
