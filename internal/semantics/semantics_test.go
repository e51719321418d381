package semantics

import (
	"testing"

	"hifcore/internal/semantics/catalog"
	"hifcore/internal/tree"
)

func TestExprTypeArithmeticWidensToReal(t *testing.T) {
	a := tree.NewArena()
	sem := NewHIF(nil)

	intT := a.New(tree.KindTypeInt, tree.TypeIntPayload{Signed: true})
	realT := a.New(tree.KindTypeReal, tree.TypeRealPayload{})

	res, ok := sem.ExprType(intT, realT, tree.OpPlus, ExprContext{}, a)
	if !ok {
		t.Fatalf("ExprType(Int, Real, +) should succeed")
	}
	if a.Get(res.Returned).Kind != tree.KindTypeReal {
		t.Fatalf("result kind = %v, want Real", a.Get(res.Returned).Kind)
	}
}

func TestExprTypeRelationalReturnsBool(t *testing.T) {
	a := tree.NewArena()
	sem := NewVHDL(nil)
	intT := a.New(tree.KindTypeInt, tree.TypeIntPayload{Signed: true})

	res, ok := sem.ExprType(intT, intT, tree.OpLt, ExprContext{}, a)
	if !ok || a.Get(res.Returned).Kind != tree.KindTypeBool {
		t.Fatalf("relational ExprType should return Bool, got ok=%v", ok)
	}
}

func TestExprTypeBitwiseRejectsNonLogic(t *testing.T) {
	a := tree.NewArena()
	sem := NewVerilog(nil)
	realT := a.New(tree.KindTypeReal, tree.TypeRealPayload{})

	if _, ok := sem.ExprType(realT, realT, tree.OpAnd, ExprContext{}, a); ok {
		t.Fatalf("bitwise & on Real operands should fail")
	}
}

func TestTypeForConstantBitvectorSpan(t *testing.T) {
	a := tree.NewArena()
	sem := NewHIF(nil)
	cv := a.New(tree.KindBitvectorValue, tree.BitvectorValuePayload{Value: []tree.BitState{tree.Bit1, tree.Bit0, tree.Bit1, tree.Bit1}})

	ty := sem.TypeForConstant(cv, a)
	p := a.Get(ty).Payload.(tree.TypeBitvectorPayload)
	if size := p.Span.Size(a); size != 4 {
		t.Fatalf("bitvector constant type span size = %d, want 4", size)
	}
}

func TestIsEventCallPerDialect(t *testing.T) {
	a := tree.NewArena()
	fc := a.New(tree.KindFunctionCall, tree.FunctionCallPayload{Name: "rising_edge"})

	if !NewVHDL(nil).IsEventCall(fc, a) {
		t.Fatalf("VHDL should recognize rising_edge as an event call")
	}
	if NewVerilog(nil).IsEventCall(fc, a) {
		t.Fatalf("Verilog should not recognize rising_edge as an event call")
	}
}

func TestCatalogBackedStandardLibrary(t *testing.T) {
	cat, err := catalog.Open([]catalog.Library{
		{Name: "ieee", DesignUnits: []string{"std_logic_1164"}, Views: []string{"std_logic_vector"}},
	})
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	defer cat.Close()

	sem := NewVHDL(cat)
	lib, ok := sem.GetStandardLibrary("ieee")
	if !ok {
		t.Fatalf("GetStandardLibrary(ieee) should succeed")
	}
	if len(lib.DesignUnits) != 1 || lib.DesignUnits[0] != "std_logic_1164" {
		t.Fatalf("unexpected design units: %v", lib.DesignUnits)
	}

	if _, ok := sem.GetStandardLibrary("nonexistent"); ok {
		t.Fatalf("GetStandardLibrary(nonexistent) should fail")
	}
}
