package structural

import (
	"testing"

	"hifcore/internal/tree"
)

func TestReplaceEdgeCallsLowersRisingEdge(t *testing.T) {
	a := tree.NewArena()
	clk := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "clk"})
	pa := a.New(tree.KindParameterAssign, tree.ParameterAssignPayload{Value: clk})
	a.Attach(pa, clk)
	call := a.New(tree.KindFunctionCall, tree.FunctionCallPayload{Name: "rising_edge", Parameters: tree.BList{pa}})
	a.Attach(call, pa)

	cond := a.New(tree.KindWaitStmt, tree.WaitStmtPayload{Condition: call})
	a.Attach(cond, call)

	p := newPass(t, a)
	p.replaceEdgeCalls(cond)

	wp := a.Get(cond).Payload.(tree.WaitStmtPayload)
	top, ok := a.Get(wp.Condition).Payload.(tree.ExpressionPayload)
	if !ok || top.Operator != tree.OpAndBool {
		t.Fatalf("lowered condition root = %+v, want an OpAndBool Expression", a.Get(wp.Condition))
	}
	inner, ok := a.Get(top.Left).Payload.(tree.ExpressionPayload)
	if !ok || inner.Operator != tree.OpAndBool {
		t.Fatalf("lowered condition left operand = %+v, want an OpAndBool Expression", a.Get(top.Left))
	}
	eventCall, ok := a.Get(inner.Left).Payload.(tree.FunctionCallPayload)
	if !ok || eventCall.Name != "event" {
		t.Fatalf("innermost left operand = %+v, want an event() call", a.Get(inner.Left))
	}
	cmp, ok := a.Get(inner.Right).Payload.(tree.ExpressionPayload)
	if !ok || cmp.Operator != tree.OpEq {
		t.Fatalf("inner right operand = %+v, want an OpEq comparison", a.Get(inner.Right))
	}
	bv, ok := a.Get(cmp.Right).Payload.(tree.BitValuePayload)
	if !ok || bv.Value != tree.Bit1 {
		t.Fatalf("comparison bit = %+v, want Bit1", bv)
	}

	lastCmp, ok := a.Get(top.Right).Payload.(tree.ExpressionPayload)
	if !ok || lastCmp.Operator != tree.OpEq {
		t.Fatalf("lowered condition's third conjunct = %+v, want an OpEq comparison", a.Get(top.Right))
	}
	lastCall, ok := a.Get(lastCmp.Left).Payload.(tree.FunctionCallPayload)
	if !ok || lastCall.Name != "last_value" {
		t.Fatalf("third conjunct's left operand = %+v, want a last_value() call", a.Get(lastCmp.Left))
	}
	lastBv, ok := a.Get(lastCmp.Right).Payload.(tree.BitValuePayload)
	if !ok || lastBv.Value != tree.Bit0 {
		t.Fatalf("last_value comparison bit = %+v, want Bit0 (dual of rising_edge's Bit1)", lastBv)
	}
}

func TestReplaceEdgeCallsFallingEdgeComparesBit0(t *testing.T) {
	a := tree.NewArena()
	clk := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "clk"})
	pa := a.New(tree.KindParameterAssign, tree.ParameterAssignPayload{Value: clk})
	a.Attach(pa, clk)
	call := a.New(tree.KindFunctionCall, tree.FunctionCallPayload{Name: "falling_edge", Parameters: tree.BList{pa}})
	a.Attach(call, pa)

	cond := a.New(tree.KindWaitStmt, tree.WaitStmtPayload{Condition: call})
	a.Attach(cond, call)

	p := newPass(t, a)
	p.replaceEdgeCalls(cond)

	wp := a.Get(cond).Payload.(tree.WaitStmtPayload)
	top := a.Get(wp.Condition).Payload.(tree.ExpressionPayload)
	inner := a.Get(top.Left).Payload.(tree.ExpressionPayload)
	cmp := a.Get(inner.Right).Payload.(tree.ExpressionPayload)
	bv := a.Get(cmp.Right).Payload.(tree.BitValuePayload)
	if bv.Value != tree.Bit0 {
		t.Fatalf("falling_edge comparison bit = %v, want Bit0", bv.Value)
	}

	lastCmp := a.Get(top.Right).Payload.(tree.ExpressionPayload)
	lastBv := a.Get(lastCmp.Right).Payload.(tree.BitValuePayload)
	if lastBv.Value != tree.Bit1 {
		t.Fatalf("falling_edge last_value comparison bit = %v, want Bit1 (dual of Bit0)", lastBv.Value)
	}
}
