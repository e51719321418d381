package rewrite

import (
	"testing"

	"hifcore/internal/tree"
)

func TestWalkVisitsChildrenBeforeParent(t *testing.T) {
	a := tree.NewArena()
	left := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 1})
	right := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 2})
	expr := a.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpPlus, Left: left, Right: right})
	a.Attach(expr, left)
	a.Attach(expr, right)

	var order []tree.Kind
	v := New()
	v.On(tree.KindIntValue, func(a *tree.Arena, n tree.NodeID) Status {
		order = append(order, a.Get(n).Kind)
		return Continue
	})
	v.On(tree.KindExpression, func(a *tree.Arena, n tree.NodeID) Status {
		order = append(order, a.Get(n).Kind)
		return Continue
	})

	v.Walk(a, expr)

	if len(order) != 3 {
		t.Fatalf("visited %d nodes, want 3", len(order))
	}
	if order[2] != tree.KindExpression {
		t.Fatalf("expression should be visited last (post-order), got order %v", order)
	}
}

func TestTrashFlushRemovesQueuedNodes(t *testing.T) {
	a := tree.NewArena()
	parent := a.New(tree.KindExpression, tree.ExpressionPayload{})
	child := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 7})
	a.Attach(parent, child)

	tr := NewTrash()
	tr.Add(child)
	tr.Flush(a)

	if a.IsLive(child) {
		t.Fatalf("child should have been removed by Trash.Flush")
	}
}

func TestUnregisteredKindLeftUntouched(t *testing.T) {
	a := tree.NewArena()
	n := a.New(tree.KindBoolValue, tree.BoolValuePayload{Value: true})
	v := New()
	status := v.Walk(a, n)
	if status != Continue {
		t.Fatalf("unregistered kind should report Continue, got %v", status)
	}
	if !a.IsLive(n) {
		t.Fatalf("unregistered kind node should remain live")
	}
}
