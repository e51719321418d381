package tree

import "testing"

func TestCloneIdentifierIsFreshNode(t *testing.T) {
	a := NewArena()
	orig := a.New(KindIdentifier, IdentifierPayload{Name: "x"})
	clone := a.Clone(orig)
	if clone == orig {
		t.Fatalf("Clone returned the original node id")
	}
	if clone == NilNode {
		t.Fatalf("Clone of a live Identifier returned NilNode")
	}
	cp := a.Get(clone).Payload.(IdentifierPayload)
	if cp.Name != "x" {
		t.Fatalf("cloned identifier name = %q, want %q", cp.Name, "x")
	}
	if a.Get(clone).Parent != NilNode {
		t.Fatalf("Clone returned an already-attached node")
	}
}

func TestCloneExpressionDeepCopiesOperands(t *testing.T) {
	a := NewArena()
	left := a.New(KindIntValue, IntValuePayload{Value: 1})
	right := a.New(KindIntValue, IntValuePayload{Value: 2})
	expr := a.New(KindExpression, ExpressionPayload{Operator: OpPlus, Left: left, Right: right})
	a.Attach(expr, left)
	a.Attach(expr, right)

	clone := a.Clone(expr)
	cp := a.Get(clone).Payload.(ExpressionPayload)
	if cp.Left == left || cp.Right == right {
		t.Fatalf("cloned expression shares operand ids with the original")
	}
	if a.Get(cp.Left).Parent != clone || a.Get(cp.Right).Parent != clone {
		t.Fatalf("cloned operands are not attached under the clone")
	}
	lv := a.Get(cp.Left).Payload.(IntValuePayload)
	rv := a.Get(cp.Right).Payload.(IntValuePayload)
	if lv.Value != 1 || rv.Value != 2 {
		t.Fatalf("cloned operand values = %d, %d, want 1, 2", lv.Value, rv.Value)
	}

	// Mutating the clone's operand must not affect the original.
	lv.Value = 99
	a.Get(cp.Left).Payload = lv
	orig := a.Get(left).Payload.(IntValuePayload)
	if orig.Value != 1 {
		t.Fatalf("mutating the clone's operand changed the original: %d", orig.Value)
	}
}

func TestCloneStateTableDeepCopiesStatesAndSensitivity(t *testing.T) {
	a := NewArena()
	sens := a.New(KindIdentifier, IdentifierPayload{Name: "clk"})
	target := a.New(KindIdentifier, IdentifierPayload{Name: "out"})
	source := a.New(KindBoolValue, BoolValuePayload{Value: true})
	assign := a.New(KindAssign, AssignPayload{Target: target, Source: source})
	a.Attach(assign, target)
	a.Attach(assign, source)
	state := a.New(KindState, StatePayload{Name: "s0", Actions: BList{assign}})
	a.Attach(state, assign)
	st := a.New(KindStateTable, StateTablePayload{Name: "st", Sensitivity: []NodeID{sens}, States: BList{state}})
	a.Attach(st, sens)
	a.Attach(st, state)

	clone := a.Clone(st)
	cp := a.Get(clone).Payload.(StateTablePayload)
	if len(cp.Sensitivity) != 1 || cp.Sensitivity[0] == sens {
		t.Fatalf("cloned sensitivity list was not deep-copied: %v", cp.Sensitivity)
	}
	if len(cp.States) != 1 || cp.States[0] == state {
		t.Fatalf("cloned state list was not deep-copied: %v", cp.States)
	}
	clonedState := a.Get(cp.States[0]).Payload.(StatePayload)
	if len(clonedState.Actions) != 1 || clonedState.Actions[0] == assign {
		t.Fatalf("cloned state's actions were not deep-copied: %v", clonedState.Actions)
	}
	clonedAssign := a.Get(clonedState.Actions[0]).Payload.(AssignPayload)
	if clonedAssign.Target == target || clonedAssign.Source == source {
		t.Fatalf("cloned assign shares operand ids with the original")
	}
}

func TestCloneOfWholeProgramContainerReturnsNilNode(t *testing.T) {
	a := NewArena()
	sys := a.New(KindSystem, SystemPayload{})
	if clone := a.Clone(sys); clone != NilNode {
		t.Fatalf("Clone(System) = %d, want NilNode", clone)
	}
}

func TestCloneOfDeadNodeReturnsNilNode(t *testing.T) {
	a := NewArena()
	n := a.New(KindIdentifier, IdentifierPayload{Name: "x"})
	a.Remove(n)
	a.Flush()
	if clone := a.Clone(n); clone != NilNode {
		t.Fatalf("Clone(dead node) = %d, want NilNode", clone)
	}
}
