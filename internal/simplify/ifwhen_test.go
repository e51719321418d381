package simplify

import (
	"testing"

	"hifcore/internal/tree"
)

func buildIfReturningInt(a *tree.Arena, cond tree.NodeID, altValue, defaultValue int64) tree.NodeID {
	retAlt := a.New(tree.KindReturnStmt, tree.ReturnStmtPayload{Value: a.New(tree.KindIntValue, tree.IntValuePayload{Value: altValue})})
	attachPayloadChildren(a, retAlt)
	ifAlt := a.New(tree.KindIfAlt, tree.IfAltPayload{Condition: cond, Body: tree.BList{retAlt}})
	a.Attach(ifAlt, cond)
	a.Attach(ifAlt, retAlt)

	retDef := a.New(tree.KindReturnStmt, tree.ReturnStmtPayload{Value: a.New(tree.KindIntValue, tree.IntValuePayload{Value: defaultValue})})
	attachPayloadChildren(a, retDef)

	ifStmt := a.New(tree.KindIfStmt, tree.IfStmtPayload{Alts: tree.BList{ifAlt}, Default: tree.BList{retDef}})
	a.Attach(ifStmt, ifAlt)
	a.Attach(ifStmt, retDef)
	return ifStmt
}

func TestTransformIfToWhenBuildsMatchingAlts(t *testing.T) {
	a := tree.NewArena()
	cond := a.New(tree.KindBoolValue, tree.BoolValuePayload{Value: true})
	ifStmt := buildIfReturningInt(a, cond, 1, 2)

	when, ok := TransformIfToWhen(a, ifStmt)
	if !ok {
		t.Fatalf("TransformIfToWhen: ok = false")
	}
	wp := a.Get(when).Payload.(tree.WhenExprPayload)
	if len(wp.Alts) != 1 {
		t.Fatalf("len(Alts) = %d, want 1", len(wp.Alts))
	}
	wa := a.Get(wp.Alts[0]).Payload.(tree.WhenExprAltPayload)
	if v := a.Get(wa.Value).Payload.(tree.IntValuePayload).Value; v != 1 {
		t.Fatalf("alt value = %d, want 1", v)
	}
	if wp.Default == tree.NilNode {
		t.Fatalf("Default = NilNode, want a cloned Return value")
	}
	if v := a.Get(wp.Default).Payload.(tree.IntValuePayload).Value; v != 2 {
		t.Fatalf("default value = %d, want 2", v)
	}
	// Clones, not shares: mutating the When's operands must not alter ifStmt's.
	if wa.Value == a.Get(a.Get(a.Get(ifStmt).Payload.(tree.IfStmtPayload).Alts[0]).Payload.(tree.IfAltPayload).Body[0]).Payload.(tree.ReturnStmtPayload).Value {
		t.Fatalf("alt value was not cloned")
	}
}

func TestTransformIfToWhenRejectsMultiActionBranch(t *testing.T) {
	a := tree.NewArena()
	cond := a.New(tree.KindBoolValue, tree.BoolValuePayload{Value: true})
	ret := a.New(tree.KindReturnStmt, tree.ReturnStmtPayload{Value: a.New(tree.KindIntValue, tree.IntValuePayload{Value: 1})})
	attachPayloadChildren(a, ret)
	other := a.New(tree.KindBreakStmt, tree.BreakStmtPayload{})
	ifAlt := a.New(tree.KindIfAlt, tree.IfAltPayload{Condition: cond, Body: tree.BList{ret, other}})
	a.Attach(ifAlt, cond)
	a.Attach(ifAlt, ret)
	a.Attach(ifAlt, other)
	ifStmt := a.New(tree.KindIfStmt, tree.IfStmtPayload{Alts: tree.BList{ifAlt}})
	a.Attach(ifStmt, ifAlt)

	if _, ok := TransformIfToWhen(a, ifStmt); ok {
		t.Fatalf("TransformIfToWhen: ok = true, want false for a multi-action branch")
	}
}

func TestTransformWhenToIfFromAssignSource(t *testing.T) {
	a := tree.NewArena()
	cond := a.New(tree.KindBoolValue, tree.BoolValuePayload{Value: true})
	val1 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 1})
	wa := a.New(tree.KindWhenExprAlt, tree.WhenExprAltPayload{Condition: cond, Value: val1})
	a.Attach(wa, cond)
	a.Attach(wa, val1)
	defVal := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 0})
	when := a.New(tree.KindWhenExpr, tree.WhenExprPayload{Alts: tree.BList{wa}, Default: defVal})
	a.Attach(when, wa)
	a.Attach(when, defVal)

	target := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "out"})
	assign := a.New(tree.KindAssign, tree.AssignPayload{Target: target, Source: when})
	a.Attach(assign, target)
	a.Attach(assign, when)

	ifStmt, ok := TransformWhenToIf(a, when)
	if !ok {
		t.Fatalf("TransformWhenToIf: ok = false")
	}
	ip := a.Get(ifStmt).Payload.(tree.IfStmtPayload)
	if len(ip.Alts) != 1 {
		t.Fatalf("len(Alts) = %d, want 1", len(ip.Alts))
	}
	alt := a.Get(ip.Alts[0]).Payload.(tree.IfAltPayload)
	if len(alt.Body) != 1 {
		t.Fatalf("len(Body) = %d, want 1", len(alt.Body))
	}
	assignCopy := a.Get(alt.Body[0]).Payload.(tree.AssignPayload)
	if a.Get(assignCopy.Source).Payload.(tree.IntValuePayload).Value != 1 {
		t.Fatalf("alt action's source was not the alt's value")
	}
	if len(ip.Default) != 1 {
		t.Fatalf("len(Default) = %d, want 1", len(ip.Default))
	}
}

func TestTransformWhenToIfRejectsUnsupportedParent(t *testing.T) {
	a := tree.NewArena()
	val1 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 1})
	wa := a.New(tree.KindWhenExprAlt, tree.WhenExprAltPayload{Value: val1})
	a.Attach(wa, val1)
	when := a.New(tree.KindWhenExpr, tree.WhenExprPayload{Alts: tree.BList{wa}})
	a.Attach(when, wa)

	paramAssign := a.New(tree.KindParameterAssign, tree.ParameterAssignPayload{Value: when})
	a.Attach(paramAssign, when)

	if _, ok := TransformWhenToIf(a, when); ok {
		t.Fatalf("TransformWhenToIf: ok = true, want false for a ParameterAssign parent")
	}
}
