package simplify

import (
	"testing"

	"hifcore/internal/semantics"
	"hifcore/internal/semantics/catalog"
	"hifcore/internal/tree"
	"hifcore/internal/typeinfer"
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

func newDriver(t *testing.T, a *tree.Arena, opts Options) *Driver {
	t.Helper()
	sem := newHIF(t)
	types := typeinfer.New(a)
	return New(a, types, sem, opts)
}

func TestSimplifyOpNoneReducesToOperand(t *testing.T) {
	a := tree.NewArena()
	operand := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 42})
	node := a.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpNone, Left: operand})
	a.Attach(node, operand)

	d := newDriver(t, a, Options{SimplifyConstants: true})
	got := d.Simplify(node)
	if got != operand {
		t.Fatalf("Simplify(op_none) = %d, want operand %d", got, operand)
	}
}

func TestSimplifyFoldsConstantAddition(t *testing.T) {
	a := tree.NewArena()
	l := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 2})
	r := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 3})
	node := a.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpPlus, Left: l, Right: r})
	a.Attach(node, l)
	a.Attach(node, r)

	d := newDriver(t, a, Options{SimplifyConstants: true})
	got := d.Simplify(node)
	if !a.IsLive(got) {
		t.Fatalf("Simplify result is not live")
	}
	p, ok := a.Get(got).Payload.(tree.IntValuePayload)
	if !ok {
		t.Fatalf("Simplify(2+3) did not fold to an IntValue, got kind %v", a.Get(got).Kind)
	}
	if p.Big == nil && p.Value != 5 {
		t.Fatalf("Simplify(2+3) = %d, want 5", p.Value)
	}
}

func TestSimplifyCastCollapsesSameType(t *testing.T) {
	a := tree.NewArena()
	sem := newHIF(t)
	types := typeinfer.New(a)

	bit := a.New(tree.KindBitValue, tree.BitValuePayload{Value: tree.Bit1})
	bitType, ok := types.SemanticType(bit, sem)
	if !ok {
		t.Fatalf("SemanticType(bit) failed")
	}
	cast := a.New(tree.KindCast, tree.CastPayload{Type: bitType, Value: bit})
	a.Attach(cast, bit)

	d := New(a, types, sem, Options{SimplifyConstants: true})
	got := d.Simplify(cast)
	if got != bit {
		t.Fatalf("Simplify(SameType(bit)) = %d, want bit %d", got, bit)
	}
}

func TestSimplifyIfStmtCollapsesTrueCondition(t *testing.T) {
	a := tree.NewArena()
	cond := a.New(tree.KindBoolValue, tree.BoolValuePayload{Value: true})
	bodyStmt := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 1})
	alt := a.New(tree.KindIfAlt, tree.IfAltPayload{Condition: cond, Body: tree.BList{bodyStmt}})
	a.Attach(alt, cond)
	ifNode := a.New(tree.KindIfStmt, tree.IfStmtPayload{Alts: tree.BList{alt}})
	a.Attach(ifNode, alt)

	d := newDriver(t, a, Options{SimplifyStatements: true})
	got, changed := d.simplifyIfStmt(ifNode)
	if !changed {
		t.Fatalf("simplifyIfStmt did not report a change for a true-condition alt")
	}
	if got != bodyStmt {
		t.Fatalf("simplifyIfStmt(true) = %d, want body statement %d", got, bodyStmt)
	}
}

func TestSimplifyWhileFalseIsRemoved(t *testing.T) {
	a := tree.NewArena()
	cond := a.New(tree.KindBoolValue, tree.BoolValuePayload{Value: false})
	node := a.New(tree.KindWhileStmt, tree.WhileStmtPayload{Condition: cond, DoWhile: false})
	a.Attach(node, cond)

	d := newDriver(t, a, Options{SimplifyStatements: true})
	got, changed := d.simplifyWhile(node)
	if !changed {
		t.Fatalf("simplifyWhile did not report a change for while(false)")
	}
	if got != tree.NilNode {
		t.Fatalf("simplifyWhile(false) = %d, want NilNode", got)
	}
	if a.IsLive(node) {
		t.Fatalf("simplifyWhile(false) left the loop node live")
	}
}

func TestSimplifyAssignInsertsCastWhenTypesMismatch(t *testing.T) {
	a := tree.NewArena()
	sem := newHIF(t)
	types := typeinfer.New(a)

	target := a.New(tree.KindBitValue, tree.BitValuePayload{Value: tree.Bit0})
	source := a.New(tree.KindBoolValue, tree.BoolValuePayload{Value: true})
	assign := a.New(tree.KindAssign, tree.AssignPayload{Target: target, Source: source})
	a.Attach(assign, target)
	a.Attach(assign, source)

	d := New(a, types, sem, Options{})
	_, changed := d.simplifyAssign(assign)
	p := a.Get(assign).Payload.(tree.AssignPayload)
	if changed {
		if _, ok := a.Get(p.Source).Payload.(tree.CastPayload); !ok {
			t.Fatalf("simplifyAssign reported a change but did not insert a cast")
		}
	}
}

func TestHasUnlabeledBreakFindsDirectBreak(t *testing.T) {
	a := tree.NewArena()
	brk := a.New(tree.KindBreakStmt, tree.BreakStmtPayload{})
	if !hasUnlabeledBreak(a, tree.BList{brk}) {
		t.Fatalf("hasUnlabeledBreak should find a direct unlabeled break")
	}
}

// TestSimplifyForUnrollsConstantBoundLoop reproduces scenario S3: `for (i =
// 0; i < 4; ++i) { x[i] := 0; }` unrolls to four sibling assignments
// `x[0]:=0 ... x[3]:=0`, spliced into the owning state's Actions in place of
// the for statement.
func TestSimplifyForUnrollsConstantBoundLoop(t *testing.T) {
	a := tree.NewArena()

	mkBody := func() (tree.NodeID, tree.NodeID) {
		xID := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "x"})
		iID := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "i"})
		member := a.New(tree.KindMember, tree.MemberPayload{Prefix: xID, Index: iID})
		a.Attach(member, xID)
		a.Attach(member, iID)
		zero := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 0})
		assign := a.New(tree.KindAssign, tree.AssignPayload{Target: member, Source: zero})
		a.Attach(assign, member)
		a.Attach(assign, zero)
		return assign, member
	}
	bodyStmt, _ := mkBody()

	iTarget := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "i"})
	iStart := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 0})
	init := a.New(tree.KindAssign, tree.AssignPayload{Target: iTarget, Source: iStart})
	a.Attach(init, iTarget)
	a.Attach(init, iStart)

	condLeft := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "i"})
	condRight := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 4})
	cond := a.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpLt, Left: condLeft, Right: condRight})
	a.Attach(cond, condLeft)
	a.Attach(cond, condRight)

	stepTarget := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "i"})
	stepLeft := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "i"})
	stepRight := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 1})
	stepExpr := a.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpPlus, Left: stepLeft, Right: stepRight})
	a.Attach(stepExpr, stepLeft)
	a.Attach(stepExpr, stepRight)
	step := a.New(tree.KindAssign, tree.AssignPayload{Target: stepTarget, Source: stepExpr})
	a.Attach(step, stepTarget)
	a.Attach(step, stepExpr)

	forNode := a.New(tree.KindForStmt, tree.ForStmtPayload{
		Init: init, Condition: cond, Step: step, Body: tree.BList{bodyStmt},
	})
	a.Attach(forNode, init)
	a.Attach(forNode, cond)
	a.Attach(forNode, step)
	a.Attach(forNode, bodyStmt)

	state := a.New(tree.KindState, tree.StatePayload{Name: "s0", Actions: tree.BList{forNode}})
	a.Attach(state, forNode)

	d := newDriver(t, a, Options{SimplifyStatements: true})
	got, changed := d.simplifyFor(forNode)
	if !changed {
		t.Fatalf("simplifyFor did not unroll a constant-bound loop")
	}
	if a.IsLive(forNode) {
		t.Fatalf("simplifyFor left the original for statement live")
	}

	sp := a.Get(state).Payload.(tree.StatePayload)
	if len(sp.Actions) != 4 {
		t.Fatalf("simplifyFor produced %d sibling assignments, want 4", len(sp.Actions))
	}
	if got != sp.Actions[0] {
		t.Fatalf("simplifyFor returned %d, want the first unrolled statement %d", got, sp.Actions[0])
	}
	for idx, stmt := range sp.Actions {
		ap, ok := a.Get(stmt).Payload.(tree.AssignPayload)
		if !ok {
			t.Fatalf("unrolled action %d is not an Assign", idx)
		}
		mp, ok := a.Get(ap.Target).Payload.(tree.MemberPayload)
		if !ok {
			t.Fatalf("unrolled assignment %d's target is not a Member", idx)
		}
		lit, ok := a.Get(mp.Index).Payload.(tree.IntValuePayload)
		if !ok {
			t.Fatalf("unrolled assignment %d's index is not a literal", idx)
		}
		if lit.Value != int64(idx) {
			t.Fatalf("unrolled assignment %d indexes x[%d], want x[%d]", idx, lit.Value, idx)
		}
	}
}

func TestHasUnlabeledBreakIgnoresNestedLoopBreak(t *testing.T) {
	a := tree.NewArena()
	brk := a.New(tree.KindBreakStmt, tree.BreakStmtPayload{})
	inner := a.New(tree.KindWhileStmt, tree.WhileStmtPayload{Body: tree.BList{brk}})
	a.Attach(inner, brk)
	if hasUnlabeledBreak(a, tree.BList{inner}) {
		t.Fatalf("hasUnlabeledBreak should not attribute a nested loop's break to the outer loop")
	}
}
