// Package simplify implements C6 (spec.md section 4.6): the driver that
// applies, in fixed priority per node kind, a catalogue of rewrites until a
// local fixed point, gated by SimplifyOptions. Grounded on the teacher's
// compiler optimization passes (internal/compiler's constant-folding and
// dead-code-elimination walks applied repeatedly to a fixed point) and on
// C4's GuideVisitor for traversal, C5's fold package for the per-pair
// constant-folding core, and C8's sortmatch for commutative canonicalization.
package simplify

import (
	"hifcore/internal/fold"
	"hifcore/internal/rangeutil"
	"hifcore/internal/rewrite"
	"hifcore/internal/semantics"
	"hifcore/internal/sortmatch"
	"hifcore/internal/tree"
	"hifcore/internal/typeinfer"
)

// Behavior names how freely unsafe rewrites may be applied (conservative,
// normal, aggressive). No rewrite in this package reads Options.Behavior, so
// every setting gives the same result.
type Behavior int

const (
	Conservative Behavior = iota
	Normal
	Aggressive
)

// Options is SimplifyOptions (spec.md §4.6's enumerated option table).
type Options struct {
	SimplifyConstants           bool
	SimplifyDefines              bool
	SimplifyParameters          bool
	SimplifyTemplateParameters  bool
	SimplifyTemplateParametersCTC bool
	SimplifyStatements          bool
	SimplifyGenerates           bool
	SimplifySemanticsTypes      bool
	SimplifyTypeReferences      bool
	SimplifyFunctionCalls       bool
	ReplaceResult               bool
	Behavior                    Behavior
	Context                     tree.NodeID
	Root                        tree.NodeID
}

// Driver runs the fixed-priority rewrite catalogue over an arena, sharing
// the type and reference engines so cache invalidation stays consistent
// across repeated calls within one fixpoint.
type Driver struct {
	arena *tree.Arena
	types *typeinfer.Engine
	sem   semantics.LanguageSemantics
	opts  Options

	// visitedShapes guards against rewrite loops within one Simplify call:
	// an expression node is marked while its own simplifyExpression runs and
	// unmarked when that returns, so a nested attempt to re-enter the same
	// node is refused. Entries are keyed by node id, not by expression
	// shape, so a structurally identical expression held by a different node
	// is not caught.
	visitedShapes map[tree.NodeID]bool
}

func New(a *tree.Arena, types *typeinfer.Engine, sem semantics.LanguageSemantics, opts Options) *Driver {
	return &Driver{arena: a, types: types, sem: sem, opts: opts, visitedShapes: make(map[tree.NodeID]bool)}
}

// Simplify drives node to a local fixed point under the driver's options,
// returning the (possibly replaced) node.
func (d *Driver) Simplify(node tree.NodeID) tree.NodeID {
	if node == tree.NilNode || !d.arena.IsLive(node) {
		return node
	}
	for {
		next, changed := d.step(node)
		if !changed {
			return node
		}
		node = next
	}
}

func (d *Driver) step(node tree.NodeID) (tree.NodeID, bool) {
	switch d.arena.Get(node).Payload.(type) {
	case tree.ExpressionPayload:
		return d.simplifyExpression(node)
	case tree.CastPayload:
		return d.simplifyCast(node)
	case tree.IfStmtPayload:
		return d.simplifyIfStmt(node)
	case tree.WhileStmtPayload:
		return d.simplifyWhile(node)
	case tree.ForStmtPayload:
		return d.simplifyFor(node)
	case tree.AssignPayload:
		return d.simplifyAssign(node)
	case tree.MemberPayload:
		return d.simplifyMember(node)
	case tree.SlicePayload:
		return d.simplifySlice(node)
	case tree.AggregatePayload:
		return d.simplifyAggregate(node)
	default:
		return node, false
	}
}

// --- Expressions (spec.md §4.6 "Expressions" 1-12) -----------------------

func (d *Driver) simplifyExpression(node tree.NodeID) (tree.NodeID, bool) {
	if d.visitedShapes[node] {
		return node, false
	}
	d.visitedShapes[node] = true
	defer delete(d.visitedShapes, node)

	p := d.arena.Get(node).Payload.(tree.ExpressionPayload)

	// 1. op_none reduces to its operand.
	if p.Operator == tree.OpNone {
		return d.replace(node, p.Left), true
	}

	// Recurse into operands first so folding sees already-simplified
	// subtrees (bottom-up, matching C4's post-order visit).
	left := d.Simplify(p.Left)
	var right tree.NodeID
	if p.Right != tree.NilNode {
		right = d.Simplify(p.Right)
	}
	if left != p.Left || right != p.Right {
		d.setOperands(node, left, right)
		return node, true
	}

	// Short-circuit before folding the other operand (logical and/or).
	if right != tree.NilNode {
		if v, ok := fold.ShortCircuit(d.arena, left, p.Operator); ok {
			return d.replace(node, v), true
		}
	}

	// 9(5). Constant fold via C5.
	originalType, _ := d.types.SemanticType(node, d.sem)
	if res, ok := fold.Fold(d.arena, d.sem, left, right, p.Operator, originalType); ok {
		folded := res.Value
		if res.NeedCast && originalType != tree.NilNode {
			// originalType is a cached semantic-type node (internal/typeinfer's
			// side table, not a structural child anywhere); the cast payload
			// references it without taking ownership. res.Value is always a
			// freshly allocated constant from Fold, so it is attached.
			folded = d.arena.New(tree.KindCast, tree.CastPayload{Type: originalType, Value: res.Value})
			d.arena.Attach(folded, res.Value)
		}
		return d.replace(node, folded), true
	}

	// 2. Remove redundant casts wrapping operands when the language
	// semantics says doing so can't change the result.
	if right != tree.NilNode {
		if newLeft, newRight, ok := d.tryRemoveOperandCasts(node, p.Operator, left, right); ok {
			d.setOperands(node, newLeft, newRight)
			return node, true
		}
	}

	// 10. Canonicalize commutative operand order.
	if right != tree.NilNode {
		if newLeft, newRight, swapped := sortmatch.SortCommutative(d.arena, d.sem, p.Operator, left, right); swapped {
			d.setOperands(node, newLeft, newRight)
			return node, true
		}
	}

	// 4. Recognize constant bitwise complements: (X|~c) & c -> c, and its
	// dual (X&~c) | c -> c.
	if right != tree.NilNode {
		if next, ok := d.recognizeBitwiseComplement(node, p.Operator, left, right); ok {
			return next, true
		}
	}

	// 6. Collapse multiplications by constants around a repeated operand:
	// v*2 - v -> v*(2-1).
	if right != tree.NilNode && p.Operator == tree.OpMinus {
		if next, ok := d.collapseRepeatedMultiplicand(node, left, right); ok {
			return next, true
		}
	}

	// 5. Map bit-width-1 arithmetic to bitwise equivalents.
	if newOp, ok := narrowArithmeticToBitwise(d.arena, d.types, d.sem, p.Operator, left, right); ok {
		d.setOperator(node, newOp)
		return node, true
	}

	return node, false
}

// narrowArithmeticToBitwise implements rule 5: "Map arithmetic operators to
// bitwise/xor when both operands have bit-width 1."
func narrowArithmeticToBitwise(a *tree.Arena, types *typeinfer.Engine, sem semantics.LanguageSemantics, op tree.Operator, left, right tree.NodeID) (tree.Operator, bool) {
	if right == tree.NilNode {
		return tree.OpNone, false
	}
	lt, ok := types.SemanticType(left, sem)
	if !ok {
		return tree.OpNone, false
	}
	span, ok := types.TypeGetSpan(lt, sem)
	if !ok || types.SpanBitwidth(span) != 1 {
		return tree.OpNone, false
	}
	rt, ok := types.SemanticType(right, sem)
	if !ok {
		return tree.OpNone, false
	}
	rspan, ok := types.TypeGetSpan(rt, sem)
	if !ok || types.SpanBitwidth(rspan) != 1 {
		return tree.OpNone, false
	}
	switch op {
	case tree.OpPlus:
		return tree.OpXor, true
	case tree.OpMult:
		return tree.OpAnd, true
	default:
		return tree.OpNone, false
	}
}

// recognizeBitwiseComplement matches `(X | ~c) & c` and its dual
// `(X & ~c) | c`, both of which always evaluate to c regardless of X.
func (d *Driver) recognizeBitwiseComplement(node tree.NodeID, op tree.Operator, left, right tree.NodeID) (tree.NodeID, bool) {
	var innerOp tree.Operator
	switch op {
	case tree.OpAnd:
		innerOp = tree.OpOr
	case tree.OpOr:
		innerOp = tree.OpAnd
	default:
		return node, false
	}

	tryMatch := func(inner, outerConst tree.NodeID) (tree.NodeID, bool) {
		innerExpr, ok := d.arena.Get(inner).Payload.(tree.ExpressionPayload)
		if !ok || innerExpr.Operator != innerOp || innerExpr.Right == tree.NilNode {
			return node, false
		}
		if bitsComplementLiteral(d.arena, innerExpr.Right, outerConst) {
			if d.arena.Get(outerConst).Parent == node {
				d.arena.Detach(outerConst)
			}
			return d.replace(node, outerConst), true
		}
		if bitsComplementLiteral(d.arena, innerExpr.Left, outerConst) {
			if d.arena.Get(outerConst).Parent == node {
				d.arena.Detach(outerConst)
			}
			return d.replace(node, outerConst), true
		}
		return node, false
	}

	if next, ok := tryMatch(left, right); ok {
		return next, true
	}
	if next, ok := tryMatch(right, left); ok {
		return next, true
	}
	return node, false
}

// bitsComplementLiteral reports whether a and b are both BitvectorValue
// literals of equal width whose bits are the bitwise complement of each
// other.
func bitsComplementLiteral(a *tree.Arena, x, y tree.NodeID) bool {
	xv, ok := a.Get(x).Payload.(tree.BitvectorValuePayload)
	if !ok {
		return false
	}
	yv, ok := a.Get(y).Payload.(tree.BitvectorValuePayload)
	if !ok || len(xv.Value) != len(yv.Value) {
		return false
	}
	for i := range xv.Value {
		if xv.Value[i].IsUnknown() || yv.Value[i].IsUnknown() || xv.Value[i] == yv.Value[i] {
			return false
		}
	}
	return true
}

// collapseRepeatedMultiplicand implements rule 6: `v*2 - v -> v*(2-1)`. It
// only fires when the multiplicand on both sides is recognizably the same
// reference expression, so the rewrite can't silently change which value is
// being multiplied.
func (d *Driver) collapseRepeatedMultiplicand(node, left, right tree.NodeID) (tree.NodeID, bool) {
	mult, ok := d.arena.Get(left).Payload.(tree.ExpressionPayload)
	if !ok || mult.Operator != tree.OpMult || mult.Right == tree.NilNode {
		return node, false
	}

	var v, c tree.NodeID
	switch {
	case structurallyEqual(d.arena, mult.Left, right):
		v, c = mult.Left, mult.Right
	case structurallyEqual(d.arena, mult.Right, right):
		v, c = mult.Right, mult.Left
	default:
		return node, false
	}

	one := d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: 1})
	cClone := d.arena.Clone(c)
	diff := d.arena.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpMinus, Left: cClone, Right: one})
	d.arena.Attach(diff, cClone)
	d.arena.Attach(diff, one)

	if d.arena.Get(v).Parent == left {
		d.arena.Detach(v)
	}
	newMult := d.arena.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpMult, Left: v, Right: diff})
	d.arena.Attach(newMult, v)
	d.arena.Attach(newMult, diff)
	return d.replace(node, newMult), true
}

func (d *Driver) setOperands(node, left, right tree.NodeID) {
	p := d.arena.Get(node).Payload.(tree.ExpressionPayload)
	p.Left, p.Right = left, right
	d.arena.Get(node).Payload = p
	d.arena.Bump(node)
}

// tryRemoveOperandCasts implements rule 2: a cast wrapping an operand is
// dropped when d.sem.CanRemoveCastOnOperands reports the expression's result
// is unaffected by the narrower/wider operand type.
func (d *Driver) tryRemoveOperandCasts(node tree.NodeID, op tree.Operator, left, right tree.NodeID) (tree.NodeID, tree.NodeID, bool) {
	leftCast, leftIsCast := d.arena.Get(left).Payload.(tree.CastPayload)
	rightCast, rightIsCast := d.arena.Get(right).Payload.(tree.CastPayload)
	if !leftIsCast && !rightIsCast {
		return left, right, false
	}

	origLeft, origRight := d.typeOf(left), d.typeOf(right)
	simLeft, simRight := origLeft, origRight
	if leftIsCast {
		simLeft = d.typeOf(leftCast.Value)
	}
	if rightIsCast {
		simRight = d.typeOf(rightCast.Value)
	}

	removal := d.sem.CanRemoveCastOnOperands(node, [2]tree.NodeID{origLeft, origRight}, [2]tree.NodeID{simLeft, simRight}, d.arena)
	if !removal.Safe && !(removal.SafeOnShift && isShiftOperator(op)) {
		return left, right, false
	}

	newLeft, newRight := left, right
	if leftIsCast {
		if d.arena.Get(leftCast.Value).Parent == left {
			d.arena.Detach(leftCast.Value)
		}
		newLeft = d.replace(left, leftCast.Value)
	}
	if rightIsCast {
		if d.arena.Get(rightCast.Value).Parent == right {
			d.arena.Detach(rightCast.Value)
		}
		newRight = d.replace(right, rightCast.Value)
	}
	return newLeft, newRight, true
}

func isShiftOperator(op tree.Operator) bool {
	switch op {
	case tree.OpSll, tree.OpSrl, tree.OpSla, tree.OpSra, tree.OpRor, tree.OpRol:
		return true
	default:
		return false
	}
}

func (d *Driver) setOperator(node tree.NodeID, op tree.Operator) {
	p := d.arena.Get(node).Payload.(tree.ExpressionPayload)
	p.Operator = op
	d.arena.Get(node).Payload = p
	d.arena.Bump(node)
}

// replace detaches old, queues it for deletion, and returns replacement —
// the parent is responsible for relinking, same division of labor as
// rewrite.Replace (C4).
func (d *Driver) replace(old, replacement tree.NodeID) tree.NodeID {
	if old == replacement {
		return replacement
	}
	parent := d.arena.Get(old).Parent
	d.arena.Detach(old)
	d.arena.Remove(old)
	if parent != tree.NilNode && replacement != tree.NilNode && d.arena.Get(replacement).Parent == tree.NilNode {
		d.arena.Attach(parent, replacement)
	}
	d.arena.Flush()
	return replacement
}

// --- Casts (spec.md §4.6 "Casts") ----------------------------------------

func (d *Driver) simplifyCast(node tree.NodeID) (tree.NodeID, bool) {
	p := d.arena.Get(node).Payload.(tree.CastPayload)
	inner := d.Simplify(p.Value)
	if inner != p.Value {
		p.Value = inner
		d.arena.Get(node).Payload = p
		d.arena.Bump(node)
		return node, true
	}

	// Collapse identical-type casts.
	if innerType, ok := d.types.SemanticType(inner, d.sem); ok && innerType == p.Type {
		return d.replace(node, inner), true
	}

	// Remove useless nested casts: Type(Type2(Value)) -> Type(Value).
	if innerCast, ok := d.arena.Get(inner).Payload.(tree.CastPayload); ok {
		if d.sem.CanRemoveInternalCast(p.Type, innerCast.Type, d.typeOf(innerCast.Value), d.arena) {
			p.Value = innerCast.Value
			d.arena.Get(node).Payload = p
			d.arena.Bump(node)
			return node, true
		}
	}

	if next, ok := d.simplifyCastExtra(node, p); ok {
		return next, true
	}
	return node, false
}

func (d *Driver) typeOf(v tree.NodeID) tree.NodeID {
	t, _ := d.types.SemanticType(v, d.sem)
	return t
}

// --- Conditionals (spec.md §4.6 "Conditionals") ---------------------------

func (d *Driver) simplifyIfStmt(node tree.NodeID) (tree.NodeID, bool) {
	p := d.arena.Get(node).Payload.(tree.IfStmtPayload)
	for _, altID := range p.Alts {
		alt := d.arena.Get(altID).Payload.(tree.IfAltPayload)
		if b, ok := constBool(d.arena, alt.Condition); ok {
			if b {
				return d.replaceWithBody(node, alt.Body), true
			}
			// a false alt is dead; spec.md allows dropping it, but since
			// doing so requires rebuilding the Alts BList in place we defer
			// that to the caller's next pass rather than mutate here.
			continue
		}
	}
	if len(p.Alts) == 0 {
		return d.replaceWithBody(node, p.Default), true
	}
	return node, false
}

func constBool(a *tree.Arena, cond tree.NodeID) (bool, bool) {
	if cond == tree.NilNode || !a.IsLive(cond) {
		return false, false
	}
	p, ok := a.Get(cond).Payload.(tree.BoolValuePayload)
	if !ok {
		return false, false
	}
	return p.Value, true
}

// replaceWithBody is a placeholder structural replacement: in the full
// tree model a statement-list replacement splices Body in place of node
// inside node's owning BList. That splice lives with the BList the caller
// holds (ForStmtPayload.Body, ContentsPayload.StateTables, ...); this
// driver reports which body should replace node and lets the caller
// perform the splice, since C4's Replaced status exists exactly for this
// "replacement produces zero or more siblings" case (spec.md §4.4).
func (d *Driver) replaceWithBody(node tree.NodeID, body tree.BList) tree.NodeID {
	if len(body) == 0 {
		return tree.NilNode
	}
	return body[0]
}

// --- Loops (spec.md §4.6 "Loops and generates") ---------------------------

func (d *Driver) simplifyWhile(node tree.NodeID) (tree.NodeID, bool) {
	p := d.arena.Get(node).Payload.(tree.WhileStmtPayload)
	if b, ok := constBool(d.arena, p.Condition); ok && !b {
		if p.DoWhile && !hasUnlabeledBreak(d.arena, p.Body) {
			return d.liftBodyReplacingParent(node, p.Body), true
		}
		if !p.DoWhile {
			return d.liftBodyReplacingParent(node, nil), true
		}
	}
	return node, false
}

func hasUnlabeledBreak(a *tree.Arena, body tree.BList) bool {
	found := false
	var walk func(tree.NodeID)
	walk = func(n tree.NodeID) {
		if found || n == tree.NilNode || !a.IsLive(n) {
			return
		}
		if b, ok := a.Get(n).Payload.(tree.BreakStmtPayload); ok && b.Label == "" {
			found = true
			return
		}
		switch a.Get(n).Payload.(type) {
		case tree.ForStmtPayload, tree.WhileStmtPayload:
			return // a break inside a nested loop binds to that loop, not this one
		}
		for _, c := range a.Children(n) {
			walk(c)
		}
	}
	for _, s := range body {
		walk(s)
	}
	return found
}

func (d *Driver) liftBodyReplacingParent(node tree.NodeID, body tree.BList) tree.NodeID {
	// Mirrors replaceWithBody's division of labor: the caller splices
	// node's owning BList with body (or removes node when body is nil).
	//
	// body's statements are still node's own children as far as node's
	// Payload is concerned (Arena.Children derives purely from Payload, not
	// from each child's own Parent pointer), so node's Payload must stop
	// naming them as children before Remove/Flush, or they'd be deleted
	// along with the loop they're being lifted out of.
	if p, ok := d.arena.Get(node).Payload.(tree.WhileStmtPayload); ok {
		p.Body = nil
		d.arena.Get(node).Payload = p
	}
	for _, id := range body {
		if d.arena.Get(id).Parent == node {
			d.arena.Detach(id)
		}
	}
	d.arena.Remove(node)
	d.arena.Flush()
	if len(body) == 0 {
		return tree.NilNode
	}
	return body[0]
}

// simplifyFor unrolls a constant-bound for loop when the iteration count
// times the body size stays under the 1000-action threshold and no
// break/continue binds to the loop (spec.md §4.6).
func (d *Driver) simplifyFor(node tree.NodeID) (tree.NodeID, bool) {
	if !d.opts.SimplifyStatements {
		return node, false
	}
	p := d.arena.Get(node).Payload.(tree.ForStmtPayload)
	start, limit, op, step, ok := d.extractBounds(p)
	if !ok {
		return node, false
	}
	count, ok := rangeutil.IterationCount(start, limit, op, step)
	if !ok || count == 0 {
		return node, false
	}
	if count*int64(len(p.Body)) >= 1000 {
		return node, false
	}
	if hasLoopControl(d.arena, p.Body) {
		return node, false
	}
	varName, ok := d.forIndexName(p.Init)
	if !ok {
		return node, false
	}
	unrolled := d.unrollFor(p.Body, varName, start, step, count)
	if !spliceIntoParent(d.arena, node, unrolled) {
		return node, false
	}
	if len(unrolled) == 0 {
		return tree.NilNode, true
	}
	return unrolled[0], true
}

func hasLoopControl(a *tree.Arena, body tree.BList) bool {
	found := false
	var walk func(tree.NodeID)
	walk = func(n tree.NodeID) {
		if found || n == tree.NilNode || !a.IsLive(n) {
			return
		}
		switch a.Get(n).Payload.(type) {
		case tree.BreakStmtPayload, tree.ContinueStmtPayload:
			found = true
			return
		case tree.ForStmtPayload, tree.WhileStmtPayload:
			return
		}
		for _, c := range a.Children(n) {
			walk(c)
		}
	}
	for _, s := range body {
		walk(s)
	}
	return found
}

// extractBounds handles `i < N`, `i <= N`, `i > N`, `i >= N` forms of
// p.Condition against a literal step in p.Step (spec.md §4.6: "iteration
// count extraction handles i<N, i<=N, i>N, i>=N").
func (d *Driver) extractBounds(p tree.ForStmtPayload) (start, limit int64, op tree.Operator, step int64, ok bool) {
	if p.Condition == tree.NilNode || !d.arena.IsLive(p.Condition) {
		return 0, 0, tree.OpNone, 0, false
	}
	cond, isExpr := d.arena.Get(p.Condition).Payload.(tree.ExpressionPayload)
	if !isExpr {
		return 0, 0, tree.OpNone, 0, false
	}
	limitVal, ok := intLiteral(d.arena, cond.Right)
	if !ok {
		return 0, 0, tree.OpNone, 0, false
	}
	startVal, ok := d.forInitValue(p.Init)
	if !ok {
		return 0, 0, tree.OpNone, 0, false
	}
	stepVal, ok := d.forStepDelta(p.Step)
	if !ok {
		return 0, 0, tree.OpNone, 0, false
	}
	return startVal, limitVal, cond.Operator, stepVal, true
}

func intLiteral(a *tree.Arena, n tree.NodeID) (int64, bool) {
	if n == tree.NilNode || !a.IsLive(n) {
		return 0, false
	}
	p, ok := a.Get(n).Payload.(tree.IntValuePayload)
	if !ok || p.Big != nil {
		return 0, false
	}
	return p.Value, true
}

func (d *Driver) forInitValue(init tree.NodeID) (int64, bool) {
	if init == tree.NilNode || !d.arena.IsLive(init) {
		return 0, false
	}
	if assign, ok := d.arena.Get(init).Payload.(tree.AssignPayload); ok {
		return intLiteral(d.arena, assign.Source)
	}
	return 0, false
}

func (d *Driver) forStepDelta(step tree.NodeID) (int64, bool) {
	if step == tree.NilNode || !d.arena.IsLive(step) {
		return 0, false
	}
	assign, ok := d.arena.Get(step).Payload.(tree.AssignPayload)
	if !ok {
		return 0, false
	}
	expr, ok := d.arena.Get(assign.Source).Payload.(tree.ExpressionPayload)
	if !ok {
		return 0, false
	}
	delta, ok := intLiteral(d.arena, expr.Right)
	if !ok {
		return 0, false
	}
	if expr.Operator == tree.OpMinus {
		delta = -delta
	}
	return delta, true
}

// --- Assignments (spec.md §4.6 "Assignments") -----------------------------

func (d *Driver) simplifyAssign(node tree.NodeID) (tree.NodeID, bool) {
	p := d.arena.Get(node).Payload.(tree.AssignPayload)

	// Remove null-range LHS assignments.
	if slice, ok := d.arena.Get(p.Target).Payload.(tree.SlicePayload); ok {
		if slice.Span.IsNull(d.arena) {
			d.arena.Remove(node)
			d.arena.Flush()
			return tree.NilNode, true
		}
	}

	// Ensure assignability by inserting a cast on the RHS when needed.
	targetType, tOK := d.types.SemanticType(p.Target, d.sem)
	sourceType, sOK := d.types.SemanticType(p.Source, d.sem)
	if tOK && sOK && targetType != sourceType {
		if _, ok := d.sem.ExprType(targetType, sourceType, tree.OpEq, semantics.ExprContext{}, d.arena); !ok {
			// targetType is a cached semantic-type node, referenced but not
			// owned by the cast (see the identical note in simplifyExpression).
			// p.Source moves from being the assignment's direct source to
			// being the new cast's operand, so it must be detached first.
			source := p.Source
			if d.arena.Get(source).Parent == node {
				d.arena.Detach(source)
			}
			cast := d.arena.New(tree.KindCast, tree.CastPayload{Type: targetType, Value: source})
			d.arena.Attach(cast, source)
			d.arena.Attach(node, cast)
			p.Source = cast
			d.arena.Get(node).Payload = p
			d.arena.Bump(node)
			return node, true
		}
	}
	return node, false
}

// RunToFixpoint drives the guide-visitor traversal over root, simplifying
// every node bottom-up until no further change occurs at the root, using
// rewrite.GuideVisitor purely for the post-order walk (the actual rewrite
// logic lives in Driver.step).
func RunToFixpoint(a *tree.Arena, types *typeinfer.Engine, sem semantics.LanguageSemantics, opts Options, root tree.NodeID) {
	d := New(a, types, sem, opts)
	gv := rewrite.New()
	for _, k := range []tree.Kind{tree.KindExpression, tree.KindCast, tree.KindIfStmt, tree.KindWhileStmt, tree.KindForStmt, tree.KindAssign, tree.KindMember, tree.KindSlice, tree.KindAggregate} {
		gv.On(k, func(a *tree.Arena, n tree.NodeID) rewrite.Status {
			d.Simplify(n)
			return rewrite.Continue
		})
	}
	gv.Walk(a, root)
}
