package simplify

import (
	"hifcore/internal/tree"
)

// simplifyMember implements spec.md §4.6 "Members and slices" for Member
// nodes, grounded on original_source/src/manipulation/simplify.cpp's
// _simplifySingleBitMember / _simplifyBitvectorValueMember /
// _simplifyAggregateMember / _simplifySliceMember /
// _simplifyBitwiseExpressionMember / _simplifyConcatMember.
func (d *Driver) simplifyMember(node tree.NodeID) (tree.NodeID, bool) {
	p := d.arena.Get(node).Payload.(tree.MemberPayload)

	if prefix := d.Simplify(p.Prefix); prefix != p.Prefix {
		p.Prefix = prefix
		d.arena.Get(node).Payload = p
		d.arena.Bump(node)
		return node, true
	}
	if p.Index != tree.NilNode {
		if index := d.Simplify(p.Index); index != p.Index {
			p.Index = index
			d.arena.Get(node).Payload = p
			d.arena.Bump(node)
			return node, true
		}
	}

	if next, ok := d.simplifySingleBitMember(node, p); ok {
		return next, true
	}
	if next, ok := d.simplifyBitvectorValueMember(node, p); ok {
		return next, true
	}
	if next, ok := d.simplifyAggregateMember(node, p); ok {
		return next, true
	}
	if next, ok := d.simplifySliceMember(node, p); ok {
		return next, true
	}
	if next, ok := d.simplifyBitwiseExpressionMember(node, p); ok {
		return next, true
	}
	if next, ok := d.simplifyConcatMember(node, p); ok {
		return next, true
	}
	return node, false
}

// simplifySingleBitMember: a Bit/Bool prefix indexed at all reduces to the
// prefix itself ("single-bit prefix + index 0 ⇒ prefix"); a bit-width-1
// vector prefix reduces to the prefix with a cast when the member's type
// differs from the prefix's.
func (d *Driver) simplifySingleBitMember(node tree.NodeID, p tree.MemberPayload) (tree.NodeID, bool) {
	prefixType, ok := d.types.SemanticType(p.Prefix, d.sem)
	if !ok {
		return node, false
	}
	base := d.types.BaseType(prefixType, true, d.sem, false)
	switch d.arena.Get(base).Payload.(type) {
	case tree.TypeBitPayload, tree.TypeBoolPayload:
		return d.replace(node, p.Prefix), true
	}

	span, ok := d.types.TypeGetSpan(base, d.sem)
	if !ok || d.types.SpanBitwidth(span) != 1 {
		return node, false
	}
	memberType, ok := d.types.SemanticType(node, d.sem)
	if !ok {
		return node, false
	}
	if memberType == prefixType {
		return d.replace(node, p.Prefix), true
	}
	if d.arena.Get(p.Prefix).Parent == node {
		d.arena.Detach(p.Prefix)
	}
	cast := d.arena.New(tree.KindCast, tree.CastPayload{Type: memberType, Value: p.Prefix})
	d.arena.Attach(cast, p.Prefix)
	return d.replace(node, cast), true
}

// simplifyBitvectorValueMember extracts the single bit at a literal index
// out of a literal bitvector prefix.
func (d *Driver) simplifyBitvectorValueMember(node tree.NodeID, p tree.MemberPayload) (tree.NodeID, bool) {
	bv, ok := d.arena.Get(p.Prefix).Payload.(tree.BitvectorValuePayload)
	if !ok {
		return node, false
	}
	idx, ok := d.arena.Get(p.Index).Payload.(tree.IntValuePayload)
	if !ok || idx.Big != nil {
		return node, false
	}
	prefixType, ok := d.types.SemanticType(p.Prefix, d.sem)
	if !ok {
		return node, false
	}
	span, ok := d.types.TypeGetSpan(prefixType, d.sem)
	if !ok {
		return node, false
	}
	pos := idx.Value
	if span.Dir == tree.Downto {
		pos = int64(len(bv.Value)) - idx.Value - 1
	}
	if pos < 0 || pos >= int64(len(bv.Value)) {
		return node, false
	}
	bit := d.arena.New(tree.KindBitValue, tree.BitValuePayload{Value: bv.Value[pos]})
	return d.replace(node, bit), true
}

// simplifyAggregateMember resolves `{...}[i]` to the matching alt's value,
// or the `others` default when every other alt index is a distinguishable
// literal.
func (d *Driver) simplifyAggregateMember(node tree.NodeID, p tree.MemberPayload) (tree.NodeID, bool) {
	agg, ok := d.arena.Get(p.Prefix).Payload.(tree.AggregatePayload)
	if !ok {
		return node, false
	}
	idxVal, idxIsLiteral := d.arena.Get(p.Index).Payload.(tree.IntValuePayload)

	canCheckOthers := true
	for _, altID := range agg.Alts {
		alt := d.arena.Get(altID).Payload.(tree.AggregateAltPayload)
		for _, idx := range alt.Indices {
			if idx.Single == tree.NilNode {
				canCheckOthers = false
				continue
			}
			if equalNodes(d.arena, idx.Single, p.Index) {
				return d.replace(node, d.arena.Clone(alt.Value)), true
			}
			altIdx, ok := d.arena.Get(idx.Single).Payload.(tree.IntValuePayload)
			if !ok || !idxIsLiteral {
				canCheckOthers = false
				continue
			}
			if altIdx.Value == idxVal.Value {
				return d.replace(node, d.arena.Clone(alt.Value)), true
			}
		}
	}
	if canCheckOthers && agg.Others != tree.NilNode {
		return d.replace(node, d.arena.Clone(agg.Others)), true
	}
	return node, false
}

// simplifySliceMember rebases a member into a slice: `e[l:r][i]` becomes
// `e[i+min]` when the target semantics rebases slice indices from zero,
// otherwise the slice is simply dropped.
func (d *Driver) simplifySliceMember(node tree.NodeID, p tree.MemberPayload) (tree.NodeID, bool) {
	slice, ok := d.arena.Get(p.Prefix).Payload.(tree.SlicePayload)
	if !ok {
		return node, false
	}

	newIndex := p.Index
	if d.sem.SliceTypeIsRebased() {
		min := slice.Span.Right
		if slice.Span.Dir == tree.Upto {
			min = slice.Span.Left
		}
		if d.arena.Get(p.Index).Parent == node {
			d.arena.Detach(p.Index)
		}
		minClone := d.arena.Clone(min)
		newIndex = d.arena.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpPlus, Left: p.Index, Right: minClone})
		d.arena.Attach(newIndex, p.Index)
		d.arena.Attach(newIndex, minClone)
	}

	innerPrefix := slice.Prefix
	if d.arena.Get(innerPrefix).Parent == p.Prefix {
		d.arena.Detach(innerPrefix)
	}

	np := tree.MemberPayload{Prefix: innerPrefix, Index: newIndex}
	if d.arena.Get(p.Prefix).Parent == node {
		d.arena.Detach(p.Prefix)
	}
	d.arena.Remove(p.Prefix)
	d.arena.Get(node).Payload = np
	if d.arena.Get(innerPrefix).Parent == tree.NilNode {
		d.arena.Attach(node, innerPrefix)
	}
	if d.arena.Get(newIndex).Parent == tree.NilNode {
		d.arena.Attach(node, newIndex)
	}
	d.arena.Bump(node)
	d.arena.Flush()
	return node, true
}

// simplifyBitwiseExpressionMember distributes a member over a bitwise
// expression prefix: `(a ⊕ b)[i] ⇒ a[i] ⊕ b[i]`.
func (d *Driver) simplifyBitwiseExpressionMember(node tree.NodeID, p tree.MemberPayload) (tree.NodeID, bool) {
	expr, ok := d.arena.Get(p.Prefix).Payload.(tree.ExpressionPayload)
	if !ok || !operatorIsBitwise(expr.Operator) {
		return node, false
	}

	if d.arena.Get(expr.Left).Parent == p.Prefix {
		d.arena.Detach(expr.Left)
	}
	idx1 := d.arena.Clone(p.Index)
	m1 := d.arena.New(tree.KindMember, tree.MemberPayload{Prefix: expr.Left, Index: idx1})
	d.arena.Attach(m1, expr.Left)
	d.arena.Attach(m1, idx1)
	expr.Left = m1

	if expr.Right != tree.NilNode {
		if d.arena.Get(expr.Right).Parent == p.Prefix {
			d.arena.Detach(expr.Right)
		}
		idx2 := d.arena.Clone(p.Index)
		m2 := d.arena.New(tree.KindMember, tree.MemberPayload{Prefix: expr.Right, Index: idx2})
		d.arena.Attach(m2, expr.Right)
		d.arena.Attach(m2, idx2)
		expr.Right = m2
	}
	d.arena.Get(p.Prefix).Payload = expr
	d.arena.Attach(p.Prefix, m1)
	if expr.Right != tree.NilNode {
		d.arena.Attach(p.Prefix, expr.Right)
	}
	d.arena.Bump(p.Prefix)
	if d.arena.Get(p.Prefix).Parent == node {
		d.arena.Detach(p.Prefix)
	}
	return d.replace(node, p.Prefix), true
}

// simplifyConcatMember computes which concatenated segment contains
// position i and reduces the member to that segment with a rebased index.
func (d *Driver) simplifyConcatMember(node tree.NodeID, p tree.MemberPayload) (tree.NodeID, bool) {
	expr, ok := d.arena.Get(p.Prefix).Payload.(tree.ExpressionPayload)
	if !ok || expr.Operator != tree.OpConcat {
		return node, false
	}
	prefixType, ok := d.types.SemanticType(p.Prefix, d.sem)
	if !ok {
		return node, false
	}
	span, ok := d.types.TypeGetSpan(prefixType, d.sem)
	if !ok {
		return node, false
	}
	idx, ok := d.arena.Get(p.Index).Payload.(tree.IntValuePayload)
	if !ok || idx.Big != nil {
		return node, false
	}

	elements := collectConcatElements(d.arena, p.Prefix)
	widths := make([]int64, len(elements))
	for i, el := range elements {
		t, ok := d.types.SemanticType(el, d.sem)
		if !ok {
			return node, false
		}
		s, ok := d.types.TypeGetSpan(t, d.sem)
		if !ok {
			return node, false
		}
		bw := int64(d.types.SpanBitwidth(s))
		if bw == 0 {
			return node, false
		}
		widths[i] = bw
	}
	if span.Dir == tree.Downto {
		reverseNodes(elements)
		reverseInts(widths)
	}

	remaining := idx.Value
	for i, el := range elements {
		if remaining < widths[i] {
			cloned := d.arena.Clone(el)
			rebased := d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: remaining})
			replacement := d.arena.New(tree.KindMember, tree.MemberPayload{Prefix: cloned, Index: rebased})
			d.arena.Attach(replacement, cloned)
			d.arena.Attach(replacement, rebased)
			return d.replace(node, replacement), true
		}
		remaining -= widths[i]
	}
	return node, false
}

func reverseNodes(s []tree.NodeID) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseInts(s []int64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// collectConcatElements flattens a left-associated chain of op_concat
// expressions into its leaf operands, in source (left-to-right) order.
func collectConcatElements(a *tree.Arena, root tree.NodeID) []tree.NodeID {
	var out []tree.NodeID
	var walk func(n tree.NodeID)
	walk = func(n tree.NodeID) {
		if e, ok := a.Get(n).Payload.(tree.ExpressionPayload); ok && e.Operator == tree.OpConcat {
			walk(e.Left)
			if e.Right != tree.NilNode {
				walk(e.Right)
			}
			return
		}
		out = append(out, n)
	}
	walk(root)
	return out
}

func operatorIsBitwise(op tree.Operator) bool {
	switch op {
	case tree.OpAnd, tree.OpOr, tree.OpXor, tree.OpNot:
		return true
	default:
		return false
	}
}

func equalNodes(a *tree.Arena, x, y tree.NodeID) bool {
	if x == y {
		return true
	}
	if x == tree.NilNode || y == tree.NilNode {
		return false
	}
	xn, yn := a.Get(x), a.Get(y)
	if xn.Kind != yn.Kind {
		return false
	}
	xi, xok := xn.Payload.(tree.IntValuePayload)
	yi, yok := yn.Payload.(tree.IntValuePayload)
	if xok && yok {
		return xi.Value == yi.Value
	}
	return false
}
