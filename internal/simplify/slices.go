package simplify

import (
	"hifcore/internal/tree"
)

// simplifySlice implements spec.md §4.6's "For slices" rule list for Slice
// nodes, grounded on original_source/src/manipulation/simplify.cpp's
// _simplifySliceToMember / _simplifyUselessSlice / _simplifyConstantConcatSlice
// and the bitwise-expression distribution shared with member handling.
func (d *Driver) simplifySlice(node tree.NodeID) (tree.NodeID, bool) {
	p := d.arena.Get(node).Payload.(tree.SlicePayload)

	if prefix := d.Simplify(p.Prefix); prefix != p.Prefix {
		p.Prefix = prefix
		d.arena.Get(node).Payload = p
		d.arena.Bump(node)
		return node, true
	}

	if next, ok := d.simplifySliceToMember(node, p); ok {
		return next, true
	}
	if next, ok := d.simplifyUselessSlice(node, p); ok {
		return next, true
	}
	if next, ok := d.simplifySliceOfBitwiseExpression(node, p); ok {
		return next, true
	}
	if next, ok := d.simplifySliceOfConcat(node, p); ok {
		return next, true
	}
	return node, false
}

// simplifySliceToMember: a span with equal bounds, e.g. `e[3:3]`, collapses
// to `Cast(sliceType, e[3])`.
func (d *Driver) simplifySliceToMember(node tree.NodeID, p tree.SlicePayload) (tree.NodeID, bool) {
	left, right, ok := p.Span.LiteralBounds(d.arena)
	if !ok || left != right {
		return node, false
	}
	sliceType, ok := d.types.SemanticType(node, d.sem)
	if !ok {
		return node, false
	}
	if d.arena.Get(p.Prefix).Parent == node {
		d.arena.Detach(p.Prefix)
	}
	idx := d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: left})
	member := d.arena.New(tree.KindMember, tree.MemberPayload{Prefix: p.Prefix, Index: idx})
	d.arena.Attach(member, p.Prefix)
	d.arena.Attach(member, idx)
	cast := d.arena.New(tree.KindCast, tree.CastPayload{Type: sliceType, Value: member})
	d.arena.Attach(cast, member)
	return d.replace(node, cast), true
}

// simplifyUselessSlice: a span covering the prefix's whole type collapses to
// the bare prefix.
func (d *Driver) simplifyUselessSlice(node tree.NodeID, p tree.SlicePayload) (tree.NodeID, bool) {
	prefixType, ok := d.types.SemanticType(p.Prefix, d.sem)
	if !ok {
		return node, false
	}
	base := d.types.BaseType(prefixType, true, d.sem, false)
	fullSpan, ok := d.types.TypeGetSpan(base, d.sem)
	if !ok {
		return node, false
	}
	fullMin, fok1 := fullSpan.Min(d.arena)
	fullMax, fok2 := fullSpan.Max(d.arena)
	sliceMin, sok1 := p.Span.Min(d.arena)
	sliceMax, sok2 := p.Span.Max(d.arena)
	if !fok1 || !fok2 || !sok1 || !sok2 {
		return node, false
	}
	if fullMin != sliceMin || fullMax != sliceMax {
		return node, false
	}
	return d.replace(node, p.Prefix), true
}

// simplifySliceOfBitwiseExpression distributes a slice over a bitwise
// expression prefix: `(a ⊕ b)[range] ⇒ a[range] ⊕ b[range]`.
func (d *Driver) simplifySliceOfBitwiseExpression(node tree.NodeID, p tree.SlicePayload) (tree.NodeID, bool) {
	expr, ok := d.arena.Get(p.Prefix).Payload.(tree.ExpressionPayload)
	if !ok || !operatorIsBitwise(expr.Operator) {
		return node, false
	}

	if d.arena.Get(expr.Left).Parent == p.Prefix {
		d.arena.Detach(expr.Left)
	}
	span1 := cloneRange(d.arena, p.Span)
	s1 := d.arena.New(tree.KindSlice, tree.SlicePayload{Prefix: expr.Left, Span: span1})
	d.arena.Attach(s1, expr.Left)
	attachRange(d.arena, s1, span1)
	expr.Left = s1

	if expr.Right != tree.NilNode {
		if d.arena.Get(expr.Right).Parent == p.Prefix {
			d.arena.Detach(expr.Right)
		}
		span2 := cloneRange(d.arena, p.Span)
		s2 := d.arena.New(tree.KindSlice, tree.SlicePayload{Prefix: expr.Right, Span: span2})
		d.arena.Attach(s2, expr.Right)
		attachRange(d.arena, s2, span2)
		expr.Right = s2
	}
	d.arena.Get(p.Prefix).Payload = expr
	d.arena.Attach(p.Prefix, s1)
	if expr.Right != tree.NilNode {
		d.arena.Attach(p.Prefix, expr.Right)
	}
	d.arena.Bump(p.Prefix)
	if d.arena.Get(p.Prefix).Parent == node {
		d.arena.Detach(p.Prefix)
	}
	return d.replace(node, p.Prefix), true
}

// simplifySliceOfConcat implements scenario S2: a literal-bound slice over a
// concat selects, per overlapping element, either the whole element (when
// entirely covered) or a rebased sub-slice of it, then re-concatenates the
// pieces.
func (d *Driver) simplifySliceOfConcat(node tree.NodeID, p tree.SlicePayload) (tree.NodeID, bool) {
	expr, ok := d.arena.Get(p.Prefix).Payload.(tree.ExpressionPayload)
	if !ok || expr.Operator != tree.OpConcat {
		return node, false
	}
	prefixType, ok := d.types.SemanticType(p.Prefix, d.sem)
	if !ok {
		return node, false
	}
	prefixSpan, ok := d.types.TypeGetSpan(prefixType, d.sem)
	if !ok {
		return node, false
	}
	lo, lok := p.Span.Min(d.arena)
	hi, hok := p.Span.Max(d.arena)
	if !lok || !hok {
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
	if prefixSpan.Dir == tree.Downto {
		reverseNodes(elements)
		reverseInts(widths)
	}

	var pieces []tree.NodeID
	pos := int64(0)
	for i, el := range elements {
		elLo, elHi := pos, pos+widths[i]-1
		pos += widths[i]
		if elHi < lo || elLo > hi {
			continue
		}
		if elLo >= lo && elHi <= hi {
			pieces = append(pieces, d.arena.Clone(el))
			continue
		}
		localLo := maxInt64(lo, elLo) - elLo
		localHi := minInt64(hi, elHi) - elLo
		cloned := d.arena.Clone(el)
		leftB := d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: localHi})
		rightB := d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: localLo})
		sub := d.arena.New(tree.KindSlice, tree.SlicePayload{Prefix: cloned, Span: tree.Range{Dir: tree.Downto, Left: leftB, Right: rightB}})
		d.arena.Attach(sub, cloned)
		d.arena.Attach(sub, leftB)
		d.arena.Attach(sub, rightB)
		pieces = append(pieces, sub)
	}
	if len(pieces) == 0 {
		return node, false
	}
	if prefixSpan.Dir == tree.Downto {
		reverseNodes(pieces)
	}
	if len(pieces) == 1 {
		return d.replace(node, pieces[0]), true
	}
	chain := pieces[0]
	for _, next := range pieces[1:] {
		concat := d.arena.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpConcat, Left: chain, Right: next})
		d.arena.Attach(concat, chain)
		d.arena.Attach(concat, next)
		chain = concat
	}
	return d.replace(node, chain), true
}

func cloneRange(a *tree.Arena, r tree.Range) tree.Range {
	out := tree.Range{Dir: r.Dir}
	if r.Left != tree.NilNode {
		out.Left = a.Clone(r.Left)
	}
	if r.Right != tree.NilNode {
		out.Right = a.Clone(r.Right)
	}
	return out
}

func attachRange(a *tree.Arena, parent tree.NodeID, r tree.Range) {
	if r.Left != tree.NilNode {
		a.Attach(parent, r.Left)
	}
	if r.Right != tree.NilNode {
		a.Attach(parent, r.Right)
	}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
