package simplify

import (
	"sort"

	"hifcore/internal/tree"
)

// simplifyAggregate implements spec.md §4.6's "Aggregates" rule list,
// grounded on original_source/src/manipulation/simplify.cpp's
// _simplifyBitAggregate / _simplifyBitvectorAggregate /
// _simplifyAggregateWithSameAlts (scenario S4).
func (d *Driver) simplifyAggregate(node tree.NodeID) (tree.NodeID, bool) {
	p := d.arena.Get(node).Payload.(tree.AggregatePayload)

	for _, altID := range p.Alts {
		alt := d.arena.Get(altID).Payload.(tree.AggregateAltPayload)
		if v := d.Simplify(alt.Value); v != alt.Value {
			alt.Value = v
			d.arena.Get(altID).Payload = alt
			d.arena.Bump(altID)
			return node, true
		}
	}
	if p.Others != tree.NilNode {
		if v := d.Simplify(p.Others); v != p.Others {
			p.Others = v
			d.arena.Get(node).Payload = p
			d.arena.Bump(node)
			return node, true
		}
	}

	if next, ok := d.simplifyBitAggregate(node, p); ok {
		return next, true
	}
	if next, ok := d.simplifyAggregateWithSameAlts(node, p); ok {
		return next, true
	}
	if next, ok := d.simplifyBitvectorAggregate(node, p); ok {
		return next, true
	}
	return node, false
}

// simplifyBitAggregate: a Bit-typed aggregate with only `others` set (no
// alts at all) collapses to the others value directly.
func (d *Driver) simplifyBitAggregate(node tree.NodeID, p tree.AggregatePayload) (tree.NodeID, bool) {
	if len(p.Alts) != 0 || p.Others == tree.NilNode {
		return node, false
	}
	aggType, ok := d.types.SemanticType(node, d.sem)
	if !ok {
		return node, false
	}
	base := d.types.BaseType(aggType, true, d.sem, false)
	if _, ok := d.arena.Get(base).Payload.(tree.TypeBitPayload); !ok {
		return node, false
	}
	return d.replace(node, p.Others), true
}

// simplifyAggregateWithSameAlts recognizes an aggregate whose every alt
// value is `Member(commonPrefix, literalIndex)` over the same prefix, with
// the aggregate-index-to-member-index mapping forming a contiguous,
// constant-stride run, and collapses it to `Cast(aggType, Slice(commonPrefix,
// computedRange))` (scenario S4: `{2=>a[2], 1=>a[1], 0=>a[0]}` becomes
// `a[2 downto 0]` cast to the aggregate's type; a mapping whose member
// index falls as the aggregate index rises gives an upto slice instead).
func (d *Driver) simplifyAggregateWithSameAlts(node tree.NodeID, p tree.AggregatePayload) (tree.NodeID, bool) {
	if len(p.Alts) < 2 || p.Others != tree.NilNode {
		return node, false
	}

	type pair struct{ aggIdx, memberIdx int64 }
	pairs := make([]pair, 0, len(p.Alts))
	var commonPrefix tree.NodeID

	for _, altID := range p.Alts {
		alt := d.arena.Get(altID).Payload.(tree.AggregateAltPayload)
		if len(alt.Indices) != 1 || alt.Indices[0].Single == tree.NilNode {
			return node, false
		}
		aggIdxLit, ok := d.arena.Get(alt.Indices[0].Single).Payload.(tree.IntValuePayload)
		if !ok {
			return node, false
		}
		member, ok := d.arena.Get(alt.Value).Payload.(tree.MemberPayload)
		if !ok {
			return node, false
		}
		if commonPrefix == tree.NilNode {
			commonPrefix = member.Prefix
		} else if !structurallyEqual(d.arena, commonPrefix, member.Prefix) {
			return node, false
		}
		memberIdxLit, ok := d.arena.Get(member.Index).Payload.(tree.IntValuePayload)
		if !ok {
			return node, false
		}
		pairs = append(pairs, pair{aggIdx: aggIdxLit.Value, memberIdx: memberIdxLit.Value})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].aggIdx < pairs[j].aggIdx })
	if pairs[0].aggIdx+int64(len(pairs))-1 != pairs[len(pairs)-1].aggIdx {
		return node, false
	}
	stride := pairs[1].memberIdx - pairs[0].memberIdx
	if stride != 1 && stride != -1 {
		return node, false
	}
	for i := 1; i < len(pairs); i++ {
		if pairs[i].aggIdx != pairs[i-1].aggIdx+1 || pairs[i].memberIdx != pairs[i-1].memberIdx+stride {
			return node, false
		}
	}

	aggType, ok := d.types.SemanticType(node, d.sem)
	if !ok {
		return node, false
	}

	dir := tree.Downto
	if stride == -1 {
		dir = tree.Upto
	}
	lowIdx := minInt64(pairs[0].memberIdx, pairs[len(pairs)-1].memberIdx)
	highIdx := maxInt64(pairs[0].memberIdx, pairs[len(pairs)-1].memberIdx)

	prefixClone := d.arena.Clone(commonPrefix)
	leftVal, rightVal := lowIdx, highIdx
	if dir == tree.Downto {
		leftVal, rightVal = highIdx, lowIdx
	}
	leftB := d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: leftVal})
	rightB := d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: rightVal})
	slice := d.arena.New(tree.KindSlice, tree.SlicePayload{Prefix: prefixClone, Span: tree.Range{Dir: dir, Left: leftB, Right: rightB}})
	d.arena.Attach(slice, prefixClone)
	d.arena.Attach(slice, leftB)
	d.arena.Attach(slice, rightB)
	cast := d.arena.New(tree.KindCast, tree.CastPayload{Type: aggType, Value: slice})
	d.arena.Attach(cast, slice)
	return d.replace(node, cast), true
}

// simplifyBitvectorAggregate builds a literal BitvectorValue by walking each
// alt's literal index/range against a literal BitValue, defaulting unset
// positions to `others`'s bit value; fails if any position stays unresolved
// with no `others`.
func (d *Driver) simplifyBitvectorAggregate(node tree.NodeID, p tree.AggregatePayload) (tree.NodeID, bool) {
	if len(p.Alts) == 0 {
		return node, false
	}
	aggType, ok := d.types.SemanticType(node, d.sem)
	if !ok {
		return node, false
	}
	base := d.types.BaseType(aggType, true, d.sem, false)
	span, ok := d.types.TypeGetSpan(base, d.sem)
	if !ok {
		return node, false
	}
	width := d.types.SpanBitwidth(span)
	if width == 0 || width > 4096 {
		return node, false
	}

	var defaultBit tree.BitState
	haveDefault := false
	if p.Others != tree.NilNode {
		bv, ok := d.arena.Get(p.Others).Payload.(tree.BitValuePayload)
		if !ok {
			return node, false
		}
		defaultBit = bv.Value
		haveDefault = true
	}

	bits := make([]tree.BitState, width)
	set := make([]bool, width)
	setBit := func(pos int64, v tree.BitState) bool {
		if pos < 0 || pos >= int64(width) {
			return false
		}
		bits[pos] = v
		set[pos] = true
		return true
	}

	for _, altID := range p.Alts {
		alt := d.arena.Get(altID).Payload.(tree.AggregateAltPayload)
		bv, ok := d.arena.Get(alt.Value).Payload.(tree.BitValuePayload)
		if !ok {
			return node, false
		}
		for _, idx := range alt.Indices {
			if idx.Single != tree.NilNode {
				lit, ok := d.arena.Get(idx.Single).Payload.(tree.IntValuePayload)
				if !ok || !setBit(lit.Value, bv.Value) {
					return node, false
				}
				continue
			}
			if idx.Range == nil {
				return node, false
			}
			lo, hi, ok := idx.Range.LiteralBounds(d.arena)
			if !ok {
				return node, false
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			for v := lo; v <= hi; v++ {
				if !setBit(v, bv.Value) {
					return node, false
				}
			}
		}
	}

	if !haveDefault {
		for _, s := range set {
			if !s {
				return node, false
			}
		}
	} else {
		for i, s := range set {
			if !s {
				bits[i] = defaultBit
			}
		}
	}

	value := d.arena.New(tree.KindBitvectorValue, tree.BitvectorValuePayload{Value: bits})
	return d.replace(node, value), true
}

// structurallyEqual reports whether x and y denote the same reference
// expression (shared signal/variable access), used to recognize a common
// aggregate-alt prefix without requiring identical node identity.
func structurallyEqual(a *tree.Arena, x, y tree.NodeID) bool {
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
	switch xp := xn.Payload.(type) {
	case tree.IdentifierPayload:
		yp := yn.Payload.(tree.IdentifierPayload)
		return xp.Name == yp.Name
	case tree.IntValuePayload:
		yp := yn.Payload.(tree.IntValuePayload)
		return xp.Big == nil && yp.Big == nil && xp.Value == yp.Value
	case tree.FieldReferencePayload:
		yp := yn.Payload.(tree.FieldReferencePayload)
		return xp.Field == yp.Field && structurallyEqual(a, xp.Prefix, yp.Prefix)
	case tree.MemberPayload:
		yp := yn.Payload.(tree.MemberPayload)
		return structurallyEqual(a, xp.Prefix, yp.Prefix) && structurallyEqual(a, xp.Index, yp.Index)
	default:
		return false
	}
}
