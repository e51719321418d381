package structural

import (
	"hifcore/internal/rangeutil"
	"hifcore/internal/reference"
	"hifcore/internal/tree"
)

// RebaseTypeSpan traverses every spanned type under root and shifts any
// range whose minimum bound isn't 0 down to 0, then rewrites every
// Member index over a rebased prefix's type so the observable indexing is
// unchanged. Callers must follow this with a full typeinfer.ResetTypes
// over root, same as FixRangesDirection. Grounded on
// original_source/src/manipulation/rebaseTypeSpan.cpp.
func (p *Pass) RebaseTypeSpan(root tree.NodeID) {
	a := p.Arena
	shifted := make(map[tree.NodeID]int64)
	walk(a, root, func(n tree.NodeID) {
		span, ok := typeSpan(a, n)
		if !ok {
			return
		}
		newSpan, min, ok := rangeutil.ShiftedToZero(a, span)
		if !ok || min == 0 {
			return
		}
		setTypeSpan(a, n, newSpan)
		shifted[n] = min
	})
	if len(shifted) == 0 {
		return
	}

	walk(a, root, func(n tree.NodeID) {
		switch pay := a.Get(n).Payload.(type) {
		case tree.MemberPayload:
			if newIdx, ok := p.rebasedIndex(shifted, pay.Prefix, pay.Index); ok {
				a.Detach(pay.Index)
				a.Remove(pay.Index)
				a.Attach(n, newIdx)
				pay.Index = newIdx
				a.Get(n).Payload = pay
				a.Bump(n)
				a.Flush()
			}
		}
	})

	p.rebaseTypedRangeParams(root, shifted)
}

// rebasedIndex shifts idx by the same amount its prefix's type span was
// shifted, the literal-index case only — mirrors invertedIndex's scope
// restriction in ranges.go.
func (p *Pass) rebasedIndex(shifted map[tree.NodeID]int64, prefix, idx tree.NodeID) (tree.NodeID, bool) {
	t, ok := p.Types.SemanticType(prefix, p.Sem)
	if !ok {
		return tree.NilNode, false
	}
	min, ok := shifted[t]
	if !ok {
		return tree.NilNode, false
	}
	iv, idxOK := p.Arena.Get(idx).Payload.(tree.IntValuePayload)
	if !idxOK || iv.Big != nil {
		return tree.NilNode, false
	}
	return p.Arena.New(tree.KindIntValue, tree.IntValuePayload{Value: iv.Value - min}), true
}

// rebaseTypedRangeParams handles spec.md 4.7.3's "typed range" special case:
// a span whose Right bound is an Identifier resolving to a ValueTP of the
// same owner as a ValueTP referenced by the Left bound (the "(W-1) downto
// rangeBase" shape original_source generates for a template-sized type).
// The right-bound ValueTP is replaced with a literal 0 at every reference
// site in the owner's template parameter list and dropped from it; callers
// whose owner isn't a standard (library-provided) subprogram should follow
// with RenameConflictingDeclarations to re-settle any name this frees up.
func (p *Pass) rebaseTypedRangeParams(root tree.NodeID, shifted map[tree.NodeID]int64) {
	a := p.Arena
	walk(a, root, func(n tree.NodeID) {
		span, ok := typeSpan(a, n)
		if !ok {
			return
		}
		rightIdent, ok := a.Get(span.Right).Payload.(tree.IdentifierPayload)
		if !ok {
			return
		}
		rightDecl, ok := p.Refs.GetDeclaration(span.Right, p.Sem, reference.Options{})
		if !ok {
			return
		}
		if _, ok := a.Get(rightDecl).Payload.(tree.ValueTPPayload); !ok {
			return
		}
		leftDecl, leftOK := p.leftBoundValueTP(span.Left)
		if !leftOK || a.Get(leftDecl).Parent != a.Get(rightDecl).Parent {
			return
		}
		owner := a.Get(rightDecl).Parent
		if owner == tree.NilNode {
			return
		}
		_ = rightIdent
		p.replaceReferencesWithZero(owner, rightDecl)
		p.dropTemplateParameter(owner, rightDecl)
	})
}

// leftBoundValueTP finds the ValueTP a span's left bound references, either
// directly (an Identifier) or through a "W-1"-shaped Expression.
func (p *Pass) leftBoundValueTP(left tree.NodeID) (tree.NodeID, bool) {
	a := p.Arena
	switch pay := a.Get(left).Payload.(type) {
	case tree.IdentifierPayload:
		decl, ok := p.Refs.GetDeclaration(left, p.Sem, reference.Options{})
		if !ok {
			return tree.NilNode, false
		}
		if _, ok := a.Get(decl).Payload.(tree.ValueTPPayload); !ok {
			return tree.NilNode, false
		}
		return decl, true
	case tree.ExpressionPayload:
		if ident, ok := a.Get(pay.Left).Payload.(tree.IdentifierPayload); ok {
			_ = ident
			decl, ok := p.Refs.GetDeclaration(pay.Left, p.Sem, reference.Options{})
			if !ok {
				return tree.NilNode, false
			}
			if _, ok := a.Get(decl).Payload.(tree.ValueTPPayload); !ok {
				return tree.NilNode, false
			}
			return decl, true
		}
	}
	return tree.NilNode, false
}

func (p *Pass) replaceReferencesWithZero(owner, decl tree.NodeID) {
	a := p.Arena
	refs := p.Refs.GetReferences(decl, p.Sem, owner)
	for sym := range refs {
		parent := a.Get(sym).Parent
		if parent == tree.NilNode {
			continue
		}
		zero := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 0})
		replaceChild(a, parent, sym, zero)
	}
	p.Refs.ResetDeclarations(owner)
}

// replaceChild swaps old for replacement wherever old appears as a direct
// child field of parent's payload, across the shapes that can embed a
// value node (ranges and Member indices are the two this rewrite meets in
// practice).
func replaceChild(a *tree.Arena, parent, old, replacement tree.NodeID) {
	node := a.Get(parent)
	switch pay := node.Payload.(type) {
	case tree.TypeIntPayload:
		if pay.Span.Right == old {
			a.Detach(old)
			a.Remove(old)
			a.Attach(parent, replacement)
			pay.Span.Right = replacement
			node.Payload = pay
			a.Bump(parent)
		}
	case tree.TypeBitvectorPayload:
		if pay.Span.Right == old {
			a.Detach(old)
			a.Remove(old)
			a.Attach(parent, replacement)
			pay.Span.Right = replacement
			node.Payload = pay
			a.Bump(parent)
		}
	case tree.TypeArrayPayload:
		if pay.Span.Right == old {
			a.Detach(old)
			a.Remove(old)
			a.Attach(parent, replacement)
			pay.Span.Right = replacement
			node.Payload = pay
			a.Bump(parent)
		}
	case tree.MemberPayload:
		if pay.Index == old {
			a.Detach(old)
			a.Remove(old)
			a.Attach(parent, replacement)
			pay.Index = replacement
			node.Payload = pay
			a.Bump(parent)
		}
	}
	a.Flush()
}

// dropTemplateParameter removes decl from owner's template parameter list,
// whichever declaration kind owner is.
func (p *Pass) dropTemplateParameter(owner, decl tree.NodeID) {
	a := p.Arena
	node := a.Get(owner)
	switch pay := node.Payload.(type) {
	case tree.ViewPayload:
		pay.TemplateParameters = removeID(pay.TemplateParameters, decl)
		node.Payload = pay
	case tree.FunctionPayload:
		pay.TemplateParameters = removeID(pay.TemplateParameters, decl)
		node.Payload = pay
	case tree.ProcedurePayload:
		pay.TemplateParameters = removeID(pay.TemplateParameters, decl)
		node.Payload = pay
	default:
		return
	}
	a.Detach(decl)
	a.Remove(decl)
	a.Flush()
	a.Bump(owner)
}
