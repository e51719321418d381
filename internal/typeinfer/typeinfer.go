// Package typeinfer implements C3 (spec.md section 4.3): computes a
// semantic type for every value node on demand, folding operator types
// upward via C1 (internal/semantics), and caches the result on the node's
// generation so that a mutation invalidates exactly the nodes it touched.
// Grounded on the teacher's type-checker (internal/compiler's expression
// type inference, recursively typing subexpressions bottom-up) and on
// internal/tree's generation-counter cache-invalidation design (spec.md
// section 9: "caches become side tables keyed on arena indices and
// invalidated by a generation counter").
package typeinfer

import (
	"hifcore/internal/semantics"
	"hifcore/internal/tree"
)

type cacheKey struct {
	node tree.NodeID
	gen  uint32
}

// Engine caches semantic types over one arena.
type Engine struct {
	arena *tree.Arena
	cache map[cacheKey]tree.NodeID
}

func New(a *tree.Arena) *Engine {
	return &Engine{arena: a, cache: make(map[cacheKey]tree.NodeID)}
}

// SemanticType computes (and caches) the type of value v under sem.
func (e *Engine) SemanticType(v tree.NodeID, sem semantics.LanguageSemantics) (tree.NodeID, bool) {
	if !e.arena.IsLive(v) {
		return tree.NilNode, false
	}
	key := cacheKey{node: v, gen: e.arena.Get(v).Generation()}
	if t, ok := e.cache[key]; ok {
		return t, true
	}
	t, ok := e.infer(v, sem)
	if !ok {
		return tree.NilNode, false
	}
	e.cache[key] = t
	return t, true
}

func (e *Engine) infer(v tree.NodeID, sem semantics.LanguageSemantics) (tree.NodeID, bool) {
	node := e.arena.Get(v)
	switch p := node.Payload.(type) {
	case tree.BitValuePayload, tree.BitvectorValuePayload, tree.BoolValuePayload,
		tree.CharValuePayload, tree.IntValuePayload, tree.RealValuePayload,
		tree.StringValuePayload, tree.TimeValuePayload:
		t := sem.TypeForConstant(v, e.arena)
		return t, t != tree.NilNode
	case tree.ExpressionPayload:
		return e.inferExpression(v, p, sem)
	case tree.CastPayload:
		return p.Type, e.arena.IsLive(p.Type)
	case tree.FunctionCallPayload:
		if p.Type != tree.NilNode {
			return p.Type, true
		}
		return tree.NilNode, false
	case tree.MemberPayload, tree.SlicePayload, tree.FieldReferencePayload, tree.IdentifierPayload:
		// Symbol-bearing leaves type through their declaration; C3 does not
		// itself resolve symbols (that's C2's job), so absent a declaration
		// hint the caller must supply one via a prior cast or known type.
		return tree.NilNode, false
	default:
		return tree.NilNode, false
	}
}

func (e *Engine) inferExpression(v tree.NodeID, p tree.ExpressionPayload, sem semantics.LanguageSemantics) (tree.NodeID, bool) {
	t1, ok := e.SemanticType(p.Left, sem)
	if !ok {
		return tree.NilNode, false
	}
	var t2 tree.NodeID
	if p.Right != tree.NilNode {
		t2, ok = e.SemanticType(p.Right, sem)
		if !ok {
			return tree.NilNode, false
		}
	}
	ctx := semantics.ExprContext{}
	result, ok := sem.ExprType(t1, t2, p.Operator, ctx, e.arena)
	if !ok {
		return tree.NilNode, false
	}
	return result.Returned, true
}

// BaseType unwraps named/wrapper types (TypeReference, TypeDef indirection)
// down to a structural type. followOpaque additionally unwraps types whose
// semantics marks them opaque (reserved for future dialects; currently a
// no-op since no dialect defines opaque wrapper kinds).
func (e *Engine) BaseType(t tree.NodeID, followTypeRefs bool, sem semantics.LanguageSemantics, followOpaque bool) tree.NodeID {
	cur := t
	for e.arena.IsLive(cur) {
		switch p := e.arena.Get(cur).Payload.(type) {
		case tree.TypeReferencePayload:
			if !followTypeRefs || p.Referenced == tree.NilNode {
				return cur
			}
			cur = p.Referenced
		case tree.TypeDefPayload:
			cur = p.Type
		case tree.TypeTypeReferencePayload:
			return cur
		default:
			return cur
		}
	}
	return cur
}

// SpanBitwidth returns the number of elements a range denotes, or 0 for a
// symbolic/unknown span — spec.md 4.3: "zero means symbolic/unknown; never
// panics."
func (e *Engine) SpanBitwidth(r tree.Range) uint64 {
	return r.Size(e.arena)
}

// TypeGetSpan extracts the declared span of t: a bitvector/signed/unsigned's
// Span, an array's element-count range, or an integer's precision range.
func (e *Engine) TypeGetSpan(t tree.NodeID, sem semantics.LanguageSemantics) (tree.Range, bool) {
	if !e.arena.IsLive(t) {
		return tree.Range{}, false
	}
	switch p := e.arena.Get(t).Payload.(type) {
	case tree.TypeBitvectorPayload:
		return p.Span, true
	case tree.TypeSignedPayload:
		return p.Span, true
	case tree.TypeUnsignedPayload:
		return p.Span, true
	case tree.TypeIntPayload:
		return p.Span, true
	case tree.TypeStringPayload:
		return p.Span, true
	case tree.TypeArrayPayload:
		return p.Span, true
	default:
		return tree.Range{}, false
	}
}

func (e *Engine) TypeIsSigned(t tree.NodeID) bool {
	if !e.arena.IsLive(t) {
		return false
	}
	switch p := e.arena.Get(t).Payload.(type) {
	case tree.TypeIntPayload:
		return p.Signed
	case tree.TypeBitvectorPayload:
		return p.Signed
	case tree.TypeSignedPayload:
		return true
	default:
		return false
	}
}

func (e *Engine) TypeIsLogic(t tree.NodeID) bool {
	if !e.arena.IsLive(t) {
		return false
	}
	return isLogicKindPublic(e.arena.Get(t).Kind)
}

func isLogicKindPublic(k tree.Kind) bool {
	switch k {
	case tree.KindTypeBit, tree.KindTypeBitvector:
		return true
	default:
		return false
	}
}

// TypeIsConstexpr reports whether t's declared span/bounds are fully
// literal (no symbolic template-parameter bounds remain).
func (e *Engine) TypeIsConstexpr(t tree.NodeID) bool {
	span, ok := e.TypeGetSpan(t, nil)
	if !ok {
		return true // non-spanned types (Bool, Char, ...) are trivially constexpr
	}
	_, _, ok = span.LiteralBounds(e.arena)
	return ok
}

func (e *Engine) TypeIsResolved(t tree.NodeID) bool {
	if !e.arena.IsLive(t) {
		return false
	}
	if p, ok := e.arena.Get(t).Payload.(tree.TypeBitvectorPayload); ok {
		return p.Resolved
	}
	return true
}

// ResetTypes purges cached semantic types for every node in root (and,
// when deep is true, for nodes in subtrees root merely references —
// currently a no-op extension point since types never alias across
// subtrees in this model).
func (e *Engine) ResetTypes(root tree.NodeID, deep bool) {
	var walk func(tree.NodeID)
	walk = func(n tree.NodeID) {
		if n == tree.NilNode || !e.arena.IsLive(n) {
			return
		}
		for k := range e.cache {
			if k.node == n {
				delete(e.cache, k)
			}
		}
		for _, c := range e.arena.Children(n) {
			walk(c)
		}
	}
	walk(root)
}
