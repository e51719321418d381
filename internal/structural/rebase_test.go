package structural

import (
	"testing"

	"hifcore/internal/tree"
)

func intLit(a *tree.Arena, v int64) tree.NodeID {
	return a.New(tree.KindIntValue, tree.IntValuePayload{Value: v})
}

func TestRebaseTypeSpanShiftsNonZeroMinimum(t *testing.T) {
	a := tree.NewArena()
	left := intLit(a, 7)
	right := intLit(a, 3)
	bv := a.New(tree.KindTypeBitvector, tree.TypeBitvectorPayload{Span: tree.Range{Dir: tree.Downto, Left: left, Right: right}})
	a.Attach(bv, left)
	a.Attach(bv, right)

	p := newPass(t, a)
	p.RebaseTypeSpan(bv)

	span, ok := typeSpan(a, bv)
	if !ok {
		t.Fatalf("typeSpan after rebase: not found")
	}
	l, r, ok := span.LiteralBounds(a)
	if !ok || l != 4 || r != 0 {
		t.Fatalf("rebased span = [%d %s %d], want [4 downto 0]", l, span.Dir, r)
	}
}

func TestRebaseTypeSpanNoopWhenAlreadyZeroBased(t *testing.T) {
	a := tree.NewArena()
	left := intLit(a, 4)
	right := intLit(a, 0)
	bv := a.New(tree.KindTypeBitvector, tree.TypeBitvectorPayload{Span: tree.Range{Dir: tree.Downto, Left: left, Right: right}})
	a.Attach(bv, left)
	a.Attach(bv, right)

	p := newPass(t, a)
	p.RebaseTypeSpan(bv)

	span, _ := typeSpan(a, bv)
	if span.Left != left || span.Right != right {
		t.Fatalf("RebaseTypeSpan rewrote an already zero-based span")
	}
}

func TestRebaseTypeSpanRewritesMemberIndexOverCastPrefix(t *testing.T) {
	a := tree.NewArena()
	left := intLit(a, 7)
	right := intLit(a, 3)
	bv := a.New(tree.KindTypeBitvector, tree.TypeBitvectorPayload{Span: tree.Range{Dir: tree.Downto, Left: left, Right: right}})
	a.Attach(bv, left)
	a.Attach(bv, right)

	inner := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "x"})
	cast := a.New(tree.KindCast, tree.CastPayload{Type: bv, Value: inner})
	a.Attach(cast, inner)

	idx := intLit(a, 5)
	member := a.New(tree.KindMember, tree.MemberPayload{Prefix: cast, Index: idx})
	a.Attach(member, cast)
	a.Attach(member, idx)

	p := newPass(t, a)
	p.RebaseTypeSpan(member)

	mp := a.Get(member).Payload.(tree.MemberPayload)
	iv, ok := a.Get(mp.Index).Payload.(tree.IntValuePayload)
	if !ok || iv.Value != 2 {
		t.Fatalf("rebased Member index = %v, want 2 (5-3)", iv)
	}
}
