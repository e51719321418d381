package sortmatch

import (
	"testing"

	"hifcore/internal/tree"
)

func TestCompareOrdersByKindThenValue(t *testing.T) {
	a := tree.NewArena()
	i1 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 1})
	i2 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 2})
	if Compare(a, i1, i2) >= 0 {
		t.Fatalf("Compare(1, 2) should be negative")
	}
	if Compare(a, i2, i1) <= 0 {
		t.Fatalf("Compare(2, 1) should be positive")
	}
	if Compare(a, i1, i1) != 0 {
		t.Fatalf("Compare(1, 1) should be zero")
	}
	b := a.New(tree.KindBoolValue, tree.BoolValuePayload{Value: false})
	if got, want := Compare(a, i2, b) < 0, tree.KindIntValue < tree.KindBoolValue; got != want {
		t.Fatalf("Compare(int, bool) < 0 = %v, want %v (Kind decides before value)", got, want)
	}
}

func TestSortParametersPositionalAndNamed(t *testing.T) {
	a := tree.NewArena()
	vA := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 1})
	vB := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 2})
	vDefault := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 99})

	formals := []Formal{{Name: "a"}, {Name: "b"}, {Name: "c", Default: vDefault}}
	actuals := []Actual{{Name: "b", Value: vB}, {Value: vA}}

	out, ok := SortParameters(formals, actuals, true)
	if !ok {
		t.Fatalf("SortParameters failed")
	}
	if len(out) != 3 || out[0] != vA || out[1] != vB || out[2] != vDefault {
		t.Fatalf("SortParameters = %v, want [vA vB vDefault]", out)
	}
}

func TestSortParametersMissingWithoutDefaultFails(t *testing.T) {
	a := tree.NewArena()
	vA := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 1})
	formals := []Formal{{Name: "a"}, {Name: "b"}}
	actuals := []Actual{{Value: vA}}

	_, ok := SortParameters(formals, actuals, true)
	if ok {
		t.Fatalf("SortParameters should fail with no binding and no default for b")
	}
}

func TestMatchTreesStructuralEquality(t *testing.T) {
	a := tree.NewArena()
	l1 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 1})
	r1 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 2})
	ref := a.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpPlus, Left: l1, Right: r1})
	a.Attach(ref, l1)
	a.Attach(ref, r1)

	l2 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 1})
	r2 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 2})
	cand := a.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpPlus, Left: l2, Right: r2})
	a.Attach(cand, l2)
	a.Attach(cand, r2)

	matched, unmatched := MatchTrees(a, ref, cand, MatchOptions{})
	if len(unmatched) != 0 {
		t.Fatalf("expected no unmatched nodes, got %v", unmatched)
	}
	if matched[ref] != cand || matched[l1] != l2 || matched[r1] != r2 {
		t.Fatalf("MatchTrees did not match the full subtree: %v", matched)
	}
}

func TestSortIndicesStable(t *testing.T) {
	keys := []int{3, 1, 2, 1}
	idx := SortIndices(len(keys), func(i, j int) bool { return keys[i] < keys[j] })
	if idx[0] != 1 || idx[1] != 3 || idx[2] != 2 || idx[3] != 0 {
		t.Fatalf("SortIndices = %v, want [1 3 2 0]", idx)
	}
}
