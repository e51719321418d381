package rangeutil

import (
	"testing"

	"hifcore/internal/tree"
)

func lit(a *tree.Arena, v int64) tree.NodeID {
	return a.New(tree.KindIntValue, tree.IntValuePayload{Value: v})
}

func TestShiftedToZero(t *testing.T) {
	a := tree.NewArena()
	r := tree.Range{Dir: tree.Downto, Left: lit(a, 7), Right: lit(a, 3)}

	shifted, min, ok := ShiftedToZero(a, r)
	if !ok {
		t.Fatalf("ShiftedToZero failed")
	}
	if min != 3 {
		t.Fatalf("min = %d, want 3", min)
	}
	left, right, ok := shifted.LiteralBounds(a)
	if !ok || left != 4 || right != 0 {
		t.Fatalf("shifted bounds = (%d, %d), want (4, 0)", left, right)
	}
}

func TestIterationCountLessThan(t *testing.T) {
	n, ok := IterationCount(0, 10, tree.OpLt, 1)
	if !ok || n != 10 {
		t.Fatalf("IterationCount(0..<10, step 1) = %d, ok=%v, want 10", n, ok)
	}
}

func TestIterationCountLessEqual(t *testing.T) {
	n, ok := IterationCount(0, 9, tree.OpLe, 1)
	if !ok || n != 10 {
		t.Fatalf("IterationCount(0..<=9, step 1) = %d, ok=%v, want 10", n, ok)
	}
}

func TestIterationCountDescending(t *testing.T) {
	n, ok := IterationCount(9, 0, tree.OpGe, -1)
	if !ok || n != 10 {
		t.Fatalf("IterationCount(9 downto 0) = %d, ok=%v, want 10", n, ok)
	}
}
