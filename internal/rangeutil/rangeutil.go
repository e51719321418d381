// Package rangeutil promotes the small range-arithmetic helpers original_source
// kept as free functions (narrowToCardinality, rangeGetIncremented,
// rangeGetShiftedToZero) to a shared package; C6's loop unroller calls
// IterationCount and C7's rebaseTypeSpan calls ShiftedToZero (spec.md §12
// supplemented features). Grounded on
// original_source/hif/manipulation (range helper functions referenced by
// rebaseTypeSpan and the for-loop unroller) and on internal/tree/range.go's
// Range type.
package rangeutil

import "hifcore/internal/tree"

// NarrowToCardinality rebuilds r so that it spans exactly n elements,
// keeping its Left bound and direction fixed and recomputing Right. It
// fails when r's bounds are not literal or n is 0.
func NarrowToCardinality(a *tree.Arena, r tree.Range, n uint64) (tree.Range, bool) {
	left, _, ok := r.LiteralBounds(a)
	if !ok || n == 0 {
		return tree.Range{}, false
	}
	var right int64
	if r.Dir == tree.Downto {
		right = left - int64(n) + 1
	} else {
		right = left + int64(n) - 1
	}
	rightNode := a.New(tree.KindIntValue, tree.IntValuePayload{Value: right})
	return tree.Range{Dir: r.Dir, Left: r.Left, Right: rightNode}, true
}

// IncrementedBound returns a Range whose bounds are both shifted by delta,
// keeping r's direction. It fails when r's bounds are not literal.
func IncrementedBound(a *tree.Arena, r tree.Range, delta int64) (tree.Range, bool) {
	left, right, ok := r.LiteralBounds(a)
	if !ok {
		return tree.Range{}, false
	}
	leftNode := a.New(tree.KindIntValue, tree.IntValuePayload{Value: left + delta})
	rightNode := a.New(tree.KindIntValue, tree.IntValuePayload{Value: right + delta})
	return tree.Range{Dir: r.Dir, Left: leftNode, Right: rightNode}, true
}

// ShiftedToZero returns r rebased so its minimum bound becomes 0 — the
// core operation rebaseTypeSpan (internal/structural) applies to every
// numeric type's declared span (spec.md §4.7.3).
func ShiftedToZero(a *tree.Arena, r tree.Range) (tree.Range, int64, bool) {
	min, ok := r.Min(a)
	if !ok {
		return tree.Range{}, 0, false
	}
	if min == 0 {
		return r, 0, true
	}
	left, right, ok := r.LiteralBounds(a)
	if !ok {
		return tree.Range{}, 0, false
	}
	leftNode := a.New(tree.KindIntValue, tree.IntValuePayload{Value: left - min})
	rightNode := a.New(tree.KindIntValue, tree.IntValuePayload{Value: right - min})
	return tree.Range{Dir: r.Dir, Left: leftNode, Right: rightNode}, min, true
}

// IterationCount extracts the number of times a for-loop with these bounds
// and a step of stepDelta would run, matching spec.md §4.6's "iteration
// count extraction handles i<N, i<=N, i>N, i>=N" by normalizing the
// relational operator and increment sign into a single inclusive/exclusive
// count.
func IterationCount(start, limit int64, op tree.Operator, stepDelta int64) (int64, bool) {
	if stepDelta == 0 {
		return 0, false
	}
	switch op {
	case tree.OpLt:
		if stepDelta > 0 && start < limit {
			return ceilDiv(limit-start, stepDelta), true
		}
	case tree.OpLe:
		if stepDelta > 0 && start <= limit {
			return ceilDiv(limit-start+1, stepDelta), true
		}
	case tree.OpGt:
		if stepDelta < 0 && start > limit {
			return ceilDiv(start-limit, -stepDelta), true
		}
	case tree.OpGe:
		if stepDelta < 0 && start >= limit {
			return ceilDiv(start-limit+1, -stepDelta), true
		}
	}
	return 0, false
}

func ceilDiv(n, d int64) int64 {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}
