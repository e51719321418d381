package fold

import (
	"math/big"
	"testing"
	"testing/quick"

	"hifcore/internal/semantics"
	"hifcore/internal/semantics/catalog"
	"hifcore/internal/tree"
)

func newHIF(t *testing.T) semantics.LanguageSemantics {
	t.Helper()
	cat, err := catalog.Open(nil)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() { cat.Close() })
	return semantics.NewHIF(cat)
}

func TestFoldIntAddition(t *testing.T) {
	a := tree.NewArena()
	sem := newHIF(t)
	l := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 2})
	r := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 3})

	res, ok := Fold(a, sem, l, r, tree.OpPlus, tree.NilNode)
	if !ok {
		t.Fatalf("Fold(2+3) failed")
	}
	got := a.Get(res.Value).Payload.(tree.IntValuePayload)
	if got.Value != 5 {
		t.Fatalf("Fold(2+3) = %d, want 5", got.Value)
	}
}

func TestFoldDivisionByZeroIsAbsence(t *testing.T) {
	a := tree.NewArena()
	sem := newHIF(t)
	l := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 10})
	r := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 0})

	_, ok := Fold(a, sem, l, r, tree.OpDiv, tree.NilNode)
	if ok {
		t.Fatalf("division by zero should not fold")
	}
}

func TestFoldModNormalizesNonNegative(t *testing.T) {
	a := tree.NewArena()
	sem := newHIF(t)
	l := a.New(tree.KindIntValue, tree.IntValuePayload{Value: -7})
	r := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 3})

	res, ok := Fold(a, sem, l, r, tree.OpMod, tree.NilNode)
	if !ok {
		t.Fatalf("Fold(-7 mod 3) failed")
	}
	got := a.Get(res.Value).Payload.(tree.IntValuePayload)
	if got.Value != 2 {
		t.Fatalf("Fold(-7 mod 3) = %d, want 2", got.Value)
	}
}

func TestFoldShiftOverflowCollapses(t *testing.T) {
	a := tree.NewArena()
	sem := newHIF(t)
	l := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 5})
	r := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 64})

	res, ok := Fold(a, sem, l, r, tree.OpSll, tree.NilNode)
	if !ok {
		t.Fatalf("Fold(5 << 64) failed")
	}
	got := a.Get(res.Value).Payload.(tree.IntValuePayload)
	if got.Value != 0 {
		t.Fatalf("Fold(5 << 64) = %d, want 0", got.Value)
	}
}

func TestFoldBitAndUnknownPropagates(t *testing.T) {
	a := tree.NewArena()
	sem := newHIF(t)
	l := a.New(tree.KindBitValue, tree.BitValuePayload{Value: tree.BitX})
	r := a.New(tree.KindBitValue, tree.BitValuePayload{Value: tree.Bit1})

	res, ok := Fold(a, sem, l, r, tree.OpAnd, tree.NilNode)
	if !ok {
		t.Fatalf("Fold(X and 1) failed")
	}
	got := a.Get(res.Value).Payload.(tree.BitValuePayload)
	if got.Value != tree.BitX {
		t.Fatalf("Fold(X and 1) = %v, want X", got.Value)
	}
}

func TestFoldBitAndZeroDominates(t *testing.T) {
	a := tree.NewArena()
	sem := newHIF(t)
	l := a.New(tree.KindBitValue, tree.BitValuePayload{Value: tree.BitX})
	r := a.New(tree.KindBitValue, tree.BitValuePayload{Value: tree.Bit0})

	res, ok := Fold(a, sem, l, r, tree.OpAnd, tree.NilNode)
	if !ok {
		t.Fatalf("Fold(X and 0) failed")
	}
	got := a.Get(res.Value).Payload.(tree.BitValuePayload)
	if got.Value != tree.Bit0 {
		t.Fatalf("Fold(X and 0) = %v, want 0", got.Value)
	}
}

func TestShortCircuitAndFalse(t *testing.T) {
	a := tree.NewArena()
	l := a.New(tree.KindBoolValue, tree.BoolValuePayload{Value: false})

	res, ok := ShortCircuit(a, l, tree.OpAndBool)
	if !ok {
		t.Fatalf("ShortCircuit(false and X) should short-circuit")
	}
	got := a.Get(res).Payload.(tree.BoolValuePayload)
	if got.Value != false {
		t.Fatalf("ShortCircuit(false and X) = %v, want false", got.Value)
	}
}

func TestFoldCaseEqualityDistinguishesFromLogicalEquality(t *testing.T) {
	a := tree.NewArena()
	sem := newHIF(t)
	l := a.New(tree.KindBitValue, tree.BitValuePayload{Value: tree.BitX})
	r := a.New(tree.KindBitValue, tree.BitValuePayload{Value: tree.BitX})

	eq, ok := Fold(a, sem, l, r, tree.OpEq, tree.NilNode)
	if !ok {
		t.Fatalf("Fold(X == X) failed")
	}
	if got := a.Get(eq.Value).Payload.(tree.BitValuePayload).Value; got != tree.BitX {
		t.Fatalf("Fold(X == X) = %v, want X (logical equality preserves unknown)", got)
	}

	caseEq, ok := Fold(a, sem, l, r, tree.OpCaseEq, tree.NilNode)
	if !ok {
		t.Fatalf("Fold(X === X) failed")
	}
	if got := a.Get(caseEq.Value).Payload.(tree.BoolValuePayload).Value; got != true {
		t.Fatalf("Fold(X === X) = %v, want true (case equality is determinate)", got)
	}
}

// --- property-based checks (spec.md §8 item 3: "the test suite must
// include property-based checks over random operand constants for all
// folded operators") -------------------------------------------------------

func TestPropertyIntAdditionCommutes(t *testing.T) {
	sem := newHIF(t)
	prop := func(x, y int64) bool {
		a := tree.NewArena()
		lhs := a.New(tree.KindIntValue, tree.IntValuePayload{Value: x})
		rhs := a.New(tree.KindIntValue, tree.IntValuePayload{Value: y})
		fwd, ok := Fold(a, sem, lhs, rhs, tree.OpPlus, tree.NilNode)
		if !ok {
			return false
		}
		lhs2 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: y})
		rhs2 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: x})
		rev, ok := Fold(a, sem, lhs2, rhs2, tree.OpPlus, tree.NilNode)
		if !ok {
			return false
		}
		fwdVal := a.Get(fwd.Value).Payload.(tree.IntValuePayload)
		revVal := a.Get(rev.Value).Payload.(tree.IntValuePayload)
		return bigOf(fwdVal).Cmp(bigOf(revVal)) == 0
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}

func TestPropertyIntMultiplicationCommutes(t *testing.T) {
	sem := newHIF(t)
	prop := func(x, y int64) bool {
		a := tree.NewArena()
		lhs := a.New(tree.KindIntValue, tree.IntValuePayload{Value: x})
		rhs := a.New(tree.KindIntValue, tree.IntValuePayload{Value: y})
		fwd, ok := Fold(a, sem, lhs, rhs, tree.OpMult, tree.NilNode)
		if !ok {
			return false
		}
		lhs2 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: y})
		rhs2 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: x})
		rev, ok := Fold(a, sem, lhs2, rhs2, tree.OpMult, tree.NilNode)
		if !ok {
			return false
		}
		fwdVal := a.Get(fwd.Value).Payload.(tree.IntValuePayload)
		revVal := a.Get(rev.Value).Payload.(tree.IntValuePayload)
		return bigOf(fwdVal).Cmp(bigOf(revVal)) == 0
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}

// TestPropertyDivModNeverPanics exercises every divisor including zero —
// Fold must report an absence (ok=false), never panic (spec.md §4.5:
// "division by zero is an absence, never a panic"), and when it does fold,
// the quotient/remainder must satisfy x == y*q+r with the mod result
// normalized non-negative for a positive modulus.
func TestPropertyDivModNeverPanics(t *testing.T) {
	sem := newHIF(t)
	prop := func(x, y int64) bool {
		a := tree.NewArena()
		lhs := a.New(tree.KindIntValue, tree.IntValuePayload{Value: x})
		rhs := a.New(tree.KindIntValue, tree.IntValuePayload{Value: y})
		div, divOK := Fold(a, sem, lhs, rhs, tree.OpDiv, tree.NilNode)

		lhs2 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: x})
		rhs2 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: y})
		mod, modOK := Fold(a, sem, lhs2, rhs2, tree.OpMod, tree.NilNode)

		if y == 0 {
			return !divOK && !modOK
		}
		if !divOK || !modOK {
			return false
		}
		q := bigOf(a.Get(div.Value).Payload.(tree.IntValuePayload))
		m := bigOf(a.Get(mod.Value).Payload.(tree.IntValuePayload))
		if y > 0 && m.Sign() < 0 {
			return false
		}
		bx, by := big.NewInt(x), big.NewInt(y)
		got := new(big.Int).Mul(by, q)
		got.Add(got, new(big.Int).Rem(bx, by))
		return got.Cmp(bx) == 0
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}

// TestPropertyShiftOverflowCollapses exercises spec.md §4.5's "shift of an
// integer by >=64 collapses to 0 or to -1 (signed right arithmetic with
// negative operand)" across random bases and random overflowing shift
// amounts.
func TestPropertyShiftOverflowCollapses(t *testing.T) {
	sem := newHIF(t)
	prop := func(x int64, extra uint8) bool {
		shift := int64(64) + int64(extra)%64 // always >= 64

		a := tree.NewArena()
		lhs := a.New(tree.KindIntValue, tree.IntValuePayload{Value: x})
		rhs := a.New(tree.KindIntValue, tree.IntValuePayload{Value: shift})
		sll, ok := Fold(a, sem, lhs, rhs, tree.OpSll, tree.NilNode)
		if !ok || bigOf(a.Get(sll.Value).Payload.(tree.IntValuePayload)).Sign() != 0 {
			return false
		}

		lhs2 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: x})
		rhs2 := a.New(tree.KindIntValue, tree.IntValuePayload{Value: shift})
		sra, ok := Fold(a, sem, lhs2, rhs2, tree.OpSra, tree.NilNode)
		if !ok {
			return false
		}
		got := bigOf(a.Get(sra.Value).Payload.(tree.IntValuePayload))
		if x < 0 {
			return got.Cmp(big.NewInt(-1)) == 0
		}
		return got.Sign() == 0
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}

func TestPropertyBitCaseEqualityIsReflexive(t *testing.T) {
	sem := newHIF(t)
	states := []tree.BitState{tree.Bit0, tree.Bit1, tree.BitX, tree.BitZ}
	prop := func(i uint8) bool {
		s := states[int(i)%len(states)]
		a := tree.NewArena()
		l := a.New(tree.KindBitValue, tree.BitValuePayload{Value: s})
		r := a.New(tree.KindBitValue, tree.BitValuePayload{Value: s})
		res, ok := Fold(a, sem, l, r, tree.OpCaseEq, tree.NilNode)
		if !ok {
			return false
		}
		return a.Get(res.Value).Payload.(tree.BoolValuePayload).Value == true
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}
