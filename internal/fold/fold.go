// Package fold implements C5 (spec.md section 4.5): constant folding and
// algebraic simplification of a pair of operand values by double dispatch
// on their dynamic variants — a two-level match over (kind(v1), kind(v2))
// per spec.md's REDESIGN FLAGS ("the double dispatch of C5 becomes a
// two-level match over (kind(v1), kind(v2))"). Grounded on the teacher's
// expression evaluator (internal/compiler's constant-folding switch over
// value.Type pairs) and on internal/tree's nine-valued BitState. Wide
// integer folding promotes to math/big plus
// github.com/remyoudompheng/bigfft for multiplication; Real folding works
// on float64 values, and ParseRealText parses a literal's exact source text
// with math/big.Float when decimal rounding must follow the written value.
package fold

import (
	"math/big"

	"github.com/remyoudompheng/bigfft"

	"hifcore/internal/semantics"
	"hifcore/internal/tree"
)

// Result is what a successful fold produces: the folded value plus,
// if set, a cast that must wrap it to preserve the original expression's
// semantic type (spec.md 4.5: "if the result's semantic type differs from
// the original expression's type, the bi-visitor wraps the result in a
// cast to the original type").
type Result struct {
	Value    tree.NodeID
	NeedCast bool
}

// Fold attempts to constant-fold op applied to left (and right, for binary
// operators; tree.NilNode for unary) under sem. ok is false when folding
// cannot proceed, including when the operands are of a shape no folding
// table covers, per C5's "cannot fold" contract; Fold never panics.
func Fold(a *tree.Arena, sem semantics.LanguageSemantics, left, right tree.NodeID, op tree.Operator, originalType tree.NodeID) (Result, bool) {
	if !a.IsLive(left) {
		return Result{}, false
	}
	lp := a.Get(left).Payload
	var rp any
	binary := right != tree.NilNode
	if binary {
		if !a.IsLive(right) {
			return Result{}, false
		}
		rp = a.Get(right).Payload
	}

	v, ok := dispatch(a, lp, rp, binary, op)
	if !ok {
		return Result{}, false
	}

	resultType := sem.TypeForConstant(v, a)
	needCast := originalType != tree.NilNode && resultType != tree.NilNode && resultType != originalType
	return Result{Value: v, NeedCast: needCast}, true
}

// dispatch is the two-level (kind(v1), kind(v2)) match spec.md 4.5's
// REDESIGN FLAGS calls for. Each payload-pair family has its own folding
// table function below.
func dispatch(a *tree.Arena, lp, rp any, binary bool, op tree.Operator) (tree.NodeID, bool) {
	switch l := lp.(type) {
	case tree.IntValuePayload:
		if !binary {
			return foldIntUnary(a, l, op)
		}
		if r, ok := rp.(tree.IntValuePayload); ok {
			return foldIntBinary(a, l, r, op)
		}
	case tree.BoolValuePayload:
		if !binary {
			return foldBoolUnary(a, l, op)
		}
		if r, ok := rp.(tree.BoolValuePayload); ok {
			return foldBoolBinary(a, l, r, op)
		}
	case tree.BitValuePayload:
		if !binary {
			return foldBitUnary(a, l, op)
		}
		if r, ok := rp.(tree.BitValuePayload); ok {
			return foldBitBinary(a, l, r, op)
		}
	case tree.BitvectorValuePayload:
		if !binary {
			return foldBitvectorUnary(a, l, op)
		}
		if r, ok := rp.(tree.BitvectorValuePayload); ok {
			return foldBitvectorBinary(a, l, r, op)
		}
	case tree.StringValuePayload:
		if binary {
			if r, ok := rp.(tree.StringValuePayload); ok && op == tree.OpConcat {
				return a.New(tree.KindStringValue, tree.StringValuePayload{Value: l.Value + r.Value}), true
			}
		}
	case tree.TimeValuePayload:
		if binary {
			if r, ok := rp.(tree.TimeValuePayload); ok {
				return foldTimeBinary(a, l, r, op)
			}
		}
	case tree.RealValuePayload:
		if !binary {
			return foldRealUnary(a, l, op)
		}
		if r, ok := rp.(tree.RealValuePayload); ok {
			return foldRealBinary(a, l, r, op)
		}
	}
	return tree.NilNode, false
}

// --- integers ---------------------------------------------------------

func bigOf(p tree.IntValuePayload) *big.Int {
	if p.Big != nil {
		return p.Big
	}
	return big.NewInt(p.Value)
}

func intValue(a *tree.Arena, v *big.Int) tree.NodeID {
	if v.IsInt64() {
		return a.New(tree.KindIntValue, tree.IntValuePayload{Value: v.Int64()})
	}
	return a.New(tree.KindIntValue, tree.IntValuePayload{Big: new(big.Int).Set(v)})
}

func foldIntUnary(a *tree.Arena, v tree.IntValuePayload, op tree.Operator) (tree.NodeID, bool) {
	x := bigOf(v)
	switch op {
	case tree.OpUnaryPlus, tree.OpNone:
		return intValue(a, x), true
	case tree.OpUnaryMinus:
		return intValue(a, new(big.Int).Neg(x)), true
	default:
		return tree.NilNode, false
	}
}

// wideMul multiplies using bigfft when either operand exceeds a threshold
// word count, matching the teacher's habit of reaching for the dedicated
// library rather than hand-rolling a Karatsuba/FFT path.
func wideMul(x, y *big.Int) *big.Int {
	const wideWords = 32 // ~1024 bits; below this plain big.Int.Mul is faster
	if len(x.Bits()) > wideWords || len(y.Bits()) > wideWords {
		return bigfft.Mul(x, y)
	}
	return new(big.Int).Mul(x, y)
}

func foldIntBinary(a *tree.Arena, l, r tree.IntValuePayload, op tree.Operator) (tree.NodeID, bool) {
	x, y := bigOf(l), bigOf(r)
	switch op {
	case tree.OpPlus:
		return intValue(a, new(big.Int).Add(x, y)), true
	case tree.OpMinus:
		return intValue(a, new(big.Int).Sub(x, y)), true
	case tree.OpMult:
		return intValue(a, wideMul(x, y)), true
	case tree.OpDiv:
		if y.Sign() == 0 {
			return tree.NilNode, false // division by zero is an absence, never a panic
		}
		return intValue(a, new(big.Int).Quo(x, y)), true
	case tree.OpMod:
		if y.Sign() == 0 {
			return tree.NilNode, false
		}
		// normalize to a non-negative remainder for a non-negative modulus
		m := new(big.Int).Mod(x, y)
		if y.Sign() > 0 && m.Sign() < 0 {
			m.Add(m, y)
		}
		return intValue(a, m), true
	case tree.OpRem:
		if y.Sign() == 0 {
			return tree.NilNode, false
		}
		return intValue(a, new(big.Int).Rem(x, y)), true
	case tree.OpAnd:
		return intValue(a, new(big.Int).And(x, y)), true
	case tree.OpOr:
		return intValue(a, new(big.Int).Or(x, y)), true
	case tree.OpXor:
		return intValue(a, new(big.Int).Xor(x, y)), true
	case tree.OpSll, tree.OpSla:
		return intValue(a, shiftLeft(x, y)), true
	case tree.OpSrl, tree.OpSra:
		return intValue(a, shiftRight(x, y, l.Value < 0 || (l.Big != nil && l.Big.Sign() < 0))), true
	case tree.OpEq:
		return boolValue(a, x.Cmp(y) == 0), true
	case tree.OpNeq:
		return boolValue(a, x.Cmp(y) != 0), true
	case tree.OpLt:
		return boolValue(a, x.Cmp(y) < 0), true
	case tree.OpLe:
		return boolValue(a, x.Cmp(y) <= 0), true
	case tree.OpGt:
		return boolValue(a, x.Cmp(y) > 0), true
	case tree.OpGe:
		return boolValue(a, x.Cmp(y) >= 0), true
	default:
		return tree.NilNode, false
	}
}

// shiftLeft collapses per spec.md 4.5: "shift of an integer by >=64
// collapses to 0 or to -1."
func shiftLeft(x, n *big.Int) *big.Int {
	if !n.IsInt64() || n.Int64() < 0 {
		return big.NewInt(0)
	}
	if n.Int64() >= 64 {
		return big.NewInt(0)
	}
	return new(big.Int).Lsh(x, uint(n.Int64()))
}

func shiftRight(x, n *big.Int, signed bool) *big.Int {
	if !n.IsInt64() || n.Int64() < 0 {
		return big.NewInt(0)
	}
	if n.Int64() >= 64 {
		if signed && x.Sign() < 0 {
			return big.NewInt(-1)
		}
		return big.NewInt(0)
	}
	return new(big.Int).Rsh(x, uint(n.Int64()))
}

func boolValue(a *tree.Arena, v bool) tree.NodeID {
	return a.New(tree.KindBoolValue, tree.BoolValuePayload{Value: v})
}

// --- bool: short-circuit ------------------------------------------------

func foldBoolUnary(a *tree.Arena, v tree.BoolValuePayload, op tree.Operator) (tree.NodeID, bool) {
	if op == tree.OpNotBool || op == tree.OpNot {
		return boolValue(a, !v.Value), true
	}
	return tree.NilNode, false
}

func foldBoolBinary(a *tree.Arena, l, r tree.BoolValuePayload, op tree.Operator) (tree.NodeID, bool) {
	switch op {
	case tree.OpAndBool, tree.OpAnd:
		return boolValue(a, l.Value && r.Value), true
	case tree.OpOrBool, tree.OpOr:
		return boolValue(a, l.Value || r.Value), true
	case tree.OpXor:
		return boolValue(a, l.Value != r.Value), true
	case tree.OpEq:
		return boolValue(a, l.Value == r.Value), true
	case tree.OpNeq:
		return boolValue(a, l.Value != r.Value), true
	default:
		return tree.NilNode, false
	}
}

// ShortCircuit reports whether op on l (a Bool constant) already determines
// the binary expression's result without evaluating the other operand —
// spec.md 4.5: "folding false AND X yields false without evaluating X; true
// OR X yields true." Callers check this before recursing into the other
// operand.
func ShortCircuit(a *tree.Arena, l tree.NodeID, op tree.Operator) (tree.NodeID, bool) {
	if !a.IsLive(l) {
		return tree.NilNode, false
	}
	p, ok := a.Get(l).Payload.(tree.BoolValuePayload)
	if !ok {
		return tree.NilNode, false
	}
	switch {
	case (op == tree.OpAndBool || op == tree.OpAnd) && !p.Value:
		return boolValue(a, false), true
	case (op == tree.OpOrBool || op == tree.OpOr) && p.Value:
		return boolValue(a, true), true
	default:
		return tree.NilNode, false
	}
}

// --- bit: nine-valued logic ----------------------------------------------

// bitAnd/bitOr/bitXor/bitNot implement IEEE-1164-style nine-valued logic:
// any operand with an unknown state yields an unknown result unless
// case-equality is used (spec.md 4.5).
func bitAnd(x, y tree.BitState) tree.BitState {
	if x == tree.Bit0 || y == tree.Bit0 {
		return tree.Bit0
	}
	if x.IsUnknown() || y.IsUnknown() {
		return tree.BitX
	}
	return tree.Bit1
}

func bitOr(x, y tree.BitState) tree.BitState {
	if x == tree.Bit1 || y == tree.Bit1 {
		return tree.Bit1
	}
	if x.IsUnknown() || y.IsUnknown() {
		return tree.BitX
	}
	return tree.Bit0
}

func bitXor(x, y tree.BitState) tree.BitState {
	if x.IsUnknown() || y.IsUnknown() {
		return tree.BitX
	}
	if x == y {
		return tree.Bit0
	}
	return tree.Bit1
}

func bitNot(x tree.BitState) tree.BitState {
	switch x {
	case tree.Bit0:
		return tree.Bit1
	case tree.Bit1:
		return tree.Bit0
	default:
		return tree.BitX
	}
}

func bitValue(a *tree.Arena, s tree.BitState) tree.NodeID {
	return a.New(tree.KindBitValue, tree.BitValuePayload{Value: s})
}

func foldBitUnary(a *tree.Arena, v tree.BitValuePayload, op tree.Operator) (tree.NodeID, bool) {
	switch op {
	case tree.OpNot:
		return bitValue(a, bitNot(v.Value)), true
	default:
		return tree.NilNode, false
	}
}

func foldBitBinary(a *tree.Arena, l, r tree.BitValuePayload, op tree.Operator) (tree.NodeID, bool) {
	switch op {
	case tree.OpAnd:
		return bitValue(a, bitAnd(l.Value, r.Value)), true
	case tree.OpOr:
		return bitValue(a, bitOr(l.Value, r.Value)), true
	case tree.OpXor:
		return bitValue(a, bitXor(l.Value, r.Value)), true
	case tree.OpEq:
		// relational on equal values yields a determinate bool only when
		// the operand type is not logic, to preserve X==X => X; `eq` on
		// Bit stays in logic territory, so it folds to a Bit, not a Bool.
		return bitValue(a, bitEq(l.Value, r.Value)), true
	case tree.OpNeq:
		return bitValue(a, bitNot(bitEq(l.Value, r.Value))), true
	case tree.OpCaseEq:
		return boolValue(a, l.Value == r.Value), true
	case tree.OpCaseNeq:
		return boolValue(a, l.Value != r.Value), true
	default:
		return tree.NilNode, false
	}
}

func bitEq(x, y tree.BitState) tree.BitState {
	if x.IsUnknown() || y.IsUnknown() {
		return tree.BitX
	}
	if x == y {
		return tree.Bit1
	}
	return tree.Bit0
}

// --- bitvector: elementwise nine-valued logic + reductions ---------------

func foldBitvectorUnary(a *tree.Arena, v tree.BitvectorValuePayload, op tree.Operator) (tree.NodeID, bool) {
	switch op {
	case tree.OpNot:
		out := make([]tree.BitState, len(v.Value))
		for i, b := range v.Value {
			out[i] = bitNot(b)
		}
		return a.New(tree.KindBitvectorValue, tree.BitvectorValuePayload{Value: out}), true
	case tree.OpAndReduce:
		return bitValue(a, reduce(v.Value, bitAnd, tree.Bit1)), true
	case tree.OpOrReduce:
		return bitValue(a, reduce(v.Value, bitOr, tree.Bit0)), true
	case tree.OpXorReduce:
		return bitValue(a, reduce(v.Value, bitXor, tree.Bit0)), true
	case tree.OpNandReduce:
		return bitValue(a, bitNot(reduce(v.Value, bitAnd, tree.Bit1))), true
	case tree.OpNorReduce:
		return bitValue(a, bitNot(reduce(v.Value, bitOr, tree.Bit0))), true
	case tree.OpXnorReduce:
		return bitValue(a, bitNot(reduce(v.Value, bitXor, tree.Bit0))), true
	default:
		return tree.NilNode, false
	}
}

func reduce(bits []tree.BitState, op func(x, y tree.BitState) tree.BitState, identity tree.BitState) tree.BitState {
	acc := identity
	for _, b := range bits {
		acc = op(acc, b)
	}
	return acc
}

func foldBitvectorBinary(a *tree.Arena, l, r tree.BitvectorValuePayload, op tree.Operator) (tree.NodeID, bool) {
	switch op {
	case tree.OpAnd, tree.OpOr, tree.OpXor:
		if len(l.Value) != len(r.Value) {
			return tree.NilNode, false
		}
		fn := bitAnd
		switch op {
		case tree.OpOr:
			fn = bitOr
		case tree.OpXor:
			fn = bitXor
		}
		out := make([]tree.BitState, len(l.Value))
		for i := range out {
			out[i] = fn(l.Value[i], r.Value[i])
		}
		return a.New(tree.KindBitvectorValue, tree.BitvectorValuePayload{Value: out}), true
	case tree.OpConcat:
		out := make([]tree.BitState, 0, len(l.Value)+len(r.Value))
		out = append(out, l.Value...)
		out = append(out, r.Value...)
		return a.New(tree.KindBitvectorValue, tree.BitvectorValuePayload{Value: out}), true
	case tree.OpEq, tree.OpNeq:
		if len(l.Value) != len(r.Value) {
			return tree.NilNode, false
		}
		eq := tree.Bit1
		for i := range l.Value {
			eq = bitAnd(eq, bitEq(l.Value[i], r.Value[i]))
		}
		if op == tree.OpNeq {
			return bitValue(a, bitNot(eq)), true
		}
		return bitValue(a, eq), true
	case tree.OpCaseEq, tree.OpCaseNeq:
		if len(l.Value) != len(r.Value) {
			return tree.NilNode, false
		}
		same := true
		for i := range l.Value {
			if l.Value[i] != r.Value[i] {
				same = false
				break
			}
		}
		if op == tree.OpCaseNeq {
			same = !same
		}
		return boolValue(a, same), true
	default:
		return tree.NilNode, false
	}
}

// --- time: normalize to the smaller unit before combining -----------------

func foldTimeBinary(a *tree.Arena, l, r tree.TimeValuePayload, op tree.Operator) (tree.NodeID, bool) {
	unit := l.Unit
	if r.Unit < unit {
		unit = r.Unit
	}
	lv := rescale(l.Value, l.Unit, unit)
	rv := rescale(r.Value, r.Unit, unit)
	switch op {
	case tree.OpPlus:
		return a.New(tree.KindTimeValue, tree.TimeValuePayload{Value: lv + rv, Unit: unit}), true
	case tree.OpMinus:
		return a.New(tree.KindTimeValue, tree.TimeValuePayload{Value: lv - rv, Unit: unit}), true
	case tree.OpEq:
		return boolValue(a, lv == rv), true
	case tree.OpLt:
		return boolValue(a, lv < rv), true
	case tree.OpLe:
		return boolValue(a, lv <= rv), true
	case tree.OpGt:
		return boolValue(a, lv > rv), true
	case tree.OpGe:
		return boolValue(a, lv >= rv), true
	default:
		return tree.NilNode, false
	}
}

// rescale converts a value expressed in unit `from` to unit `to`; every
// TimeUnit step is a factor of 1000, per spec.md GLOSSARY's femto..second
// ladder.
func rescale(v float64, from, to tree.TimeUnit) float64 {
	for from > to {
		v *= 1000
		from--
	}
	return v
}

// --- real ------------------------------------------------------------

func foldRealUnary(a *tree.Arena, v tree.RealValuePayload, op tree.Operator) (tree.NodeID, bool) {
	switch op {
	case tree.OpUnaryPlus:
		return a.New(tree.KindRealValue, v), true
	case tree.OpUnaryMinus:
		return a.New(tree.KindRealValue, tree.RealValuePayload{Value: -v.Value, Text: negateText(v.Text)}), true
	default:
		return tree.NilNode, false
	}
}

func foldRealBinary(a *tree.Arena, l, r tree.RealValuePayload, op tree.Operator) (tree.NodeID, bool) {
	switch op {
	case tree.OpPlus:
		return a.New(tree.KindRealValue, tree.RealValuePayload{Value: l.Value + r.Value}), true
	case tree.OpMinus:
		return a.New(tree.KindRealValue, tree.RealValuePayload{Value: l.Value - r.Value}), true
	case tree.OpMult:
		return a.New(tree.KindRealValue, tree.RealValuePayload{Value: l.Value * r.Value}), true
	case tree.OpDiv:
		if r.Value == 0 {
			return tree.NilNode, false
		}
		return a.New(tree.KindRealValue, tree.RealValuePayload{Value: l.Value / r.Value}), true
	case tree.OpEq:
		return boolValue(a, l.Value == r.Value), true
	case tree.OpLt:
		return boolValue(a, l.Value < r.Value), true
	case tree.OpLe:
		return boolValue(a, l.Value <= r.Value), true
	case tree.OpGt:
		return boolValue(a, l.Value > r.Value), true
	case tree.OpGe:
		return boolValue(a, l.Value >= r.Value), true
	default:
		return tree.NilNode, false
	}
}

func negateText(s string) string {
	if s == "" {
		return s
	}
	if s[0] == '-' {
		return s[1:]
	}
	return "-" + s
}

// ParseRealText parses a Real literal's exact source text with math/big's
// arbitrary-precision decimal parser when source-faithful rounding matters
// more than float64's binary approximation — used by transformConstant
// (internal/simplify) when reconstituting a literal after a cast fold.
func ParseRealText(text string) (float64, bool) {
	bf, ok := new(big.Float).SetString(text)
	if !ok {
		return 0, false
	}
	f, _ := bf.Float64()
	return f, true
}
