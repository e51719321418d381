// Package sortmatch implements C8 (spec.md section 4.8): a deterministic
// total order over value nodes (used to canonicalize commutative operand
// pairs, aggregate alts, and with-alts), actual-parameter reordering
// against a formal declaration list, and structural tree matching.
// Grounded on the teacher's AST equality/ordering helpers
// (internal/parser's expression comparison used by the optimizer) and on
// spec.md §4.8's hif::compare contract.
package sortmatch

import (
	"math/big"
	"sort"

	"hifcore/internal/semantics"
	"hifcore/internal/tree"
)

func bigOf(p tree.IntValuePayload) *big.Int {
	if p.Big != nil {
		return p.Big
	}
	return big.NewInt(p.Value)
}

// Compare imposes hif::compare's deterministic, type-aware total order on
// a and b: first by Kind, then structurally within each kind. It never
// panics on malformed input; unknown shapes compare by NodeID as a last
// resort so the order stays total.
func Compare(ar *tree.Arena, a, b tree.NodeID) int {
	if a == b {
		return 0
	}
	if !ar.IsLive(a) || !ar.IsLive(b) {
		return cmpUint(uint32(a), uint32(b))
	}
	na, nb := ar.Get(a), ar.Get(b)
	if na.Kind != nb.Kind {
		return cmpUint(uint32(na.Kind), uint32(nb.Kind))
	}
	switch pa := na.Payload.(type) {
	case tree.IntValuePayload:
		pb := nb.Payload.(tree.IntValuePayload)
		return cmpBigAware(pa, pb)
	case tree.BoolValuePayload:
		pb := nb.Payload.(tree.BoolValuePayload)
		return cmpBool(pa.Value, pb.Value)
	case tree.BitValuePayload:
		pb := nb.Payload.(tree.BitValuePayload)
		return cmpUint(uint32(pa.Value), uint32(pb.Value))
	case tree.StringValuePayload:
		pb := nb.Payload.(tree.StringValuePayload)
		return cmpString(pa.Value, pb.Value)
	case tree.IdentifierPayload:
		pb := nb.Payload.(tree.IdentifierPayload)
		return cmpString(pa.Name, pb.Name)
	case tree.ExpressionPayload:
		pb := nb.Payload.(tree.ExpressionPayload)
		if c := cmpUint(uint32(pa.Operator), uint32(pb.Operator)); c != 0 {
			return c
		}
		if c := Compare(ar, pa.Left, pb.Left); c != 0 {
			return c
		}
		return Compare(ar, pa.Right, pb.Right)
	default:
		// Structural fallback: compare by children, then by node identity.
		ca, cb := ar.Children(a), ar.Children(b)
		for i := 0; i < len(ca) && i < len(cb); i++ {
			if c := Compare(ar, ca[i], cb[i]); c != 0 {
				return c
			}
		}
		if len(ca) != len(cb) {
			return cmpUint(uint32(len(ca)), uint32(len(cb)))
		}
		return cmpUint(uint32(a), uint32(b))
	}
}

func cmpUint(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func cmpBigAware(a, b tree.IntValuePayload) int {
	if a.Big == nil && b.Big == nil {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		default:
			return 0
		}
	}
	return bigOf(a).Cmp(bigOf(b))
}

// CanSwap reports whether swapping a and b as a commutative expression's
// operands still types under sem — "the visitor refuses to swap branches
// when the swap would produce an untypeable expression" (spec.md §4.8).
func CanSwap(ar *tree.Arena, sem semantics.LanguageSemantics, op tree.Operator, a, b tree.NodeID) bool {
	ta, aok := inferLeafType(ar, sem, a)
	tb, bok := inferLeafType(ar, sem, b)
	if !aok || !bok {
		return true // no type information available: don't block the canonicalization
	}
	_, ok := sem.ExprType(tb, ta, op, semantics.ExprContext{}, ar)
	return ok
}

func inferLeafType(ar *tree.Arena, sem semantics.LanguageSemantics, n tree.NodeID) (tree.NodeID, bool) {
	if !ar.IsLive(n) {
		return tree.NilNode, false
	}
	t := sem.TypeForConstant(n, ar)
	return t, t != tree.NilNode
}

// SortCommutative canonicalizes operands whose operator is commutative,
// returning them in Compare order (and swapped=true iff it reordered).
func SortCommutative(ar *tree.Arena, sem semantics.LanguageSemantics, op tree.Operator, left, right tree.NodeID) (tree.NodeID, tree.NodeID, bool) {
	if !isCommutative(op) {
		return left, right, false
	}
	if Compare(ar, left, right) <= 0 {
		return left, right, false
	}
	if !CanSwap(ar, sem, op, left, right) {
		return left, right, false
	}
	return right, left, true
}

func isCommutative(op tree.Operator) bool {
	switch op {
	case tree.OpPlus, tree.OpMult, tree.OpAnd, tree.OpOr, tree.OpXor,
		tree.OpAndBool, tree.OpOrBool, tree.OpEq, tree.OpNeq, tree.OpCaseEq, tree.OpCaseNeq:
		return true
	default:
		return false
	}
}

// Formal is the minimal shape SortParameters needs from a formal
// declaration: its name and an optional default value to insert when an
// actual binding is missing.
type Formal struct {
	Name    string
	Default tree.NodeID // NilNode if the formal has no default
}

// Actual is one named-or-positional actual binding (a PortAssign,
// ParameterAssign, or TemplateParameterAssign payload reduced to this
// shape by the caller).
type Actual struct {
	Name  string // "" for a positional binding
	Value tree.NodeID
}

// SortParameters reorders actuals to match formals' declaration order,
// inserting a formal's default where no actual binds it (spec.md §4.8:
// "optionally inserting missing arguments with their default values").
// ok is false if a named actual does not match any formal, or if a formal
// is left unbound (no named or positional actual, and no default inserted).
func SortParameters(formals []Formal, actuals []Actual, insertDefaults bool) ([]tree.NodeID, bool) {
	byName := make(map[string]tree.NodeID, len(actuals))
	positional := make([]tree.NodeID, 0, len(actuals))
	for _, act := range actuals {
		if act.Name != "" {
			byName[act.Name] = act.Value
		} else {
			positional = append(positional, act.Value)
		}
	}
	for name := range byName {
		matched := false
		for _, f := range formals {
			matched = matched || f.Name == name
		}
		if !matched {
			return nil, false
		}
	}

	out := make([]tree.NodeID, 0, len(formals))
	posIdx := 0
	for _, f := range formals {
		if v, ok := byName[f.Name]; ok {
			out = append(out, v)
			continue
		}
		if posIdx < len(positional) {
			out = append(out, positional[posIdx])
			posIdx++
			continue
		}
		if insertDefaults && f.Default != tree.NilNode {
			out = append(out, f.Default)
			continue
		}
		return nil, false
	}
	return out, true
}

// MatchOptions configures MatchTrees.
type MatchOptions struct {
	// SkipRootChildCheck disables child-by-child comparison at the root of
	// each comparison, only checking the root nodes' own shape — spec.md
	// §4.8: "structural equality with child checks disabled at the root of
	// each comparison."
	SkipRootChildCheck bool
}

// MatchTrees compares reference against candidate structurally, returning
// maps from reference nodes to their matched candidate counterpart, and
// the set of reference nodes left unmatched.
func MatchTrees(ar *tree.Arena, reference, candidate tree.NodeID, opts MatchOptions) (matched map[tree.NodeID]tree.NodeID, unmatched map[tree.NodeID]struct{}) {
	matched = make(map[tree.NodeID]tree.NodeID)
	unmatched = make(map[tree.NodeID]struct{})
	matchNode(ar, reference, candidate, opts.SkipRootChildCheck, matched, unmatched)
	return matched, unmatched
}

func matchNode(ar *tree.Arena, ref, cand tree.NodeID, skipChildren bool, matched map[tree.NodeID]tree.NodeID, unmatched map[tree.NodeID]struct{}) bool {
	if ref == tree.NilNode && cand == tree.NilNode {
		return true
	}
	if ref == tree.NilNode || cand == tree.NilNode || !ar.IsLive(ref) || !ar.IsLive(cand) {
		if ref != tree.NilNode {
			unmatched[ref] = struct{}{}
		}
		return false
	}
	if ar.Get(ref).Kind != ar.Get(cand).Kind {
		unmatched[ref] = struct{}{}
		return false
	}
	matched[ref] = cand

	if skipChildren {
		return true
	}
	refChildren, candChildren := ar.Children(ref), ar.Children(cand)
	if len(refChildren) != len(candChildren) {
		unmatched[ref] = struct{}{}
		return false
	}
	ok := true
	for i := range refChildren {
		if !matchNode(ar, refChildren[i], candChildren[i], false, matched, unmatched) {
			ok = false
		}
	}
	return ok
}

// SortIndices returns a permutation of [0,n) ordered by less, stable on
// ties, without relocating the caller's underlying slice in place.
func SortIndices(n int, less func(i, j int) bool) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return less(idx[i], idx[j]) })
	return idx
}
