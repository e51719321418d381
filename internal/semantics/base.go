package semantics

import (
	"hifcore/internal/semantics/catalog"
	"hifcore/internal/tree"
)

// common implements the dialect-independent share of LanguageSemantics. Each
// concrete dialect (VHDLSemantics, VerilogSemantics, SystemCSemantics,
// HIFSemantics) embeds common and overrides only the methods where the
// dialects genuinely differ (Name, SliceTypeIsRebased, IsEventCall,
// CheckCondition) — the same "share defaults, override the differences"
// shape as Go's embedding idiom, standing in for the source's per-language
// ILanguageSemantics subclasses.
type common struct {
	catalog *catalog.Catalog
}

func newCommon(cat *catalog.Catalog) common { return common{catalog: cat} }

func isNumericKind(k tree.Kind) bool {
	switch k {
	case tree.KindTypeInt, tree.KindTypeReal, tree.KindTypeBitvector, tree.KindTypeSigned, tree.KindTypeUnsigned, tree.KindTypeBit:
		return true
	default:
		return false
	}
}

func isBoolKind(k tree.Kind) bool { return k == tree.KindTypeBool }

func isLogicKind(k tree.Kind) bool {
	switch k {
	case tree.KindTypeBit, tree.KindTypeBitvector:
		return true
	default:
		return false
	}
}

// rank orders types by folding precision so ExprType can pick the wider
// operand type as the operation's precision type, matching the source's
// "operation_precision" notion (spec.md section 4.1).
func rank(k tree.Kind) int {
	switch k {
	case tree.KindTypeBit:
		return 0
	case tree.KindTypeBool:
		return 0
	case tree.KindTypeBitvector:
		return 1
	case tree.KindTypeSigned, tree.KindTypeUnsigned:
		return 2
	case tree.KindTypeInt:
		return 3
	case tree.KindTypeReal:
		return 4
	default:
		return -1
	}
}

func isArithmetic(op tree.Operator) bool {
	switch op {
	case tree.OpPlus, tree.OpMinus, tree.OpUnaryPlus, tree.OpUnaryMinus, tree.OpMult, tree.OpDiv, tree.OpMod, tree.OpRem:
		return true
	default:
		return false
	}
}

func isRelational(op tree.Operator) bool {
	switch op {
	case tree.OpEq, tree.OpNeq, tree.OpCaseEq, tree.OpCaseNeq, tree.OpLt, tree.OpLe, tree.OpGt, tree.OpGe:
		return true
	default:
		return false
	}
}

func isLogical(op tree.Operator) bool {
	switch op {
	case tree.OpAndBool, tree.OpOrBool, tree.OpNotBool:
		return true
	default:
		return false
	}
}

func isBitwise(op tree.Operator) bool {
	switch op {
	case tree.OpAnd, tree.OpOr, tree.OpXor, tree.OpNot:
		return true
	default:
		return false
	}
}

func isShift(op tree.Operator) bool {
	switch op {
	case tree.OpSll, tree.OpSrl, tree.OpSla, tree.OpSra, tree.OpRor, tree.OpRol:
		return true
	default:
		return false
	}
}

func isReduce(op tree.Operator) bool {
	switch op {
	case tree.OpAndReduce, tree.OpOrReduce, tree.OpXorReduce, tree.OpNandReduce, tree.OpNorReduce, tree.OpXnorReduce:
		return true
	default:
		return false
	}
}

func (c common) ExprType(t1, t2 tree.NodeID, op tree.Operator, ctx ExprContext, a *tree.Arena) (ExprTypeResult, bool) {
	if t1 == tree.NilNode {
		return ExprTypeResult{}, false
	}
	k1 := a.Get(t1).Kind
	unary := t2 == tree.NilNode

	switch {
	case isArithmetic(op):
		if !isNumericKind(k1) {
			return ExprTypeResult{}, false
		}
		if unary {
			return ExprTypeResult{Returned: t1, OperationPrecision: t1}, true
		}
		k2 := a.Get(t2).Kind
		if !isNumericKind(k2) {
			return ExprTypeResult{}, false
		}
		wide := t1
		if rank(k2) > rank(k1) {
			wide = t2
		}
		return ExprTypeResult{Returned: wide, OperationPrecision: wide}, true

	case isBitwise(op), isShift(op):
		if !isLogicKind(k1) {
			return ExprTypeResult{}, false
		}
		if unary {
			return ExprTypeResult{Returned: t1, OperationPrecision: t1}, true
		}
		k2 := a.Get(t2).Kind
		if !isLogicKind(k2) {
			return ExprTypeResult{}, false
		}
		return ExprTypeResult{Returned: t1, OperationPrecision: t1}, true

	case isReduce(op):
		if !isLogicKind(k1) {
			return ExprTypeResult{}, false
		}
		return ExprTypeResult{Returned: t1, OperationPrecision: t1}, true

	case isRelational(op):
		if unary {
			return ExprTypeResult{}, false
		}
		k2 := a.Get(t2).Kind
		if rank(k1) < 0 || rank(k2) < 0 {
			return ExprTypeResult{}, false
		}
		boolType := a.New(tree.KindTypeBool, tree.TypeBoolPayload{})
		prec := t1
		if rank(k2) > rank(k1) {
			prec = t2
		}
		return ExprTypeResult{Returned: boolType, OperationPrecision: prec}, true

	case isLogical(op):
		if !isBoolKind(k1) {
			return ExprTypeResult{}, false
		}
		if !unary {
			if !isBoolKind(a.Get(t2).Kind) {
				return ExprTypeResult{}, false
			}
		}
		return ExprTypeResult{Returned: t1, OperationPrecision: t1}, true

	case op == tree.OpConcat:
		if unary {
			return ExprTypeResult{}, false
		}
		if !isLogicKind(k1) || !isLogicKind(a.Get(t2).Kind) {
			return ExprTypeResult{}, false
		}
		return ExprTypeResult{Returned: t1, OperationPrecision: t1}, true

	default:
		return ExprTypeResult{}, false
	}
}

func (c common) TypeForConstant(cv tree.NodeID, a *tree.Arena) tree.NodeID {
	switch a.Get(cv).Kind {
	case tree.KindBitValue:
		return a.New(tree.KindTypeBit, tree.TypeBitPayload{})
	case tree.KindBitvectorValue:
		p := a.Get(cv).Payload.(tree.BitvectorValuePayload)
		left := a.New(tree.KindIntValue, tree.IntValuePayload{Value: int64(len(p.Value)) - 1})
		right := a.New(tree.KindIntValue, tree.IntValuePayload{Value: 0})
		span := tree.Range{Dir: tree.Downto, Left: left, Right: right}
		return a.New(tree.KindTypeBitvector, tree.TypeBitvectorPayload{Span: span})
	case tree.KindBoolValue:
		return a.New(tree.KindTypeBool, tree.TypeBoolPayload{})
	case tree.KindCharValue:
		return a.New(tree.KindTypeChar, tree.TypeCharPayload{})
	case tree.KindIntValue:
		return a.New(tree.KindTypeInt, tree.TypeIntPayload{Signed: true})
	case tree.KindRealValue:
		return a.New(tree.KindTypeReal, tree.TypeRealPayload{})
	case tree.KindStringValue:
		return a.New(tree.KindTypeString, tree.TypeStringPayload{})
	case tree.KindTimeValue:
		return a.New(tree.KindTypeTime, tree.TypeTimePayload{})
	default:
		return tree.NilNode
	}
}

func (c common) DefaultValue(t tree.NodeID, decl tree.NodeID, a *tree.Arena) tree.NodeID {
	switch a.Get(t).Kind {
	case tree.KindTypeBit:
		return a.New(tree.KindBitValue, tree.BitValuePayload{Value: tree.BitU})
	case tree.KindTypeBool:
		return a.New(tree.KindBoolValue, tree.BoolValuePayload{Value: false})
	case tree.KindTypeInt, tree.KindTypeSigned, tree.KindTypeUnsigned:
		return a.New(tree.KindIntValue, tree.IntValuePayload{Value: 0})
	case tree.KindTypeReal:
		return a.New(tree.KindRealValue, tree.RealValuePayload{Value: 0})
	case tree.KindTypeString:
		return a.New(tree.KindStringValue, tree.StringValuePayload{Value: ""})
	default:
		return tree.NilNode
	}
}

func (c common) IsTemplateAllowedType(t tree.NodeID, a *tree.Arena) bool {
	switch a.Get(t).Kind {
	case tree.KindTypeInt, tree.KindTypeBool, tree.KindTypeReal, tree.KindTypeString, tree.KindTypeTypeReference:
		return true
	default:
		return false
	}
}

func (c common) GetTemplateAllowedType(t tree.NodeID, a *tree.Arena) tree.NodeID {
	if c.IsTemplateAllowedType(t, a) {
		return t
	}
	return a.New(tree.KindTypeInt, tree.TypeIntPayload{Signed: true})
}

func (c common) IsTypeAllowedAsBound(t tree.NodeID, a *tree.Arena) (tree.NodeID, bool) {
	switch a.Get(t).Kind {
	case tree.KindTypeInt:
		return tree.NilNode, false
	default:
		return a.New(tree.KindTypeInt, tree.TypeIntPayload{Signed: true}), true
	}
}

func (c common) CanRemoveCastOnOperands(expr tree.NodeID, origTypes, simplifiedTypes [2]tree.NodeID, a *tree.Arena) CastRemoval {
	same := true
	for i := range origTypes {
		if origTypes[i] == tree.NilNode || simplifiedTypes[i] == tree.NilNode {
			continue
		}
		if a.Get(origTypes[i]).Kind != a.Get(simplifiedTypes[i]).Kind {
			same = false
		}
	}
	return CastRemoval{Safe: same, SafeOnShift: same}
}

func (c common) CanRemoveInternalCast(t1, t2, t3 tree.NodeID, a *tree.Arena) bool {
	if t1 == tree.NilNode || t2 == tree.NilNode || t3 == tree.NilNode {
		return false
	}
	k1, k2, k3 := a.Get(t1).Kind, a.Get(t2).Kind, a.Get(t3).Kind
	// T1(T2(T3)) ~ T1(T3) is safe when T2 is at least as wide/precise as
	// both T1 and T3 (the inner cast can't have discarded information T1
	// would also have discarded).
	return rank(k2) >= rank(k1) && rank(k2) >= rank(k3)
}

func (c common) ExplicitBoolConversion(v tree.NodeID, a *tree.Arena) (tree.NodeID, bool) {
	return tree.NilNode, false
}

func (c common) GetStandardLibrary(name string) (*StandardLibrary, bool) {
	if c.catalog == nil {
		return nil, false
	}
	lib, ok := c.catalog.Lookup(name)
	if !ok {
		return nil, false
	}
	return &StandardLibrary{Name: lib.Name, DesignUnits: lib.DesignUnits, Views: lib.Views}, true
}
