// Package semantics implements C1: the pluggable oracle that encapsulates
// every language-dependent type rule the rest of the engine consults. One
// concrete LanguageSemantics exists per target dialect (VHDL, Verilog,
// SystemC) plus a unifying HIF semantics; callers pick one per pass
// (spec.md section 4.1).
package semantics

import "hifcore/internal/tree"

// ExprContext carries the scope/position information some semantics checks
// need (e.g. whether a value sits in an lvalue or rvalue position, or which
// scope a visibility check should run against). The zero value is the
// default rvalue context.
type ExprContext struct {
	Scope    tree.NodeID
	LValue   bool
	InLogic  bool // true when the expression sits in a position where X/Z must be preserved
	OnShift  bool // true when checking operands of a shift operator specifically
}

// ExprTypeResult is the pair C1's expr_type returns: the operation's result
// type and the (possibly wider) internal precision type used while folding.
type ExprTypeResult struct {
	Returned          tree.NodeID
	OperationPrecision tree.NodeID
}

// CastRemoval is the result of CanRemoveCastOnOperands.
type CastRemoval struct {
	Safe        bool
	SafeOnShift bool
}

// LanguageSemantics is C1's full contract (spec.md section 4.1). Every
// operation returns an explicit absence (a false ok / zero NodeID) rather
// than panicking; callers must handle the absent outcome per spec.md
// section 7's type_failure error kind.
type LanguageSemantics interface {
	// Name identifies the dialect, e.g. "vhdl", "verilog", "systemc", "hif".
	Name() string

	// ExprType returns the result type and internal precision type for
	// applying op to t1 (and t2, for binary operators; NilNode for unary).
	ExprType(t1, t2 tree.NodeID, op tree.Operator, ctx ExprContext, a *tree.Arena) (ExprTypeResult, bool)

	// TypeForConstant returns the canonical syntactic type for a constant
	// value node cv.
	TypeForConstant(cv tree.NodeID, a *tree.Arena) tree.NodeID

	// DefaultValue returns the initial value for a data declaration of type
	// t; decl may be NilNode when no declaration context is available.
	DefaultValue(t tree.NodeID, decl tree.NodeID, a *tree.Arena) tree.NodeID

	// IsTemplateAllowedType reports whether t may be used as a template
	// parameter's native type.
	IsTemplateAllowedType(t tree.NodeID, a *tree.Arena) bool

	// GetTemplateAllowedType returns the restricted type t must be narrowed
	// to in order to be template-allowed (identity when already allowed).
	GetTemplateAllowedType(t tree.NodeID, a *tree.Arena) tree.NodeID

	// IsTypeAllowedAsBound reports whether t may appear as a Range bound; if
	// not, it returns a replacement type and true.
	IsTypeAllowedAsBound(t tree.NodeID, a *tree.Arena) (tree.NodeID, bool)

	// CanRemoveCastOnOperands decides whether a cast wrapping expr's
	// operands can be dropped without changing expr's observable result,
	// given the original and simplified operand types.
	CanRemoveCastOnOperands(expr tree.NodeID, origTypes, simplifiedTypes [2]tree.NodeID, a *tree.Arena) CastRemoval

	// CanRemoveInternalCast reports whether T1(T2(T3)) reduces to T1(T3).
	CanRemoveInternalCast(t1, t2, t3 tree.NodeID, a *tree.Arena) bool

	// CheckCondition reports whether t may stand in a boolean context.
	CheckCondition(t tree.NodeID, ctx ExprContext, a *tree.Arena) bool

	// ExplicitBoolConversion returns the rewrite needed to force v into
	// boolean position, or (NilNode, false) if v is already boolean.
	ExplicitBoolConversion(v tree.NodeID, a *tree.Arena) (tree.NodeID, bool)

	// IsEventCall identifies edge-detection builtins (event(), rising_edge(),
	// falling_edge(), ...).
	IsEventCall(fc tree.NodeID, a *tree.Arena) bool

	// GetStandardLibrary resolves a standard library by canonical name.
	GetStandardLibrary(name string) (*StandardLibrary, bool)

	// SliceTypeIsRebased reports whether slice indices on vectors are
	// zero-based in the emitted code for this dialect.
	SliceTypeIsRebased() bool
}

// StandardLibrary is the subset of a resolved standard library that C2/C7
// need: its declared view/design-unit names, used to filter standard-library
// declarations out of reference/dependency scans.
type StandardLibrary struct {
	Name        string
	DesignUnits []string
	Views       []string
}
