package semantics

import (
	"hifcore/internal/semantics/catalog"
	"hifcore/internal/tree"
)

// SystemCSemantics implements the SystemC (C++) dialect's type rules: the
// one most rewrites in internal/structural target. SystemC has no native
// span direction other than a rebased [N-1 downto 0] vector, and no
// `rising_edge`/`last_value` builtins of its own — those are VHDL
// attributes that MapLastValueToSystemC lowers into the
// `event()`/`last_value()` library calls this semantics recognizes instead.
type SystemCSemantics struct {
	common
}

func NewSystemC(cat *catalog.Catalog) *SystemCSemantics {
	return &SystemCSemantics{common: newCommon(cat)}
}

func (s *SystemCSemantics) Name() string { return "systemc" }

func (s *SystemCSemantics) SliceTypeIsRebased() bool { return true }

func (s *SystemCSemantics) IsEventCall(fc tree.NodeID, a *tree.Arena) bool {
	p, ok := a.Get(fc).Payload.(tree.FunctionCallPayload)
	if !ok {
		return false
	}
	switch p.Name {
	case "event", "last_value":
		return true
	default:
		return false
	}
}

func (s *SystemCSemantics) CheckCondition(t tree.NodeID, ctx ExprContext, a *tree.Arena) bool {
	if t == tree.NilNode {
		return false
	}
	switch a.Get(t).Kind {
	case tree.KindTypeBool, tree.KindTypeBit:
		return true
	default:
		return false
	}
}
