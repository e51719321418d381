package semantics

import (
	"hifcore/internal/semantics/catalog"
	"hifcore/internal/tree"
)

// VHDLSemantics implements the VHDL dialect's type rules. VHDL spans are
// written in either direction (`to`/`downto`) and are not rebased by the
// front-end; `rising_edge`/`falling_edge`/`'last_value` are VHDL-specific
// attributes that internal/structural.MapLastValueToSystemC lowers when
// targeting SystemC.
type VHDLSemantics struct {
	common
}

func NewVHDL(cat *catalog.Catalog) *VHDLSemantics {
	return &VHDLSemantics{common: newCommon(cat)}
}

func (s *VHDLSemantics) Name() string { return "vhdl" }

func (s *VHDLSemantics) SliceTypeIsRebased() bool { return false }

func (s *VHDLSemantics) IsEventCall(fc tree.NodeID, a *tree.Arena) bool {
	p, ok := a.Get(fc).Payload.(tree.FunctionCallPayload)
	if !ok {
		return false
	}
	switch p.Name {
	case "rising_edge", "falling_edge", "event":
		return true
	default:
		return false
	}
}

func (s *VHDLSemantics) CheckCondition(t tree.NodeID, ctx ExprContext, a *tree.Arena) bool {
	if t == tree.NilNode {
		return false
	}
	// std_logic (Bit) is a legal VHDL condition only via an explicit '1'
	// comparison; plain Bool is always legal.
	return a.Get(t).Kind == tree.KindTypeBool
}
