package semantics

import (
	"hifcore/internal/semantics/catalog"
	"hifcore/internal/tree"
)

// VerilogSemantics implements the Verilog dialect's type rules. Verilog has
// no distinct Bool type: any logic-typed condition is allowed directly.
type VerilogSemantics struct {
	common
}

func NewVerilog(cat *catalog.Catalog) *VerilogSemantics {
	return &VerilogSemantics{common: newCommon(cat)}
}

func (s *VerilogSemantics) Name() string { return "verilog" }

func (s *VerilogSemantics) SliceTypeIsRebased() bool { return false }

func (s *VerilogSemantics) IsEventCall(fc tree.NodeID, a *tree.Arena) bool {
	p, ok := a.Get(fc).Payload.(tree.FunctionCallPayload)
	if !ok {
		return false
	}
	switch p.Name {
	case "posedge", "negedge", "event":
		return true
	default:
		return false
	}
}

func (s *VerilogSemantics) CheckCondition(t tree.NodeID, ctx ExprContext, a *tree.Arena) bool {
	if t == tree.NilNode {
		return false
	}
	switch a.Get(t).Kind {
	case tree.KindTypeBool, tree.KindTypeBit, tree.KindTypeBitvector, tree.KindTypeInt:
		return true
	default:
		return false
	}
}
