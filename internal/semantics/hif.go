package semantics

import (
	"hifcore/internal/semantics/catalog"
	"hifcore/internal/tree"
)

// HIFSemantics is the unifying, dialect-neutral semantics: the one used by
// passes that operate across VHDL/Verilog/SystemC subtrees in the same
// design (spec.md section 4.1: "a unifying HIF semantics"). Like every
// dialect, it takes its defaults from the embedded common (base.go).
type HIFSemantics struct {
	common
}

// NewHIF builds a HIFSemantics backed by cat (may be nil to disable
// GetStandardLibrary).
func NewHIF(cat *catalog.Catalog) *HIFSemantics {
	return &HIFSemantics{common: newCommon(cat)}
}

func (s *HIFSemantics) Name() string { return "hif" }

func (s *HIFSemantics) SliceTypeIsRebased() bool { return true }

func (s *HIFSemantics) IsEventCall(fc tree.NodeID, a *tree.Arena) bool {
	p, ok := a.Get(fc).Payload.(tree.FunctionCallPayload)
	if !ok {
		return false
	}
	switch p.Name {
	case "event", "rising_edge", "falling_edge":
		return true
	default:
		return false
	}
}

func (s *HIFSemantics) CheckCondition(t tree.NodeID, ctx ExprContext, a *tree.Arena) bool {
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
