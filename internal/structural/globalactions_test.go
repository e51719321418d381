package structural

import (
	"testing"

	"hifcore/internal/tree"
)

func TestTransformGlobalActionsLiftsAssignIntoStateTable(t *testing.T) {
	a := tree.NewArena()
	sig := a.New(tree.KindSignal, tree.SignalPayload{})
	{
		sp := a.Get(sig).Payload.(tree.SignalPayload)
		sp.Name = "en"
		a.Get(sig).Payload = sp
	}

	target := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "out"})
	source := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "en"})
	assign := a.New(tree.KindAssign, tree.AssignPayload{Target: target, Source: source})
	a.Attach(assign, target)
	a.Attach(assign, source)

	ga := a.New(tree.KindGlobalAction, tree.GlobalActionPayload{Actions: tree.BList{assign}})
	a.Attach(ga, assign)

	contents := a.New(tree.KindContents, tree.ContentsPayload{
		Declarations:  tree.BList{sig},
		GlobalActions: tree.BList{ga},
	})
	a.Attach(contents, sig)
	a.Attach(contents, ga)

	p := newPass(t, a)
	p.TransformGlobalActions(contents, TransformGlobalActionsOptions{})

	cp := a.Get(contents).Payload.(tree.ContentsPayload)
	if len(cp.GlobalActions) != 0 {
		t.Fatalf("GlobalActions after lift = %d, want 0", len(cp.GlobalActions))
	}
	if len(cp.StateTables) != 1 {
		t.Fatalf("StateTables after lift = %d, want 1", len(cp.StateTables))
	}

	stp := a.Get(cp.StateTables[0]).Payload.(tree.StateTablePayload)
	if len(stp.Sensitivity) != 1 {
		t.Fatalf("sensitivity = %d entries, want 1 (the signal read on the RHS)", len(stp.Sensitivity))
	}
	ip := a.Get(stp.Sensitivity[0]).Payload.(tree.IdentifierPayload)
	if ip.Name != "en" {
		t.Fatalf("sensitivity entry name = %q, want %q", ip.Name, "en")
	}
	if len(stp.States) != 1 {
		t.Fatalf("lifted state table has %d states, want 1", len(stp.States))
	}
	state := a.Get(stp.States[0]).Payload.(tree.StatePayload)
	if len(state.Actions) != 1 || state.Actions[0] != assign {
		t.Fatalf("lifted state's actions = %v, want the original assign %d", state.Actions, assign)
	}
}

func TestTransformGlobalActionsKeepsMacroProcedureCall(t *testing.T) {
	a := tree.NewArena()
	proc := a.New(tree.KindProcedure, tree.ProcedurePayload{})
	{
		pp := a.Get(proc).Payload.(tree.ProcedurePayload)
		pp.Name = "report_macro"
		pp.Macro = true
		a.Get(proc).Payload = pp
	}

	call := a.New(tree.KindProcedureCallStmt, tree.ProcedureCallStmtPayload{Name: "report_macro"})
	ga := a.New(tree.KindGlobalAction, tree.GlobalActionPayload{Actions: tree.BList{call}})
	a.Attach(ga, call)

	contents := a.New(tree.KindContents, tree.ContentsPayload{
		Declarations:  tree.BList{proc},
		GlobalActions: tree.BList{ga},
	})
	a.Attach(contents, proc)
	a.Attach(contents, ga)

	entity := a.New(tree.KindEntity, tree.EntityPayload{})
	vpay := tree.ViewPayload{Entity: entity, Contents: contents}
	vpay.Name = "V"
	view := a.New(tree.KindView, vpay)
	a.Attach(view, entity)
	a.Attach(view, contents)

	dup := tree.DesignUnitPayload{Name: "V", Views: tree.BList{view}}
	du := a.New(tree.KindDesignUnit, dup)
	a.Attach(du, view)

	root := a.New(tree.KindSystem, tree.SystemPayload{DesignUnits: tree.BList{du}})
	a.Attach(root, du)

	p := newPass(t, a)
	p.TransformGlobalActions(root, TransformGlobalActionsOptions{})

	cp := a.Get(contents).Payload.(tree.ContentsPayload)
	if len(cp.GlobalActions) != 1 {
		t.Fatalf("GlobalActions after pass = %d, want 1 (macro call kept in place)", len(cp.GlobalActions))
	}
	if len(cp.StateTables) != 0 {
		t.Fatalf("StateTables after pass = %d, want 0", len(cp.StateTables))
	}
}
