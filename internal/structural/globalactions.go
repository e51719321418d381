package structural

import (
	"hifcore/internal/reference"
	"hifcore/internal/tree"
)

// TransformGlobalActionsOptions configures TransformGlobalActions — spec.md
// 4.7.6.
type TransformGlobalActionsOptions struct {
	// AddVariablesInSensitivity includes variables read on a lifted
	// assignment's right-hand side in the generated process's sensitivity
	// list, not just signals and ports.
	AddVariablesInSensitivity bool
}

// TransformGlobalActions lifts every top-level assignment inside a
// GlobalAction into its own single-state StateTable, sensitized on the
// identifiers its right-hand side reads (Member/Slice/FieldReference chains
// contribute only their root identifier). A procedure call is left in place
// only when it resolves to a MACRO-kind procedure; original_source treats
// any other non-assignment action as an error, but this lifts it the same
// as an assignment instead (with no sensitivity list, since the spec gives
// no read-set for an opaque call) rather than failing the whole pass over
// one unexpected action. Grounded on
// original_source/src/manipulation/transformGlobalActions.cpp.
func (p *Pass) TransformGlobalActions(root tree.NodeID, opts TransformGlobalActionsOptions) {
	a := p.Arena
	var containers []tree.NodeID
	walk(a, root, func(n tree.NodeID) {
		if _, ok := a.Get(n).Payload.(tree.ContentsPayload); ok {
			containers = append(containers, n)
		}
	})
	for _, c := range containers {
		p.liftGlobalActions(root, c, opts)
	}
	p.Refs.ResetDeclarations(root)
	p.Types.ResetTypes(root, false)
}

func (p *Pass) liftGlobalActions(root, contents tree.NodeID, opts TransformGlobalActionsOptions) {
	a := p.Arena
	cp := a.Get(contents).Payload.(tree.ContentsPayload)
	if len(cp.GlobalActions) == 0 {
		return
	}

	var keptGlobalActions tree.BList
	var newStateTables []tree.NodeID
	changed := false

	for _, ga := range cp.GlobalActions {
		gap, ok := a.Get(ga).Payload.(tree.GlobalActionPayload)
		if !ok {
			keptGlobalActions = append(keptGlobalActions, ga)
			continue
		}

		var keptActions tree.BList
		for _, action := range gap.Actions {
			if p.isMacroProcedureCall(root, action) {
				keptActions = append(keptActions, action)
				continue
			}
			changed = true
			a.Detach(action)
			newStateTables = append(newStateTables, p.liftActionToStateTable(action, opts.AddVariablesInSensitivity))
		}

		if len(keptActions) == len(gap.Actions) {
			keptGlobalActions = append(keptGlobalActions, ga)
			continue
		}
		if len(keptActions) == 0 {
			a.Detach(ga)
			a.Remove(ga)
			continue
		}
		gap.Actions = keptActions
		a.Get(ga).Payload = gap
		a.Bump(ga)
		keptGlobalActions = append(keptGlobalActions, ga)
	}

	if !changed {
		return
	}
	cp.GlobalActions = keptGlobalActions
	cp.StateTables = append(cp.StateTables, newStateTables...)
	a.Get(contents).Payload = cp
	for _, st := range newStateTables {
		a.Attach(contents, st)
	}
	a.Bump(contents)
	a.Flush()
}

func (p *Pass) liftActionToStateTable(action tree.NodeID, addVariables bool) tree.NodeID {
	a := p.Arena
	state := a.New(tree.KindState, tree.StatePayload{Name: "s0", Actions: tree.BList{action}})
	a.Attach(state, action)

	sens := p.collectSensitivity(action, addVariables)
	name := p.Fresh.Fresh("global_action")
	st := a.New(tree.KindStateTable, tree.StateTablePayload{Name: name, Sensitivity: sens, States: tree.BList{state}})
	a.Attach(st, state)
	for _, s := range sens {
		a.Attach(st, s)
	}
	return st
}

// collectSensitivity reads an assignment's right-hand side (an
// AssignPayload's Source; any other statement kind yields no sensitivity,
// matching the spec's silence on opaque-call read sets) and returns one
// fresh identifier per distinct signal/port read, plus variables too when
// addVariables is set.
func (p *Pass) collectSensitivity(action tree.NodeID, addVariables bool) []tree.NodeID {
	a := p.Arena
	assign, ok := a.Get(action).Payload.(tree.AssignPayload)
	if !ok {
		return nil
	}

	var order []tree.NodeID
	seenRoot := make(map[tree.NodeID]bool)
	gatherSensitivityRoots(a, assign.Source, seenRoot, &order)

	var sens []tree.NodeID
	seenDecl := make(map[tree.NodeID]bool)
	for _, root := range order {
		name, ok := a.Get(root).Payload.(tree.IdentifierPayload)
		if !ok {
			continue
		}
		decl, ok := p.Refs.GetDeclaration(root, p.Sem, reference.Options{})
		if !ok {
			continue
		}
		switch a.Get(decl).Payload.(type) {
		case tree.VariablePayload:
			if !addVariables {
				continue
			}
		case tree.SignalPayload, tree.PortPayload:
		default:
			continue
		}
		if seenDecl[decl] {
			continue
		}
		seenDecl[decl] = true
		sens = append(sens, a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: name.Name}))
	}
	return sens
}

// gatherSensitivityRoots walks n top-down, recording the root identifier of
// every value read: an Identifier directly, or — without descending into
// its prefix chain or index expressions — the root identifier of a
// Member/Slice/FieldReference.
func gatherSensitivityRoots(a *tree.Arena, n tree.NodeID, seen map[tree.NodeID]bool, order *[]tree.NodeID) {
	if n == tree.NilNode || !a.IsLive(n) {
		return
	}
	switch a.Get(n).Payload.(type) {
	case tree.MemberPayload, tree.SlicePayload, tree.FieldReferencePayload:
		root := rootIdentifier(a, n)
		if !seen[root] {
			seen[root] = true
			*order = append(*order, root)
		}
		return
	case tree.IdentifierPayload:
		if !seen[n] {
			seen[n] = true
			*order = append(*order, n)
		}
		return
	}
	for _, c := range a.Children(n) {
		gatherSensitivityRoots(a, c, seen, order)
	}
}

// isMacroProcedureCall reports whether action is a ProcedureCallStmt whose
// name resolves to a Procedure declared MACRO under root.
// ProcedureCallStmtPayload carries only a callee name, not a resolvable
// symbol node, so this searches by name directly rather than through
// GetDeclaration's scope walk — an approximation that assumes distinct
// procedures under one root don't share a name.
func (p *Pass) isMacroProcedureCall(root, action tree.NodeID) bool {
	a := p.Arena
	pc, ok := a.Get(action).Payload.(tree.ProcedureCallStmtPayload)
	if !ok {
		return false
	}
	found := false
	walk(a, root, func(n tree.NodeID) {
		if found {
			return
		}
		if pp, ok := a.Get(n).Payload.(tree.ProcedurePayload); ok && pp.Name == pc.Name && pp.Macro {
			found = true
		}
	})
	return found
}
