package structural

import (
	"fmt"

	"hifcore/internal/reference"
	"hifcore/internal/tree"
)

// FixMultipleSignalPortAssignsOptions selects which of the four ordered
// sub-fixes FixMultipleSignalPortAssigns runs — spec.md 4.7.1. Three are
// selectable; the mspw sensitivity fix (step 3) always runs.
type FixMultipleSignalPortAssignsOptions struct {
	FixMultipleWritings       bool
	FixPartialWritings        bool
	FixSubrangesInSensitivity bool
}

// DefaultFixMultipleSignalPortAssignsOptions matches original_source's
// default flags: both writer fixes on, subrange-sensitivity normalization
// off (it changes observable sensitivity lists, so callers opt in).
func DefaultFixMultipleSignalPortAssignsOptions() FixMultipleSignalPortAssignsOptions {
	return FixMultipleSignalPortAssignsOptions{
		FixMultipleWritings: true,
		FixPartialWritings:  true,
	}
}

// FixMultipleSignalPortAssigns runs the four sub-fixes in the order
// original_source/src/manipulation/fixMultipleSignalPortAssigns.cpp
// documents: subrange sensitivity normalization, partial-write flattening
// into a scoped support variable, mspw support-signal introduction for any
// subrange entry still left in a sensitivity list, and finally splitting a
// cross-process multi-write signal onto one mspw signal per writer plus a
// composing updater process.
func (p *Pass) FixMultipleSignalPortAssigns(root tree.NodeID, opts FixMultipleSignalPortAssignsOptions) {
	tables := p.collectStateTables(root)
	if opts.FixSubrangesInSensitivity {
		p.fixSubrangeSensitivity(tables)
	}
	if opts.FixPartialWritings {
		p.fixPartialWritings(tables)
	}
	p.fixSensitivityMSPW(tables)
	if opts.FixMultipleWritings {
		p.fixCrossProcessMultiWrite(tables)
	}
	p.Refs.ResetDeclarations(root)
	p.Types.ResetTypes(root, false)
}

func (p *Pass) collectStateTables(root tree.NodeID) []tree.NodeID {
	var out []tree.NodeID
	walk(p.Arena, root, func(n tree.NodeID) {
		if st, ok := p.Arena.Get(n).Payload.(tree.StateTablePayload); ok && !st.Standard {
			out = append(out, n)
		}
	})
	return out
}

// fixSubrangeSensitivity replaces any Member/Slice/FieldReference entry in
// a state table's sensitivity list with the whole signal it prefixes,
// warning once per signal — spec.md 4.7.1 step 1.
func (p *Pass) fixSubrangeSensitivity(tables []tree.NodeID) {
	a := p.Arena
	for _, st := range tables {
		stp := a.Get(st).Payload.(tree.StateTablePayload)
		changed := false
		for i, sym := range stp.Sensitivity {
			switch a.Get(sym).Payload.(type) {
			case tree.MemberPayload, tree.SlicePayload, tree.FieldReferencePayload:
			default:
				continue
			}
			root := p.liftRootIdentifier(sym)
			stp.Sensitivity[i] = root
			a.Attach(st, root)
			changed = true
			if name := identifierName(a, root); name != "" {
				p.Report.Warn("fixMultipleSignalPortAssigns.subrangeSensitivity", name,
					fmt.Sprintf("state table %q: subrange sensitivity entry normalized to whole signal", stp.Name))
			}
		}
		if changed {
			a.Get(st).Payload = stp
			a.Bump(st)
		}
	}
}

// fixPartialWritings introduces one scoped support variable per signal
// partially written inside a state table, initializing it from the signal
// on entry and writing the full signal back from it at the end of every
// state's actions — spec.md 4.7.1 step 2. original_source keys the
// writeback to every suspension point (every wait); this rewrite
// approximates that as "the end of each state's action list", since this
// model represents a state's body as a flat action list rather than
// threading wait statements through it.
func (p *Pass) fixPartialWritings(tables []tree.NodeID) {
	a := p.Arena
	for _, st := range tables {
		contents := a.Get(st).Parent
		if contents == tree.NilNode {
			continue
		}
		partial := p.collectPartialWriteTargets(st)
		if len(partial) == 0 {
			continue
		}
		stp := a.Get(st).Payload.(tree.StateTablePayload)
		for decl, targets := range partial {
			name := declName(a, decl)
			if name == "" {
				continue
			}
			sv := tree.VariablePayload{}
			sv.Name = p.Fresh.Fresh(name + "_support")
			sv.Type = declType(a, decl)
			support := a.New(tree.KindVariable, sv)
			p.AddDeclarationInContext(contents, support)

			if len(stp.States) > 0 {
				p.prependAssign(stp.States[0], sv.Name, name)
			}
			for _, s := range stp.States {
				p.appendAssign(s, name, sv.Name)
			}
			for _, target := range targets {
				p.replacePrefixIdentifier(target, sv.Name)
			}
			p.Report.Warn("fixMultipleSignalPortAssigns.partialWriting", name,
				fmt.Sprintf("introduced support variable %q in state table %q", sv.Name, stp.Name))
		}
	}
}

// collectPartialWriteTargets returns, per signal/port declaration written
// through a Member/Slice/FieldReference inside st, every such Assign
// target.
func (p *Pass) collectPartialWriteTargets(st tree.NodeID) map[tree.NodeID][]tree.NodeID {
	out := make(map[tree.NodeID][]tree.NodeID)
	walk(p.Arena, st, func(n tree.NodeID) {
		assign, ok := p.Arena.Get(n).Payload.(tree.AssignPayload)
		if !ok {
			return
		}
		switch p.Arena.Get(assign.Target).Payload.(type) {
		case tree.MemberPayload, tree.SlicePayload, tree.FieldReferencePayload:
		default:
			return
		}
		root := rootIdentifier(p.Arena, assign.Target)
		decl, ok := p.Refs.GetDeclaration(root, p.Sem, reference.Options{})
		if !ok {
			return
		}
		switch p.Arena.Get(decl).Payload.(type) {
		case tree.SignalPayload, tree.PortPayload:
		default:
			return
		}
		out[decl] = append(out[decl], assign.Target)
	})
	return out
}

// fixSensitivityMSPW introduces an mspw signal and a composing updater
// process for any sensitivity entry still shaped as a Member/Slice/
// FieldReference (left that way because FixSubrangesInSensitivity was off)
// — spec.md 4.7.1 step 3.
func (p *Pass) fixSensitivityMSPW(tables []tree.NodeID) {
	a := p.Arena
	for _, st := range tables {
		contents := a.Get(st).Parent
		if contents == tree.NilNode {
			continue
		}
		stp := a.Get(st).Payload.(tree.StateTablePayload)
		changed := false
		for i, sym := range stp.Sensitivity {
			switch a.Get(sym).Payload.(type) {
			case tree.MemberPayload, tree.SlicePayload, tree.FieldReferencePayload:
			default:
				continue
			}
			root := rootIdentifier(a, sym)
			decl, ok := p.Refs.GetDeclaration(root, p.Sem, reference.Options{})
			if !ok {
				continue
			}
			name := declName(a, decl)
			if name == "" {
				continue
			}
			mspwName := p.Fresh.MSPW(name)
			sp := tree.SignalPayload{}
			sp.Name = mspwName
			sp.Type = declType(a, decl)
			mspw := a.New(tree.KindSignal, sp)
			p.AddDeclarationInContext(contents, mspw)
			p.addComposingUpdater(contents, name, []string{mspwName})

			newSens := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: mspwName})
			a.Remove(sym)
			a.Attach(st, newSens)
			stp.Sensitivity[i] = newSens
			changed = true
			p.Report.Warn("fixMultipleSignalPortAssigns.sensitivityMSPW", name,
				fmt.Sprintf("introduced mspw signal %q for subrange sensitivity in %q", mspwName, stp.Name))
		}
		if changed {
			a.Get(st).Payload = stp
			a.Bump(st)
			a.Flush()
		}
	}
}

// fixCrossProcessMultiWrite finds signals/ports written wholesale by more
// than one state table and splits each writer onto its own mspw signal,
// adding a single updater process that composes them back onto the
// original — spec.md 4.7.1 step 4. The composition is an OR-reduction of
// the per-writer mspw signals, which is exact for the common "only one
// writer drives at a time, the rest hold the idle value" pattern and a
// documented approximation otherwise.
func (p *Pass) fixCrossProcessMultiWrite(tables []tree.NodeID) {
	a := p.Arena
	writers := make(map[tree.NodeID][]tree.NodeID)
	for _, st := range tables {
		walk(a, st, func(n tree.NodeID) {
			assign, ok := a.Get(n).Payload.(tree.AssignPayload)
			if !ok {
				return
			}
			if _, ok := a.Get(assign.Target).Payload.(tree.IdentifierPayload); !ok {
				return
			}
			decl, ok := p.Refs.GetDeclaration(assign.Target, p.Sem, reference.Options{})
			if !ok {
				return
			}
			switch a.Get(decl).Payload.(type) {
			case tree.SignalPayload, tree.PortPayload:
			default:
				return
			}
			writers[decl] = append(writers[decl], n)
		})
	}
	for decl, assigns := range writers {
		if len(distinctOwningStateTables(a, assigns)) < 2 {
			continue
		}
		name := declName(a, decl)
		if name == "" {
			continue
		}
		contents := p.nearestContents(decl)
		if contents == tree.NilNode {
			continue
		}
		var mspwNames []string
		for i, assignNode := range assigns {
			sp := tree.SignalPayload{}
			sp.Name = p.Fresh.MSPW(fmt.Sprintf("%s_%d", name, i))
			sp.Type = declType(a, decl)
			mspw := a.New(tree.KindSignal, sp)
			p.AddDeclarationInContext(contents, mspw)
			mspwNames = append(mspwNames, sp.Name)
			target := a.Get(assignNode).Payload.(tree.AssignPayload).Target
			setSymbolName(a, target, sp.Name)
		}
		p.addComposingUpdater(contents, name, mspwNames)
		p.Report.Warn("fixMultipleSignalPortAssigns.crossProcess", name,
			fmt.Sprintf("split %d writers onto per-writer mspw signals", len(mspwNames)))
	}
}

func owningStateTable(a *tree.Arena, n tree.NodeID) tree.NodeID {
	for cur := n; cur != tree.NilNode && a.IsLive(cur); cur = a.Get(cur).Parent {
		if a.Get(cur).Kind == tree.KindStateTable {
			return cur
		}
	}
	return tree.NilNode
}

func distinctOwningStateTables(a *tree.Arena, assigns []tree.NodeID) map[tree.NodeID]struct{} {
	out := make(map[tree.NodeID]struct{})
	for _, n := range assigns {
		if st := owningStateTable(a, n); st != tree.NilNode {
			out[st] = struct{}{}
		}
	}
	return out
}

func (p *Pass) nearestContents(n tree.NodeID) tree.NodeID {
	a := p.Arena
	for cur := n; cur != tree.NilNode && a.IsLive(cur); cur = a.Get(cur).Parent {
		if a.Get(cur).Kind == tree.KindContents {
			return cur
		}
	}
	return tree.NilNode
}

// addComposingUpdater adds a single-state process, sensitive to every name
// in mspwNames, that assigns sigName the OR-reduction of those names (or a
// bare passthrough when there is exactly one).
func (p *Pass) addComposingUpdater(contents tree.NodeID, sigName string, mspwNames []string) {
	a := p.Arena
	sens := make([]tree.NodeID, 0, len(mspwNames))
	for _, name := range mspwNames {
		sens = append(sens, a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: name}))
	}
	var expr tree.NodeID
	for i, name := range mspwNames {
		leaf := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: name})
		if i == 0 {
			expr = leaf
			continue
		}
		combined := a.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpOr, Left: expr, Right: leaf})
		a.Attach(combined, expr)
		a.Attach(combined, leaf)
		expr = combined
	}
	target := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: sigName})
	assign := a.New(tree.KindAssign, tree.AssignPayload{Target: target, Source: expr})
	a.Attach(assign, target)
	a.Attach(assign, expr)
	state := a.New(tree.KindState, tree.StatePayload{Name: "s0", Actions: tree.BList{assign}})
	a.Attach(state, assign)

	stName := p.Fresh.Fresh(sigName + "_mspw_update")
	upd := a.New(tree.KindStateTable, tree.StateTablePayload{Name: stName, Sensitivity: sens, States: tree.BList{state}})
	for _, s := range sens {
		a.Attach(upd, s)
	}
	a.Attach(upd, state)

	cp := a.Get(contents).Payload.(tree.ContentsPayload)
	cp.StateTables = append(cp.StateTables, upd)
	a.Get(contents).Payload = cp
	a.Attach(contents, upd)
	a.Bump(contents)
}

func (p *Pass) prependAssign(stateID tree.NodeID, targetName, sourceName string) {
	p.spliceAssign(stateID, targetName, sourceName, true)
}

func (p *Pass) appendAssign(stateID tree.NodeID, targetName, sourceName string) {
	p.spliceAssign(stateID, targetName, sourceName, false)
}

func (p *Pass) spliceAssign(stateID tree.NodeID, targetName, sourceName string, prepend bool) {
	a := p.Arena
	sp := a.Get(stateID).Payload.(tree.StatePayload)
	target := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: targetName})
	source := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: sourceName})
	assign := a.New(tree.KindAssign, tree.AssignPayload{Target: target, Source: source})
	a.Attach(assign, target)
	a.Attach(assign, source)
	a.Attach(stateID, assign)
	if prepend {
		sp.Actions = append(tree.BList{assign}, sp.Actions...)
	} else {
		sp.Actions = append(sp.Actions, assign)
	}
	a.Get(stateID).Payload = sp
	a.Bump(stateID)
}

func identifierName(a *tree.Arena, n tree.NodeID) string {
	if p, ok := a.Get(n).Payload.(tree.IdentifierPayload); ok {
		return p.Name
	}
	return ""
}

// liftRootIdentifier detaches the leaf Identifier a Member/Slice/
// FieldReference chain prefixes and removes the rest of the chain,
// returning the now-unparented leaf so the caller can reattach it
// elsewhere — used wherever a rewrite wants to replace "prefix[...]" or
// "prefix.field" with bare "prefix" without losing the identifier to the
// wrapper's deletion.
func (p *Pass) liftRootIdentifier(chain tree.NodeID) tree.NodeID {
	a := p.Arena
	root := rootIdentifier(a, chain)
	if root == chain {
		return chain
	}
	parent := a.Get(root).Parent
	switch pay := a.Get(parent).Payload.(type) {
	case tree.MemberPayload:
		if pay.Prefix == root {
			pay.Prefix = tree.NilNode
			a.Get(parent).Payload = pay
		}
	case tree.SlicePayload:
		if pay.Prefix == root {
			pay.Prefix = tree.NilNode
			a.Get(parent).Payload = pay
		}
	case tree.FieldReferencePayload:
		if pay.Prefix == root {
			pay.Prefix = tree.NilNode
			a.Get(parent).Payload = pay
		}
	}
	a.Detach(root)
	a.Remove(chain)
	a.Flush()
	return root
}

// replacePrefixIdentifier substitutes the leaf Identifier a Member/Slice/
// FieldReference chain rooted at top bottoms out at with a freshly created
// Identifier named newName, discarding the old leaf but keeping the
// wrapper (and its index/span) intact.
func (p *Pass) replacePrefixIdentifier(top tree.NodeID, newName string) {
	a := p.Arena
	leaf := rootIdentifier(a, top)
	if _, ok := a.Get(leaf).Payload.(tree.IdentifierPayload); !ok {
		return
	}
	parent := a.Get(leaf).Parent
	if parent == tree.NilNode {
		return
	}
	newID := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: newName})
	switch pay := a.Get(parent).Payload.(type) {
	case tree.MemberPayload:
		if pay.Prefix != leaf {
			return
		}
		a.Remove(leaf)
		a.Attach(parent, newID)
		pay.Prefix = newID
		a.Get(parent).Payload = pay
	case tree.SlicePayload:
		if pay.Prefix != leaf {
			return
		}
		a.Remove(leaf)
		a.Attach(parent, newID)
		pay.Prefix = newID
		a.Get(parent).Payload = pay
	case tree.FieldReferencePayload:
		if pay.Prefix != leaf {
			return
		}
		a.Remove(leaf)
		a.Attach(parent, newID)
		pay.Prefix = newID
		a.Get(parent).Payload = pay
	default:
		return
	}
	a.Bump(parent)
	a.Flush()
}
