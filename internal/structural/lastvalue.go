package structural

import (
	"hifcore/internal/reference"
	"hifcore/internal/tree"
)

// LastValueOptions selects MapLastValueToSystemC's two independent
// rewrites — spec.md 4.7.4.
type LastValueOptions struct {
	// ReplaceRisingFallingEdge lowers rising_edge(clk)/falling_edge(clk)
	// into SystemC's event()-plus-comparison idiom: event(clk) and
	// clk=='1' and last_value(clk)=='0' (the two bits swapped for falling).
	ReplaceRisingFallingEdge bool
	// InlineLastValue replaces last_value(sig) with a reference to a
	// dedicated support signal this pass introduces and keeps updated to
	// the previous cycle's value, instead of leaving it as a library call
	// SystemC resolves at simulation time.
	InlineLastValue bool
}

// DefaultLastValueOptions matches original_source's default: lower the
// edge idioms, leave last_value as a library call (SystemC has a native
// sc_signal::last_value(), so inlining is only needed for contexts that
// don't).
func DefaultLastValueOptions() LastValueOptions {
	return LastValueOptions{ReplaceRisingFallingEdge: true}
}

// MapLastValueToSystemC rewrites rising_edge/falling_edge/last_value calls
// under root into the forms spec.md 4.7.4 names for lowering a design into
// SystemC. Grounded on
// original_source/src/manipulation/mapLastValueToSystemC.cpp.
func (p *Pass) MapLastValueToSystemC(root tree.NodeID, opts LastValueOptions) {
	if opts.ReplaceRisingFallingEdge {
		p.replaceEdgeCalls(root)
	}
	if opts.InlineLastValue {
		p.inlineLastValueCalls(root)
	}
	p.Refs.ResetDeclarations(root)
	p.Types.ResetTypes(root, false)
}

// replaceEdgeCalls finds every rising_edge/falling_edge call and splices in
// its place `event(clk) and clk == '<bit>' and last_value(clk) == '<dual>'`
// (spec.md 4.7.4), matching
// original_source/src/manipulation/systemCManipulation.cpp's three-term
// expansion.
func (p *Pass) replaceEdgeCalls(root tree.NodeID) {
	a := p.Arena
	var calls []tree.NodeID
	walk(a, root, func(n tree.NodeID) {
		if fc, ok := a.Get(n).Payload.(tree.FunctionCallPayload); ok {
			if fc.Name == "rising_edge" || fc.Name == "falling_edge" {
				calls = append(calls, n)
			}
		}
	})
	for _, call := range calls {
		fc := a.Get(call).Payload.(tree.FunctionCallPayload)
		if len(fc.Parameters) == 0 {
			continue
		}
		pa, ok := a.Get(fc.Parameters[0]).Payload.(tree.ParameterAssignPayload)
		if !ok || pa.Value == tree.NilNode {
			continue
		}
		bit := tree.Bit1
		dual := tree.Bit0
		if fc.Name == "falling_edge" {
			bit, dual = tree.Bit0, tree.Bit1
		}

		eventArg := a.Clone(pa.Value)
		eventParam := a.New(tree.KindParameterAssign, tree.ParameterAssignPayload{Value: eventArg})
		a.Attach(eventParam, eventArg)
		eventCall := a.New(tree.KindFunctionCall, tree.FunctionCallPayload{Name: "event", Parameters: tree.BList{eventParam}})
		a.Attach(eventCall, eventParam)

		cmpArg := a.Clone(pa.Value)
		bitValue := a.New(tree.KindBitValue, tree.BitValuePayload{Value: bit})
		cmp := a.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpEq, Left: cmpArg, Right: bitValue})
		a.Attach(cmp, cmpArg)
		a.Attach(cmp, bitValue)

		combined := a.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpAndBool, Left: eventCall, Right: cmp})
		a.Attach(combined, eventCall)
		a.Attach(combined, cmp)

		lastArg := a.Clone(pa.Value)
		lastParam := a.New(tree.KindParameterAssign, tree.ParameterAssignPayload{Value: lastArg})
		a.Attach(lastParam, lastArg)
		lastCall := a.New(tree.KindFunctionCall, tree.FunctionCallPayload{Name: "last_value", Parameters: tree.BList{lastParam}})
		a.Attach(lastCall, lastParam)

		dualValue := a.New(tree.KindBitValue, tree.BitValuePayload{Value: dual})
		lastCmp := a.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpEq, Left: lastCall, Right: dualValue})
		a.Attach(lastCmp, lastCall)
		a.Attach(lastCmp, dualValue)

		full := a.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpAndBool, Left: combined, Right: lastCmp})
		a.Attach(full, combined)
		a.Attach(full, lastCmp)

		p.replaceNode(call, full)
	}
}

// inlineLastValueCalls introduces, per referenced signal, one support
// signal holding its previous value and one single-state updater process,
// sensitive to the signal, that assigns the signal's value to the support
// signal — then rewrites every last_value(sig) call to read the support
// signal directly.
func (p *Pass) inlineLastValueCalls(root tree.NodeID) {
	a := p.Arena
	var calls []tree.NodeID
	walk(a, root, func(n tree.NodeID) {
		if fc, ok := a.Get(n).Payload.(tree.FunctionCallPayload); ok && fc.Name == "last_value" {
			calls = append(calls, n)
		}
	})

	support := make(map[tree.NodeID]string) // decl -> support signal name
	for _, call := range calls {
		fc := a.Get(call).Payload.(tree.FunctionCallPayload)
		if len(fc.Parameters) == 0 {
			continue
		}
		pa, ok := a.Get(fc.Parameters[0]).Payload.(tree.ParameterAssignPayload)
		if !ok {
			continue
		}
		sigRoot := rootIdentifier(a, pa.Value)
		decl, ok := p.Refs.GetDeclaration(sigRoot, p.Sem, reference.Options{})
		if !ok {
			continue
		}
		name, ok := support[decl]
		if !ok {
			contents := p.nearestContents(decl)
			if contents == tree.NilNode {
				continue
			}
			sigName := declName(a, decl)
			sp := tree.SignalPayload{}
			sp.Name = p.Fresh.Fresh(sigName + "_last")
			sp.Type = declType(a, decl)
			sig := a.New(tree.KindSignal, sp)
			p.AddDeclarationInContext(contents, sig)
			p.addLastValueUpdater(contents, sigName, sp.Name)
			name = sp.Name
			support[decl] = name
		}
		ident := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: name})
		p.replaceNode(call, ident)
	}
}

func (p *Pass) addLastValueUpdater(contents tree.NodeID, sigName, lastName string) {
	a := p.Arena
	sens := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: sigName})
	target := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: lastName})
	source := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: sigName})
	assign := a.New(tree.KindAssign, tree.AssignPayload{Target: target, Source: source})
	a.Attach(assign, target)
	a.Attach(assign, source)
	state := a.New(tree.KindState, tree.StatePayload{Name: "s0", Actions: tree.BList{assign}})
	a.Attach(state, assign)
	stName := p.Fresh.Fresh(sigName + "_last_update")
	upd := a.New(tree.KindStateTable, tree.StateTablePayload{Name: stName, Sensitivity: []tree.NodeID{sens}, States: tree.BList{state}})
	a.Attach(upd, sens)
	a.Attach(upd, state)

	cp := a.Get(contents).Payload.(tree.ContentsPayload)
	cp.StateTables = append(cp.StateTables, upd)
	a.Get(contents).Payload = cp
	a.Attach(contents, upd)
	a.Bump(contents)
}

// replaceNode substitutes old for new wherever old's parent payload points
// to it, then discards old's subtree.
func (p *Pass) replaceNode(old, new tree.NodeID) {
	a := p.Arena
	parent := a.Get(old).Parent
	if parent == tree.NilNode {
		return
	}
	if !replaceValueUse(a, parent, old, new) {
		return
	}
	a.Remove(old)
	a.Attach(parent, new)
	a.Bump(parent)
	a.Flush()
}

// replaceValueUse rewrites parent's payload field that points at old to
// point at replacement instead, across every value-carrying container a
// rewrite in this package needs to splice into — the Condition/Source/
// operand slots a lowered event or last_value expression can occupy, plus
// the index/bound/argument slots the generate expander's loop-index
// substitution can land in.
func replaceValueUse(a *tree.Arena, parent, old, replacement tree.NodeID) bool {
	node := a.Get(parent)
	switch pay := node.Payload.(type) {
	case tree.ExpressionPayload:
		if pay.Left == old {
			pay.Left = replacement
			node.Payload = pay
			return true
		}
		if pay.Right == old {
			pay.Right = replacement
			node.Payload = pay
			return true
		}
	case tree.CastPayload:
		if pay.Value == old {
			pay.Value = replacement
			node.Payload = pay
			return true
		}
	case tree.IfAltPayload:
		if pay.Condition == old {
			pay.Condition = replacement
			node.Payload = pay
			return true
		}
	case tree.WhenStmtAltPayload:
		if pay.Condition == old {
			pay.Condition = replacement
			node.Payload = pay
			return true
		}
	case tree.WhileStmtPayload:
		if pay.Condition == old {
			pay.Condition = replacement
			node.Payload = pay
			return true
		}
	case tree.WaitStmtPayload:
		if pay.Condition == old {
			pay.Condition = replacement
			node.Payload = pay
			return true
		}
		for i, s := range pay.Sensitivity {
			if s == old {
				pay.Sensitivity[i] = replacement
				node.Payload = pay
				return true
			}
		}
	case tree.TransitionPayload:
		if pay.Condition == old {
			pay.Condition = replacement
			node.Payload = pay
			return true
		}
	case tree.AssignPayload:
		if pay.Source == old {
			pay.Source = replacement
			node.Payload = pay
			return true
		}
	case tree.WhenExprAltPayload:
		if pay.Condition == old {
			pay.Condition = replacement
			node.Payload = pay
			return true
		}
		if pay.Value == old {
			pay.Value = replacement
			node.Payload = pay
			return true
		}
	case tree.ParameterAssignPayload:
		if pay.Value == old {
			pay.Value = replacement
			node.Payload = pay
			return true
		}
	case tree.ReturnStmtPayload:
		if pay.Value == old {
			pay.Value = replacement
			node.Payload = pay
			return true
		}
	case tree.MemberPayload:
		if pay.Prefix == old {
			pay.Prefix = replacement
			node.Payload = pay
			return true
		}
		if pay.Index == old {
			pay.Index = replacement
			node.Payload = pay
			return true
		}
	case tree.SlicePayload:
		if pay.Prefix == old {
			pay.Prefix = replacement
			node.Payload = pay
			return true
		}
		if pay.Span.Left == old {
			pay.Span.Left = replacement
			node.Payload = pay
			return true
		}
		if pay.Span.Right == old {
			pay.Span.Right = replacement
			node.Payload = pay
			return true
		}
	case tree.RangeNodePayload:
		if pay.Span.Left == old {
			pay.Span.Left = replacement
			node.Payload = pay
			return true
		}
		if pay.Span.Right == old {
			pay.Span.Right = replacement
			node.Payload = pay
			return true
		}
	case tree.PortAssignPayload:
		if pay.Value == old {
			pay.Value = replacement
			node.Payload = pay
			return true
		}
	case tree.TemplateParameterAssignPayload:
		if pay.Value == old {
			pay.Value = replacement
			node.Payload = pay
			return true
		}
	case tree.SwitchStmtPayload:
		if pay.Condition == old {
			pay.Condition = replacement
			node.Payload = pay
			return true
		}
	case tree.WithStmtPayload:
		if pay.Condition == old {
			pay.Condition = replacement
			node.Payload = pay
			return true
		}
	case tree.WithExprPayload:
		if pay.Condition == old {
			pay.Condition = replacement
			node.Payload = pay
			return true
		}
	case tree.AggregateAltPayload:
		if pay.Value == old {
			pay.Value = replacement
			node.Payload = pay
			return true
		}
	}
	return false
}
