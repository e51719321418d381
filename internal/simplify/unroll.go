package simplify

import "hifcore/internal/tree"

// forIndexName extracts the loop variable's name from a for-loop's Init
// assignment (`i = 0`), the same slot extractBounds reads the starting
// value from.
func (d *Driver) forIndexName(init tree.NodeID) (string, bool) {
	if init == tree.NilNode || !d.arena.IsLive(init) {
		return "", false
	}
	assign, ok := d.arena.Get(init).Payload.(tree.AssignPayload)
	if !ok {
		return "", false
	}
	id, ok := d.arena.Get(assign.Target).Payload.(tree.IdentifierPayload)
	if !ok {
		return "", false
	}
	return id.Name, true
}

// unrollFor clones body once per iteration from start to start+step*(count-1),
// substituting every reference to varName with that iteration's literal
// value, and concatenates the cloned iterations into one flat statement
// list — grounded on internal/structural's for-generate expander
// (generate.go's expandForGenerate/cloneGenerateBody/substituteIndexUses),
// adapted from a generate's Contents-level declaration lists to a plain
// statement body.
func (d *Driver) unrollFor(body tree.BList, varName string, start, step, count int64) tree.BList {
	var out tree.BList
	val := start
	for i := int64(0); i < count; i++ {
		for _, stmt := range body {
			clone := d.arena.Clone(stmt)
			if clone == tree.NilNode {
				continue
			}
			substituteInPlace(d.arena, clone, varName, val)
			out = append(out, clone)
		}
		val += step
	}
	return out
}

// substituteInPlace walks the subtree rooted at n — already a private
// clone, so free to mutate — replacing every Identifier named name with a
// fresh int literal equal to value. Generalizes
// internal/structural/lastvalue.go's replaceValueUse (built for splicing a
// single lowered expression into whatever slot held the call it replaces)
// to the full set of statement-level slots a for-loop body can contain.
func substituteInPlace(a *tree.Arena, n tree.NodeID, name string, value int64) {
	if n == tree.NilNode || !a.IsLive(n) {
		return
	}

	resolve := func(parent, id tree.NodeID) (tree.NodeID, bool) {
		if id == tree.NilNode || !a.IsLive(id) {
			return id, false
		}
		if ip, ok := a.Get(id).Payload.(tree.IdentifierPayload); ok && ip.Name == name {
			a.Detach(id)
			a.Remove(id)
			lit := a.New(tree.KindIntValue, tree.IntValuePayload{Value: value})
			a.Attach(parent, lit)
			return lit, true
		}
		substituteInPlace(a, id, name, value)
		return id, false
	}
	resolveList := func(parent tree.NodeID, list tree.BList) {
		for i, id := range list {
			if newID, changed := resolve(parent, id); changed {
				list[i] = newID
			}
		}
	}
	resolveLabels := func(parent tree.NodeID, labels []tree.AggregateIndex) {
		for i := range labels {
			if labels[i].Single != tree.NilNode {
				if s, changed := resolve(parent, labels[i].Single); changed {
					labels[i].Single = s
				}
			}
			if labels[i].Range != nil {
				if l, changed := resolve(parent, labels[i].Range.Left); changed {
					labels[i].Range.Left = l
				}
				if r, changed := resolve(parent, labels[i].Range.Right); changed {
					labels[i].Range.Right = r
				}
			}
		}
	}

	node := a.Get(n)
	switch p := node.Payload.(type) {
	case tree.ExpressionPayload:
		l, lc := resolve(n, p.Left)
		r, rc := resolve(n, p.Right)
		if lc || rc {
			p.Left, p.Right = l, r
			node.Payload = p
		}
	case tree.CastPayload:
		if v, c := resolve(n, p.Value); c {
			p.Value = v
			node.Payload = p
		}
	case tree.MemberPayload:
		pre, pc := resolve(n, p.Prefix)
		idx, ic := resolve(n, p.Index)
		if pc || ic {
			p.Prefix, p.Index = pre, idx
			node.Payload = p
		}
	case tree.SlicePayload:
		pre, pc := resolve(n, p.Prefix)
		l, lc := resolve(n, p.Span.Left)
		r, rc := resolve(n, p.Span.Right)
		if pc || lc || rc {
			p.Prefix, p.Span.Left, p.Span.Right = pre, l, r
			node.Payload = p
		}
	case tree.FieldReferencePayload:
		if pre, c := resolve(n, p.Prefix); c {
			p.Prefix = pre
			node.Payload = p
		}
	case tree.FunctionCallPayload:
		resolveList(n, p.Parameters)
		resolveList(n, p.TemplateParameters)
	case tree.ParameterAssignPayload:
		if v, c := resolve(n, p.Value); c {
			p.Value = v
			node.Payload = p
		}
	case tree.AggregatePayload:
		resolveList(n, p.Alts)
		if o, c := resolve(n, p.Others); c {
			p.Others = o
			node.Payload = p
		}
	case tree.AggregateAltPayload:
		resolveLabels(n, p.Indices)
		if v, c := resolve(n, p.Value); c {
			p.Value = v
		}
		node.Payload = p
	case tree.RecordValuePayload:
		resolveList(n, p.Alts)
	case tree.RecordValueAltPayload:
		if v, c := resolve(n, p.Value); c {
			p.Value = v
			node.Payload = p
		}
	case tree.WhenExprPayload:
		resolveList(n, p.Alts)
		if v, c := resolve(n, p.Default); c {
			p.Default = v
			node.Payload = p
		}
	case tree.WhenExprAltPayload:
		cnd, cc := resolve(n, p.Condition)
		v, vc := resolve(n, p.Value)
		if cc || vc {
			p.Condition, p.Value = cnd, v
			node.Payload = p
		}
	case tree.WithExprPayload:
		cnd, cc := resolve(n, p.Condition)
		resolveList(n, p.Alts)
		v, vc := resolve(n, p.Default)
		if cc || vc {
			p.Condition, p.Default = cnd, v
			node.Payload = p
		}
	case tree.WithExprAltPayload:
		resolveLabels(n, p.Labels)
		if v, c := resolve(n, p.Value); c {
			p.Value = v
			node.Payload = p
		}
	case tree.RangeNodePayload:
		l, lc := resolve(n, p.Span.Left)
		r, rc := resolve(n, p.Span.Right)
		if lc || rc {
			p.Span.Left, p.Span.Right = l, r
			node.Payload = p
		}
	case tree.AssignPayload:
		t, tc := resolve(n, p.Target)
		s, sc := resolve(n, p.Source)
		if tc || sc {
			p.Target, p.Source = t, s
			node.Payload = p
		}
	case tree.IfStmtPayload:
		resolveList(n, p.Alts)
		resolveList(n, p.Default)
	case tree.IfAltPayload:
		if c, cc := resolve(n, p.Condition); cc {
			p.Condition = c
			node.Payload = p
		}
		resolveList(n, p.Body)
	case tree.WhenStmtPayload:
		resolveList(n, p.Alts)
		resolveList(n, p.Default)
	case tree.WhenStmtAltPayload:
		if c, cc := resolve(n, p.Condition); cc {
			p.Condition = c
			node.Payload = p
		}
		resolveList(n, p.Body)
	case tree.SwitchStmtPayload:
		if c, cc := resolve(n, p.Condition); cc {
			p.Condition = c
			node.Payload = p
		}
		resolveList(n, p.Alts)
		resolveList(n, p.Default)
	case tree.SwitchAltPayload:
		resolveList(n, p.Body)
		resolveLabels(n, p.Labels)
		node.Payload = p
	case tree.WithStmtPayload:
		if c, cc := resolve(n, p.Condition); cc {
			p.Condition = c
			node.Payload = p
		}
		resolveList(n, p.Alts)
		resolveList(n, p.Default)
	case tree.WithStmtAltPayload:
		resolveList(n, p.Body)
		resolveLabels(n, p.Labels)
		node.Payload = p
	case tree.ForStmtPayload:
		i, ic := resolve(n, p.Init)
		c, cc := resolve(n, p.Condition)
		s, sc := resolve(n, p.Step)
		if ic || cc || sc {
			p.Init, p.Condition, p.Step = i, c, s
			node.Payload = p
		}
		resolveList(n, p.Body)
	case tree.WhileStmtPayload:
		if c, cc := resolve(n, p.Condition); cc {
			p.Condition = c
			node.Payload = p
		}
		resolveList(n, p.Body)
	case tree.ReturnStmtPayload:
		if v, c := resolve(n, p.Value); c {
			p.Value = v
			node.Payload = p
		}
	case tree.ProcedureCallStmtPayload:
		resolveList(n, p.Parameters)
		resolveList(n, p.TemplateParameters)
	case tree.WaitStmtPayload:
		if c, cc := resolve(n, p.Condition); cc {
			p.Condition = c
		}
		for i, s := range p.Sensitivity {
			if ns, changed := resolve(n, s); changed {
				p.Sensitivity[i] = ns
			}
		}
		node.Payload = p
	case tree.TransitionPayload:
		if c, cc := resolve(n, p.Condition); cc {
			p.Condition = c
			node.Payload = p
		}
		resolveList(n, p.Actions)
	default:
		// Leaf payloads (literals, Identifier itself, declarations) have
		// nothing to substitute into.
	}
}

// spliceIntoParent replaces node, in place, with replacement inside
// whatever BList the node's parent holds it in — the Attach-side
// counterpart to Arena.Remove's detach, needed because a for-loop unroll
// turns one statement into N siblings rather than one replacement.
func spliceIntoParent(a *tree.Arena, node tree.NodeID, replacement tree.BList) bool {
	parent := a.Get(node).Parent
	if parent == tree.NilNode {
		return false
	}

	spliced := false
	replaceIn := func(list tree.BList) tree.BList {
		for i, id := range list {
			if id != node {
				continue
			}
			spliced = true
			out := make(tree.BList, 0, len(list)-1+len(replacement))
			out = append(out, list[:i]...)
			out = append(out, replacement...)
			out = append(out, list[i+1:]...)
			return out
		}
		return list
	}

	pnode := a.Get(parent)
	switch p := pnode.Payload.(type) {
	case tree.StatePayload:
		p.Actions = replaceIn(p.Actions)
		pnode.Payload = p
	case tree.TransitionPayload:
		p.Actions = replaceIn(p.Actions)
		pnode.Payload = p
	case tree.GlobalActionPayload:
		p.Actions = replaceIn(p.Actions)
		pnode.Payload = p
	case tree.IfAltPayload:
		p.Body = replaceIn(p.Body)
		pnode.Payload = p
	case tree.IfStmtPayload:
		p.Default = replaceIn(p.Default)
		pnode.Payload = p
	case tree.WhenStmtAltPayload:
		p.Body = replaceIn(p.Body)
		pnode.Payload = p
	case tree.WhenStmtPayload:
		p.Default = replaceIn(p.Default)
		pnode.Payload = p
	case tree.SwitchAltPayload:
		p.Body = replaceIn(p.Body)
		pnode.Payload = p
	case tree.SwitchStmtPayload:
		p.Default = replaceIn(p.Default)
		pnode.Payload = p
	case tree.WithStmtAltPayload:
		p.Body = replaceIn(p.Body)
		pnode.Payload = p
	case tree.WithStmtPayload:
		p.Default = replaceIn(p.Default)
		pnode.Payload = p
	case tree.ForStmtPayload:
		p.Body = replaceIn(p.Body)
		pnode.Payload = p
	case tree.WhileStmtPayload:
		p.Body = replaceIn(p.Body)
		pnode.Payload = p
	default:
		return false
	}
	if !spliced {
		return false
	}

	a.Detach(node)
	a.Remove(node)
	for _, id := range replacement {
		a.Attach(parent, id)
	}
	a.Bump(parent)
	a.Flush()
	return true
}
