package structural

import (
	"fmt"

	"hifcore/internal/tree"
)

// ExpandGenerates fully expands every for-generate/if-generate reachable
// from root into its owning Contents — spec.md 4.6: "for-generate and
// if-generate are fully expanded into the surrounding contents:
// declarations, instances, state tables, and global actions are moved with
// a per-iteration suffix (_i, nested); references to the loop index are
// substituted with the iteration's constant." Containers are visited
// innermost first so a nested generate is already flattened by the time an
// enclosing generate's body gets duplicated.
func (p *Pass) ExpandGenerates(root tree.NodeID) {
	a := p.Arena
	var containers []tree.NodeID
	collectContentsPostOrder(a, root, &containers)
	for _, c := range containers {
		p.expandGeneratesIn(c)
	}
	p.Refs.ResetDeclarations(root)
	p.Types.ResetTypes(root, false)
}

func collectContentsPostOrder(a *tree.Arena, n tree.NodeID, out *[]tree.NodeID) {
	if n == tree.NilNode || !a.IsLive(n) {
		return
	}
	for _, c := range a.Children(n) {
		collectContentsPostOrder(a, c, out)
	}
	if _, ok := a.Get(n).Payload.(tree.ContentsPayload); ok {
		*out = append(*out, n)
	}
}

func (p *Pass) expandGeneratesIn(contents tree.NodeID) {
	a := p.Arena
	cp := a.Get(contents).Payload.(tree.ContentsPayload)
	if len(cp.Generates) == 0 {
		return
	}

	var kept tree.BList
	changed := false
	for _, g := range cp.Generates {
		var ok bool
		switch gp := a.Get(g).Payload.(type) {
		case tree.ForGeneratePayload:
			ok = p.expandForGenerate(contents, gp)
		case tree.IfGeneratePayload:
			ok = p.expandIfGenerate(contents, gp)
		}
		if ok {
			changed = true
			a.Detach(g)
			a.Remove(g)
		} else {
			kept = append(kept, g)
		}
	}
	if !changed {
		return
	}

	cp = a.Get(contents).Payload.(tree.ContentsPayload)
	cp.Generates = kept
	a.Get(contents).Payload = cp
	a.Bump(contents)
	a.Flush()
	p.RenameConflictingDeclarations(contents)
}

// generateIteration holds one unrolled copy of a generate body, cloned but
// not yet attached anywhere.
type generateIteration struct {
	Declarations  tree.BList
	Instances     tree.BList
	StateTables   tree.BList
	GlobalActions tree.BList
}

// expandForGenerate unrolls gp's body once per value in its span,
// substituting references to the loop index with that iteration's literal
// and suffixing every duplicated declaration/instance/state table with
// "_<index>" to keep the per-iteration copies distinct. Reports false (and
// leaves the block for a later pass) when the span isn't a compile-time
// constant yet.
func (p *Pass) expandForGenerate(parent tree.NodeID, gp tree.ForGeneratePayload) bool {
	a := p.Arena
	left, _, ok := gp.Span.LiteralBounds(a)
	if !ok {
		return false
	}
	count := gp.Span.Size(a)
	step := int64(1)
	if gp.Span.Dir == tree.Downto {
		step = -1
	}
	for i := int64(0); i < int64(count); i++ {
		idxVal := left + i*step
		iter := p.cloneGenerateBody(gp.Body)
		p.substituteIndexUses(iter, gp.Index, idxVal)
		p.suffixGenerateIteration(iter, fmt.Sprintf("_%d", idxVal))
		p.mergeGenerateIteration(parent, iter)
	}
	return true
}

// expandIfGenerate keeps or drops its body whole depending on whether
// Condition folds to a compile-time boolean constant; a condition that
// doesn't fold yet is left unexpanded for a later pass once folding has
// simplified it further.
func (p *Pass) expandIfGenerate(parent tree.NodeID, gp tree.IfGeneratePayload) bool {
	a := p.Arena
	b, ok := constBool(a, gp.Condition)
	if !ok {
		return false
	}
	if b {
		iter := p.cloneGenerateBody(gp.Body)
		p.mergeGenerateIteration(parent, iter)
	}
	return true
}

func constBool(a *tree.Arena, n tree.NodeID) (bool, bool) {
	if n == tree.NilNode || !a.IsLive(n) {
		return false, false
	}
	p, ok := a.Get(n).Payload.(tree.BoolValuePayload)
	return p.Value, ok
}

// cloneGenerateBody deep-copies every declaration, instance, state table,
// and global action owned by a generate's Body (itself a Contents), via
// Arena.Clone applied item by item — Contents is one of Clone's declined
// whole-program-container shapes, so the body can't be cloned in one call.
func (p *Pass) cloneGenerateBody(body tree.NodeID) generateIteration {
	a := p.Arena
	bp := a.Get(body).Payload.(tree.ContentsPayload)
	cloneEach := func(list tree.BList) tree.BList {
		out := make(tree.BList, 0, len(list))
		for _, id := range list {
			if c := a.Clone(id); c != tree.NilNode {
				out = append(out, c)
			}
		}
		return out
	}
	return generateIteration{
		Declarations:  cloneEach(bp.Declarations),
		Instances:     cloneEach(bp.Instances),
		StateTables:   cloneEach(bp.StateTables),
		GlobalActions: cloneEach(bp.GlobalActions),
	}
}

// substituteIndexUses replaces every Identifier named indexName found
// anywhere within iter with a fresh int literal equal to value.
func (p *Pass) substituteIndexUses(iter generateIteration, indexName string, value int64) {
	a := p.Arena
	var uses []tree.NodeID
	collect := func(roots tree.BList) {
		for _, root := range roots {
			walk(a, root, func(n tree.NodeID) {
				if ip, ok := a.Get(n).Payload.(tree.IdentifierPayload); ok && ip.Name == indexName {
					uses = append(uses, n)
				}
			})
		}
	}
	collect(iter.Declarations)
	collect(iter.Instances)
	collect(iter.StateTables)
	collect(iter.GlobalActions)

	for _, id := range uses {
		lit := a.New(tree.KindIntValue, tree.IntValuePayload{Value: value})
		p.replaceNode(id, lit)
	}
}

// suffixGenerateIteration renames every declaration, instance, and state
// table in iter by appending suffix, keeping one generate iteration's
// copies distinct from its siblings' (spec.md 4.6's "_i, nested" naming).
func (p *Pass) suffixGenerateIteration(iter generateIteration, suffix string) {
	a := p.Arena
	for _, id := range iter.Declarations {
		setDeclName(a, id, declName(a, id)+suffix)
	}
	for _, id := range iter.Instances {
		ip := a.Get(id).Payload.(tree.InstancePayload)
		ip.Name += suffix
		a.Get(id).Payload = ip
		a.Bump(id)
	}
	for _, id := range iter.StateTables {
		stp := a.Get(id).Payload.(tree.StateTablePayload)
		stp.Name += suffix
		a.Get(id).Payload = stp
		a.Bump(id)
	}
}

// mergeGenerateIteration splices one unrolled iteration's lists into
// parent's own Declarations/Instances/StateTables/GlobalActions.
func (p *Pass) mergeGenerateIteration(parent tree.NodeID, iter generateIteration) {
	a := p.Arena
	cp := a.Get(parent).Payload.(tree.ContentsPayload)
	cp.Declarations = append(cp.Declarations, iter.Declarations...)
	cp.Instances = append(cp.Instances, iter.Instances...)
	cp.StateTables = append(cp.StateTables, iter.StateTables...)
	cp.GlobalActions = append(cp.GlobalActions, iter.GlobalActions...)
	a.Get(parent).Payload = cp
	for _, id := range iter.Declarations {
		a.Attach(parent, id)
	}
	for _, id := range iter.Instances {
		a.Attach(parent, id)
	}
	for _, id := range iter.StateTables {
		a.Attach(parent, id)
	}
	for _, id := range iter.GlobalActions {
		a.Attach(parent, id)
	}
	a.Bump(parent)
}
