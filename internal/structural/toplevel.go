package structural

import "hifcore/internal/tree"

// FindTopOptions configures FindTopLevelModules — spec.md 4.7.5.
type FindTopOptions struct {
	Verbose bool

	// TopLevelName, if set, is resolved first by view name, then by owning
	// design-unit name, among the structural candidate set.
	TopLevelName string

	// SubModuleMap/ParentModuleMap let a caller that already ran
	// FindViewDependencies reuse its result instead of recomputing it.
	SubModuleMap    ViewDependencies
	ParentModuleMap map[tree.NodeID][]tree.NodeID

	// UseHeuristics breaks a tie among multiple parentless candidates using
	// H1 (weight) then H2 (direct children of the root system).
	UseHeuristics bool

	// CheckAtMostOne/CheckAtLeastOne report failure (ok=false) instead of
	// returning an ambiguous or empty result.
	CheckAtMostOne  bool
	CheckAtLeastOne bool
}

// FindTopLevelModules identifies which non-standard, non-empty Views under
// root are never instantiated by another view in root — the design's entry
// points. Grounded on
// original_source/src/manipulation/findTopLevelModules.cpp, built on this
// package's own FindViewDependencies/subParentMaps.
func (p *Pass) FindTopLevelModules(root tree.NodeID, opts FindTopOptions) ([]tree.NodeID, bool) {
	a := p.Arena

	deps := opts.SubModuleMap
	if deps == nil {
		deps = FindViewDependencies(a, root, ViewDependencyOptions{IncludeInstances: true})
	}
	parent := opts.ParentModuleMap
	if parent == nil {
		_, parent = subParentMaps(deps)
	}

	var candidates []tree.NodeID
	walk(a, root, func(n tree.NodeID) {
		v, ok := a.Get(n).Payload.(tree.ViewPayload)
		if !ok || v.Standard || isEmptyShell(a, v) {
			return
		}
		if len(parent[n]) == 0 {
			candidates = append(candidates, n)
		}
	})

	if opts.TopLevelName != "" {
		return p.resolveTopLevelName(a, candidates, opts.TopLevelName)
	}

	if opts.CheckAtLeastOne && len(candidates) == 0 {
		return nil, false
	}
	if len(candidates) <= 1 {
		return candidates, true
	}

	if opts.UseHeuristics {
		candidates = p.narrowByWeight(candidates)
		if len(candidates) > 1 {
			candidates = p.narrowToSystemChildren(root, candidates)
		}
	}

	if opts.CheckAtMostOne && len(candidates) > 1 {
		return nil, false
	}
	return candidates, true
}

// isEmptyShell reports whether a view's Contents carries no declarations,
// instances, state tables, or global actions — the "component shell" spec.md
// 4.7.5 excludes from candidacy.
func isEmptyShell(a *tree.Arena, v tree.ViewPayload) bool {
	if v.Contents == tree.NilNode {
		return true
	}
	cp, ok := a.Get(v.Contents).Payload.(tree.ContentsPayload)
	if !ok {
		return true
	}
	return len(cp.Declarations) == 0 && len(cp.Instances) == 0 &&
		len(cp.StateTables) == 0 && len(cp.GlobalActions) == 0
}

// resolveTopLevelName matches name first against candidate view names, then
// against their owning design-unit names; fails on no match or ambiguity.
func (p *Pass) resolveTopLevelName(a *tree.Arena, candidates []tree.NodeID, name string) ([]tree.NodeID, bool) {
	var byView []tree.NodeID
	for _, c := range candidates {
		if v, ok := a.Get(c).Payload.(tree.ViewPayload); ok && v.Name == name {
			byView = append(byView, c)
		}
	}
	if len(byView) == 1 {
		return byView, true
	}
	if len(byView) > 1 {
		return nil, false
	}

	var byUnit []tree.NodeID
	for _, c := range candidates {
		if du := owningDesignUnit(a, c); du != tree.NilNode {
			if dup, ok := a.Get(du).Payload.(tree.DesignUnitPayload); ok && dup.Name == name {
				byUnit = append(byUnit, c)
			}
		}
	}
	if len(byUnit) != 1 {
		return nil, false
	}
	return byUnit, true
}

// owningDesignUnit climbs from a View to the nearest DesignUnit ancestor.
func owningDesignUnit(a *tree.Arena, view tree.NodeID) tree.NodeID {
	for n := a.Get(view).Parent; n != tree.NilNode; n = a.Get(n).Parent {
		if _, ok := a.Get(n).Payload.(tree.DesignUnitPayload); ok {
			return n
		}
	}
	return tree.NilNode
}

// narrowByWeight implements H1: each candidate's score is its own
// ports+declarations+5*instances+state-tables+global-actions count plus,
// for every distinct view it instantiates, that view's score weighted by
// how many instances of it appear here — recursively. Returns every
// candidate tied for the maximum score.
func (p *Pass) narrowByWeight(candidates []tree.NodeID) []tree.NodeID {
	a := p.Arena
	byName := indexViewsByName(a, rootAncestor(a, candidates[0]))
	memo := make(map[tree.NodeID]int)
	visiting := make(map[tree.NodeID]bool)
	var best []tree.NodeID
	bestScore := -1
	for _, c := range candidates {
		s := p.viewScore(c, byName, memo, visiting)
		if s > bestScore {
			best = []tree.NodeID{c}
			bestScore = s
		} else if s == bestScore {
			best = append(best, c)
		}
	}
	return best
}

func (p *Pass) viewScore(v tree.NodeID, byName map[viewKey]tree.NodeID, memo map[tree.NodeID]int, visiting map[tree.NodeID]bool) int {
	if s, ok := memo[v]; ok {
		return s
	}
	if visiting[v] {
		return 0
	}
	visiting[v] = true
	defer delete(visiting, v)

	a := p.Arena
	vp, ok := a.Get(v).Payload.(tree.ViewPayload)
	if !ok || vp.Contents == tree.NilNode {
		memo[v] = 0
		return 0
	}
	cp, ok := a.Get(vp.Contents).Payload.(tree.ContentsPayload)
	if !ok {
		memo[v] = 0
		return 0
	}
	entityPorts := 0
	if ep, ok := a.Get(vp.Entity).Payload.(tree.EntityPayload); ok {
		entityPorts = len(ep.Ports)
	}
	score := entityPorts + len(cp.Declarations) + 5*len(cp.Instances) +
		len(cp.StateTables) + len(cp.GlobalActions)

	instanceCount := make(map[tree.NodeID]int)
	for _, inst := range cp.Instances {
		ip, ok := a.Get(inst).Payload.(tree.InstancePayload)
		if !ok {
			continue
		}
		refP, ok := a.Get(ip.Referenced).Payload.(tree.TypeViewReferencePayload)
		if !ok {
			continue
		}
		target, ok := byName[viewKey{refP.DesignUnitName, refP.ViewName}]
		if !ok || target == v {
			continue
		}
		instanceCount[target]++
	}
	for target, count := range instanceCount {
		score += count * p.viewScore(target, byName, memo, visiting)
	}
	memo[v] = score
	return score
}

// rootAncestor climbs to the outermost node, the System FindTopLevelModules
// was invoked on.
func rootAncestor(a *tree.Arena, n tree.NodeID) tree.NodeID {
	for a.Get(n).Parent != tree.NilNode {
		n = a.Get(n).Parent
	}
	return n
}

// narrowToSystemChildren implements H2: restrict to candidates whose owning
// design unit is listed directly in root's SystemPayload.DesignUnits, not
// one reachable only through a nested LibraryDef.
func (p *Pass) narrowToSystemChildren(root tree.NodeID, candidates []tree.NodeID) []tree.NodeID {
	a := p.Arena
	sp, ok := a.Get(root).Payload.(tree.SystemPayload)
	if !ok {
		return candidates
	}
	direct := make(map[tree.NodeID]bool, len(sp.DesignUnits))
	for _, du := range sp.DesignUnits {
		direct[du] = true
	}
	var out []tree.NodeID
	for _, c := range candidates {
		if direct[owningDesignUnit(a, c)] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return candidates
	}
	return out
}
