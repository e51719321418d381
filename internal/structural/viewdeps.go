package structural

import "hifcore/internal/tree"

// ViewDependencyOptions controls FindViewDependencies (spec.md section 6:
// "ViewDependencyOptions is already in spec.md... but the operation itself
// was only implicit").
type ViewDependencyOptions struct {
	// IncludeInstances also records views reached only via Instance
	// declarations whose Referenced names a ViewReference type, not only
	// views named directly in a type position (ports, signal types, ...).
	IncludeInstances bool
}

// ViewDependencies maps each View to the Views its declarations reference,
// by (DesignUnitName, ViewName) pair resolved to the owning View node when
// that design unit is present in the same System.
type ViewDependencies map[tree.NodeID][]tree.NodeID

// FindViewDependencies walks every View under root, collecting every
// TypeViewReference (and, with IncludeInstances, every Instance.Referenced)
// it contains, and resolves each to the View it names within root's
// DesignUnits. Used by FindTopLevelModules to build its sub/parent-module
// maps. Grounded on original_source/src/manipulation/findViewDependencies.cpp.
func FindViewDependencies(a *tree.Arena, root tree.NodeID, opts ViewDependencyOptions) ViewDependencies {
	byName := indexViewsByName(a, root)
	deps := make(ViewDependencies)

	var views []tree.NodeID
	walk(a, root, func(n tree.NodeID) {
		if a.Get(n).Kind == tree.KindView {
			views = append(views, n)
		}
	})

	for _, v := range views {
		seen := make(map[tree.NodeID]struct{})
		walk(a, v, func(n tree.NodeID) {
			switch p := a.Get(n).Payload.(type) {
			case tree.TypeViewReferencePayload:
				if par := a.Get(n).Parent; par != tree.NilNode && !opts.IncludeInstances {
					if _, inInst := a.Get(par).Payload.(tree.InstancePayload); inInst {
						return
					}
				}
				if target, ok := byName[viewKey{p.DesignUnitName, p.ViewName}]; ok && target != v {
					seen[target] = struct{}{}
				}
			case tree.InstancePayload:
				if !opts.IncludeInstances {
					return
				}
				if refP, ok := a.Get(p.Referenced).Payload.(tree.TypeViewReferencePayload); ok {
					if target, ok := byName[viewKey{refP.DesignUnitName, refP.ViewName}]; ok && target != v {
						seen[target] = struct{}{}
					}
				}
			}
		})
		for target := range seen {
			deps[v] = append(deps[v], target)
		}
	}
	return deps
}

type viewKey struct{ designUnit, view string }

func indexViewsByName(a *tree.Arena, root tree.NodeID) map[viewKey]tree.NodeID {
	out := make(map[viewKey]tree.NodeID)
	walk(a, root, func(n tree.NodeID) {
		du, ok := a.Get(n).Payload.(tree.DesignUnitPayload)
		if !ok {
			return
		}
		for _, vid := range du.Views {
			if v, ok := a.Get(vid).Payload.(tree.ViewPayload); ok {
				out[viewKey{du.Name, v.Name}] = vid
			}
		}
	})
	return out
}

// subParentMaps derives FindTopLevelModules' sub-module and parent-module
// maps from a ViewDependencies graph: sub[v] are the views v depends on,
// parent[v] are the views that depend on v.
func subParentMaps(deps ViewDependencies) (sub, parent map[tree.NodeID][]tree.NodeID) {
	sub = make(map[tree.NodeID][]tree.NodeID)
	parent = make(map[tree.NodeID][]tree.NodeID)
	for v, ds := range deps {
		sub[v] = ds
		for _, d := range ds {
			parent[d] = append(parent[d], v)
		}
	}
	return sub, parent
}
