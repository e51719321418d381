package structural

import (
	"hifcore/internal/reference"
	"hifcore/internal/tree"
)

// FindScopeDependencies collects the set of declarations subtree depends on
// that are declared outside of it — used before relocating a subtree (e.g.
// a generate-expansion body being hoisted or an mspw updater process being
// inserted) to know what must be re-resolved or carried along. Grounded on
// original_source/src/manipulation/findScopeDependencies.cpp.
func (p *Pass) FindScopeDependencies(subtree tree.NodeID) map[tree.NodeID]struct{} {
	inside := make(map[tree.NodeID]struct{})
	walk(p.Arena, subtree, func(n tree.NodeID) { inside[n] = struct{}{} })

	out := make(map[tree.NodeID]struct{})
	walk(p.Arena, subtree, func(n tree.NodeID) {
		decl, ok := p.Refs.GetDeclaration(n, p.Sem, reference.Options{})
		if !ok {
			return
		}
		if _, insideSubtree := inside[decl]; insideSubtree {
			return
		}
		out[decl] = struct{}{}
	})
	return out
}
