package structural

import "hifcore/internal/tree"

// AddDeclarationInContext appends decl to ctx's declaration list and
// attaches it, renaming decl first if its name collides with an existing
// declaration already in ctx. Grounded on
// original_source/src/manipulation/addDeclarationInContext.cpp.
func (p *Pass) AddDeclarationInContext(ctx, decl tree.NodeID) {
	name := declName(p.Arena, decl)
	if name != "" && CheckConflictingName(p.Arena, ctx, name, decl) {
		setDeclName(p.Arena, decl, p.Fresh.Fresh(name))
	}
	cp := p.Arena.Get(ctx).Payload.(tree.ContentsPayload)
	cp.Declarations = append(cp.Declarations, decl)
	p.Arena.Get(ctx).Payload = cp
	p.Arena.Attach(ctx, decl)
	p.Arena.Bump(ctx)
}

// MoveDeclaration relocates decl from its current owning Contents to dest,
// renaming on collision and rewriting every reference within the decl's old
// enclosing view so it still resolves — used when hoisting a per-iteration
// declaration out of an unrolled generate body into the parent Contents.
// Grounded on original_source/src/manipulation/moveDeclaration.cpp.
func (p *Pass) MoveDeclaration(decl, dest tree.NodeID) {
	src := p.Arena.Get(decl).Parent
	if src == tree.NilNode {
		return
	}
	view := src
	for view != tree.NilNode && p.Arena.Get(view).Kind != tree.KindView {
		view = p.Arena.Get(view).Parent
	}
	if view == tree.NilNode {
		view = src
	}
	refs := p.Refs.GetReferences(decl, p.Sem, view)
	oldName := declName(p.Arena, decl)
	if sp, ok := p.Arena.Get(src).Payload.(tree.ContentsPayload); ok {
		sp.Declarations = removeID(sp.Declarations, decl)
		p.Arena.Get(src).Payload = sp
		p.Arena.Bump(src)
	}
	p.Arena.Detach(decl)
	p.AddDeclarationInContext(dest, decl)
	if newName := declName(p.Arena, decl); newName != oldName {
		for sym := range refs {
			setSymbolName(p.Arena, sym, newName)
		}
	}
	p.Refs.ResetDeclarations(p.Arena.Root(dest))
}

func removeID(list tree.BList, id tree.NodeID) tree.BList {
	out := make(tree.BList, 0, len(list))
	for _, c := range list {
		if c != id {
			out = append(out, c)
		}
	}
	return out
}
