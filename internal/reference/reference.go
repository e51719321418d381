// Package reference implements C2 (spec.md section 4.2): given any
// symbol-bearing object, resolve the declaration it refers to, searching
// outward from its enclosing scopes, with a process-wide cache keyed on
// (NodeID, generation) so that a tree mutation invalidates stale entries
// without a global sweep. Grounded on the teacher's visitor-based symbol
// walks (internal/parser resolves identifiers against a chain of
// environments); the cache-plus-reentrancy-guard shape is new, using
// golang.org/x/sync/singleflight as a reentrancy guard against the
// recursive re-entry get_all_references can trigger while walking a scope
// that is still being resolved (spec.md's execution model is
// single-threaded, so this is not about concurrency — it collapses a
// recursive self-call onto the in-flight one instead of recursing).
package reference

import (
	"fmt"

	"golang.org/x/sync/singleflight"

	"hifcore/internal/semantics"
	"hifcore/internal/tree"
)

// Options controls a single GetDeclaration lookup.
type Options struct {
	From         tree.NodeID // lexical search origin; defaults to sym's parent scope
	ForceRefresh bool        // bypass the cache and re-resolve
	BeyondScopes bool        // search past the enclosing design unit into libraries
}

// AllRefsOptions controls a GetAllReferences pass.
type AllRefsOptions struct {
	SkipStandardLibrary bool
	Predicate           func(sym tree.NodeID) bool
}

type cacheKey struct {
	sym tree.NodeID
	gen uint32
}

// Resolver caches symbol -> declaration resolutions over one arena.
type Resolver struct {
	arena *tree.Arena
	cache map[cacheKey]tree.NodeID
	group singleflight.Group
}

// New returns a Resolver over a.
func New(a *tree.Arena) *Resolver {
	return &Resolver{arena: a, cache: make(map[cacheKey]tree.NodeID)}
}

// GetDeclaration resolves sym to its declaration by walking Parent links
// outward from opts.From (or sym's parent) until a scope containing a
// matching name is found. Returns tree.NilNode, false on failure —
// never panics, per C1/C2's explicit-absence contract.
func (r *Resolver) GetDeclaration(sym tree.NodeID, sem semantics.LanguageSemantics, opts Options) (tree.NodeID, bool) {
	if !r.arena.IsLive(sym) {
		return tree.NilNode, false
	}
	name, ok := symbolName(r.arena, sym)
	if !ok {
		return tree.NilNode, false
	}

	start := opts.From
	if start == tree.NilNode {
		start = r.arena.Get(sym).Parent
	}
	key := cacheKey{sym: sym, gen: r.arena.Get(sym).Generation()}
	if !opts.ForceRefresh {
		if decl, ok := r.cache[key]; ok {
			return decl, true
		}
	}

	groupKey := fmt.Sprintf("%d:%d:%v", sym, start, opts.BeyondScopes)
	v, err, _ := r.group.Do(groupKey, func() (any, error) {
		decl, ok := r.searchOutward(start, name, opts.BeyondScopes)
		if !ok {
			return tree.NilNode, fmt.Errorf("no declaration")
		}
		return decl, nil
	})
	if err != nil {
		return tree.NilNode, false
	}
	decl := v.(tree.NodeID)
	r.cache[key] = decl
	return decl, true
}

// searchOutward walks scope to scope (via Parent) looking for a declaration
// named name among the scope's declaration lists. beyondScopes allows
// continuing past a DesignUnit boundary into its owning LibraryDef.
func (r *Resolver) searchOutward(scope tree.NodeID, name string, beyondScopes bool) (tree.NodeID, bool) {
	for cur := scope; cur != tree.NilNode && r.arena.IsLive(cur); cur = r.arena.Get(cur).Parent {
		if decl, ok := findNamedIn(r.arena, cur, name); ok {
			return decl, true
		}
		node := r.arena.Get(cur)
		if node.Kind == tree.KindDesignUnit && !beyondScopes {
			return tree.NilNode, false
		}
	}
	return tree.NilNode, false
}

// findNamedIn scans scope's direct declaration-bearing children for one
// whose promoted Name equals name. It does not recurse into nested scopes.
func findNamedIn(a *tree.Arena, scope tree.NodeID, name string) (tree.NodeID, bool) {
	for _, child := range a.Children(scope) {
		if !a.IsLive(child) {
			continue
		}
		if n, ok := declName(a, child); ok && n == name {
			return child, true
		}
	}
	return tree.NilNode, false
}

// GetReferences collects every symbol in root that resolves to decl.
func (r *Resolver) GetReferences(decl tree.NodeID, sem semantics.LanguageSemantics, root tree.NodeID) map[tree.NodeID]struct{} {
	into := make(map[tree.NodeID]struct{})
	r.collectReferences(decl, sem, root, into, AllRefsOptions{})
	return into
}

// GetAllReferences walks root once, populating into with decl -> {referencing
// symbols}, honoring opts' standard-library filter and predicate.
func (r *Resolver) GetAllReferences(into map[tree.NodeID]map[tree.NodeID]struct{}, sem semantics.LanguageSemantics, root tree.NodeID, opts AllRefsOptions) {
	r.walk(root, func(n tree.NodeID) {
		if _, ok := symbolName(r.arena, n); !ok {
			return
		}
		if opts.Predicate != nil && !opts.Predicate(n) {
			return
		}
		decl, ok := r.GetDeclaration(n, sem, Options{})
		if !ok {
			return
		}
		if opts.SkipStandardLibrary && r.isStandardLibraryDecl(decl) {
			return
		}
		set, ok := into[decl]
		if !ok {
			set = make(map[tree.NodeID]struct{})
			into[decl] = set
		}
		set[n] = struct{}{}
	})
}

func (r *Resolver) collectReferences(decl tree.NodeID, sem semantics.LanguageSemantics, root tree.NodeID, into map[tree.NodeID]struct{}, opts AllRefsOptions) {
	r.walk(root, func(n tree.NodeID) {
		if _, ok := symbolName(r.arena, n); !ok {
			return
		}
		if d, ok := r.GetDeclaration(n, sem, Options{}); ok && d == decl {
			into[n] = struct{}{}
		}
	})
}

func (r *Resolver) isStandardLibraryDecl(decl tree.NodeID) bool {
	for cur := decl; cur != tree.NilNode && r.arena.IsLive(cur); cur = r.arena.Get(cur).Parent {
		if r.arena.Get(cur).Kind == tree.KindLibraryDef {
			if p, ok := r.arena.Get(cur).Payload.(tree.LibraryDefPayload); ok {
				return p.Standard
			}
		}
	}
	return false
}

func (r *Resolver) walk(n tree.NodeID, visit func(tree.NodeID)) {
	if n == tree.NilNode || !r.arena.IsLive(n) {
		return
	}
	visit(n)
	for _, c := range r.arena.Children(n) {
		r.walk(c, visit)
	}
}

// SetDeclaration manually seeds the cache — used by passes that construct
// a reference and already know its target (e.g. structural rewrites
// introducing an mspw signal reference).
func (r *Resolver) SetDeclaration(sym, decl tree.NodeID) {
	if !r.arena.IsLive(sym) {
		return
	}
	r.cache[cacheKey{sym: sym, gen: r.arena.Get(sym).Generation()}] = decl
}

// ResetDeclarations purges every cached resolution whose symbol lies
// within root (inclusive) — spec.md 4.2: "callers must call
// reset_declarations on the affected subtree."
func (r *Resolver) ResetDeclarations(root tree.NodeID) {
	inside := make(map[tree.NodeID]struct{})
	r.walk(root, func(n tree.NodeID) { inside[n] = struct{}{} })
	for k := range r.cache {
		_, ok := inside[k.sym]
		for cur := k.sym; !ok && cur != tree.NilNode && r.arena.IsLive(cur); cur = r.arena.Get(cur).Parent {
			ok = cur == root
		}
		if ok {
			delete(r.cache, k)
		}
	}
}

// symbolName extracts the referencable name out of a symbol-bearing node:
// Identifier, FieldReference, FunctionCall, TypeReference/ViewReference.
func symbolName(a *tree.Arena, n tree.NodeID) (string, bool) {
	node := a.Get(n)
	switch p := node.Payload.(type) {
	case tree.IdentifierPayload:
		return p.Name, true
	case tree.FieldReferencePayload:
		return p.Field, true
	case tree.FunctionCallPayload:
		return p.Name, true
	case tree.TypeTypeReferencePayload:
		return p.Name, true
	case tree.TypeViewReferencePayload:
		return p.DesignUnitName + "." + p.ViewName, true
	}
	return "", false
}

// declName extracts the declared name of a declaration-bearing node, via
// its promoted Name field where the payload carries one.
func declName(a *tree.Arena, n tree.NodeID) (string, bool) {
	switch p := a.Get(n).Payload.(type) {
	case tree.SignalPayload:
		return p.Name, true
	case tree.PortPayload:
		return p.Name, true
	case tree.VariablePayload:
		return p.Name, true
	case tree.ConstDeclPayload:
		return p.Name, true
	case tree.ParameterPayload:
		return p.Name, true
	case tree.ValueTPPayload:
		return p.Name, true
	case tree.TypeTPPayload:
		return p.Name, true
	case tree.EnumValuePayload:
		return p.Name, true
	case tree.FieldPayload:
		return p.Name, true
	case tree.AliasPayload:
		return p.Name, true
	case tree.FunctionPayload:
		return p.Name, true
	case tree.ProcedurePayload:
		return p.Name, true
	case tree.TypeDefPayload:
		return p.Name, true
	case tree.ViewPayload:
		return p.Name, true
	case tree.DesignUnitPayload:
		return p.Name, true
	case tree.LibraryDefPayload:
		return p.Name, true
	}
	return "", false
}
