// Package rewrite implements C4 (spec.md section 4.4): a double-dispatch
// guide-visitor traversal that visits children before the node, dispatching
// to per-variant hooks that return an integer status, plus a batched Trash
// collector so deletes never invalidate an in-flight traversal. Grounded on
// the teacher's Expr/Stmt Accept(visitor) double dispatch
// (internal/parser/ast.go, stmt.go): every AST node there implements
// Accept(Visitor) and calls the matching VisitXxx method; this package
// generalizes that pattern from "one fixed Visitor interface per node type"
// to a single GuideVisitor whose hooks are addressed by tree.Kind, since the
// tree's payload variants (internal/tree) are plain structs dispatched by a
// Kind tag rather than by Go's own type system.
package rewrite

import "hifcore/internal/tree"

// Status is the result a per-variant hook returns.
type Status int

const (
	// Continue means the node (as possibly replaced) was handled normally;
	// traversal proceeds to the node's siblings.
	Continue Status = iota
	// Replaced means the hook replaced this node's slot; the visitor must
	// not also descend into the node's original children.
	Replaced
	// Removed means the hook removed this node entirely (zero replacement
	// siblings); traversal skips to the next sibling without revisiting.
	Removed
)

// Hook is a per-variant rewrite callback: given the node and its arena, it
// may mutate the tree (replacing/removing the node via arena operations)
// and returns a Status describing what happened.
type Hook func(a *tree.Arena, n tree.NodeID) Status

// GuideVisitor is a traversal driven by a table of per-Kind hooks. Kinds
// with no registered hook are traversed but left untouched — "subclasses
// override only the variants they care about" (spec.md section 4.4).
type GuideVisitor struct {
	hooks map[tree.Kind]Hook
	trash *Trash
}

// New returns a GuideVisitor with no hooks registered.
func New() *GuideVisitor {
	return &GuideVisitor{hooks: make(map[tree.Kind]Hook), trash: NewTrash()}
}

// On registers hook for kind, overwriting any previous registration.
func (g *GuideVisitor) On(kind tree.Kind, hook Hook) *GuideVisitor {
	g.hooks[kind] = hook
	return g
}

// Trash batches node removals raised during a single Walk call so that
// traversal-order iterators (BList ranges, arena.Children slices already
// taken) are never invalidated mid-traversal — flushed once per node's
// post-visit, matching spec.md 4.4: "batches deletes... flushed at the end
// of each node's post-visit."
type Trash struct {
	pending []tree.NodeID
}

func NewTrash() *Trash { return &Trash{} }

// Add queues id for removal.
func (t *Trash) Add(id tree.NodeID) { t.pending = append(t.pending, id) }

// Flush removes every queued node from a and clears the queue.
func (t *Trash) Flush(a *tree.Arena) {
	for _, id := range t.pending {
		if a.IsLive(id) {
			a.Remove(id)
		}
	}
	t.pending = t.pending[:0]
	a.Flush()
}

// TrashCollector exposes the visitor's batched-delete collector so hooks can queue
// removals instead of calling a.Remove directly mid-traversal.
func (g *GuideVisitor) TrashCollector() *Trash { return g.trash }

// Walk traverses root post-order (children before the node, per spec.md
// 4.4), applying any hook registered for each node's kind, and flushes the
// Trash collector once per node after its hook runs.
func (g *GuideVisitor) Walk(a *tree.Arena, root tree.NodeID) Status {
	if root == tree.NilNode || !a.IsLive(root) {
		return Continue
	}

	for _, child := range a.Children(root) {
		if !a.IsLive(child) {
			continue
		}
		g.Walk(a, child)
	}

	status := Continue
	if hook, ok := g.hooks[a.Get(root).Kind]; ok {
		status = hook(a, root)
	}
	g.trash.Flush(a)
	return status
}

// WalkAll runs Walk over every root in roots, in order.
func (g *GuideVisitor) WalkAll(a *tree.Arena, roots []tree.NodeID) {
	for _, r := range roots {
		g.Walk(a, r)
	}
}

// Replace atomically swaps child's parent-slot contents: detaches the old
// subtree (queued in trash) and attaches replacement in its place. The
// caller is responsible for actually relinking replacement into whatever
// BList or named field held child — Replace only manages arena bookkeeping,
// since the tree has no generic "parent slot" abstraction to update
// automatically (spec.md 4.4: "update the parent slot atomically").
func Replace(a *tree.Arena, trash *Trash, old, replacement tree.NodeID) {
	parent := a.Get(old).Parent
	a.Detach(old)
	trash.Add(old)
	if replacement != tree.NilNode && parent != tree.NilNode {
		a.Attach(parent, replacement)
	}
}
