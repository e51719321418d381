// Package tree implements the arena-backed object model the rest of the
// engine operates on: a strictly tree-shaped ownership graph of "objects"
// (values, types, declarations, statements, and structural nodes) addressed
// by index rather than pointer.
//
// Cross references (symbol -> declaration, value -> semantic type) are kept
// as side tables in internal/reference and internal/typeinfer, keyed on a
// node's (NodeID, generation) pair so that a mutation can invalidate cached
// results without walking the whole tree.
package tree

import "fmt"

// NodeID addresses a node inside an Arena. The zero value, NilNode, never
// refers to a live node and is used as the "absent" sentinel for optional
// children (e.g. a Range with no explicit right bound).
type NodeID uint32

// NilNode is the sentinel for "no node".
const NilNode NodeID = 0

// slot holds one arena entry: the live node plus bookkeeping used for
// ownership and cache invalidation.
type slot struct {
	node Node
	live bool
}

// Node is one entry in the arena. Payload carries the kind-specific data
// (see values.go, types.go, decls.go, stmts.go); Parent/gen are bookkeeping
// shared by every kind.
type Node struct {
	Kind    Kind
	Parent  NodeID
	gen     uint32 // bumped on any mutation that can invalidate C2/C3 caches
	Payload any
}

// Generation returns the node's current generation counter. C2 and C3 key
// their caches on (NodeID, Generation) so that a stale cache entry is never
// consulted after a mutation.
func (n Node) Generation() uint32 { return n.gen }

// Arena owns every node created for one design tree. The zero Arena is not
// usable; use NewArena.
type Arena struct {
	slots []slot
	trash []NodeID
}

// NewArena returns an empty arena. Index 0 is reserved for NilNode so every
// real node has a nonzero id.
func NewArena() *Arena {
	a := &Arena{slots: make([]slot, 1, 64)}
	a.slots[0] = slot{live: false}
	return a
}

// New allocates a node of the given kind with the given payload and returns
// its id. The node has no parent until Attach is called.
func (a *Arena) New(kind Kind, payload any) NodeID {
	id := NodeID(len(a.slots))
	a.slots = append(a.slots, slot{node: Node{Kind: kind, Parent: NilNode, Payload: payload}, live: true})
	return id
}

// Get returns the node for id. Panics on a dangling or trashed id: callers
// that walk the tree via Children/BList entries never hold such an id
// because Remove clears every reference to a subtree before the subtree is
// trashed (see Trash in internal/rewrite).
func (a *Arena) Get(id NodeID) *Node {
	if id == NilNode {
		panic("tree: Get(NilNode)")
	}
	s := &a.slots[id]
	if !s.live {
		panic(fmt.Sprintf("tree: Get(%d): node is not live", id))
	}
	return &s.node
}

// IsLive reports whether id refers to a live node.
func (a *Arena) IsLive(id NodeID) bool {
	if id == NilNode || int(id) >= len(a.slots) {
		return false
	}
	return a.slots[id].live
}

// Bump increments id's generation counter, invalidating any cached
// declaration/type keyed on its previous generation. Every rewrite that
// changes a node's children in a way that can affect semantic typing or
// resolution must call Bump.
func (a *Arena) Bump(id NodeID) {
	if !a.IsLive(id) {
		return
	}
	a.slots[id].node.gen++
}

// Attach sets child's parent to parent. child must not already have a
// parent; detach it first (single-parent invariant, spec.md section 3).
func (a *Arena) Attach(parent, child NodeID) {
	if child == NilNode {
		return
	}
	c := a.Get(child)
	if c.Parent != NilNode {
		panic(fmt.Sprintf("tree: Attach(%d, %d): child already has parent %d", parent, child, c.Parent))
	}
	c.Parent = parent
}

// Detach clears child's parent slot, preparing it for reinsertion elsewhere
// or for deletion via Remove.
func (a *Arena) Detach(child NodeID) {
	if child == NilNode {
		return
	}
	a.Get(child).Parent = NilNode
}

// Remove detaches id (if attached) and queues its entire subtree for
// deletion. Deletion is deferred to Flush so that a traversal in progress
// never observes an id vanish mid-step (spec.md section 5's Trash queue).
func (a *Arena) Remove(id NodeID) {
	if id == NilNode {
		return
	}
	a.Detach(id)
	a.trash = append(a.trash, id)
}

// Flush deallocates every subtree queued by Remove since the last Flush. No
// node in the trash may still be referenced from a live slot; callers are
// responsible for rewriting or dropping every such reference before Flush
// runs (enforced in practice by internal/rewrite's Trash collector, which
// flushes once per node's post-visit).
func (a *Arena) Flush() {
	for _, id := range a.trash {
		a.deleteSubtree(id)
	}
	a.trash = a.trash[:0]
}

func (a *Arena) deleteSubtree(id NodeID) {
	if !a.IsLive(id) {
		return
	}
	for _, child := range a.Children(id) {
		a.deleteSubtree(child)
	}
	a.slots[id] = slot{live: false}
}

// Children returns every direct child id of n, in the order defined by the
// node's payload (BLists preserve insertion order; single-slot children are
// returned in a fixed field order). Used by generic traversals such as
// sortmatch.MatchTrees and structural dependency scans that don't need a
// kind-specific visitor.
func (a *Arena) Children(id NodeID) []NodeID {
	n := a.Get(id)
	return payloadChildren(n.Kind, n.Payload)
}

// Root walks Parent pointers from id to the top of the tree.
func (a *Arena) Root(id NodeID) NodeID {
	for {
		n := a.Get(id)
		if n.Parent == NilNode {
			return id
		}
		id = n.Parent
	}
}
