package tree

// BList is an owned, ordered list slot on a parent node (ports, parameters,
// aggregate alts, states, actions, ...). Order is part of the list's
// identity: spec.md section 3 calls out that equality is order-sensitive
// wherever order is semantically meaningful.
type BList []NodeID

// Append adds child to the end of the list and attaches it to parent.
func (b *BList) Append(a *Arena, parent NodeID, child NodeID) {
	a.Attach(parent, child)
	*b = append(*b, child)
}

// InsertAt inserts child at position i, attaching it to parent.
func (b *BList) InsertAt(a *Arena, parent NodeID, i int, child NodeID) {
	a.Attach(parent, child)
	*b = append(*b, NilNode)
	copy((*b)[i+1:], (*b)[i:])
	(*b)[i] = child
}

// RemoveAt detaches and queues the element at position i for deletion.
func (b *BList) RemoveAt(a *Arena, i int) {
	id := (*b)[i]
	a.Remove(id)
	*b = append((*b)[:i], (*b)[i+1:]...)
}

// IndexOf returns the position of id in the list, or -1.
func (b BList) IndexOf(id NodeID) int {
	for i, v := range b {
		if v == id {
			return i
		}
	}
	return -1
}

// Equal reports whether two BLists have the same length and the same ids in
// the same order (identity equality, not structural hif.equals — callers
// needing structural equality use internal/sortmatch.MatchTrees).
func (b BList) Equal(other BList) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i] != other[i] {
			return false
		}
	}
	return true
}
