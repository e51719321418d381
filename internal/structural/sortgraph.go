package structural

import "hifcore/internal/tree"

// SortGraph topologically sorts nodes given a dependency map: deps[n] is
// the set of nodes that must appear before n. It returns the nodes in a
// valid order, or ok=false if deps contains a cycle. Grounded on
// original_source/include/hif/analysis/sortGraph.hpp. No other function in
// this module calls it; FindViewDependencies returns its views unsorted.
func SortGraph(nodes []tree.NodeID, deps map[tree.NodeID][]tree.NodeID) (order []tree.NodeID, ok bool) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[tree.NodeID]int, len(nodes))
	order = make([]tree.NodeID, 0, len(nodes))
	ok = true

	var visit func(n tree.NodeID)
	visit = func(n tree.NodeID) {
		if !ok {
			return
		}
		switch color[n] {
		case black:
			return
		case gray:
			ok = false
			return
		}
		color[n] = gray
		for _, d := range deps[n] {
			visit(d)
			if !ok {
				return
			}
		}
		color[n] = black
		order = append(order, n)
	}

	for _, n := range nodes {
		if color[n] == white {
			visit(n)
			if !ok {
				return nil, false
			}
		}
	}
	return order, true
}
