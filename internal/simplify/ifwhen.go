package simplify

import "hifcore/internal/tree"

// TransformIfToWhen converts an IfStmt whose every alt and default body is a
// single Return into an equivalent WhenExpr value — spec.md §4.6's
// conditional-flattening rewrites extended to this statement<->expression
// pair. Reports false, building nothing, when any branch isn't shaped that
// way (more than one action, or an action other than Return). Mirrors
// original_source's transformIfToWhen: the caller decides what replaces
// ifStmt (typically a bare ReturnStmt wrapping the new WhenExpr) since the
// If itself is left untouched here, exactly as transformIfToWhen.cpp leaves
// its input If alone and only hands back the built When.
func TransformIfToWhen(a *tree.Arena, ifStmt tree.NodeID) (tree.NodeID, bool) {
	ip, ok := a.Get(ifStmt).Payload.(tree.IfStmtPayload)
	if !ok {
		return tree.NilNode, false
	}
	for _, altID := range ip.Alts {
		alt, ok := a.Get(altID).Payload.(tree.IfAltPayload)
		if !ok {
			return tree.NilNode, false
		}
		if _, ok := singleReturnValue(a, alt.Body); !ok && len(alt.Body) > 0 {
			return tree.NilNode, false
		}
	}
	if _, ok := singleReturnValue(a, ip.Default); !ok && len(ip.Default) > 0 {
		return tree.NilNode, false
	}

	var alts tree.BList
	for _, altID := range ip.Alts {
		alt, ok := a.Get(altID).Payload.(tree.IfAltPayload)
		if !ok {
			return tree.NilNode, false
		}
		if len(alt.Body) == 0 {
			continue
		}
		value, ok := singleReturnValue(a, alt.Body)
		if !ok {
			return tree.NilNode, false
		}
		wa := a.New(tree.KindWhenExprAlt, tree.WhenExprAltPayload{
			Condition: a.Clone(alt.Condition),
			Value:     a.Clone(value),
		})
		attachPayloadChildren(a, wa)
		alts = append(alts, wa)
	}

	def := tree.NilNode
	if len(ip.Default) > 0 {
		value, ok := singleReturnValue(a, ip.Default)
		if !ok {
			return tree.NilNode, false
		}
		def = a.Clone(value)
	}

	when := a.New(tree.KindWhenExpr, tree.WhenExprPayload{Alts: alts, Default: def})
	attachPayloadChildren(a, when)
	return when, true
}

// singleReturnValue requires body to hold exactly one ReturnStmt with a
// non-nil value and returns that value's node id.
func singleReturnValue(a *tree.Arena, body tree.BList) (tree.NodeID, bool) {
	if len(body) != 1 {
		return tree.NilNode, false
	}
	ret, ok := a.Get(body[0]).Payload.(tree.ReturnStmtPayload)
	if !ok || ret.Value == tree.NilNode {
		return tree.NilNode, false
	}
	return ret.Value, true
}

// TransformWhenToIf converts a WhenExpr into an equivalent IfStmt, the
// inverse of TransformIfToWhen. The conversion only makes sense when
// is the direct Source of an Assign or the direct Value of a Return — that
// parent shape is duplicated once per alt (and once for the default),
// each copy's When-bearing slot replaced with the alt's own value, mirroring
// original_source's transformWhenToIf (which copies the parent action and
// splices each alt's value into the matching slot via matchObject). Reports
// false when when's parent isn't one of those two shapes.
func TransformWhenToIf(a *tree.Arena, when tree.NodeID) (tree.NodeID, bool) {
	wp, ok := a.Get(when).Payload.(tree.WhenExprPayload)
	if !ok {
		return tree.NilNode, false
	}
	parent := a.Get(when).Parent
	if parent == tree.NilNode {
		return tree.NilNode, false
	}

	buildAction, ok := actionBuilder(a, parent, when)
	if !ok {
		return tree.NilNode, false
	}

	var alts tree.BList
	for _, waID := range wp.Alts {
		wa := a.Get(waID).Payload.(tree.WhenExprAltPayload)
		action := buildAction(wa.Value)
		ifAlt := a.New(tree.KindIfAlt, tree.IfAltPayload{
			Condition: a.Clone(wa.Condition),
			Body:      tree.BList{action},
		})
		attachPayloadChildren(a, ifAlt)
		alts = append(alts, ifAlt)
	}

	var def tree.BList
	if wp.Default != tree.NilNode {
		def = tree.BList{buildAction(wp.Default)}
	}

	ifStmt := a.New(tree.KindIfStmt, tree.IfStmtPayload{Alts: alts, Default: def})
	attachPayloadChildren(a, ifStmt)
	return ifStmt, true
}

// actionBuilder returns a function that, given one WhenExprAlt's value,
// produces a fresh statement shaped like parent (an Assign or a Return)
// with that value spliced into parent's When-bearing slot.
func actionBuilder(a *tree.Arena, parent, when tree.NodeID) (func(value tree.NodeID) tree.NodeID, bool) {
	switch pp := a.Get(parent).Payload.(type) {
	case tree.AssignPayload:
		if pp.Source != when {
			return nil, false
		}
		target := pp.Target
		return func(value tree.NodeID) tree.NodeID {
			n := a.New(tree.KindAssign, tree.AssignPayload{Target: a.Clone(target), Source: a.Clone(value), Delta: pp.Delta})
			attachPayloadChildren(a, n)
			return n
		}, true
	case tree.ReturnStmtPayload:
		if pp.Value != when {
			return nil, false
		}
		return func(value tree.NodeID) tree.NodeID {
			n := a.New(tree.KindReturnStmt, tree.ReturnStmtPayload{Value: a.Clone(value)})
			attachPayloadChildren(a, n)
			return n
		}, true
	default:
		return nil, false
	}
}

// attachPayloadChildren attaches every child payloadChildren reports for n
// under n — used right after constructing a node whose children were built
// (and so are still parentless) before the New call populated its payload.
func attachPayloadChildren(a *tree.Arena, n tree.NodeID) {
	for _, c := range a.Children(n) {
		if a.Get(c).Parent == tree.NilNode {
			a.Attach(n, c)
		}
	}
}
