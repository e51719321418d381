// Package structural implements C7 (spec.md section 4.7): whole-tree
// structural fixes that normalize a design for a specific target dialect —
// multi-writer signal repair, range-direction normalization, span rebasing,
// edge-expression lowering, top-level module discovery, and global-action
// lifting — plus the supplemented scope/rename/move helpers original_source
// factors out as their own manipulation units (spec.md section 12).
// Grounded on original_source/src/manipulation/*.cpp, each of which takes
// the same (tree, semantics, options) shape this package's Pass mirrors.
package structural

import (
	"hifcore/internal/idgen"
	"hifcore/internal/reference"
	"hifcore/internal/report"
	"hifcore/internal/semantics"
	"hifcore/internal/tree"
	"hifcore/internal/typeinfer"
)

// Pass bundles the collaborators every structural fix needs: the arena, the
// per-language oracle, the shared reference/type caches (so a fix that edits
// the tree doesn't leave other passes working off stale resolutions), a
// name freshener for synthesized declarations, and a report sink for the
// warnings spec.md section 4.7.1 requires ("documented per signal via a
// warning set").
type Pass struct {
	Arena *tree.Arena
	Sem   semantics.LanguageSemantics
	Refs  *reference.Resolver
	Types *typeinfer.Engine
	Fresh *idgen.Freshener
	Report *report.Report
}

// NewPass returns a Pass sharing a single arena/resolver/type-engine set
// across every structural fix invoked on it, per spec.md 4.7's "they share
// the get_all_references map".
func NewPass(a *tree.Arena, sem semantics.LanguageSemantics) *Pass {
	return &Pass{
		Arena:  a,
		Sem:    sem,
		Refs:   reference.New(a),
		Types:  typeinfer.New(a),
		Fresh:  idgen.New(),
		Report: report.New(),
	}
}

// declName reads the promoted Name field off any declaration payload, or
// "" if n is not a named declaration. Shared by every pass in this package
// that needs to label a warning or synthesize a related name.
func declName(a *tree.Arena, n tree.NodeID) string {
	switch p := a.Get(n).Payload.(type) {
	case tree.SignalPayload:
		return p.Name
	case tree.PortPayload:
		return p.Name
	case tree.VariablePayload:
		return p.Name
	case tree.ConstDeclPayload:
		return p.Name
	case tree.ParameterPayload:
		return p.Name
	case tree.ValueTPPayload:
		return p.Name
	case tree.TypeTPPayload:
		return p.Name
	case tree.EnumValuePayload:
		return p.Name
	case tree.FieldPayload:
		return p.Name
	case tree.AliasPayload:
		return p.Name
	case tree.FunctionPayload:
		return p.Name
	case tree.ProcedurePayload:
		return p.Name
	case tree.TypeDefPayload:
		return p.Name
	case tree.ViewPayload:
		return p.Name
	case tree.DesignUnitPayload:
		return p.Name
	case tree.LibraryDefPayload:
		return p.Name
	}
	return ""
}

// declType reads the promoted Type field off any named-declaration payload.
func declType(a *tree.Arena, n tree.NodeID) tree.NodeID {
	switch p := a.Get(n).Payload.(type) {
	case tree.SignalPayload:
		return p.Type
	case tree.PortPayload:
		return p.Type
	case tree.VariablePayload:
		return p.Type
	case tree.ConstDeclPayload:
		return p.Type
	case tree.ParameterPayload:
		return p.Type
	case tree.ValueTPPayload:
		return p.Type
	case tree.EnumValuePayload:
		return p.Type
	case tree.FieldPayload:
		return p.Type
	case tree.AliasPayload:
		return p.Type
	}
	return tree.NilNode
}

// typeSpan reads a type node's Span field regardless of which spanned kind
// it is; ok is false for kinds that carry no meaningful span (Enum/Record
// carry one too, but TypeReference/TypeTypeReference/TypeViewReference/
// TypePointer are excluded since fixRangesDirection/rebaseTypeSpan only
// operate on the numeric/array/bitvector family spec.md 4.7.2-3 name).
func typeSpan(a *tree.Arena, t tree.NodeID) (tree.Range, bool) {
	switch p := a.Get(t).Payload.(type) {
	case tree.TypeIntPayload:
		return p.Span, true
	case tree.TypeBitvectorPayload:
		return p.Span, true
	case tree.TypeSignedPayload:
		return p.Span, true
	case tree.TypeUnsignedPayload:
		return p.Span, true
	case tree.TypeArrayPayload:
		return p.Span, true
	case tree.TypeStringPayload:
		return p.Span, true
	}
	return tree.Range{}, false
}

func setTypeSpan(a *tree.Arena, t tree.NodeID, span tree.Range) {
	node := a.Get(t)
	switch p := node.Payload.(type) {
	case tree.TypeIntPayload:
		p.Span = span
		node.Payload = p
	case tree.TypeBitvectorPayload:
		p.Span = span
		node.Payload = p
	case tree.TypeSignedPayload:
		p.Span = span
		node.Payload = p
	case tree.TypeUnsignedPayload:
		p.Span = span
		node.Payload = p
	case tree.TypeArrayPayload:
		p.Span = span
		node.Payload = p
	case tree.TypeStringPayload:
		p.Span = span
		node.Payload = p
	default:
		return
	}
	a.Bump(t)
}

// walk visits n and every descendant, pre-order.
func walk(a *tree.Arena, n tree.NodeID, visit func(tree.NodeID)) {
	if n == tree.NilNode || !a.IsLive(n) {
		return
	}
	visit(n)
	for _, c := range a.Children(n) {
		walk(a, c, visit)
	}
}

// rootIdentifier returns the Identifier node a Member/Slice/FieldReference
// chain ultimately prefixes, or the node itself if it already is one —
// spec.md 4.7.6: "Slices/members contribute only their root identifier."
func rootIdentifier(a *tree.Arena, n tree.NodeID) tree.NodeID {
	for a.IsLive(n) {
		switch p := a.Get(n).Payload.(type) {
		case tree.MemberPayload:
			n = p.Prefix
		case tree.SlicePayload:
			n = p.Prefix
		case tree.FieldReferencePayload:
			n = p.Prefix
		default:
			return n
		}
	}
	return n
}
