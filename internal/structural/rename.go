package structural

import "hifcore/internal/tree"

// CheckConflictingName reports whether name is already declared by one of
// scope's direct declaration children (other than ignore, if it is one of
// them) — spec.md section 12's checkConflictingName, used before
// generate-expansion or mspw-signal insertion introduces a new declaration.
// Grounded on original_source/src/manipulation/checkConflictingName.cpp.
func CheckConflictingName(a *tree.Arena, scope tree.NodeID, name string, ignore tree.NodeID) bool {
	for _, c := range a.Children(scope) {
		if c == ignore || !a.IsLive(c) {
			continue
		}
		if declName(a, c) == name {
			return true
		}
	}
	return false
}

// RenameInScope renames decl (a declaration somewhere under scope) to
// newName, and rewrites every reference to it found within scope to match.
// Grounded on original_source/src/manipulation/renameInScope.cpp.
func (p *Pass) RenameInScope(scope, decl tree.NodeID, newName string) {
	setDeclName(p.Arena, decl, newName)
	refs := p.Refs.GetReferences(decl, p.Sem, scope)
	for sym := range refs {
		setSymbolName(p.Arena, sym, newName)
	}
	p.Refs.ResetDeclarations(scope)
}

// RenameConflictingDeclarations walks every declaration directly owned by
// scope and renames (via fresh, a name-freshness handle) any whose name
// collides with an earlier sibling or with an already-renamed declaration —
// used after generate-expansion clones a loop body's declarations N times
// and after mspw support-signal insertion, both of which can introduce
// duplicate names in one scope. Grounded on
// original_source/src/manipulation/renameConflictingDeclarations.cpp.
func (p *Pass) RenameConflictingDeclarations(scope tree.NodeID) {
	seen := make(map[string]struct{})
	for _, c := range p.Arena.Children(scope) {
		if !p.Arena.IsLive(c) {
			continue
		}
		name := declName(p.Arena, c)
		if name == "" {
			continue
		}
		if _, taken := seen[name]; !taken {
			seen[name] = struct{}{}
			continue
		}
		newName := p.Fresh.Fresh(name)
		p.RenameInScope(scope, c, newName)
		seen[newName] = struct{}{}
	}
}

func setDeclName(a *tree.Arena, n tree.NodeID, name string) {
	node := a.Get(n)
	switch p := node.Payload.(type) {
	case tree.SignalPayload:
		p.Name = name
		node.Payload = p
	case tree.PortPayload:
		p.Name = name
		node.Payload = p
	case tree.VariablePayload:
		p.Name = name
		node.Payload = p
	case tree.ConstDeclPayload:
		p.Name = name
		node.Payload = p
	case tree.ParameterPayload:
		p.Name = name
		node.Payload = p
	case tree.ValueTPPayload:
		p.Name = name
		node.Payload = p
	case tree.TypeTPPayload:
		p.Name = name
		node.Payload = p
	case tree.EnumValuePayload:
		p.Name = name
		node.Payload = p
	case tree.FieldPayload:
		p.Name = name
		node.Payload = p
	case tree.AliasPayload:
		p.Name = name
		node.Payload = p
	case tree.FunctionPayload:
		p.Name = name
		node.Payload = p
	case tree.ProcedurePayload:
		p.Name = name
		node.Payload = p
	case tree.TypeDefPayload:
		p.Name = name
		node.Payload = p
	case tree.ViewPayload:
		p.Name = name
		node.Payload = p
	default:
		return
	}
	a.Bump(n)
}

func setSymbolName(a *tree.Arena, n tree.NodeID, name string) {
	node := a.Get(n)
	switch p := node.Payload.(type) {
	case tree.IdentifierPayload:
		p.Name = name
		node.Payload = p
	case tree.FieldReferencePayload:
		p.Field = name
		node.Payload = p
	case tree.FunctionCallPayload:
		p.Name = name
		node.Payload = p
	default:
		return
	}
	a.Bump(n)
}
