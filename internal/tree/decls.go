package tree

// named is embedded by every declaration: a declared name plus its type and
// optional initial value (shared fields across Signal/Port/Variable/Const/
// Parameter/ValueTP/Field/Alias).
type named struct {
	Name    string
	Type    NodeID
	Initial NodeID // NilNode if none
}

type SignalPayload struct{ named }
type PortPayload struct {
	named
	Direction PortDirection
}

type PortDirection uint8

const (
	DirIn PortDirection = iota
	DirOut
	DirInout
)

type VariablePayload struct{ named }
type ConstDeclPayload struct{ named }
type ParameterPayload struct{ named }

// ValueTPPayload is a compile-time-constant-or-not template value
// parameter (spec.md GLOSSARY: "CTC / non-CTC").
type ValueTPPayload struct {
	named
	CompileTimeConstant bool
}

type EnumValuePayload struct{ named }
type FieldPayload struct{ named }
type AliasPayload struct{ named }

// FunctionPayload / ProcedurePayload are subprogram declarations.
type SubprogramPayload struct {
	Name               string
	ReturnType         NodeID // NilNode for Procedure
	Parameters         BList  // Parameter declarations
	TemplateParameters BList  // ValueTP / TypeTP declarations
	Body               BList  // statement list; a single trailing Return makes the
	                          // subprogram eligible for simplify_functioncalls inlining
	Macro              bool   // MACRO-kind procedures are exempt from global-action lifting
}

type FunctionPayload struct{ SubprogramPayload }
type ProcedurePayload struct{ SubprogramPayload }

type TypeDefPayload struct {
	Name string
	Type NodeID
}

type TypeTPPayload struct {
	Name    string
	Default NodeID // default type, NilNode if none
}

// ViewPayload is a module definition: an Entity (port list) plus Contents.
type ViewPayload struct {
	Name               string
	Entity             NodeID
	Contents           NodeID
	TemplateParameters BList
	Standard           bool // true for a standard-library view; skipped by several passes
}

type EntityPayload struct {
	Ports BList // Port declarations
}

type DesignUnitPayload struct {
	Name  string
	Views BList // View declarations
}

type LibraryDefPayload struct {
	Name      string
	Standard  bool
	DesignUnits BList
}

type SystemPayload struct {
	DesignUnits  BList
	LibraryDefs  BList
	GlobalActions BList
}

// ContentsPayload is the container of declarations, instances, state
// tables, and global actions for a view (spec.md GLOSSARY: "Contents").
type ContentsPayload struct {
	Declarations  BList
	Instances     BList
	StateTables   BList
	GlobalActions BList
	Generates     BList // ForGenerate / IfGenerate, pending expansion
}
