package tree

// InstancePayload is a module instantiation.
type InstancePayload struct {
	Name               string
	Referenced         NodeID // TypeViewReference naming the instantiated view
	PortAssigns        BList
	TemplateParameterAssigns BList
}

type PortAssignPayload struct {
	Name  string // formal port name
	Value NodeID
}

type ParameterAssignPayload struct {
	Name  string
	Value NodeID
}

type TemplateParameterAssignPayload struct {
	Name  string
	Value NodeID // a value, for ValueTP, or a type, for TypeTP
	IsType bool
}

// RangeNodePayload lets a Range stand on its own as a node (e.g. a Slice's
// span when the slice is rewritten structurally rather than read directly
// off SlicePayload.Span).
type RangeNodePayload struct {
	Span Range
}

// ForGeneratePayload is a `for-generate`: Body's declarations, instances,
// state tables, and global actions are elaborated once per value of Index
// ranging over Span (spec.md section 4.6's "Loops and generates"), until
// internal/structural's generate expander unrolls it into its parent
// Contents and discards this node.
type ForGeneratePayload struct {
	Name  string // generate-block label
	Index string // loop variable name, substituted per iteration
	Span  Range
	Body  NodeID // a Contents holding one iteration's unexpanded content
}

// IfGeneratePayload is an `if-generate`: Body is elaborated only when
// Condition holds at expansion time, otherwise the whole block is dropped.
type IfGeneratePayload struct {
	Name      string
	Condition NodeID
	Body      NodeID // a Contents holding the conditional content
}
