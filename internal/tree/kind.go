package tree

// Kind tags every node's dynamic variant. spec.md section 9 replaces the
// source's dynamic dispatch by variant with a tagged-variant match: every
// rewrite in internal/simplify and internal/fold switches on Kind (or, for
// C5's double dispatch, on a pair of Kinds) with a default "not applicable"
// branch.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Values
	KindBitValue
	KindBitvectorValue
	KindBoolValue
	KindCharValue
	KindIntValue
	KindRealValue
	KindStringValue
	KindTimeValue
	KindIdentifier
	KindFieldReference
	KindMember
	KindSlice
	KindExpression // binary or unary, disambiguated by Payload.Right == NilNode
	KindCast
	KindFunctionCall
	KindAggregate
	KindAggregateAlt
	KindRecordValue
	KindRecordValueAlt
	KindWhenExpr
	KindWhenExprAlt
	KindWithExpr
	KindWithExprAlt

	// Types
	KindTypeBit
	KindTypeBool
	KindTypeChar
	KindTypeInt
	KindTypeReal
	KindTypeString
	KindTypeBitvector
	KindTypeArray
	KindTypeSigned
	KindTypeUnsigned
	KindTypeEnum
	KindTypeRecord
	KindTypeReference
	KindTypePointer
	KindTypeFile
	KindTypeTime
	KindTypeTypeReference
	KindTypeViewReference

	// Declarations
	KindSignal
	KindPort
	KindVariable
	KindConstDecl
	KindParameter
	KindValueTP
	KindEnumValue
	KindField
	KindAlias
	KindFunction
	KindProcedure
	KindTypeDef
	KindTypeTP
	KindView
	KindEntity
	KindDesignUnit
	KindLibraryDef
	KindSystem
	KindContents

	// Statements / actions
	KindAssign
	KindIfStmt
	KindIfAlt
	KindWhenStmt
	KindWhenStmtAlt
	KindSwitchStmt
	KindSwitchAlt
	KindWithStmt
	KindWithStmtAlt
	KindForStmt
	KindWhileStmt
	KindReturnStmt
	KindBreakStmt
	KindContinueStmt
	KindProcedureCallStmt
	KindWaitStmt
	KindStateTable
	KindState
	KindTransition
	KindGlobalAction

	// Structural
	KindInstance
	KindPortAssign
	KindParameterAssign
	KindTemplateParameterAssign
	KindRangeNode
	KindForGenerate
	KindIfGenerate

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:                 "Invalid",
	KindBitValue:                "BitValue",
	KindBitvectorValue:          "BitvectorValue",
	KindBoolValue:                "BoolValue",
	KindCharValue:                "CharValue",
	KindIntValue:                 "IntValue",
	KindRealValue:                "RealValue",
	KindStringValue:              "StringValue",
	KindTimeValue:                "TimeValue",
	KindIdentifier:               "Identifier",
	KindFieldReference:           "FieldReference",
	KindMember:                   "Member",
	KindSlice:                    "Slice",
	KindExpression:                "Expression",
	KindCast:                      "Cast",
	KindFunctionCall:              "FunctionCall",
	KindAggregate:                 "Aggregate",
	KindAggregateAlt:              "AggregateAlt",
	KindRecordValue:               "RecordValue",
	KindRecordValueAlt:            "RecordValueAlt",
	KindWhenExpr:                  "WhenExpr",
	KindWhenExprAlt:               "WhenExprAlt",
	KindWithExpr:                  "WithExpr",
	KindWithExprAlt:               "WithExprAlt",
	KindTypeBit:                   "TypeBit",
	KindTypeBool:                  "TypeBool",
	KindTypeChar:                  "TypeChar",
	KindTypeInt:                   "TypeInt",
	KindTypeReal:                  "TypeReal",
	KindTypeString:                "TypeString",
	KindTypeBitvector:             "TypeBitvector",
	KindTypeArray:                 "TypeArray",
	KindTypeSigned:                "TypeSigned",
	KindTypeUnsigned:              "TypeUnsigned",
	KindTypeEnum:                  "TypeEnum",
	KindTypeRecord:                "TypeRecord",
	KindTypeReference:             "TypeReference",
	KindTypePointer:               "TypePointer",
	KindTypeFile:                  "TypeFile",
	KindTypeTime:                  "TypeTime",
	KindTypeTypeReference:         "TypeTypeReference",
	KindTypeViewReference:         "TypeViewReference",
	KindSignal:                    "Signal",
	KindPort:                      "Port",
	KindVariable:                  "Variable",
	KindConstDecl:                 "Const",
	KindParameter:                 "Parameter",
	KindValueTP:                   "ValueTP",
	KindEnumValue:                 "EnumValue",
	KindField:                     "Field",
	KindAlias:                     "Alias",
	KindFunction:                  "Function",
	KindProcedure:                 "Procedure",
	KindTypeDef:                   "TypeDef",
	KindTypeTP:                    "TypeTP",
	KindView:                      "View",
	KindEntity:                    "Entity",
	KindDesignUnit:                "DesignUnit",
	KindLibraryDef:                "LibraryDef",
	KindSystem:                    "System",
	KindContents:                  "Contents",
	KindAssign:                    "Assign",
	KindIfStmt:                    "If",
	KindIfAlt:                     "IfAlt",
	KindWhenStmt:                  "When",
	KindWhenStmtAlt:               "WhenAlt",
	KindSwitchStmt:                "Switch",
	KindSwitchAlt:                 "SwitchAlt",
	KindWithStmt:                  "With",
	KindWithStmtAlt:               "WithAlt",
	KindForStmt:                   "For",
	KindWhileStmt:                 "While",
	KindReturnStmt:                "Return",
	KindBreakStmt:                 "Break",
	KindContinueStmt:              "Continue",
	KindProcedureCallStmt:         "ProcedureCall",
	KindWaitStmt:                  "Wait",
	KindStateTable:                "StateTable",
	KindState:                     "State",
	KindTransition:                "Transition",
	KindGlobalAction:              "GlobalAction",
	KindInstance:                  "Instance",
	KindPortAssign:                "PortAssign",
	KindParameterAssign:           "ParameterAssign",
	KindTemplateParameterAssign:   "TemplateParameterAssign",
	KindRangeNode:                 "Range",
	KindForGenerate:               "ForGenerate",
	KindIfGenerate:                "IfGenerate",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// IsValue reports whether k tags a value (expression) variant.
func (k Kind) IsValue() bool {
	return k >= KindBitValue && k <= KindWithExprAlt
}

// IsType reports whether k tags a type variant.
func (k Kind) IsType() bool {
	return k >= KindTypeBit && k <= KindTypeViewReference
}

// IsDeclaration reports whether k tags a declaration variant.
func (k Kind) IsDeclaration() bool {
	return k >= KindSignal && k <= KindContents
}

// IsStatement reports whether k tags a statement/action variant.
func (k Kind) IsStatement() bool {
	return k >= KindAssign && k <= KindGlobalAction
}
