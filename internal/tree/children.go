package tree

// payloadChildren returns every owned child id for a node's payload, used by
// generic traversals (internal/sortmatch.MatchTrees, internal/structural's
// dependency scans) that need every child without a kind-specific visitor.
// Kind-specific rewrites (internal/rewrite.GuideVisitor, internal/fold) use
// typed field access instead of this generic form.
func payloadChildren(kind Kind, payload any) []NodeID {
	var out []NodeID
	add := func(ids ...NodeID) {
		for _, id := range ids {
			if id != NilNode {
				out = append(out, id)
			}
		}
	}
	addList := func(b BList) {
		for _, id := range b {
			if id != NilNode {
				out = append(out, id)
			}
		}
	}
	addSpan := func(r Range) { add(r.Left, r.Right) }

	switch p := payload.(type) {
	case BitValuePayload:
		add(p.Type)
	case BitvectorValuePayload:
		add(p.Type)
	case BoolValuePayload:
		add(p.Type)
	case CharValuePayload:
		add(p.Type)
	case IntValuePayload:
		add(p.Type)
	case RealValuePayload:
		add(p.Type)
	case StringValuePayload:
		add(p.Type)
	case TimeValuePayload:
		add(p.Type)
	case IdentifierPayload:
		// leaf
	case FieldReferencePayload:
		add(p.Prefix)
	case MemberPayload:
		add(p.Prefix, p.Index)
	case SlicePayload:
		add(p.Prefix)
		addSpan(p.Span)
	case ExpressionPayload:
		add(p.Left, p.Right, p.Type)
	case CastPayload:
		add(p.Type, p.Value)
	case FunctionCallPayload:
		addList(p.Parameters)
		addList(p.TemplateParameters)
		add(p.Type)
	case AggregatePayload:
		addList(p.Alts)
		add(p.Others, p.Type)
	case AggregateAltPayload:
		for _, idx := range p.Indices {
			add(idx.Single)
			if idx.Range != nil {
				addSpan(*idx.Range)
			}
		}
		add(p.Value)
	case RecordValuePayload:
		addList(p.Alts)
		add(p.Type)
	case RecordValueAltPayload:
		add(p.Value)
	case WhenExprPayload:
		addList(p.Alts)
		add(p.Default, p.Type)
	case WhenExprAltPayload:
		add(p.Condition, p.Value)
	case WithExprPayload:
		add(p.Condition)
		addList(p.Alts)
		add(p.Default, p.Type)
	case WithExprAltPayload:
		for _, l := range p.Labels {
			add(l.Single)
			if l.Range != nil {
				addSpan(*l.Range)
			}
		}
		add(p.Value)

	case TypeBitPayload:
		addSpan(p.Span)
	case TypeBoolPayload:
		addSpan(p.Span)
	case TypeCharPayload:
		addSpan(p.Span)
	case TypeRealPayload:
		addSpan(p.Span)
	case TypeFilePayload:
		addSpan(p.Span)
	case TypeTimePayload:
		addSpan(p.Span)
	case TypeIntPayload:
		addSpan(p.Span)
	case TypeStringPayload:
		addSpan(p.Span)
	case TypeBitvectorPayload:
		addSpan(p.Span)
	case TypeSignedPayload:
		addSpan(p.Span)
	case TypeUnsignedPayload:
		addSpan(p.Span)
	case TypeArrayPayload:
		addSpan(p.Span)
		add(p.Element)
	case TypeEnumPayload:
		addSpan(p.Span)
		addList(p.Values)
	case TypeRecordPayload:
		addSpan(p.Span)
		addList(p.Fields)
	case TypeReferencePayload:
		addSpan(p.Span)
		add(p.Referenced)
	case TypePointerPayload:
		addSpan(p.Span)
		add(p.Base)
	case TypeTypeReferencePayload:
		addSpan(p.Span)
		addList(p.TemplateParameters)
	case TypeViewReferencePayload:
		addSpan(p.Span)
		addList(p.TemplateParameters)

	case SignalPayload:
		add(p.Type, p.Initial)
	case PortPayload:
		add(p.Type, p.Initial)
	case VariablePayload:
		add(p.Type, p.Initial)
	case ConstDeclPayload:
		add(p.Type, p.Initial)
	case ParameterPayload:
		add(p.Type, p.Initial)
	case ValueTPPayload:
		add(p.Type, p.Initial)
	case EnumValuePayload:
		add(p.Type, p.Initial)
	case FieldPayload:
		add(p.Type, p.Initial)
	case AliasPayload:
		add(p.Type, p.Initial)
	case FunctionPayload:
		add(p.ReturnType)
		addList(p.Parameters)
		addList(p.TemplateParameters)
		addList(p.Body)
	case ProcedurePayload:
		add(p.ReturnType)
		addList(p.Parameters)
		addList(p.TemplateParameters)
		addList(p.Body)
	case TypeDefPayload:
		add(p.Type)
	case TypeTPPayload:
		add(p.Default)
	case ViewPayload:
		add(p.Entity, p.Contents)
		addList(p.TemplateParameters)
	case EntityPayload:
		addList(p.Ports)
	case DesignUnitPayload:
		addList(p.Views)
	case LibraryDefPayload:
		addList(p.DesignUnits)
	case SystemPayload:
		addList(p.DesignUnits)
		addList(p.LibraryDefs)
		addList(p.GlobalActions)
	case ContentsPayload:
		addList(p.Declarations)
		addList(p.Instances)
		addList(p.StateTables)
		addList(p.GlobalActions)
		addList(p.Generates)
	case ForGeneratePayload:
		addSpan(p.Span)
		add(p.Body)
	case IfGeneratePayload:
		add(p.Condition, p.Body)

	case AssignPayload:
		add(p.Target, p.Source)
	case IfStmtPayload:
		addList(p.Alts)
		addList(p.Default)
	case IfAltPayload:
		add(p.Condition)
		addList(p.Body)
	case WhenStmtPayload:
		addList(p.Alts)
		addList(p.Default)
	case WhenStmtAltPayload:
		add(p.Condition)
		addList(p.Body)
	case SwitchStmtPayload:
		add(p.Condition)
		addList(p.Alts)
		addList(p.Default)
	case SwitchAltPayload:
		for _, l := range p.Labels {
			add(l.Single)
			if l.Range != nil {
				addSpan(*l.Range)
			}
		}
		addList(p.Body)
	case WithStmtPayload:
		add(p.Condition)
		addList(p.Alts)
		addList(p.Default)
	case WithStmtAltPayload:
		for _, l := range p.Labels {
			add(l.Single)
			if l.Range != nil {
				addSpan(*l.Range)
			}
		}
		addList(p.Body)
	case ForStmtPayload:
		add(p.Init, p.Condition, p.Step)
		addList(p.Body)
	case WhileStmtPayload:
		add(p.Condition)
		addList(p.Body)
	case ReturnStmtPayload:
		add(p.Value)
	case BreakStmtPayload:
	case ContinueStmtPayload:
	case ProcedureCallStmtPayload:
		addList(p.Parameters)
		addList(p.TemplateParameters)
	case WaitStmtPayload:
		add(p.Condition)
		add(p.Sensitivity...)
	case StateTablePayload:
		add(p.Sensitivity...)
		addList(p.States)
	case StatePayload:
		addList(p.Actions)
	case TransitionPayload:
		add(p.Condition)
		addList(p.Actions)
	case GlobalActionPayload:
		addList(p.Actions)

	case InstancePayload:
		add(p.Referenced)
		addList(p.PortAssigns)
		addList(p.TemplateParameterAssigns)
	case PortAssignPayload:
		add(p.Value)
	case ParameterAssignPayload:
		add(p.Value)
	case TemplateParameterAssignPayload:
		add(p.Value)
	case RangeNodePayload:
		addSpan(p.Span)
	}
	_ = kind
	return out
}
