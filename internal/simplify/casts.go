package simplify

import (
	"hifcore/internal/fold"
	"hifcore/internal/tree"
)

// --- extended Cast rules (spec.md §4.6 "Casts") --------------------------
//
// simplifyCast (simplify.go) already collapses identical-type casts and
// removes useless nested casts; the rules below round out the rest of the
// family, grounded on original_source/src/manipulation/simplify.cpp's
// cast-handling block.

// simplifyCastExtra is tried by simplifyCast once the identical-type and
// nested-cast rules have both failed to fire.
func (d *Driver) simplifyCastExtra(node tree.NodeID, p tree.CastPayload) (tree.NodeID, bool) {
	if next, ok := d.transformConstant(node, p); ok {
		return next, true
	}
	if next, ok := d.simplifyCastOfConcat(node, p); ok {
		return next, true
	}
	if next, ok := d.pushCastIntoAggregate(node, p); ok {
		return next, true
	}
	if next, ok := d.pushCastIntoRecord(node, p); ok {
		return next, true
	}
	if next, ok := d.transformCastToAggregate(node, p); ok {
		return next, true
	}
	if next, ok := d.transformArrayToIntCast(node, p); ok {
		return next, true
	}
	if next, ok := d.narrowWideMultiplication(node, p); ok {
		return next, true
	}
	return node, false
}

// transformConstant folds a cast of a literal constant directly into a
// literal of the target type, reusing fold.ParseRealText for Real operands
// so a cast to Real reconstitutes the exact written value rather than
// round-tripping through a binary approximation a second time.
func (d *Driver) transformConstant(node tree.NodeID, p tree.CastPayload) (tree.NodeID, bool) {
	targetBase := d.types.BaseType(p.Type, true, d.sem, false)

	switch target := d.arena.Get(targetBase).Payload.(type) {
	case tree.TypeIntPayload:
		switch v := d.arena.Get(p.Value).Payload.(type) {
		case tree.BitValuePayload:
			if v.Value.IsUnknown() {
				return node, false
			}
			val := int64(0)
			if v.Value == tree.Bit1 {
				val = 1
			}
			return d.replace(node, d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: val})), true
		case tree.BitvectorValuePayload:
			val, ok := bitsToInt(v.Value)
			if !ok {
				return node, false
			}
			return d.replace(node, d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: val})), true
		}
	case tree.TypeBitvectorPayload:
		width := d.types.SpanBitwidth(target.Span)
		if v, ok := d.arena.Get(p.Value).Payload.(tree.IntValuePayload); ok && v.Big == nil && width > 0 && width <= 4096 {
			return d.replace(node, d.arena.New(tree.KindBitvectorValue, tree.BitvectorValuePayload{Value: intToBits(v.Value, int(width))})), true
		}
	case tree.TypeRealPayload:
		if v, ok := d.arena.Get(p.Value).Payload.(tree.StringValuePayload); ok {
			if f, ok := fold.ParseRealText(v.Value); ok {
				return d.replace(node, d.arena.New(tree.KindRealValue, tree.RealValuePayload{Value: f})), true
			}
		}
	}
	return node, false
}

func bitsToInt(bits []tree.BitState) (int64, bool) {
	var val int64
	for _, b := range bits {
		if b.IsUnknown() {
			return 0, false
		}
		val <<= 1
		if b == tree.Bit1 {
			val |= 1
		}
	}
	return val, true
}

func intToBits(v int64, width int) []tree.BitState {
	bits := make([]tree.BitState, width)
	for i := 0; i < width; i++ {
		shift := uint(width - 1 - i)
		if (v>>shift)&1 == 1 {
			bits[i] = tree.Bit1
		} else {
			bits[i] = tree.Bit0
		}
	}
	return bits
}

// simplifyCastOfConcat narrows `T(a_w1 , b_w2 , ... , z_wn)` to just the
// right-most elements whose combined width covers T, when T is narrower
// than the whole concat and the dropped left-hand elements carry no side
// effects (they are pure value expressions, never statements).
func (d *Driver) simplifyCastOfConcat(node tree.NodeID, p tree.CastPayload) (tree.NodeID, bool) {
	expr, ok := d.arena.Get(p.Value).Payload.(tree.ExpressionPayload)
	if !ok || expr.Operator != tree.OpConcat {
		return node, false
	}
	targetBase := d.types.BaseType(p.Type, true, d.sem, false)
	targetSpan, ok := d.types.TypeGetSpan(targetBase, d.sem)
	if !ok {
		return node, false
	}
	targetWidth := d.types.SpanBitwidth(targetSpan)
	if targetWidth == 0 {
		return node, false
	}

	concatType, ok := d.types.SemanticType(p.Value, d.sem)
	if !ok {
		return node, false
	}
	concatSpan, ok := d.types.TypeGetSpan(d.types.BaseType(concatType, true, d.sem, false), d.sem)
	if !ok {
		return node, false
	}
	concatWidth := d.types.SpanBitwidth(concatSpan)
	if concatWidth == 0 || targetWidth >= concatWidth {
		return node, false
	}

	elements := collectConcatElements(d.arena, p.Value)
	widths := make([]int64, len(elements))
	for i, el := range elements {
		t, ok := d.types.SemanticType(el, d.sem)
		if !ok {
			return node, false
		}
		s, ok := d.types.TypeGetSpan(d.types.BaseType(t, true, d.sem, false), d.sem)
		if !ok {
			return node, false
		}
		bw := int64(d.types.SpanBitwidth(s))
		if bw == 0 {
			return node, false
		}
		widths[i] = bw
	}

	// Keep the right-most elements whose widths sum to exactly targetWidth.
	need := int64(targetWidth)
	cut := len(elements)
	for cut > 0 && need > 0 {
		cut--
		need -= widths[cut]
	}
	if need != 0 {
		return node, false
	}
	kept := elements[cut:]
	if len(kept) == len(elements) {
		return node, false
	}

	var chain tree.NodeID
	for _, el := range kept {
		cloned := d.arena.Clone(el)
		if chain == tree.NilNode {
			chain = cloned
			continue
		}
		concat := d.arena.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpConcat, Left: chain, Right: cloned})
		d.arena.Attach(concat, chain)
		d.arena.Attach(concat, cloned)
		chain = concat
	}
	return d.replace(node, chain), true
}

// pushCastIntoAggregate pushes a cast of an aggregate into each alt value
// and the `others` default, so each literal is folded against its own
// element type rather than the aggregate's.
func (d *Driver) pushCastIntoAggregate(node tree.NodeID, p tree.CastPayload) (tree.NodeID, bool) {
	agg, ok := d.arena.Get(p.Value).Payload.(tree.AggregatePayload)
	if !ok {
		return node, false
	}
	targetBase := d.types.BaseType(p.Type, true, d.sem, false)
	arr, ok := d.arena.Get(targetBase).Payload.(tree.TypeArrayPayload)
	if !ok {
		return node, false
	}
	elemType := arr.Element

	newAlts := make(tree.BList, 0, len(agg.Alts))
	for _, altID := range agg.Alts {
		alt := d.arena.Get(altID).Payload.(tree.AggregateAltPayload)
		value := alt.Value
		if d.arena.Get(value).Parent == altID {
			d.arena.Detach(value)
		}
		castType := d.arena.Clone(elemType)
		cast := d.arena.New(tree.KindCast, tree.CastPayload{Type: castType, Value: value})
		d.arena.Attach(cast, castType)
		d.arena.Attach(cast, value)
		newAlt := d.arena.New(tree.KindAggregateAlt, tree.AggregateAltPayload{Indices: alt.Indices, Value: cast})
		d.arena.Attach(newAlt, cast)
		for _, idx := range alt.Indices {
			if idx.Single != tree.NilNode && d.arena.Get(idx.Single).Parent == altID {
				d.arena.Detach(idx.Single)
				d.arena.Attach(newAlt, idx.Single)
			}
			if idx.Range != nil {
				if idx.Range.Left != tree.NilNode && d.arena.Get(idx.Range.Left).Parent == altID {
					d.arena.Detach(idx.Range.Left)
					d.arena.Attach(newAlt, idx.Range.Left)
				}
				if idx.Range.Right != tree.NilNode && d.arena.Get(idx.Range.Right).Parent == altID {
					d.arena.Detach(idx.Range.Right)
					d.arena.Attach(newAlt, idx.Range.Right)
				}
			}
		}
		newAlts = append(newAlts, newAlt)
	}

	others := agg.Others
	if others != tree.NilNode {
		if d.arena.Get(others).Parent == p.Value {
			d.arena.Detach(others)
		}
		castType := d.arena.Clone(elemType)
		cast := d.arena.New(tree.KindCast, tree.CastPayload{Type: castType, Value: others})
		d.arena.Attach(cast, castType)
		d.arena.Attach(cast, others)
		others = cast
	}

	newAgg := d.arena.New(tree.KindAggregate, tree.AggregatePayload{Alts: newAlts, Others: others})
	for _, a := range newAlts {
		d.arena.Attach(newAgg, a)
	}
	if others != tree.NilNode {
		d.arena.Attach(newAgg, others)
	}
	return d.replace(node, newAgg), true
}

// pushCastIntoRecord pushes a cast of a record value into each field,
// matching each alt's field name against the target record type's own
// field declarations.
func (d *Driver) pushCastIntoRecord(node tree.NodeID, p tree.CastPayload) (tree.NodeID, bool) {
	rec, ok := d.arena.Get(p.Value).Payload.(tree.RecordValuePayload)
	if !ok {
		return node, false
	}
	targetBase := d.types.BaseType(p.Type, true, d.sem, false)
	recType, ok := d.arena.Get(targetBase).Payload.(tree.TypeRecordPayload)
	if !ok {
		return node, false
	}
	fieldType := make(map[string]tree.NodeID, len(recType.Fields))
	for _, fid := range recType.Fields {
		fp, ok := d.arena.Get(fid).Payload.(tree.FieldPayload)
		if !ok {
			return node, false
		}
		fieldType[fp.Name] = fp.Type
	}

	newAlts := make(tree.BList, 0, len(rec.Alts))
	for _, altID := range rec.Alts {
		alt := d.arena.Get(altID).Payload.(tree.RecordValueAltPayload)
		ft, ok := fieldType[alt.Field]
		if !ok {
			return node, false
		}
		value := alt.Value
		if d.arena.Get(value).Parent == altID {
			d.arena.Detach(value)
		}
		castType := d.arena.Clone(ft)
		cast := d.arena.New(tree.KindCast, tree.CastPayload{Type: castType, Value: value})
		d.arena.Attach(cast, castType)
		d.arena.Attach(cast, value)
		newAlt := d.arena.New(tree.KindRecordValueAlt, tree.RecordValueAltPayload{Field: alt.Field, Value: cast})
		d.arena.Attach(newAlt, cast)
		newAlts = append(newAlts, newAlt)
	}
	newRec := d.arena.New(tree.KindRecordValue, tree.RecordValuePayload{Alts: newAlts})
	for _, a := range newAlts {
		d.arena.Attach(newRec, a)
	}
	return d.replace(node, newRec), true
}

// transformCastToAggregate converts a cast from a bitvector value to an
// array type into an explicit aggregate of per-element slices, so later
// passes can reason about each element independently (spec.md §4.6 Casts,
// "Convert casts from bitvector to array types into an explicit aggregate
// of slices").
func (d *Driver) transformCastToAggregate(node tree.NodeID, p tree.CastPayload) (tree.NodeID, bool) {
	valueType, ok := d.types.SemanticType(p.Value, d.sem)
	if !ok {
		return node, false
	}
	valueBase := d.types.BaseType(valueType, true, d.sem, false)
	switch d.arena.Get(valueBase).Payload.(type) {
	case tree.TypeBitvectorPayload, tree.TypeSignedPayload, tree.TypeUnsignedPayload:
	default:
		return node, false
	}
	valueSpan, ok := d.types.TypeGetSpan(valueBase, d.sem)
	if !ok {
		return node, false
	}

	targetBase := d.types.BaseType(p.Type, true, d.sem, false)
	arr, ok := d.arena.Get(targetBase).Payload.(tree.TypeArrayPayload)
	if !ok {
		return node, false
	}
	elemSpan, ok := d.types.TypeGetSpan(d.types.BaseType(arr.Element, true, d.sem, false), d.sem)
	if !ok {
		return node, false
	}
	elemWidth := int64(d.types.SpanBitwidth(elemSpan))
	totalWidth := int64(d.types.SpanBitwidth(valueSpan))
	if elemWidth <= 0 || totalWidth <= 0 || totalWidth%elemWidth != 0 {
		return node, false
	}
	count := totalWidth / elemWidth
	if count <= 0 || count > 1024 {
		return node, false
	}
	arrLo, arrLoOK := arr.Span.Min(d.arena)
	if !arrLoOK {
		arrLo = 0
	}

	if d.arena.Get(p.Value).Parent == node {
		d.arena.Detach(p.Value)
	}

	var alts tree.BList
	for i := int64(0); i < count; i++ {
		hi := totalWidth - 1 - i*elemWidth
		lo := hi - elemWidth + 1
		prefix := p.Value
		if i != count-1 {
			prefix = d.arena.Clone(p.Value)
		}
		leftB := d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: hi})
		rightB := d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: lo})
		slice := d.arena.New(tree.KindSlice, tree.SlicePayload{Prefix: prefix, Span: tree.Range{Dir: tree.Downto, Left: leftB, Right: rightB}})
		d.arena.Attach(slice, prefix)
		d.arena.Attach(slice, leftB)
		d.arena.Attach(slice, rightB)
		elemCastType := d.arena.Clone(arr.Element)
		castElem := d.arena.New(tree.KindCast, tree.CastPayload{Type: elemCastType, Value: slice})
		d.arena.Attach(castElem, elemCastType)
		d.arena.Attach(castElem, slice)
		aggIdx := d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: arrLo + i})
		alt := d.arena.New(tree.KindAggregateAlt, tree.AggregateAltPayload{Indices: []tree.AggregateIndex{{Single: aggIdx}}, Value: castElem})
		d.arena.Attach(alt, aggIdx)
		d.arena.Attach(alt, castElem)
		alts = append(alts, alt)
	}

	agg := d.arena.New(tree.KindAggregate, tree.AggregatePayload{Alts: alts})
	for _, a := range alts {
		d.arena.Attach(agg, a)
	}
	return d.replace(node, agg), true
}

// transformArrayToIntCast converts a cast from an array of bool/bit to an
// integer type into an explicit `or`-of-shifted-members expression:
// `int(arr)` becomes `(arr[0] << 0) | (arr[1] << 1) | ...`.
func (d *Driver) transformArrayToIntCast(node tree.NodeID, p tree.CastPayload) (tree.NodeID, bool) {
	targetBase := d.types.BaseType(p.Type, true, d.sem, false)
	switch d.arena.Get(targetBase).Payload.(type) {
	case tree.TypeIntPayload:
	default:
		return node, false
	}
	valueType, ok := d.types.SemanticType(p.Value, d.sem)
	if !ok {
		return node, false
	}
	valueBase := d.types.BaseType(valueType, true, d.sem, false)
	arr, ok := d.arena.Get(valueBase).Payload.(tree.TypeArrayPayload)
	if !ok {
		return node, false
	}
	elemBase := d.types.BaseType(arr.Element, true, d.sem, false)
	switch d.arena.Get(elemBase).Payload.(type) {
	case tree.TypeBitPayload, tree.TypeBoolPayload:
	default:
		return node, false
	}
	lo, ok := arr.Span.Min(d.arena)
	if !ok {
		return node, false
	}
	count := arr.Span.Size(d.arena)
	if count == 0 || count > 64 {
		return node, false
	}

	if d.arena.Get(p.Value).Parent == node {
		d.arena.Detach(p.Value)
	}

	var chain tree.NodeID
	for i := uint64(0); i < count; i++ {
		prefix := p.Value
		if i != count-1 {
			prefix = d.arena.Clone(p.Value)
		}
		idx := d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: lo + int64(i)})
		member := d.arena.New(tree.KindMember, tree.MemberPayload{Prefix: prefix, Index: idx})
		d.arena.Attach(member, prefix)
		d.arena.Attach(member, idx)
		bitCastType := d.arena.Clone(p.Type)
		castBit := d.arena.New(tree.KindCast, tree.CastPayload{Type: bitCastType, Value: member})
		d.arena.Attach(castBit, bitCastType)
		d.arena.Attach(castBit, member)
		var term tree.NodeID
		if i == 0 {
			term = castBit
		} else {
			shiftAmt := d.arena.New(tree.KindIntValue, tree.IntValuePayload{Value: int64(i)})
			term = d.arena.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpSll, Left: castBit, Right: shiftAmt})
			d.arena.Attach(term, castBit)
			d.arena.Attach(term, shiftAmt)
		}
		if chain == tree.NilNode {
			chain = term
			continue
		}
		combined := d.arena.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpOr, Left: chain, Right: term})
		d.arena.Attach(combined, chain)
		d.arena.Attach(combined, term)
		chain = combined
	}
	return d.replace(node, chain), true
}

// narrowWideMultiplication implements "Convert 128-bit vector multiplications
// used only for their low 64 bits into narrowed multiplications": a cast
// that keeps only the low half of a multiplication's double-width result
// collapses to a multiplication of the two operands narrowed up front.
func (d *Driver) narrowWideMultiplication(node tree.NodeID, p tree.CastPayload) (tree.NodeID, bool) {
	expr, ok := d.arena.Get(p.Value).Payload.(tree.ExpressionPayload)
	if !ok || expr.Operator != tree.OpMult || expr.Right == tree.NilNode {
		return node, false
	}
	targetBase := d.types.BaseType(p.Type, true, d.sem, false)
	targetSpan, ok := d.types.TypeGetSpan(targetBase, d.sem)
	if !ok {
		return node, false
	}
	targetWidth := d.types.SpanBitwidth(targetSpan)
	if targetWidth == 0 || targetWidth > 64 {
		return node, false
	}
	mulType, ok := d.types.SemanticType(p.Value, d.sem)
	if !ok {
		return node, false
	}
	mulSpan, ok := d.types.TypeGetSpan(d.types.BaseType(mulType, true, d.sem, false), d.sem)
	if !ok {
		return node, false
	}
	mulWidth := d.types.SpanBitwidth(mulSpan)
	if mulWidth < targetWidth*2 {
		return node, false
	}

	if d.arena.Get(expr.Left).Parent == p.Value {
		d.arena.Detach(expr.Left)
	}
	if d.arena.Get(expr.Right).Parent == p.Value {
		d.arena.Detach(expr.Right)
	}
	leftCastType := d.arena.Clone(p.Type)
	leftCast := d.arena.New(tree.KindCast, tree.CastPayload{Type: leftCastType, Value: expr.Left})
	d.arena.Attach(leftCast, leftCastType)
	d.arena.Attach(leftCast, expr.Left)
	rightCastType := d.arena.Clone(p.Type)
	rightCast := d.arena.New(tree.KindCast, tree.CastPayload{Type: rightCastType, Value: expr.Right})
	d.arena.Attach(rightCast, rightCastType)
	d.arena.Attach(rightCast, expr.Right)
	narrowed := d.arena.New(tree.KindExpression, tree.ExpressionPayload{Operator: tree.OpMult, Left: leftCast, Right: rightCast})
	d.arena.Attach(narrowed, leftCast)
	d.arena.Attach(narrowed, rightCast)
	return d.replace(node, narrowed), true
}
