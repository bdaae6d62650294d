/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package arrow

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/lquerel/oltp-arrow/pkg/werror"
)

// columnSet accumulates schema fields and column arrays in lock-step, so
// the emitted schema has exactly the columns that survived the emission
// rules: empty non-nullable fields and all-null nullable fields are
// omitted.
type columnSet struct {
	mem     memory.Allocator
	fields  []arrow.Field
	columns []arrow.Array
}

func newColumnSet(mem memory.Allocator) *columnSet {
	return &columnSet{mem: mem}
}

func (cs *columnSet) add(field arrow.Field, column arrow.Array) {
	cs.fields = append(cs.fields, field)
	cs.columns = append(cs.columns, column)
}

func (cs *columnSet) empty() bool {
	return len(cs.fields) == 0
}

func (cs *columnSet) schema() *arrow.Schema {
	return arrow.NewSchema(cs.fields, nil)
}

func (cs *columnSet) release() {
	for _, column := range cs.columns {
		column.Release()
	}
	cs.columns = nil
}

// emitU64 emits a non-nullable unsigned 64-bit field. An empty source
// vector omits the field.
func emitU64(cs *columnSet, name string, values []uint64) {
	if len(values) == 0 {
		return
	}
	b := array.NewUint64Builder(cs.mem)
	defer b.Release()
	for _, v := range values {
		b.Append(v)
	}
	cs.add(arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Uint64, Nullable: false}, b.NewArray())
}

// emitOptU64 emits a nullable unsigned 64-bit field, omitted when every
// value is null.
func emitOptU64(cs *columnSet, name string, values []*uint64) {
	nulls := 0
	for _, v := range values {
		if v == nil {
			nulls++
		}
	}
	if allNull(len(values), nulls) {
		return
	}
	b := array.NewUint64Builder(cs.mem)
	defer b.Release()
	for _, v := range values {
		if v == nil {
			b.AppendNull()
		} else {
			b.Append(*v)
		}
	}
	cs.add(arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Uint64, Nullable: nulls > 0}, b.NewArray())
}

// emitU32 emits a non-nullable unsigned 32-bit field (the generated id
// join columns).
func emitU32(cs *columnSet, name string, values []uint32) {
	if len(values) == 0 {
		return
	}
	b := array.NewUint32Builder(cs.mem)
	defer b.Release()
	for _, v := range values {
		b.Append(v)
	}
	cs.add(arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Uint32, Nullable: false}, b.NewArray())
}

// emitOptU32 emits a nullable unsigned 32-bit field (dropped counters),
// omitted when every value is null.
func emitOptU32(cs *columnSet, name string, values []*uint32) {
	nulls := 0
	for _, v := range values {
		if v == nil {
			nulls++
		}
	}
	if allNull(len(values), nulls) {
		return
	}
	b := array.NewUint32Builder(cs.mem)
	defer b.Release()
	for _, v := range values {
		if v == nil {
			b.AppendNull()
		} else {
			b.Append(*v)
		}
	}
	cs.add(arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Uint32, Nullable: nulls > 0}, b.NewArray())
}

// emitOptU8 emits a nullable unsigned 8-bit field (span kind), omitted
// when every value is null.
func emitOptU8(cs *columnSet, name string, values []*uint8) {
	nulls := 0
	for _, v := range values {
		if v == nil {
			nulls++
		}
	}
	if allNull(len(values), nulls) {
		return
	}
	b := array.NewUint8Builder(cs.mem)
	defer b.Release()
	for _, v := range values {
		if v == nil {
			b.AppendNull()
		} else {
			b.Append(*v)
		}
	}
	cs.add(arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Uint8, Nullable: nulls > 0}, b.NewArray())
}

// emitBinary emits a non-nullable binary field carrying identifier byte
// strings. An empty source vector omits the field.
func emitBinary(cs *columnSet, name string, values []string) {
	if len(values) == 0 {
		return
	}
	b := array.NewBinaryBuilder(cs.mem, arrow.BinaryTypes.Binary)
	defer b.Release()
	for _, v := range values {
		b.Append([]byte(v))
	}
	cs.add(arrow.Field{Name: name, Type: arrow.BinaryTypes.Binary, Nullable: false}, b.NewArray())
}

// emitOptBinary emits a nullable binary field, omitted when every value
// is null.
func emitOptBinary(cs *columnSet, name string, values []*string) {
	nulls := 0
	for _, v := range values {
		if v == nil {
			nulls++
		}
	}
	if allNull(len(values), nulls) {
		return
	}
	b := array.NewBinaryBuilder(cs.mem, arrow.BinaryTypes.Binary)
	defer b.Release()
	for _, v := range values {
		if v == nil {
			b.AppendNull()
		} else {
			b.Append([]byte(*v))
		}
	}
	cs.add(arrow.Field{Name: name, Type: arrow.BinaryTypes.Binary, Nullable: nulls > 0}, b.NewArray())
}

// emitString emits a non-nullable UTF-8 field, dictionary-encoded when
// the distinct ratio is below the threshold. A dictionary needing more
// than 16-bit keys falls back to plain UTF-8.
func emitString(cs *columnSet, name string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	opts := make([]*string, len(values))
	for i := range values {
		opts[i] = &values[i]
	}
	return emitStringVector(cs, name, opts, false, 16)
}

// emitOptString is the nullable variant of emitString: the dictionary
// ratio is computed over non-null values only and nulls are appended as
// dictionary nulls.
func emitOptString(cs *columnSet, name string, values []*string) error {
	return emitStringVector(cs, name, values, true, 16)
}

// emitStringVector applies the dictionary decision to a string vector and
// emits either a dictionary-encoded column or a plain UTF-8 column.
// maxDictWidth bounds the dictionary key width; above it the column falls
// back to plain UTF-8.
func emitStringVector(cs *columnSet, name string, values []*string, nullable bool, maxDictWidth int) error {
	nonNull := 0
	distinct := map[string]struct{}{}
	for _, v := range values {
		if v != nil {
			nonNull++
			distinct[*v] = struct{}{}
		}
	}
	if nonNull == 0 {
		return nil
	}

	width := dictionaryIndexWidth(len(distinct))
	useDictionary := float64(len(distinct))/float64(nonNull) < DictionaryThreshold && width <= maxDictWidth

	nulls := len(values) - nonNull

	if !useDictionary {
		b := array.NewStringBuilder(cs.mem)
		defer b.Release()
		for _, v := range values {
			if v == nil {
				b.AppendNull()
			} else {
				b.Append(*v)
			}
		}
		cs.add(arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: nullable && nulls > 0}, b.NewArray())
		return nil
	}

	var indexType arrow.DataType
	switch width {
	case 8:
		indexType = arrow.PrimitiveTypes.Uint8
	case 16:
		indexType = arrow.PrimitiveTypes.Uint16
	default:
		indexType = arrow.PrimitiveTypes.Uint32
	}

	dt := &arrow.DictionaryType{IndexType: indexType, ValueType: arrow.BinaryTypes.String}
	b := array.NewDictionaryBuilder(cs.mem, dt).(*array.BinaryDictionaryBuilder)
	defer b.Release()
	for _, v := range values {
		if v == nil {
			b.AppendNull()
			continue
		}
		if err := b.AppendString(*v); err != nil {
			return werror.WrapWithContext(err, map[string]interface{}{"column": name})
		}
	}
	cs.add(arrow.Field{Name: name, Type: dt, Nullable: nullable && nulls > 0}, b.NewArray())
	return nil
}
