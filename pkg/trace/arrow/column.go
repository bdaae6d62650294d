/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package arrow

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"

	"github.com/lquerel/oltp-arrow/pkg/trace"
)

// dataColumn is one attribute column being accumulated for an entity
// table. Appends never coerce outside the promotion lattice: a value
// whose type disagrees with the inferred column type lands as null.
type dataColumn interface {
	fieldType() FieldType
	append(v trace.Value)
	appendNull()
	padTo(n int)
	len() int
	missing() int
	emit(cs *columnSet, name string) error
}

func newDataColumn(ft FieldType) dataColumn {
	switch ft {
	case FieldTypeU64:
		return &u64Column{}
	case FieldTypeI64:
		return &i64Column{}
	case FieldTypeF64:
		return &f64Column{}
	case FieldTypeString:
		return &stringColumn{}
	case FieldTypeBool:
		return &boolColumn{}
	default:
		panic("unknown attribute field type")
	}
}

type u64Column struct {
	missingCount int
	values       []*uint64
}

func (c *u64Column) fieldType() FieldType { return FieldTypeU64 }

func (c *u64Column) append(v trace.Value) {
	if value, ok := v.AsU64(); ok {
		c.values = append(c.values, &value)
		return
	}
	c.appendNull()
}

func (c *u64Column) appendNull() {
	c.missingCount++
	c.values = append(c.values, nil)
}

func (c *u64Column) padTo(n int) {
	for len(c.values) < n {
		c.appendNull()
	}
}

func (c *u64Column) len() int     { return len(c.values) }
func (c *u64Column) missing() int { return c.missingCount }

func (c *u64Column) emit(cs *columnSet, name string) error {
	if allNull(len(c.values), c.nullCount()) {
		return nil
	}
	b := array.NewUint64Builder(cs.mem)
	defer b.Release()
	for _, value := range c.values {
		if value == nil {
			b.AppendNull()
		} else {
			b.Append(*value)
		}
	}
	cs.add(arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Uint64, Nullable: true}, b.NewArray())
	return nil
}

func (c *u64Column) nullCount() int {
	nulls := 0
	for _, value := range c.values {
		if value == nil {
			nulls++
		}
	}
	return nulls
}

type i64Column struct {
	missingCount int
	values       []*int64
}

func (c *i64Column) fieldType() FieldType { return FieldTypeI64 }

func (c *i64Column) append(v trace.Value) {
	if value, ok := v.AsI64(); ok {
		c.values = append(c.values, &value)
		return
	}
	c.appendNull()
}

func (c *i64Column) appendNull() {
	c.missingCount++
	c.values = append(c.values, nil)
}

func (c *i64Column) padTo(n int) {
	for len(c.values) < n {
		c.appendNull()
	}
}

func (c *i64Column) len() int     { return len(c.values) }
func (c *i64Column) missing() int { return c.missingCount }

func (c *i64Column) emit(cs *columnSet, name string) error {
	nulls := 0
	for _, value := range c.values {
		if value == nil {
			nulls++
		}
	}
	if allNull(len(c.values), nulls) {
		return nil
	}
	b := array.NewInt64Builder(cs.mem)
	defer b.Release()
	for _, value := range c.values {
		if value == nil {
			b.AppendNull()
		} else {
			b.Append(*value)
		}
	}
	cs.add(arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64, Nullable: true}, b.NewArray())
	return nil
}

type f64Column struct {
	missingCount int
	values       []*float64
}

func (c *f64Column) fieldType() FieldType { return FieldTypeF64 }

func (c *f64Column) append(v trace.Value) {
	if value, ok := v.AsF64(); ok {
		c.values = append(c.values, &value)
		return
	}
	c.appendNull()
}

func (c *f64Column) appendNull() {
	c.missingCount++
	c.values = append(c.values, nil)
}

func (c *f64Column) padTo(n int) {
	for len(c.values) < n {
		c.appendNull()
	}
}

func (c *f64Column) len() int     { return len(c.values) }
func (c *f64Column) missing() int { return c.missingCount }

func (c *f64Column) emit(cs *columnSet, name string) error {
	nulls := 0
	for _, value := range c.values {
		if value == nil {
			nulls++
		}
	}
	if allNull(len(c.values), nulls) {
		return nil
	}
	b := array.NewFloat64Builder(cs.mem)
	defer b.Release()
	for _, value := range c.values {
		if value == nil {
			b.AppendNull()
		} else {
			b.Append(*value)
		}
	}
	cs.add(arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}, b.NewArray())
	return nil
}

type boolColumn struct {
	missingCount int
	values       []*bool
}

func (c *boolColumn) fieldType() FieldType { return FieldTypeBool }

func (c *boolColumn) append(v trace.Value) {
	if value, ok := v.AsBool(); ok {
		c.values = append(c.values, &value)
		return
	}
	c.appendNull()
}

func (c *boolColumn) appendNull() {
	c.missingCount++
	c.values = append(c.values, nil)
}

func (c *boolColumn) padTo(n int) {
	for len(c.values) < n {
		c.appendNull()
	}
}

func (c *boolColumn) len() int     { return len(c.values) }
func (c *boolColumn) missing() int { return c.missingCount }

func (c *boolColumn) emit(cs *columnSet, name string) error {
	nulls := 0
	for _, value := range c.values {
		if value == nil {
			nulls++
		}
	}
	if allNull(len(c.values), nulls) {
		return nil
	}
	b := array.NewBooleanBuilder(cs.mem)
	defer b.Release()
	for _, value := range c.values {
		if value == nil {
			b.AppendNull()
		} else {
			b.Append(*value)
		}
	}
	cs.add(arrow.Field{Name: name, Type: arrow.FixedWidthTypes.Boolean, Nullable: true}, b.NewArray())
	return nil
}

type stringColumn struct {
	missingCount int
	values       []*string
}

func (c *stringColumn) fieldType() FieldType { return FieldTypeString }

func (c *stringColumn) append(v trace.Value) {
	if value, ok := v.AsString(); ok {
		c.values = append(c.values, &value)
		return
	}
	c.appendNull()
}

func (c *stringColumn) appendNull() {
	c.missingCount++
	c.values = append(c.values, nil)
}

func (c *stringColumn) padTo(n int) {
	for len(c.values) < n {
		c.appendNull()
	}
}

func (c *stringColumn) len() int     { return len(c.values) }
func (c *stringColumn) missing() int { return c.missingCount }

func (c *stringColumn) emit(cs *columnSet, name string) error {
	// Attribute string columns saturate at 32-bit dictionary keys, they
	// never fall back to plain UTF-8 on width alone.
	return emitStringVector(cs, name, c.values, true, 32)
}

func allNull(total, nulls int) bool {
	return total == 0 || nulls == total
}
