/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package arrow

import (
	"github.com/lquerel/oltp-arrow/pkg/trace"
)

// AttributePrefix prefixes every inferred attribute column name, keeping
// attribute columns collision-free against fixed entity columns.
const AttributePrefix = "attributes_"

// inferSpanAttributes folds every span attribute map of the batch through
// the type lattice.
func inferSpanAttributes(spans []trace.Span) *AttributeSchema {
	schema := NewAttributeSchema()
	for i := range spans {
		if spans[i].Attributes != nil {
			schema.Observe(spans[i].Attributes)
		}
	}
	return schema
}

// inferEventAttributes folds every event attribute map of the batch and
// counts event rows.
func inferEventAttributes(spans []trace.Span) (*AttributeSchema, int) {
	schema := NewAttributeSchema()
	count := 0
	for i := range spans {
		for j := range spans[i].Events {
			schema.Observe(spans[i].Events[j].Attributes)
			count++
		}
	}
	return schema, count
}

// inferLinkAttributes folds every link attribute map of the batch and
// counts link rows.
func inferLinkAttributes(spans []trace.Span) (*AttributeSchema, int) {
	schema := NewAttributeSchema()
	count := 0
	for i := range spans {
		for j := range spans[i].Links {
			schema.Observe(spans[i].Links[j].Attributes)
			count++
		}
	}
	return schema, count
}

// attributeColumns is the set of attribute data columns of one entity
// table, keyed and emitted in sorted key order.
type attributeColumns struct {
	keys    []string
	columns map[string]dataColumn
}

func newAttributeColumns(schema *AttributeSchema) *attributeColumns {
	ac := &attributeColumns{
		keys:    schema.SortedKeys(),
		columns: make(map[string]dataColumn, schema.Len()),
	}
	for _, key := range ac.keys {
		ac.columns[key] = newDataColumn(schema.Field(key).Type)
	}
	return ac
}

// appendRow appends exactly one value or null to every column for one
// entity row (the row-oriented walk).
func (ac *attributeColumns) appendRow(attributes trace.Attributes) {
	for _, key := range ac.keys {
		column := ac.columns[key]
		value, ok := attributes[key]
		if !ok {
			column.appendNull()
			continue
		}
		column.append(value)
	}
}

// appendPresent appends only the keys present in the attribute map (the
// column-oriented pivot); missing columns are realigned by rectangularize.
func (ac *attributeColumns) appendPresent(attributes trace.Attributes) {
	for key, value := range attributes {
		column, ok := ac.columns[key]
		if !ok {
			// Array, object and null-only keys have no inferred column.
			continue
		}
		switch value.Type() {
		case trace.ValueTypeNull, trace.ValueTypeArray, trace.ValueTypeObject:
			continue
		}
		column.append(value)
	}
}

// rectangularize null-pads every column up to the entity row count,
// restoring row alignment after a ragged append.
func (ac *attributeColumns) rectangularize(rowCount int) {
	for _, key := range ac.keys {
		ac.columns[key].padTo(rowCount)
	}
}

// emit adds one Arrow column per attribute key, in key order.
func (ac *attributeColumns) emit(cs *columnSet) error {
	for _, key := range ac.keys {
		if err := ac.columns[key].emit(cs, AttributePrefix+key); err != nil {
			return err
		}
	}
	return nil
}
