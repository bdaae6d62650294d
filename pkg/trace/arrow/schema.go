/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

// Package arrow converts batches of trace rows into Arrow IPC stream
// buffers wrapped in an OTLP-events envelope, and back. Attribute columns
// are typed by inference over the batch: a per-key promotion lattice
// yields one column type, and string columns are dictionary-encoded when
// their cardinality is low relative to the number of non-null values.
package arrow

import (
	"math/bits"
	"sort"

	"github.com/lquerel/oltp-arrow/pkg/trace"
)

// FieldType is the inferred column type of an attribute key.
type FieldType int8

const (
	FieldTypeU64 FieldType = iota
	FieldTypeI64
	FieldTypeF64
	FieldTypeString
	FieldTypeBool
)

func (ft FieldType) String() string {
	switch ft {
	case FieldTypeU64:
		return "U64"
	case FieldTypeI64:
		return "I64"
	case FieldTypeF64:
		return "F64"
	case FieldTypeString:
		return "String"
	case FieldTypeBool:
		return "Bool"
	default:
		return "Unknown"
	}
}

// DictionaryThreshold is the distinct/non-null ratio below which a string
// column is dictionary-encoded. Both encoding paths use the same value so
// that identical input produces identical schemas.
const DictionaryThreshold = 0.2

// FieldInfo accumulates what a batch reveals about one attribute key: the
// inferred type after promotion, the number of values that participated,
// and the distinct string forms seen (string columns only).
type FieldInfo struct {
	Type             FieldType
	NonNullCount     int
	DictionaryValues map[string]struct{}
}

// Observe folds one attribute value into the field state, applying the
// promotion lattice:
//
//	U64 -> I64 -> F64 -> String
//	Bool -> String
//
// Null, array and object values are ignored and do not count.
func (fi *FieldInfo) Observe(v trace.Value) {
	switch v.Type() {
	case trace.ValueTypeNull, trace.ValueTypeArray, trace.ValueTypeObject:
		return
	case trace.ValueTypeBool:
		if fi.NonNullCount > 0 && fi.Type != FieldTypeBool {
			// Bool after anything else falls through to String.
			fi.Type = FieldTypeString
		} else if fi.NonNullCount == 0 {
			fi.Type = FieldTypeBool
		}
	case trace.ValueTypeU64, trace.ValueTypeI64, trace.ValueTypeF64:
		fi.observeNumber(v.Type())
	case trace.ValueTypeString:
		// Mixed numeric-with-string and bool-with-string both fall
		// through to String.
		fi.Type = FieldTypeString
		if fi.DictionaryValues == nil {
			fi.DictionaryValues = map[string]struct{}{}
		}
		s, _ := v.AsString()
		fi.DictionaryValues[s] = struct{}{}
	}
	fi.NonNullCount++
}

func (fi *FieldInfo) observeNumber(vt trace.ValueType) {
	if fi.NonNullCount == 0 {
		switch vt {
		case trace.ValueTypeU64:
			fi.Type = FieldTypeU64
		case trace.ValueTypeI64:
			fi.Type = FieldTypeI64
		default:
			fi.Type = FieldTypeF64
		}
		return
	}

	switch fi.Type {
	case FieldTypeU64:
		switch vt {
		case trace.ValueTypeI64:
			fi.Type = FieldTypeI64
		case trace.ValueTypeF64:
			fi.Type = FieldTypeF64
		}
	case FieldTypeI64:
		if vt == trace.ValueTypeF64 {
			fi.Type = FieldTypeF64
		}
	case FieldTypeBool:
		// Any number after Bool falls through to String.
		fi.Type = FieldTypeString
	}
}

// IsDictionary reports whether the column should be dictionary-encoded.
func (fi *FieldInfo) IsDictionary() bool {
	if fi.Type != FieldTypeString || fi.NonNullCount == 0 {
		return false
	}
	return float64(len(fi.DictionaryValues))/float64(fi.NonNullCount) < DictionaryThreshold
}

// dictionaryIndexWidth returns the smallest dictionary key width in bits
// (8, 16 or 32) able to index cardinality distinct values.
func dictionaryIndexWidth(cardinality int) int {
	// Indices run from 0 to cardinality-1.
	n := 0
	if cardinality > 1 {
		n = bits.Len(uint(cardinality - 1))
	}
	switch {
	case n <= 8:
		return 8
	case n <= 16:
		return 16
	default:
		return 32
	}
}

// AttributeSchema maps attribute keys to their inferred field state for
// one entity table of one batch. Key order is sorted, which keeps field
// emission and column appends aligned and makes batches reproducible.
type AttributeSchema struct {
	fields map[string]*FieldInfo
}

func NewAttributeSchema() *AttributeSchema {
	return &AttributeSchema{fields: map[string]*FieldInfo{}}
}

// Observe folds one attribute map into the schema.
func (as *AttributeSchema) Observe(attributes trace.Attributes) {
	for key, value := range attributes {
		switch value.Type() {
		case trace.ValueTypeNull, trace.ValueTypeArray, trace.ValueTypeObject:
			continue
		}
		fi := as.fields[key]
		if fi == nil {
			fi = &FieldInfo{}
			as.fields[key] = fi
		}
		fi.Observe(value)
	}
}

// Field returns the inferred state of one key, or nil when the key was
// never observed with a non-null value.
func (as *AttributeSchema) Field(key string) *FieldInfo {
	return as.fields[key]
}

func (as *AttributeSchema) Len() int {
	return len(as.fields)
}

// SortedKeys returns the attribute keys in emission order.
func (as *AttributeSchema) SortedKeys() []string {
	keys := make([]string, 0, len(as.fields))
	for key := range as.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
