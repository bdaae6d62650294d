/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package trace

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ValueType identifies the variant carried by a Value.
type ValueType int8

const (
	ValueTypeNull ValueType = iota
	ValueTypeBool
	ValueTypeU64
	ValueTypeI64
	ValueTypeF64
	ValueTypeString
	ValueTypeArray
	ValueTypeObject
)

func (vt ValueType) String() string {
	switch vt {
	case ValueTypeNull:
		return "Null"
	case ValueTypeBool:
		return "Bool"
	case ValueTypeU64:
		return "U64"
	case ValueTypeI64:
		return "I64"
	case ValueTypeF64:
		return "F64"
	case ValueTypeString:
		return "String"
	case ValueTypeArray:
		return "Array"
	case ValueTypeObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// Value is a JSON-ish attribute value. Numbers are classified at decode
// time: non-negative integers are U64, negative integers are I64,
// everything else is F64. Array and object values keep only their type,
// which schema inference ignores; their contents are discarded.
type Value struct {
	t ValueType
	b bool
	u uint64
	i int64
	f float64
	s string
}

// Attributes is the open-ended key to value map attached to spans, events
// and links.
type Attributes map[string]Value

func NullValue() Value                { return Value{t: ValueTypeNull} }
func BoolValue(v bool) Value          { return Value{t: ValueTypeBool, b: v} }
func U64Value(v uint64) Value         { return Value{t: ValueTypeU64, u: v} }
func I64Value(v int64) Value          { return Value{t: ValueTypeI64, i: v} }
func F64Value(v float64) Value        { return Value{t: ValueTypeF64, f: v} }
func StringValue(v string) Value      { return Value{t: ValueTypeString, s: v} }

func (v Value) Type() ValueType { return v.t }

// AsBool returns the boolean payload. The second result is false when the
// value is not a Bool.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.t == ValueTypeBool
}

// AsU64 returns the unsigned payload. Only U64 values qualify.
func (v Value) AsU64() (uint64, bool) {
	return v.u, v.t == ValueTypeU64
}

// AsI64 returns the value as a signed integer. U64 values convert when
// they fit; this is the only numeric widening the promotion lattice allows
// into an I64 column.
func (v Value) AsI64() (int64, bool) {
	switch v.t {
	case ValueTypeI64:
		return v.i, true
	case ValueTypeU64:
		if v.u <= math.MaxInt64 {
			return int64(v.u), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsF64 returns the value as a float. Any numeric variant converts.
func (v Value) AsF64() (float64, bool) {
	switch v.t {
	case ValueTypeF64:
		return v.f, true
	case ValueTypeU64:
		return float64(v.u), true
	case ValueTypeI64:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsString returns the string payload. Only String values qualify; there
// is no implicit stringification.
func (v Value) AsString() (string, bool) {
	return v.s, v.t == ValueTypeString
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*v = NullValue()
		return nil
	}

	switch data[0] {
	case 'n':
		*v = NullValue()
	case 't':
		*v = BoolValue(true)
	case 'f':
		*v = BoolValue(false)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case '[':
		*v = Value{t: ValueTypeArray}
	case '{':
		*v = Value{t: ValueTypeObject}
	default:
		return v.unmarshalNumber(string(data))
	}
	return nil
}

func (v *Value) unmarshalNumber(text string) error {
	if !isIntegral(text) {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", text, err)
		}
		*v = F64Value(f)
		return nil
	}

	if text[0] == '-' {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			*v = I64Value(i)
			return nil
		}
	} else {
		if u, err := strconv.ParseUint(text, 10, 64); err == nil {
			*v = U64Value(u)
			return nil
		}
	}

	// Integral but out of the 64-bit range.
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", text, err)
	}
	*v = F64Value(f)
	return nil
}

func isIntegral(text string) bool {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', 'e', 'E':
			return false
		}
	}
	return true
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.t {
	case ValueTypeNull, ValueTypeArray, ValueTypeObject:
		return []byte("null"), nil
	case ValueTypeBool:
		return strconv.AppendBool(nil, v.b), nil
	case ValueTypeU64:
		return strconv.AppendUint(nil, v.u, 10), nil
	case ValueTypeI64:
		return strconv.AppendInt(nil, v.i, 10), nil
	case ValueTypeF64:
		return json.Marshal(v.f)
	case ValueTypeString:
		return json.Marshal(v.s)
	default:
		return nil, fmt.Errorf("unsupported value type %d", v.t)
	}
}
