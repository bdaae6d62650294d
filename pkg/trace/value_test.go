/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueUnmarshalClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		json string
		want ValueType
	}{
		{`null`, ValueTypeNull},
		{`true`, ValueTypeBool},
		{`false`, ValueTypeBool},
		{`0`, ValueTypeU64},
		{`18446744073709551615`, ValueTypeU64},
		{`-1`, ValueTypeI64},
		{`-9223372036854775808`, ValueTypeI64},
		{`0.5`, ValueTypeF64},
		{`-2.75`, ValueTypeF64},
		{`1e3`, ValueTypeF64},
		{`"text"`, ValueTypeString},
		{`[1,2]`, ValueTypeArray},
		{`{"a":1}`, ValueTypeObject},
	}

	for _, test := range tests {
		var v Value
		require.NoError(t, v.UnmarshalJSON([]byte(test.json)), test.json)
		assert.Equal(t, test.want, v.Type(), test.json)
	}
}

func TestValueConversions(t *testing.T) {
	t.Parallel()

	u, ok := U64Value(5).AsU64()
	require.True(t, ok)
	assert.Equal(t, uint64(5), u)

	// U64 widens into I64 when it fits, nothing else does.
	i, ok := U64Value(5).AsI64()
	require.True(t, ok)
	assert.Equal(t, int64(5), i)
	_, ok = U64Value(1 << 63).AsI64()
	assert.False(t, ok)
	_, ok = F64Value(0.5).AsI64()
	assert.False(t, ok)

	// Every numeric variant widens into F64.
	f, ok := I64Value(-2).AsF64()
	require.True(t, ok)
	assert.Equal(t, -2.0, f)
	f, ok = U64Value(1).AsF64()
	require.True(t, ok)
	assert.Equal(t, 1.0, f)

	// No implicit stringification.
	_, ok = BoolValue(true).AsString()
	assert.False(t, ok)
	s, ok := StringValue("n/a").AsString()
	require.True(t, ok)
	assert.Equal(t, "n/a", s)
}

func TestValueMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	attributes := Attributes{
		"b": BoolValue(true),
		"u": U64Value(7),
		"i": I64Value(-7),
		"f": F64Value(0.25),
		"s": StringValue("v"),
	}

	data, err := json.Marshal(attributes)
	require.NoError(t, err)

	var decoded Attributes
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, attributes, decoded)
}
