/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package pb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()

	envelope := &ResourceEvents{
		InstrumentationLibraryEvents: []*InstrumentationLibraryEvents{
			{
				Spans:  []byte{0x01, 0x02},
				Events: []byte{0x03},
				Links:  nil,
			},
		},
	}

	data, err := envelope.Marshal()
	require.NoError(t, err)

	decoded := &ResourceEvents{}
	require.NoError(t, decoded.Unmarshal(data))

	require.Len(t, decoded.InstrumentationLibraryEvents, 1)
	ile := decoded.InstrumentationLibraryEvents[0]
	assert.Equal(t, []byte{0x01, 0x02}, ile.Spans)
	assert.Equal(t, []byte{0x03}, ile.Events)
	assert.Empty(t, ile.Links)
	assert.Empty(t, decoded.SchemaUrl)
}

func TestEnvelopeEmptyTables(t *testing.T) {
	t.Parallel()

	envelope := &ResourceEvents{
		InstrumentationLibraryEvents: []*InstrumentationLibraryEvents{{}},
	}

	data, err := envelope.Marshal()
	require.NoError(t, err)

	decoded := &ResourceEvents{}
	require.NoError(t, decoded.Unmarshal(data))
	require.Len(t, decoded.InstrumentationLibraryEvents, 1)
	assert.Empty(t, decoded.InstrumentationLibraryEvents[0].Spans)
}

func TestEnvelopeSchemaUrl(t *testing.T) {
	t.Parallel()

	envelope := &ResourceEvents{SchemaUrl: "https://example.com/schema"}

	data, err := envelope.Marshal()
	require.NoError(t, err)

	decoded := &ResourceEvents{}
	require.NoError(t, decoded.Unmarshal(data))
	assert.Equal(t, "https://example.com/schema", decoded.SchemaUrl)
	assert.Empty(t, decoded.InstrumentationLibraryEvents)
}

func TestEnvelopeGarbage(t *testing.T) {
	t.Parallel()

	decoded := &ResourceEvents{}
	require.Error(t, decoded.Unmarshal([]byte{0xFF}))
}
