/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package arrow

import (
	"fmt"
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lquerel/oltp-arrow/pkg/datagen"
	"github.com/lquerel/oltp-arrow/pkg/trace"
)

func TestSingleSpanNoChildren(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	spans := []trace.Span{{
		TraceID:           "T",
		SpanID:            "S",
		Name:              "n",
		StartTimeUnixNano: 1,
	}}

	buf, err := SerializeRowOriented(pool, spans, nil)
	require.NoError(t, err)

	batch, err := Deserialize(pool, buf)
	require.NoError(t, err)
	defer batch.Release()

	require.NotNil(t, batch.Spans)
	assert.Nil(t, batch.Events)
	assert.Nil(t, batch.Links)

	assert.Equal(t, int64(1), batch.Spans.NumRows())

	// Absent optionals are suppressed; only the populated non-nullable
	// fixed columns remain, in schema order, and no id column is
	// generated without children.
	names := fieldNames(batch.Spans.Schema())
	assert.Equal(t, []string{"start_time_unix_nano", "trace_id", "span_id", "name"}, names)

	traceID := column(t, batch.Spans, "trace_id").(*array.Binary)
	assert.Equal(t, []byte("T"), traceID.Value(0))
	start := column(t, batch.Spans, "start_time_unix_nano").(*array.Uint64)
	assert.Equal(t, uint64(1), start.Value(0))
}

func TestEventsCarryParentIndexes(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	// Six events sharing a single attribute value: cardinality 1 over 6
	// non-null values dictionary-encodes with the smallest key width.
	var events []trace.Event
	for i := 0; i < 6; i++ {
		events = append(events, trace.Event{
			TimeUnixNano: uint64(i + 1),
			Name:         "e",
			Attributes:   trace.Attributes{"k": trace.StringValue("v")},
		})
	}

	spans := []trace.Span{
		span("T", "S0", "span0", 1, withEvents(events)),
		span("T", "S1", "span1", 2),
	}

	buf, err := SerializeRowOriented(pool, spans, nil)
	require.NoError(t, err)

	batch, err := Deserialize(pool, buf)
	require.NoError(t, err)
	defer batch.Release()

	require.NotNil(t, batch.Spans)
	require.NotNil(t, batch.Events)
	assert.Nil(t, batch.Links)

	// The spans table carries the generated id join column.
	ids := column(t, batch.Spans, "id").(*array.Uint32)
	require.Equal(t, 2, ids.Len())
	assert.Equal(t, uint32(0), ids.Value(0))
	assert.Equal(t, uint32(1), ids.Value(1))

	assert.Equal(t, int64(6), batch.Events.NumRows())
	eventIDs := column(t, batch.Events, "id").(*array.Uint32)
	for i := 0; i < eventIDs.Len(); i++ {
		assert.Equal(t, uint32(0), eventIDs.Value(i))
	}

	attr := column(t, batch.Events, "attributes_k")
	dict, ok := attr.(*array.Dictionary)
	require.True(t, ok, "attributes_k should be dictionary-encoded")
	dt := dict.DataType().(*arrow.DictionaryType)
	assert.Equal(t, arrow.PrimitiveTypes.Uint8, dt.IndexType)
	values := dict.Dictionary().(*array.String)
	assert.Equal(t, 1, values.Len())
	assert.Equal(t, "v", values.Value(0))
}

func TestMixedNumericAttributePromotion(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	spans := []trace.Span{
		span("T", "S0", "a", 1, withAttributes(trace.Attributes{"x": trace.U64Value(1)})),
		span("T", "S1", "b", 2, withAttributes(trace.Attributes{"x": trace.I64Value(-2)})),
		span("T", "S2", "c", 3, withAttributes(trace.Attributes{"x": trace.F64Value(0.5)})),
	}

	buf, err := SerializeRowOriented(pool, spans, nil)
	require.NoError(t, err)

	batch, err := Deserialize(pool, buf)
	require.NoError(t, err)
	defer batch.Release()

	x := column(t, batch.Spans, "attributes_x").(*array.Float64)
	require.Equal(t, 3, x.Len())
	assert.Equal(t, 0, x.NullN())
	assert.Equal(t, 1.0, x.Value(0))
	assert.Equal(t, -2.0, x.Value(1))
	assert.Equal(t, 0.5, x.Value(2))
}

func TestBoolToStringPromotionEmitsNull(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	spans := []trace.Span{
		span("T", "S0", "a", 1, withAttributes(trace.Attributes{"b": trace.BoolValue(true)})),
		span("T", "S1", "b", 2, withAttributes(trace.Attributes{"b": trace.StringValue("n/a")})),
	}

	buf, err := SerializeRowOriented(pool, spans, nil)
	require.NoError(t, err)

	batch, err := Deserialize(pool, buf)
	require.NoError(t, err)
	defer batch.Release()

	// The pre-promotion bool row is null: history is not coerced.
	b := column(t, batch.Spans, "attributes_b").(*array.String)
	require.Equal(t, 2, b.Len())
	assert.True(t, b.IsNull(0))
	assert.Equal(t, "n/a", b.Value(1))
}

func TestMissingAttributeAcrossRows(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	spans := []trace.Span{
		span("T", "S0", "a", 1, withAttributes(trace.Attributes{"k": trace.U64Value(1)})),
		span("T", "S1", "b", 2, withAttributes(trace.Attributes{})),
	}

	buf, err := SerializeRowOriented(pool, spans, nil)
	require.NoError(t, err)

	batch, err := Deserialize(pool, buf)
	require.NoError(t, err)
	defer batch.Release()

	k := column(t, batch.Spans, "attributes_k").(*array.Uint64)
	require.Equal(t, 2, k.Len())
	assert.Equal(t, uint64(1), k.Value(0))
	assert.True(t, k.IsNull(1))
}

func TestHighCardinalityNameStaysPlain(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	var spans []trace.Span
	for i := 0; i < 1000; i++ {
		spans = append(spans, span("T", fmt.Sprintf("S%d", i), fmt.Sprintf("name-%d", i), uint64(i+1)))
	}

	buf, err := SerializeRowOriented(pool, spans, nil)
	require.NoError(t, err)

	batch, err := Deserialize(pool, buf)
	require.NoError(t, err)
	defer batch.Release()

	_, ok := column(t, batch.Spans, "name").(*array.String)
	assert.True(t, ok, "unique names should stay plain UTF-8")
}

func TestLowCardinalityNameDictionary(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	var spans []trace.Span
	for i := 0; i < 1000; i++ {
		spans = append(spans, span("T", fmt.Sprintf("S%d", i), "GET /users", uint64(i+1)))
	}

	buf, err := SerializeRowOriented(pool, spans, nil)
	require.NoError(t, err)

	batch, err := Deserialize(pool, buf)
	require.NoError(t, err)
	defer batch.Release()

	name, ok := column(t, batch.Spans, "name").(*array.Dictionary)
	require.True(t, ok)
	dt := name.DataType().(*arrow.DictionaryType)
	assert.Equal(t, arrow.PrimitiveTypes.Uint8, dt.IndexType)
}

func TestEmptyBatch(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	buf, err := SerializeRowOriented(pool, nil, nil)
	require.NoError(t, err)

	batch, err := Deserialize(pool, buf)
	require.NoError(t, err)
	defer batch.Release()

	assert.Nil(t, batch.Spans)
	assert.Nil(t, batch.Events)
	assert.Nil(t, batch.Links)
}

func TestIDColumnGeneratedForSiblingChildren(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	// span0 has an empty events slice, span1 has one event: the batch
	// has children, so the id column exists on every span row.
	spans := []trace.Span{
		span("T", "S0", "a", 1, withEvents([]trace.Event{})),
		span("T", "S1", "b", 2, withEvents([]trace.Event{{
			TimeUnixNano: 3,
			Name:         "e0",
			Attributes:   trace.Attributes{},
		}})),
	}

	buf, err := SerializeRowOriented(pool, spans, nil)
	require.NoError(t, err)

	batch, err := Deserialize(pool, buf)
	require.NoError(t, err)
	defer batch.Release()

	ids := column(t, batch.Spans, "id").(*array.Uint32)
	require.Equal(t, 2, ids.Len())

	require.NotNil(t, batch.Events)
	assert.Equal(t, int64(1), batch.Events.NumRows())
	eventIDs := column(t, batch.Events, "id").(*array.Uint32)
	assert.Equal(t, uint32(1), eventIDs.Value(0))
}

func TestAllNullColumnSuppressed(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	// Key b promotes to String (bool then number) but neither value is a
	// string, so every append is null and the column is suppressed.
	spans := []trace.Span{
		span("T", "S0", "a", 1, withAttributes(trace.Attributes{
			"b":    trace.BoolValue(true),
			"keep": trace.U64Value(1),
		})),
		span("T", "S1", "b", 2, withAttributes(trace.Attributes{
			"b":    trace.U64Value(5),
			"keep": trace.U64Value(2),
		})),
	}

	buf, err := SerializeRowOriented(pool, spans, nil)
	require.NoError(t, err)

	batch, err := Deserialize(pool, buf)
	require.NoError(t, err)
	defer batch.Release()

	assert.Empty(t, batch.Spans.Schema().FieldIndices("attributes_b"))

	keep := column(t, batch.Spans, "attributes_keep").(*array.Uint64)
	assert.Equal(t, 2, keep.Len())
	assert.Equal(t, int64(2), batch.Spans.NumRows())
}

func TestLinksTable(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	state := "started"
	spans := []trace.Span{
		span("T", "S0", "a", 1, withLinks([]trace.Link{
			{
				TraceID:    "T2",
				SpanID:     "S2",
				TraceState: &state,
				Attributes: trace.Attributes{"peer": trace.StringValue("svc")},
			},
			{
				TraceID:    "T3",
				SpanID:     "S3",
				Attributes: trace.Attributes{},
			},
		})),
	}

	buf, err := SerializeRowOriented(pool, spans, nil)
	require.NoError(t, err)

	batch, err := Deserialize(pool, buf)
	require.NoError(t, err)
	defer batch.Release()

	require.NotNil(t, batch.Links)
	assert.Equal(t, int64(2), batch.Links.NumRows())

	linkTraceID := column(t, batch.Links, "trace_id").(*array.Binary)
	assert.Equal(t, []byte("T2"), linkTraceID.Value(0))
	assert.Equal(t, []byte("T3"), linkTraceID.Value(1))

	traceState := column(t, batch.Links, "trace_state")
	assert.Equal(t, 1, traceState.NullN())

	linkIDs := column(t, batch.Links, "id").(*array.Uint32)
	assert.Equal(t, uint32(0), linkIDs.Value(0))
	assert.Equal(t, uint32(0), linkIDs.Value(1))
}

func TestEncodingPathsEquivalent(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	spans := datagen.NewTraceGenerator(17).Spans(200)

	rowBuf, err := SerializeRowOriented(pool, spans, nil)
	require.NoError(t, err)
	columnBuf, err := SerializeColumnOriented(pool, spans, nil)
	require.NoError(t, err)

	assert.Equal(t, rowBuf, columnBuf)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	spans := datagen.NewTraceGenerator(42).Spans(300)

	eventCount := 0
	linkCount := 0
	for i := range spans {
		eventCount += len(spans[i].Events)
		linkCount += len(spans[i].Links)
	}
	require.Greater(t, eventCount, 0)
	require.Greater(t, linkCount, 0)

	for _, serialize := range []func(memory.Allocator, []trace.Span, *BatchStatistics) ([]byte, error){
		SerializeRowOriented,
		SerializeColumnOriented,
	} {
		buf, err := serialize(pool, spans, nil)
		require.NoError(t, err)

		batch, err := Deserialize(pool, buf)
		require.NoError(t, err)

		require.NotNil(t, batch.Spans)
		assert.Equal(t, int64(len(spans)), batch.Spans.NumRows())
		require.NotNil(t, batch.Events)
		assert.Equal(t, int64(eventCount), batch.Events.NumRows())
		require.NotNil(t, batch.Links)
		assert.Equal(t, int64(linkCount), batch.Links.NumRows())

		// Every emitted column aligns with its schema, and every column
		// has one value per row.
		for _, record := range []arrow.Record{batch.Spans, batch.Events, batch.Links} {
			assert.Equal(t, len(record.Schema().Fields()), int(record.NumCols()))
			for i := 0; i < int(record.NumCols()); i++ {
				assert.Equal(t, int(record.NumRows()), record.Column(i).Len())
			}
		}

		batch.Release()
	}
}

func TestRectangularizationWithEmptyAttributeMaps(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	// A present-but-empty attribute map between populated rows must
	// still consume one (null) slot in every attribute column.
	spans := []trace.Span{
		span("T", "S0", "a", 1, withAttributes(trace.Attributes{"k": trace.U64Value(1)})),
		span("T", "S1", "b", 2, withAttributes(trace.Attributes{})),
		span("T", "S2", "c", 3, withAttributes(trace.Attributes{"k": trace.U64Value(3)})),
	}

	buf, err := SerializeColumnOriented(pool, spans, nil)
	require.NoError(t, err)

	batch, err := Deserialize(pool, buf)
	require.NoError(t, err)
	defer batch.Release()

	k := column(t, batch.Spans, "attributes_k").(*array.Uint64)
	require.Equal(t, 3, k.Len())
	assert.Equal(t, uint64(1), k.Value(0))
	assert.True(t, k.IsNull(1))
	assert.Equal(t, uint64(3), k.Value(2))
}

func TestDeserializeGarbage(t *testing.T) {
	t.Parallel()

	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	_, err := Deserialize(pool, []byte{0xFF, 0x01, 0x02})
	require.Error(t, err)
}

// --- helpers ---

type spanOption func(*trace.Span)

func span(traceID, spanID, name string, start uint64, opts ...spanOption) trace.Span {
	s := trace.Span{
		TraceID:           traceID,
		SpanID:            spanID,
		Name:              name,
		StartTimeUnixNano: start,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func withAttributes(attributes trace.Attributes) spanOption {
	return func(s *trace.Span) { s.Attributes = attributes }
}

func withEvents(events []trace.Event) spanOption {
	return func(s *trace.Span) { s.Events = events }
}

func withLinks(links []trace.Link) spanOption {
	return func(s *trace.Span) { s.Links = links }
}

func fieldNames(schema *arrow.Schema) []string {
	names := make([]string, 0, len(schema.Fields()))
	for _, field := range schema.Fields() {
		names = append(names, field.Name)
	}
	return names
}

func column(t *testing.T, record arrow.Record, name string) arrow.Array {
	t.Helper()
	indices := record.Schema().FieldIndices(name)
	require.Len(t, indices, 1, "column %q", name)
	return record.Column(indices[0])
}
