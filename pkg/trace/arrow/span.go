/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package arrow

import (
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/lquerel/oltp-arrow/pkg/trace"
)

// SpanColumns holds the pivoted span table of one batch: one vector per
// fixed field plus the inferred attribute columns. The generated id
// column exists only when the batch has at least one event or link; it is
// the join key children point at.
type SpanColumns struct {
	startTimeUnixNano      []uint64
	endTimeUnixNano        []*uint64
	traceID                []string
	spanID                 []string
	traceState             []*string
	parentSpanID           []*string
	name                   []string
	kind                   []*uint8
	droppedAttributesCount []*uint32
	droppedEventsCount     []*uint32
	droppedLinksCount      []*uint32
	id                     []uint32
	genID                  bool
	attributes             *attributeColumns
}

func newSpanColumns(schema *AttributeSchema, capacity int, genID bool) *SpanColumns {
	return &SpanColumns{
		startTimeUnixNano:      make([]uint64, 0, capacity),
		endTimeUnixNano:        make([]*uint64, 0, capacity),
		traceID:                make([]string, 0, capacity),
		spanID:                 make([]string, 0, capacity),
		traceState:             make([]*string, 0, capacity),
		parentSpanID:           make([]*string, 0, capacity),
		name:                   make([]string, 0, capacity),
		kind:                   make([]*uint8, 0, capacity),
		droppedAttributesCount: make([]*uint32, 0, capacity),
		droppedEventsCount:     make([]*uint32, 0, capacity),
		droppedLinksCount:      make([]*uint32, 0, capacity),
		genID:                  genID,
		attributes:             newAttributeColumns(schema),
	}
}

// appendFixed appends the fixed fields of one span row.
func (sc *SpanColumns) appendFixed(index int, span *trace.Span) {
	sc.startTimeUnixNano = append(sc.startTimeUnixNano, span.StartTimeUnixNano)
	sc.endTimeUnixNano = append(sc.endTimeUnixNano, span.EndTimeUnixNano)
	sc.traceID = append(sc.traceID, span.TraceID)
	sc.spanID = append(sc.spanID, span.SpanID)
	sc.traceState = append(sc.traceState, span.TraceState)
	sc.parentSpanID = append(sc.parentSpanID, span.ParentSpanID)
	sc.name = append(sc.name, span.Name)
	sc.kind = append(sc.kind, kindValue(span.Kind))
	sc.droppedAttributesCount = append(sc.droppedAttributesCount, span.DroppedAttributesCount)
	sc.droppedEventsCount = append(sc.droppedEventsCount, span.DroppedEventsCount)
	sc.droppedLinksCount = append(sc.droppedLinksCount, span.DroppedLinksCount)
	if sc.genID {
		sc.id = append(sc.id, uint32(index))
	}
}

// appendRow appends one span row, value-or-null per attribute column.
func (sc *SpanColumns) appendRow(index int, span *trace.Span) {
	sc.appendFixed(index, span)
	if span.Attributes == nil {
		sc.attributes.rectangularize(len(sc.startTimeUnixNano))
		return
	}
	sc.attributes.appendRow(span.Attributes)
}

func (sc *SpanColumns) rowCount() int {
	return len(sc.startTimeUnixNano)
}

// serialize emits the span table as an Arrow IPC stream buffer. A table
// whose every column was suppressed yields an empty buffer.
func (sc *SpanColumns) serialize(mem memory.Allocator, stats *ColumnsStatistics) ([]byte, error) {
	cs := newColumnSet(mem)
	defer cs.release()

	emitU64(cs, "start_time_unix_nano", sc.startTimeUnixNano)
	emitOptU64(cs, "end_time_unix_nano", sc.endTimeUnixNano)
	emitBinary(cs, "trace_id", sc.traceID)
	emitBinary(cs, "span_id", sc.spanID)
	if err := emitOptString(cs, "trace_state", sc.traceState); err != nil {
		return nil, err
	}
	emitOptBinary(cs, "parent_span_id", sc.parentSpanID)
	if err := emitString(cs, "name", sc.name); err != nil {
		return nil, err
	}
	emitOptU8(cs, "kind", sc.kind)
	emitOptU32(cs, "dropped_attributes_count", sc.droppedAttributesCount)
	emitOptU32(cs, "dropped_events_count", sc.droppedEventsCount)
	emitOptU32(cs, "dropped_links_count", sc.droppedLinksCount)
	if sc.genID {
		emitU32(cs, "id", sc.id)
	}
	if err := sc.attributes.emit(cs); err != nil {
		return nil, err
	}

	return writeStream(cs, sc.rowCount(), stats)
}

func kindValue(kind *int32) *uint8 {
	if kind == nil {
		return nil
	}
	v := uint8(*kind)
	return &v
}
