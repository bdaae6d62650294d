/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package arrow

import (
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/lquerel/oltp-arrow/pkg/trace"
)

// LinkColumns holds the flattened link table of one batch. The id column
// carries the 0-based index of the parent span.
type LinkColumns struct {
	id                     []uint32
	traceID                []string
	spanID                 []string
	traceState             []*string
	droppedAttributesCount []*uint32
	attributes             *attributeColumns
}

func newLinkColumns(schema *AttributeSchema, capacity int) *LinkColumns {
	return &LinkColumns{
		id:                     make([]uint32, 0, capacity),
		traceID:                make([]string, 0, capacity),
		spanID:                 make([]string, 0, capacity),
		traceState:             make([]*string, 0, capacity),
		droppedAttributesCount: make([]*uint32, 0, capacity),
		attributes:             newAttributeColumns(schema),
	}
}

func (lc *LinkColumns) appendFixed(parentIndex int, link *trace.Link) {
	lc.id = append(lc.id, uint32(parentIndex))
	lc.traceID = append(lc.traceID, link.TraceID)
	lc.spanID = append(lc.spanID, link.SpanID)
	lc.traceState = append(lc.traceState, link.TraceState)
	lc.droppedAttributesCount = append(lc.droppedAttributesCount, link.DroppedAttributesCount)
}

func (lc *LinkColumns) appendRow(parentIndex int, link *trace.Link) {
	lc.appendFixed(parentIndex, link)
	lc.attributes.appendRow(link.Attributes)
}

func (lc *LinkColumns) rowCount() int {
	return len(lc.id)
}

func (lc *LinkColumns) serialize(mem memory.Allocator, stats *ColumnsStatistics) ([]byte, error) {
	cs := newColumnSet(mem)
	defer cs.release()

	emitU32(cs, "id", lc.id)
	emitBinary(cs, "trace_id", lc.traceID)
	emitBinary(cs, "span_id", lc.spanID)
	if err := emitOptString(cs, "trace_state", lc.traceState); err != nil {
		return nil, err
	}
	emitOptU32(cs, "dropped_attributes_count", lc.droppedAttributesCount)
	if err := lc.attributes.emit(cs); err != nil {
		return nil, err
	}

	return writeStream(cs, lc.rowCount(), stats)
}
