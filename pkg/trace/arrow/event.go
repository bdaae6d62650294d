/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package arrow

import (
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/lquerel/oltp-arrow/pkg/trace"
)

// EventColumns holds the flattened event table of one batch. The id
// column carries the 0-based index of the parent span.
type EventColumns struct {
	id                     []uint32
	timeUnixNano           []uint64
	name                   []string
	droppedAttributesCount []*uint32
	attributes             *attributeColumns
}

func newEventColumns(schema *AttributeSchema, capacity int) *EventColumns {
	return &EventColumns{
		id:                     make([]uint32, 0, capacity),
		timeUnixNano:           make([]uint64, 0, capacity),
		name:                   make([]string, 0, capacity),
		droppedAttributesCount: make([]*uint32, 0, capacity),
		attributes:             newAttributeColumns(schema),
	}
}

func (ec *EventColumns) appendFixed(parentIndex int, event *trace.Event) {
	ec.id = append(ec.id, uint32(parentIndex))
	ec.timeUnixNano = append(ec.timeUnixNano, event.TimeUnixNano)
	ec.name = append(ec.name, event.Name)
	ec.droppedAttributesCount = append(ec.droppedAttributesCount, event.DroppedAttributesCount)
}

func (ec *EventColumns) appendRow(parentIndex int, event *trace.Event) {
	ec.appendFixed(parentIndex, event)
	ec.attributes.appendRow(event.Attributes)
}

func (ec *EventColumns) rowCount() int {
	return len(ec.id)
}

func (ec *EventColumns) serialize(mem memory.Allocator, stats *ColumnsStatistics) ([]byte, error) {
	cs := newColumnSet(mem)
	defer cs.release()

	emitU32(cs, "id", ec.id)
	emitU64(cs, "time_unix_nano", ec.timeUnixNano)
	if err := emitString(cs, "name", ec.name); err != nil {
		return nil, err
	}
	emitOptU32(cs, "dropped_attributes_count", ec.droppedAttributesCount)
	if err := ec.attributes.emit(cs); err != nil {
		return nil, err
	}

	return writeStream(cs, ec.rowCount(), stats)
}
