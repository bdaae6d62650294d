/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package arrow

import (
	"bytes"

	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/ipc"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/lquerel/oltp-arrow/pkg/pb"
	"github.com/lquerel/oltp-arrow/pkg/trace"
	"github.com/lquerel/oltp-arrow/pkg/werror"
)

// SerializeRowOriented encodes a batch from its row-oriented form: a
// first pass infers the attribute schemas and child row counts, a second
// pass populates the columns, and the three tables are wrapped into the
// OTLP-events envelope.
func SerializeRowOriented(mem memory.Allocator, spans []trace.Span, stats *BatchStatistics) ([]byte, error) {
	spanSchema := inferSpanAttributes(spans)
	eventSchema, eventCount := inferEventAttributes(spans)
	linkSchema, linkCount := inferLinkAttributes(spans)
	genID := eventCount+linkCount > 0

	spanColumns := newSpanColumns(spanSchema, len(spans), genID)
	eventColumns := newEventColumns(eventSchema, eventCount)
	linkColumns := newLinkColumns(linkSchema, linkCount)

	for i := range spans {
		span := &spans[i]
		spanColumns.appendRow(i, span)
		for j := range span.Events {
			eventColumns.appendRow(i, &span.Events[j])
		}
		for j := range span.Links {
			linkColumns.appendRow(i, &span.Links[j])
		}
	}

	return serializeTables(mem, spanColumns, eventColumns, linkColumns, stats)
}

// SerializeColumnOriented encodes a batch from its pre-pivoted
// column-oriented form. The emitted envelope is equivalent to the
// row-oriented path for the same input.
func SerializeColumnOriented(mem memory.Allocator, spans []trace.Span, stats *BatchStatistics) ([]byte, error) {
	dc := ToDataColumns(spans)
	return serializeTables(mem, dc.Spans, dc.Events, dc.Links, stats)
}

func serializeTables(mem memory.Allocator, spans *SpanColumns, events *EventColumns, links *LinkColumns, stats *BatchStatistics) ([]byte, error) {
	spansBuf, err := spans.serialize(mem, stats.SpanStats())
	if err != nil {
		return nil, err
	}
	eventsBuf, err := events.serialize(mem, stats.EventStats())
	if err != nil {
		return nil, err
	}
	linksBuf, err := links.serialize(mem, stats.LinkStats())
	if err != nil {
		return nil, err
	}

	resourceEvents := &pb.ResourceEvents{
		InstrumentationLibraryEvents: []*pb.InstrumentationLibraryEvents{
			{
				Spans:  spansBuf,
				Events: eventsBuf,
				Links:  linksBuf,
			},
		},
	}

	buf, err := resourceEvents.Marshal()
	if err != nil {
		return nil, werror.Wrap(err)
	}
	return buf, nil
}

// writeStream materializes a column set as one Arrow IPC stream: schema
// message, dictionary messages when needed, one record batch message and
// the end-of-stream marker. A column set left empty by the emission rules
// yields an empty buffer.
func writeStream(cs *columnSet, rowCount int, stats *ColumnsStatistics) ([]byte, error) {
	if cs.empty() {
		return nil, nil
	}

	schema := cs.schema()
	stats.Report(schema, cs.columns)

	record := array.NewRecord(schema, cs.columns, int64(rowCount))
	defer record.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(cs.mem))
	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		return nil, werror.Wrap(err)
	}
	if err := writer.Close(); err != nil {
		return nil, werror.Wrap(err)
	}

	return buf.Bytes(), nil
}
