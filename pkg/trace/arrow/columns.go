/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package arrow

import (
	"github.com/lquerel/oltp-arrow/pkg/trace"
)

// DataColumns is the column-oriented form of a batch: three pre-pivoted
// tables ready for field emission.
type DataColumns struct {
	Spans  *SpanColumns
	Events *EventColumns
	Links  *LinkColumns
}

// ToDataColumns pivots a row batch into DataColumns. The attribute column
// set of each table is fixed up-front by inference; each row appends the
// keys it carries and the tables are then rectangularized back to the
// entity row count, so a ragged attribute universe stays row-aligned.
func ToDataColumns(spans []trace.Span) *DataColumns {
	spanSchema := inferSpanAttributes(spans)
	eventSchema, eventCount := inferEventAttributes(spans)
	linkSchema, linkCount := inferLinkAttributes(spans)
	genID := eventCount+linkCount > 0

	dc := &DataColumns{
		Spans:  newSpanColumns(spanSchema, len(spans), genID),
		Events: newEventColumns(eventSchema, eventCount),
		Links:  newLinkColumns(linkSchema, linkCount),
	}

	for i := range spans {
		span := &spans[i]

		dc.Spans.appendFixed(i, span)
		if span.Attributes != nil {
			dc.Spans.attributes.appendPresent(span.Attributes)
		}
		dc.Spans.attributes.rectangularize(dc.Spans.rowCount())

		for j := range span.Events {
			event := &span.Events[j]
			dc.Events.appendFixed(i, event)
			dc.Events.attributes.appendPresent(event.Attributes)
			dc.Events.attributes.rectangularize(dc.Events.rowCount())
		}

		for j := range span.Links {
			link := &span.Links[j]
			dc.Links.appendFixed(i, link)
			dc.Links.attributes.appendPresent(link.Attributes)
			dc.Links.attributes.rectangularize(dc.Links.rowCount())
		}
	}

	return dc
}
