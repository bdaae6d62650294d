/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

// Package otlp is the row-oriented Protobuf reference encoder the
// columnar encoder is benchmarked against. It maps span rows onto the
// standard OTLP trace protos and measures nothing itself.
package otlp

import (
	"errors"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
	"google.golang.org/protobuf/proto"

	"github.com/lquerel/oltp-arrow/pkg/trace"
	"github.com/lquerel/oltp-arrow/pkg/werror"
)

var ErrNoResourceSpans = errors.New("no resource spans in payload")

// Serialize encodes the batch as one OTLP ResourceSpans message.
func Serialize(spans []trace.Span) ([]byte, error) {
	pbSpans := make([]*tracepb.Span, 0, len(spans))
	for i := range spans {
		pbSpans = append(pbSpans, pbSpan(&spans[i]))
	}

	resourceSpans := &tracepb.ResourceSpans{
		ScopeSpans: []*tracepb.ScopeSpans{
			{Spans: pbSpans},
		},
	}

	buf, err := proto.Marshal(resourceSpans)
	if err != nil {
		return nil, werror.Wrap(err)
	}
	return buf, nil
}

// Deserialize decodes an OTLP ResourceSpans payload, the reverse path of
// the baseline measurement.
func Deserialize(buf []byte) error {
	resourceSpans := &tracepb.ResourceSpans{}
	if err := proto.Unmarshal(buf, resourceSpans); err != nil {
		return werror.Wrap(err)
	}
	if len(resourceSpans.ScopeSpans) == 0 {
		return werror.Wrap(ErrNoResourceSpans)
	}
	return nil
}

func pbSpan(span *trace.Span) *tracepb.Span {
	return &tracepb.Span{
		TraceId:                []byte(span.TraceID),
		SpanId:                 []byte(span.SpanID),
		TraceState:             orEmpty(span.TraceState),
		ParentSpanId:           []byte(orEmpty(span.ParentSpanID)),
		Name:                   span.Name,
		Kind:                   tracepb.Span_SpanKind(orZero(span.Kind)),
		StartTimeUnixNano:      span.StartTimeUnixNano,
		EndTimeUnixNano:        orZeroU64(span.EndTimeUnixNano),
		Attributes:             pbAttributes(span.Attributes),
		DroppedAttributesCount: orZeroU32(span.DroppedAttributesCount),
		Events:                 pbEvents(span.Events),
		DroppedEventsCount:     orZeroU32(span.DroppedEventsCount),
		Links:                  pbLinks(span.Links),
		DroppedLinksCount:      orZeroU32(span.DroppedLinksCount),
	}
}

func pbEvents(events []trace.Event) []*tracepb.Span_Event {
	if len(events) == 0 {
		return nil
	}
	pbEvents := make([]*tracepb.Span_Event, 0, len(events))
	for i := range events {
		event := &events[i]
		pbEvents = append(pbEvents, &tracepb.Span_Event{
			TimeUnixNano:           event.TimeUnixNano,
			Name:                   event.Name,
			Attributes:             pbAttributes(event.Attributes),
			DroppedAttributesCount: orZeroU32(event.DroppedAttributesCount),
		})
	}
	return pbEvents
}

func pbLinks(links []trace.Link) []*tracepb.Span_Link {
	if len(links) == 0 {
		return nil
	}
	pbLinks := make([]*tracepb.Span_Link, 0, len(links))
	for i := range links {
		link := &links[i]
		pbLinks = append(pbLinks, &tracepb.Span_Link{
			TraceId:                []byte(link.TraceID),
			SpanId:                 []byte(link.SpanID),
			TraceState:             orEmpty(link.TraceState),
			Attributes:             pbAttributes(link.Attributes),
			DroppedAttributesCount: orZeroU32(link.DroppedAttributesCount),
		})
	}
	return pbLinks
}

func pbAttributes(attributes trace.Attributes) []*commonpb.KeyValue {
	if len(attributes) == 0 {
		return nil
	}
	kvs := make([]*commonpb.KeyValue, 0, len(attributes))
	for key, value := range attributes {
		anyValue := pbAnyValue(value)
		if anyValue == nil {
			continue
		}
		kvs = append(kvs, &commonpb.KeyValue{Key: key, Value: anyValue})
	}
	return kvs
}

func pbAnyValue(value trace.Value) *commonpb.AnyValue {
	switch value.Type() {
	case trace.ValueTypeBool:
		v, _ := value.AsBool()
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_BoolValue{BoolValue: v}}
	case trace.ValueTypeU64:
		v, _ := value.AsU64()
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: int64(v)}}
	case trace.ValueTypeI64:
		v, _ := value.AsI64()
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: v}}
	case trace.ValueTypeF64:
		v, _ := value.AsF64()
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: v}}
	case trace.ValueTypeString:
		v, _ := value.AsString()
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: v}}
	default:
		// Null, array and object values are dropped, as on the columnar
		// path.
		return nil
	}
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orZero(v *int32) int32 {
	if v == nil {
		return 0
	}
	return *v
}

func orZeroU32(v *uint32) uint32 {
	if v == nil {
		return 0
	}
	return *v
}

func orZeroU64(v *uint64) uint64 {
	if v == nil {
		return 0
	}
	return *v
}
