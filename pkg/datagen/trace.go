/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

// Package datagen generates synthetic span batches whose attribute mix
// exercises the schema inference paths: low-cardinality strings that
// dictionary-encode, unique strings that stay plain, numeric promotions
// and missing keys.
package datagen

import (
	"encoding/binary"
	"encoding/hex"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/lquerel/oltp-arrow/pkg/trace"
)

var EventNames = []string{"empty", "dns-lookup", "tcp-connect", "tcp-handshake", "tcp-send", "tcp-receive", "tcp-close", "http-send", "http-receive", "http-close", "message-send", "message-receive", "message-close", "grpc-send", "grpc-receive", "grpc-close", "grpc-status", "grpc-trailers", "unknown"}
var TraceStates = []string{"started", "ended", "unknown"}
var Hostnames = []string{"host1.mydomain.com", "host2.org", "host3.thedomain.edu", "host4.gov", "host5.retailer.com"}
var Versions = []string{"1.0.0", "1.0.2", "2.0", "1.9.9"}
var StatusCodes = []int64{200, 300, 400, 404, 500, 503}

// TraceGenerator produces deterministic pseudo-random span rows.
type TraceGenerator struct {
	rng         *rand.Rand
	faker       *gofakeit.Faker
	currentTime uint64
	nextID      uint64
}

func NewTraceGenerator(seed int64) *TraceGenerator {
	return &TraceGenerator{
		rng:         rand.New(rand.NewSource(seed)),
		faker:       gofakeit.New(seed),
		currentTime: uint64(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano()),
	}
}

// Spans generates count spans, roughly half of them carrying events and
// roughly a third carrying links.
func (tg *TraceGenerator) Spans(count int) []trace.Span {
	spans := make([]trace.Span, 0, count)
	for i := 0; i < count; i++ {
		spans = append(spans, tg.span())
	}
	return spans
}

func (tg *TraceGenerator) span() trace.Span {
	tg.advanceTime()

	traceID := tg.id(16)
	spanID := tg.id(8)
	start := tg.currentTime
	end := start + uint64(tg.rng.Intn(5_000_000)+1)

	span := trace.Span{
		TraceID:           traceID,
		SpanID:            spanID,
		Name:              tg.faker.HTTPMethod() + " /" + tg.faker.Word(),
		StartTimeUnixNano: start,
		EndTimeUnixNano:   &end,
		Attributes:        tg.spanAttributes(),
	}

	if tg.rng.Intn(2) == 0 {
		state := pick(tg.rng, TraceStates)
		span.TraceState = &state
	}
	if tg.rng.Intn(2) == 0 {
		parent := tg.id(8)
		span.ParentSpanID = &parent
	}
	if tg.rng.Intn(2) == 0 {
		kind := int32(tg.rng.Intn(6))
		span.Kind = &kind
	}
	if tg.rng.Intn(4) == 0 {
		dropped := uint32(tg.rng.Intn(10))
		span.DroppedAttributesCount = &dropped
	}
	if tg.rng.Intn(2) == 0 {
		span.Events = tg.events()
	}
	if tg.rng.Intn(3) == 0 {
		span.Links = tg.links(traceID, spanID)
	}

	return span
}

func (tg *TraceGenerator) events() []trace.Event {
	count := tg.rng.Intn(4) + 1
	events := make([]trace.Event, 0, count)
	for i := 0; i < count; i++ {
		name := pick(tg.rng, EventNames)
		attributes := trace.Attributes{
			"hostname": trace.StringValue(pick(tg.rng, Hostnames)),
			"status":   trace.I64Value(pick(tg.rng, StatusCodes)),
			"up":       trace.BoolValue(tg.rng.Intn(2) == 0),
		}
		if name == "empty" {
			attributes = trace.Attributes{}
		}
		events = append(events, trace.Event{
			TimeUnixNano: tg.currentTime + uint64(tg.rng.Intn(1000)),
			Name:         name,
			Attributes:   attributes,
		})
	}
	return events
}

func (tg *TraceGenerator) links(traceID, spanID string) []trace.Link {
	count := tg.rng.Intn(3) + 1
	links := make([]trace.Link, 0, count)
	for i := 0; i < count; i++ {
		link := trace.Link{
			TraceID: traceID,
			SpanID:  spanID,
			Attributes: trace.Attributes{
				"hostname": trace.StringValue(pick(tg.rng, Hostnames)),
				"status":   trace.I64Value(pick(tg.rng, StatusCodes)),
			},
		}
		if tg.rng.Intn(2) == 0 {
			state := pick(tg.rng, TraceStates)
			link.TraceState = &state
		}
		links = append(links, link)
	}
	return links
}

// spanAttributes mixes stable low-cardinality keys with per-span unique
// values, plus a numeric key that wanders across the promotion lattice.
func (tg *TraceGenerator) spanAttributes() trace.Attributes {
	attributes := trace.Attributes{
		"hostname": trace.StringValue(pick(tg.rng, Hostnames)),
		"version":  trace.StringValue(pick(tg.rng, Versions)),
		"up":       trace.BoolValue(tg.rng.Intn(2) == 0),
		"url":      trace.StringValue(tg.faker.URL()),
	}

	switch tg.rng.Intn(3) {
	case 0:
		attributes["load"] = trace.U64Value(uint64(tg.rng.Intn(100)))
	case 1:
		attributes["load"] = trace.I64Value(-int64(tg.rng.Intn(100)))
	default:
		attributes["load"] = trace.F64Value(tg.rng.Float64())
	}

	if tg.rng.Intn(4) == 0 {
		attributes["group_id"] = trace.StringValue(tg.faker.UUID())
	}

	return attributes
}

func (tg *TraceGenerator) advanceTime() {
	tg.currentTime += uint64(tg.rng.Intn(10_000_000) + 1)
}

func (tg *TraceGenerator) id(byteCount int) string {
	tg.nextID++
	buf := make([]byte, byteCount)
	binary.BigEndian.PutUint64(buf[byteCount-8:], tg.nextID)
	return hex.EncodeToString(buf)
}

func pick[N any](rng *rand.Rand, from []N) N {
	return from[rng.Intn(len(from))]
}
