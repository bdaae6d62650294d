/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

// Package arrow exposes the columnar encoder (both encoding paths) as
// profileable systems for the benchmark harness.
package arrow

import (
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/lquerel/oltp-arrow/pkg/benchmark"
	"github.com/lquerel/oltp-arrow/pkg/trace"
	carrow "github.com/lquerel/oltp-arrow/pkg/trace/arrow"
)

type TracesProfileable struct {
	mem            memory.Allocator
	compression    benchmark.CompressionAlgorithm
	columnOriented bool
	statistics     *carrow.StatisticsReporter
}

// NewTracesProfileable wraps one encoding path of the columnar encoder.
// statistics may be a noop reporter.
func NewTracesProfileable(compression benchmark.CompressionAlgorithm, columnOriented bool, statistics *carrow.StatisticsReporter) *TracesProfileable {
	return &TracesProfileable{
		mem:            memory.NewGoAllocator(),
		compression:    compression,
		columnOriented: columnOriented,
		statistics:     statistics,
	}
}

func (p *TracesProfileable) Name() string {
	return "OTLP_ARROW"
}

func (p *TracesProfileable) Tags() []string {
	path := "row"
	if p.columnOriented {
		path = "columnar"
	}
	return []string{path, p.compression.String()}
}

func (p *TracesProfileable) CompressionAlgorithm() benchmark.CompressionAlgorithm {
	return p.compression
}

func (p *TracesProfileable) Serialize(spans []trace.Span) ([]byte, error) {
	stats := p.statistics.NextBatch()
	if p.columnOriented {
		return carrow.SerializeColumnOriented(p.mem, spans, stats)
	}
	return carrow.SerializeRowOriented(p.mem, spans, stats)
}

func (p *TracesProfileable) Deserialize(buf []byte) error {
	batch, err := carrow.Deserialize(p.mem, buf)
	if err != nil {
		return err
	}
	batch.Release()
	return nil
}
