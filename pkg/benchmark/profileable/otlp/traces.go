/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

// Package otlp exposes the row-oriented Protobuf reference encoder as a
// profileable system, the baseline the columnar encoder is measured
// against.
package otlp

import (
	"github.com/lquerel/oltp-arrow/pkg/benchmark"
	"github.com/lquerel/oltp-arrow/pkg/trace"
	"github.com/lquerel/oltp-arrow/pkg/trace/otlp"
)

type TracesProfileable struct {
	compression benchmark.CompressionAlgorithm
}

func NewTracesProfileable(compression benchmark.CompressionAlgorithm) *TracesProfileable {
	return &TracesProfileable{compression: compression}
}

func (p *TracesProfileable) Name() string {
	return "OTLP"
}

func (p *TracesProfileable) Tags() []string {
	return []string{"proto", p.compression.String()}
}

func (p *TracesProfileable) CompressionAlgorithm() benchmark.CompressionAlgorithm {
	return p.compression
}

func (p *TracesProfileable) Serialize(spans []trace.Span) ([]byte, error) {
	return otlp.Serialize(spans)
}

func (p *TracesProfileable) Deserialize(buf []byte) error {
	return otlp.Deserialize(buf)
}
