/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package benchmark

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lquerel/oltp-arrow/pkg/trace"
)

type fakeSystem struct {
	serialized int
}

func (f *fakeSystem) Name() string                              { return "fake" }
func (f *fakeSystem) Tags() []string                            { return []string{"test"} }
func (f *fakeSystem) CompressionAlgorithm() CompressionAlgorithm { return Lz4() }

func (f *fakeSystem) Serialize(spans []trace.Span) ([]byte, error) {
	f.serialized++
	return bytes.Repeat([]byte("x"), len(spans)*10), nil
}

func (f *fakeSystem) Deserialize(buf []byte) error { return nil }

func TestRunRecordsEveryBatch(t *testing.T) {
	t.Parallel()

	system := &fakeSystem{}
	batches := [][]trace.Span{make([]trace.Span, 3), make([]trace.Span, 5)}

	result, err := Run(system, batches)
	require.NoError(t, err)

	assert.Equal(t, 2, result.BatchCount)
	assert.Equal(t, 2, system.serialized)
	assert.Equal(t, 80.0, result.UncompressedBytes.Total())

	var report bytes.Buffer
	Render(&report, []*Result{result})
	assert.Contains(t, report.String(), "fake:test")
}

func TestSeriesQuantiles(t *testing.T) {
	t.Parallel()

	series := NewSeries()
	for i := 100; i >= 1; i-- {
		series.Record(float64(i))
	}

	assert.Equal(t, 100, series.Count())
	assert.Equal(t, 5050.0, series.Total())
	assert.InDelta(t, 50.5, series.Mean(), 0.01)
	assert.Equal(t, 1.0, series.Quantile(0))
	assert.Equal(t, 100.0, series.Quantile(1))
	assert.InDelta(t, 50.5, series.Quantile(0.5), 0.01)
	assert.InDelta(t, 99.01, series.Quantile(0.99), 0.01)
}

func TestSeriesEmpty(t *testing.T) {
	t.Parallel()

	series := NewSeries()
	assert.Equal(t, 0.0, series.Quantile(0.5))
	assert.Equal(t, 0.0, series.Mean())
}
