/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package benchmark

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/lquerel/oltp-arrow/pkg/trace"
	"github.com/lquerel/oltp-arrow/pkg/werror"
)

// Result aggregates one system's measurements over every batch of a run.
type Result struct {
	SystemID   string
	BatchCount int

	UncompressedBytes *Series
	CompressedBytes   *Series
	SerializeMs       *Series
	CompressMs        *Series
	DecompressMs      *Series
	DeserializeMs     *Series
}

func NewResult(systemID string) *Result {
	return &Result{
		SystemID:          systemID,
		UncompressedBytes: NewSeries(),
		CompressedBytes:   NewSeries(),
		SerializeMs:       NewSeries(),
		CompressMs:        NewSeries(),
		DecompressMs:      NewSeries(),
		DeserializeMs:     NewSeries(),
	}
}

// Run pushes every batch through serialize, compress, decompress and
// deserialize, recording sizes and per-phase wall times.
func Run(ps ProfileableSystem, batches [][]trace.Span) (*Result, error) {
	result := NewResult(ProfileableSystemID(ps))
	algo := ps.CompressionAlgorithm()

	for _, batch := range batches {
		start := time.Now()
		buf, err := ps.Serialize(batch)
		if err != nil {
			return nil, werror.Wrap(err)
		}
		result.SerializeMs.Record(msSince(start))
		result.UncompressedBytes.Record(float64(len(buf)))

		start = time.Now()
		compressed, err := algo.Compress(buf)
		if err != nil {
			return nil, werror.Wrap(err)
		}
		result.CompressMs.Record(msSince(start))
		result.CompressedBytes.Record(float64(len(compressed)))

		start = time.Now()
		decompressed, err := algo.Decompress(compressed)
		if err != nil {
			return nil, werror.Wrap(err)
		}
		result.DecompressMs.Record(msSince(start))

		start = time.Now()
		if err := ps.Deserialize(decompressed); err != nil {
			return nil, werror.Wrap(err)
		}
		result.DeserializeMs.Record(msSince(start))

		result.BatchCount++
	}

	return result, nil
}

// Render prints the comparison table for a set of results.
func Render(w io.Writer, results []*Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"System", "Batches",
		"Uncompressed", "Compressed",
		"Ser p50 (ms)", "Ser p99 (ms)",
		"Deser p50 (ms)", "Deser p99 (ms)",
	})

	for _, result := range results {
		table.Append([]string{
			result.SystemID,
			humanize.Comma(int64(result.BatchCount)),
			humanize.Bytes(uint64(result.UncompressedBytes.Total())),
			humanize.Bytes(uint64(result.CompressedBytes.Total())),
			floatCell(result.SerializeMs.Quantile(0.5)),
			floatCell(result.SerializeMs.Quantile(0.99)),
			floatCell(result.DeserializeMs.Quantile(0.5)),
			floatCell(result.DeserializeMs.Quantile(0.99)),
		})
	}

	table.Render()
}

func floatCell(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
