/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package arrow

import (
	"fmt"
	"math"
	"os"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/multierr"

	"github.com/lquerel/oltp-arrow/pkg/werror"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatisticsReporter accumulates per-batch column statistics and dumps
// them as JSON. It is a pure observer: it reads the emitted columns and
// never influences the emitted bytes.
type StatisticsReporter struct {
	File    string             `json:"file"`
	Batches []*BatchStatistics `json:"batches"`

	enabled bool
}

// NewStatisticsReporter creates a reporter that will dump to file.
func NewStatisticsReporter(file string) *StatisticsReporter {
	return &StatisticsReporter{File: file, enabled: true}
}

// NoopStatisticsReporter creates a disabled reporter; NextBatch still
// hands out batch recorders but they record nothing.
func NoopStatisticsReporter() *StatisticsReporter {
	return &StatisticsReporter{}
}

// NextBatch starts the statistics of the next encoded batch.
func (sr *StatisticsReporter) NextBatch() *BatchStatistics {
	batch := &BatchStatistics{
		SpanColumns:  newColumnsStatistics(sr.enabled),
		EventColumns: newColumnsStatistics(sr.enabled),
		LinkColumns:  newColumnsStatistics(sr.enabled),
	}
	if sr.enabled {
		sr.Batches = append(sr.Batches, batch)
	}
	return batch
}

// WriteFile dumps the accumulated statistics as indented JSON.
func (sr *StatisticsReporter) WriteFile() (err error) {
	if !sr.enabled {
		return nil
	}

	file, err := os.Create(sr.File)
	if err != nil {
		return werror.Wrap(err)
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(sr); err != nil {
		return werror.Wrap(err)
	}
	return nil
}

// BatchStatistics groups the per-table column statistics of one batch.
type BatchStatistics struct {
	SpanColumns  *ColumnsStatistics `json:"span_columns"`
	EventColumns *ColumnsStatistics `json:"event_columns"`
	LinkColumns  *ColumnsStatistics `json:"link_columns"`
}

func (bs *BatchStatistics) SpanStats() *ColumnsStatistics {
	if bs == nil {
		return nil
	}
	return bs.SpanColumns
}

func (bs *BatchStatistics) EventStats() *ColumnsStatistics {
	if bs == nil {
		return nil
	}
	return bs.EventColumns
}

func (bs *BatchStatistics) LinkStats() *ColumnsStatistics {
	if bs == nil {
		return nil
	}
	return bs.LinkColumns
}

// ColumnsStatistics snapshots one emitted table, column by column.
type ColumnsStatistics struct {
	Columns map[string]*ColumnStatistics `json:"columns"`

	enabled bool
}

// ColumnStatistics describes one emitted column.
type ColumnStatistics struct {
	// Physical type tag of the column.
	ColumnType string `json:"column_type"`
	// Total number of values, including missing values.
	TotalValues int `json:"total_values"`
	// Number of unique values.
	Cardinality int `json:"cardinality"`
	// Number of missing values.
	MissingValues int `json:"missing_values"`
	// Whether the column is dictionary-encoded.
	Dictionary bool `json:"dictionary"`
	// Raw validity bitmap, present only when the column has nulls.
	Validity []byte `json:"validity,omitempty"`
}

func newColumnsStatistics(enabled bool) *ColumnsStatistics {
	return &ColumnsStatistics{enabled: enabled, Columns: map[string]*ColumnStatistics{}}
}

// Report snapshots the emitted columns of one table. Schema fields and
// column arrays must be aligned.
func (cs *ColumnsStatistics) Report(schema *arrow.Schema, columns []arrow.Array) {
	if cs == nil || !cs.enabled {
		return
	}

	fields := schema.Fields()
	if len(fields) != len(columns) {
		panic("schema definition not aligned with column data")
	}

	for i, field := range fields {
		cs.Columns[field.Name] = columnStatistics(field, columns[i])
	}
}

func columnStatistics(field arrow.Field, column arrow.Array) *ColumnStatistics {
	stats := &ColumnStatistics{
		TotalValues:   column.Len(),
		MissingValues: column.NullN(),
	}
	if column.NullN() > 0 {
		stats.Validity = append([]byte(nil), column.NullBitmapBytes()...)
	}

	switch typed := column.(type) {
	case *array.Boolean:
		stats.ColumnType = "Boolean"
		distinct := map[bool]struct{}{}
		for i := 0; i < typed.Len(); i++ {
			if typed.IsValid(i) {
				distinct[typed.Value(i)] = struct{}{}
			}
		}
		stats.Cardinality = len(distinct)
	case *array.Uint8:
		stats.ColumnType = "U8"
		distinct := map[uint8]struct{}{}
		for i := 0; i < typed.Len(); i++ {
			if typed.IsValid(i) {
				distinct[typed.Value(i)] = struct{}{}
			}
		}
		stats.Cardinality = len(distinct)
	case *array.Uint32:
		stats.ColumnType = "U32"
		distinct := map[uint32]struct{}{}
		for i := 0; i < typed.Len(); i++ {
			if typed.IsValid(i) {
				distinct[typed.Value(i)] = struct{}{}
			}
		}
		stats.Cardinality = len(distinct)
	case *array.Uint64:
		stats.ColumnType = "U64"
		distinct := map[uint64]struct{}{}
		for i := 0; i < typed.Len(); i++ {
			if typed.IsValid(i) {
				distinct[typed.Value(i)] = struct{}{}
			}
		}
		stats.Cardinality = len(distinct)
	case *array.Int64:
		stats.ColumnType = "I64"
		distinct := map[int64]struct{}{}
		for i := 0; i < typed.Len(); i++ {
			if typed.IsValid(i) {
				distinct[typed.Value(i)] = struct{}{}
			}
		}
		stats.Cardinality = len(distinct)
	case *array.Float64:
		stats.ColumnType = "F64"
		// The bit pattern is the uniqueness key, so NaN values compare
		// equal to themselves.
		distinct := map[uint64]struct{}{}
		for i := 0; i < typed.Len(); i++ {
			if typed.IsValid(i) {
				distinct[math.Float64bits(typed.Value(i))] = struct{}{}
			}
		}
		stats.Cardinality = len(distinct)
	case *array.Binary:
		stats.ColumnType = "Binary"
		distinct := map[string]struct{}{}
		for i := 0; i < typed.Len(); i++ {
			if typed.IsValid(i) {
				distinct[string(typed.Value(i))] = struct{}{}
			}
		}
		stats.Cardinality = len(distinct)
	case *array.String:
		stats.ColumnType = "String"
		distinct := map[string]struct{}{}
		for i := 0; i < typed.Len(); i++ {
			if typed.IsValid(i) {
				distinct[typed.Value(i)] = struct{}{}
			}
		}
		stats.Cardinality = len(distinct)
	case *array.Dictionary:
		stats.ColumnType = "String"
		stats.Dictionary = true
		distinct := map[int]struct{}{}
		for i := 0; i < typed.Len(); i++ {
			if typed.IsValid(i) {
				distinct[typed.GetValueIndex(i)] = struct{}{}
			}
		}
		stats.Cardinality = len(distinct)
	default:
		panic(fmt.Sprintf("unsupported column type %q", field.Type.Name()))
	}

	return stats
}
