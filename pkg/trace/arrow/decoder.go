/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package arrow

import (
	"bytes"
	"errors"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/ipc"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/lquerel/oltp-arrow/pkg/pb"
	"github.com/lquerel/oltp-arrow/pkg/werror"
)

// ErrEmptyTable reports an inner buffer whose stream carries no record
// batch, or a record batch without columns.
var ErrEmptyTable = errors.New("record batch has no columns")

// ErrMissingEnvelope reports an envelope without any
// InstrumentationLibraryEvents entry.
var ErrMissingEnvelope = errors.New("envelope carries no instrumentation library events")

// DecodedBatch holds the record batches reconstructed from one envelope.
// A nil record means the corresponding table was empty. Release must be
// called once the records are no longer needed.
type DecodedBatch struct {
	Spans  arrow.Record
	Events arrow.Record
	Links  arrow.Record
}

// Deserialize decodes an envelope produced by either serialization path
// and reconstructs the non-empty tables.
func Deserialize(mem memory.Allocator, buf []byte) (*DecodedBatch, error) {
	resourceEvents := &pb.ResourceEvents{}
	if err := resourceEvents.Unmarshal(buf); err != nil {
		return nil, err
	}
	if len(resourceEvents.InstrumentationLibraryEvents) == 0 {
		return nil, werror.Wrap(ErrMissingEnvelope)
	}

	ile := resourceEvents.InstrumentationLibraryEvents[0]
	batch := &DecodedBatch{}

	var err error
	if batch.Spans, err = readStream(mem, ile.Spans); err != nil {
		batch.Release()
		return nil, err
	}
	if batch.Events, err = readStream(mem, ile.Events); err != nil {
		batch.Release()
		return nil, err
	}
	if batch.Links, err = readStream(mem, ile.Links); err != nil {
		batch.Release()
		return nil, err
	}

	return batch, nil
}

// Release releases the reconstructed records.
func (db *DecodedBatch) Release() {
	for _, record := range []arrow.Record{db.Spans, db.Events, db.Links} {
		if record != nil {
			record.Release()
		}
	}
	db.Spans, db.Events, db.Links = nil, nil, nil
}

// readStream reads the single record batch of one Arrow IPC stream
// buffer. An empty buffer means an empty table and yields a nil record.
func readStream(mem memory.Allocator, buf []byte) (arrow.Record, error) {
	if len(buf) == 0 {
		return nil, nil
	}

	reader, err := ipc.NewReader(bytes.NewReader(buf), ipc.WithAllocator(mem))
	if err != nil {
		return nil, werror.Wrap(err)
	}
	defer reader.Release()

	if !reader.Next() {
		if err := reader.Err(); err != nil {
			return nil, werror.Wrap(err)
		}
		return nil, werror.Wrap(ErrEmptyTable)
	}

	record := reader.Record()
	if record.NumCols() == 0 {
		return nil, werror.Wrap(ErrEmptyTable)
	}
	record.Retain()

	return record, nil
}
