/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

// Package pb carries the OTLP-events envelope wrapping the three Arrow
// IPC stream buffers produced for one batch. The messages mirror
// opentelemetry.proto.events.v1 and are encoded directly at the wire
// level; the resource and instrumentation_library fields of the original
// schema are always absent and therefore not modeled.
package pb

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/lquerel/oltp-arrow/pkg/werror"
)

// ResourceEvents is the envelope root.
type ResourceEvents struct {
	InstrumentationLibraryEvents []*InstrumentationLibraryEvents
	SchemaUrl                    string
}

// InstrumentationLibraryEvents carries one Arrow IPC stream per entity
// table. An empty slice means the table had no rows and no schema.
type InstrumentationLibraryEvents struct {
	Spans  []byte
	Events []byte
	Links  []byte
}

const (
	// ResourceEvents field numbers.
	fieldInstrumentationLibraryEvents = 2
	fieldSchemaUrl                    = 3

	// InstrumentationLibraryEvents field numbers.
	fieldSpans  = 2
	fieldEvents = 3
	fieldLinks  = 4
)

// Marshal encodes the envelope to protobuf bytes.
func (re *ResourceEvents) Marshal() ([]byte, error) {
	var buf []byte
	for _, ile := range re.InstrumentationLibraryEvents {
		buf = protowire.AppendTag(buf, fieldInstrumentationLibraryEvents, protowire.BytesType)
		buf = protowire.AppendBytes(buf, ile.marshal())
	}
	if re.SchemaUrl != "" {
		buf = protowire.AppendTag(buf, fieldSchemaUrl, protowire.BytesType)
		buf = protowire.AppendString(buf, re.SchemaUrl)
	}
	return buf, nil
}

// Unmarshal decodes an envelope from protobuf bytes.
func (re *ResourceEvents) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return werror.Wrap(protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldInstrumentationLibraryEvents && typ == protowire.BytesType:
			sub, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return werror.Wrap(protowire.ParseError(n))
			}
			data = data[n:]

			ile := &InstrumentationLibraryEvents{}
			if err := ile.unmarshal(sub); err != nil {
				return err
			}
			re.InstrumentationLibraryEvents = append(re.InstrumentationLibraryEvents, ile)
		case num == fieldSchemaUrl && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return werror.Wrap(protowire.ParseError(n))
			}
			data = data[n:]
			re.SchemaUrl = s
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return werror.Wrap(protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}

func (ile *InstrumentationLibraryEvents) marshal() []byte {
	var buf []byte
	for _, field := range []struct {
		num   protowire.Number
		bytes []byte
	}{
		{fieldSpans, ile.Spans},
		{fieldEvents, ile.Events},
		{fieldLinks, ile.Links},
	} {
		if len(field.bytes) == 0 {
			continue
		}
		buf = protowire.AppendTag(buf, field.num, protowire.BytesType)
		buf = protowire.AppendBytes(buf, field.bytes)
	}
	return buf
}

func (ile *InstrumentationLibraryEvents) unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return werror.Wrap(protowire.ParseError(n))
		}
		data = data[n:]

		if typ != protowire.BytesType {
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return werror.Wrap(protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		buf, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return werror.Wrap(protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case fieldSpans:
			ile.Spans = buf
		case fieldEvents:
			ile.Events = buf
		case fieldLinks:
			ile.Links = buf
		}
	}
	return nil
}
