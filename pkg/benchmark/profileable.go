/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

// Package benchmark compares encoders over the same span batches: each
// profileable system serializes a batch, the harness compresses,
// decompresses and deserializes the result, and per-phase timings are
// summarized into a comparison report.
package benchmark

import (
	"fmt"
	"strings"

	"github.com/lquerel/oltp-arrow/pkg/trace"
)

// ProfileableSystem is one encoder under measurement.
type ProfileableSystem interface {
	Name() string
	Tags() []string
	CompressionAlgorithm() CompressionAlgorithm

	// Serialize encodes one batch to its wire bytes.
	Serialize(spans []trace.Span) ([]byte, error)
	// Deserialize exercises the reverse path on the wire bytes.
	Deserialize(buf []byte) error
}

func ProfileableSystemID(ps ProfileableSystem) string {
	return fmt.Sprintf("%s:%s", ps.Name(), strings.Join(ps.Tags()[:], "+"))
}
