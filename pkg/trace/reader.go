/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package trace

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/lquerel/oltp-arrow/pkg/werror"
)

// ReadSpans decodes newline-delimited JSON spans from r until EOF or
// until max spans have been read (max <= 0 means no limit). A malformed
// line is rejected here; the encoders downstream assume well-formed rows.
func ReadSpans(r io.Reader, max int) ([]Span, error) {
	var spans []Span

	dec := json.NewDecoder(bufio.NewReader(r))
	// More skips trailing whitespace, so a final newline ends the input
	// cleanly.
	for (max <= 0 || len(spans) < max) && dec.More() {
		var span Span
		if err := dec.Decode(&span); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, werror.WrapWithContext(err, map[string]interface{}{"span": len(spans)})
		}
		spans = append(spans, span)
	}

	return spans, nil
}

// OpenSpans reads spans from an NDJSON file, transparently decompressing
// `.zst` inputs.
func OpenSpans(path string, max int) ([]Span, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, werror.Wrap(err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(file)
		if err != nil {
			return nil, werror.Wrap(err)
		}
		defer zr.Close()
		reader = zr
	}

	return ReadSpans(reader, max)
}
