/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

// Package werror wraps errors with the location of the wrapping call and an
// optional context, so that a single error message describes the full path
// from the point of failure to the API boundary.
package werror

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
)

type wrappedError struct {
	err      error
	location string
	context  map[string]interface{}
}

// Wrap returns err annotated with the caller's function and line.
// Wrapping a nil error returns nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &wrappedError{err: err, location: location()}
}

// WrapWithContext returns err annotated with the caller's function and line
// plus a set of key/value pairs describing the local state.
func WrapWithContext(err error, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &wrappedError{err: err, location: location(), context: context}
}

func (e *wrappedError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.location)
	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%v", k, e.context[k])
		}
		sb.WriteString("}")
	}
	sb.WriteString("->")
	sb.WriteString(e.err.Error())
	return sb.String()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}

func location() string {
	pc, _, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", fn.Name(), line)
}
