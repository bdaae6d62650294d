/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"flag"
	"log"
	"os"

	"github.com/lquerel/oltp-arrow/pkg/benchmark"
	arrowpf "github.com/lquerel/oltp-arrow/pkg/benchmark/profileable/arrow"
	otlppf "github.com/lquerel/oltp-arrow/pkg/benchmark/profileable/otlp"
	"github.com/lquerel/oltp-arrow/pkg/trace"
	carrow "github.com/lquerel/oltp-arrow/pkg/trace/arrow"
)

var help = flag.Bool("help", false, "Show help")
var batchSize = 1000
var statistics = false

// This tool benchmarks the columnar encoder (both encoding paths)
// against the row-oriented OTLP Protobuf encoder over newline-delimited
// JSON trace files.
func main() {
	flag.IntVar(&batchSize, "batch-size", batchSize, "Batch size")
	flag.BoolVar(&statistics, "statistics", statistics, "Dump per-column statistics next to each input file")

	flag.Parse()

	if *help || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	for _, inputFile := range flag.Args() {
		if err := benchmarkFile(inputFile); err != nil {
			log.Fatal("benchmark failed for `", inputFile, "`: ", err)
		}
	}
}

func benchmarkFile(inputFile string) error {
	spans, err := trace.OpenSpans(inputFile, 0)
	if err != nil {
		return err
	}
	batches := toBatches(spans, batchSize)
	log.Print("loaded ", len(spans), " spans (", len(batches), " batches) from `", inputFile, "`")

	reporter := carrow.NoopStatisticsReporter()
	if statistics {
		reporter = carrow.NewStatisticsReporter(inputFile + ".stats.json")
	}

	systems := []benchmark.ProfileableSystem{
		arrowpf.NewTracesProfileable(benchmark.Lz4(), false, reporter),
		arrowpf.NewTracesProfileable(benchmark.Lz4(), true, carrow.NoopStatisticsReporter()),
		otlppf.NewTracesProfileable(benchmark.Lz4()),
	}

	results := make([]*benchmark.Result, 0, len(systems))
	for _, system := range systems {
		result, err := benchmark.Run(system, batches)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	benchmark.Render(os.Stdout, results)

	if statistics {
		if err := reporter.WriteFile(); err != nil {
			return err
		}
		log.Print("statistics written to `", reporter.File, "`")
	}

	return nil
}

func toBatches(spans []trace.Span, size int) [][]trace.Span {
	if size <= 0 {
		size = 1000
	}
	var batches [][]trace.Span
	for start := 0; start < len(spans); start += size {
		end := start + size
		if end > len(spans) {
			end = len(spans)
		}
		batches = append(batches, spans[start:end])
	}
	return batches
}
