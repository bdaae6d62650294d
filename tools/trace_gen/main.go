/*
 * Copyright The OpenTelemetry Authors
 * SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"bufio"
	"flag"
	"io"
	"log"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	jsoniter "github.com/json-iterator/go"

	"github.com/lquerel/oltp-arrow/pkg/datagen"
)

var help = flag.Bool("help", false, "Show help")
var outputFile = "./data/trace_samples.json"
var spanCount = 5000
var seed int64 = 42

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// This tool generates a newline-delimited JSON trace dataset from a fake
// span generator. A `.zst` output file name enables compression.
func main() {
	flag.StringVar(&outputFile, "output", outputFile, "Output file")
	flag.IntVar(&spanCount, "spans", spanCount, "Number of spans to generate")
	flag.Int64Var(&seed, "seed", seed, "Generator seed")

	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	if _, err := os.Stat(outputFile); os.IsNotExist(err) {
		if err := os.MkdirAll(path.Dir(outputFile), 0700); err != nil {
			log.Fatal("error creating directory: ", err)
		}
	}
	file, err := os.OpenFile(outputFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		log.Fatal("failed to open file: ", err)
	}
	defer file.Close()

	var writer io.Writer = file
	if strings.HasSuffix(outputFile, ".zst") {
		zw, err := zstd.NewWriter(file)
		if err != nil {
			log.Fatal("error creating compressed writer: ", err)
		}
		defer zw.Close()
		writer = zw
	}

	bw := bufio.NewWriter(writer)
	defer bw.Flush()

	generator := datagen.NewTraceGenerator(seed)
	for _, span := range generator.Spans(spanCount) {
		msg, err := json.Marshal(&span)
		if err != nil {
			log.Fatal("marshaling error: ", err)
		}
		if _, err := bw.Write(msg); err != nil {
			log.Fatal("writing error: ", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			log.Fatal("writing newline error: ", err)
		}
	}
}
