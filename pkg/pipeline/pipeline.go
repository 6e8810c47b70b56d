// Package pipeline runs the text → sequence → binary → sequence round trip
// for the CLI and the HTTP server.
//
// # Architecture
//
// The round trip consists of four stages:
//
//  1. Build: parse text lines into a [list.Sequence]
//  2. Encode: serialize the sequence and put the bytes into a [store.Store]
//  3. Decode: get the bytes back and reconstruct the sequence
//  4. Verify: compare the original and the reconstruction
//
// Each stage can be run independently or as part of [Runner.RoundTrip].
// Every stage reports to the registered [observability.PipelineHooks] and
// logs one structured line.
//
// # Usage
//
//	st, _ := store.NewFileStore(".")
//	runner := pipeline.NewRunner(st, logger)
//	result, err := runner.RoundTrip(ctx, input, "outlet.out")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Stats.EncodedBytes)
//
// An empty key keeps the encoded stream in memory: nothing is written, and
// decoding reads the bytes the encoder just produced.
package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/matzehuels/randlist/pkg/list"
)

// Default file names of the no-argument run.
const (
	DefaultInput  = "inlet.in"
	DefaultOutput = "outlet.out"
)

// Format constants for decoded output.
const (
	FormatBinary = "binary"
	FormatJSON   = "json"
	FormatText   = "text"
	FormatTable  = "table"
	FormatDOT    = "dot"
	FormatSVG    = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatBinary: true,
	FormatJSON:   true,
	FormatText:   true,
	FormatTable:  true,
	FormatDOT:    true,
	FormatSVG:    true,
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of %v)", format, formatNames())
	}
	return nil
}

// ValidateFormats checks each format in the list.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// Result is the outcome of a complete round trip.
type Result struct {
	// Original is the sequence built from the text input.
	Original *list.Sequence
	// Decoded is the sequence reconstructed from the stored bytes.
	Decoded *list.Sequence
	// Key is where the encoded stream was stored; empty for in-memory runs.
	Key string
	// Hash is the SHA-256 of the encoded stream.
	Hash  string
	Stats Stats
}

// Stats describes a round trip.
type Stats struct {
	NodeCount    int
	CrossRefs    int
	Dropped      int
	PayloadBytes int
	EncodedBytes int

	BuildTime  time.Duration
	EncodeTime time.Duration
	DecodeTime time.Duration
	VerifyTime time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	return s.BuildTime + s.EncodeTime + s.DecodeTime + s.VerifyTime
}

// Encoded describes one stored stream.
type Encoded struct {
	Key  string
	Data []byte
	Hash string
}
