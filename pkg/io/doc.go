// Package io reads and writes sequences in their external forms: the
// line-oriented text input, the binary file produced by [codec], and a JSON
// dump for inspection.
//
// # Text Format
//
// Every line holds one node:
//
//	<payload>;<cross-reference index>
//
// The index is the 0-based line number of the referenced node, or -1 for no
// cross-reference. The line is split at its last ';', so payloads may contain
// the separator themselves. A trailing carriage return is stripped before
// parsing. A line without ';' fails with PARSE_MISSING_SEPARATOR, a suffix
// that is not a base-10 32-bit integer with PARSE_INVALID_INDEX_FORMAT.
//
//	A;1
//	B;-1
//	C;0
//
// [ReadText] parses lines into [list.Entry] values and stops reading once its
// guard is full, so at most [list.MaxNodes] lines are ever parsed. Errors name
// the 1-based line they occurred on.
//
// # Files
//
// [ImportText], [ImportBinary] and [ExportBinary] are file wrappers around the
// reader and writer functions. Open and create failures are IO_ERROR; files
// are closed on every path.
//
//	seq, err := io.ImportText("inlet.in")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := io.ExportBinary(seq, "outlet.out"); err != nil {
//	    log.Fatal(err)
//	}
//
// # JSON Format
//
// [WriteJSON] produces a positional dump, which [ReadJSON] accepts back:
//
//	{
//	  "nodes": [
//	    {"data": "A", "cross_ref": 1},
//	    {"data": "B", "cross_ref": -1},
//	    {"data": "C", "cross_ref": 0}
//	  ]
//	}
//
// Payloads that are not valid UTF-8 are written base64-encoded under
// "data_b64" instead of "data".
//
// [codec]: github.com/matzehuels/randlist/pkg/codec
package io
