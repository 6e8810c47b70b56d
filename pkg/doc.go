// Package pkg provides the libraries behind randlist, a codec for
// doubly-linked lists whose nodes carry a cross-reference to any node of the
// same list.
//
// # Overview
//
//  1. [list] - the in-memory sequence, its builder and equivalence checker
//  2. [codec] - the little-endian binary format
//  3. [io] - text, binary file and JSON readers and writers
//  4. [store] - byte blob persistence (file, memory, Redis, MongoDB, S3, PostgreSQL)
//  5. [pipeline] - orchestration (build → encode → decode → verify)
//  6. [render/nodelink] and [export/neo4j] - visualization and graph export
//
// # Architecture
//
//	text lines
//	     ↓
//	[io] ReadText → [list] Build
//	     ↓
//	[codec] Encode → [store] Put
//	     ↓
//	[store] Get → [codec] Decode
//	     ↓
//	[list] Compare (original vs reconstruction)
//
// [list]: github.com/matzehuels/randlist/pkg/list
// [codec]: github.com/matzehuels/randlist/pkg/codec
// [io]: github.com/matzehuels/randlist/pkg/io
// [store]: github.com/matzehuels/randlist/pkg/store
// [pipeline]: github.com/matzehuels/randlist/pkg/pipeline
// [render/nodelink]: github.com/matzehuels/randlist/pkg/render/nodelink
// [export/neo4j]: github.com/matzehuels/randlist/pkg/export/neo4j
package pkg
