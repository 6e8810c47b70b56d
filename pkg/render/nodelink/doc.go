// Package nodelink renders sequences as node-link diagrams.
//
// # Overview
//
// Each node becomes a box labelled with its position and payload. Nodes are
// kept on one rank in traversal order and joined by solid, double-headed
// edges for the prev/next links. Cross-references are drawn as dashed
// edges; a node that references itself gets a loop.
//
// # Usage
//
// Convert a sequence to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(seq, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: labels include the payload size and the arena index
//   - MaxLabel: payloads longer than this are shortened with an ellipsis
//   - Vertical: lay the list out top to bottom instead of left to right
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package nodelink
