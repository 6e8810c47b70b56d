// Package render provides visualizations of sequences.
//
// The [nodelink] subpackage draws a sequence as a Graphviz diagram: list
// links as solid edges in traversal order, cross-references as dashed edges
// that may point backwards, forwards or at their own node.
//
//	dot := nodelink.ToDOT(seq, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/randlist/pkg/render/nodelink
package render
