package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/randlist/pkg/list"
)

// DefaultMaxLabel is the payload label length used when Options.MaxLabel is
// zero.
const DefaultMaxLabel = 24

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the payload size and arena index to node labels.
	Detailed bool
	// MaxLabel bounds the payload part of a label, in runes.
	MaxLabel int
	// Vertical lays the list out top to bottom.
	Vertical bool
}

// ToDOT converts a sequence to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(s *list.Sequence, opts Options) string {
	rankdir := "LR"
	if opts.Vertical {
		rankdir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	positions := s.Positions()
	s.Walk(func(pos, idx int, n list.Node) bool {
		fmt.Fprintf(&buf, "  n%d [label=%q];\n", pos, fmtLabel(pos, idx, n, opts))
		return true
	})

	buf.WriteString("\n")
	s.Walk(func(pos, _ int, n list.Node) bool {
		if n.Next != list.None {
			fmt.Fprintf(&buf, "  n%d -> n%d [dir=both, weight=10];\n", pos, positions[n.Next])
		}
		return true
	})

	buf.WriteString("\n")
	s.Walk(func(pos, _ int, n list.Node) bool {
		if n.HasCrossRef() {
			fmt.Fprintf(&buf, "  n%d -> n%d [style=dashed, color=\"#d33682\", constraint=false];\n", pos, positions[n.CrossRef])
		}
		return true
	})

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(pos, idx int, n list.Node, opts Options) string {
	limit := opts.MaxLabel
	if limit <= 0 {
		limit = DefaultMaxLabel
	}
	label := fmt.Sprintf("%d: %s", pos, shorten(n.Data, limit))
	if !opts.Detailed {
		return label
	}
	return label + fmt.Sprintf("\n%d bytes, index %d", len(n.Data), idx)
}

// shorten returns data as a label of at most limit runes. Invalid UTF-8 is
// shown as hex.
func shorten(data []byte, limit int) string {
	var s string
	if utf8.Valid(data) {
		s = string(data)
	} else {
		s = fmt.Sprintf("0x%x", data)
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg tag with a plain
// viewBox so the image scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
