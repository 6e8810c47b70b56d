package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/randlist/pkg/errors"
	"github.com/matzehuels/randlist/pkg/pipeline"
	"github.com/matzehuels/randlist/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file; the extension selects svg or dot
	detailed bool   // add payload size and arena index to labels
	vertical bool   // lay the list out top to bottom
	maxLabel int    // payload characters shown per label
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{maxLabel: nodelink.DefaultMaxLabel}

	cmd := &cobra.Command{
		Use:   "render [binary]",
		Short: "Draw an encoded list as a node-link diagram",
		Long: `Render decodes a binary stream (default outlet.out) and draws it with
next links as solid edges and cross-references as dashed edges.

The output extension selects the format: .svg (rendered with Graphviz) or
.dot (the Graphviz source).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			input := argOr(args, 0, c.Config.Output)

			output := opts.output
			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + pipeline.FormatSVG
			}
			format := strings.TrimPrefix(filepath.Ext(output), ".")
			if format != pipeline.FormatSVG && format != pipeline.FormatDOT {
				return errs.New(errs.ErrCodeInvalidInput, "unsupported output %q (want .svg or .dot)", output)
			}

			s, err := c.readSequence(ctx, input)
			if err != nil {
				return err
			}

			prog := newProgress(loggerFromContext(ctx))
			dot := nodelink.ToDOT(s, nodelink.Options{
				Detailed: opts.detailed,
				Vertical: opts.vertical,
				MaxLabel: opts.maxLabel,
			})
			data := []byte(dot)
			if format == pipeline.FormatSVG {
				if data, err = nodelink.RenderSVG(ctx, dot); err != nil {
					return errs.Wrap(errs.ErrCodeInternal, err, "render svg")
				}
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errs.Wrap(errs.ErrCodeIO, err, "write %s", output)
			}
			prog.done("Rendered " + format)

			printSuccess("Rendered %d nodes", s.Len())
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (.svg or .dot)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show payload size and arena index")
	cmd.Flags().BoolVar(&opts.vertical, "vertical", false, "lay out top to bottom")
	cmd.Flags().IntVar(&opts.maxLabel, "max-label", opts.maxLabel, "payload characters per label")

	return cmd
}
