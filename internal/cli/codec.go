package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/randlist/pkg/errors"
	rlio "github.com/matzehuels/randlist/pkg/io"
	"github.com/matzehuels/randlist/pkg/list"
	"github.com/matzehuels/randlist/pkg/pipeline"
	"github.com/matzehuels/randlist/pkg/store"
)

// encodeCommand creates the encode command.
func (c *CLI) encodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encode [input] [output]",
		Short: "Encode a text list into the binary format",
		Long: `Encode reads "payload;index" lines and writes the binary stream.

Input defaults to inlet.in and output to outlet.out. With a non-file
--backend the output is used as the store key.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			input := argOr(args, 0, c.Config.Input)
			output := argOr(args, 1, c.Config.Output)

			st, key, err := c.openOutput(ctx, output)
			if err != nil {
				return err
			}
			runner := c.newRunner(st)
			defer runner.Close()

			s, err := c.buildSequence(ctx, runner, input)
			if err != nil {
				return err
			}
			enc, err := runner.Encode(ctx, s, key)
			if err != nil {
				return err
			}

			printSuccess("Encoded %d nodes", s.Len())
			printFile(output)
			printStats(s.Len(), s.CrossRefCount(), len(enc.Data))
			return nil
		},
	}
}

// decodeCommand creates the decode command.
func (c *CLI) decodeCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "decode [input]",
		Short: "Decode a binary stream and print the list",
		Long: `Decode reads a binary stream (default outlet.out) and prints the list as
JSON, as "payload;index" text, or as a table.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case pipeline.FormatJSON, pipeline.FormatText, pipeline.FormatTable:
			default:
				return errs.New(errs.ErrCodeInvalidInput, "unsupported format %q (want json, text or table)", format)
			}

			ctx := withLogger(cmd.Context(), c.Logger)
			s, err := c.readSequence(ctx, argOr(args, 0, c.Config.Output))
			if err != nil {
				return err
			}

			if output == "" {
				return writeSequence(cmd.OutOrStdout(), s, format)
			}
			if err := exportSequence(s, output, format); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatJSON, "output format: json, text, table")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func writeSequence(w io.Writer, s *list.Sequence, format string) error {
	switch format {
	case pipeline.FormatText:
		return rlio.WriteText(s, w)
	case pipeline.FormatTable:
		_, err := fmt.Fprintln(w, renderTable(rlio.Rows(s)))
		return err
	default:
		return rlio.WriteJSON(s, w)
	}
}

func exportSequence(s *list.Sequence, path, format string) error {
	switch format {
	case pipeline.FormatText:
		return rlio.ExportText(s, path)
	case pipeline.FormatTable:
		if err := os.WriteFile(path, []byte(renderTable(rlio.Rows(s))+"\n"), 0o644); err != nil {
			return errs.Wrap(errs.ErrCodeIO, err, "write %s", path)
		}
		return nil
	default:
		return rlio.ExportJSON(s, path)
	}
}

// verifyCommand creates the verify command.
func (c *CLI) verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [input] [binary]",
		Short: "Check that a binary stream matches its text source",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			input := argOr(args, 0, c.Config.Input)
			binary := argOr(args, 1, c.Config.Output)

			runner := c.newRunner(nil)
			original, err := c.buildSequence(ctx, runner, input)
			if err != nil {
				return err
			}
			decoded, err := c.readSequence(ctx, binary)
			if err != nil {
				return err
			}
			if err := runner.Verify(ctx, original, decoded); err != nil {
				return err
			}

			printSuccess("%s matches %s", binary, input)
			printStats(original.Len(), original.CrossRefCount(), 0)
			return nil
		},
	}
}

// roundtripCommand creates the roundtrip command.
func (c *CLI) roundtripCommand() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "roundtrip [input]",
		Short: "Build, encode, decode and verify a list",
		Long: `Roundtrip runs every stage on a text list. Without --key the stream stays
in memory; with --key it is written to the configured store and read back.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			input := argOr(args, 0, c.Config.Input)

			var st store.Store
			if key != "" {
				var err error
				if st, err = c.openStore(ctx); err != nil {
					return err
				}
			}
			runner := c.newRunner(st)
			defer runner.Close()

			f, err := os.Open(input)
			if err != nil {
				return errs.Wrap(errs.ErrCodeIO, err, "open %s", input)
			}
			defer f.Close()

			spinner := newSpinner(ctx, c.stderr, "Encoding and verifying "+input+"...")
			spinner.Start()
			result, err := runner.RoundTrip(ctx, f, key)
			if err != nil {
				if spinner.Cancelled() {
					spinner.Stop()
					return ctx.Err()
				}
				spinner.StopWithError("Round trip of " + input + " failed")
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Round trip of %d nodes verified", result.Stats.NodeCount))
			c.Logger.Debug("round trip stages", "total", result.Stats.Total().Round(time.Microsecond))

			printStats(result.Stats.NodeCount, result.Stats.CrossRefs, result.Stats.EncodedBytes)
			printKeyValue("sha256", result.Hash)
			if key != "" {
				printKeyValue("key", key)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "store key for the encoded stream")

	return cmd
}
