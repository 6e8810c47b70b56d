package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/randlist/pkg/export/neo4j"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an encoded list to a graph database",
	}

	cmd.AddCommand(c.exportNeo4jCommand())

	return cmd
}

// exportNeo4jCommand creates the "export neo4j" subcommand.
func (c *CLI) exportNeo4jCommand() *cobra.Command {
	var (
		name      string
		uri       string
		batchSize int
		indexes   bool
	)

	cmd := &cobra.Command{
		Use:   "neo4j [binary]",
		Short: "Load an encoded list into Neo4j",
		Long: `Load decodes a binary stream (default outlet.out) and writes it to Neo4j as
(:ListNode) nodes joined by [:NEXT] and [:RAND] relationships.

Connection settings come from the [neo4j] config section or the
RANDLIST_NEO4J_URI, RANDLIST_NEO4J_USER and RANDLIST_NEO4J_PASSWORD variables.
An existing list with the same name is replaced.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			input := argOr(args, 0, c.Config.Output)
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			}

			s, err := c.readSequence(ctx, input)
			if err != nil {
				return err
			}

			cfg := c.Config.Neo4j
			if uri != "" {
				cfg.URI = uri
			}

			spinner := newSpinner(ctx, c.stderr, "Connecting to "+cfg.URI+"...")
			spinner.Start()
			loader, err := neo4j.NewLoader(ctx, cfg, c.Logger)
			if err != nil {
				spinner.StopWithError("Could not connect to " + cfg.URI)
				return err
			}
			spinner.Stop()
			defer loader.Close(ctx)
			if batchSize > 0 {
				loader.BatchSize = batchSize
			}

			if indexes {
				if err := loader.CreateIndexes(ctx); err != nil {
					return err
				}
			}

			spinner = newSpinner(ctx, c.stderr, fmt.Sprintf("Loading %d nodes as %s...", s.Len(), name))
			spinner.Start()
			stats, err := loader.Load(ctx, name, s)
			if err != nil {
				if spinner.Cancelled() {
					spinner.Stop()
					return ctx.Err()
				}
				spinner.StopWithError("Export of " + name + " failed")
				return err
			}
			spinner.StopWithSuccess("Exported list " + StyleHighlight.Render(name))
			printDetail("%s", stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "list name in the database (default input file name)")
	cmd.Flags().StringVar(&uri, "uri", "", "Neo4j URI (overrides config)")
	cmd.Flags().IntVar(&batchSize, "batch-size", neo4j.DefaultBatchSize, "rows per UNWIND batch")
	cmd.Flags().BoolVar(&indexes, "create-indexes", true, "create indexes before loading")

	return cmd
}
