package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	rlio "github.com/matzehuels/randlist/pkg/io"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect [binary]",
		Short: "Show the nodes of an encoded list",
		Long: `Inspect decodes a binary stream (default outlet.out) and prints its nodes
as a table. With -i it opens a browser that can follow cross-references.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			path := argOr(args, 0, c.Config.Output)

			s, err := c.readSequence(ctx, path)
			if err != nil {
				return err
			}
			rows := rlio.Rows(s)

			if interactive {
				p := tea.NewProgram(NewInspectModel(rows), tea.WithContext(ctx), tea.WithAltScreen())
				_, err := p.Run()
				return err
			}

			printKeyValue("File", path)
			printStats(s.Len(), s.CrossRefCount(), s.PayloadSize())
			if s.Len() == 0 {
				printInfo("List is empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(rows))
			printNextStep("Browse cross-references", fmt.Sprintf("%s inspect -i %s", appName, path))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the list interactively")

	return cmd
}
