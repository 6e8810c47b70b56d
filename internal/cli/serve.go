package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/randlist/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the encode/decode HTTP API",
		Long: `Serve exposes encoding, decoding and stored lists over HTTP.

Stored lists use the configured --backend. The server stops gracefully on
interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			cfg := c.Config.Server
			if addr != "" {
				cfg.Addr = addr
			}
			cfg.MaxNodes = c.Config.MaxNodes

			srv := server.New(cfg, st, c.Logger)
			printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(cfg.Addr)))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+server.DefaultAddr+")")

	return cmd
}

func displayAddr(addr string) string {
	if addr == "" {
		return server.DefaultAddr
	}
	return addr
}
