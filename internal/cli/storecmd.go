package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/randlist/pkg/errors"
	"github.com/matzehuels/randlist/pkg/store"
)

// storeCommand creates the store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Read and write encoded lists in the configured store",
	}

	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeDeleteCommand())
	cmd.AddCommand(c.storePathCommand())

	return cmd
}

// storeGetCommand creates the "store get" subcommand.
func (c *CLI) storeGetCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Copy a stored stream to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			data, err := st.Get(ctx, args[0])
			if err != nil {
				return err
			}

			if output == "" {
				output = filepath.Base(args[0])
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errs.Wrap(errs.ErrCodeIO, err, "write %s", output)
			}
			printSuccess("Fetched %s (%d bytes)", args[0], len(data))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default base name of key)")

	return cmd
}

// storePutCommand creates the "store put" subcommand.
func (c *CLI) storePutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> [file]",
		Short: "Store an encoded stream under key",
		Long: `Put validates a binary stream (default outlet.out) by decoding it and then
stores it under key.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			path := argOr(args, 1, c.Config.Output)

			data, err := os.ReadFile(path)
			if err != nil {
				return errs.Wrap(errs.ErrCodeIO, err, "read %s", path)
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			runner := c.newRunner(st)
			defer runner.Close()

			s, err := runner.DecodeBytes(ctx, data)
			if err != nil {
				return err
			}
			if err := st.Put(ctx, args[0], data); err != nil {
				return err
			}
			printSuccess("Stored %s", args[0])
			printStats(s.Len(), s.CrossRefCount(), len(data))
			printKeyValue("sha256", store.Hash(data))
			return nil
		},
	}
}

// storeDeleteCommand creates the "store delete" subcommand.
func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a stored stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}

// storePathCommand creates the "store path" subcommand.
func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path [key]",
		Short: "Print the file store directory, or the file holding key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Store
			if cfg.Backend != store.BackendFile {
				return errs.New(errs.ErrCodeUnsupported, "store path needs the %s backend, not %s", store.BackendFile, cfg.Backend)
			}
			dir := cfg.Dir
			if dir == "" {
				dir = "."
			}
			fs, err := store.NewFileStore(dir)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), fs.Dir())
				return nil
			}
			path, err := fs.Path(cfg.Prefix + args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
