package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/randlist/pkg/buildinfo"
	errs "github.com/matzehuels/randlist/pkg/errors"
	"github.com/matzehuels/randlist/pkg/list"
	"github.com/matzehuels/randlist/pkg/pipeline"
	"github.com/matzehuels/randlist/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "randlist"

	// successMessage is printed after a successful default run.
	successMessage = "Serialization completed successfully."
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config *Config

	// stderr receives spinners, alongside the log.
	stderr io.Writer

	configPath string
	backend    string
	maxNodes   int
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
		stderr: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
//
// Run without a subcommand, randlist reads the configured input (inlet.in),
// writes the encoded list to the configured output (outlet.out), reads it
// back and verifies the reconstruction.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "randlist serializes linked lists with cross-references",
		Long: `randlist builds a doubly-linked list whose nodes may reference any other node,
writes it in a compact binary format, reads it back and verifies the result.

Without a subcommand it reads inlet.in and writes outlet.out.`,
		Version:       buildinfo.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDefault(cmd.Context())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default randlist.toml or $XDG_CONFIG_HOME/randlist/config.toml)")
	flags.StringVar(&c.backend, "backend", "", fmt.Sprintf("store backend %v", store.Backends))
	flags.IntVar(&c.maxNodes, "max-nodes", 0, fmt.Sprintf("maximum number of nodes (default %d)", list.MaxNodes))

	// Register all subcommands
	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.decodeCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.roundtripCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and environment, then applies the
// global flags on top.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("backend") {
		cfg.Store.Backend = c.backend
	}
	if cmd.Flags().Changed("max-nodes") {
		cfg.MaxNodes = c.maxNodes
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "file", cfg.Source, "backend", cfg.Store.Backend, "max_nodes", cfg.MaxNodes)
	return nil
}

// =============================================================================
// Default Run
// =============================================================================

// runDefault performs the full round trip from the configured input file to
// the configured output file.
func (c *CLI) runDefault(ctx context.Context) error {
	ctx = withLogger(ctx, c.Logger)
	input, output := c.Config.Input, c.Config.Output

	st, key, err := c.openOutput(ctx, output)
	if err != nil {
		return err
	}
	runner := c.newRunner(st)
	defer runner.Close()

	f, err := os.Open(input)
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "open %s", input)
	}
	defer f.Close()

	prog := newProgress(loggerFromContext(ctx))
	result, err := runner.RoundTrip(ctx, f, key)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Round trip of %d nodes", result.Stats.NodeCount))

	fmt.Fprintln(statusOut, successMessage)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(st store.Store) *pipeline.Runner {
	runner := pipeline.NewRunner(st, c.Logger)
	runner.MaxNodes = c.Config.MaxNodes
	return runner
}

// openStore opens the configured store backend.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, c.Config.Store)
}

// openOutput resolves an output path to a store and key. With the file
// backend the path is written directly; other backends store the stream
// under the path as key.
func (c *CLI) openOutput(ctx context.Context, path string) (store.Store, string, error) {
	cfg := c.Config.Store
	if cfg.Backend == "" || cfg.Backend == store.BackendFile {
		cfg.Backend = store.BackendFile
		cfg.Dir = filepath.Dir(path)
		cfg.Prefix = ""
		st, err := store.Open(ctx, cfg)
		return st, filepath.Base(path), err
	}
	st, err := store.Open(ctx, cfg)
	return st, filepath.ToSlash(path), err
}

// readSequence decodes the stream stored at path.
func (c *CLI) readSequence(ctx context.Context, path string) (*list.Sequence, error) {
	st, key, err := c.openOutput(ctx, path)
	if err != nil {
		return nil, err
	}
	runner := c.newRunner(st)
	defer runner.Close()
	return runner.Decode(ctx, key)
}

// buildSequence parses the text file at path.
func (c *CLI) buildSequence(ctx context.Context, runner *pipeline.Runner, path string) (*list.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	s, dropped, err := runner.Build(ctx, f)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		printWarning("%d entries past the node limit were ignored", dropped)
	}
	return s, nil
}

// argOr returns args[i] when present, otherwise fallback.
func argOr(args []string, i int, fallback string) string {
	if i < len(args) && args[i] != "" {
		return args[i]
	}
	return fallback
}
