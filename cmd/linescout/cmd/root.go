// Package cmd provides the CLI commands for linescout.
package cmd

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linescout/linescout/internal/config"
	"github.com/linescout/linescout/internal/engine"
	"github.com/linescout/linescout/internal/logging"
	"github.com/linescout/linescout/internal/output"
	"github.com/linescout/linescout/pkg/version"
)

// ErrNoMatch is returned when a search completes without any match.
// main translates it into exit status 1, grep style.
var ErrNoMatch = stderrors.New("no match found")

// searchOptions holds the CLI flags shared by search and watch.
type searchOptions struct {
	ignoreCase bool
	action     string
	chunkSize  int
	workers    int
	configPath string
	debug      bool
}

// register wires the shared search flags onto cmd.
func (o *searchOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&o.ignoreCase, "ignore-case", "i", false, "Case-insensitive matching")
	cmd.Flags().StringVarP(&o.action, "action", "a", string(config.ActionPrint), "Output action: print, file, boolean")
	cmd.Flags().IntVar(&o.chunkSize, "chunk-size", config.DefaultChunkSize, "Lines per batch handed to a worker")
	cmd.Flags().IntVarP(&o.workers, "workers", "j", config.DefaultWorkers, "Worker count (1 = sequential)")
	cmd.Flags().StringVar(&o.configPath, "config", "", "Path to config file (default: ./"+config.ConfigFileName+")")
	cmd.Flags().BoolVar(&o.debug, "debug", false, "Enable debug logging")
}

// NewRootCmd creates the root command for the linescout CLI.
func NewRootCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "linescout <pattern> <path>",
		Short: "Parallel substring search over files and directory trees",
		Long: `linescout searches a file or directory tree for lines containing a
pattern. Large files are split into line batches and matched by a pool
of workers connected through a bounded queue, so reading never outruns
matching.

Exit status: 0 when a match was found, 1 when none was, 2 on error.

Examples:
  linescout "hello world" notes.txt
  linescout -i error /var/log -j 8
  linescout --action boolean TODO main.go && echo "work left"`,
		Args:          cobra.ExactArgs(2),
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}

	opts.register(cmd)
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the CLI with signal-driven cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// resolveConfig loads the config file and overlays explicitly set flags.
func resolveConfig(cmd *cobra.Command, opts searchOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("ignore-case") {
		cfg.IgnoreCase = opts.ignoreCase
	}
	if flags.Changed("action") {
		cfg.Action = opts.action
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = opts.chunkSize
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if opts.debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// The engine treats the worker count as opaque; clamping to the
	// hardware belongs here.
	cfg.ClampWorkers(runtime.NumCPU())

	return cfg, nil
}

func runSearch(ctx context.Context, cmd *cobra.Command, pattern, path string, opts searchOptions) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	action, err := config.ParseAction(cfg.Action)
	if err != nil {
		return err
	}

	logging.SetupDefault(logging.Config{Level: cfg.LogLevel})

	e, err := engine.New()
	if err != nil {
		return err
	}

	req := engine.Request{
		Path:       path,
		Pattern:    pattern,
		IgnoreCase: cfg.IgnoreCase,
		ChunkSize:  cfg.ChunkSize,
		Workers:    cfg.Workers,
	}

	res, err := e.Search(ctx, req)
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
	out.Render(action, req, res)

	if !res.Found() {
		return ErrNoMatch
	}
	return nil
}
