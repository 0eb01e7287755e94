package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/linescout/linescout/internal/config"
	"github.com/linescout/linescout/internal/engine"
	"github.com/linescout/linescout/internal/logging"
	"github.com/linescout/linescout/internal/output"
	"github.com/linescout/linescout/internal/watcher"
)

// resultCacheSize bounds the per-file cache used across re-searches.
const resultCacheSize = 4096

func newWatchCmd() *cobra.Command {
	var opts searchOptions
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <pattern> <path>",
		Short: "Re-run the search whenever the target changes",
		Long: `Watch runs the search, then keeps watching the target and re-runs it
after each debounced burst of file changes. Results for unchanged files
come from a bounded cache, so only touched files are re-read.

Stop with Ctrl-C.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args[0], args[1], opts, debounce)
		},
	}

	opts.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "Quiet window before re-running the search")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, pattern, path string, opts searchOptions, debounce time.Duration) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	action, err := config.ParseAction(cfg.Action)
	if err != nil {
		return err
	}

	logging.SetupDefault(logging.Config{Level: cfg.LogLevel})

	e, err := engine.New(engine.WithResultCache(resultCacheSize))
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

	out := output.New(cmd.OutOrStdout(), cmd.ErrOrStderr())

	// First pass before watching: missing paths and bad configs fail
	// up front, not on the first change.
	res, err := e.Search(ctx, req)
	if err != nil {
		return err
	}
	out.Render(action, req, res)

	w, err := watcher.New(watcher.Options{DebounceWindow: debounce})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- w.Start(ctx, path)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-watchErr:
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil

		case err := <-w.Errors():
			slog.Warn("watch_error", slog.String("error", err.Error()))

		case change, ok := <-w.Changes():
			if !ok {
				return nil
			}
			if change.Removed {
				e.InvalidateCache()
			}
			slog.Debug("rerunning_search", slog.Int("changed_paths", len(change.Paths)))

			res, err := e.Search(ctx, req)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				// The tree may be mid-rewrite; report and keep watching.
				out.Errorf("search failed: %v", err)
				continue
			}
			out.Render(action, req, res)
		}
	}
}
