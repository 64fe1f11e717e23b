package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/colmark/colmark/internal/cli/config"
	"github.com/colmark/colmark/internal/cli/output"
	"github.com/colmark/colmark/internal/rewrite"
	"github.com/colmark/colmark/internal/scanner"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Watch bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report lines that mark would rewrite, without writing",
		Long: `Run the full rewrite in memory and report every line that would change.
Nothing is written. Exits non-zero when changes are pending, so it can gate
CI until a mapper tree has been migrated.`,
		Example: `  # See what would change
  colmark check -d src/main/resources -c oc_customer.country_id

  # Re-check whenever the tree changes
  colmark check -d src/main/resources -c oc_customer.country_id --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Re-run the check when files under scan-dir change")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions) error {
	cfg := config.GetCurrentConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	logger := config.GetLogger(cmd.Context())
	renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	targets := rewrite.ParseTargets(cfg.Targets, cfg.Prefix, logger)
	if len(targets) == 0 {
		return fmt.Errorf("no valid \"table.column\" targets after parsing %v", cfg.Targets)
	}

	runner := &scanner.Runner{
		Targets:    targets,
		Prefix:     cfg.Prefix,
		Exclude:    cfg.ExcludeDirs,
		Extensions: cfg.Extensions,
		Workers:    cfg.Workers,
		DryRun:     true,
		Logger:     logger,
	}

	check := func() (int, error) {
		result, err := runner.Run(cmd.Context(), cfg.ScanDir)
		if err != nil {
			return 0, err
		}
		if err := renderResult(cmd.OutOrStdout(), renderer, result, cfg.Prefix); err != nil {
			return 0, err
		}
		return len(result.Changes), nil
	}

	if opts.Watch {
		return watchAndCheck(cmd.Context(), cfg.ScanDir, check)
	}

	pending, err := check()
	if err != nil {
		return err
	}
	if pending > 0 {
		return fmt.Errorf("%d lines pending migration", pending)
	}
	return nil
}

// watchAndCheck re-runs check on file-system events under root, debounced
// so editor save bursts trigger a single run. It returns when ctx ends.
func watchAndCheck(ctx context.Context, root string, check func() (int, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	if _, err := check(); err != nil {
		return err
	}

	const debounce = 300 * time.Millisecond
	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories must be watched too.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		case <-timerC:
			timer = nil
			timerC = nil
			if _, err := check(); err != nil {
				return err
			}
		}
	}
}
