package scanner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/colmark/colmark/internal/rewrite"
)

// Runner drives one marking run over a directory tree. Files are
// independent (each gets a fresh alias tracker), so they are processed by
// a bounded worker pool; the Reporter is the only shared mutable state.
type Runner struct {
	Targets    rewrite.Targets
	Prefix     string
	Exclude    []string
	Extensions []string
	Workers    int
	DryRun     bool
	Backup     bool
	Logger     *slog.Logger
}

// Warning is a non-fatal per-file problem: the file was skipped or left
// untouched, and the run carried on.
type Warning struct {
	Path    string `json:"file"`
	Message string `json:"message"`
}

// Result holds the outcome of one run.
type Result struct {
	RunID         string            `json:"run_id"`
	FilesScanned  int               `json:"files_scanned"`
	FilesModified int               `json:"files_modified"`
	Changes       []rewrite.LineKey `json:"changes"`
	Warnings      []Warning         `json:"warnings,omitempty"`
	Duration      time.Duration     `json:"duration"`
}

// Summary returns a human-readable one-line summary.
func (r *Result) Summary() string {
	return fmt.Sprintf("Files: %d scanned, %d modified | Lines: %d | Duration: %s",
		r.FilesScanned, r.FilesModified, len(r.Changes),
		r.Duration.Round(time.Millisecond))
}

// Run discovers mapper files under root and rewrites them. With DryRun set
// the full rewrite happens in memory and the report is populated, but
// nothing is written. Cancelling ctx stops scheduling further files;
// already-written files stay rewritten (re-running is safe because the
// rewrite is idempotent).
func (r *Runner) Run(ctx context.Context, root string) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	result := &Result{RunID: uuid.NewString()}
	logger = logger.With("run_id", result.RunID)

	files, err := Discover(root, r.Exclude, r.Extensions)
	if err != nil {
		return nil, err
	}
	result.FilesScanned = len(files)
	logger.Info("starting run", "root", root, "files", len(files),
		"tables", len(r.Targets), "workers", workers, "dry_run", r.DryRun)

	rewriter := rewrite.NewRewriter(r.Targets, r.Prefix, logger)
	reporter := rewrite.NewReporter()

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range files {
		path := path
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			modified, err := r.processFile(path, rewriter, reporter, logger)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Warnings = append(result.Warnings, Warning{Path: path, Message: err.Error()})
				return nil
			}
			if modified {
				result.FilesModified++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Changes = reporter.Keys()
	result.Duration = time.Since(start)
	logger.Info("run finished", "summary", result.Summary())
	return result, nil
}

// processFile rewrites one file fully in memory and, when at least one
// line changed and DryRun is off, writes it back atomically. Modified
// lines reach the reporter only once the rewrite (and any write) has
// succeeded, so a failed file contributes nothing to the report.
func (r *Runner) processFile(path string, rewriter *rewrite.Rewriter, reporter *rewrite.Reporter, logger *slog.Logger) (bool, error) {
	fc, err := readMapperFile(path)
	if err != nil {
		logger.Warn("skipping unreadable file", "file", path, "error", err)
		return false, fmt.Errorf("read: %w", err)
	}

	tracker := rewriter.NewTracker()
	newLines := make([]string, len(fc.lines))
	var changed []int
	for i, line := range fc.lines {
		newLine, modified := rewriter.RewriteLine(line, tracker)
		newLines[i] = newLine
		if modified {
			changed = append(changed, i+1)
		}
	}
	if len(changed) == 0 {
		return false, nil
	}

	if !r.DryRun {
		if err := writeMapperFile(path, fc, newLines, r.Backup); err != nil {
			logger.Error("write failed, file left untouched", "file", path, "error", err)
			return false, fmt.Errorf("write: %w", err)
		}
		logger.Info("file modified", "file", path, "lines", len(changed))
	} else {
		logger.Info("file would be modified", "file", path, "lines", len(changed))
	}

	for _, n := range changed {
		reporter.Add(path, n)
	}
	return true, nil
}
