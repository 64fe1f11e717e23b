// Package commands implements the colmark subcommands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/colmark/colmark/internal/cli/config"
	"github.com/colmark/colmark/internal/cli/output"
	"github.com/colmark/colmark/internal/rewrite"
	"github.com/colmark/colmark/internal/scanner"
)

// MarkOptions holds options for the mark command.
type MarkOptions struct {
	Backup bool
	Yes    bool
	DryRun bool
}

// NewMarkCommand creates the mark command.
func NewMarkCommand() *cobra.Command {
	opts := &MarkOptions{}

	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Rewrite mapper files, prefixing targeted column references",
		Long: `Scan the mapper tree and rewrite every reference of the targeted
table.column pairs in place, prepending the marker prefix. Files are fully
rewritten in memory and replaced atomically; a write failure leaves the
original untouched.

This modifies your source tree. Commit or back it up first.`,
		Example: `  # Mark two columns across the mapper tree
  colmark mark -d src/main/resources -c tb_sys_receipts_order.shipping_fee,tb_sys_receipts_order.status

  # Keep .bak copies and skip the confirmation prompt
  colmark mark -d src/main/resources -c oc_customer.country_id --backup --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMark(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Backup, "backup", false, "Keep a .bak copy of every rewritten file")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Rewrite in memory only; report without writing")

	return cmd
}

func runMark(cmd *cobra.Command, opts *MarkOptions) error {
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

	if !opts.DryRun && !opts.Yes && !cfg.Yes {
		ok, err := confirmRewrite(cmd, renderer, cfg)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	runner := &scanner.Runner{
		Targets:    targets,
		Prefix:     cfg.Prefix,
		Exclude:    cfg.ExcludeDirs,
		Extensions: cfg.Extensions,
		Workers:    cfg.Workers,
		DryRun:     opts.DryRun,
		Backup:     opts.Backup || cfg.Backup,
		Logger:     logger,
	}
	result, err := runner.Run(cmd.Context(), cfg.ScanDir)
	if err != nil {
		return err
	}

	return renderResult(cmd.OutOrStdout(), renderer, result, cfg.Prefix)
}

// confirmRewrite asks for an explicit "yes" before touching the tree. With
// no terminal attached there is nobody to ask, so the run refuses unless
// --yes was given.
func confirmRewrite(cmd *cobra.Command, renderer *output.Renderer, cfg *config.Config) (bool, error) {
	stdin, isFile := cmd.InOrStdin().(*os.File)
	if !isFile || !output.IsTerminal(stdin) {
		return false, fmt.Errorf("refusing to modify files without confirmation; pass --yes to proceed non-interactively")
	}

	styles := renderer.Styles()
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, styles.Warning.Render("This will modify mapper XML files under "+cfg.ScanDir+" in place."))
	fmt.Fprintln(w, styles.Warning.Render("Make sure the tree is committed to version control first."))

	rl, err := readline.NewEx(&readline.Config{
		Prompt: "Proceed? (yes/no): ",
		Stdin:  io.NopCloser(cmd.InOrStdin()),
	})
	if err != nil {
		return false, fmt.Errorf("failed to open prompt: %w", err)
	}
	defer func() { _ = rl.Close() }()

	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes"), nil
}
