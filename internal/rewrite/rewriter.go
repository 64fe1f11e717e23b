package rewrite

import (
	"io"
	"log/slog"
)

// Rewriter applies the marking passes to individual lines of one or more
// files. It is immutable after construction and safe to share across file
// workers; all per-file state lives in the AliasTracker each caller owns.
type Rewriter struct {
	targets  Targets
	compiler *Compiler
	tables   []string
	columns  []string
	logger   *slog.Logger
}

// NewRewriter builds a rewriter for the given targets and marker prefix.
func NewRewriter(targets Targets, prefix string, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Rewriter{
		targets:  targets,
		compiler: NewCompiler(targets, prefix),
		tables:   targets.Tables(),
		columns:  targets.Columns(),
		logger:   logger,
	}
}

// NewTracker returns a fresh per-file alias tracker.
func (r *Rewriter) NewTracker() *AliasTracker {
	return &AliasTracker{
		compiler: r.compiler,
		tables:   r.tables,
		current:  make(map[string]string),
	}
}

// RewriteLine runs the four ordered passes over one line and returns the
// possibly-rewritten line plus whether anything changed:
//
//  1. alias observation, against the original line so later passes cannot
//     feed rewritten text back into alias inference;
//  2. direct table.column substitution;
//  3. alias.column substitution for every table with a bound alias;
//  4. result-mapping column="..." substitution, deduplicated by column
//     name across tables.
//
// Tables and columns iterate in sorted order, so for a fixed input the
// output is deterministic.
func (r *Rewriter) RewriteLine(line string, tracker *AliasTracker) (string, bool) {
	tracker.Observe(line)

	modified := false
	for _, table := range r.tables {
		for _, col := range r.targets[table] {
			var n int
			line, n = r.compiler.RewriteDirect(line, table, col)
			if n > 0 {
				r.logger.Debug("rewrote direct usage", "table", table, "column", col, "count", n)
				modified = true
			}
		}
	}

	for _, table := range r.tables {
		alias, ok := tracker.Current(table)
		if !ok {
			continue
		}
		for _, col := range r.targets[table] {
			var n int
			line, n = r.compiler.RewriteAliasUse(line, alias, col)
			if n > 0 {
				r.logger.Debug("rewrote alias usage", "alias", alias, "column", col, "count", n)
				modified = true
			}
		}
	}

	for _, col := range r.columns {
		var n int
		line, n = r.compiler.RewriteResultAttr(line, col)
		if n > 0 {
			r.logger.Debug("rewrote result-mapping attribute", "column", col, "count", n)
			modified = true
		}
	}

	return line, modified
}
