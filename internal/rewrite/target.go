// Package rewrite implements the column-marking engine: it rewrites
// table.column references in SQL mapper text by prepending a migration
// marker prefix, tracking table aliases line by line and reporting every
// line it touched.
package rewrite

import (
	"io"
	"log/slog"
	"sort"
	"strings"
)

// Targets maps a table name to the set of its columns selected for marking.
// Columns are stored sorted and deduplicated; neither table nor column names
// ever carry the marker prefix.
type Targets map[string][]string

// ParseTargets parses "table.column" specs into a Targets map. The name is
// split on the last dot, so schema-qualified tables keep their dots. Any
// occurrence of the marker prefix is stripped from both halves: a spec that
// names an already-marked column targets the unmarked original. Malformed
// specs (no dot, empty table or column) are skipped with a warning.
func ParseTargets(specs []string, prefix string, logger *slog.Logger) Targets {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	targets := make(Targets)
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		idx := strings.LastIndex(spec, ".")
		if idx < 0 {
			logger.Warn("skipping malformed target, expected table.column", "spec", spec)
			continue
		}
		table := strings.ReplaceAll(spec[:idx], prefix, "")
		column := strings.ReplaceAll(spec[idx+1:], prefix, "")
		if table == "" || column == "" {
			logger.Warn("skipping malformed target, empty table or column", "spec", spec)
			continue
		}
		if !contains(targets[table], column) {
			targets[table] = append(targets[table], column)
		}
	}
	for table := range targets {
		sort.Strings(targets[table])
	}
	return targets
}

// Tables returns the target table names, sorted.
func (t Targets) Tables() []string {
	tables := make([]string, 0, len(t))
	for table := range t {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	return tables
}

// Columns returns every targeted column name across all tables,
// deduplicated and sorted.
func (t Targets) Columns() []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, columns := range t {
		for _, col := range columns {
			if _, ok := seen[col]; !ok {
				seen[col] = struct{}{}
				cols = append(cols, col)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
