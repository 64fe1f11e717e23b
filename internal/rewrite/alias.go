package rewrite

import "strings"

// reservedWords are SQL keywords that must never be mistaken for a table
// alias when they follow a table name in a FROM/JOIN/UPDATE clause.
var reservedWords = map[string]struct{}{
	"WHERE": {}, "SET": {}, "VALUES": {}, "ON": {}, "AND": {}, "OR": {},
	"AS": {}, "ORDER": {}, "GROUP": {}, "BY": {}, "LEFT": {}, "RIGHT": {},
	"INNER": {}, "OUTER": {}, "JOIN": {},
}

// AliasTracker holds the most recent alias bound to each targeted table
// within a single file. Bindings are line-local-forward: an alias declared
// on line N applies from line N on, until a later declaration overwrites
// it. A tracker must only ever see the original, pre-rewrite text of each
// line, never text already rewritten in the same pass.
//
// Trackers are created fresh per file and discarded at file end; they are
// not safe for concurrent use (each file worker owns its own).
type AliasTracker struct {
	compiler *Compiler
	tables   []string
	current  map[string]string
}

// Observe scans line for alias declarations of every targeted table and
// updates the bindings. Declarations apply left to right, so the last one
// on a line wins. Candidate tokens that are reserved SQL keywords are
// ignored and leave any existing binding intact.
func (t *AliasTracker) Observe(line string) {
	for _, table := range t.tables {
		for _, alias := range t.compiler.FindAliases(line, table) {
			if _, reserved := reservedWords[strings.ToUpper(alias)]; reserved {
				continue
			}
			t.current[table] = alias
		}
	}
}

// Current returns the alias currently bound to table, if any.
func (t *AliasTracker) Current(table string) (string, bool) {
	alias, ok := t.current[table]
	return alias, ok
}
