package rewrite

import (
	"regexp"
	"strings"
	"sync"
)

// Compiler builds and caches the matchers for one marker prefix and target
// set. Go's regexp has no lookaround, so each matcher pairs a
// case-insensitive pattern with explicit boundary validation on the match
// positions: word-boundary bytes on both sides and a case-insensitive
// "marker prefix immediately before" rejection that keeps every matcher
// idempotent. Matchers hold no per-file state and the compiler is safe for
// concurrent use across files.
type Compiler struct {
	prefix string

	direct     map[[2]string]*regexp.Regexp // (table, column) -> table\.column
	resultAttr map[string]*regexp.Regexp    // column -> column = "col"
	aliasDecl  map[string]*regexp.Regexp    // table -> FROM|JOIN|UPDATE decl

	mu       sync.RWMutex
	aliasUse map[[2]string]*regexp.Regexp // (alias, column) -> alias\.column
}

// NewCompiler precompiles the direct-usage, result-mapping and
// alias-declaration matchers for every target pair. Alias-usage matchers
// depend on alias values observed at rewrite time and are compiled on
// demand, cached by (alias, column).
func NewCompiler(targets Targets, prefix string) *Compiler {
	c := &Compiler{
		prefix:     prefix,
		direct:     make(map[[2]string]*regexp.Regexp),
		resultAttr: make(map[string]*regexp.Regexp),
		aliasDecl:  make(map[string]*regexp.Regexp),
		aliasUse:   make(map[[2]string]*regexp.Regexp),
	}
	for table, columns := range targets {
		c.aliasDecl[table] = compileAliasDecl(table)
		for _, col := range columns {
			c.direct[[2]string{table, col}] = regexp.MustCompile(
				`(?i)(` + regexp.QuoteMeta(table) + `)\.(` + regexp.QuoteMeta(col) + `)`)
			if _, ok := c.resultAttr[col]; !ok {
				c.resultAttr[col] = regexp.MustCompile(
					`(?i)(column\s*=\s*["'])(` + regexp.QuoteMeta(col) + `)(["'])`)
			}
		}
	}
	return c
}

// compileAliasDecl recognizes both declaration forms:
// FROM|JOIN|UPDATE <table> [AS] <alias> and the comma/whitespace-separated
// implicit-join form ", <table> [AS] <alias>". The alias token is captured
// in either branch.
func compileAliasDecl(table string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(table)
	return regexp.MustCompile(
		`(?i)(?:\b(?:FROM|JOIN|UPDATE)\s+|[,\s])` + quoted + `\s+(?:AS\s+)?(\w+)`)
}

func (c *Compiler) aliasUsePattern(alias, col string) *regexp.Regexp {
	key := [2]string{alias, col}
	c.mu.RLock()
	re, ok := c.aliasUse[key]
	c.mu.RUnlock()
	if ok {
		return re
	}
	re = regexp.MustCompile(
		`(?i)(` + regexp.QuoteMeta(alias) + `)\.(` + regexp.QuoteMeta(col) + `)`)
	c.mu.Lock()
	c.aliasUse[key] = re
	c.mu.Unlock()
	return re
}

// RewriteDirect replaces whole-identifier table.column occurrences with
// <prefix>table.<prefix>column, keeping the casing the source used.
// Occurrences whose table is immediately preceded by the marker prefix, or
// that sit inside a longer identifier, are left alone.
func (c *Compiler) RewriteDirect(line, table, col string) (string, int) {
	re := c.direct[[2]string{table, col}]
	if re == nil {
		return line, 0
	}
	return c.replace(line, re, func(m []int) bool {
		return wordBoundaryBefore(line, m[0]) &&
			!prefixEndsAt(line, m[0], c.prefix) &&
			wordBoundaryAfter(line, m[1])
	}, func(m []int) string {
		return c.prefix + line[m[2]:m[3]] + "." + c.prefix + line[m[4]:m[5]]
	})
}

// RewriteAliasUse replaces alias.column with alias.<prefix>column for one
// concrete alias value. The alias token itself is never prefixed. A column
// already carrying the prefix is rejected.
func (c *Compiler) RewriteAliasUse(line, alias, col string) (string, int) {
	re := c.aliasUsePattern(alias, col)
	return c.replace(line, re, func(m []int) bool {
		return wordBoundaryBefore(line, m[0]) &&
			!prefixEndsAt(line, m[4], c.prefix) &&
			wordBoundaryAfter(line, m[1])
	}, func(m []int) string {
		return line[m[2]:m[3]] + "." + c.prefix + line[m[4]:m[5]]
	})
}

// RewriteResultAttr replaces column="col" / column='col' attribute values
// with the prefixed column, copying the original quote bytes through.
// Quote styles are captured independently and are not required to pair.
func (c *Compiler) RewriteResultAttr(line, col string) (string, int) {
	re := c.resultAttr[col]
	if re == nil {
		return line, 0
	}
	return c.replace(line, re, func(m []int) bool {
		return wordBoundaryBefore(line, m[0]) &&
			!prefixEndsAt(line, m[4], c.prefix)
	}, func(m []int) string {
		return line[m[2]:m[3]] + c.prefix + line[m[4]:m[5]] + line[m[6]:m[7]]
	})
}

// FindAliases runs the alias-declaration matcher for table over line and
// returns the candidate alias tokens in left-to-right order.
func (c *Compiler) FindAliases(line, table string) []string {
	re := c.aliasDecl[table]
	if re == nil {
		return nil
	}
	var aliases []string
	for _, m := range re.FindAllStringSubmatchIndex(line, -1) {
		aliases = append(aliases, line[m[2]:m[3]])
	}
	return aliases
}

// replace applies re over line, keeping only matches that pass valid, and
// substitutes each with the result of repl. Returns the rewritten line and
// the number of substitutions made.
func (c *Compiler) replace(line string, re *regexp.Regexp, valid func([]int) bool, repl func([]int) string) (string, int) {
	matches := re.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return line, 0
	}
	var b strings.Builder
	count := 0
	last := 0
	for _, m := range matches {
		if !valid(m) {
			continue
		}
		b.WriteString(line[last:m[0]])
		b.WriteString(repl(m))
		last = m[1]
		count++
	}
	if count == 0 {
		return line, 0
	}
	b.WriteString(line[last:])
	return b.String(), count
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

// wordBoundaryBefore reports whether pos sits at the start of an
// identifier, i.e. the preceding byte is not a word byte.
func wordBoundaryBefore(s string, pos int) bool {
	return pos == 0 || !isWordByte(s[pos-1])
}

// wordBoundaryAfter reports whether pos sits at the end of an identifier.
func wordBoundaryAfter(s string, pos int) bool {
	return pos >= len(s) || !isWordByte(s[pos])
}

// prefixEndsAt reports whether the marker prefix occupies the bytes
// immediately before pos, case-insensitively. This is the idempotence
// guard: an identifier that already carries the prefix is never rematched.
func prefixEndsAt(s string, pos int, prefix string) bool {
	if pos < len(prefix) {
		return false
	}
	return strings.EqualFold(s[pos-len(prefix):pos], prefix)
}
