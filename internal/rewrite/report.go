package rewrite

import (
	"fmt"
	"sort"
	"sync"
)

// LineKey identifies one modified line: a file path plus a 1-based line
// number.
type LineKey struct {
	Path string `json:"file"`
	Line int    `json:"line"`
}

// String renders the key in path:line form.
func (k LineKey) String() string {
	return fmt.Sprintf("%s:%d", k.Path, k.Line)
}

// Reporter accumulates the set of modified lines across a whole run.
// Insertion deduplicates, so a line reported by several passes (or several
// retries) appears once. Safe for concurrent use by parallel file workers.
type Reporter struct {
	mu   sync.Mutex
	seen map[LineKey]struct{}
}

// NewReporter returns an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{seen: make(map[LineKey]struct{})}
}

// Add records one modified line.
func (r *Reporter) Add(path string, line int) {
	r.mu.Lock()
	r.seen[LineKey{Path: path, Line: line}] = struct{}{}
	r.mu.Unlock()
}

// Len returns the number of distinct modified lines.
func (r *Reporter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// Keys returns every recorded key sorted by file path (lexicographic) and
// then by line number (ascending), so two runs over the same input produce
// identical reports.
func (r *Reporter) Keys() []LineKey {
	r.mu.Lock()
	keys := make([]LineKey, 0, len(r.seen))
	for k := range r.seen {
		keys = append(keys, k)
	}
	r.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return keys[i].Line < keys[j].Line
	})
	return keys
}
