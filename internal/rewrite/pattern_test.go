package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixEndsAt(t *testing.T) {
	tests := []struct {
		s    string
		pos  int
		want bool
	}{
		{"ced_todo_status", 9, true},
		{"CED_TODO_status", 9, true},
		{"x_todo_status", 7, false},
		{"status", 0, false},
		{"ced", 3, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, prefixEndsAt(tt.s, tt.pos, "ced_todo_"),
			"prefixEndsAt(%q, %d)", tt.s, tt.pos)
	}
}

func TestWordBoundaries(t *testing.T) {
	assert.True(t, wordBoundaryBefore("a.b", 0))
	assert.True(t, wordBoundaryBefore("a.b", 2))
	assert.False(t, wordBoundaryBefore("ab", 1))
	assert.False(t, wordBoundaryBefore("a_b", 2))
	assert.True(t, wordBoundaryAfter("a.b", 3))
	assert.True(t, wordBoundaryAfter("a.b", 1))
	assert.False(t, wordBoundaryAfter("ab", 1))
}

func TestCompiler_RewriteDirect(t *testing.T) {
	c := NewCompiler(Targets{"tb_order": {"status"}}, testPrefix)

	tests := []struct {
		name      string
		line      string
		want      string
		wantCount int
	}{
		{"plain", "tb_order.status", "ced_todo_tb_order.ced_todo_status", 1},
		{"already marked", "ced_todo_tb_order.ced_todo_status", "ced_todo_tb_order.ced_todo_status", 0},
		{"inside identifier", "xtb_order.status", "xtb_order.status", 0},
		{"column continues", "tb_order.statusx", "tb_order.statusx", 0},
		{"two occurrences", "tb_order.status,tb_order.status", "ced_todo_tb_order.ced_todo_status,ced_todo_tb_order.ced_todo_status", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, count := c.RewriteDirect(tt.line, "tb_order", "status")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestCompiler_RewriteAliasUse(t *testing.T) {
	c := NewCompiler(Targets{"tb_order": {"status"}}, testPrefix)

	got, count := c.RewriteAliasUse("WHERE o.status = 1", "o", "status")
	assert.Equal(t, "WHERE o.ced_todo_status = 1", got)
	assert.Equal(t, 1, count)

	// The rewritten form no longer matches.
	got, count = c.RewriteAliasUse(got, "o", "status")
	assert.Equal(t, "WHERE o.ced_todo_status = 1", got)
	assert.Zero(t, count)

	// Longer alias-like identifiers do not match alias "o".
	got, count = c.RewriteAliasUse("WHERE foo.status = 1", "o", "status")
	assert.Equal(t, "WHERE foo.status = 1", got)
	assert.Zero(t, count)
}

func TestCompiler_AliasUseCache(t *testing.T) {
	c := NewCompiler(Targets{"tb_order": {"status"}}, testPrefix)

	first := c.aliasUsePattern("o", "status")
	second := c.aliasUsePattern("o", "status")
	assert.Same(t, first, second, "patterns are cached per (alias, column)")
}

func TestCompiler_RewriteResultAttr(t *testing.T) {
	c := NewCompiler(Targets{"tb_order": {"status"}}, testPrefix)

	tests := []struct {
		name      string
		line      string
		want      string
		wantCount int
	}{
		{"double quotes", `column="status"`, `column="ced_todo_status"`, 1},
		{"single quotes", `column='status'`, `column='ced_todo_status'`, 1},
		{"spaced", `column = "status"`, `column = "ced_todo_status"`, 1},
		{"upper case attr", `COLUMN="status"`, `COLUMN="ced_todo_status"`, 1},
		{"already marked", `column="ced_todo_status"`, `column="ced_todo_status"`, 0},
		{"different attribute", `property="status"`, `property="status"`, 0},
		{"value continues", `column="status_code"`, `column="status_code"`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, count := c.RewriteResultAttr(tt.line, "status")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}
