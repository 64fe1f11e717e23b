package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colmark/colmark/internal/testutil"
)

const testPrefix = "ced_todo_"

func newTestRewriter(t *testing.T, specs ...string) *Rewriter {
	t.Helper()
	targets := ParseTargets(specs, testPrefix, testutil.NewTestLogger(t))
	require.NotEmpty(t, targets)
	return NewRewriter(targets, testPrefix, testutil.NewTestLogger(t))
}

// rewriteLines runs a whole snippet through one tracker, like a file.
func rewriteLines(r *Rewriter, lines []string) ([]string, []int) {
	tracker := r.NewTracker()
	out := make([]string, len(lines))
	var changed []int
	for i, line := range lines {
		newLine, modified := r.RewriteLine(line, tracker)
		out[i] = newLine
		if modified {
			changed = append(changed, i+1)
		}
	}
	return out, changed
}

func TestRewriteLine_DirectUsage(t *testing.T) {
	r := newTestRewriter(t, "tb_sys_receipts_order.shipping_fee")

	line := "SELECT shipping_fee FROM tb_sys_receipts_order WHERE tb_sys_receipts_order.shipping_fee > 0"
	got, modified := r.RewriteLine(line, r.NewTracker())

	assert.True(t, modified)
	assert.Equal(t,
		"SELECT shipping_fee FROM tb_sys_receipts_order WHERE ced_todo_tb_sys_receipts_order.ced_todo_shipping_fee > 0",
		got)
}

func TestRewriteLine_DirectUsagePreservesCasing(t *testing.T) {
	r := newTestRewriter(t, "tb_sys_receipts_order.status")

	got, modified := r.RewriteLine("where TB_SYS_RECEIPTS_ORDER.Status = 1", r.NewTracker())

	assert.True(t, modified)
	assert.Equal(t, "where ced_todo_TB_SYS_RECEIPTS_ORDER.ced_todo_Status = 1", got)
}

func TestRewriteLine_SubstringIdentifiersUntouched(t *testing.T) {
	r := newTestRewriter(t, "tb_sys_receipts_order.status")

	tests := []struct {
		name string
		line string
	}{
		{"column is a prefix of a longer identifier", "WHERE tb_sys_receipts_order.status_code = 1"},
		{"table is a suffix of a longer identifier", "WHERE old_tb_sys_receipts_order.status = 1"},
		{"unqualified column", "SELECT status FROM tb_sys_receipts_order"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, modified := r.RewriteLine(tt.line, r.NewTracker())
			assert.False(t, modified)
			assert.Equal(t, tt.line, got)
		})
	}
}

func TestRewriteLine_AliasInference(t *testing.T) {
	r := newTestRewriter(t, "tb_sys_receipts_order.status")

	lines := []string{
		"FROM tb_sys_receipts_order r",
		"WHERE r.status = 1",
	}
	got, changed := rewriteLines(r, lines)

	assert.Equal(t, "FROM tb_sys_receipts_order r", got[0])
	assert.Equal(t, "WHERE r.ced_todo_status = 1", got[1])
	assert.Equal(t, []int{2}, changed)
}

func TestRewriteLine_AliasDeclaredAndUsedOnSameLine(t *testing.T) {
	r := newTestRewriter(t, "tb_sys_receipts_order.status")

	got, modified := r.RewriteLine(
		"SELECT o.id FROM tb_sys_receipts_order o WHERE o.status = 1", r.NewTracker())

	assert.True(t, modified)
	assert.Equal(t, "SELECT o.id FROM tb_sys_receipts_order o WHERE o.ced_todo_status = 1", got)
}

func TestRewriteLine_ReservedWordGuard(t *testing.T) {
	r := newTestRewriter(t, "tb_sys_receipts_order.status")

	lines := []string{
		"FROM tb_sys_receipts_order WHERE x = 1",
		"WHERE.status",
	}
	got, changed := rewriteLines(r, lines)

	assert.Equal(t, lines[0], got[0])
	assert.Equal(t, lines[1], got[1], "WHERE must not be bound as an alias")
	assert.Empty(t, changed)
}

func TestRewriteLine_AliasOverwrite(t *testing.T) {
	r := newTestRewriter(t, "tb_sys_receipts_order.status")

	lines := []string{
		"FROM tb_sys_receipts_order a",
		"WHERE a.status = 1",
		"FROM tb_sys_receipts_order b",
		"WHERE b.status = 2 AND a.status = 3",
	}
	got, _ := rewriteLines(r, lines)

	assert.Equal(t, "WHERE a.ced_todo_status = 1", got[1])
	// After the redeclaration only b is bound; the stale a usage stays.
	assert.Equal(t, "WHERE b.ced_todo_status = 2 AND a.status = 3", got[3])
}

func TestRewriteLine_AliasFromJoinAndCommaForms(t *testing.T) {
	tests := []struct {
		name string
		decl string
		use  string
		want string
	}{
		{"join", "JOIN tb_sys_receipts_order o ON o.id = x.id", "AND o.status = 1", "AND o.ced_todo_status = 1"},
		{"update", "UPDATE tb_sys_receipts_order t", "SET t.status = 2", "SET t.ced_todo_status = 2"},
		{"explicit AS", "FROM tb_sys_receipts_order AS ord", "WHERE ord.status = 1", "WHERE ord.ced_todo_status = 1"},
		{"implicit join comma form", "FROM oc_customer c, tb_sys_receipts_order r2", "WHERE r2.status = 1", "WHERE r2.ced_todo_status = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRewriter(t, "tb_sys_receipts_order.status")
			got, _ := rewriteLines(r, []string{tt.decl, tt.use})
			assert.Equal(t, tt.want, got[1])
		})
	}
}

func TestRewriteLine_ResultMapping(t *testing.T) {
	r := newTestRewriter(t, "tb_sys_receipts_order.status")

	got, modified := r.RewriteLine(`<result column="status" property="status"/>`, r.NewTracker())

	assert.True(t, modified)
	assert.Equal(t, `<result column="ced_todo_status" property="status"/>`, got,
		"only the column attribute is rewritten, property stays")
}

func TestRewriteLine_ResultMappingQuoteStyles(t *testing.T) {
	r := newTestRewriter(t, "tb_sys_receipts_order.status")

	tests := []struct {
		line string
		want string
	}{
		{`<result column='status' property='st'/>`, `<result column='ced_todo_status' property='st'/>`},
		{`<id column = "status" jdbcType="INT"/>`, `<id column = "ced_todo_status" jdbcType="INT"/>`},
		{`<result column="status_code"/>`, `<result column="status_code"/>`},
	}
	for _, tt := range tests {
		got, _ := r.RewriteLine(tt.line, r.NewTracker())
		assert.Equal(t, tt.want, got)
	}
}

func TestRewriteLine_ResultMappingColumnSharedByTwoTables(t *testing.T) {
	r := newTestRewriter(t, "tb_sys_receipts_order.status", "oc_customer.status")

	got, modified := r.RewriteLine(`<result column="status"/>`, r.NewTracker())

	assert.True(t, modified)
	assert.Equal(t, `<result column="ced_todo_status"/>`, got,
		"a column shared by two target tables is rewritten exactly once")
}

func TestRewriteLine_Idempotence(t *testing.T) {
	r := newTestRewriter(t,
		"tb_sys_receipts_order.shipping_fee",
		"tb_sys_receipts_order.status",
		"oc_customer.country_id")

	lines := []string{
		`<resultMap id="rm" type="Order">`,
		`  <result column="status" property="status"/>`,
		`  <result column="country_id" property="countryId"/>`,
		`</resultMap>`,
		`SELECT * FROM tb_sys_receipts_order o`,
		`WHERE o.status = 1 AND tb_sys_receipts_order.shipping_fee > 0`,
		`JOIN oc_customer c ON c.country_id = o.id`,
	}

	first, firstChanged := rewriteLines(r, lines)
	require.NotEmpty(t, firstChanged)

	second, secondChanged := rewriteLines(r, first)
	assert.Empty(t, secondChanged, "second run must be a no-op")
	assert.Equal(t, first, second)
}

func TestRewriteLine_NoDoublePrefix(t *testing.T) {
	r := newTestRewriter(t, "tb_sys_receipts_order.status")

	lines := []string{
		"FROM tb_sys_receipts_order o",
		"WHERE o.status = 1 AND tb_sys_receipts_order.status = 2",
		`<result column="status"/>`,
		"WHERE ced_todo_tb_sys_receipts_order.ced_todo_status = 3",
	}
	got, _ := rewriteLines(r, lines)
	for _, line := range got {
		assert.NotContains(t, line, testPrefix+testPrefix,
			"no identifier may carry the prefix twice")
	}
	// Already-marked usage is left exactly as it was.
	assert.Equal(t, "WHERE ced_todo_tb_sys_receipts_order.ced_todo_status = 3", got[3])
}

func TestRewriteLine_TargetSpecWithPrefixStripped(t *testing.T) {
	// Specs naming already-marked identifiers target the unmarked names.
	r := newTestRewriter(t, "tb_sys_receipts_order.ced_todo_status")

	got, modified := r.RewriteLine("WHERE tb_sys_receipts_order.status = 1", r.NewTracker())

	assert.True(t, modified)
	assert.Equal(t, "WHERE ced_todo_tb_sys_receipts_order.ced_todo_status = 1", got)
}

func TestRewriteLine_MultipleMatchesOnOneLine(t *testing.T) {
	r := newTestRewriter(t, "tb_sys_receipts_order.status")

	got, modified := r.RewriteLine(
		"WHERE tb_sys_receipts_order.status = 1 OR tb_sys_receipts_order.status = 2",
		r.NewTracker())

	assert.True(t, modified)
	assert.Equal(t, 2, strings.Count(got, "ced_todo_tb_sys_receipts_order.ced_todo_status"))
}

func TestRewriteLine_EmptyTargets(t *testing.T) {
	r := NewRewriter(Targets{}, testPrefix, nil)

	line := "WHERE tb_sys_receipts_order.status = 1"
	got, modified := r.RewriteLine(line, r.NewTracker())

	assert.False(t, modified)
	assert.Equal(t, line, got)
}
