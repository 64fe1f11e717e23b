package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/colmark/colmark/internal/cli/output"
	"github.com/colmark/colmark/internal/scanner"
)

// renderResult prints a run result: a modified-line table plus summary in
// text mode, or the whole result as JSON.
func renderResult(w io.Writer, renderer *output.Renderer, result *scanner.Result, prefix string) error {
	if renderer.JSON() {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	styles := renderer.Styles()

	if len(result.Changes) > 0 {
		fmt.Fprintln(w, styles.Title.Render("Modified lines"))
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"File", "Line"})
		for _, key := range result.Changes {
			t.AppendRow(table.Row{key.Path, key.Line})
		}
		t.Render()
	}

	for _, warn := range result.Warnings {
		fmt.Fprintln(w, styles.Warning.Render(fmt.Sprintf("warning: %s: %s", warn.Path, warn.Message)))
	}

	fmt.Fprintln(w, styles.Success.Render(result.Summary()))
	if len(result.Changes) > 0 {
		fmt.Fprintln(w, styles.Muted.Render(
			fmt.Sprintf("Search your IDE for %q to review every change.", prefix)))
	} else {
		fmt.Fprintln(w, "No targeted column usages found.")
	}
	return nil
}
