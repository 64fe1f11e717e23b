// Package output renders command results in either human-oriented text or
// machine-oriented JSON, with styling only when stdout is a color-capable
// terminal.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects the rendering mode.
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// Renderer writes command output. Auto mode resolves to text; JSON is only
// used when asked for explicitly.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
}

// NewRenderer creates a renderer for the given writers and mode.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		styles: newStyles(colorEnabled(out)),
	}
}

// JSON reports whether output should be machine-readable JSON.
func (r *Renderer) JSON() bool { return r.mode == ModeJSON }

// Out returns the primary output writer.
func (r *Renderer) Out() io.Writer { return r.out }

// Err returns the error/notice writer.
func (r *Renderer) Err() io.Writer { return r.errOut }

// Styles returns the active style set.
func (r *Renderer) Styles() *Styles { return r.styles }

// Styles holds the lipgloss styles used across commands.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

func newStyles(enabled bool) *Styles {
	if !enabled {
		plain := lipgloss.NewStyle()
		return &Styles{Title: plain, Success: plain, Warning: plain, Error: plain, Muted: plain}
	}
	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func colorEnabled(w io.Writer) bool {
	if termenv.EnvNoColor() {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// IsTerminal reports whether f is attached to a terminal. Commands use it
// to decide whether an interactive confirmation is possible.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
