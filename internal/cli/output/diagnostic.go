package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/strscan/pkg/token"
	"github.com/muesli/termenv"
	"golang.org/x/text/width"
)

// Color modes accepted by SetColor.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Styles holds the lipgloss styles used for diagnostics. Styles render as
// plain text when the writer is not a color terminal.
type Styles struct {
	Error  lipgloss.Style
	Caret  lipgloss.Style
	Gutter lipgloss.Style
	Muted  lipgloss.Style
}

// NewStyles creates diagnostic styles for w.
func NewStyles(w io.Writer) *Styles {
	return newStyles(lipgloss.NewRenderer(w))
}

// NewStylesWithColor creates diagnostic styles for w, overriding terminal
// detection unless mode is ColorAuto.
func NewStylesWithColor(w io.Writer, mode string) *Styles {
	re := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		re.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		re.SetColorProfile(termenv.Ascii)
	}
	return newStyles(re)
}

func newStyles(re *lipgloss.Renderer) *Styles {
	return &Styles{
		Error:  re.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Caret:  re.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Gutter: re.NewStyle().Foreground(lipgloss.Color("12")),
		Muted:  re.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Diagnostic describes a failure at a byte offset within one input line.
type Diagnostic struct {
	Source  string // input name, e.g. a file path or "<stdin>"
	Line    int    // 1-based line number of Input within Source
	Input   string
	Offset  int // byte offset into Input, or -1 if unknown
	Message string
}

// Format renders d as a multi-line report with a caret under the offset.
func (d Diagnostic) Format(s *Styles) string {
	var b strings.Builder
	b.WriteString(s.Error.Render("error:"))
	b.WriteString(" " + d.Message + "\n")

	lineNo := strconv.Itoa(d.Line)
	pad := strings.Repeat(" ", len(lineNo))

	loc := d.Source
	if d.Offset >= 0 {
		pos := token.PositionFor(d.Input, d.Offset)
		loc = fmt.Sprintf("%s:%d:%d", d.Source, d.Line, pos.Column)
	}
	b.WriteString(s.Gutter.Render(pad+"--> ") + loc + "\n")
	b.WriteString(s.Gutter.Render(pad+" |") + "\n")
	b.WriteString(s.Gutter.Render(lineNo+" |") + " " + strings.TrimRight(d.Input, "\r\n") + "\n")
	if d.Offset >= 0 {
		pos := token.PositionFor(d.Input, d.Offset)
		b.WriteString(s.Gutter.Render(pad+" |") + " " + caretPadding(d.Input[:pos.Offset]) + s.Caret.Render("^") + "\n")
	}
	return b.String()
}

// caretPadding returns blanks covering the display width of prefix. Tabs
// are kept so the caret lines up however the terminal expands them.
func caretPadding(prefix string) string {
	var b strings.Builder
	for _, c := range prefix {
		switch {
		case c == '\t':
			b.WriteByte('\t')
		case isWide(c):
			b.WriteString("  ")
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func isWide(c rune) bool {
	switch width.LookupRune(c).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}

// SetColor replaces the diagnostic styles according to mode.
func (r *Renderer) SetColor(mode string) {
	r.styles = NewStylesWithColor(r.errOut, mode)
}

// Diagnostic writes d to the error stream.
func (r *Renderer) Diagnostic(d Diagnostic) {
	_, _ = io.WriteString(r.errOut, d.Format(r.styles))
}

// Warn writes a one-line warning to the error stream.
func (r *Renderer) Warn(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Muted.Render("warning:")+" "+msg)
}
