// Package output renders scan results and diagnostics for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/strscan/internal/recipe"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Mode selects how results are rendered.
type Mode string

// Output modes.
const (
	ModeAuto  Mode = "auto"
	ModeTable Mode = "table"
	ModeJSON  Mode = "json"
	ModeYAML  Mode = "yaml"
	ModeText  Mode = "text"
)

// Record is the rendered form of one scanned line.
type Record struct {
	Line   int            `json:"line" yaml:"line"`
	Input  string         `json:"input" yaml:"input"`
	Fields []recipe.Field `json:"fields,omitempty" yaml:"fields,omitempty"`
	Rest   string         `json:"rest,omitempty" yaml:"rest,omitempty"`
	Error  string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Renderer writes results to an output stream and diagnostics to an error
// stream.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a Renderer. An empty mode is treated as ModeAuto.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTerminal(out),
		styles: NewStyles(errOut),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// EffectiveMode resolves ModeAuto: tables on a terminal, plain text otherwise.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeTable
	}
	return ModeText
}

// Out returns the result stream.
func (r *Renderer) Out() io.Writer {
	return r.out
}

// Records renders scan records in the effective mode.
func (r *Renderer) Records(recs []Record) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	case ModeYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(recs); err != nil {
			return err
		}
		return enc.Close()
	case ModeTable:
		r.table(recs)
		return nil
	default:
		r.text(recs)
		return nil
	}
}

// Record renders one record as soon as it is available. JSON output has one
// object per line; every other mode writes text.
func (r *Renderer) Record(rec Record) error {
	if r.EffectiveMode() == ModeJSON {
		return json.NewEncoder(r.out).Encode(rec)
	}
	r.text([]Record{rec})
	return nil
}

func (r *Renderer) table(recs []Record) {
	if len(recs) == 0 {
		_, _ = fmt.Fprintln(r.out, "(0 lines)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Line", "Field", "Value", "Span"})

	for _, rec := range recs {
		for _, f := range rec.Fields {
			span := ""
			if f.Span.IsValid() {
				span = fmt.Sprintf("%d-%d", f.Span.Start.Offset, f.Span.End.Offset)
			}
			t.AppendRow(table.Row{rec.Line, f.Name, FormatValue(f.Value), span})
		}
		if rec.Rest != "" {
			t.AppendRow(table.Row{rec.Line, "(rest)", FormatValue(rec.Rest), ""})
		}
		if rec.Error != "" {
			t.AppendRow(table.Row{rec.Line, "(error)", rec.Error, ""})
		}
		t.AppendSeparator()
	}

	t.Render()
	_, _ = fmt.Fprintf(r.out, "(%d lines)\n", len(recs))
}

func (r *Renderer) text(recs []Record) {
	for _, rec := range recs {
		parts := make([]string, 0, len(rec.Fields)+1)
		for _, f := range rec.Fields {
			parts = append(parts, f.Name+"="+FormatValue(f.Value))
		}
		if rec.Error != "" {
			parts = append(parts, "error="+fmt.Sprintf("%q", rec.Error))
		}
		_, _ = fmt.Fprintf(r.out, "%d: %s\n", rec.Line, strings.Join(parts, " "))
	}
}

// FormatValue formats a field value for table and text output. Strings are
// quoted when they are empty or contain whitespace.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		if x == "" || strings.ContainsAny(x, " \t\r\n\"") {
			return fmt.Sprintf("%q", x)
		}
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
