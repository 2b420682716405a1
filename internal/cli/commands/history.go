package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/strscan/internal/cli/output"
	"github.com/leapstack-labs/strscan/internal/recipe"
	"github.com/leapstack-labs/strscan/internal/state"
	"github.com/leapstack-labs/strscan/pkg/token"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ErrNoDatabase is returned by history when no database is configured.
var ErrNoDatabase = errors.New("no history database: set --db or db in strscan.yaml")

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded scan runs",
		Long: `History lists the scan runs recorded with 'strscan scan --db', newest
first. Given a run ID, or any unique prefix of one, it prints the records of
that run in the same form scan printed them.`,
		Example: `  strscan history --db runs.db
  strscan history --db runs.db 3f2a9c`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().String("db", "", "SQLite database holding the run history")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	cfg, r := cmdCtx.Cfg, cmdCtx.Renderer
	ctx := cmd.Context()

	if cfg.DB == "" {
		return ErrNoDatabase
	}
	store, err := state.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if len(args) == 0 {
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.ListRuns(ctx, limit)
		if err != nil {
			return err
		}
		return renderRuns(r, runs)
	}

	run, err := store.GetRun(ctx, args[0])
	if err != nil {
		return err
	}
	recs, err := store.ListRecords(ctx, run.ID)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Debug("loaded run", "id", run.ID, "records", len(recs))

	out := make([]output.Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromStateRecord(rec))
	}
	return r.Records(out)
}

// fromStateRecord converts a stored record back to its rendered form. Values
// come back as decoded JSON, so numbers are float64.
func fromStateRecord(rec state.Record) output.Record {
	out := output.Record{
		Line:  rec.Line,
		Input: rec.Input,
		Rest:  rec.Rest,
		Error: rec.Error,
	}
	for _, f := range rec.Fields {
		out.Fields = append(out.Fields, recipe.Field{
			Name:  f.Name,
			Step:  f.Step,
			Value: f.Value,
			Span:  token.SpanFor(rec.Input, f.Start, f.End),
		})
	}
	return out
}

func renderRuns(r *output.Renderer, runs []state.Run) error {
	w := r.Out()
	switch r.EffectiveMode() {
	case output.ModeJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	case output.ModeYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(runs); err != nil {
			return err
		}
		return enc.Close()
	case output.ModeTable:
		if len(runs) == 0 {
			_, _ = fmt.Fprintln(w, "(no runs)")
			return nil
		}
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"ID", "Started", "Source", "Lines", "Failed", "Recipe"})
		for _, run := range runs {
			t.AppendRow(table.Row{run.ShortID(), run.StartedAt.Local().Format(time.DateTime), run.Source, run.Lines, run.Failed, run.Recipe})
		}
		t.Render()
		return nil
	default:
		return writeRunsText(w, runs)
	}
}

func writeRunsText(w io.Writer, runs []state.Run) error {
	for _, run := range runs {
		status := "ok"
		switch {
		case run.FinishedAt == nil:
			status = "running"
		case run.Error != "":
			status = "error"
		case run.Failed > 0:
			status = fmt.Sprintf("%d failed", run.Failed)
		}
		if _, err := fmt.Fprintf(w, "%s %s %-10s %d lines  %s  %s\n",
			run.ShortID(), run.StartedAt.Format(time.RFC3339), status, run.Lines, run.Source, run.Recipe); err != nil {
			return err
		}
	}
	return nil
}
