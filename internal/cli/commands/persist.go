package commands

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/strscan/internal/cli/output"
	"github.com/leapstack-labs/strscan/internal/state"
)

// flushSize is the number of records buffered before they are written.
const flushSize = 256

// runRecorder saves the records of one scan to the run history.
type runRecorder struct {
	store   state.Store
	run     *state.Run
	logger  *slog.Logger
	pending []state.Record
}

// openRunRecorder opens the history database at path and starts a run.
func openRunRecorder(ctx context.Context, path, recipe, source string, logger *slog.Logger) (*runRecorder, error) {
	store, err := state.Open(path)
	if err != nil {
		return nil, err
	}
	run, err := store.CreateRun(ctx, recipe, source)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Debug("recording run", "id", run.ID, "db", path)
	return &runRecorder{store: store, run: run, logger: logger}, nil
}

func (rr *runRecorder) add(ctx context.Context, src string, rec output.Record) error {
	rr.pending = append(rr.pending, toStateRecord(src, rec))
	if len(rr.pending) < flushSize {
		return nil
	}
	return rr.flush(ctx)
}

func (rr *runRecorder) flush(ctx context.Context) error {
	if err := rr.store.AddRecords(ctx, rr.run.ID, rr.pending); err != nil {
		return err
	}
	rr.pending = rr.pending[:0]
	return nil
}

// finish writes the remaining records, closes the run and the database.
// The run is closed even when ctx has been cancelled.
func (rr *runRecorder) finish(lines, failed int, runErr error) error {
	defer func() { _ = rr.store.Close() }()

	ctx := context.Background()
	if err := rr.flush(ctx); err != nil {
		return err
	}
	if err := rr.store.FinishRun(ctx, rr.run.ID, lines, failed, runErr); err != nil {
		return err
	}
	rr.logger.Info("run recorded", "id", rr.run.ShortID(), "lines", lines, "failed", failed)
	return nil
}

func toStateRecord(src string, rec output.Record) state.Record {
	out := state.Record{
		Source: src,
		Line:   rec.Line,
		Input:  rec.Input,
		Rest:   rec.Rest,
		Error:  rec.Error,
		Fields: make([]state.Field, 0, len(rec.Fields)),
	}
	for _, f := range rec.Fields {
		out.Fields = append(out.Fields, state.Field{
			Name:  f.Name,
			Step:  f.Step,
			Value: f.Value,
			Start: f.Span.Start.Offset,
			End:   f.Span.End.Offset,
		})
	}
	return out
}
