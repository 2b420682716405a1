// Package state records scan runs in a SQLite database.
//
// Every scan run saved with --db gets a row in runs, one row per input line
// in records, and one row per extracted value in fields. Values are stored
// JSON-encoded so numbers and booleans keep their type.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrRunNotFound is returned when no run matches an ID or ID prefix.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRun is returned when an ID prefix matches more than one run.
var ErrAmbiguousRun = errors.New("run ID prefix is ambiguous")

// Store persists scan runs.
type Store interface {
	CreateRun(ctx context.Context, recipe, source string) (*Run, error)
	AddRecords(ctx context.Context, runID string, recs []Record) error
	FinishRun(ctx context.Context, runID string, lines, failed int, runErr error) error
	GetRun(ctx context.Context, idOrPrefix string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ListRecords(ctx context.Context, runID string) ([]Record, error)
	Close() error
}

// Run is one invocation of a recipe over some input.
type Run struct {
	ID         string     `json:"id" yaml:"id"`
	Recipe     string     `json:"recipe" yaml:"recipe"`
	Source     string     `json:"source" yaml:"source"`
	StartedAt  time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Lines      int        `json:"lines" yaml:"lines"`
	Failed     int        `json:"failed" yaml:"failed"`
	Error      string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// ShortID returns the first eight characters of the run ID.
func (r Run) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}

// Record is the stored result of scanning one line.
type Record struct {
	Source string
	Line   int
	Input  string
	Rest   string
	Error  string
	Fields []Field
}

// Field is one stored value. Start and End are byte offsets into the input.
type Field struct {
	Name  string
	Step  string
	Value any
	Start int
	End   int
}
