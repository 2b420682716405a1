package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// AddRecords stores records for a run in a single transaction.
func (s *SQLiteStore) AddRecords(ctx context.Context, runID string, recs []Record) (err error) {
	if s.db == nil {
		return errNotOpened
	}
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, rec := range recs {
		if err = insertRecord(ctx, tx, runID, rec); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, runID string, rec Record) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO records (run_id, source, line, input, rest, error) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, rec.Source, rec.Line, rec.Input, rec.Rest, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record for line %d: %w", rec.Line, err)
	}
	recordID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get record id: %w", err)
	}

	for i, f := range rec.Fields {
		value, err := json.Marshal(f.Value)
		if err != nil {
			return fmt.Errorf("failed to encode field %s: %w", f.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fields (record_id, position, name, step, value, span_start, span_end) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			recordID, i, f.Name, f.Step, string(value), f.Start, f.End,
		); err != nil {
			return fmt.Errorf("failed to insert field %s: %w", f.Name, err)
		}
	}
	return nil
}

// ListRecords returns the records of a run in insertion order.
func (s *SQLiteStore) ListRecords(ctx context.Context, runID string) ([]Record, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.source, r.line, r.input, r.rest, r.error,
		       f.name, f.step, f.value, f.span_start, f.span_end
		FROM records r
		LEFT JOIN fields f ON f.record_id = r.id
		WHERE r.run_id = ?
		ORDER BY r.id, f.position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		recs   []Record
		lastID int64 = -1
	)
	for rows.Next() {
		var (
			id                 int64
			rec                Record
			name, step, value  sql.NullString
			spanStart, spanEnd sql.NullInt64
		)
		if err := rows.Scan(&id, &rec.Source, &rec.Line, &rec.Input, &rec.Rest, &rec.Error,
			&name, &step, &value, &spanStart, &spanEnd); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if id != lastID {
			recs = append(recs, rec)
			lastID = id
		}
		if !name.Valid {
			continue
		}

		f := Field{Name: name.String, Step: step.String, Start: int(spanStart.Int64), End: int(spanEnd.Int64)}
		if err := json.Unmarshal([]byte(value.String), &f.Value); err != nil {
			return nil, fmt.Errorf("failed to decode field %s: %w", f.Name, err)
		}
		last := &recs[len(recs)-1]
		last.Fields = append(last.Fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return recs, nil
}
