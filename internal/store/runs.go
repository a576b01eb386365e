package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/rowfilter/internal/filter"
	"github.com/roach88/rowfilter/internal/value"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded filter run.
type Run struct {
	ID          string        `json:"id"`
	Fingerprint string        `json:"fingerprint"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	Input       string        `json:"input"`
	Output      string        `json:"output"`
	Expression  string        `json:"expression"`
	Types       []value.Type  `json:"types"`
	SkipLines   int           `json:"skip_lines"`
	Report      filter.Report `json:"report"`
}

// RecordRun appends a run. Recording the same id twice is a no-op.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("record run: id is required")
	}

	typesJSON, err := marshalTypes(run.Types)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	r := run.Report
	var firstLine, firstContent, firstError any
	if r.InvalidLines > 0 {
		firstLine, firstContent, firstError = r.FirstInvalidLine, r.FirstInvalidContent, r.FirstInvalidError
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, fingerprint, started_at, duration_ms, input, output, expression, types, skip_lines,
		 total_lines, header_lines, skipped_lines, invalid_lines,
		 first_invalid_line, first_invalid_content, first_invalid_error, kept_lines)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Fingerprint,
		marshalTime(run.StartedAt),
		run.Duration.Milliseconds(),
		run.Input,
		run.Output,
		run.Expression,
		typesJSON,
		run.SkipLines,
		r.TotalLines,
		r.HeaderLines,
		r.SkippedLines,
		r.InvalidLines,
		firstLine,
		firstContent,
		firstError,
		r.KeptLines,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListOptions narrows ListRuns.
type ListOptions struct {
	// Fingerprint, when set, keeps only runs of that job.
	Fingerprint string

	// Limit caps the number of runs returned; 0 means no limit.
	Limit int
}

const runColumns = `id, fingerprint, started_at, duration_ms, input, output, expression, types, skip_lines,
	total_lines, header_lines, skipped_lines, invalid_lines,
	first_invalid_line, first_invalid_content, first_invalid_error, kept_lines`

// ListRuns returns recorded runs, newest first. Returns an empty slice, not
// nil, when nothing matches.
func (s *Store) ListRuns(ctx context.Context, opts ListOptions) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if opts.Fingerprint != "" {
		query += ` WHERE fingerprint = ?`
		args = append(args, opts.Fingerprint)
	}
	query += ` ORDER BY id COLLATE BINARY DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run with the given id, or ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run          Run
		startedAt    string
		durationMS   int64
		typesJSON    string
		firstLine    sql.NullInt64
		firstContent sql.NullString
		firstError   sql.NullString
	)
	r := &run.Report
	err := sc.Scan(
		&run.ID, &run.Fingerprint, &startedAt, &durationMS,
		&run.Input, &run.Output, &run.Expression, &typesJSON, &run.SkipLines,
		&r.TotalLines, &r.HeaderLines, &r.SkippedLines, &r.InvalidLines,
		&firstLine, &firstContent, &firstError, &r.KeptLines,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	if run.StartedAt, err = unmarshalTime(startedAt); err != nil {
		return Run{}, fmt.Errorf("scan run %s: %w", run.ID, err)
	}
	if run.Types, err = unmarshalTypes(typesJSON); err != nil {
		return Run{}, fmt.Errorf("scan run %s: %w", run.ID, err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Report.Expression = run.Expression
	run.Report.FirstInvalidLine = int(firstLine.Int64)
	run.Report.FirstInvalidContent = firstContent.String
	run.Report.FirstInvalidError = firstError.String
	return run, nil
}
