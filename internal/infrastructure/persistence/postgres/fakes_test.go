package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeConn records statements and answers from canned results.
type fakeConn struct {
	execs      []execCall
	execTags   []string
	execErr    error
	row        []any
	rowErr     error
	rows       [][]any
	queryErr   error
	committed  int
	rolledBack int
}

type execCall struct {
	sql  string
	args []any
}

func (f *fakeConn) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: strings.TrimSpace(sql), args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	tag := "OK"
	if len(f.execTags) > 0 {
		tag, f.execTags = f.execTags[0], f.execTags[1:]
	}
	return pgconn.NewCommandTag(tag), nil
}

func (f *fakeConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{rows: f.rows, pos: -1}, nil
}

func (f *fakeConn) QueryRow(context.Context, string, ...any) pgx.Row {
	if f.rowErr != nil {
		return fakeRow{err: f.rowErr}
	}
	return fakeRow{values: f.row}
}

func (f *fakeConn) WithTx(_ context.Context, fn func(Querier) error) error {
	if err := fn(f); err != nil {
		f.rolledBack++
		return err
	}
	f.committed++
	return nil
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(dest, r.rows[r.pos])
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.pos], nil
}

func assign(dest, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *[]byte:
			*d = v.([]byte)
		case *int:
			*d = v.(int)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", dest[i])
		}
	}
	return nil
}
