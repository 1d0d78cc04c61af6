package postgres

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeQuerier registra las sentencias recibidas y responde con valores fijos.
type fakeQuerier struct {
	sqls    []string
	args    [][]any
	execErr func(sql string) error
	row     fakeRow
}

func (f *fakeQuerier) record(sql string, args []any) {
	f.sqls = append(f.sqls, strings.Join(strings.Fields(sql), " "))
	f.args = append(f.args, args)
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.record(sql, args)
	if f.execErr != nil {
		if err := f.execErr(sql); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (f *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.record(sql, args)
	return nil, errors.New("fakeQuerier: Query no soportado")
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.record(sql, args)
	return f.row
}

// fakeRow copia vals en los destinos de Scan, en orden.
type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return errors.New("fakeRow: cantidad de columnas distinta")
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.vals[i]))
	}
	return nil
}

// fakeCopier además implementa CopyFrom, como pgx.Tx.
type fakeCopier struct {
	fakeQuerier
	table pgx.Identifier
	cols  []string
	rows  [][]any
}

func (c *fakeCopier) CopyFrom(_ context.Context, table pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	c.table, c.cols = table, cols
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		c.rows = append(c.rows, vals)
	}
	return int64(len(c.rows)), src.Err()
}
