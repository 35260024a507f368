package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Fetch struct {
	Id         string
	Source     string
	Url        string
	Path       string
	Sha256     string
	Bytes      int64
	Status     int64
	DurationMs int64
	FetchedAt  int64
}

const createFetch = `
INSERT INTO fetches (id, source, url, path, sha256, bytes, status, duration_ms, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateFetch(ctx context.Context, arg Fetch) error {
	_, err := q.db.ExecContext(
		ctx, createFetch,
		arg.Id,
		arg.Source,
		arg.Url,
		arg.Path,
		arg.Sha256,
		arg.Bytes,
		arg.Status,
		arg.DurationMs,
		arg.FetchedAt,
	)
	return err
}

const listFetches = `
SELECT id, source, url, path, sha256, bytes, status, duration_ms, fetched_at
FROM fetches
WHERE source = ?
ORDER BY fetched_at DESC, rowid DESC
LIMIT ?
`

type ListFetchesParams struct {
	Source string
	Limit  int64
}

func (q *Queries) ListFetches(ctx context.Context, arg ListFetchesParams) ([]Fetch, error) {
	rows, err := q.db.QueryContext(ctx, listFetches, arg.Source, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFetches(rows)
}

const listAllFetches = `
SELECT id, source, url, path, sha256, bytes, status, duration_ms, fetched_at
FROM fetches
ORDER BY fetched_at DESC, rowid DESC
LIMIT ?
`

func (q *Queries) ListAllFetches(ctx context.Context, limit int64) ([]Fetch, error) {
	rows, err := q.db.QueryContext(ctx, listAllFetches, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFetches(rows)
}

const getLatestFetch = `
SELECT id, source, url, path, sha256, bytes, status, duration_ms, fetched_at
FROM fetches
WHERE source = ?
ORDER BY fetched_at DESC, rowid DESC
LIMIT 1
`

func (q *Queries) GetLatestFetch(ctx context.Context, source string) (Fetch, error) {
	row := q.db.QueryRowContext(ctx, getLatestFetch, source)
	var f Fetch
	err := row.Scan(
		&f.Id,
		&f.Source,
		&f.Url,
		&f.Path,
		&f.Sha256,
		&f.Bytes,
		&f.Status,
		&f.DurationMs,
		&f.FetchedAt,
	)
	return f, err
}

func scanFetches(rows *sql.Rows) ([]Fetch, error) {
	var out []Fetch
	for rows.Next() {
		var f Fetch
		err := rows.Scan(
			&f.Id,
			&f.Source,
			&f.Url,
			&f.Path,
			&f.Sha256,
			&f.Bytes,
			&f.Status,
			&f.DurationMs,
			&f.FetchedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
