// Package fetchstore keeps a history of completed downloads so
// "when did this file last change" has an answer.
package fetchstore

import (
	"context"
	"database/sql"
	"time"

	"datapeek/lib/fetchstore/db"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("datapeek.lib.fetchstore")

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// Record is one completed fetch. Sha256 identifies the payload, so two
// records with equal hashes for the same source mean the remote file
// did not change between them.
type Record struct {
	Id        string
	Source    string
	Url       string
	Path      string
	Sha256    string
	Bytes     int64
	Status    int64
	Duration  time.Duration
	FetchedAt time.Time
}

func fromDb(f db.Fetch) Record {
	return Record{
		Id:        f.Id,
		Source:    f.Source,
		Url:       f.Url,
		Path:      f.Path,
		Sha256:    f.Sha256,
		Bytes:     f.Bytes,
		Status:    f.Status,
		Duration:  time.Duration(f.DurationMs) * time.Millisecond,
		FetchedAt: time.Unix(f.FetchedAt, 0),
	}
}

// Record inserts rec, filling in Id and FetchedAt when unset, and
// returns the stored value.
func (s Store) Record(ctx context.Context, rec Record) (Record, error) {
	ctx, span := tracer.Start(ctx, "fetchstore:Record")
	defer span.End()

	if rec.Id == "" {
		rec.Id = uuid.NewString()
	}
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now()
	}

	err := s.qry.CreateFetch(ctx, db.Fetch{
		Id:         rec.Id,
		Source:     rec.Source,
		Url:        rec.Url,
		Path:       rec.Path,
		Sha256:     rec.Sha256,
		Bytes:      rec.Bytes,
		Status:     rec.Status,
		DurationMs: rec.Duration.Milliseconds(),
		FetchedAt:  rec.FetchedAt.Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert fetch record")
		return Record{}, err
	}
	return rec, nil
}

// History returns records newest first. An empty source means every
// source.
func (s Store) History(ctx context.Context, source string, limit int64) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "fetchstore:History")
	defer span.End()

	var fetches []db.Fetch
	var err error
	if source == "" {
		fetches, err = s.qry.ListAllFetches(ctx, limit)
	} else {
		fetches, err = s.qry.ListFetches(ctx, db.ListFetchesParams{
			Source: source,
			Limit:  limit,
		})
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list fetch records")
		return nil, err
	}

	records := make([]Record, len(fetches))
	for i, f := range fetches {
		records[i] = fromDb(f)
	}
	return records, nil
}

// Latest returns the newest record for source, reporting found=false
// when the source has never been fetched.
func (s Store) Latest(ctx context.Context, source string) (Record, bool, error) {
	ctx, span := tracer.Start(ctx, "fetchstore:Latest")
	defer span.End()

	f, err := s.qry.GetLatestFetch(ctx, source)
	if sql.ErrNoRows == err {
		return Record{}, false, nil
	} else if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read latest fetch record")
		return Record{}, false, err
	}
	return fromDb(f), true, nil
}

func (s Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
